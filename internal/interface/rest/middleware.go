package rest

import (
	"context"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/omunroe-com/shiftspace/internal/domain"
)

var tracer = otel.Tracer("rest")

// IdentifyRequester puts the requester id forwarded by the auth proxy into the
// request context. Requests without the header are anonymous.
func IdentifyRequester(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx, span := tracer.Start(c.Request().Context(), "Rest.Middleware.IdentifyRequester", trace.WithSpanKind(trace.SpanKindServer))
		defer span.End()

		requester := c.Request().Header.Get(domain.RequesterIdHeader)
		if requester != "" {
			ctx = context.WithValue(ctx, domain.RequesterIdCtxKey, requester)
			span.SetAttributes(attribute.String("RequesterId", requester))
		}

		c.SetRequest(c.Request().WithContext(ctx))
		return next(c)
	}
}

func requesterFrom(ctx context.Context) string {
	requester, _ := ctx.Value(domain.RequesterIdCtxKey).(string)
	return requester
}
