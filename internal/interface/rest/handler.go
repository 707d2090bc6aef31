package rest

import (
	"errors"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/omunroe-com/shiftspace"
	"github.com/omunroe-com/shiftspace/internal/domain"
	"github.com/omunroe-com/shiftspace/internal/interface/rest/presenter"
	"github.com/omunroe-com/shiftspace/internal/usecase"
)

type Handler struct {
	shift *usecase.ShiftUsecase
}

func NewHandler(shift *usecase.ShiftUsecase) *Handler {
	return &Handler{shift: shift}
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/shifts", IdentifyRequester)
	g.POST("", h.handleCreate)
	g.GET("", h.handleList)
	g.GET("/:id", h.handleRead)
	g.PUT("/:id", h.handleUpdate)
	g.DELETE("/:id", h.handleDelete)
	g.POST("/:id/publish", h.handlePublish)
	g.POST("/:id/unpublish", h.handleUnpublish)
}

func (h *Handler) handleCreate(c echo.Context) error {
	ctx := c.Request().Context()

	var req shiftspace.ShiftRequest
	if err := c.Bind(&req); err != nil {
		return presenter.BadRequest(c, err)
	}

	shift, err := h.shift.Create(ctx, usecase.CreateInput{
		Author:  requesterFrom(ctx),
		Request: req,
	})
	if err != nil {
		return h.fail(c, err)
	}
	return presenter.Created(c, shift)
}

func (h *Handler) handleRead(c echo.Context) error {
	ctx := c.Request().Context()

	shift, err := h.shift.Read(ctx, c.Param("id"), requesterFrom(ctx))
	if err != nil {
		return h.fail(c, err)
	}
	if shift == nil {
		return presenter.NotFound(c, "shift not found")
	}
	return presenter.OK(c, shift)
}

func (h *Handler) handleUpdate(c echo.Context) error {
	ctx := c.Request().Context()

	var req shiftspace.UpdateRequest
	if err := c.Bind(&req); err != nil {
		return presenter.BadRequest(c, err)
	}

	result, err := h.shift.Update(ctx, c.Param("id"), requesterFrom(ctx), req)
	if err != nil {
		return h.fail(c, err)
	}
	return presenter.OK(c, presenter.Report(result.Shift, result.Report))
}

func (h *Handler) handleDelete(c echo.Context) error {
	ctx := c.Request().Context()

	if err := h.shift.Delete(ctx, c.Param("id"), requesterFrom(ctx)); err != nil {
		return h.fail(c, err)
	}
	return presenter.OK(c, echo.Map{"status": "ok"})
}

func (h *Handler) handlePublish(c echo.Context) error {
	ctx := c.Request().Context()

	var req shiftspace.PublishRequest
	if err := c.Bind(&req); err != nil {
		return presenter.BadRequest(c, err)
	}

	input := usecase.PublishInput{Private: req.Private}
	if req.Dbs != nil {
		dbs, err := shiftspace.ParseDestinations(*req.Dbs)
		if err != nil {
			return presenter.BadRequest(c, err)
		}
		input.Dbs = dbs
		input.DbsSet = true
	}

	shift, report, err := h.shift.Publish(ctx, c.Param("id"), requesterFrom(ctx), input)
	if err != nil {
		return h.fail(c, err)
	}
	return presenter.OK(c, presenter.Report(shift, report))
}

func (h *Handler) handleUnpublish(c echo.Context) error {
	ctx := c.Request().Context()

	shift, err := h.shift.Unpublish(ctx, c.Param("id"), requesterFrom(ctx))
	if err != nil {
		return h.fail(c, err)
	}
	return presenter.OK(c, shift)
}

func (h *Handler) handleList(c echo.Context) error {
	ctx := c.Request().Context()

	input := usecase.ListInput{
		Href:      c.QueryParam("href"),
		Requester: requesterFrom(ctx),
	}
	if s := c.QueryParam("start"); s != "" {
		start, err := strconv.Atoi(s)
		if err != nil {
			return presenter.BadRequest(c, errors.New("invalid start parameter"))
		}
		input.Start = start
	}
	if s := c.QueryParam("limit"); s != "" {
		limit, err := strconv.Atoi(s)
		if err != nil {
			return presenter.BadRequest(c, errors.New("invalid limit parameter"))
		}
		input.Limit = limit
	}

	shifts, err := h.shift.List(ctx, input)
	if err != nil {
		return h.fail(c, err)
	}
	return presenter.OK(c, shifts)
}

func (h *Handler) fail(c echo.Context, err error) error {
	var invalid domain.InvalidInputError
	var malformed shiftspace.MalformedDestinationError
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return presenter.NotFound(c, err.Error())
	case errors.As(err, &invalid), errors.As(err, &malformed):
		return presenter.BadRequest(c, err)
	case errors.Is(err, domain.ErrUnsupportedTransition):
		return presenter.NotImplemented(c, err)
	default:
		return presenter.InternalError(c, err)
	}
}
