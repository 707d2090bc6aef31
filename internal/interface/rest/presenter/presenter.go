package presenter

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/omunroe-com/shiftspace"
	"github.com/omunroe-com/shiftspace/internal/domain"
)

type errorResponse struct {
	Error string `json:"error"`
}

// OK wraps a successful response.
func OK(c echo.Context, payload any) error {
	return c.JSON(http.StatusOK, payload)
}

func Created(c echo.Context, payload any) error {
	return c.JSON(http.StatusCreated, payload)
}

func BadRequest(c echo.Context, err error) error {
	return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
}

func NotFound(c echo.Context, msg string) error {
	return c.JSON(http.StatusNotFound, errorResponse{Error: msg})
}

func NotImplemented(c echo.Context, err error) error {
	return c.JSON(http.StatusNotImplemented, errorResponse{Error: err.Error()})
}

func InternalError(c echo.Context, err error) error {
	c.Logger().Error(err)
	return c.JSON(http.StatusInternalServerError, errorResponse{Error: err.Error()})
}

// Report renders a shift together with the non-fatal outcomes of its fan-out.
func Report(shift *domain.Shift, report *domain.PublishReport) shiftspace.PublishResponse {
	resp := shiftspace.PublishResponse{
		Shift:    shift,
		Dropped:  []shiftspace.DroppedTarget{},
		Failures: []shiftspace.FailureResponse{},
	}
	if report == nil {
		return resp
	}
	for _, d := range report.Dropped() {
		resp.Dropped = append(resp.Dropped, shiftspace.DroppedTarget{
			Destination: d.Destination.String(),
			Reason:      string(d.Reason),
		})
	}
	for _, f := range report.Failures() {
		resp.Failures = append(resp.Failures, shiftspace.FailureResponse{
			Operation: f.Operation,
			Target:    f.Target,
			Error:     f.Err.Error(),
			At:        f.At,
		})
	}
	return resp
}
