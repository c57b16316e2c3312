package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/socialgraph/social-api/internal/api/handler"
	"github.com/socialgraph/social-api/internal/core/domain"
)

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors to their HTTP status codes.
//   - Renders field details for validation failures.
//   - Logs unexpected errors and returns their detail with a 500.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, body := resolveError(err, log, c)
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, body)
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, handler.ErrorResponse) {
	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, handler.ErrorResponse{Error: fmt.Sprintf("%v", he.Message)}
	}

	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		code := http.StatusBadRequest
		if ve.Reason == domain.ReasonDuplicateKey {
			code = http.StatusConflict
		}
		return code, handler.ErrorResponse{Error: ve.Error(), Fields: ve.Fields}
	}

	switch {
	case errors.Is(err, domain.ErrThoughtNotFound):
		return http.StatusNotFound, handler.ErrorResponse{Error: "No thought found with this id!"}
	case errors.Is(err, domain.ErrUserNotFound), errors.Is(err, domain.ErrAuthorNotFound):
		return http.StatusNotFound, handler.ErrorResponse{Error: "No user found with this id!"}
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, handler.ErrorResponse{Error: err.Error()}
	}

	ev := log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path())
	var pe *domain.ProtocolError
	if errors.As(err, &pe) {
		ev = ev.Str("protocol", pe.Protocol).Str("step", pe.Step).Str("partial", pe.Partial)
	}
	ev.Msg("unhandled error")

	return http.StatusInternalServerError, handler.ErrorResponse{
		Error:  "internal server error",
		Detail: err.Error(),
	}
}
