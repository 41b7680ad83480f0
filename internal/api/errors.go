package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/zulandar/swapmeet/internal/fault"
)

// StatusFor maps an error to its HTTP status.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, fault.ErrValidation), errors.Is(err, fault.ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, fault.ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, fault.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, fault.ErrInvalidTransition),
		errors.Is(err, fault.ErrInvalidState),
		errors.Is(err, fault.ErrDuplicateReview):
		return http.StatusConflict
	case errors.Is(err, fault.ErrEditWindowExpired):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

type errorBody struct {
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
}

// fail writes err as JSON. Fault details are returned to the caller;
// anything else is logged and hidden behind the generic message.
func (s *server) fail(c *gin.Context, err error) {
	status := StatusFor(err)
	body := errorBody{Error: fault.Message(err)}
	if fault.KindOf(err) != nil {
		body.Detail = err.Error()
	} else {
		s.logger.ErrorContext(c.Request.Context(), "api: request failed",
			"path", c.FullPath(), "error", err)
	}
	c.JSON(status, body)
}
