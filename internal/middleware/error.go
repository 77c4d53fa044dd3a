package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	apperrors "github.com/elokman/health-api/pkg/errors"
	"github.com/elokman/health-api/pkg/validator"
)

// ErrorResponse is the body for server-side failures.
type ErrorResponse struct {
	Error     string `json:"error"`
	Detail    string `json:"detail,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// FieldErrors is the body for client errors.
type FieldErrors struct {
	Errors validator.Errors `json:"errors"`
}

// ErrorHandler renders the last error attached with c.Error. Detail of
// server errors is only exposed when production is false.
func ErrorHandler(production bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		requestID := c.GetString(ContextRequestID)
		last := c.Errors.Last().Err
		status := statusOf(last)

		event := log.Ctx(c.Request.Context()).Warn()
		if status >= http.StatusInternalServerError {
			event = log.Ctx(c.Request.Context()).Error()
		}
		errs := make([]error, 0, len(c.Errors))
		for _, e := range c.Errors {
			errs = append(errs, e.Err)
		}
		event.Errs("errors", errs).Int("status", status).Str("path", c.Request.URL.Path).Msg("request error")

		if c.Writer.Written() {
			return
		}

		var verrs validator.Errors
		if errors.As(last, &verrs) {
			c.JSON(http.StatusBadRequest, FieldErrors{Errors: verrs})
			return
		}

		appErr, isApp := apperrors.As(last)
		if status < http.StatusInternalServerError {
			msg := http.StatusText(status)
			if isApp {
				msg = appErr.Message
			}
			c.JSON(status, FieldErrors{Errors: validator.Errors{{Message: msg}}})
			return
		}

		resp := ErrorResponse{Error: "internal server error", RequestID: requestID}
		if isApp && appErr.Code != apperrors.ErrInternal {
			resp.Error = appErr.Message
		} else if !isApp && status != http.StatusInternalServerError {
			resp.Error = strings.ToLower(http.StatusText(status))
		}
		if !production {
			resp.Detail = last.Error()
		}
		c.JSON(status, resp)
	}
}

func statusOf(err error) int {
	if sc, ok := err.(interface{ StatusCode() int }); ok {
		return sc.StatusCode()
	}
	if appErr, ok := apperrors.As(err); ok {
		return appErr.StatusCode()
	}
	return http.StatusInternalServerError
}
