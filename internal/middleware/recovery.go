package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// Recovery turns a panic into a sanitized 500. The stack is logged, and
// also returned when production is false.
func Recovery(production bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				stack := debug.Stack()
				log.Ctx(c.Request.Context()).Error().
					Interface("panic", rec).
					Str("stack", string(stack)).
					Str("method", c.Request.Method).
					Str("path", c.Request.URL.Path).
					Msg("request panic recovered")

				resp := ErrorResponse{Error: "internal server error", RequestID: c.GetString(ContextRequestID)}
				if !production {
					resp.Detail = fmt.Sprintf("%v\n%s", rec, stack)
				}
				c.AbortWithStatusJSON(http.StatusInternalServerError, resp)
			}
		}()
		c.Next()
	}
}
