package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/elokman/health-api/pkg/auth"
	apperrors "github.com/elokman/health-api/pkg/errors"
)

var errMissingBearer = errors.New("missing or malformed authorization header")

// Authenticate verifies the bearer token and stores its claims in the
// request context.
func Authenticate(issuer *auth.TokenIssuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		scheme, token, found := strings.Cut(header, " ")
		if !found || scheme != "Bearer" || strings.TrimSpace(token) == "" {
			c.Error(apperrors.Unauthorized(errMissingBearer))
			c.Abort()
			return
		}

		claims, err := issuer.Verify(strings.TrimSpace(token))
		if err != nil {
			reason := "invalid"
			if errors.Is(err, auth.ErrTokenExpired) {
				reason = "expired"
			}
			log.Ctx(c.Request.Context()).Debug().Str("reason", reason).Msg("token rejected")
			c.Error(apperrors.Unauthorized(err))
			c.Abort()
			return
		}

		ctx := auth.NewContext(c.Request.Context(), claims)
		logger := log.Ctx(ctx).With().Int64("user_id", claims.UserID).Logger()
		c.Request = c.Request.WithContext(logger.WithContext(ctx))
		c.Next()
	}
}
