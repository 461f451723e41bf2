package httpserver

import (
	"errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"taskmanager/pkg/apperr"
	"taskmanager/pkg/logger"
	"taskmanager/pkg/util"
)

const (
	MsgMissingAuthHeader = "Missing Authorization header"
	MsgInvalidAuthHeader = "Invalid Authorization header format"
	MsgInvalidToken      = "Token invalid or expired"
)

// AuthMiddleware verifies the bearer token and attaches its claims to the
// request context (read back with util.ClaimsFrom). It never touches the store.
func AuthMiddleware(tokens *util.TokenService, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, err := util.ExtractBearer(c.GetHeader("Authorization"))
		if err != nil {
			msg := MsgInvalidAuthHeader
			if errors.Is(err, util.ErrMissingAuthHeader) {
				msg = MsgMissingAuthHeader
			}
			_ = c.Error(apperr.Wrap(apperr.KindUnauthenticated, msg, err))
			c.Abort()
			return
		}

		claims, err := tokens.Verify(raw)
		if err != nil {
			logger.WithTrace(c.Request.Context(), log).Debug("token rejected", zap.Error(err))
			_ = c.Error(apperr.Wrap(apperr.KindUnauthenticated, MsgInvalidToken, err))
			c.Abort()
			return
		}

		c.Request = c.Request.WithContext(util.WithClaims(c.Request.Context(), claims))

		c.Next()
	}
}

