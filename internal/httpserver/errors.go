package httpserver

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"taskmanager/pkg/apperr"
	"taskmanager/pkg/logger"
)

// ErrorRenderer turns the last error attached with c.Error into a response.
// Errors outside the apperr taxonomy are answered as internal failures.
func ErrorRenderer(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err
		ae, ok := apperr.As(err)
		if !ok {
			ae = apperr.Internal(err)
		}

		if ae.Kind == apperr.KindInternal {
			logger.WithTrace(c.Request.Context(), log).Error("Request failed",
				zap.String("method", c.Request.Method),
				zap.String("path", c.Request.URL.Path),
				zap.Error(err),
			)
			c.JSON(apperr.HTTPStatus(ae.Kind), gin.H{"message": apperr.InternalMessage})
			return
		}

		body := gin.H{"message": ae.Message}
		if len(ae.Fields) > 0 {
			body["errors"] = ae.Fields
		}
		c.JSON(apperr.HTTPStatus(ae.Kind), body)
	}
}
