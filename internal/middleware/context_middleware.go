package middleware

import (
	"go-hrdata/internal/shared/contextutil"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ContextLogger assigns the request id, echoes it in the response and
// stores a request-scoped logger in the request context.
func ContextLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader(contextutil.RequestIDHeader)
		if rid == "" {
			rid = uuid.New().String()
		}
		c.Header(contextutil.RequestIDHeader, rid)
		c.Set("request_id", rid)

		reqLogger := logger.With(zap.String("request_id", rid))

		ctx := c.Request.Context()
		ctx = contextutil.WithRequestID(ctx, rid)
		ctx = contextutil.WithLogger(ctx, reqLogger)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}
