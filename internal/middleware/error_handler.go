package middleware

import (
	"fmt"
	"net/http"
	"time"

	"go-hrdata/internal/shared/apperror"
	"go-hrdata/internal/shared/contextutil"
	"go-hrdata/internal/shared/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ErrorHandler turns panics into a 500 envelope and logs every request
// once it completes.
func ErrorHandler(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		log := contextutil.GetLogger(c.Request.Context(), logger)

		defer func() {
			if rec := recover(); rec != nil {
				err, ok := rec.(error)
				if !ok {
					err = fmt.Errorf("%v", rec)
				}
				log.Error("panic recovered",
					zap.String("method", c.Request.Method),
					zap.String("path", c.Request.URL.Path),
					zap.Error(err),
					zap.Stack("stack"),
				)
				abortWithError(c, apperror.Wrap(err, apperror.CodeInternalError, "An unexpected error occurred", http.StatusInternalServerError))
			}

			fields := []zap.Field{
				zap.String("method", c.Request.Method),
				zap.String("path", c.Request.URL.Path),
				zap.Int("status", c.Writer.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("client_ip", c.ClientIP()),
			}
			if c.Writer.Status() >= http.StatusInternalServerError {
				log.Error("request completed", fields...)
				return
			}
			log.Info("request completed", fields...)
		}()

		c.Next()
	}
}

func abortWithError(c *gin.Context, err error) {
	httpErr := apperror.ToHTTP(err)
	response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
	c.Abort()
}
