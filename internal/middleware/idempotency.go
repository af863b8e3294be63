package middleware

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go-hrdata/internal/shared/apperror"
	"go-hrdata/internal/shared/contextutil"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	IdempotencyHeader = "Idempotency-Key"
	ReplayedHeader    = "Idempotent-Replayed"

	DefaultIdempotencyTTL = 24 * time.Hour
	idempotencyLockTTL    = 30 * time.Second
)

type cachedResponse struct {
	Status      int    `json:"status"`
	ContentType string `json:"content_type"`
	Body        []byte `json:"body"`
}

// bodyRecorder keeps a copy of everything the handler writes.
type bodyRecorder struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w *bodyRecorder) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *bodyRecorder) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

func IdempotencyKey(path, key string) string {
	return fmt.Sprintf("hrdata:idemp:%s:%s", path, key)
}

// Idempotency replays the stored response of a POST that carries an
// Idempotency-Key already seen within ttl. While the first request is in
// flight, duplicates get 409 PROCESSING. Only 2xx responses are stored. A nil
// rdb disables the middleware.
func Idempotency(rdb *redis.Client, ttl time.Duration, logger *zap.Logger) gin.HandlerFunc {
	if ttl <= 0 {
		ttl = DefaultIdempotencyTTL
	}
	return func(c *gin.Context) {
		key := c.GetHeader(IdempotencyHeader)
		if rdb == nil || key == "" || c.Request.Method != http.MethodPost {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		log := contextutil.GetLogger(ctx, logger)
		cacheKey := IdempotencyKey(c.FullPath(), key)
		lockKey := cacheKey + ":lock"

		if raw, err := rdb.Get(ctx, cacheKey).Bytes(); err == nil {
			var res cachedResponse
			if err := json.Unmarshal(raw, &res); err == nil {
				log.Info("idempotent response replayed", zap.String("idempotency_key", key))
				c.Header(ReplayedHeader, "true")
				c.Data(res.Status, res.ContentType, res.Body)
				c.Abort()
				return
			}
		}

		locked, err := rdb.SetNX(ctx, lockKey, "locked", idempotencyLockTTL).Result()
		if err != nil {
			log.Warn("idempotency lock failed, continuing without it", zap.Error(err))
			c.Next()
			return
		}
		if !locked {
			abortWithError(c, apperror.ErrProcessing)
			return
		}
		defer func() {
			if err := rdb.Del(ctx, lockKey).Err(); err != nil {
				log.Warn("idempotency unlock failed", zap.String("lock_key", lockKey), zap.Error(err))
			}
		}()

		rec := &bodyRecorder{ResponseWriter: c.Writer, body: &bytes.Buffer{}}
		c.Writer = rec
		c.Next()

		status := rec.Status()
		if status < http.StatusOK || status >= http.StatusMultipleChoices {
			return
		}
		data, err := json.Marshal(cachedResponse{
			Status:      status,
			ContentType: rec.Header().Get("Content-Type"),
			Body:        rec.body.Bytes(),
		})
		if err != nil {
			return
		}
		if err := rdb.Set(ctx, cacheKey, data, ttl).Err(); err != nil {
			log.Warn("idempotent response not stored", zap.String("idempotency_key", key), zap.Error(err))
		}
	}
}
