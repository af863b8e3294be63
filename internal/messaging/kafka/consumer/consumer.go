package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go-hrdata/internal/events"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// MessageReader is the subset of *kafka.Reader the consumers use.
type MessageReader interface {
	FetchMessage(ctx context.Context) (kafkago.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafkago.Message) error
}

// ReportCache drops cached hire reports for the given years, or all of
// them when years is empty.
type ReportCache interface {
	Invalidate(ctx context.Context, years []int) error
}

var (
	retryBackoff    = time.Second
	retryBackoffMax = 30 * time.Second
)

// ConsumeRecordLifecycle invalidates cached hire reports whenever a
// department, job or user row changes. A failed invalidation is retried with
// backoff on the same message, so offsets are only committed once the cache
// has been cleared. Undecodable payloads are committed and skipped.
func ConsumeRecordLifecycle(
	ctx context.Context,
	reader MessageReader,
	cache ReportCache,
	logger *zap.Logger,
) {
	log := logger.Named("kafka.consumer.record_lifecycle")
	log.Info("record lifecycle consumer started")

	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Info("record lifecycle consumer stopped")
				return
			}
			log.Error("fetch record lifecycle message failed", zap.Error(err))
			continue
		}

		if err := handleWithRetry(ctx, msg, cache, log); err != nil {
			var decodeErr *decodeError
			if errors.As(err, &decodeErr) {
				log.Error("decode record lifecycle event failed",
					zap.String("topic", msg.Topic),
					zap.Int64("offset", msg.Offset),
					zap.Error(err),
				)
				_ = reader.CommitMessages(ctx, msg)
				continue
			}
			log.Info("record lifecycle consumer stopped")
			return
		}

		if err := reader.CommitMessages(ctx, msg); err != nil {
			log.Error("commit record lifecycle message failed", zap.Error(err))
			continue
		}

		log.Debug("report cache invalidated",
			zap.String("topic", msg.Topic),
			zap.Int64("offset", msg.Offset),
		)
	}
}

// handleWithRetry returns nil once the message is applied, a decodeError for
// a bad payload, or ctx's error when the consumer is stopping.
func handleWithRetry(ctx context.Context, msg kafkago.Message, cache ReportCache, log *zap.Logger) error {
	backoff := retryBackoff
	for {
		err := HandleRecordLifecycle(ctx, msg, cache)
		if err == nil {
			return nil
		}
		var decodeErr *decodeError
		if errors.As(err, &decodeErr) {
			return err
		}

		log.Warn("invalidate report cache failed, retrying",
			zap.String("topic", msg.Topic),
			zap.Int64("offset", msg.Offset),
			zap.Duration("backoff", backoff),
			zap.Error(err),
		)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		backoff = min(backoff*2, retryBackoffMax)
	}
}

// HandleRecordLifecycle applies a single lifecycle message. User events
// name the hire years they touch; department and job events carry none and
// flush every cached report.
func HandleRecordLifecycle(ctx context.Context, msg kafkago.Message, cache ReportCache) error {
	var event events.RecordEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		return &decodeError{err: err}
	}
	return cache.Invalidate(ctx, event.HireYears)
}

type decodeError struct{ err error }

func (e *decodeError) Error() string { return "decode record event: " + e.err.Error() }
func (e *decodeError) Unwrap() error { return e.err }
