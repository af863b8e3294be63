package bootstrap

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// AuditLog is one operational event worth keeping apart from request logs.
type AuditLog struct {
	Action  string
	Message string
	Meta    map[string]any
}

type AuditLogger interface {
	Log(ctx context.Context, entry AuditLog)
}

type StdoutAuditLogger struct {
	logger *zap.Logger
}

func NewStdoutAuditLogger(logger *zap.Logger) *StdoutAuditLogger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StdoutAuditLogger{logger: logger.Named("audit")}
}

func (l *StdoutAuditLogger) Log(ctx context.Context, entry AuditLog) {
	l.logger.Info("audit event",
		zap.String("timestamp", time.Now().UTC().Format(time.RFC3339)),
		zap.String("action", entry.Action),
		zap.String("message", entry.Message),
		zap.Any("meta", entry.Meta),
	)
}
