package bootstrap

import (
	"context"
	"os"
	"syscall"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordingAudit struct {
	entries []AuditLog
}

func (r *recordingAudit) Log(_ context.Context, entry AuditLog) {
	r.entries = append(r.entries, entry)
}

func TestServe_ShutsDownOnSignal(t *testing.T) {
	gin.SetMode(gin.TestMode)
	audit := &recordingAudit{}
	quit := make(chan os.Signal, 1)
	quit <- syscall.SIGTERM

	err := serve(gin.New(), ServerConfig{Port: 0, ShutdownTimeout: time.Second}, audit, zap.NewNop(), quit)

	require.NoError(t, err)
	require.Len(t, audit.entries, 1)
	assert.Equal(t, "SERVER_SHUTDOWN", audit.entries[0].Action)
	assert.Equal(t, "terminated", audit.entries[0].Meta["signal"])
}
