package contextutil_test

import (
	"context"
	"testing"

	"go-hrdata/internal/shared/contextutil"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestRequestID(t *testing.T) {
	ctx := contextutil.WithRequestID(context.Background(), "abc")

	assert.Equal(t, "abc", contextutil.GetRequestID(ctx))
	assert.Empty(t, contextutil.GetRequestID(context.Background()))
}

func TestGetLogger(t *testing.T) {
	scoped := zap.NewExample()
	fallback := zap.NewNop()

	assert.Same(t, scoped, contextutil.GetLogger(contextutil.WithLogger(context.Background(), scoped), fallback))
	assert.Same(t, fallback, contextutil.GetLogger(context.Background(), fallback))
	assert.NotNil(t, contextutil.GetLogger(context.Background(), nil))
}
