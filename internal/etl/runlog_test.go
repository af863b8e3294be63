package etl_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go-hrdata/internal/config"
	"go-hrdata/internal/etl"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRunLog_UploadsAndRemovesFile(t *testing.T) {
	dir := t.TempDir()
	blob := newDirBlob(t)
	started := time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)

	rl, err := etl.StartRunLog(zap.NewNop(), config.LogConfig{Level: "info"}, dir, "bulk_insert", started)
	require.NoError(t, err)
	assert.Equal(t, "dags/bulk_insert_2024-05-06_07-08-09.log", rl.Key())

	rl.Logger.Info("chunk uploaded", zap.Int("offset", 0))
	require.NoError(t, rl.Finish(context.Background(), blob, "etl-logs"))

	assert.Equal(t, []string{"etl-logs/" + rl.Key()}, blob.uploaded)
	uploaded, err := os.ReadFile(filepath.Join(blob.root, "etl-logs", "dags", "bulk_insert_2024-05-06_07-08-09.log"))
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(uploaded), `"chunk uploaded"`))

	_, err = os.Stat(filepath.Join(dir, "bulk_insert_2024-05-06_07-08-09.log"))
	assert.True(t, os.IsNotExist(err))
}
