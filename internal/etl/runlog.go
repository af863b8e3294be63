package etl

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go-hrdata/internal/config"
	"go-hrdata/internal/shared/logger"

	"go.uber.org/zap"
)

// RunLog tees a workflow's log lines into a local JSON file that is shipped
// to the log bucket when the run ends.
type RunLog struct {
	Logger *zap.Logger
	path   string
	close  func() error
}

func StartRunLog(base *zap.Logger, cfg config.LogConfig, dir, name string, now time.Time) (*RunLog, error) {
	if dir == "" {
		dir = os.TempDir()
	}
	path := filepath.Join(dir, fmt.Sprintf("%s_%s.log", name, now.Format("2006-01-02_15-04-05")))
	l, closeFn, err := logger.WithFile(base, cfg, path)
	if err != nil {
		return nil, err
	}
	return &RunLog{Logger: l, path: path, close: closeFn}, nil
}

// Key is the object key the log is uploaded under.
func (r *RunLog) Key() string {
	return "dags/" + filepath.Base(r.path)
}

// Finish closes the file, uploads it and removes the local copy. It is
// meant to run whatever the outcome of the workflow was.
func (r *RunLog) Finish(ctx context.Context, blob Blob, bucket string) error {
	log := r.Logger
	log.Info("uploading run log", zap.String("bucket", bucket), zap.String("key", r.Key()))
	_ = r.close()
	defer os.Remove(r.path)

	if err := blob.Upload(ctx, bucket, r.Key(), r.path); err != nil {
		return fmt.Errorf("upload run log: %w", err)
	}
	return nil
}
