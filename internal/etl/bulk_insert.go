package etl

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// BulkPoster sends one chunk of records to the API.
type BulkPoster interface {
	PostBulk(ctx context.Context, entity, idempotencyKey string, records []map[string]any) (int, error)
}

type BulkInsertParams struct {
	Bucket      string
	Location    string
	Filename    string
	Entity      string
	Header      bool
	ColumnMap   ColumnMap
	ChunkSize   int
	Parallelism int
	RunID       string
	WorkDir     string
}

type BulkInsertResult struct {
	Rows     int
	Chunks   int
	Inserted int
}

// IdempotencyKey identifies one chunk of one run so retried posts are
// replayed by the API instead of applied twice.
func IdempotencyKey(runID string, c Chunk) string {
	return fmt.Sprintf("%s:%d", runID, c.Offset)
}

// BulkInsert downloads the input file, splits it into chunks and posts them
// concurrently. The first failing chunk cancels the others and fails the run.
func BulkInsert(ctx context.Context, blob Blob, api BulkPoster, p BulkInsertParams, logger *zap.Logger) (BulkInsertResult, error) {
	var res BulkInsertResult
	if ListKey(p.Entity) == "" {
		return res, fmt.Errorf("unknown entity %q", p.Entity)
	}
	if p.Parallelism < 1 {
		p.Parallelism = 1
	}

	dir, err := os.MkdirTemp(p.WorkDir, "bulk-insert-")
	if err != nil {
		return res, fmt.Errorf("create work dir: %w", err)
	}
	defer os.RemoveAll(dir)

	key := ObjectKey(p.Location, p.Filename)
	path := filepath.Join(dir, filepath.Base(p.Filename))
	logger.Info("fetching input file", zap.String("bucket", p.Bucket), zap.String("key", key))
	if err := blob.Download(ctx, p.Bucket, key, path); err != nil {
		return res, err
	}

	src := Source{Path: path, Format: FormatOf(p.Filename), Header: p.Header}
	rows, err := src.Count()
	if err != nil {
		return res, err
	}
	chunks := Split(rows, p.ChunkSize)
	res.Rows, res.Chunks = rows, len(chunks)
	logger.Info("input split",
		zap.Int("rows", rows),
		zap.Int("chunks", len(chunks)),
		zap.Int("chunk_size", p.ChunkSize),
	)

	var inserted atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.Parallelism)
	for _, c := range chunks {
		c := c
		g.Go(func() error {
			header, data, err := src.Read(c)
			if err != nil {
				return fmt.Errorf("chunk %d-%d: %w", c.Offset, c.Offset+c.Limit, err)
			}
			n, err := api.PostBulk(gctx, p.Entity, IdempotencyKey(p.RunID, c), Records(header, data, p.ColumnMap))
			if err != nil {
				logger.Error("chunk upload failed",
					zap.Int("offset", c.Offset),
					zap.Int("limit", c.Limit),
					zap.Error(err),
				)
				return fmt.Errorf("chunk %d-%d: %w", c.Offset, c.Offset+c.Limit, err)
			}
			inserted.Add(int64(n))
			logger.Info("chunk uploaded",
				zap.Int("offset", c.Offset),
				zap.Int("limit", c.Limit),
				zap.Int("inserted", n),
			)
			return nil
		})
	}
	err = g.Wait()
	res.Inserted = int(inserted.Load())
	return res, err
}
