package etl

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/linkedin/goavro/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type BackupParams struct {
	Table    string
	Bucket   string
	Location string
	Filename string
	WorkDir  string
	PageRows int
}

// Backup streams every row of a table into one deflate-compressed Avro
// container file and uploads it. It returns the number of rows written.
func Backup(ctx context.Context, db *gorm.DB, blob Blob, p BackupParams, logger *zap.Logger) (int, error) {
	if err := ValidateTable(p.Table); err != nil {
		return 0, err
	}
	if p.PageRows < 1 {
		p.PageRows = 1000
	}

	cols, err := ColumnsOf(db.WithContext(ctx), p.Table)
	if err != nil {
		return 0, err
	}
	schema, err := Schema(p.Table, cols)
	if err != nil {
		return 0, err
	}
	logger.Debug("avro schema built", zap.String("table", p.Table), zap.String("schema", schema))

	dir, err := os.MkdirTemp(p.WorkDir, "backup-")
	if err != nil {
		return 0, fmt.Errorf("create work dir: %w", err)
	}
	defer os.RemoveAll(dir)
	path := filepath.Join(dir, filepath.Base(p.Filename))

	n, err := writeOCF(ctx, db, path, schema, cols, p)
	if err != nil {
		return 0, err
	}
	logger.Info("table exported", zap.String("table", p.Table), zap.Int("rows", n))

	key := ObjectKey(p.Location, p.Filename)
	if err := blob.Upload(ctx, p.Bucket, key, path); err != nil {
		return 0, err
	}
	logger.Info("backup uploaded", zap.String("bucket", p.Bucket), zap.String("key", key))
	return n, nil
}

func writeOCF(ctx context.Context, db *gorm.DB, path, schema string, cols []Column, p BackupParams) (int, error) {
	f, err := os.Create(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	w, err := goavro.NewOCFWriter(goavro.OCFConfig{
		W:               f,
		Schema:          schema,
		CompressionName: goavro.CompressionDeflateLabel,
	})
	if err != nil {
		return 0, fmt.Errorf("avro writer: %w", err)
	}

	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = c.Name
	}
	rows, err := db.WithContext(ctx).Table(p.Table).Select(names).Order("id").Rows()
	if err != nil {
		return 0, fmt.Errorf("query %s: %w", p.Table, err)
	}
	defer rows.Close()

	n := 0
	page := make([]any, 0, p.PageRows)
	values := make([]any, len(cols))
	ptrs := make([]any, len(cols))
	for i := range values {
		ptrs[i] = &values[i]
	}
	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return n, fmt.Errorf("scan %s: %w", p.Table, err)
		}
		rec := make(map[string]any, len(cols))
		for i, c := range cols {
			v, err := toAvro(c, values[i])
			if err != nil {
				return n, err
			}
			rec[c.Name] = v
		}
		page = append(page, rec)
		if len(page) == p.PageRows {
			if err := w.Append(page); err != nil {
				return n, fmt.Errorf("append avro block: %w", err)
			}
			n += len(page)
			page = page[:0]
		}
	}
	if err := rows.Err(); err != nil {
		return n, err
	}
	if len(page) > 0 {
		if err := w.Append(page); err != nil {
			return n, fmt.Errorf("append avro block: %w", err)
		}
		n += len(page)
	}
	return n, f.Sync()
}
