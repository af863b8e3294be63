package etl

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/linkedin/goavro/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type RestoreParams struct {
	Table     string
	Bucket    string
	Location  string
	Filename  string
	WorkDir   string
	BatchSize int
}

// Restore replaces the content of a table with the records of an Avro
// backup. Deleting and inserting happen in one transaction, so any failure
// leaves the table untouched. It returns the number of rows restored.
func Restore(ctx context.Context, db *gorm.DB, blob Blob, p RestoreParams, logger *zap.Logger) (int, error) {
	if err := ValidateTable(p.Table); err != nil {
		return 0, err
	}
	if p.BatchSize < 1 {
		p.BatchSize = 500
	}

	dir, err := os.MkdirTemp(p.WorkDir, "restore-")
	if err != nil {
		return 0, fmt.Errorf("create work dir: %w", err)
	}
	defer os.RemoveAll(dir)

	key := ObjectKey(p.Location, p.Filename)
	path := filepath.Join(dir, filepath.Base(p.Filename))
	if err := blob.Download(ctx, p.Bucket, key, path); err != nil {
		return 0, err
	}

	records, err := readOCF(path)
	if err != nil {
		return 0, err
	}
	logger.Info("backup read", zap.String("key", key), zap.Int("records", len(records)))

	cols, err := ColumnsOf(db.WithContext(ctx), p.Table)
	if err != nil {
		return 0, err
	}
	known := make(map[string]bool, len(cols))
	for _, c := range cols {
		known[c.Name] = true
	}
	for _, rec := range records {
		for name := range rec {
			if !known[name] {
				return 0, fmt.Errorf("backup column %q does not exist in %s", name, p.Table)
			}
		}
	}

	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM ?", clause.Table{Name: p.Table}).Error; err != nil {
			return fmt.Errorf("clear %s: %w", p.Table, err)
		}
		logger.Info("table cleared", zap.String("table", p.Table))

		if len(records) > 0 {
			if err := tx.Table(p.Table).CreateInBatches(&records, p.BatchSize).Error; err != nil {
				return fmt.Errorf("insert into %s: %w", p.Table, err)
			}
		}
		if known["id"] && tx.Dialector.Name() == "postgres" {
			if err := resetSequence(tx, p.Table); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		logger.Error("restore rolled back", zap.String("table", p.Table), zap.Error(err))
		return 0, err
	}

	logger.Info("table restored", zap.String("table", p.Table), zap.Int("rows", len(records)))
	return len(records), nil
}

func readOCF(path string) ([]map[string]any, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r, err := goavro.NewOCFReader(f)
	if err != nil {
		return nil, fmt.Errorf("avro reader: %w", err)
	}
	var records []map[string]any
	for r.Scan() {
		datum, err := r.Read()
		if err != nil {
			return nil, fmt.Errorf("read avro record: %w", err)
		}
		m, ok := datum.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("avro record is %T, want a record", datum)
		}
		rec := make(map[string]any, len(m))
		for k, v := range m {
			rec[k] = fromAvro(v)
		}
		records = append(records, rec)
	}
	if err := r.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

// resetSequence moves the id sequence past the restored ids.
func resetSequence(tx *gorm.DB, table string) error {
	quoted := fmt.Sprintf("%q", table)
	err := tx.Exec(
		"SELECT setval(pg_get_serial_sequence(?, 'id'), COALESCE((SELECT MAX(id) FROM ?), 0) + 1, false)",
		quoted, clause.Table{Name: table},
	).Error
	if err != nil {
		return fmt.Errorf("reset %s id sequence: %w", table, err)
	}
	return nil
}
