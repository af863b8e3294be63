package etl

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

// Chunk is the half-open data row range [Offset, Offset+Limit).
type Chunk struct {
	Offset int
	Limit  int
}

// Split cuts total data rows into chunks of at most size rows.
func Split(total, size int) []Chunk {
	if size < 1 {
		size = 1
	}
	chunks := make([]Chunk, 0, (total+size-1)/size)
	for off := 0; off < total; off += size {
		n := size
		if off+n > total {
			n = total - off
		}
		chunks = append(chunks, Chunk{Offset: off, Limit: n})
	}
	return chunks
}

// FormatOf picks the source format from the file extension.
func FormatOf(filename string) string {
	if strings.EqualFold(filepath.Ext(filename), ".xlsx") {
		return FormatXLSX
	}
	return FormatCSV
}

// Source is a tabular input file. When Header is set the first row names
// the columns and is not counted as data.
type Source struct {
	Path   string
	Format string
	Header bool
}

// Count returns the number of data rows.
func (s Source) Count() (int, error) {
	n := 0
	err := s.each(func(int, []string) (bool, error) {
		n++
		return true, nil
	})
	if err != nil {
		return 0, err
	}
	if s.Header && n > 0 {
		n--
	}
	return n, nil
}

// Read returns the header (nil without one) and the rows of chunk c.
func (s Source) Read(c Chunk) ([]string, [][]string, error) {
	var header []string
	rows := make([][]string, 0, c.Limit)
	first := 0
	if s.Header {
		first = 1
	}

	err := s.each(func(i int, rec []string) (bool, error) {
		if s.Header && i == 0 {
			header = append([]string(nil), rec...)
			return true, nil
		}
		data := i - first
		if data < c.Offset {
			return true, nil
		}
		if data >= c.Offset+c.Limit {
			return false, nil
		}
		rows = append(rows, append([]string(nil), rec...))
		return true, nil
	})
	if err != nil {
		return nil, nil, err
	}
	return header, rows, nil
}

// each calls fn for every physical row until fn returns false.
func (s Source) each(fn func(i int, rec []string) (bool, error)) error {
	switch s.Format {
	case FormatXLSX:
		return s.eachXLSX(fn)
	case FormatCSV, "":
		return s.eachCSV(fn)
	default:
		return fmt.Errorf("unsupported source format %q", s.Format)
	}
}

func (s Source) eachCSV(fn func(int, []string) (bool, error)) error {
	f, err := os.Open(s.Path)
	if err != nil {
		return err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	for i := 0; ; i++ {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read %s: %w", filepath.Base(s.Path), err)
		}
		more, err := fn(i, rec)
		if err != nil || !more {
			return err
		}
	}
}

func (s Source) eachXLSX(fn func(int, []string) (bool, error)) error {
	f, err := excelize.OpenFile(s.Path)
	if err != nil {
		return err
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	rows, err := f.Rows(sheet)
	if err != nil {
		return fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	defer rows.Close()

	for i := 0; rows.Next(); i++ {
		rec, err := rows.Columns()
		if err != nil {
			return err
		}
		more, err := fn(i, rec)
		if err != nil || !more {
			return err
		}
	}
	return rows.Error()
}
