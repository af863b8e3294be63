package etl

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// ColumnMap keeps the columns at the given indexes and renames them.
type ColumnMap map[int]string

// ParseColumnMap reads {"0":"department"}. An empty string gives a nil map.
func ParseColumnMap(raw string) (ColumnMap, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	var m map[string]string
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		return nil, fmt.Errorf("column map: %w", err)
	}
	out := make(ColumnMap, len(m))
	for k, v := range m {
		i, err := strconv.Atoi(k)
		if err != nil || i < 0 {
			return nil, fmt.Errorf("column map: %q is not a column index", k)
		}
		if v == "" {
			return nil, fmt.Errorf("column map: empty name for column %d", i)
		}
		out[i] = v
	}
	return out, nil
}

func (m ColumnMap) indexes() []int {
	idx := make([]int, 0, len(m))
	for i := range m {
		idx = append(idx, i)
	}
	sort.Ints(idx)
	return idx
}

// Records turns rows into JSON objects. With a column map only mapped
// columns are kept; otherwise columns are named by header, or by index when
// there is no header. Each column gets one JSON type for the whole chunk.
func Records(header []string, rows [][]string, m ColumnMap) []map[string]any {
	cols := columnsOf(header, rows, m)
	kinds := make([]cellKind, len(cols))
	for j, col := range cols {
		kinds[j] = columnKind(rows, col.index)
	}

	out := make([]map[string]any, len(rows))
	for r, row := range rows {
		rec := make(map[string]any, len(cols))
		for j, col := range cols {
			rec[col.name] = cellValue(row, col.index, kinds[j])
		}
		out[r] = rec
	}
	return out
}

type column struct {
	index int
	name  string
}

func columnsOf(header []string, rows [][]string, m ColumnMap) []column {
	if len(m) > 0 {
		cols := make([]column, 0, len(m))
		for _, i := range m.indexes() {
			cols = append(cols, column{index: i, name: m[i]})
		}
		return cols
	}
	width := len(header)
	for _, row := range rows {
		width = max(width, len(row))
	}
	cols := make([]column, width)
	for i := range cols {
		name := strconv.Itoa(i)
		if i < len(header) && header[i] != "" {
			name = header[i]
		}
		cols[i] = column{index: i, name: name}
	}
	return cols
}

type cellKind int

const (
	kindInt cellKind = iota
	kindFloat
	kindString
)

// columnKind is the narrowest of int, float and string that every non-empty
// cell of column i parses as.
func columnKind(rows [][]string, i int) cellKind {
	kind := kindInt
	for _, row := range rows {
		if i >= len(row) {
			continue
		}
		v := strings.TrimSpace(row[i])
		if v == "" {
			continue
		}
		if kind == kindInt {
			if _, err := strconv.ParseInt(v, 10, 64); err == nil {
				continue
			}
			kind = kindFloat
		}
		if f, err := strconv.ParseFloat(v, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
			continue
		}
		return kindString
	}
	return kind
}

// cellValue converts a raw cell to its column's kind. Empty cells are null.
func cellValue(row []string, i int, kind cellKind) any {
	if i >= len(row) {
		return nil
	}
	v := strings.TrimSpace(row[i])
	if v == "" {
		return nil
	}
	switch kind {
	case kindInt:
		n, _ := strconv.ParseInt(v, 10, 64)
		return n
	case kindFloat:
		f, _ := strconv.ParseFloat(v, 64)
		return f
	default:
		return row[i]
	}
}
