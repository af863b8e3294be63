package etl

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/linkedin/goavro/v2"
	"gorm.io/gorm"
)

const (
	avroLong      = "long"
	avroDouble    = "double"
	avroBoolean   = "boolean"
	avroString    = "string"
	avroTimestamp = "long.timestamp-micros"
)

// Tables lists the tables the backup and restore workflows accept.
var Tables = map[string]bool{"department": true, "job": true, "user": true}

func ValidateTable(table string) error {
	if !Tables[table] {
		return fmt.Errorf("unknown table %q", table)
	}
	return nil
}

// Column is one table column and the Avro type its values are stored as.
type Column struct {
	Name     string
	AvroType string
}

// ColumnsOf reflects the columns of table in their declared order.
func ColumnsOf(db *gorm.DB, table string) ([]Column, error) {
	types, err := db.Migrator().ColumnTypes(table)
	if err != nil {
		return nil, fmt.Errorf("reflect %s columns: %w", table, err)
	}
	if len(types) == 0 {
		return nil, fmt.Errorf("table %s has no columns", table)
	}
	cols := make([]Column, len(types))
	for i, ct := range types {
		cols[i] = Column{Name: ct.Name(), AvroType: AvroType(ct.DatabaseTypeName())}
	}
	return cols, nil
}

// AvroType maps a database type name to the Avro type used for it.
func AvroType(dbType string) string {
	t := strings.ToLower(dbType)
	switch {
	case strings.Contains(t, "timestamp"), strings.Contains(t, "datetime"), t == "date":
		return avroTimestamp
	case strings.Contains(t, "int"), strings.Contains(t, "serial"):
		return avroLong
	case strings.HasPrefix(t, "bool"):
		return avroBoolean
	case strings.Contains(t, "float"), strings.Contains(t, "double"),
		strings.Contains(t, "real"), strings.Contains(t, "numeric"), strings.Contains(t, "decimal"):
		return avroDouble
	default:
		return avroString
	}
}

// Schema builds a record schema named after table where every field is a
// nullable union.
func Schema(table string, cols []Column) (string, error) {
	fields := make([]map[string]any, len(cols))
	for i, c := range cols {
		var typ any = c.AvroType
		if c.AvroType == avroTimestamp {
			typ = map[string]string{"type": "long", "logicalType": "timestamp-micros"}
		}
		fields[i] = map[string]any{
			"name":    c.Name,
			"type":    []any{"null", typ},
			"default": nil,
		}
	}
	raw, err := json.Marshal(map[string]any{
		"type":   "record",
		"name":   table,
		"fields": fields,
	})
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

// toAvro converts a scanned column value to its union form.
func toAvro(c Column, v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	if b, ok := v.([]byte); ok {
		v = string(b)
	}

	switch c.AvroType {
	case avroLong:
		switch x := v.(type) {
		case int64:
			return goavro.Union(avroLong, x), nil
		case int:
			return goavro.Union(avroLong, int64(x)), nil
		case int32:
			return goavro.Union(avroLong, int64(x)), nil
		case string:
			n, err := strconv.ParseInt(x, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("column %s: %w", c.Name, err)
			}
			return goavro.Union(avroLong, n), nil
		}
	case avroDouble:
		switch x := v.(type) {
		case float64:
			return goavro.Union(avroDouble, x), nil
		case float32:
			return goavro.Union(avroDouble, float64(x)), nil
		case int64:
			return goavro.Union(avroDouble, float64(x)), nil
		case string:
			f, err := strconv.ParseFloat(x, 64)
			if err != nil {
				return nil, fmt.Errorf("column %s: %w", c.Name, err)
			}
			return goavro.Union(avroDouble, f), nil
		}
	case avroBoolean:
		switch x := v.(type) {
		case bool:
			return goavro.Union(avroBoolean, x), nil
		case int64:
			return goavro.Union(avroBoolean, x != 0), nil
		case string:
			b, err := strconv.ParseBool(x)
			if err != nil {
				return nil, fmt.Errorf("column %s: %w", c.Name, err)
			}
			return goavro.Union(avroBoolean, b), nil
		}
	case avroTimestamp:
		switch x := v.(type) {
		case time.Time:
			return goavro.Union(avroTimestamp, x.UTC()), nil
		case string:
			t, err := parseTimestamp(x)
			if err != nil {
				return nil, fmt.Errorf("column %s: %w", c.Name, err)
			}
			return goavro.Union(avroTimestamp, t), nil
		}
	case avroString:
		switch x := v.(type) {
		case string:
			return goavro.Union(avroString, x), nil
		case time.Time:
			return goavro.Union(avroString, x.UTC().Format(time.RFC3339Nano)), nil
		default:
			return goavro.Union(avroString, fmt.Sprint(x)), nil
		}
	}
	return nil, fmt.Errorf("column %s: cannot store %T as %s", c.Name, v, c.AvroType)
}

// fromAvro unwraps a decoded union value.
func fromAvro(v any) any {
	m, ok := v.(map[string]any)
	if !ok || len(m) != 1 {
		return v
	}
	for _, inner := range m {
		return inner
	}
	return nil
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

func parseTimestamp(s string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised timestamp %q", s)
}
