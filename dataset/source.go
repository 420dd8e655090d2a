package dataset

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
)

// RawTable is a source's header row plus its data rows, all as strings.
type RawTable struct {
	Headers []string
	Rows    [][]string
}

// Source reads a launch table.
type Source interface {
	Name() string
	Read(ctx context.Context) (*RawTable, error)
	Close() error
}

// Kind selects a Source implementation.
type Kind string

const (
	KindCSV      Kind = "csv"
	KindXLSX     Kind = "xlsx"
	KindSQLite   Kind = "sqlite"
	KindPostgres Kind = "postgres"
)

// Spec locates a launch table.
type Spec struct {
	Kind        Kind
	Path        string // csv, xlsx and sqlite
	Sheet       string // xlsx; first sheet when empty
	Table       string // sqlite and postgres
	DatabaseURL string // postgres
}

// Open builds the Source described by spec. Callers Close it after Load.
func Open(ctx context.Context, spec Spec) (Source, error) {
	switch Kind(strings.ToLower(string(spec.Kind))) {
	case KindCSV, "":
		return NewCSVSource(spec.Path), nil
	case KindXLSX:
		return NewXLSXSource(spec.Path, spec.Sheet), nil
	case KindSQLite:
		src, err := OpenSQLite(spec.Path, spec.Table)
		if err != nil {
			return nil, err
		}
		return src, nil
	case KindPostgres:
		src, err := OpenPostgres(ctx, spec.DatabaseURL, spec.Table)
		if err != nil {
			return nil, err
		}
		return src, nil
	default:
		return nil, eris.Errorf("dataset: unknown source kind %q", spec.Kind)
	}
}

// tableFromRows splits the first row off as headers.
func tableFromRows(rows [][]string) (*RawTable, error) {
	if len(rows) == 0 {
		return nil, eris.New("no header row")
	}
	return &RawTable{Headers: rows[0], Rows: rows[1:]}, nil
}

// cellString renders a database value the way it would appear in a CSV.
func cellString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case []byte:
		return string(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case int32:
		return strconv.FormatInt(int64(x), 10)
	case int:
		return strconv.Itoa(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case bool:
		if x {
			return "1"
		}
		return "0"
	case time.Time:
		return x.Format(time.RFC3339)
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}
