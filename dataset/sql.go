package dataset

import (
	"context"
	"database/sql"
	"strings"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"
)

// SQLSource reads every row of one table through database/sql.
type SQLSource struct {
	db    *sql.DB
	name  string
	table string
	owned bool
}

// OpenSQLite opens the SQLite database at path and reads table from it.
func OpenSQLite(path, table string) (*SQLSource, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		db.Close()
		return nil, eris.Wrap(err, "sqlite: exec PRAGMA busy_timeout")
	}
	return &SQLSource{db: db, name: "sqlite:" + path + "/" + table, table: table, owned: true}, nil
}

// NewSQLSource reads table from an already open database. Close does not
// close db.
func NewSQLSource(db *sql.DB, table string) *SQLSource {
	return &SQLSource{db: db, name: "sql:" + table, table: table}
}

func (s *SQLSource) Name() string { return s.name }

func (s *SQLSource) Close() error {
	if !s.owned {
		return nil
	}
	return s.db.Close()
}

func (s *SQLSource) Read(ctx context.Context) (*RawTable, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT * FROM "+quoteIdent(s.table))
	if err != nil {
		return nil, eris.Wrapf(err, "sql: select from %s", s.table)
	}
	defer rows.Close()

	headers, err := rows.Columns()
	if err != nil {
		return nil, eris.Wrap(err, "sql: columns")
	}

	table := &RawTable{Headers: headers}
	values := make([]any, len(headers))
	ptrs := make([]any, len(headers))
	for i := range values {
		ptrs[i] = &values[i]
	}

	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return nil, eris.Wrap(err, "sql: scan row")
		}
		row := make([]string, len(values))
		for i, v := range values {
			row[i] = cellString(v)
		}
		table.Rows = append(table.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "sql: iterate rows")
	}
	return table, nil
}

// quoteIdent quotes a table name for SQLite.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
