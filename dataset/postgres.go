package dataset

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"
)

// Querier is the subset of *pgxpool.Pool the Postgres source needs.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// PostgresSource reads every row of one Postgres table.
type PostgresSource struct {
	pool    Querier
	table   string
	closeFn func()
}

// OpenPostgres connects a pool to databaseURL and reads table from it.
func OpenPostgres(ctx context.Context, databaseURL, table string) (*PostgresSource, error) {
	if databaseURL == "" {
		return nil, eris.New("postgres: database url is required")
	}
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: connect")
	}
	return &PostgresSource{pool: pool, table: table, closeFn: pool.Close}, nil
}

// NewPostgresSource reads table through q. Close leaves q open.
func NewPostgresSource(q Querier, table string) *PostgresSource {
	return &PostgresSource{pool: q, table: table}
}

func (s *PostgresSource) Name() string { return "postgres:" + s.table }

func (s *PostgresSource) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresSource) Read(ctx context.Context) (*RawTable, error) {
	rows, err := s.pool.Query(ctx, "SELECT * FROM "+pgx.Identifier{s.table}.Sanitize())
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: select from %s", s.table)
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	table := &RawTable{Headers: make([]string, len(fields))}
	for i, f := range fields {
		table.Headers[i] = f.Name
	}

	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, eris.Wrap(err, "postgres: read row")
		}
		row := make([]string, len(values))
		for i, v := range values {
			row[i] = pgCellString(v)
		}
		table.Rows = append(table.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "postgres: iterate rows")
	}
	return table, nil
}

// pgCellString handles NUMERIC columns, which decode to pgtype.Numeric.
func pgCellString(v any) string {
	if n, ok := v.(pgtype.Numeric); ok {
		if !n.Valid {
			return ""
		}
		f, err := n.Float64Value()
		if err == nil && f.Valid {
			return cellString(f.Float64)
		}
	}
	return cellString(v)
}
