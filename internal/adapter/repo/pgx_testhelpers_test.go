package repo

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type call struct {
	query string
	args  []any
}

// scriptedExecutor answers each query with a canned row, rows or error.
type scriptedExecutor struct {
	calls   []call
	row     [][]any
	rowErr  error
	rows    [][]any
	execTag pgconn.CommandTag
	err     error
}

func (s *scriptedExecutor) Exec(ctx context.Context, query string, args ...any) (pgconn.CommandTag, error) {
	s.calls = append(s.calls, call{query: query, args: args})
	return s.execTag, s.err
}

func (s *scriptedExecutor) QueryRow(ctx context.Context, query string, args ...any) pgx.Row {
	s.calls = append(s.calls, call{query: query, args: args})
	if s.rowErr != nil {
		return simpleRow{scan: func(dest ...any) error { return s.rowErr }}
	}
	if len(s.row) == 0 {
		return simpleRow{}
	}
	values := s.row[0]
	s.row = s.row[1:]
	return simpleRow{scan: func(dest ...any) error { return fill(dest, values) }}
}

func (s *scriptedExecutor) Query(ctx context.Context, query string, args ...any) (pgx.Rows, error) {
	s.calls = append(s.calls, call{query: query, args: args})
	if s.err != nil {
		return nil, s.err
	}
	return &sliceRows{values: s.rows, idx: -1}, nil
}

type simpleRow struct {
	scan func(dest ...any) error
}

func (r simpleRow) Scan(dest ...any) error {
	if r.scan == nil {
		return pgx.ErrNoRows
	}
	return r.scan(dest...)
}

type testRowsBase struct{}

func (testRowsBase) CommandTag() pgconn.CommandTag { return pgconn.CommandTag{} }

func (testRowsBase) Conn() *pgx.Conn { return nil }

func (testRowsBase) FieldDescriptions() []pgconn.FieldDescription { return nil }

func (testRowsBase) Values() ([]any, error) {
	return nil, fmt.Errorf("values not supported in test rows")
}

func (testRowsBase) RawValues() [][]byte { return nil }

type sliceRows struct {
	testRowsBase
	values [][]any
	idx    int
	closed bool
}

func (r *sliceRows) Close() { r.closed = true }

func (r *sliceRows) Err() error { return nil }

func (r *sliceRows) Next() bool {
	r.idx++
	return r.idx < len(r.values)
}

func (r *sliceRows) Scan(dest ...any) error {
	return fill(dest, r.values[r.idx])
}

func fill(dest []any, values []any) error {
	if len(dest) != len(values) {
		return fmt.Errorf("scan: %d destinations for %d values", len(dest), len(values))
	}
	for i, v := range values {
		switch d := dest[i].(type) {
		case *string:
			*d = v.(string)
		case *bool:
			*d = v.(bool)
		case *time.Time:
			*d = v.(time.Time)
		default:
			return fmt.Errorf("scan: unsupported destination %T", dest[i])
		}
	}
	return nil
}
