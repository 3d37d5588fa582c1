// Package row materializes native values from the positional column slots of
// a result row.
package row

import (
	"database/sql"

	"github.com/arkilian/sqltypes/pkg/backend"
	sqlerrors "github.com/arkilian/sqltypes/pkg/errors"
)

// Cursor hands out the column slots of one row in declared column order.
// A slot with Valid == false is SQL NULL.
type Cursor interface {
	Take() sql.Null[[]byte]
}

// FromSQLRow builds a T by consuming column slots from a cursor.
type FromSQLRow[T any] interface {
	BuildFromRow(b backend.Backend, cur Cursor) (T, error)
}

// Queryable turns the row representation R into the final value T. For plain
// bindings R and T are the same type and Build is the identity.
type Queryable[R, T any] interface {
	FromSQLRow[R]
	Build(row R) T
}

// Func adapts a function to FromSQLRow.
type Func[T any] func(b backend.Backend, cur Cursor) (T, error)

// BuildFromRow calls f.
func (f Func[T]) BuildFromRow(b backend.Backend, cur Cursor) (T, error) {
	return f(b, cur)
}

// Load reads one row through q.
func Load[R, T any](b backend.Backend, cur Cursor, q Queryable[R, T]) (T, error) {
	r, err := q.BuildFromRow(b, cur)
	if err != nil {
		var zero T
		return zero, err
	}
	return q.Build(r), nil
}

type mapped[R, T any] struct {
	from  FromSQLRow[R]
	build func(R) T
}

func (m mapped[R, T]) BuildFromRow(b backend.Backend, cur Cursor) (R, error) {
	return m.from.BuildFromRow(b, cur)
}

func (m mapped[R, T]) Build(r R) T {
	return m.build(r)
}

// Map declares a staged construction: the row is first read as R, then built
// into T.
func Map[R, T any](from FromSQLRow[R], build func(R) T) Queryable[R, T] {
	return mapped[R, T]{from: from, build: build}
}

// Rows is a source of result rows, such as a driver result set.
type Rows interface {
	Next() bool
	Cursor() Cursor
	Err() error
}

// remainder is implemented by cursors that know how many slots are left.
type remainder interface {
	Remaining() int
}

// Collect materializes every row of rows. A row that leaves columns
// unconsumed means the declared shape does not match the result set.
func Collect[T any](b backend.Backend, rows Rows, from FromSQLRow[T]) ([]T, error) {
	var out []T
	for rows.Next() {
		cur := rows.Cursor()
		v, err := from.BuildFromRow(b, cur)
		if err != nil {
			return nil, err
		}
		if r, ok := cur.(remainder); ok && r.Remaining() > 0 {
			return nil, sqlerrors.Malformed("row: %d columns left unconsumed", r.Remaining())
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
