package row

import (
	"github.com/arkilian/sqltypes/pkg/backend"
)

// Tuple2 is a row of two columns.
type Tuple2[A, B any] struct {
	First  A
	Second B
}

// Tuple3 is a row of three columns.
type Tuple3[A, B, C any] struct {
	First  A
	Second B
	Third  C
}

// Pair reads a then b, each consuming the next slot in order.
func Pair[A, B any](a FromSQLRow[A], b FromSQLRow[B]) FromSQLRow[Tuple2[A, B]] {
	return Func[Tuple2[A, B]](func(be backend.Backend, cur Cursor) (Tuple2[A, B], error) {
		var t Tuple2[A, B]
		var err error
		if t.First, err = a.BuildFromRow(be, cur); err != nil {
			return Tuple2[A, B]{}, err
		}
		if t.Second, err = b.BuildFromRow(be, cur); err != nil {
			return Tuple2[A, B]{}, err
		}
		return t, nil
	})
}

// Triple reads a, b then c.
func Triple[A, B, C any](a FromSQLRow[A], b FromSQLRow[B], c FromSQLRow[C]) FromSQLRow[Tuple3[A, B, C]] {
	return Func[Tuple3[A, B, C]](func(be backend.Backend, cur Cursor) (Tuple3[A, B, C], error) {
		var t Tuple3[A, B, C]
		var err error
		if t.First, err = a.BuildFromRow(be, cur); err != nil {
			return Tuple3[A, B, C]{}, err
		}
		if t.Second, err = b.BuildFromRow(be, cur); err != nil {
			return Tuple3[A, B, C]{}, err
		}
		if t.Third, err = c.BuildFromRow(be, cur); err != nil {
			return Tuple3[A, B, C]{}, err
		}
		return t, nil
	})
}
