// Package expr provides the literal leaves a query expression tree binds
// native values through.
package expr

import (
	"io"

	"github.com/arkilian/sqltypes/pkg/backend"
	sqlerrors "github.com/arkilian/sqltypes/pkg/errors"
	"github.com/arkilian/sqltypes/pkg/sqltype"
)

// Literal is the type-erased view of a bound value, consumed by query trees.
type Literal interface {
	// SQLType returns the logical type the literal is bound as.
	SQLType() sqltype.Type

	// ToSQL writes the wire encoding of the value for backend b.
	ToSQL(b backend.Backend, out io.Writer) (backend.IsNull, error)

	// Metadata returns the wire metadata of the literal's type on b.
	Metadata(b backend.Backend) (backend.Metadata, error)

	// QueryID returns the static identity of the literal's type.
	QueryID() uint64
}

// Expression is a literal statically typed as the logical type L.
type Expression[L sqltype.Type] interface {
	Literal
	Tag() L
}

// Encoder encodes values of T. Bindings implement it.
type Encoder[T any] interface {
	ToSQL(b backend.Backend, v *T, out io.Writer) (backend.IsNull, error)
	Metadata(b backend.Backend) (backend.Metadata, error)
}

// Bound is a native value bound as a literal of logical type L. The value is
// either owned by the expression or borrowed from the caller for the duration
// of query construction; both encode identically.
type Bound[L sqltype.Type, T any] struct {
	value    *T
	borrowed bool
	enc      Encoder[T]
}

// Owned binds a copy of v.
func Owned[L sqltype.Type, T any](enc Encoder[T], v T) Bound[L, T] {
	return Bound[L, T]{value: &v, enc: enc}
}

// Borrowed binds the value v points to without copying it.
func Borrowed[L sqltype.Type, T any](enc Encoder[T], v *T) Bound[L, T] {
	return Bound[L, T]{value: v, borrowed: true, enc: enc}
}

// Tag returns the logical type tag.
func (e Bound[L, T]) Tag() L {
	var tag L
	return tag
}

// SQLType returns the logical type as a sqltype.Type.
func (e Bound[L, T]) SQLType() sqltype.Type {
	return sqltype.Of[L]()
}

// Value returns the bound value. It panics on a nil borrowed reference.
func (e Bound[L, T]) Value() T {
	return *e.value
}

// IsBorrowed reports whether the literal references caller-owned memory.
func (e Bound[L, T]) IsBorrowed() bool {
	return e.borrowed
}

// ToSQL encodes the bound value. A nil reference is NULL for nullable types
// and an encode error otherwise.
func (e Bound[L, T]) ToSQL(b backend.Backend, out io.Writer) (backend.IsNull, error) {
	if e.value == nil {
		if e.SQLType().Nullable() {
			return backend.Null, nil
		}
		return backend.NotNull, sqlerrors.NewEncodeError(sqlerrors.CodeUnsupportedValue,
			"expr: nil reference bound to "+sqltype.Name(e.SQLType()), nil)
	}
	return e.enc.ToSQL(b, e.value, out)
}

// Metadata returns the wire metadata of L on b.
func (e Bound[L, T]) Metadata(b backend.Backend) (backend.Metadata, error) {
	return e.enc.Metadata(b)
}

// QueryID returns the static identity of L.
func (e Bound[L, T]) QueryID() uint64 {
	return sqltype.QueryID[L]()
}
