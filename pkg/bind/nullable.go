package bind

import (
	"database/sql"
	"io"

	"github.com/arkilian/sqltypes/pkg/backend"
	"github.com/arkilian/sqltypes/pkg/expr"
	"github.com/arkilian/sqltypes/pkg/row"
	"github.com/arkilian/sqltypes/pkg/sqltype"
)

// NullableBinding is the binding of Nullable[L]. It is derived from the
// binding of L and never declared on its own.
type NullableBinding[L sqltype.NotNull, T any] struct {
	inner *Binding[L, T]
}

// Inner returns the binding of L.
func (nb *NullableBinding[L, T]) Inner() *Binding[L, T] {
	return nb.inner
}

// Tag returns the Nullable[L] tag.
func (nb *NullableBinding[L, T]) Tag() sqltype.Nullable[L] {
	return sqltype.Nullable[L]{}
}

// SQLType returns Nullable[L] as a sqltype.Type.
func (nb *NullableBinding[L, T]) SQLType() sqltype.Type {
	return sqltype.Nullable[L]{}
}

// Metadata returns the metadata of L; nullability is not part of it.
func (nb *NullableBinding[L, T]) Metadata(b backend.Backend) (backend.Metadata, error) {
	return nb.inner.Metadata(b)
}

// ToSQL encodes a present value in a nullable context.
func (nb *NullableBinding[L, T]) ToSQL(b backend.Backend, v *T, out io.Writer) (backend.IsNull, error) {
	return nb.inner.ToSQL(b, v, out)
}

// ToSQLOpt encodes an optional value. An absent value reports Null and
// writes nothing.
func (nb *NullableBinding[L, T]) ToSQLOpt(b backend.Backend, v *sql.Null[T], out io.Writer) (backend.IsNull, error) {
	if v == nil || !v.Valid {
		if _, err := nb.inner.capability(b); err != nil {
			return backend.Null, err
		}
		return backend.Null, nil
	}
	return nb.inner.ToSQL(b, &v.V, out)
}

// FromSQL decodes a slot; an absent slot yields an invalid sql.Null.
func (nb *NullableBinding[L, T]) FromSQL(b backend.Backend, raw sql.Null[[]byte]) (sql.Null[T], error) {
	if !raw.Valid {
		if _, err := nb.inner.capability(b); err != nil {
			return sql.Null[T]{}, err
		}
		return sql.Null[T]{}, nil
	}
	v, err := nb.inner.FromSQL(b, raw)
	if err != nil {
		return sql.Null[T]{}, err
	}
	return sql.Null[T]{V: v, Valid: true}, nil
}

// BuildFromRow takes exactly one slot from cur.
func (nb *NullableBinding[L, T]) BuildFromRow(b backend.Backend, cur row.Cursor) (sql.Null[T], error) {
	return nb.FromSQL(b, cur.Take())
}

// Build is the identity.
func (nb *NullableBinding[L, T]) Build(r sql.Null[T]) sql.Null[T] {
	return r
}

// AsExpression binds v by value as Nullable[L].
func (nb *NullableBinding[L, T]) AsExpression(v T) expr.Bound[sqltype.Nullable[L], T] {
	return expr.Owned[sqltype.Nullable[L], T](nb, v)
}

// AsExpressionRef binds the value v points to as Nullable[L].
func (nb *NullableBinding[L, T]) AsExpressionRef(v *T) expr.Bound[sqltype.Nullable[L], T] {
	return expr.Borrowed[sqltype.Nullable[L], T](nb, v)
}

// AsExpressionOpt binds an optional value by value.
func (nb *NullableBinding[L, T]) AsExpressionOpt(v sql.Null[T]) expr.Bound[sqltype.Nullable[L], sql.Null[T]] {
	return expr.Owned[sqltype.Nullable[L], sql.Null[T]](optEncoder[L, T]{nb}, v)
}

// AsExpressionOptRef binds the optional value v points to.
func (nb *NullableBinding[L, T]) AsExpressionOptRef(v *sql.Null[T]) expr.Bound[sqltype.Nullable[L], sql.Null[T]] {
	return expr.Borrowed[sqltype.Nullable[L], sql.Null[T]](optEncoder[L, T]{nb}, v)
}

type optEncoder[L sqltype.NotNull, T any] struct {
	nb *NullableBinding[L, T]
}

func (o optEncoder[L, T]) ToSQL(b backend.Backend, v *sql.Null[T], out io.Writer) (backend.IsNull, error) {
	return o.nb.ToSQLOpt(b, v, out)
}

func (o optEncoder[L, T]) Metadata(b backend.Backend) (backend.Metadata, error) {
	return o.nb.Metadata(b)
}
