// Package bind ties a logical type to a native Go type. Register produces, in
// one declaration, the wire metadata, encoder, decoder, row materializer and
// expression binders of the pair, plus the same set for its Nullable form.
package bind

import (
	"database/sql"
	"errors"
	"fmt"
	"io"

	"github.com/arkilian/sqltypes/pkg/backend"
	sqlerrors "github.com/arkilian/sqltypes/pkg/errors"
	"github.com/arkilian/sqltypes/pkg/expr"
	"github.com/arkilian/sqltypes/pkg/row"
	"github.com/arkilian/sqltypes/pkg/sqltype"
)

// Binding is the registered pairing of logical type L with native type T.
type Binding[L sqltype.NotNull, T any] struct {
	caps     []backend.Capability
	byID     map[backend.ID]backend.Capability
	nullable *NullableBinding[L, T]
}

// Register declares the binding (L, T) for the given backend capabilities.
// The debug backend is always included. Capabilities of backends that are not
// compiled in are skipped. Registering a backend twice, or with metadata of
// another backend, is a programming error and panics.
func Register[L sqltype.NotNull, T any](caps ...backend.Capability) *Binding[L, T] {
	bd := &Binding[L, T]{byID: make(map[backend.ID]backend.Capability, len(caps)+1)}
	name := sqltype.Name(sqltype.Of[L]())

	for _, c := range append([]backend.Capability{backend.DebugCapability}, caps...) {
		if !c.Enabled {
			continue
		}
		if c.Backend == nil {
			panic(fmt.Sprintf("bind: nil backend registered for %s", name))
		}
		id := c.Backend.ID()
		if _, dup := bd.byID[id]; dup {
			panic(fmt.Sprintf("bind: backend %s registered twice for %s", id, name))
		}
		if err := c.Backend.CheckMetadata(c.Metadata); err != nil {
			panic(fmt.Sprintf("bind: invalid metadata for %s on %s: %v", name, id, err))
		}
		bd.caps = append(bd.caps, c)
		bd.byID[id] = c
	}

	bd.nullable = &NullableBinding[L, T]{inner: bd}
	return bd
}

// Tag returns the logical type tag.
func (bd *Binding[L, T]) Tag() L {
	var tag L
	return tag
}

// SQLType returns the logical type as a sqltype.Type.
func (bd *Binding[L, T]) SQLType() sqltype.Type {
	return sqltype.Of[L]()
}

// NativeName returns the Go type name of T.
func (bd *Binding[L, T]) NativeName() string {
	var zero T
	return fmt.Sprintf("%T", zero)
}

// Capabilities returns the enabled backend capabilities, debug first.
func (bd *Binding[L, T]) Capabilities() []backend.Capability {
	return append([]backend.Capability(nil), bd.caps...)
}

// Backends returns the backends the binding can be used with.
func (bd *Binding[L, T]) Backends() []backend.Backend {
	out := make([]backend.Backend, len(bd.caps))
	for i, c := range bd.caps {
		out[i] = c.Backend
	}
	return out
}

// Supports reports whether b is registered for this binding.
func (bd *Binding[L, T]) Supports(b backend.Backend) bool {
	if b == nil {
		return false
	}
	_, ok := bd.byID[b.ID()]
	return ok
}

// Nullable returns the binding of (Nullable[L], T) and (Nullable[L], sql.Null[T]).
func (bd *Binding[L, T]) Nullable() *NullableBinding[L, T] {
	return bd.nullable
}

func (bd *Binding[L, T]) capability(b backend.Backend) (backend.Capability, error) {
	if b == nil {
		return backend.Capability{}, sqlerrors.NewRegistrationError(sqlerrors.CodeBackendNotBound, "bind: nil backend")
	}
	c, ok := bd.byID[b.ID()]
	if !ok {
		return backend.Capability{}, sqlerrors.NewRegistrationError(sqlerrors.CodeBackendNotBound,
			fmt.Sprintf("bind: %s is not registered for %s", b.ID(), sqltype.Name(bd.SQLType())))
	}
	return c, nil
}

// Metadata returns the wire metadata of L on b.
func (bd *Binding[L, T]) Metadata(b backend.Backend) (backend.Metadata, error) {
	c, err := bd.capability(b)
	if err != nil {
		return nil, err
	}
	return c.Metadata, nil
}

// ToSQL encodes *v for b and writes it to out in a single Write. Nothing is
// written when encoding fails or the value is NULL. A nil v is rejected; NULL
// goes through the nullable binding.
func (bd *Binding[L, T]) ToSQL(b backend.Backend, v *T, out io.Writer) (backend.IsNull, error) {
	c, err := bd.capability(b)
	if err != nil {
		return backend.NotNull, err
	}
	if v == nil {
		return backend.NotNull, sqlerrors.NewEncodeError(sqlerrors.CodeUnsupportedValue,
			fmt.Sprintf("%s: nil %s value", b.ID(), sqltype.Name(bd.SQLType())), nil).
			WithDetails(bd.details(b))
	}
	buf, isNull, err := b.AppendValue(nil, c.Metadata, *v)
	if err != nil {
		return backend.NotNull, bd.encodeError(b, err)
	}
	if isNull == backend.Null || len(buf) == 0 {
		return isNull, nil
	}
	n, err := out.Write(buf)
	if err == nil && n < len(buf) {
		err = io.ErrShortWrite
	}
	if err != nil {
		return backend.NotNull, sqlerrors.NewEncodeError(sqlerrors.CodeSinkWrite,
			fmt.Sprintf("%s: writing %s", b.ID(), sqltype.Name(bd.SQLType())), err).
			WithDetails(bd.details(b))
	}
	return backend.NotNull, nil
}

// FromSQL decodes a column slot. An absent slot is a NULL violation.
func (bd *Binding[L, T]) FromSQL(b backend.Backend, raw sql.Null[[]byte]) (T, error) {
	var out T
	bytes, err := NotNone(raw)
	if err != nil {
		return out, err
	}
	c, err := bd.capability(b)
	if err != nil {
		return out, err
	}
	if err := b.DecodeValue(bytes, c.Metadata, &out); err != nil {
		var zero T
		return zero, bd.decodeError(b, err)
	}
	return out, nil
}

// BuildFromRow takes exactly one slot from cur and decodes it.
func (bd *Binding[L, T]) BuildFromRow(b backend.Backend, cur row.Cursor) (T, error) {
	return bd.FromSQL(b, cur.Take())
}

// Build is the identity: the row representation of T is T.
func (bd *Binding[L, T]) Build(r T) T {
	return r
}

// AsExpression binds v by value.
func (bd *Binding[L, T]) AsExpression(v T) expr.Bound[L, T] {
	return expr.Owned[L, T](bd, v)
}

// AsExpressionRef binds the value v points to.
func (bd *Binding[L, T]) AsExpressionRef(v *T) expr.Bound[L, T] {
	return expr.Borrowed[L, T](bd, v)
}

// EncodeAny is ToSQL for callers holding an untyped value.
func (bd *Binding[L, T]) EncodeAny(b backend.Backend, v any, out io.Writer) (backend.IsNull, error) {
	t, ok := v.(T)
	if !ok {
		return backend.NotNull, sqlerrors.Unsupported(fmt.Sprintf("%s %s", b.ID(), sqltype.Name(bd.SQLType())), v)
	}
	return bd.ToSQL(b, &t, out)
}

// DecodeAny is FromSQL returning an untyped value.
func (bd *Binding[L, T]) DecodeAny(b backend.Backend, raw sql.Null[[]byte]) (any, error) {
	return bd.FromSQL(b, raw)
}

// NotNone unwraps a slot, failing with a NULL violation when it is absent.
func NotNone(raw sql.Null[[]byte]) ([]byte, error) {
	if !raw.Valid {
		return nil, sqlerrors.NewUnexpectedNull()
	}
	return raw.V, nil
}

// details identifies the binding and backend an error came from.
func (bd *Binding[L, T]) details(b backend.Backend) map[string]interface{} {
	return map[string]interface{}{
		"backend": string(b.ID()),
		"type":    sqltype.Name(bd.SQLType()),
		"native":  bd.NativeName(),
	}
}

func (bd *Binding[L, T]) encodeError(b backend.Backend, err error) error {
	if typed, ok := err.(*sqlerrors.Error); ok {
		return typed.WithDetails(bd.details(b))
	}
	var typed *sqlerrors.Error
	if errors.As(err, &typed) {
		return err
	}
	return sqlerrors.NewEncodeError(sqlerrors.CodeUnsupportedValue, string(b.ID())+": encode failed", err).
		WithDetails(bd.details(b))
}

func (bd *Binding[L, T]) decodeError(b backend.Backend, err error) error {
	if typed, ok := err.(*sqlerrors.Error); ok {
		return typed.WithDetails(bd.details(b))
	}
	var typed *sqlerrors.Error
	if errors.As(err, &typed) {
		return err
	}
	return sqlerrors.NewDecodeError(sqlerrors.CodeMalformedBytes, string(b.ID())+": decode failed", err).
		WithDetails(bd.details(b))
}
