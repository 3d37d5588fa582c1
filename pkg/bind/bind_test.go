package bind_test

import (
	"bytes"
	"database/sql"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/arkilian/sqltypes/pkg/backend"
	"github.com/arkilian/sqltypes/pkg/backend/pg"
	"github.com/arkilian/sqltypes/pkg/backend/sqlite"
	"github.com/arkilian/sqltypes/pkg/bind"
	sqlerrors "github.com/arkilian/sqltypes/pkg/errors"
	"github.com/arkilian/sqltypes/pkg/expr"
	"github.com/arkilian/sqltypes/pkg/row"
	"github.com/arkilian/sqltypes/pkg/sqltype"
	"github.com/jackc/pgx/v5/pgtype"
)

var (
	integer = bind.Register[sqltype.Integer, int32](
		sqlite.Meta(sqlite.Integer),
		pg.Meta(pgtype.Int4OID, pgtype.Int4ArrayOID),
	)
	text = bind.Register[sqltype.Text, string](
		sqlite.Meta(sqlite.Text),
	)
)

// countingWriter records every Write call.
type countingWriter struct {
	bytes.Buffer
	calls int
}

func (w *countingWriter) Write(p []byte) (int, error) {
	w.calls++
	return w.Buffer.Write(p)
}

type failingWriter struct{ n int }

func (w failingWriter) Write(p []byte) (int, error) {
	if w.n > 0 {
		return w.n, nil
	}
	return 0, io.ErrClosedPipe
}

func TestToSQL_Debug(t *testing.T) {
	v := int32(42)
	var out countingWriter
	isNull, err := integer.ToSQL(backend.DebugBackend, &v, &out)
	if err != nil {
		t.Fatalf("ToSQL failed: %v", err)
	}
	if isNull != backend.NotNull {
		t.Error("expected NotNull")
	}
	if out.Len() != 0 || out.calls != 0 {
		t.Errorf("expected nothing written, got %d bytes in %d calls", out.Len(), out.calls)
	}
}

func TestToSQL_SingleWrite(t *testing.T) {
	v := int32(42)
	var out countingWriter
	if _, err := integer.ToSQL(pg.Default, &v, &out); err != nil {
		t.Fatalf("ToSQL failed: %v", err)
	}
	if out.calls != 1 {
		t.Errorf("expected one write, got %d", out.calls)
	}
	if !bytes.Equal(out.Bytes(), []byte{0, 0, 0, 42}) {
		t.Errorf("expected int4 42, got %x", out.Bytes())
	}
}

func TestToSQL_SinkFailure(t *testing.T) {
	v := int32(1)
	for _, w := range []io.Writer{failingWriter{}, failingWriter{n: 1}} {
		_, err := integer.ToSQL(pg.Default, &v, w)
		if sqlerrors.GetCode(err) != sqlerrors.CodeSinkWrite {
			t.Errorf("expected sink write error, got %v", err)
		}
		if !sqlerrors.IsRetryable(err) {
			t.Error("expected sink failures to be retryable")
		}
	}
}

func TestToSQL_NilValue(t *testing.T) {
	var out countingWriter
	isNull, err := integer.ToSQL(pg.Default, nil, &out)
	if sqlerrors.GetCategory(err) != sqlerrors.ErrCategoryEncode || sqlerrors.GetCode(err) != sqlerrors.CodeUnsupportedValue {
		t.Fatalf("expected ENCODE/UNSUPPORTED_VALUE, got %v", err)
	}
	if isNull != backend.NotNull || out.calls != 0 {
		t.Errorf("expected NotNull with no write, got %v and %d calls", isNull, out.calls)
	}
	if _, err := integer.Nullable().ToSQL(sqlite.Default, nil, &out); sqlerrors.GetCode(err) != sqlerrors.CodeUnsupportedValue {
		t.Errorf("expected the nullable binding to reject a nil value too, got %v", err)
	}
}

func TestErrors_CarryBindingDetails(t *testing.T) {
	var typed *sqlerrors.Error

	_, err := integer.FromSQL(pg.Default, row.Present([]byte{1, 2}))
	if !errors.As(err, &typed) {
		t.Fatalf("expected a typed error, got %v", err)
	}
	if typed.Details["backend"] != "postgres" || typed.Details["type"] != "Integer" || typed.Details["native"] != "int32" {
		t.Errorf("unexpected decode details %v", typed.Details)
	}

	v := int32(1)
	_, err = integer.ToSQL(pg.Default, &v, failingWriter{})
	if !errors.As(err, &typed) || typed.Details["backend"] != "postgres" {
		t.Errorf("expected sink failure details, got %v", err)
	}
}

func TestToSQL_EmptyValueWritesNothing(t *testing.T) {
	v := ""
	var out countingWriter
	isNull, err := text.ToSQL(sqlite.Default, &v, &out)
	if err != nil {
		t.Fatalf("ToSQL failed: %v", err)
	}
	if isNull != backend.NotNull || out.calls != 0 {
		t.Errorf("expected NotNull with no write, got %v and %d calls", isNull, out.calls)
	}
}

func TestFromSQL_AbsentSlot(t *testing.T) {
	_, err := integer.FromSQL(sqlite.Default, row.Absent())
	if !sqlerrors.IsNullViolation(err) {
		t.Fatalf("expected NULL violation, got %v", err)
	}
	if !errors.Is(err, sqlerrors.ErrUnexpectedNull) {
		t.Error("expected error to match ErrUnexpectedNull")
	}
	if !strings.Contains(err.Error(), sqlerrors.UnexpectedNullMessage) {
		t.Errorf("expected message %q, got %q", sqlerrors.UnexpectedNullMessage, err.Error())
	}
}

func TestFromSQL_PresentSlot(t *testing.T) {
	for _, b := range []backend.Backend{pg.Default, sqlite.Default} {
		v := int32(42)
		var out bytes.Buffer
		if _, err := integer.ToSQL(b, &v, &out); err != nil {
			t.Fatalf("%s: ToSQL failed: %v", b.ID(), err)
		}
		got, err := integer.FromSQL(b, row.Present(out.Bytes()))
		if err != nil || got != 42 {
			t.Errorf("%s: expected 42, got %d (%v)", b.ID(), got, err)
		}
	}
}

func TestFromSQL_Debug(t *testing.T) {
	_, err := integer.FromSQL(backend.DebugBackend, row.Present(nil))
	if sqlerrors.GetCode(err) != sqlerrors.CodeNoData {
		t.Errorf("expected no data error, got %v", err)
	}
}

func TestUnregisteredBackend(t *testing.T) {
	v := "x"
	if _, err := text.ToSQL(pg.Default, &v, io.Discard); sqlerrors.GetCode(err) != sqlerrors.CodeBackendNotBound {
		t.Errorf("expected backend not bound, got %v", err)
	}
	if _, err := text.Metadata(pg.Default); sqlerrors.GetCategory(err) != sqlerrors.ErrCategoryRegistration {
		t.Errorf("expected registration error, got %v", err)
	}
	if _, err := text.Nullable().FromSQL(pg.Default, row.Absent()); sqlerrors.GetCode(err) != sqlerrors.CodeBackendNotBound {
		t.Errorf("expected backend not bound for absent slot, got %v", err)
	}
	if text.Supports(pg.Default) {
		t.Error("expected text not to support postgres")
	}
	if !text.Supports(backend.DebugBackend) {
		t.Error("expected debug to always be supported")
	}
}

func TestNullable_FromSQL(t *testing.T) {
	nb := integer.Nullable()

	got, err := nb.FromSQL(pg.Default, row.Absent())
	if err != nil {
		t.Fatalf("FromSQL failed: %v", err)
	}
	if got.Valid {
		t.Errorf("expected None, got %v", got)
	}

	got, err = nb.FromSQL(pg.Default, row.Present([]byte{0, 0, 0, 42}))
	if err != nil {
		t.Fatalf("FromSQL failed: %v", err)
	}
	if !got.Valid || got.V != 42 {
		t.Errorf("expected Some(42), got %v", got)
	}
}

func TestNullable_ToSQLOpt(t *testing.T) {
	nb := integer.Nullable()

	var out countingWriter
	isNull, err := nb.ToSQLOpt(pg.Default, &sql.Null[int32]{}, &out)
	if err != nil {
		t.Fatalf("ToSQLOpt failed: %v", err)
	}
	if isNull != backend.Null || out.calls != 0 {
		t.Errorf("expected Null with no write, got %v and %d calls", isNull, out.calls)
	}

	isNull, err = nb.ToSQLOpt(pg.Default, &sql.Null[int32]{V: 7, Valid: true}, &out)
	if err != nil {
		t.Fatalf("ToSQLOpt failed: %v", err)
	}
	if isNull != backend.NotNull || !bytes.Equal(out.Bytes(), []byte{0, 0, 0, 7}) {
		t.Errorf("expected int4 7, got %v %x", isNull, out.Bytes())
	}
}

func TestNullable_MetadataMatchesInner(t *testing.T) {
	for _, c := range integer.Capabilities() {
		inner, err := integer.Metadata(c.Backend)
		if err != nil {
			t.Fatalf("Metadata failed: %v", err)
		}
		outer, err := integer.Nullable().Metadata(c.Backend)
		if err != nil {
			t.Fatalf("Metadata failed: %v", err)
		}
		if inner != outer {
			t.Errorf("%s: expected %v, got %v", c.Backend.ID(), inner, outer)
		}
	}
	if got := sqltype.Name(integer.Nullable().SQLType()); got != "Nullable<Integer>" {
		t.Errorf("expected Nullable<Integer>, got %s", got)
	}
}

func TestAsExpression_OwnedAndBorrowedEncodeAlike(t *testing.T) {
	v := int32(99)
	owned := integer.AsExpression(v)
	borrowed := integer.AsExpressionRef(&v)

	if owned.IsBorrowed() || !borrowed.IsBorrowed() {
		t.Error("expected ownership flags to differ")
	}

	var a, b bytes.Buffer
	if _, err := owned.ToSQL(pg.Default, &a); err != nil {
		t.Fatalf("ToSQL failed: %v", err)
	}
	if _, err := borrowed.ToSQL(pg.Default, &b); err != nil {
		t.Fatalf("ToSQL failed: %v", err)
	}
	if !bytes.Equal(a.Bytes(), b.Bytes()) {
		t.Errorf("expected identical encodings, got %x and %x", a.Bytes(), b.Bytes())
	}
	if owned.QueryID() != sqltype.QueryID[sqltype.Integer]() {
		t.Error("expected literal identity to be the identity of Integer")
	}
}

func TestAsExpressionOpt(t *testing.T) {
	nb := integer.Nullable()
	lits := []expr.Literal{
		nb.AsExpressionOpt(sql.Null[int32]{}),
		nb.AsExpressionOpt(sql.Null[int32]{V: 3, Valid: true}),
		nb.AsExpression(4),
		nb.AsExpressionOptRef(nil),
	}
	params, err := expr.BindParams(pg.Default, lits...)
	if err != nil {
		t.Fatalf("BindParams failed: %v", err)
	}
	wantNull := []backend.IsNull{backend.Null, backend.NotNull, backend.NotNull, backend.Null}
	for i, p := range params {
		if p.IsNull != wantNull[i] {
			t.Errorf("param %d: expected %v, got %v", i+1, wantNull[i], p.IsNull)
		}
		if p.Type != (sqltype.Nullable[sqltype.Integer]{}) {
			t.Errorf("param %d: expected Nullable<Integer>, got %s", i+1, sqltype.Name(p.Type))
		}
	}
}

func TestRegister_Panics(t *testing.T) {
	tests := []struct {
		name string
		caps []backend.Capability
	}{
		{"duplicate backend", []backend.Capability{sqlite.Meta(sqlite.Text), sqlite.Meta(sqlite.Binary)}},
		{"foreign metadata", []backend.Capability{{Backend: sqlite.Default, Metadata: pg.TypeMetadata{OID: 25}, Enabled: true}}},
		{"nil backend", []backend.Capability{{Enabled: true}}},
		{"debug twice", []backend.Capability{backend.DebugCapability}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Error("expected Register to panic")
				}
			}()
			bind.Register[sqltype.Text, string](tt.caps...)
		})
	}
}

func TestRegister_SkipsDisabledBackends(t *testing.T) {
	bd := bind.Register[sqltype.Text, string](backend.Capability{
		Backend:  sqlite.Default,
		Metadata: sqlite.Text,
		Enabled:  false,
	})
	if bd.Supports(sqlite.Default) {
		t.Error("expected disabled backend to be skipped")
	}
	if len(bd.Capabilities()) != 1 {
		t.Errorf("expected only the debug capability, got %v", bd.Capabilities())
	}
}

func TestEncodeAny_TypeMismatch(t *testing.T) {
	if _, err := integer.EncodeAny(pg.Default, "42", io.Discard); sqlerrors.GetCode(err) != sqlerrors.CodeUnsupportedValue {
		t.Errorf("expected unsupported value, got %v", err)
	}
	v, err := integer.DecodeAny(pg.Default, row.Present([]byte{0, 0, 0, 5}))
	if err != nil || v.(int32) != 5 {
		t.Errorf("expected 5, got %v (%v)", v, err)
	}
}

func TestNotNone(t *testing.T) {
	if _, err := bind.NotNone(row.Absent()); !sqlerrors.IsNullViolation(err) {
		t.Errorf("expected NULL violation, got %v", err)
	}
	got, err := bind.NotNone(row.Present([]byte("x")))
	if err != nil || string(got) != "x" {
		t.Errorf("expected x, got %q (%v)", got, err)
	}
}
