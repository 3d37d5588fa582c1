package types

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/arkilian/sqltypes/pkg/backend"
	"github.com/arkilian/sqltypes/pkg/backend/pg"
	"github.com/arkilian/sqltypes/pkg/bind"
	sqlerrors "github.com/arkilian/sqltypes/pkg/errors"
	"github.com/arkilian/sqltypes/pkg/row"
	"github.com/arkilian/sqltypes/pkg/sqltype"
	"github.com/google/uuid"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/shopspring/decimal"
)

// Date and timestamp generators stay within 1900..2200.
const (
	minDay    = -25567
	maxDay    = 84006
	minMicros = int64(minDay) * 86400 * 1e6
	maxMicros = int64(maxDay) * 86400 * 1e6
)

func genDate() gopter.Gen {
	return gen.Int64Range(minDay, maxDay).Map(func(d int64) time.Time {
		return time.Unix(d*86400, 0).UTC()
	})
}

func genTimestamp() gopter.Gen {
	return gen.Int64Range(minMicros, maxMicros).Map(func(us int64) time.Time {
		return time.UnixMicro(us).UTC()
	})
}

func genUUID() gopter.Gen {
	return gen.SliceOfN(16, gen.UInt8()).Map(func(b []uint8) uuid.UUID {
		var u uuid.UUID
		copy(u[:], b)
		return u
	})
}

func genDecimal() gopter.Gen {
	return gopter.CombineGens(gen.Int64(), gen.Int32Range(-8, 0)).Map(func(vals []interface{}) decimal.Decimal {
		return decimal.New(vals[0].(int64), vals[1].(int32))
	})
}

func genJSON() gopter.Gen {
	return gopter.CombineGens(gen.Int64(), gen.AlphaString()).Map(func(vals []interface{}) json.RawMessage {
		doc, _ := json.Marshal(map[string]any{"n": vals[0], "s": vals[1]})
		return doc
	})
}

func equal[T comparable](a, b T) bool { return a == b }

// roundTrip adds one property per decoding backend of bd: every generated
// value survives encode then decode.
func roundTrip[L sqltype.NotNull, T any](properties *gopter.Properties, bd *bind.Binding[L, T], g gopter.Gen, eq func(a, b T) bool) {
	for _, c := range bd.Capabilities() {
		b := c.Backend
		if !Decoding(b) {
			continue
		}
		name := fmt.Sprintf("%s/%s round trips on %s", sqltype.Name(bd.SQLType()), bd.NativeName(), b.ID())
		properties.Property(name, prop.ForAll(
			func(v T) bool {
				var buf bytes.Buffer
				isNull, err := bd.ToSQL(b, &v, &buf)
				if err != nil || isNull != backend.NotNull {
					return false
				}
				got, err := bd.FromSQL(b, row.Present(buf.Bytes()))
				if err != nil {
					return false
				}
				return eq(v, got)
			},
			g,
		))
	}
}

func TestProperty_RoundTrip(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	roundTrip(properties, Bool, gen.Bool(), equal[bool])
	roundTrip(properties, SmallInt, gen.Int16(), equal[int16])
	roundTrip(properties, Integer, gen.Int32(), equal[int32])
	roundTrip(properties, BigInt, gen.Int64(), equal[int64])
	roundTrip(properties, Float, gen.Float32(), equal[float32])
	roundTrip(properties, Double, gen.Float64(), equal[float64])
	roundTrip(properties, Numeric, genDecimal(), decimal.Decimal.Equal)
	roundTrip(properties, Text, gen.AnyString(), equal[string])
	roundTrip(properties, Binary, gen.SliceOf(gen.UInt8()), bytes.Equal)
	roundTrip(properties, Date, genDate(), time.Time.Equal)
	roundTrip(properties, Timestamp, genTimestamp(), time.Time.Equal)
	roundTrip(properties, UUID, genUUID(), equal[uuid.UUID])
	roundTrip(properties, JSON, genJSON(), func(a, b json.RawMessage) bool { return bytes.Equal(a, b) })
	roundTrip(properties, Oid, gen.UInt32(), equal[uint32])

	properties.TestingRun(t)
}

// nullableComposition adds one property per decoding backend of bd: the
// nullable binding encodes present values like bd, and absent values as NULL
// with nothing written, and decoding restores presence.
func nullableComposition[L sqltype.NotNull, T any](properties *gopter.Properties, bd *bind.Binding[L, T], g gopter.Gen, eq func(a, b T) bool) {
	nb := bd.Nullable()
	for _, c := range bd.Capabilities() {
		b := c.Backend
		if !Decoding(b) {
			continue
		}
		name := fmt.Sprintf("%s preserves presence on %s", sqltype.Name(nb.SQLType()), b.ID())
		properties.Property(name, prop.ForAll(
			func(v T, present bool) bool {
				opt := sql.Null[T]{V: v, Valid: present}
				var buf bytes.Buffer
				isNull, err := nb.ToSQLOpt(b, &opt, &buf)
				if err != nil || bool(isNull) == present {
					return false
				}
				if !present && buf.Len() != 0 {
					return false
				}
				if present {
					var inner bytes.Buffer
					if _, err := bd.ToSQL(b, &v, &inner); err != nil || !bytes.Equal(inner.Bytes(), buf.Bytes()) {
						return false
					}
				}
				slot := row.Absent()
				if present {
					slot = row.Present(buf.Bytes())
				}
				got, err := nb.FromSQL(b, slot)
				if err != nil {
					return false
				}
				return got.Valid == present && (!present || eq(v, got.V))
			},
			g,
			gen.Bool(),
		))
	}
}

func TestProperty_NullableComposition(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	nullableComposition(properties, Bool, gen.Bool(), equal[bool])
	nullableComposition(properties, SmallInt, gen.Int16(), equal[int16])
	nullableComposition(properties, Integer, gen.Int32(), equal[int32])
	nullableComposition(properties, BigInt, gen.Int64(), equal[int64])
	nullableComposition(properties, Float, gen.Float32(), equal[float32])
	nullableComposition(properties, Double, gen.Float64(), equal[float64])
	nullableComposition(properties, Numeric, genDecimal(), decimal.Decimal.Equal)
	nullableComposition(properties, Text, gen.AnyString(), equal[string])
	nullableComposition(properties, Binary, gen.SliceOf(gen.UInt8()), bytes.Equal)
	nullableComposition(properties, Date, genDate(), time.Time.Equal)
	nullableComposition(properties, Timestamp, genTimestamp(), time.Time.Equal)
	nullableComposition(properties, UUID, genUUID(), equal[uuid.UUID])
	nullableComposition(properties, JSON, genJSON(), func(a, b json.RawMessage) bool { return bytes.Equal(a, b) })
	nullableComposition(properties, Oid, gen.UInt32(), equal[uint32])

	properties.TestingRun(t)
}

func TestIntegerOnDebug(t *testing.T) {
	v := int32(42)
	var buf bytes.Buffer
	isNull, err := Integer.ToSQL(backend.DebugBackend, &v, &buf)
	if err != nil {
		t.Fatalf("ToSQL failed: %v", err)
	}
	if isNull != backend.NotNull || buf.Len() != 0 {
		t.Errorf("expected NotNull and no bytes, got %v and %d bytes", isNull, buf.Len())
	}

	if _, err := Integer.FromSQL(backend.DebugBackend, row.Absent()); !sqlerrors.IsNullViolation(err) {
		t.Errorf("expected NULL violation, got %v", err)
	}
	got, err := Integer.Nullable().FromSQL(backend.DebugBackend, row.Absent())
	if err != nil || got.Valid {
		t.Errorf("expected None, got %v (%v)", got, err)
	}
}

func TestMetadataCompleteness(t *testing.T) {
	for _, e := range All() {
		for _, b := range Backends() {
			_, err := e.Metadata(b)
			wantSupported := b.ID() == backend.DebugID || b.ID() == pg.ID || e.SQLType().Kind() != sqltype.KindOid
			if wantSupported && err != nil {
				t.Errorf("%s on %s: expected metadata, got %v", sqltype.Name(e.SQLType()), b.ID(), err)
			}
			if !wantSupported && err == nil {
				t.Errorf("%s on %s: expected no metadata", sqltype.Name(e.SQLType()), b.ID())
			}
			if e.Supports(b) != wantSupported {
				t.Errorf("%s on %s: Supports disagrees with Metadata", sqltype.Name(e.SQLType()), b.ID())
			}
		}
	}
}

func TestAll_DistinctKinds(t *testing.T) {
	seen := make(map[sqltype.Kind]bool)
	for _, e := range All() {
		k := e.SQLType().Kind()
		if seen[k] {
			t.Errorf("kind %s registered twice", k)
		}
		seen[k] = true
		if e.SQLType().Nullable() {
			t.Errorf("%s: expected non-nullable registration", k)
		}
	}
	if len(seen) != len(sqltype.Kinds()) {
		t.Errorf("expected every kind to be registered, got %d of %d", len(seen), len(sqltype.Kinds()))
	}
}

func TestCapabilities(t *testing.T) {
	cells := Capabilities()
	if want := len(All()) * len(Backends()); len(cells) != want {
		t.Fatalf("expected %d cells, got %d", want, len(cells))
	}
	for _, c := range cells {
		if c.Backend == backend.DebugID && (!c.Supported || c.Metadata != (backend.DebugMetadata{})) {
			t.Errorf("%s: expected debug to be supported with unit metadata", sqltype.Name(c.Type))
		}
	}
}

func TestLookup(t *testing.T) {
	if b, ok := Lookup(backend.DebugID); !ok || b.ID() != backend.DebugID {
		t.Error("expected debug backend to be found")
	}
	if _, ok := Lookup("oracle"); ok {
		t.Error("expected unknown backend not to be found")
	}
	if Decoding(backend.DebugBackend) {
		t.Error("expected debug backend not to decode")
	}
}

func TestAnyRoundTrip(t *testing.T) {
	b, ok := Lookup(pg.ID)
	if !ok {
		t.Skip("postgres backend not compiled in")
	}
	var buf bytes.Buffer
	if _, err := Text.EncodeAny(b, "hello", &buf); err != nil {
		t.Fatalf("EncodeAny failed: %v", err)
	}
	v, err := Text.DecodeAny(b, row.Present(buf.Bytes()))
	if err != nil || v != "hello" {
		t.Errorf("expected hello, got %v (%v)", v, err)
	}
}
