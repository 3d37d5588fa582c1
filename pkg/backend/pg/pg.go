// Package pg implements the PostgreSQL binary protocol backend. Values are
// encoded in the binary format of their OID by pgx's pgtype codecs.
package pg

import (
	"encoding/json"
	"fmt"
	"math/big"
	"slices"
	"sync"
	"time"

	"github.com/arkilian/sqltypes/pkg/backend"
	sqlerrors "github.com/arkilian/sqltypes/pkg/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

// ID identifies the PostgreSQL backend.
const ID backend.ID = "postgres"

// TypeMetadata is the wire metadata of the PostgreSQL backend: the OID of the
// type and the OID of its array type.
type TypeMetadata struct {
	OID      uint32
	ArrayOID uint32
}

func (m TypeMetadata) String() string {
	return fmt.Sprintf("%s(oid=%d, array_oid=%d)", TypeName(m.OID), m.OID, m.ArrayOID)
}

// Backend is the PostgreSQL backend.
type Backend struct{}

// Default is the shared backend value.
var Default backend.Backend = Backend{}

// Meta declares the PostgreSQL metadata of a logical type for registration.
func Meta(oid, arrayOID uint32) backend.Capability {
	return backend.Capability{
		Backend:  Default,
		Metadata: TypeMetadata{OID: oid, ArrayOID: arrayOID},
		Enabled:  Enabled,
	}
}

// A pgtype.Map caches encode and scan plans and is not safe for concurrent
// use, so each call borrows one.
var maps = sync.Pool{
	New: func() any { return pgtype.NewMap() },
}

func withMap[R any](fn func(m *pgtype.Map) R) R {
	m := maps.Get().(*pgtype.Map)
	defer maps.Put(m)
	return fn(m)
}

// TypeName returns the PostgreSQL name of oid, or "unknown".
func TypeName(oid uint32) string {
	return withMap(func(m *pgtype.Map) string {
		if t, ok := m.TypeForOID(oid); ok {
			return t.Name
		}
		return "unknown"
	})
}

func (Backend) ID() backend.ID { return ID }

func (Backend) CheckMetadata(meta backend.Metadata) error {
	m, err := backend.MetadataAs[TypeMetadata](Default, meta)
	if err != nil {
		return err
	}
	if TypeName(m.OID) == "unknown" {
		return sqlerrors.NewRegistrationError(sqlerrors.CodeMetadataMismatch,
			fmt.Sprintf("postgres: unknown oid %d", m.OID))
	}
	return nil
}

func (b Backend) AppendValue(buf []byte, meta backend.Metadata, v any) ([]byte, backend.IsNull, error) {
	m, err := backend.MetadataAs[TypeMetadata](b, meta)
	if err != nil {
		return nil, backend.NotNull, sqlerrors.NewEncodeError(sqlerrors.CodeUnsupportedValue, "postgres: bad metadata", err)
	}
	value, ok := toPG(v)
	if !ok {
		return nil, backend.NotNull, sqlerrors.Unsupported(string(ID), v)
	}

	// Map.Encode reports NULL by returning a nil slice, so buf must not be nil.
	if buf == nil {
		buf = make([]byte, 0, 16)
	}
	pm := maps.Get().(*pgtype.Map)
	out, err := pm.Encode(m.OID, pgtype.BinaryFormatCode, value, buf)
	maps.Put(pm)
	if err != nil {
		return nil, backend.NotNull, sqlerrors.NewEncodeError(sqlerrors.CodeUnsupportedValue,
			fmt.Sprintf("postgres: encoding %T as %s", v, TypeName(m.OID)), err)
	}
	if out == nil {
		return buf, backend.Null, nil
	}
	return out, backend.NotNull, nil
}

func (b Backend) DecodeValue(raw []byte, meta backend.Metadata, dst any) error {
	m, err := backend.MetadataAs[TypeMetadata](b, meta)
	if err != nil {
		return sqlerrors.NewDecodeError(sqlerrors.CodeUnsupportedTarget, "postgres: bad metadata", err)
	}
	// A nil source means NULL to pgtype.
	if raw == nil {
		raw = []byte{}
	}

	scan := func(target any) error {
		err := withMap(func(pm *pgtype.Map) error {
			return pm.Scan(m.OID, pgtype.BinaryFormatCode, raw, target)
		})
		if err != nil {
			return sqlerrors.NewDecodeError(sqlerrors.CodeMalformedBytes,
				fmt.Sprintf("postgres: decoding %s into %T", TypeName(m.OID), dst), err)
		}
		return nil
	}

	switch d := dst.(type) {
	case *decimal.Decimal:
		var n pgtype.Numeric
		if err := scan(&n); err != nil {
			return err
		}
		if n.NaN || n.InfinityModifier != pgtype.Finite {
			return sqlerrors.OutOfRange("postgres: numeric %v is not a finite decimal", n)
		}
		coef := n.Int
		if coef == nil {
			coef = new(big.Int)
		}
		*d = decimal.NewFromBigInt(coef, n.Exp)
	case *uuid.UUID:
		var u [16]byte
		if err := scan(&u); err != nil {
			return err
		}
		*d = uuid.UUID(u)
	case *json.RawMessage:
		var doc []byte
		if err := scan(&doc); err != nil {
			return err
		}
		*d = json.RawMessage(cloneBytes(doc))
	case *[]byte:
		var data []byte
		if err := scan(&data); err != nil {
			return err
		}
		*d = cloneBytes(data)
	case *time.Time:
		var t time.Time
		if err := scan(&t); err != nil {
			return err
		}
		*d = t.UTC()
	default:
		return scan(dst)
	}
	return nil
}

// toPG converts native values into the forms pgtype encodes directly.
func toPG(v any) (any, bool) {
	switch x := v.(type) {
	case bool, int16, int32, int64, uint32, float32, float64, string:
		return x, true
	case []byte:
		if x == nil {
			return []byte{}, true
		}
		return x, true
	case json.RawMessage:
		if x == nil {
			return []byte{}, true
		}
		return []byte(x), true
	case decimal.Decimal:
		return pgtype.Numeric{Int: x.Coefficient(), Exp: x.Exponent(), Valid: true}, true
	case uuid.UUID:
		return [16]byte(x), true
	case time.Time:
		return x.UTC(), true
	default:
		return nil, false
	}
}

func cloneBytes(b []byte) []byte {
	out := slices.Clone(b)
	if out == nil {
		out = []byte{}
	}
	return out
}
