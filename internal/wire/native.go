// Package wire holds the native value conversions shared by the byte-level
// backends: extracting a primitive from a Go value before encoding, and
// storing a decoded primitive into a typed destination with range checks.
package wire

import (
	"encoding/json"
	"math"
	"slices"

	sqlerrors "github.com/arkilian/sqltypes/pkg/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Int returns v as an int64 when v is a Go integer or bool.
func Int(v any) (int64, bool) {
	switch x := v.(type) {
	case bool:
		if x {
			return 1, true
		}
		return 0, true
	case int16:
		return int64(x), true
	case int32:
		return int64(x), true
	case int64:
		return x, true
	case uint32:
		return int64(x), true
	default:
		return 0, false
	}
}

// SetInt stores x into dst, rejecting values that do not fit.
func SetInt(backend string, dst any, x int64) error {
	switch d := dst.(type) {
	case *bool:
		if x != 0 && x != 1 {
			return sqlerrors.OutOfRange("%s: %d is not a boolean", backend, x)
		}
		*d = x == 1
	case *int16:
		if x < math.MinInt16 || x > math.MaxInt16 {
			return sqlerrors.OutOfRange("%s: %d overflows int16", backend, x)
		}
		*d = int16(x)
	case *int32:
		if x < math.MinInt32 || x > math.MaxInt32 {
			return sqlerrors.OutOfRange("%s: %d overflows int32", backend, x)
		}
		*d = int32(x)
	case *int64:
		*d = x
	case *uint32:
		if x < 0 || x > math.MaxUint32 {
			return sqlerrors.OutOfRange("%s: %d overflows uint32", backend, x)
		}
		*d = uint32(x)
	default:
		return sqlerrors.UnsupportedTarget(backend, dst)
	}
	return nil
}

// Float returns v as a float64 when v is a Go float.
func Float(v any) (float64, bool) {
	switch x := v.(type) {
	case float32:
		return float64(x), true
	case float64:
		return x, true
	default:
		return 0, false
	}
}

// SetFloat stores f into dst. Finite values beyond the float32 range are
// rejected rather than rounded to infinity.
func SetFloat(backend string, dst any, f float64) error {
	switch d := dst.(type) {
	case *float32:
		if !math.IsInf(f, 0) && !math.IsNaN(f) && math.Abs(f) > math.MaxFloat32 {
			return sqlerrors.OutOfRange("%s: %g overflows float32", backend, f)
		}
		*d = float32(f)
	case *float64:
		*d = f
	default:
		return sqlerrors.UnsupportedTarget(backend, dst)
	}
	return nil
}

// Text returns the textual form of string-like values and decimals.
func Text(v any) (string, bool) {
	switch x := v.(type) {
	case string:
		return x, true
	case json.RawMessage:
		return string(x), true
	case decimal.Decimal:
		return x.String(), true
	default:
		return "", false
	}
}

// SetText parses s into dst.
func SetText(backend string, dst any, s string) error {
	switch d := dst.(type) {
	case *string:
		*d = s
	case *json.RawMessage:
		*d = json.RawMessage(s)
	case *decimal.Decimal:
		dec, err := decimal.NewFromString(s)
		if err != nil {
			return sqlerrors.NewDecodeError(sqlerrors.CodeMalformedBytes, backend+": invalid numeric", err)
		}
		*d = dec
	default:
		return sqlerrors.UnsupportedTarget(backend, dst)
	}
	return nil
}

// Bytes returns the raw bytes of byte-like values.
func Bytes(v any) ([]byte, bool) {
	switch x := v.(type) {
	case []byte:
		return x, true
	case uuid.UUID:
		return x[:], true
	default:
		return nil, false
	}
}

// SetBytes copies b into dst. The result never aliases b.
func SetBytes(backend string, dst any, b []byte) error {
	switch d := dst.(type) {
	case *[]byte:
		*d = slices.Clone(b)
		if *d == nil {
			*d = []byte{}
		}
	case *uuid.UUID:
		id, err := uuid.FromBytes(b)
		if err != nil {
			return sqlerrors.NewDecodeError(sqlerrors.CodeMalformedBytes, backend+": invalid uuid", err)
		}
		*d = id
	default:
		return sqlerrors.UnsupportedTarget(backend, dst)
	}
	return nil
}
