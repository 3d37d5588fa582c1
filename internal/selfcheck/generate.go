package selfcheck

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/arkilian/sqltypes/pkg/sqltype"
	"github.com/google/uuid"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/shopspring/decimal"
)

// Generated dates and timestamps stay within 1900..2200, a range every
// backend represents exactly.
const (
	minDay    = -25567
	maxDay    = 84006
	minMicros = int64(minDay) * 86400 * 1e6
	maxMicros = int64(maxDay) * 86400 * 1e6
)

// Generator returns the value generator for a logical type kind. Generated
// values have the native type the kind is registered with.
func Generator(k sqltype.Kind) (gopter.Gen, error) {
	switch k {
	case sqltype.KindBool:
		return gen.Bool(), nil
	case sqltype.KindSmallInt:
		return gen.Int16(), nil
	case sqltype.KindInteger:
		return gen.Int32(), nil
	case sqltype.KindBigInt:
		return gen.Int64(), nil
	case sqltype.KindFloat:
		return gen.Float32(), nil
	case sqltype.KindDouble:
		return gen.Float64(), nil
	case sqltype.KindNumeric:
		return gopter.CombineGens(gen.Int64(), gen.Int32Range(-8, 0)).Map(func(vals []interface{}) decimal.Decimal {
			return decimal.New(vals[0].(int64), vals[1].(int32))
		}), nil
	case sqltype.KindText:
		return gen.AnyString(), nil
	case sqltype.KindBinary:
		return gen.SliceOf(gen.UInt8()), nil
	case sqltype.KindDate:
		return gen.Int64Range(minDay, maxDay).Map(func(d int64) time.Time {
			return time.Unix(d*86400, 0).UTC()
		}), nil
	case sqltype.KindTimestamp:
		return gen.Int64Range(minMicros, maxMicros).Map(func(us int64) time.Time {
			return time.UnixMicro(us).UTC()
		}), nil
	case sqltype.KindUUID:
		return gen.SliceOfN(16, gen.UInt8()).Map(func(b []uint8) uuid.UUID {
			var u uuid.UUID
			copy(u[:], b)
			return u
		}), nil
	case sqltype.KindJSON:
		return gopter.CombineGens(gen.Int64(), gen.AlphaString()).Map(func(vals []interface{}) json.RawMessage {
			doc, _ := json.Marshal(map[string]any{"n": vals[0], "s": vals[1]})
			return doc
		}), nil
	case sqltype.KindOid:
		return gen.UInt32(), nil
	}
	return nil, fmt.Errorf("no generator for kind %s", k)
}

// Sample draws n values from g. The same seed always yields the same values.
func Sample(g gopter.Gen, seed int64, n int) ([]any, error) {
	params := gopter.DefaultGenParameters().CloneWithSeed(seed)
	out := make([]any, 0, n)
	for len(out) < n {
		v, ok := g(params).Retrieve()
		if !ok {
			return nil, fmt.Errorf("generator gave up after %d samples", len(out))
		}
		out = append(out, v)
	}
	return out, nil
}

// same compares a generated value with its decoded counterpart.
func same(want, got any) bool {
	switch w := want.(type) {
	case []byte:
		g, ok := got.([]byte)
		return ok && bytes.Equal(w, g)
	case json.RawMessage:
		g, ok := got.(json.RawMessage)
		return ok && bytes.Equal(w, g)
	case decimal.Decimal:
		g, ok := got.(decimal.Decimal)
		return ok && w.Equal(g)
	case time.Time:
		g, ok := got.(time.Time)
		return ok && w.Equal(g)
	default:
		return want == got
	}
}
