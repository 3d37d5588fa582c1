// Package columnar implements a column-store backend. Values are encoded as
// the physical type of their column, little-endian, and carried in chunks
// (see ChunkWriter).
package columnar

import (
	"encoding/binary"
	"fmt"
	"math"
	"time"

	"github.com/arkilian/sqltypes/internal/wire"
	"github.com/arkilian/sqltypes/pkg/backend"
	sqlerrors "github.com/arkilian/sqltypes/pkg/errors"
	"github.com/google/uuid"
)

// ID identifies the columnar backend.
const ID backend.ID = "columnar"

// Physical is the wire metadata of the columnar backend: the physical type
// of a column.
type Physical uint8

const (
	Bool Physical = iota + 1
	Int16
	Int32
	Int64
	Float32
	Float64
	Decimal
	Utf8
	Bytes
	Date32
	TimestampMicros
	UUID
	JSON
)

var physicalNames = map[Physical]string{
	Bool:            "bool",
	Int16:           "int16",
	Int32:           "int32",
	Int64:           "int64",
	Float32:         "float32",
	Float64:         "float64",
	Decimal:         "decimal",
	Utf8:            "utf8",
	Bytes:           "bytes",
	Date32:          "date32",
	TimestampMicros: "timestamp[us]",
	UUID:            "uuid",
	JSON:            "json",
}

func (p Physical) String() string {
	if name, ok := physicalNames[p]; ok {
		return name
	}
	return "unknown"
}

// Width returns the fixed byte width of p, or 0 for variable-width types.
func (p Physical) Width() int {
	switch p {
	case Bool:
		return 1
	case Int16:
		return 2
	case Int32, Float32, Date32:
		return 4
	case Int64, Float64, TimestampMicros:
		return 8
	case UUID:
		return 16
	default:
		return 0
	}
}

// Backend is the columnar backend.
type Backend struct{}

// Default is the shared backend value.
var Default backend.Backend = Backend{}

// Meta declares the columnar metadata of a logical type for registration.
func Meta(p Physical) backend.Capability {
	return backend.Capability{Backend: Default, Metadata: p, Enabled: Enabled}
}

func (Backend) ID() backend.ID { return ID }

func (Backend) CheckMetadata(meta backend.Metadata) error {
	p, err := backend.MetadataAs[Physical](Default, meta)
	if err != nil {
		return err
	}
	if _, ok := physicalNames[p]; !ok {
		return sqlerrors.NewRegistrationError(sqlerrors.CodeMetadataMismatch, "columnar: unknown physical type")
	}
	return nil
}

func (b Backend) AppendValue(buf []byte, meta backend.Metadata, v any) ([]byte, backend.IsNull, error) {
	p, err := backend.MetadataAs[Physical](b, meta)
	if err != nil {
		return nil, backend.NotNull, sqlerrors.NewEncodeError(sqlerrors.CodeUnsupportedValue, "columnar: bad metadata", err)
	}

	switch p {
	case Bool, Int16, Int32, Int64:
		if x, ok := wire.Int(v); ok {
			return wire.AppendInt(binary.LittleEndian, buf, x, p.Width()), backend.NotNull, nil
		}
	case Float32, Float64:
		if f, ok := wire.Float(v); ok {
			return wire.AppendFloat(binary.LittleEndian, buf, f, p.Width()), backend.NotNull, nil
		}
	case Date32:
		if ts, ok := v.(time.Time); ok {
			days := wire.UnixDays(ts)
			if days < math.MinInt32 || days > math.MaxInt32 {
				return nil, backend.NotNull, sqlerrors.NewEncodeError(sqlerrors.CodeUnsupportedValue,
					fmt.Sprintf("columnar: %s is %d days from the epoch, outside Date32", ts.Format(time.DateOnly), days), nil)
			}
			return wire.AppendInt(binary.LittleEndian, buf, days, 4), backend.NotNull, nil
		}
	case TimestampMicros:
		if ts, ok := v.(time.Time); ok {
			return wire.AppendInt(binary.LittleEndian, buf, wire.UnixMicros(ts), 8), backend.NotNull, nil
		}
	case UUID:
		if u, ok := v.(uuid.UUID); ok {
			return append(buf, u[:]...), backend.NotNull, nil
		}
	case Bytes:
		if raw, ok := wire.Bytes(v); ok {
			return append(buf, raw...), backend.NotNull, nil
		}
	case Decimal, Utf8, JSON:
		if s, ok := wire.Text(v); ok {
			return append(buf, s...), backend.NotNull, nil
		}
	}
	return nil, backend.NotNull, sqlerrors.Unsupported(string(ID)+" "+p.String(), v)
}

func (b Backend) DecodeValue(raw []byte, meta backend.Metadata, dst any) error {
	p, err := backend.MetadataAs[Physical](b, meta)
	if err != nil {
		return sqlerrors.NewDecodeError(sqlerrors.CodeUnsupportedTarget, "columnar: bad metadata", err)
	}

	switch p {
	case Bool, Int16, Int32, Int64:
		x, err := wire.ReadInt(string(ID), binary.LittleEndian, raw, p.Width())
		if err != nil {
			return err
		}
		if p == Bool {
			// bools are stored unsigned
			x = int64(raw[0])
		}
		return wire.SetInt(string(ID), dst, x)
	case Float32, Float64:
		f, err := wire.ReadFloat(string(ID), binary.LittleEndian, raw, p.Width())
		if err != nil {
			return err
		}
		return wire.SetFloat(string(ID), dst, f)
	case Date32, TimestampMicros:
		d, ok := dst.(*time.Time)
		if !ok {
			return sqlerrors.UnsupportedTarget(string(ID)+" "+p.String(), dst)
		}
		x, err := wire.ReadInt(string(ID), binary.LittleEndian, raw, p.Width())
		if err != nil {
			return err
		}
		if p == Date32 {
			*d = wire.FromUnixDays(x)
		} else {
			*d = wire.FromUnixMicros(x)
		}
		return nil
	case UUID:
		if len(raw) != 16 {
			return sqlerrors.Malformed("columnar: uuid needs 16 bytes, got %d", len(raw))
		}
		return wire.SetBytes(string(ID), dst, raw)
	case Bytes:
		return wire.SetBytes(string(ID), dst, raw)
	default:
		return wire.SetText(string(ID), dst, string(raw))
	}
}
