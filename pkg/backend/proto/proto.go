// Package proto implements a backend over protocol buffer scalar encodings.
// A value is the field payload of its scalar type, without the field tag:
// varints for integers, fixed-width floats, and length-prefixed strings and
// bytes.
package proto

import (
	"fmt"
	"math"
	"time"

	"github.com/arkilian/sqltypes/internal/wire"
	"github.com/arkilian/sqltypes/pkg/backend"
	sqlerrors "github.com/arkilian/sqltypes/pkg/errors"
	"google.golang.org/protobuf/encoding/protowire"
)

// ID identifies the proto backend.
const ID backend.ID = "proto"

// Scalar is the wire metadata of the proto backend: a protobuf scalar type.
type Scalar uint8

const (
	Bool Scalar = iota + 1
	SInt32
	SInt64
	UInt32
	Float
	Double
	String
	Bytes
)

var scalarNames = map[Scalar]string{
	Bool:   "bool",
	SInt32: "sint32",
	SInt64: "sint64",
	UInt32: "uint32",
	Float:  "float",
	Double: "double",
	String: "string",
	Bytes:  "bytes",
}

func (s Scalar) String() string {
	if name, ok := scalarNames[s]; ok {
		return name
	}
	return fmt.Sprintf("scalar(%d)", uint8(s))
}

// WireType returns the protobuf wire type scalar s is encoded with.
func (s Scalar) WireType() protowire.Type {
	switch s {
	case Float:
		return protowire.Fixed32Type
	case Double:
		return protowire.Fixed64Type
	case String, Bytes:
		return protowire.BytesType
	default:
		return protowire.VarintType
	}
}

// Backend is the proto backend.
type Backend struct{}

// Default is the shared backend value.
var Default backend.Backend = Backend{}

// Meta declares the proto metadata of a logical type for registration.
func Meta(s Scalar) backend.Capability {
	return backend.Capability{Backend: Default, Metadata: s, Enabled: Enabled}
}

func (Backend) ID() backend.ID { return ID }

func (Backend) CheckMetadata(meta backend.Metadata) error {
	s, err := backend.MetadataAs[Scalar](Default, meta)
	if err != nil {
		return err
	}
	if _, ok := scalarNames[s]; !ok {
		return sqlerrors.NewRegistrationError(sqlerrors.CodeMetadataMismatch, "proto: unknown scalar "+s.String())
	}
	return nil
}

func (b Backend) AppendValue(buf []byte, meta backend.Metadata, v any) ([]byte, backend.IsNull, error) {
	s, err := backend.MetadataAs[Scalar](b, meta)
	if err != nil {
		return nil, backend.NotNull, sqlerrors.NewEncodeError(sqlerrors.CodeUnsupportedValue, "proto: bad metadata", err)
	}

	switch s {
	case Bool, UInt32:
		if x, ok := wire.Int(v); ok && x >= 0 {
			return protowire.AppendVarint(buf, uint64(x)), backend.NotNull, nil
		}
	case SInt32, SInt64:
		if ts, ok := v.(time.Time); ok {
			if s == SInt32 {
				return protowire.AppendVarint(buf, protowire.EncodeZigZag(wire.UnixDays(ts))), backend.NotNull, nil
			}
			return protowire.AppendVarint(buf, protowire.EncodeZigZag(wire.UnixMicros(ts))), backend.NotNull, nil
		}
		if x, ok := wire.Int(v); ok {
			return protowire.AppendVarint(buf, protowire.EncodeZigZag(x)), backend.NotNull, nil
		}
	case Float:
		if f, ok := wire.Float(v); ok {
			return protowire.AppendFixed32(buf, math.Float32bits(float32(f))), backend.NotNull, nil
		}
	case Double:
		if f, ok := wire.Float(v); ok {
			return protowire.AppendFixed64(buf, math.Float64bits(f)), backend.NotNull, nil
		}
	case String:
		if str, ok := wire.Text(v); ok {
			return protowire.AppendString(buf, str), backend.NotNull, nil
		}
	case Bytes:
		if raw, ok := wire.Bytes(v); ok {
			return protowire.AppendBytes(buf, raw), backend.NotNull, nil
		}
	}
	return nil, backend.NotNull, sqlerrors.Unsupported(string(ID)+" "+s.String(), v)
}

func (b Backend) DecodeValue(raw []byte, meta backend.Metadata, dst any) error {
	s, err := backend.MetadataAs[Scalar](b, meta)
	if err != nil {
		return sqlerrors.NewDecodeError(sqlerrors.CodeUnsupportedTarget, "proto: bad metadata", err)
	}

	switch s {
	case Bool, UInt32, SInt32, SInt64:
		u, n := protowire.ConsumeVarint(raw)
		if err := consumed(s, raw, n); err != nil {
			return err
		}
		if s == Bool || s == UInt32 {
			if u > math.MaxInt64 {
				return sqlerrors.OutOfRange("proto: varint %d overflows %s", u, s)
			}
			return wire.SetInt(string(ID), dst, int64(u))
		}
		x := protowire.DecodeZigZag(u)
		if d, ok := dst.(*time.Time); ok {
			if s == SInt32 {
				*d = wire.FromUnixDays(x)
			} else {
				*d = wire.FromUnixMicros(x)
			}
			return nil
		}
		return wire.SetInt(string(ID), dst, x)
	case Float:
		u, n := protowire.ConsumeFixed32(raw)
		if err := consumed(s, raw, n); err != nil {
			return err
		}
		return wire.SetFloat(string(ID), dst, float64(math.Float32frombits(u)))
	case Double:
		u, n := protowire.ConsumeFixed64(raw)
		if err := consumed(s, raw, n); err != nil {
			return err
		}
		return wire.SetFloat(string(ID), dst, math.Float64frombits(u))
	case String:
		v, n := protowire.ConsumeBytes(raw)
		if err := consumed(s, raw, n); err != nil {
			return err
		}
		return wire.SetText(string(ID), dst, string(v))
	default:
		v, n := protowire.ConsumeBytes(raw)
		if err := consumed(s, raw, n); err != nil {
			return err
		}
		return wire.SetBytes(string(ID), dst, v)
	}
}

// consumed checks that a consume call read all of raw.
func consumed(s Scalar, raw []byte, n int) error {
	if n < 0 {
		return sqlerrors.NewDecodeError(sqlerrors.CodeMalformedBytes, "proto: invalid "+s.String(), protowire.ParseError(n))
	}
	if n != len(raw) {
		return sqlerrors.Malformed("proto: %d trailing bytes after %s", len(raw)-n, s)
	}
	return nil
}
