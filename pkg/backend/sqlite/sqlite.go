// Package sqlite implements the row-oriented SQLite backend.
//
// SQLite has four storage classes. Values travel as their storage class
// encoding: INTEGER as an 8-byte big-endian two's complement, REAL as an
// 8-byte big-endian IEEE 754 double, TEXT as UTF-8 and BLOB as raw bytes.
// Dates and timestamps are stored as TEXT in UTC.
package sqlite

import (
	"encoding/binary"
	"time"

	"github.com/arkilian/sqltypes/internal/wire"
	"github.com/arkilian/sqltypes/pkg/backend"
	sqlerrors "github.com/arkilian/sqltypes/pkg/errors"
)

// ID identifies the SQLite backend.
const ID backend.ID = "sqlite"

// Type is the wire metadata of the SQLite backend.
type Type uint8

const (
	Binary Type = iota + 1
	Text
	Float
	Double
	SmallInt
	Integer
	Long
	Date
	Timestamp
)

var typeNames = map[Type]string{
	Binary:    "Binary",
	Text:      "Text",
	Float:     "Float",
	Double:    "Double",
	SmallInt:  "SmallInt",
	Integer:   "Integer",
	Long:      "Long",
	Date:      "Date",
	Timestamp: "Timestamp",
}

func (t Type) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return "Unknown"
}

// StorageClass is one of SQLite's on-disk value classes.
type StorageClass string

const (
	StorageInteger StorageClass = "INTEGER"
	StorageReal    StorageClass = "REAL"
	StorageText    StorageClass = "TEXT"
	StorageBlob    StorageClass = "BLOB"
)

// Storage returns the storage class values of type t are kept in.
func (t Type) Storage() StorageClass {
	switch t {
	case SmallInt, Integer, Long:
		return StorageInteger
	case Float, Double:
		return StorageReal
	case Binary:
		return StorageBlob
	default:
		return StorageText
	}
}

// Backend is the SQLite backend.
type Backend struct{}

// Default is the shared backend value.
var Default backend.Backend = Backend{}

// Meta declares the SQLite metadata of a logical type for registration.
func Meta(t Type) backend.Capability {
	return backend.Capability{Backend: Default, Metadata: t, Enabled: Enabled}
}

func (Backend) ID() backend.ID { return ID }

func (Backend) CheckMetadata(meta backend.Metadata) error {
	t, err := backend.MetadataAs[Type](Default, meta)
	if err != nil {
		return err
	}
	if _, ok := typeNames[t]; !ok {
		return sqlerrors.NewRegistrationError(sqlerrors.CodeMetadataMismatch, "sqlite: unknown type "+t.String())
	}
	return nil
}

func (b Backend) AppendValue(buf []byte, meta backend.Metadata, v any) ([]byte, backend.IsNull, error) {
	t, err := backend.MetadataAs[Type](b, meta)
	if err != nil {
		return nil, backend.NotNull, sqlerrors.NewEncodeError(sqlerrors.CodeUnsupportedValue, "sqlite: bad metadata", err)
	}

	switch t.Storage() {
	case StorageInteger:
		if x, ok := wire.Int(v); ok {
			return binary.BigEndian.AppendUint64(buf, uint64(x)), backend.NotNull, nil
		}
	case StorageReal:
		if f, ok := wire.Float(v); ok {
			return wire.AppendFloat(binary.BigEndian, buf, f, 8), backend.NotNull, nil
		}
	case StorageBlob:
		if raw, ok := wire.Bytes(v); ok {
			return append(buf, raw...), backend.NotNull, nil
		}
	case StorageText:
		if ts, ok := v.(time.Time); ok {
			if t == Date {
				return append(buf, wire.FormatDate(ts)...), backend.NotNull, nil
			}
			return append(buf, wire.FormatTimestamp(ts)...), backend.NotNull, nil
		}
		if s, ok := wire.Text(v); ok {
			return append(buf, s...), backend.NotNull, nil
		}
	}
	return nil, backend.NotNull, sqlerrors.Unsupported(string(ID)+" "+t.String(), v)
}

func (b Backend) DecodeValue(raw []byte, meta backend.Metadata, dst any) error {
	t, err := backend.MetadataAs[Type](b, meta)
	if err != nil {
		return sqlerrors.NewDecodeError(sqlerrors.CodeUnsupportedTarget, "sqlite: bad metadata", err)
	}

	switch t.Storage() {
	case StorageInteger:
		x, err := wire.ReadInt(string(ID), binary.BigEndian, raw, 8)
		if err != nil {
			return err
		}
		return wire.SetInt(string(ID), dst, x)
	case StorageReal:
		f, err := wire.ReadFloat(string(ID), binary.BigEndian, raw, 8)
		if err != nil {
			return err
		}
		return wire.SetFloat(string(ID), dst, f)
	case StorageBlob:
		return wire.SetBytes(string(ID), dst, raw)
	default:
		if ts, ok := dst.(*time.Time); ok {
			var parsed time.Time
			if t == Date {
				parsed, err = wire.ParseDate(string(ID), string(raw))
			} else {
				parsed, err = wire.ParseTimestamp(string(ID), string(raw))
			}
			if err != nil {
				return err
			}
			*ts = parsed
			return nil
		}
		return wire.SetText(string(ID), dst, string(raw))
	}
}
