// Package mysql implements the MySQL binary protocol backend. Values use the
// little-endian layouts of the binary result set row, without the length
// prefixes the protocol frames them in.
package mysql

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/arkilian/sqltypes/internal/wire"
	"github.com/arkilian/sqltypes/pkg/backend"
	sqlerrors "github.com/arkilian/sqltypes/pkg/errors"
)

// ID identifies the MySQL backend.
const ID backend.ID = "mysql"

// Type is the wire metadata of the MySQL backend: the protocol column type.
type Type uint8

// Protocol column type codes.
const (
	Tiny       Type = 1
	Short      Type = 2
	Long       Type = 3
	Float      Type = 4
	Double     Type = 5
	Timestamp  Type = 7
	LongLong   Type = 8
	Date       Type = 10
	DateTime   Type = 12
	Json       Type = 245
	NewDecimal Type = 246
	Blob       Type = 252
	String     Type = 254
)

var typeNames = map[Type]string{
	Tiny:       "Tiny",
	Short:      "Short",
	Long:       "Long",
	Float:      "Float",
	Double:     "Double",
	Timestamp:  "Timestamp",
	LongLong:   "LongLong",
	Date:       "Date",
	DateTime:   "DateTime",
	Json:       "Json",
	NewDecimal: "NewDecimal",
	Blob:       "Blob",
	String:     "String",
}

func (t Type) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("Type(%d)", uint8(t))
}

// width returns the byte width of fixed-size integer types, or 0.
func (t Type) width() int {
	switch t {
	case Tiny:
		return 1
	case Short:
		return 2
	case Long:
		return 4
	case LongLong:
		return 8
	}
	return 0
}

// Backend is the MySQL backend.
type Backend struct{}

// Default is the shared backend value.
var Default backend.Backend = Backend{}

// Meta declares the MySQL metadata of a logical type for registration.
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
		return sqlerrors.NewRegistrationError(sqlerrors.CodeMetadataMismatch, "mysql: unknown type "+t.String())
	}
	return nil
}

func (b Backend) AppendValue(buf []byte, meta backend.Metadata, v any) ([]byte, backend.IsNull, error) {
	t, err := backend.MetadataAs[Type](b, meta)
	if err != nil {
		return nil, backend.NotNull, sqlerrors.NewEncodeError(sqlerrors.CodeUnsupportedValue, "mysql: bad metadata", err)
	}

	switch t {
	case Tiny, Short, Long, LongLong:
		if x, ok := wire.Int(v); ok {
			return wire.AppendInt(binary.LittleEndian, buf, x, t.width()), backend.NotNull, nil
		}
	case Float:
		if f, ok := wire.Float(v); ok {
			return wire.AppendFloat(binary.LittleEndian, buf, f, 4), backend.NotNull, nil
		}
	case Double:
		if f, ok := wire.Float(v); ok {
			return wire.AppendFloat(binary.LittleEndian, buf, f, 8), backend.NotNull, nil
		}
	case Date:
		if ts, ok := v.(time.Time); ok {
			if err := checkYear(t, ts.UTC()); err != nil {
				return nil, backend.NotNull, err
			}
			return appendDate(buf, ts.UTC()), backend.NotNull, nil
		}
	case Timestamp, DateTime:
		if ts, ok := v.(time.Time); ok {
			if err := checkYear(t, ts.UTC()); err != nil {
				return nil, backend.NotNull, err
			}
			return appendDateTime(buf, ts.UTC()), backend.NotNull, nil
		}
	case Blob:
		if raw, ok := wire.Bytes(v); ok {
			return append(buf, raw...), backend.NotNull, nil
		}
	case String, Json, NewDecimal:
		if s, ok := wire.Text(v); ok {
			return append(buf, s...), backend.NotNull, nil
		}
	}
	return nil, backend.NotNull, sqlerrors.Unsupported(string(ID)+" "+t.String(), v)
}

func (b Backend) DecodeValue(raw []byte, meta backend.Metadata, dst any) error {
	t, err := backend.MetadataAs[Type](b, meta)
	if err != nil {
		return sqlerrors.NewDecodeError(sqlerrors.CodeUnsupportedTarget, "mysql: bad metadata", err)
	}

	switch t {
	case Tiny, Short, Long, LongLong:
		x, err := wire.ReadInt(string(ID), binary.LittleEndian, raw, t.width())
		if err != nil {
			return err
		}
		return wire.SetInt(string(ID), dst, x)
	case Float, Double:
		width := 8
		if t == Float {
			width = 4
		}
		f, err := wire.ReadFloat(string(ID), binary.LittleEndian, raw, width)
		if err != nil {
			return err
		}
		return wire.SetFloat(string(ID), dst, f)
	case Date, Timestamp, DateTime:
		d, ok := dst.(*time.Time)
		if !ok {
			return sqlerrors.UnsupportedTarget(string(ID)+" "+t.String(), dst)
		}
		ts, err := readDateTime(raw)
		if err != nil {
			return err
		}
		*d = ts
		return nil
	case Blob:
		return wire.SetBytes(string(ID), dst, raw)
	default:
		return wire.SetText(string(ID), dst, string(raw))
	}
}

// Years the server stores in DATE and DATETIME columns.
const (
	minYear = 0
	maxYear = 9999
)

func checkYear(t Type, ts time.Time) error {
	if y := ts.Year(); y < minYear || y > maxYear {
		return sqlerrors.NewEncodeError(sqlerrors.CodeUnsupportedValue,
			fmt.Sprintf("mysql: year %d of %s is outside %d..%d", y, t, minYear, maxYear), nil)
	}
	return nil
}

// appendDate writes the 4-byte date form: year (2 bytes), month, day.
func appendDate(buf []byte, t time.Time) []byte {
	buf = binary.LittleEndian.AppendUint16(buf, uint16(t.Year()))
	return append(buf, byte(t.Month()), byte(t.Day()))
}

// appendDateTime writes the 11-byte form: the date, hour, minute, second
// and microseconds (4 bytes).
func appendDateTime(buf []byte, t time.Time) []byte {
	buf = appendDate(buf, t)
	buf = append(buf, byte(t.Hour()), byte(t.Minute()), byte(t.Second()))
	return binary.LittleEndian.AppendUint32(buf, uint32(t.Nanosecond()/1000))
}

// readDateTime accepts the 4, 7 and 11 byte forms the server may send.
func readDateTime(raw []byte) (time.Time, error) {
	switch len(raw) {
	case 0:
		return time.Time{}, nil
	case 4, 7, 11:
	default:
		return time.Time{}, sqlerrors.Malformed("mysql: datetime needs 4, 7 or 11 bytes, got %d", len(raw))
	}

	year := int(binary.LittleEndian.Uint16(raw[0:2]))
	month, day := int(raw[2]), int(raw[3])
	var hour, minute, sec, micro int
	if len(raw) >= 7 {
		hour, minute, sec = int(raw[4]), int(raw[5]), int(raw[6])
	}
	if len(raw) == 11 {
		micro = int(binary.LittleEndian.Uint32(raw[7:11]))
	}

	if month < 1 || month > 12 || day < 1 || day > 31 || hour > 23 || minute > 59 || sec > 59 || micro > 999999 {
		return time.Time{}, sqlerrors.Malformed("mysql: invalid datetime %04d-%02d-%02d %02d:%02d:%02d.%06d",
			year, month, day, hour, minute, sec, micro)
	}
	ts := time.Date(year, time.Month(month), day, hour, minute, sec, micro*1000, time.UTC)
	if ts.Day() != day || int(ts.Month()) != month {
		return time.Time{}, sqlerrors.Malformed("mysql: invalid date %04d-%02d-%02d", year, month, day)
	}
	return ts, nil
}
