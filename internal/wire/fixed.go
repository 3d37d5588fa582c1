package wire

import (
	"encoding/binary"
	"math"
	"time"

	sqlerrors "github.com/arkilian/sqltypes/pkg/errors"
)

// Text layouts for dates and timestamps stored as strings.
const (
	DateLayout      = "2006-01-02"
	TimestampLayout = "2006-01-02 15:04:05.999999"
)

// AppendInt appends the low width bytes of x in the given byte order.
func AppendInt(order binary.AppendByteOrder, buf []byte, x int64, width int) []byte {
	switch width {
	case 1:
		return append(buf, byte(x))
	case 2:
		return order.AppendUint16(buf, uint16(x))
	case 4:
		return order.AppendUint32(buf, uint32(x))
	default:
		return order.AppendUint64(buf, uint64(x))
	}
}

// ReadInt reads a sign-extended integer of exactly width bytes.
func ReadInt(backend string, order binary.ByteOrder, raw []byte, width int) (int64, error) {
	if len(raw) != width {
		return 0, sqlerrors.Malformed("%s: expected %d byte integer, got %d bytes", backend, width, len(raw))
	}
	switch width {
	case 1:
		return int64(int8(raw[0])), nil
	case 2:
		return int64(int16(order.Uint16(raw))), nil
	case 4:
		return int64(int32(order.Uint32(raw))), nil
	default:
		return int64(order.Uint64(raw)), nil
	}
}

// ReadUint reads an unsigned integer of exactly width bytes.
func ReadUint(backend string, order binary.ByteOrder, raw []byte, width int) (uint64, error) {
	if len(raw) != width {
		return 0, sqlerrors.Malformed("%s: expected %d byte integer, got %d bytes", backend, width, len(raw))
	}
	switch width {
	case 1:
		return uint64(raw[0]), nil
	case 2:
		return uint64(order.Uint16(raw)), nil
	case 4:
		return uint64(order.Uint32(raw)), nil
	default:
		return order.Uint64(raw), nil
	}
}

// AppendFloat appends an IEEE 754 float of width 4 or 8.
func AppendFloat(order binary.AppendByteOrder, buf []byte, f float64, width int) []byte {
	if width == 4 {
		return order.AppendUint32(buf, math.Float32bits(float32(f)))
	}
	return order.AppendUint64(buf, math.Float64bits(f))
}

// ReadFloat reads an IEEE 754 float of exactly width bytes.
func ReadFloat(backend string, order binary.ByteOrder, raw []byte, width int) (float64, error) {
	if len(raw) != width {
		return 0, sqlerrors.Malformed("%s: expected %d byte float, got %d bytes", backend, width, len(raw))
	}
	if width == 4 {
		return float64(math.Float32frombits(order.Uint32(raw))), nil
	}
	return math.Float64frombits(order.Uint64(raw)), nil
}

const secondsPerDay = 24 * 60 * 60

// UnixDays returns the number of whole days between the Unix epoch and the
// calendar date of t in UTC.
func UnixDays(t time.Time) int64 {
	t = t.UTC()
	midnight := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return floorDiv(midnight.Unix(), secondsPerDay)
}

// FromUnixDays is the inverse of UnixDays.
func FromUnixDays(days int64) time.Time {
	return time.Unix(days*secondsPerDay, 0).UTC()
}

// UnixMicros returns t as microseconds since the Unix epoch.
func UnixMicros(t time.Time) int64 {
	return t.UnixMicro()
}

// FromUnixMicros is the inverse of UnixMicros, in UTC.
func FromUnixMicros(us int64) time.Time {
	return time.UnixMicro(us).UTC()
}

// FormatDate renders the UTC calendar date of t.
func FormatDate(t time.Time) string {
	return t.UTC().Format(DateLayout)
}

// FormatTimestamp renders t in UTC with microsecond precision.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// ParseDate parses a date, accepting a trailing time of day as written by
// drivers that store dates as timestamps.
func ParseDate(backend, s string) (time.Time, error) {
	if len(s) > len(DateLayout) {
		s = s[:len(DateLayout)]
	}
	t, err := time.ParseInLocation(DateLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, sqlerrors.NewDecodeError(sqlerrors.CodeMalformedBytes, backend+": invalid date", err)
	}
	return t, nil
}

// ParseTimestamp parses a timestamp written by FormatTimestamp or RFC 3339.
func ParseTimestamp(backend, s string) (time.Time, error) {
	t, err := time.ParseInLocation(TimestampLayout, s, time.UTC)
	if err == nil {
		return t, nil
	}
	if t, rfcErr := time.Parse(time.RFC3339Nano, s); rfcErr == nil {
		return t.UTC(), nil
	}
	return time.Time{}, sqlerrors.NewDecodeError(sqlerrors.CodeMalformedBytes, backend+": invalid timestamp", err)
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
