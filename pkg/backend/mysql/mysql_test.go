package mysql

import (
	"bytes"
	"testing"
	"time"

	sqlerrors "github.com/arkilian/sqltypes/pkg/errors"
	"github.com/shopspring/decimal"
)

func TestAppendValue_LittleEndian(t *testing.T) {
	tests := []struct {
		name string
		typ  Type
		in   any
		want []byte
	}{
		{"tiny", Tiny, true, []byte{1}},
		{"short", Short, int16(0x0102), []byte{0x02, 0x01}},
		{"long", Long, int32(42), []byte{42, 0, 0, 0}},
		{"longlong", LongLong, int64(-1), bytes.Repeat([]byte{0xff}, 8)},
		{"float", Float, float32(1), []byte{0, 0, 0x80, 0x3f}},
		{"string", String, "abc", []byte("abc")},
		{"decimal", NewDecimal, decimal.New(-15, -1), []byte("-1.5")},
		{"date", Date, time.Date(2024, 2, 29, 10, 0, 0, 0, time.UTC), []byte{0xe8, 0x07, 2, 29}},
		{"datetime", DateTime, time.Date(2024, 2, 29, 10, 11, 12, 5000, time.UTC),
			[]byte{0xe8, 0x07, 2, 29, 10, 11, 12, 5, 0, 0, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _, err := Default.AppendValue(nil, tt.typ, tt.in)
			if err != nil {
				t.Fatalf("AppendValue failed: %v", err)
			}
			if !bytes.Equal(got, tt.want) {
				t.Errorf("expected %x, got %x", tt.want, got)
			}
		})
	}
}

func TestDecodeValue_DateTimeForms(t *testing.T) {
	tests := []struct {
		name string
		raw  []byte
		want time.Time
	}{
		{"date only", []byte{0xe8, 0x07, 1, 2}, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)},
		{"seconds", []byte{0xe8, 0x07, 1, 2, 3, 4, 5}, time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)},
		{"micros", []byte{0xe8, 0x07, 1, 2, 3, 4, 5, 0x3f, 0x42, 0x0f, 0}, time.Date(2024, 1, 2, 3, 4, 5, 999999000, time.UTC)},
		{"zero", []byte{}, time.Time{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got time.Time
			if err := Default.DecodeValue(tt.raw, DateTime, &got); err != nil {
				t.Fatalf("DecodeValue failed: %v", err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestDecodeValue_Errors(t *testing.T) {
	var i16 int16
	var when time.Time

	if err := Default.DecodeValue([]byte{1, 2, 3}, Short, &i16); sqlerrors.GetCode(err) != sqlerrors.CodeMalformedBytes {
		t.Errorf("expected malformed, got %v", err)
	}
	if err := Default.DecodeValue([]byte{1, 2, 3, 4, 5}, Date, &when); sqlerrors.GetCode(err) != sqlerrors.CodeMalformedBytes {
		t.Errorf("expected malformed, got %v", err)
	}
	if err := Default.DecodeValue([]byte{0xe8, 0x07, 13, 1}, Date, &when); sqlerrors.GetCode(err) != sqlerrors.CodeMalformedBytes {
		t.Errorf("expected invalid month to be rejected, got %v", err)
	}
	overflow := []byte{0xe8, 0x07, 1, 2, 3, 4, 5, 0x40, 0x42, 0x0f, 0}
	if err := Default.DecodeValue(overflow, DateTime, &when); sqlerrors.GetCode(err) != sqlerrors.CodeMalformedBytes {
		t.Errorf("expected microsecond overflow to be rejected, got %v", err)
	}
	if err := Default.DecodeValue([]byte{0xe8, 0x07, 1, 1}, Date, &i16); sqlerrors.GetCode(err) != sqlerrors.CodeUnsupportedTarget {
		t.Errorf("expected unsupported target, got %v", err)
	}
	if err := Default.DecodeValue([]byte{2}, Tiny, new(bool)); sqlerrors.GetCode(err) != sqlerrors.CodeValueOutOfRange {
		t.Errorf("expected out of range bool, got %v", err)
	}
}

func TestAppendValue_YearOutOfRange(t *testing.T) {
	tests := []struct {
		name string
		typ  Type
		in   time.Time
	}{
		{"date past 9999", Date, time.Date(10000, 1, 1, 0, 0, 0, 0, time.UTC)},
		{"date wrapping uint16", Date, time.Date(70000, 1, 2, 0, 0, 0, 0, time.UTC)},
		{"negative date", Date, time.Date(-5, 6, 1, 0, 0, 0, 0, time.UTC)},
		{"datetime past 9999", DateTime, time.Date(12000, 3, 4, 5, 6, 7, 0, time.UTC)},
		{"negative timestamp", Timestamp, time.Date(-1, 12, 31, 23, 59, 59, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _, err := Default.AppendValue(nil, tt.typ, tt.in)
			if sqlerrors.GetCategory(err) != sqlerrors.ErrCategoryEncode || sqlerrors.GetCode(err) != sqlerrors.CodeUnsupportedValue {
				t.Fatalf("expected ENCODE/UNSUPPORTED_VALUE, got %v", err)
			}
			if got != nil {
				t.Errorf("expected no bytes, got %x", got)
			}
		})
	}

	for _, ts := range []time.Time{
		time.Date(0, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(9999, 12, 31, 23, 59, 59, 999999000, time.UTC),
	} {
		enc, _, err := Default.AppendValue(nil, DateTime, ts)
		if err != nil {
			t.Fatalf("%v: AppendValue failed: %v", ts, err)
		}
		var got time.Time
		if err := Default.DecodeValue(enc, DateTime, &got); err != nil || !got.Equal(ts) {
			t.Errorf("expected %v, got %v (%v)", ts, got, err)
		}
	}
}

func TestDecodeValue_ImpossibleDates(t *testing.T) {
	tests := []struct {
		name string
		raw  []byte
	}{
		{"february 31", []byte{0xe8, 0x07, 2, 31}},
		{"february 30 in a leap year", []byte{0xe8, 0x07, 2, 30}},
		{"february 29 in a common year", []byte{0xe7, 0x07, 2, 29}},
		{"april 31", []byte{0xe8, 0x07, 4, 31, 1, 2, 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got time.Time
			if err := Default.DecodeValue(tt.raw, DateTime, &got); sqlerrors.GetCode(err) != sqlerrors.CodeMalformedBytes {
				t.Errorf("expected malformed, got %v (decoded %v)", err, got)
			}
		})
	}

	var got time.Time
	if err := Default.DecodeValue([]byte{0xe8, 0x07, 2, 29}, Date, &got); err != nil {
		t.Errorf("expected leap day to decode, got %v", err)
	}
}

func TestRoundTrip_Timestamp(t *testing.T) {
	ts := time.Date(1999, 12, 31, 23, 59, 59, 999999000, time.UTC)
	enc, _, err := Default.AppendValue(nil, Timestamp, ts)
	if err != nil {
		t.Fatalf("AppendValue failed: %v", err)
	}
	if len(enc) != 11 {
		t.Fatalf("expected 11 bytes, got %d", len(enc))
	}
	var got time.Time
	if err := Default.DecodeValue(enc, Timestamp, &got); err != nil {
		t.Fatalf("DecodeValue failed: %v", err)
	}
	if !got.Equal(ts) {
		t.Errorf("expected %v, got %v", ts, got)
	}
}

func TestType_String(t *testing.T) {
	if got := NewDecimal.String(); got != "NewDecimal" {
		t.Errorf("expected NewDecimal, got %s", got)
	}
	if got := Type(99).String(); got != "Type(99)" {
		t.Errorf("expected Type(99), got %s", got)
	}
}
