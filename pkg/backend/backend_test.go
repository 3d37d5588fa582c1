package backend

import (
	"testing"

	sqlerrors "github.com/arkilian/sqltypes/pkg/errors"
)

func TestDebug_AppendValueWritesNothing(t *testing.T) {
	buf := []byte("prefix")
	out, isNull, err := DebugBackend.AppendValue(buf, DebugMetadata{}, int32(42))
	if err != nil {
		t.Fatalf("AppendValue failed: %v", err)
	}
	if isNull != NotNull {
		t.Errorf("got %v, want NotNull", isNull)
	}
	if string(out) != "prefix" {
		t.Errorf("debug backend wrote bytes: %q", out)
	}
}

func TestDebug_DecodeValueFails(t *testing.T) {
	var v int32
	err := DebugBackend.DecodeValue([]byte{1}, DebugMetadata{}, &v)
	if sqlerrors.GetCode(err) != sqlerrors.CodeNoData {
		t.Errorf("got %v, want NO_DATA", err)
	}
}

func TestDebug_CheckMetadata(t *testing.T) {
	if err := DebugBackend.CheckMetadata(DebugMetadata{}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := DebugBackend.CheckMetadata(uint32(23)); err == nil {
		t.Error("foreign metadata should be rejected")
	}
}

func TestMetadataAs(t *testing.T) {
	m, err := MetadataAs[DebugMetadata](DebugBackend, DebugMetadata{})
	if err != nil || m != (DebugMetadata{}) {
		t.Errorf("got %v, %v", m, err)
	}
	if _, err := MetadataAs[int](DebugBackend, DebugMetadata{}); err == nil {
		t.Error("expected type mismatch")
	}
}

func TestCapability_String(t *testing.T) {
	if got := DebugCapability.String(); got != "debug:()" {
		t.Errorf("got %q", got)
	}
	if got := (Capability{}).String(); got != "<nil>" {
		t.Errorf("got %q", got)
	}
}

func TestIsNull_String(t *testing.T) {
	if NotNull.String() != "NotNull" || Null.String() != "Null" {
		t.Error("unexpected IsNull strings")
	}
}
