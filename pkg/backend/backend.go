// Package backend defines the contract every wire dialect implements: how a
// native value becomes bytes, how bytes become a native value, and which wire
// metadata describes a logical type.
package backend

import (
	"fmt"
)

// ID names a wire dialect.
type ID string

// IsNull tells the caller whether an encoder wrote a value or reported the
// value as SQL NULL. It replaces any sentinel byte pattern.
type IsNull bool

const (
	// NotNull means a complete encoding was produced.
	NotNull IsNull = false
	// Null means the value is logically NULL and nothing was produced.
	Null IsNull = true
)

func (n IsNull) String() string {
	if n {
		return "Null"
	}
	return "NotNull"
}

// Metadata is a backend-specific, comparable descriptor of a logical type on
// the wire. Its concrete type depends on the backend.
type Metadata = any

// Backend is a wire dialect.
type Backend interface {
	// ID returns the dialect identifier.
	ID() ID

	// AppendValue appends the encoding of v, described by meta, to buf.
	// On error the returned slice must be ignored.
	AppendValue(buf []byte, meta Metadata, v any) ([]byte, IsNull, error)

	// DecodeValue decodes raw, described by meta, into dst. dst is a non-nil
	// pointer to the native type. Implementations must not retain raw.
	DecodeValue(raw []byte, meta Metadata, dst any) error

	// CheckMetadata reports whether meta is a metadata value of this backend.
	CheckMetadata(meta Metadata) error
}

// Capability declares the wire metadata a backend uses for one logical type.
// Enabled is false when the backend was excluded from the build.
type Capability struct {
	Backend  Backend
	Metadata Metadata
	Enabled  bool
}

// String renders the capability for diagnostics.
func (c Capability) String() string {
	if c.Backend == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%s:%v", c.Backend.ID(), c.Metadata)
}

// metadataOf asserts meta to the backend's metadata type M.
func metadataOf[M any](id ID, meta Metadata) (M, error) {
	m, ok := meta.(M)
	if !ok {
		var zero M
		return zero, fmt.Errorf("%s: metadata %v (%T) is not %T", id, meta, meta, zero)
	}
	return m, nil
}

// MetadataAs converts generic metadata into the concrete type of a backend.
func MetadataAs[M any](b Backend, meta Metadata) (M, error) {
	return metadataOf[M](b.ID(), meta)
}
