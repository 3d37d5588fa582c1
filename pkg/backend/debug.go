package backend

import (
	sqlerrors "github.com/arkilian/sqltypes/pkg/errors"
)

// DebugID identifies the debug backend.
const DebugID ID = "debug"

// DebugMetadata is the unit metadata of the debug backend.
type DebugMetadata struct{}

func (DebugMetadata) String() string { return "()" }

// Debug is a no-op backend used to build and inspect queries without a
// database. It accepts every value, writes nothing and never reports NULL.
// It carries no data, so it cannot decode.
type Debug struct{}

// DebugBackend is the shared debug backend value.
var DebugBackend Backend = Debug{}

// DebugCapability is attached to every registered binding.
var DebugCapability = Capability{Backend: DebugBackend, Metadata: DebugMetadata{}, Enabled: true}

func (Debug) ID() ID { return DebugID }

func (Debug) AppendValue(buf []byte, _ Metadata, _ any) ([]byte, IsNull, error) {
	return buf, NotNull, nil
}

func (Debug) DecodeValue(_ []byte, _ Metadata, _ any) error {
	return sqlerrors.New(sqlerrors.ErrCategoryDecode, sqlerrors.CodeNoData,
		"debug: backend carries no data")
}

func (Debug) CheckMetadata(meta Metadata) error {
	_, err := metadataOf[DebugMetadata](DebugID, meta)
	return err
}
