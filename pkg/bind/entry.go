package bind

import (
	"database/sql"
	"io"

	"github.com/arkilian/sqltypes/pkg/backend"
	"github.com/arkilian/sqltypes/pkg/sqltype"
)

// Entry is the type-erased view of a Binding, for tooling that walks every
// registered binding.
type Entry interface {
	SQLType() sqltype.Type
	NativeName() string
	Capabilities() []backend.Capability
	Supports(b backend.Backend) bool
	Metadata(b backend.Backend) (backend.Metadata, error)
	EncodeAny(b backend.Backend, v any, out io.Writer) (backend.IsNull, error)
	DecodeAny(b backend.Backend, raw sql.Null[[]byte]) (any, error)
}
