package expr

import (
	"bytes"
	"fmt"

	"github.com/arkilian/sqltypes/pkg/backend"
	"github.com/arkilian/sqltypes/pkg/sqltype"
)

// Param is one encoded statement parameter.
type Param struct {
	Type     sqltype.Type
	Metadata backend.Metadata
	IsNull   backend.IsNull
	Bytes    []byte
}

// BindParams encodes lits in order for backend b. It stops at the first
// failing literal.
func BindParams(b backend.Backend, lits ...Literal) ([]Param, error) {
	params := make([]Param, 0, len(lits))
	for i, lit := range lits {
		meta, err := lit.Metadata(b)
		if err != nil {
			return nil, fmt.Errorf("param %d: %w", i+1, err)
		}
		var buf bytes.Buffer
		isNull, err := lit.ToSQL(b, &buf)
		if err != nil {
			return nil, fmt.Errorf("param %d: %w", i+1, err)
		}
		p := Param{Type: lit.SQLType(), Metadata: meta, IsNull: isNull}
		if isNull == backend.NotNull {
			p.Bytes = buf.Bytes()
			if p.Bytes == nil {
				p.Bytes = []byte{}
			}
		}
		params = append(params, p)
	}
	return params, nil
}

// ShapeID returns the static identity of a parameter list: the ordered
// logical types of lits.
func ShapeID(lits ...Literal) uint64 {
	types := make([]sqltype.Type, len(lits))
	for i, lit := range lits {
		types[i] = lit.SQLType()
	}
	return sqltype.ShapeID(types...)
}
