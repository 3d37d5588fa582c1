package proto

import (
	"bytes"
	"database/sql"
	"fmt"

	"github.com/arkilian/sqltypes/pkg/backend"
	sqlerrors "github.com/arkilian/sqltypes/pkg/errors"
	"github.com/arkilian/sqltypes/pkg/expr"
	"github.com/arkilian/sqltypes/pkg/row"
	"google.golang.org/protobuf/encoding/protowire"
)

// AppendRow encodes lits as one protobuf message, column i as field i+1.
// NULL columns are left out of the message.
func AppendRow(buf []byte, lits ...expr.Literal) ([]byte, error) {
	var value bytes.Buffer
	for i, lit := range lits {
		meta, err := lit.Metadata(Default)
		if err != nil {
			return nil, fmt.Errorf("column %d: %w", i+1, err)
		}
		s, err := backend.MetadataAs[Scalar](Default, meta)
		if err != nil {
			return nil, fmt.Errorf("column %d: %w", i+1, err)
		}

		value.Reset()
		isNull, err := lit.ToSQL(Default, &value)
		if err != nil {
			return nil, fmt.Errorf("column %d: %w", i+1, err)
		}
		if isNull == backend.Null {
			continue
		}
		buf = protowire.AppendTag(buf, protowire.Number(i+1), s.WireType())
		buf = append(buf, value.Bytes()...)
	}
	return buf, nil
}

// NewCursor splits msg into one slot per column. Fields that are missing
// become NULL slots; when a field repeats, the last occurrence wins.
func NewCursor(msg []byte, columns int) (*row.SliceCursor, error) {
	slots := make([]sql.Null[[]byte], columns)
	for len(msg) > 0 {
		num, typ, n := protowire.ConsumeTag(msg)
		if n < 0 {
			return nil, sqlerrors.NewDecodeError(sqlerrors.CodeMalformedBytes, "proto: invalid field tag", protowire.ParseError(n))
		}
		msg = msg[n:]

		m := protowire.ConsumeFieldValue(num, typ, msg)
		if m < 0 {
			return nil, sqlerrors.NewDecodeError(sqlerrors.CodeMalformedBytes,
				fmt.Sprintf("proto: invalid value for field %d", num), protowire.ParseError(m))
		}
		if int(num) > columns {
			return nil, sqlerrors.Malformed("proto: field %d outside of %d columns", num, columns)
		}
		slots[num-1] = row.Present(bytes.Clone(msg[:m]))
		msg = msg[m:]
	}
	return row.NewSliceCursor(slots...), nil
}
