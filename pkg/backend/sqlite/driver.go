package sqlite

import (
	"context"
	"database/sql"
	"encoding/binary"
	"fmt"
	"slices"
	"time"

	"github.com/arkilian/sqltypes/internal/wire"
	"github.com/arkilian/sqltypes/pkg/backend"
	sqlerrors "github.com/arkilian/sqltypes/pkg/errors"
	"github.com/arkilian/sqltypes/pkg/expr"
	"github.com/arkilian/sqltypes/pkg/row"
	_ "github.com/mattn/go-sqlite3"
)

// Open opens the SQLite database at dsn through mattn/go-sqlite3 and checks
// that it is reachable.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	return db, nil
}

// Args encodes lits with the SQLite backend and converts each encoding into
// the driver value of its storage class, ready for Exec or Query.
func Args(lits ...expr.Literal) ([]any, error) {
	params, err := expr.BindParams(Default, lits...)
	if err != nil {
		return nil, err
	}
	args := make([]any, len(params))
	for i, p := range params {
		if p.IsNull == backend.Null {
			continue
		}
		t, err := backend.MetadataAs[Type](Default, p.Metadata)
		if err != nil {
			return nil, fmt.Errorf("param %d: %w", i+1, err)
		}
		switch t.Storage() {
		case StorageInteger:
			x, err := wire.ReadInt(string(ID), binary.BigEndian, p.Bytes, 8)
			if err != nil {
				return nil, fmt.Errorf("param %d: %w", i+1, err)
			}
			args[i] = x
		case StorageReal:
			f, err := wire.ReadFloat(string(ID), binary.BigEndian, p.Bytes, 8)
			if err != nil {
				return nil, fmt.Errorf("param %d: %w", i+1, err)
			}
			args[i] = f
		case StorageBlob:
			args[i] = p.Bytes
		default:
			args[i] = string(p.Bytes)
		}
	}
	return args, nil
}

// Rows adapts *sql.Rows to row.Rows. Each scanned driver value is re-encoded
// the way the SQLite backend encodes it, so bindings decode result columns
// exactly as they decode their own output.
type Rows struct {
	rows *sql.Rows
	vals []any
	cur  *row.SliceCursor
	err  error
}

// NewRows wraps rows. The caller still owns rows and must close it.
func NewRows(rows *sql.Rows) (*Rows, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read result columns: %w", err)
	}
	return &Rows{rows: rows, vals: make([]any, len(cols))}, nil
}

func (r *Rows) Next() bool {
	if r.err != nil || !r.rows.Next() {
		return false
	}

	ptrs := make([]any, len(r.vals))
	for i := range r.vals {
		r.vals[i] = nil
		ptrs[i] = &r.vals[i]
	}
	if err := r.rows.Scan(ptrs...); err != nil {
		r.err = sqlerrors.NewDecodeError(sqlerrors.CodeMalformedBytes, "sqlite: scanning row", err)
		return false
	}

	slots := make([]sql.Null[[]byte], len(r.vals))
	for i, v := range r.vals {
		slot, err := driverSlot(v)
		if err != nil {
			r.err = fmt.Errorf("column %d: %w", i+1, err)
			return false
		}
		slots[i] = slot
	}
	r.cur = row.NewSliceCursor(slots...)
	return true
}

func (r *Rows) Cursor() row.Cursor {
	return r.cur
}

func (r *Rows) Err() error {
	if r.err != nil {
		return r.err
	}
	return r.rows.Err()
}

func driverSlot(v any) (sql.Null[[]byte], error) {
	switch x := v.(type) {
	case nil:
		return row.Absent(), nil
	case int64:
		return row.Present(binary.BigEndian.AppendUint64(nil, uint64(x))), nil
	case float64:
		return row.Present(wire.AppendFloat(binary.BigEndian, nil, x, 8)), nil
	case bool:
		var n uint64
		if x {
			n = 1
		}
		return row.Present(binary.BigEndian.AppendUint64(nil, n)), nil
	case string:
		return row.Present([]byte(x)), nil
	case []byte:
		b := slices.Clone(x)
		if b == nil {
			b = []byte{}
		}
		return row.Present(b), nil
	case time.Time:
		return row.Present([]byte(wire.FormatTimestamp(x))), nil
	default:
		return sql.Null[[]byte]{}, sqlerrors.Unsupported(string(ID)+" driver", v)
	}
}
