// Package types declares the bindings between logical SQL types and Go
// types, with the wire metadata of each on every backend.
package types

import (
	"encoding/json"
	"time"

	"github.com/arkilian/sqltypes/pkg/backend"
	"github.com/arkilian/sqltypes/pkg/backend/columnar"
	"github.com/arkilian/sqltypes/pkg/backend/mysql"
	"github.com/arkilian/sqltypes/pkg/backend/pg"
	"github.com/arkilian/sqltypes/pkg/backend/proto"
	"github.com/arkilian/sqltypes/pkg/backend/sqlite"
	"github.com/arkilian/sqltypes/pkg/bind"
	"github.com/arkilian/sqltypes/pkg/sqltype"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

var (
	Bool = bind.Register[sqltype.Bool, bool](
		sqlite.Meta(sqlite.Integer),
		pg.Meta(pgtype.BoolOID, pgtype.BoolArrayOID),
		mysql.Meta(mysql.Tiny),
		columnar.Meta(columnar.Bool),
		proto.Meta(proto.Bool),
	)

	SmallInt = bind.Register[sqltype.SmallInt, int16](
		sqlite.Meta(sqlite.SmallInt),
		pg.Meta(pgtype.Int2OID, pgtype.Int2ArrayOID),
		mysql.Meta(mysql.Short),
		columnar.Meta(columnar.Int16),
		proto.Meta(proto.SInt32),
	)

	Integer = bind.Register[sqltype.Integer, int32](
		sqlite.Meta(sqlite.Integer),
		pg.Meta(pgtype.Int4OID, pgtype.Int4ArrayOID),
		mysql.Meta(mysql.Long),
		columnar.Meta(columnar.Int32),
		proto.Meta(proto.SInt32),
	)

	BigInt = bind.Register[sqltype.BigInt, int64](
		sqlite.Meta(sqlite.Long),
		pg.Meta(pgtype.Int8OID, pgtype.Int8ArrayOID),
		mysql.Meta(mysql.LongLong),
		columnar.Meta(columnar.Int64),
		proto.Meta(proto.SInt64),
	)

	Float = bind.Register[sqltype.Float, float32](
		sqlite.Meta(sqlite.Float),
		pg.Meta(pgtype.Float4OID, pgtype.Float4ArrayOID),
		mysql.Meta(mysql.Float),
		columnar.Meta(columnar.Float32),
		proto.Meta(proto.Float),
	)

	Double = bind.Register[sqltype.Double, float64](
		sqlite.Meta(sqlite.Double),
		pg.Meta(pgtype.Float8OID, pgtype.Float8ArrayOID),
		mysql.Meta(mysql.Double),
		columnar.Meta(columnar.Float64),
		proto.Meta(proto.Double),
	)

	Numeric = bind.Register[sqltype.Numeric, decimal.Decimal](
		sqlite.Meta(sqlite.Text),
		pg.Meta(pgtype.NumericOID, pgtype.NumericArrayOID),
		mysql.Meta(mysql.NewDecimal),
		columnar.Meta(columnar.Decimal),
		proto.Meta(proto.String),
	)

	Text = bind.Register[sqltype.Text, string](
		sqlite.Meta(sqlite.Text),
		pg.Meta(pgtype.TextOID, pgtype.TextArrayOID),
		mysql.Meta(mysql.String),
		columnar.Meta(columnar.Utf8),
		proto.Meta(proto.String),
	)

	Binary = bind.Register[sqltype.Binary, []byte](
		sqlite.Meta(sqlite.Binary),
		pg.Meta(pgtype.ByteaOID, pgtype.ByteaArrayOID),
		mysql.Meta(mysql.Blob),
		columnar.Meta(columnar.Bytes),
		proto.Meta(proto.Bytes),
	)

	Date = bind.Register[sqltype.Date, time.Time](
		sqlite.Meta(sqlite.Date),
		pg.Meta(pgtype.DateOID, pgtype.DateArrayOID),
		mysql.Meta(mysql.Date),
		columnar.Meta(columnar.Date32),
		proto.Meta(proto.SInt32),
	)

	Timestamp = bind.Register[sqltype.Timestamp, time.Time](
		sqlite.Meta(sqlite.Timestamp),
		pg.Meta(pgtype.TimestampOID, pgtype.TimestampArrayOID),
		mysql.Meta(mysql.DateTime),
		columnar.Meta(columnar.TimestampMicros),
		proto.Meta(proto.SInt64),
	)

	UUID = bind.Register[sqltype.UUID, uuid.UUID](
		sqlite.Meta(sqlite.Binary),
		pg.Meta(pgtype.UUIDOID, pgtype.UUIDArrayOID),
		mysql.Meta(mysql.Blob),
		columnar.Meta(columnar.UUID),
		proto.Meta(proto.Bytes),
	)

	JSON = bind.Register[sqltype.JSON, json.RawMessage](
		sqlite.Meta(sqlite.Text),
		pg.Meta(pgtype.JSONOID, pgtype.JSONArrayOID),
		mysql.Meta(mysql.Json),
		columnar.Meta(columnar.JSON),
		proto.Meta(proto.String),
	)

	// Oid only exists on PostgreSQL.
	Oid = bind.Register[sqltype.Oid, uint32](
		pg.Meta(pgtype.OIDOID, pgtype.OIDArrayOID),
	)
)

// All returns every registered binding in declaration order.
func All() []bind.Entry {
	return []bind.Entry{
		Bool, SmallInt, Integer, BigInt, Float, Double, Numeric,
		Text, Binary, Date, Timestamp, UUID, JSON, Oid,
	}
}

// Backends returns the debug backend followed by every backend compiled into
// this build.
func Backends() []backend.Backend {
	out := []backend.Backend{backend.DebugBackend}
	for _, c := range []struct {
		b       backend.Backend
		enabled bool
	}{
		{sqlite.Default, sqlite.Enabled},
		{pg.Default, pg.Enabled},
		{mysql.Default, mysql.Enabled},
		{columnar.Default, columnar.Enabled},
		{proto.Default, proto.Enabled},
	} {
		if c.enabled {
			out = append(out, c.b)
		}
	}
	return out
}

// Lookup returns the compiled-in backend with the given ID.
func Lookup(id backend.ID) (backend.Backend, bool) {
	for _, b := range Backends() {
		if b.ID() == id {
			return b, true
		}
	}
	return nil, false
}

// Decoding reports whether b can decode values. The debug backend carries no
// data and cannot.
func Decoding(b backend.Backend) bool {
	return b != nil && b.ID() != backend.DebugID
}

// Cell is one entry of the capability matrix.
type Cell struct {
	Type      sqltype.Type
	Native    string
	Backend   backend.ID
	Supported bool
	Metadata  backend.Metadata
}

// Capabilities returns the capability matrix: one cell per binding and
// compiled-in backend, in declaration order.
func Capabilities() []Cell {
	backends := Backends()
	var cells []Cell
	for _, e := range All() {
		for _, b := range backends {
			cell := Cell{Type: e.SQLType(), Native: e.NativeName(), Backend: b.ID()}
			if meta, err := e.Metadata(b); err == nil {
				cell.Supported = true
				cell.Metadata = meta
			}
			cells = append(cells, cell)
		}
	}
	return cells
}
