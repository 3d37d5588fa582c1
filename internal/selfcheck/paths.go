package selfcheck

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/arkilian/sqltypes/pkg/backend"
	"github.com/arkilian/sqltypes/pkg/backend/columnar"
	"github.com/arkilian/sqltypes/pkg/backend/proto"
	"github.com/arkilian/sqltypes/pkg/backend/sqlite"
	"github.com/arkilian/sqltypes/pkg/bind"
	"github.com/arkilian/sqltypes/pkg/row"
	"github.com/arkilian/sqltypes/pkg/types"
)

// slotRow is one (id, value) row read back with its value still encoded.
type slotRow struct {
	id   int64
	slot sql.Null[[]byte]
}

var readSlotRow = row.Func[slotRow](func(b backend.Backend, cur row.Cursor) (slotRow, error) {
	id, err := types.BigInt.BuildFromRow(b, cur)
	if err != nil {
		return slotRow{}, fmt.Errorf("id: %w", err)
	}
	return slotRow{id: id, slot: cur.Take()}, nil
})

func idLiteral(i int) literal {
	return literal{e: types.BigInt, v: int64(i)}
}

// sqlDB is the SQLite database samples are written through.
type sqlDB struct {
	db *sql.DB
}

func openSQLDB(ctx context.Context, dsn string) (*sqlDB, error) {
	db, err := sqlite.Open(ctx, dsn)
	if err != nil {
		return nil, err
	}
	// in-memory databases are per connection
	db.SetMaxOpenConns(1)
	return &sqlDB{db: db}, nil
}

func (d *sqlDB) Close() error {
	return d.db.Close()
}

func (d *sqlDB) check(ctx context.Context, e bind.Entry, samples []any) Result {
	r := newResult(e, sqlite.ID, PathSQLite, len(samples))
	if err := d.roundTrip(ctx, e, samples, &r); err != nil {
		r.fail(err)
	}
	return r
}

// roundTrip inserts every sample into a scratch table, reads the table back
// and compares. The transaction is always rolled back.
func (d *sqlDB) roundTrip(ctx context.Context, e bind.Entry, samples []any, r *Result) error {
	meta, err := e.Metadata(sqlite.Default)
	if err != nil {
		return err
	}
	t, err := backend.MetadataAs[sqlite.Type](sqlite.Default, meta)
	if err != nil {
		return err
	}

	table := "check_" + strings.ToLower(e.SQLType().Kind().String())
	cols := []sqlite.ColumnDef{
		{Name: "id", Type: sqlite.Long, PrimaryKey: true},
		{Name: "v", Type: t, Nullable: true},
	}
	ddl, err := sqlite.CreateTableSQL(table, cols)
	if err != nil {
		return err
	}
	insert, err := sqlite.InsertSQL(table, cols)
	if err != nil {
		return err
	}

	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DROP TABLE IF EXISTS "+table); err != nil {
		return fmt.Errorf("failed to drop %s: %w", table, err)
	}
	if _, err := tx.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("failed to create %s: %w", table, err)
	}

	stmt, err := tx.PrepareContext(ctx, insert)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for i := range samples {
		args, err := sqlite.Args(idLiteral(i), rowLiteral(e, samples, i))
		if err != nil {
			return fmt.Errorf("row %d: %w", i, err)
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("row %d: failed to insert: %w", i, err)
		}
	}

	rows, err := tx.QueryContext(ctx, "SELECT id, v FROM "+table+" ORDER BY id")
	if err != nil {
		return fmt.Errorf("failed to query %s: %w", table, err)
	}
	defer rows.Close()

	src, err := sqlite.NewRows(rows)
	if err != nil {
		return err
	}
	got, err := row.Collect(sqlite.Default, src, readSlotRow)
	if err != nil {
		return err
	}
	checkSlots(r, e, sqlite.Default, samples, got)
	return nil
}

// checkChunk writes every sample into one columnar chunk, two slots per row,
// and reads the chunk back.
func checkChunk(e bind.Entry, opts columnar.ChunkOptions, samples []any) Result {
	r := newResult(e, columnar.ID, PathChunk, len(samples))

	w := columnar.NewChunkWriter(opts)
	for i := range samples {
		if err := w.AppendRow(idLiteral(i), rowLiteral(e, samples, i)); err != nil {
			r.fail(fmt.Errorf("row %d: %w", i, err))
			return r
		}
	}

	batch, err := columnar.ReadChunk(w.Bytes())
	if err != nil {
		r.fail(err)
		return r
	}
	rows, err := batch.Rows(2)
	if err != nil {
		r.fail(err)
		return r
	}
	got, err := row.Collect(columnar.Default, rows, readSlotRow)
	if err != nil {
		r.fail(err)
		return r
	}
	checkSlots(&r, e, columnar.Default, samples, got)
	return r
}

// checkMessage encodes every sample as a two-field protobuf row message and
// splits it back into slots.
func checkMessage(e bind.Entry, samples []any) Result {
	r := newResult(e, proto.ID, PathMessage, len(samples))

	got := make([]slotRow, 0, len(samples))
	for i := range samples {
		msg, err := proto.AppendRow(nil, idLiteral(i), rowLiteral(e, samples, i))
		if err != nil {
			r.fail(fmt.Errorf("row %d: %w", i, err))
			return r
		}
		cur, err := proto.NewCursor(msg, 2)
		if err != nil {
			r.fail(fmt.Errorf("row %d: %w", i, err))
			return r
		}
		sr, err := readSlotRow.BuildFromRow(proto.Default, cur)
		if err != nil {
			r.fail(fmt.Errorf("row %d: %w", i, err))
			return r
		}
		got = append(got, sr)
	}
	checkSlots(&r, e, proto.Default, samples, got)
	return r
}
