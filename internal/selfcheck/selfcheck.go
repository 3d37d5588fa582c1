// Package selfcheck round-trips generated values for every registered binding
// through every selected backend, and optionally through a real SQLite
// database, columnar chunks and protobuf row messages.
package selfcheck

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	charmlog "github.com/charmbracelet/log"

	"github.com/arkilian/sqltypes/internal/config"
	"github.com/arkilian/sqltypes/pkg/backend"
	"github.com/arkilian/sqltypes/pkg/backend/columnar"
	"github.com/arkilian/sqltypes/pkg/backend/proto"
	"github.com/arkilian/sqltypes/pkg/backend/sqlite"
	"github.com/arkilian/sqltypes/pkg/bind"
	sqlerrors "github.com/arkilian/sqltypes/pkg/errors"
	"github.com/arkilian/sqltypes/pkg/row"
	"github.com/arkilian/sqltypes/pkg/sqltype"
	"github.com/arkilian/sqltypes/pkg/types"
)

// Path names the route a sample takes between encoding and decoding.
type Path string

const (
	PathCodec   Path = "codec"
	PathSQLite  Path = "sqlite"
	PathChunk   Path = "chunk"
	PathMessage Path = "message"
)

// nullEvery makes every nullEvery-th row NULL on paths that carry rows.
const nullEvery = 7

// Result is the outcome of one binding on one backend and path.
type Result struct {
	Type     string
	Native   string
	Backend  backend.ID
	Path     Path
	Samples  int
	Failures int
	Err      error
}

// OK reports whether every sample survived.
func (r *Result) OK() bool {
	return r.Failures == 0
}

func (r *Result) fail(err error) {
	if r.Failures == 0 {
		r.Err = err
	}
	r.Failures++
}

// Report collects the results of a run.
type Report struct {
	Seed     int64
	Results  []Result
	Duration time.Duration
}

// Failures returns the number of results with at least one failed sample.
func (r *Report) Failures() int {
	n := 0
	for i := range r.Results {
		if !r.Results[i].OK() {
			n++
		}
	}
	return n
}

// OK reports whether every result passed.
func (r *Report) OK() bool {
	return r.Failures() == 0
}

// Checker runs the self-check.
type Checker struct {
	cfg      *config.Config
	log      *charmlog.Logger
	backends []backend.Backend
}

// New creates a checker for the backends cfg selects. Every selected backend
// must be compiled into the binary.
func New(cfg *config.Config, log *charmlog.Logger) (*Checker, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	backends, err := Select(cfg.Backends)
	if err != nil {
		return nil, err
	}
	return &Checker{cfg: cfg, log: log, backends: backends}, nil
}

// Select resolves backend names. No names selects every compiled-in backend.
func Select(names []string) ([]backend.Backend, error) {
	if len(names) == 0 {
		return types.Backends(), nil
	}
	out := make([]backend.Backend, 0, len(names))
	for _, name := range names {
		b, ok := types.Lookup(backend.ID(name))
		if !ok {
			return nil, fmt.Errorf("backend %s is not compiled into this binary", name)
		}
		out = append(out, b)
	}
	return out, nil
}

func (c *Checker) selected(id backend.ID) bool {
	for _, b := range c.backends {
		if b.ID() == id {
			return true
		}
	}
	return false
}

// Run checks every registered binding. It returns an error only when the run
// itself cannot proceed; failed samples are recorded in the report.
func (c *Checker) Run(ctx context.Context) (*Report, error) {
	start := time.Now()
	seed := c.cfg.Check.Seed
	if seed == 0 {
		seed = start.UnixNano()
	}
	report := &Report{Seed: seed}
	c.log.Info("Starting self-check", "backends", len(c.backends), "samples", c.cfg.Check.Samples, "seed", seed)

	var db *sqlDB
	if c.cfg.Check.SQLite.Enabled && c.selected(sqlite.ID) {
		var err error
		db, err = openSQLDB(ctx, c.cfg.Check.SQLite.DSN)
		if err != nil {
			return nil, err
		}
		defer db.Close()
	}

	for _, e := range types.All() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		g, err := Generator(e.SQLType().Kind())
		if err != nil {
			return nil, err
		}
		samples, err := Sample(g, seed, c.cfg.Check.Samples)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", sqltype.Name(e.SQLType()), err)
		}

		for _, b := range c.backends {
			if !e.Supports(b) {
				c.log.Debug("Skipping unsupported backend", "type", sqltype.Name(e.SQLType()), "backend", b.ID())
				continue
			}
			c.record(report, checkCodec(e, b, samples))
		}
		if db != nil && e.Supports(sqlite.Default) {
			c.record(report, db.check(ctx, e, samples))
		}
		if c.cfg.Check.Chunks && c.selected(columnar.ID) && e.Supports(columnar.Default) {
			c.record(report, checkChunk(e, c.cfg.Columnar.ChunkOptions(), samples))
		}
		if c.cfg.Check.Chunks && c.selected(proto.ID) && e.Supports(proto.Default) {
			c.record(report, checkMessage(e, samples))
		}
	}

	report.Duration = time.Since(start)
	c.log.Info("Self-check finished", "results", len(report.Results), "failures", report.Failures(), "duration", report.Duration)
	return report, nil
}

func (c *Checker) record(report *Report, r Result) {
	report.Results = append(report.Results, r)
	if r.OK() {
		c.log.Debug("Round trip passed", "type", r.Type, "backend", r.Backend, "path", r.Path, "samples", r.Samples)
		return
	}
	c.log.Warn("Round trip failed", "type", r.Type, "backend", r.Backend, "path", r.Path,
		"failures", r.Failures, "samples", r.Samples, "error", r.Err)
}

func newResult(e bind.Entry, b backend.ID, p Path, samples int) Result {
	return Result{
		Type:    sqltype.Name(e.SQLType()),
		Native:  e.NativeName(),
		Backend: b,
		Path:    p,
		Samples: samples,
	}
}

// checkCodec encodes and decodes every sample directly. The debug backend
// carries no data, so there it checks that nothing is written and that
// decoding is refused.
func checkCodec(e bind.Entry, b backend.Backend, samples []any) Result {
	r := newResult(e, b.ID(), PathCodec, len(samples))
	var buf bytes.Buffer
	for i, v := range samples {
		buf.Reset()
		isNull, err := e.EncodeAny(b, v, &buf)
		if err != nil {
			r.fail(fmt.Errorf("sample %d: %w", i, err))
			continue
		}
		if isNull != backend.NotNull {
			r.fail(fmt.Errorf("sample %d: value encoded as NULL", i))
			continue
		}

		if !types.Decoding(b) {
			if buf.Len() != 0 {
				r.fail(fmt.Errorf("sample %d: %d bytes written to a backend without data", i, buf.Len()))
				continue
			}
			if _, err := e.DecodeAny(b, row.Present(nil)); sqlerrors.GetCode(err) != sqlerrors.CodeNoData {
				r.fail(fmt.Errorf("sample %d: expected decoding to be refused, got %v", i, err))
			}
			continue
		}

		got, err := e.DecodeAny(b, row.Present(buf.Bytes()))
		if err != nil {
			r.fail(fmt.Errorf("sample %d: %w", i, err))
			continue
		}
		if !same(v, got) {
			r.fail(mismatch(i, v, got))
		}
	}
	return r
}

// checkSlots compares decoded slots against the samples they were written
// from. Rows at NULL positions must come back NULL.
func checkSlots(r *Result, e bind.Entry, b backend.Backend, samples []any, slots []slotRow) {
	if len(slots) != len(samples) {
		r.fail(fmt.Errorf("expected %d rows, got %d", len(samples), len(slots)))
		return
	}
	for i, s := range slots {
		if s.id != int64(i) {
			r.fail(fmt.Errorf("row %d: out of order, got id %d", i, s.id))
			continue
		}
		if isNullRow(i) {
			if s.slot.Valid {
				r.fail(fmt.Errorf("row %d: expected NULL, got %x", i, s.slot.V))
			}
			continue
		}
		got, err := e.DecodeAny(b, s.slot)
		if err != nil {
			r.fail(fmt.Errorf("row %d: %w", i, err))
			continue
		}
		if !same(samples[i], got) {
			r.fail(mismatch(i, samples[i], got))
		}
	}
}

func isNullRow(i int) bool {
	return i%nullEvery == nullEvery-1
}

func mismatch(i int, want, got any) error {
	return fmt.Errorf("sample %d: decoded %v, want %v", i, got, want)
}

// literal binds a type-erased value as a query literal.
type literal struct {
	e    bind.Entry
	v    any
	null bool
}

func (l literal) SQLType() sqltype.Type { return l.e.SQLType() }

func (l literal) QueryID() uint64 { return sqltype.ShapeID(l.e.SQLType()) }

func (l literal) Metadata(b backend.Backend) (backend.Metadata, error) {
	return l.e.Metadata(b)
}

func (l literal) ToSQL(b backend.Backend, out io.Writer) (backend.IsNull, error) {
	if l.null {
		return backend.Null, nil
	}
	return l.e.EncodeAny(b, l.v, out)
}

func rowLiteral(e bind.Entry, samples []any, i int) literal {
	return literal{e: e, v: samples[i], null: isNullRow(i)}
}
