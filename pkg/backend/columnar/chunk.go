package columnar

import (
	"bytes"
	"database/sql"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/arkilian/sqltypes/pkg/backend"
	sqlerrors "github.com/arkilian/sqltypes/pkg/errors"
	"github.com/arkilian/sqltypes/pkg/expr"
	"github.com/arkilian/sqltypes/pkg/row"
	"github.com/golang/snappy"
	"github.com/spaolacci/murmur3"
)

// Chunk layout:
//
//	flags    1 byte   flagCompressed | flagChecksum
//	checksum 4 bytes  murmur3 of the payload as stored, little-endian (optional)
//	payload           slot list, snappy compressed when flagCompressed is set
//
// The slot list is a uvarint slot count followed, per slot, by a presence
// byte and, for present slots, a uvarint length and the value bytes.
const (
	flagCompressed byte = 1 << iota
	flagChecksum

	knownFlags = flagCompressed | flagChecksum
)

const (
	slotAbsent  byte = 0
	slotPresent byte = 1
)

// ChunkOptions controls how chunks are written.
type ChunkOptions struct {
	Compression bool
	Checksum    bool
}

// DefaultChunkOptions compresses and checksums chunks.
func DefaultChunkOptions() ChunkOptions {
	return ChunkOptions{Compression: true, Checksum: true}
}

// ChunkWriter accumulates encoded column slots, row by row, and serializes
// them as one chunk.
type ChunkWriter struct {
	opts    ChunkOptions
	payload []byte
	count   uint64
}

// NewChunkWriter creates an empty chunk writer.
func NewChunkWriter(opts ChunkOptions) *ChunkWriter {
	return &ChunkWriter{opts: opts}
}

// Append encodes lit with the columnar backend and adds it as the next slot.
func (w *ChunkWriter) Append(lit expr.Literal) error {
	var buf bytes.Buffer
	isNull, err := lit.ToSQL(Default, &buf)
	if err != nil {
		return fmt.Errorf("slot %d: %w", w.count, err)
	}
	if isNull == backend.Null {
		w.AppendSlot(row.Absent())
		return nil
	}
	w.AppendSlot(row.Present(buf.Bytes()))
	return nil
}

// AppendRow appends one slot per literal.
func (w *ChunkWriter) AppendRow(lits ...expr.Literal) error {
	for _, lit := range lits {
		if err := w.Append(lit); err != nil {
			return err
		}
	}
	return nil
}

// AppendSlot adds an already encoded slot.
func (w *ChunkWriter) AppendSlot(slot sql.Null[[]byte]) {
	if !slot.Valid {
		w.payload = append(w.payload, slotAbsent)
	} else {
		w.payload = append(w.payload, slotPresent)
		w.payload = binary.AppendUvarint(w.payload, uint64(len(slot.V)))
		w.payload = append(w.payload, slot.V...)
	}
	w.count++
}

// Len returns the number of slots written so far.
func (w *ChunkWriter) Len() int {
	return int(w.count)
}

// Bytes serializes the chunk.
func (w *ChunkWriter) Bytes() []byte {
	body := binary.AppendUvarint(make([]byte, 0, len(w.payload)+binary.MaxVarintLen64), w.count)
	body = append(body, w.payload...)

	var flags byte
	if w.opts.Compression {
		flags |= flagCompressed
		body = snappy.Encode(nil, body)
	}

	out := []byte{flags}
	if w.opts.Checksum {
		out[0] |= flagChecksum
		out = binary.LittleEndian.AppendUint32(out, murmur3.Sum32(body))
	}
	return append(out, body...)
}

// WriteTo writes the serialized chunk to out.
func (w *ChunkWriter) WriteTo(out io.Writer) (int64, error) {
	n, err := out.Write(w.Bytes())
	if err != nil {
		return int64(n), sqlerrors.NewEncodeError(sqlerrors.CodeSinkWrite, "columnar: writing chunk", err)
	}
	return int64(n), nil
}

// Reset discards the written slots.
func (w *ChunkWriter) Reset() {
	w.payload = w.payload[:0]
	w.count = 0
}

// Batch is a decoded chunk. It is a row.Cursor over all of its slots.
type Batch struct {
	slots []sql.Null[[]byte]
	pos   int
}

// ReadChunk verifies and decodes a chunk written by ChunkWriter.
func ReadChunk(data []byte) (*Batch, error) {
	if len(data) == 0 {
		return nil, sqlerrors.Malformed("columnar: empty chunk")
	}
	flags, body := data[0], data[1:]
	if flags&^knownFlags != 0 {
		return nil, sqlerrors.Malformed("columnar: unknown chunk flags %#x", flags)
	}

	if flags&flagChecksum != 0 {
		if len(body) < 4 {
			return nil, sqlerrors.Malformed("columnar: truncated chunk checksum")
		}
		want := binary.LittleEndian.Uint32(body[:4])
		body = body[4:]
		if got := murmur3.Sum32(body); got != want {
			return nil, sqlerrors.Malformed("columnar: chunk checksum mismatch: %08x != %08x", got, want)
		}
	}

	if flags&flagCompressed != 0 {
		decoded, err := snappy.Decode(nil, body)
		if err != nil {
			return nil, sqlerrors.NewDecodeError(sqlerrors.CodeMalformedBytes, "columnar: decompressing chunk", err)
		}
		body = decoded
	}

	count, n := binary.Uvarint(body)
	if n <= 0 {
		return nil, sqlerrors.Malformed("columnar: bad slot count")
	}
	body = body[n:]
	// every slot takes at least one byte
	if count > uint64(len(body)) {
		return nil, sqlerrors.Malformed("columnar: %d slots do not fit in %d bytes", count, len(body))
	}

	slots := make([]sql.Null[[]byte], 0, count)
	for i := uint64(0); i < count; i++ {
		if len(body) == 0 {
			return nil, sqlerrors.Malformed("columnar: truncated slot %d", i)
		}
		marker := body[0]
		body = body[1:]
		switch marker {
		case slotAbsent:
			slots = append(slots, row.Absent())
			continue
		case slotPresent:
		default:
			return nil, sqlerrors.Malformed("columnar: bad presence byte %#x in slot %d", marker, i)
		}
		size, n := binary.Uvarint(body)
		if n <= 0 || size > uint64(len(body)-n) {
			return nil, sqlerrors.Malformed("columnar: truncated slot %d", i)
		}
		body = body[n:]
		value := make([]byte, size)
		copy(value, body[:size])
		body = body[size:]
		slots = append(slots, row.Present(value))
	}
	if len(body) != 0 {
		return nil, sqlerrors.Malformed("columnar: %d trailing bytes after slots", len(body))
	}
	return &Batch{slots: slots}, nil
}

// Take returns the next slot, or an absent slot past the end.
func (b *Batch) Take() sql.Null[[]byte] {
	if b.pos >= len(b.slots) {
		return row.Absent()
	}
	s := b.slots[b.pos]
	b.pos++
	return s
}

// Len returns the total number of slots.
func (b *Batch) Len() int {
	return len(b.slots)
}

// Remaining returns the number of slots not yet taken.
func (b *Batch) Remaining() int {
	return len(b.slots) - b.pos
}

// Rows views the batch as rows of the given width.
func (b *Batch) Rows(columns int) (row.Rows, error) {
	if columns <= 0 || b.Remaining()%columns != 0 {
		return nil, sqlerrors.Malformed("columnar: %d slots are not rows of %d columns", b.Remaining(), columns)
	}
	return &batchRows{batch: b, columns: columns}, nil
}

type batchRows struct {
	batch   *Batch
	columns int
	cur     *row.SliceCursor
}

func (r *batchRows) Next() bool {
	if r.batch.Remaining() == 0 {
		return false
	}
	start := r.batch.pos
	r.batch.pos += r.columns
	r.cur = row.NewSliceCursor(r.batch.slots[start:r.batch.pos]...)
	return true
}

func (r *batchRows) Cursor() row.Cursor {
	return r.cur
}

func (r *batchRows) Err() error {
	return nil
}
