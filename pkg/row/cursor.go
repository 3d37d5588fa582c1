package row

import (
	"database/sql"
)

// Present returns a slot holding b.
func Present(b []byte) sql.Null[[]byte] {
	return sql.Null[[]byte]{V: b, Valid: true}
}

// Absent returns a SQL NULL slot.
func Absent() sql.Null[[]byte] {
	return sql.Null[[]byte]{}
}

// SliceCursor is an in-memory cursor over a fixed list of slots. Taking past
// the end yields NULL slots.
type SliceCursor struct {
	slots []sql.Null[[]byte]
	pos   int
}

// NewSliceCursor returns a cursor positioned at the first slot.
func NewSliceCursor(slots ...sql.Null[[]byte]) *SliceCursor {
	return &SliceCursor{slots: slots}
}

// Take returns the next slot and advances by one.
func (c *SliceCursor) Take() sql.Null[[]byte] {
	if c.pos >= len(c.slots) {
		c.pos++
		return Absent()
	}
	s := c.slots[c.pos]
	c.pos++
	return s
}

// Pos returns the number of slots taken so far.
func (c *SliceCursor) Pos() int {
	return c.pos
}

// Remaining returns the number of slots not yet taken.
func (c *SliceCursor) Remaining() int {
	if c.pos >= len(c.slots) {
		return 0
	}
	return len(c.slots) - c.pos
}
