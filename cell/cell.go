package cell

import (
	"bytes"
	"encoding/hex"
	"fmt"
)

// Cell is an immutable node of the content-addressed DAG.
type Cell struct {
	data  []byte
	bits  int
	refs  []*Cell
	hash  [HashBytes]byte
	depth uint16
}

// newCell takes ownership of data and refs.
func newCell(data []byte, bits int, refs []*Cell) *Cell {
	c := &Cell{data: data, bits: bits, refs: refs}
	for _, r := range refs {
		if r.depth+1 > c.depth {
			c.depth = r.depth + 1
		}
	}
	c.hash = HashCell(data, bits, refs)
	return c
}

// Bits returns the number of data bits.
func (c *Cell) Bits() int { return c.bits }

// Data returns the data bits.
func (c *Cell) Data() Bitstring {
	return Bitstring{data: c.data, n: c.bits}
}

// RefCount returns the number of references.
func (c *Cell) RefCount() int { return len(c.refs) }

// Ref returns reference i.
func (c *Cell) Ref(i int) (*Cell, error) {
	if i < 0 || i >= len(c.refs) {
		return nil, fmt.Errorf("%w: ref %d of %d", ErrCellUnderflow, i, len(c.refs))
	}
	return c.refs[i], nil
}

// Hash returns the content hash.
func (c *Cell) Hash() [HashBytes]byte { return c.hash }

// Depth is 0 for a cell without references, otherwise 1 + the max child depth.
func (c *Cell) Depth() uint16 { return c.depth }

// Equal compares cells by content hash. Two nil cells are equal.
func (c *Cell) Equal(o *Cell) bool {
	if c == nil || o == nil {
		return c == o
	}
	return c == o || bytes.Equal(c.hash[:], o.hash[:])
}

func (c *Cell) String() string {
	if c == nil {
		return "<nil>"
	}
	h := c.hash
	return fmt.Sprintf("cell{bits=%d refs=%d hash=%s}", c.bits, len(c.refs), hex.EncodeToString(h[:8]))
}

// FromBits builds a reference-free cell holding bits.
func FromBits(bits Bitstring) (*Cell, error) {
	b := NewBuilder()
	if err := b.AppendBits(bits); err != nil {
		return nil, err
	}
	return b.Finalize()
}
