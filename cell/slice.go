package cell

import (
	"bytes"
	"fmt"
)

// Slice is a read cursor over a cell. It consumes bits and references left to
// right. Slice is a small value; copying it forks the cursor.
type Slice struct {
	cell   *Cell
	bitPos int
	bitEnd int
	refPos int
	refEnd int
}

// NewSlice returns a cursor over all of c. A nil cell gives an empty slice.
func NewSlice(c *Cell) Slice {
	if c == nil {
		return Slice{}
	}
	return Slice{cell: c, bitEnd: c.bits, refEnd: len(c.refs)}
}

// SliceOfBits returns a cursor over a new reference-free cell holding bits.
func SliceOfBits(bits Bitstring) (Slice, error) {
	c, err := FromBits(bits)
	if err != nil {
		return Slice{}, err
	}
	return NewSlice(c), nil
}

// Cell returns the underlying cell.
func (s Slice) Cell() *Cell { return s.cell }

func (s Slice) RemainingBits() int { return s.bitEnd - s.bitPos }

func (s Slice) RemainingRefs() int { return s.refEnd - s.refPos }

// IsEmpty reports whether no bits and no references remain.
func (s Slice) IsEmpty() bool { return s.RemainingBits() == 0 && s.RemainingRefs() == 0 }

func (s *Slice) ReadBit() (uint8, error) {
	if s.bitPos >= s.bitEnd {
		return 0, ErrCellUnderflow
	}
	bit := getBit(s.cell.data, s.bitPos)
	s.bitPos++
	return bit, nil
}

func (s *Slice) ReadBits(n int) (Bitstring, error) {
	if n < 0 || n > s.RemainingBits() {
		return Bitstring{}, fmt.Errorf("%w: want %d bits, have %d", ErrCellUnderflow, n, s.RemainingBits())
	}
	out := s.peek(n)
	s.bitPos += n
	return out, nil
}

// ReadUint reads n bits (n <= 64) as an unsigned big-endian integer.
func (s *Slice) ReadUint(n int) (uint64, error) {
	if n > 64 {
		return 0, fmt.Errorf("%w: uint width %d", ErrCellUnderflow, n)
	}
	bits, err := s.ReadBits(n)
	if err != nil {
		return 0, err
	}
	return bits.Uint(), nil
}

func (s *Slice) SkipBits(n int) error {
	if n < 0 || n > s.RemainingBits() {
		return fmt.Errorf("%w: skip %d bits, have %d", ErrCellUnderflow, n, s.RemainingBits())
	}
	s.bitPos += n
	return nil
}

func (s *Slice) ReadRef() (*Cell, error) {
	if s.refPos >= s.refEnd {
		return nil, fmt.Errorf("%w: no reference left", ErrCellUnderflow)
	}
	r := s.cell.refs[s.refPos]
	s.refPos++
	return r, nil
}

// Ref returns the i'th remaining reference without consuming it.
func (s Slice) Ref(i int) (*Cell, error) {
	if i < 0 || s.refPos+i >= s.refEnd {
		return nil, fmt.Errorf("%w: ref %d of %d", ErrCellUnderflow, i, s.RemainingRefs())
	}
	return s.cell.refs[s.refPos+i], nil
}

// Bits returns the remaining bits without consuming them.
func (s Slice) Bits() Bitstring { return s.peek(s.RemainingBits()) }

func (s Slice) peek(n int) Bitstring {
	if n == 0 {
		return Bitstring{}
	}
	return Bitstring{data: s.cell.data, n: s.bitEnd}.Sub(s.bitPos, s.bitPos+n)
}

// Equal reports whether the remaining bits and references of s and o match.
func (s Slice) Equal(o Slice) bool {
	if s.RemainingRefs() != o.RemainingRefs() || !s.Bits().Equal(o.Bits()) {
		return false
	}
	for i := 0; i < s.RemainingRefs(); i++ {
		a := s.cell.refs[s.refPos+i].hash
		b := o.cell.refs[o.refPos+i].hash
		if !bytes.Equal(a[:], b[:]) {
			return false
		}
	}
	return true
}

func (s Slice) String() string {
	return fmt.Sprintf("slice{bits=%s refs=%d}", s.Bits(), s.RemainingRefs())
}
