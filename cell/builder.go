package cell

import "fmt"

// Builder accumulates bits and references for a new cell.
type Builder struct {
	data []byte
	bits int
	refs []*Cell
}

func NewBuilder() *Builder {
	return &Builder{data: make([]byte, 0, byteLen(MaxDataBits))}
}

// Bits returns the number of bits appended so far.
func (b *Builder) Bits() int { return b.bits }

// Refs returns the number of references appended so far.
func (b *Builder) Refs() int { return len(b.refs) }

func (b *Builder) checkBits(n int) error {
	if b.bits+n > MaxDataBits {
		return fmt.Errorf("%w: %d+%d bits", ErrCellOverflow, b.bits, n)
	}
	return nil
}

func (b *Builder) appendBitUnchecked(bit uint8) {
	if b.bits%8 == 0 {
		b.data = append(b.data, 0)
	}
	if bit != 0 {
		setBit(b.data, b.bits, 1)
	}
	b.bits++
}

// AppendBit appends a single bit.
func (b *Builder) AppendBit(bit uint8) error {
	if err := b.checkBits(1); err != nil {
		return err
	}
	b.appendBitUnchecked(bit)
	return nil
}

// AppendBits appends every bit of bits.
func (b *Builder) AppendBits(bits Bitstring) error {
	if err := b.checkBits(bits.n); err != nil {
		return err
	}
	if b.bits%8 == 0 {
		b.data = append(b.data, bits.data[:byteLen(bits.n)]...)
		b.bits += bits.n
		return nil
	}
	for i := 0; i < bits.n; i++ {
		b.appendBitUnchecked(getBit(bits.data, i))
	}
	return nil
}

// AppendUint appends the n low bits of v, most significant first.
func (b *Builder) AppendUint(v uint64, n int) error {
	if n < 0 || n > 64 {
		return fmt.Errorf("%w: uint width %d", ErrCellOverflow, n)
	}
	if n < 64 && v>>uint(n) != 0 {
		return fmt.Errorf("%w: %d does not fit %d bits", ErrCellOverflow, v, n)
	}
	if err := b.checkBits(n); err != nil {
		return err
	}
	for i := n - 1; i >= 0; i-- {
		b.appendBitUnchecked(uint8(v>>uint(i)) & 1)
	}
	return nil
}

// AppendRef appends a reference.
func (b *Builder) AppendRef(c *Cell) error {
	if c == nil {
		return ErrNilRef
	}
	if len(b.refs) >= MaxRefs {
		return fmt.Errorf("%w: more than %d refs", ErrCellOverflow, MaxRefs)
	}
	b.refs = append(b.refs, c)
	return nil
}

// AppendSlice appends the remaining bits and references of s.
func (b *Builder) AppendSlice(s Slice) error {
	if len(b.refs)+s.RemainingRefs() > MaxRefs {
		return fmt.Errorf("%w: more than %d refs", ErrCellOverflow, MaxRefs)
	}
	if err := b.AppendBits(s.Bits()); err != nil {
		return err
	}
	for i := s.refPos; i < s.refEnd; i++ {
		b.refs = append(b.refs, s.cell.refs[i])
	}
	return nil
}

// Finalize builds the cell. The builder may keep being used afterwards; the
// returned cell does not share its storage.
func (b *Builder) Finalize() (*Cell, error) {
	data := make([]byte, byteLen(b.bits))
	copy(data, b.data)
	refs := make([]*Cell, len(b.refs))
	copy(refs, b.refs)
	return newCell(data, b.bits, refs), nil
}

// ToSlice finalizes the builder and returns a cursor over the whole cell.
func (b *Builder) ToSlice() (Slice, error) {
	c, err := b.Finalize()
	if err != nil {
		return Slice{}, err
	}
	return NewSlice(c), nil
}
