package hashmap

import (
	"fmt"

	"github.com/forestrie/go-celldict/cell"
)

// WriteTo stores d in HashmapE form: a presence bit, then the root node as a
// reference.
func (d *Dict) WriteTo(b *cell.Builder) error {
	if d.root == nil {
		return b.AppendBit(0)
	}
	if err := b.AppendBit(1); err != nil {
		return err
	}
	return b.AppendRef(d.root)
}

// ReadDict reads a dictionary written by WriteTo.
func ReadDict(s *cell.Slice, bitLen int, opts ...Option) (Dict, error) {
	root, err := readOptionalRoot(s)
	if err != nil {
		return Dict{}, err
	}
	return FromRoot(root, bitLen, opts...)
}

func readOptionalRoot(s *cell.Slice) (*cell.Cell, error) {
	present, err := s.ReadBit()
	if err != nil {
		return nil, err
	}
	if present == 0 {
		return nil, nil
	}
	return s.ReadRef()
}

// WriteRoot stores the root node of a non-empty dictionary inline, as the
// Hashmap (rather than HashmapE) form does.
func (d *Dict) WriteRoot(b *cell.Builder) error {
	if d.root == nil {
		return ErrEmptyRoot
	}
	return b.AppendSlice(cell.NewSlice(d.root))
}

// ReadRoot reads an inline root written by WriteRoot. The root node extends
// to the end of s, which is consumed.
func ReadRoot(s *cell.Slice, bitLen int, opts ...Option) (Dict, error) {
	root, err := readInlineRoot(s)
	if err != nil {
		return Dict{}, err
	}
	return FromRoot(root, bitLen, opts...)
}

func readInlineRoot(s *cell.Slice) (*cell.Cell, error) {
	if s.IsEmpty() {
		return nil, fmt.Errorf("%w: no inline root", cell.ErrCellUnderflow)
	}
	b := cell.NewBuilder()
	if err := b.AppendSlice(*s); err != nil {
		return nil, err
	}
	root, err := b.Finalize()
	if err != nil {
		return nil, err
	}
	*s = cell.Slice{}
	return root, nil
}
