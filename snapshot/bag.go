package snapshot

import (
	"bytes"
	"fmt"

	"github.com/forestrie/go-celldict/cell"
	"github.com/fxamacker/cbor/v2"
)

const BagVersion = 1

type cellRecord struct {
	Bits int      `cbor:"1,keyasint"`
	Data []byte   `cbor:"2,keyasint,omitempty"`
	Refs []uint32 `cbor:"3,keyasint,omitempty"`
	Hash []byte   `cbor:"4,keyasint"`
}

// Bag is the serialized form of a set of cell trees.
type Bag struct {
	Version uint8        `cbor:"1,keyasint"`
	Roots   []uint32     `cbor:"2,keyasint"`
	Cells   []cellRecord `cbor:"3,keyasint"`
}

// Codec encodes bags deterministically, so equal trees encode to equal bytes.
type Codec struct {
	encMode cbor.EncMode
	decMode cbor.DecMode
}

func NewCodec() (Codec, error) {
	encMode, err := cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		return Codec{}, err
	}
	decMode, err := cbor.DecOptions{}.DecMode()
	if err != nil {
		return Codec{}, err
	}
	return Codec{encMode: encMode, decMode: decMode}, nil
}

// NewBag collects the cells reachable from roots. Shared subtrees are listed
// once.
func NewBag(roots ...*cell.Cell) (Bag, error) {
	bag := Bag{Version: BagVersion}
	index := map[[cell.HashBytes]byte]uint32{}

	var add func(c *cell.Cell) (uint32, error)
	add = func(c *cell.Cell) (uint32, error) {
		if i, ok := index[c.Hash()]; ok {
			return i, nil
		}
		rec := cellRecord{Bits: c.Bits(), Data: c.Data().Bytes()}
		for i := 0; i < c.RefCount(); i++ {
			r, err := c.Ref(i)
			if err != nil {
				return 0, err
			}
			ri, err := add(r)
			if err != nil {
				return 0, err
			}
			rec.Refs = append(rec.Refs, ri)
		}
		h := c.Hash()
		rec.Hash = h[:]
		i := uint32(len(bag.Cells))
		bag.Cells = append(bag.Cells, rec)
		index[h] = i
		return i, nil
	}

	for _, r := range roots {
		if r == nil {
			return Bag{}, fmt.Errorf("%w: nil root", ErrBadBag)
		}
		i, err := add(r)
		if err != nil {
			return Bag{}, err
		}
		bag.Roots = append(bag.Roots, i)
	}
	return bag, nil
}

// RootCells rebuilds the root cells of the bag, checking every hash.
func (bag Bag) RootCells() ([]*cell.Cell, error) {
	if bag.Version != BagVersion {
		return nil, fmt.Errorf("%w: version %d", ErrBadBag, bag.Version)
	}
	built := make([]*cell.Cell, len(bag.Cells))
	for i, rec := range bag.Cells {
		bits, err := cell.BitsFromBytes(rec.Data, rec.Bits)
		if err != nil {
			return nil, fmt.Errorf("%w: cell %d: %w", ErrBadBag, i, err)
		}
		b := cell.NewBuilder()
		if err := b.AppendBits(bits); err != nil {
			return nil, fmt.Errorf("%w: cell %d: %w", ErrBadBag, i, err)
		}
		for _, r := range rec.Refs {
			if int(r) >= i {
				return nil, fmt.Errorf("%w: cell %d refers forward to %d", ErrBadBag, i, r)
			}
			if err := b.AppendRef(built[r]); err != nil {
				return nil, fmt.Errorf("%w: cell %d: %w", ErrBadBag, i, err)
			}
		}
		c, err := b.Finalize()
		if err != nil {
			return nil, err
		}
		h := c.Hash()
		if !bytes.Equal(h[:], rec.Hash) {
			return nil, fmt.Errorf("%w: cell %d", ErrHashMismatch, i)
		}
		built[i] = c
	}

	roots := make([]*cell.Cell, len(bag.Roots))
	for i, r := range bag.Roots {
		if int(r) >= len(built) {
			return nil, fmt.Errorf("%w: root %d out of range", ErrBadBag, r)
		}
		roots[i] = built[r]
	}
	return roots, nil
}

func (c Codec) Marshal(v any) ([]byte, error) {
	return c.encMode.Marshal(v)
}

func (c Codec) Unmarshal(data []byte, v any) error {
	return c.decMode.Unmarshal(data, v)
}

// EncodeCells returns the CBOR bag of roots.
func (c Codec) EncodeCells(roots ...*cell.Cell) ([]byte, error) {
	bag, err := NewBag(roots...)
	if err != nil {
		return nil, err
	}
	return c.Marshal(bag)
}

// DecodeCells is the inverse of EncodeCells.
func (c Codec) DecodeCells(data []byte) ([]*cell.Cell, error) {
	var bag Bag
	if err := c.Unmarshal(data, &bag); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadBag, err)
	}
	return bag.RootCells()
}
