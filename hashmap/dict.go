package hashmap

import (
	"fmt"

	"github.com/forestrie/go-celldict/cell"
)

// Dict is a HashmapE: a possibly empty dictionary from bitLen-bit keys to
// values held in cells.
//
// Dict values are snapshots. Copying a Dict is O(1) and mutating one copy
// never changes another. Methods with pointer receivers replace the root only
// when they succeed.
type Dict struct {
	bitLen int
	root   *cell.Cell
	opts   Options
	xc     extraCodec
}

// New returns an empty dictionary for keys of bitLen bits.
func New(bitLen int, opts ...Option) (Dict, error) {
	if bitLen < 0 || bitLen > MaxKeyBits {
		return Dict{}, fmt.Errorf("%w: %d bits", ErrKeyTooLong, bitLen)
	}
	d := Dict{bitLen: bitLen}
	for _, o := range opts {
		o(&d.opts)
	}
	return d, nil
}

// FromRoot returns a dictionary over an existing root node. A nil root gives
// the empty dictionary.
func FromRoot(root *cell.Cell, bitLen int, opts ...Option) (Dict, error) {
	d, err := New(bitLen, opts...)
	if err != nil {
		return Dict{}, err
	}
	if root != nil {
		if _, err := d.parse(root, bitLen); err != nil {
			return Dict{}, err
		}
	}
	d.root = root
	return d, nil
}

// empty returns an empty dictionary sharing d's configuration.
func (d *Dict) empty(bitLen int) Dict {
	return Dict{bitLen: bitLen, opts: d.opts, xc: d.xc}
}

func (d *Dict) KeyBitLen() int { return d.bitLen }

// Root returns the root node cell, nil when the dictionary is empty.
func (d *Dict) Root() *cell.Cell { return d.root }

func (d *Dict) IsEmpty() bool { return d.root == nil }

// RootHash returns the hash of the root node. The empty dictionary has the
// zero hash.
func (d *Dict) RootHash() [cell.HashBytes]byte {
	if d.root == nil {
		return [cell.HashBytes]byte{}
	}
	return d.root.Hash()
}

// Equal reports whether d and o hold the same entries.
func (d *Dict) Equal(o *Dict) bool {
	return d.bitLen == o.bitLen && d.root.Equal(o.root)
}

// Clear removes every entry.
func (d *Dict) Clear() { d.root = nil }

func (d *Dict) checkKey(key cell.Bitstring) error {
	if key.Len() != d.bitLen {
		return fmt.Errorf("%w: got %d bits, want %d", ErrKeyLengthMismatch, key.Len(), d.bitLen)
	}
	return nil
}

// lookup walks to the leaf for key.
func (d *Dict) lookup(key cell.Bitstring) (node, bool, error) {
	if err := d.checkKey(key); err != nil {
		return node{}, false, err
	}
	c, n, rest := d.root, d.bitLen, key
	for c != nil {
		nd, err := d.parse(c, n)
		if err != nil {
			return node{}, false, err
		}
		if !rest.HasPrefix(nd.label) {
			return node{}, false, nil
		}
		if nd.isLeaf() {
			return nd, true, nil
		}
		l := nd.label.Len()
		c = nd.child(rest.Bit(l))
		n = nd.childBits()
		rest = rest.Suffix(l + 1)
	}
	return node{}, false, nil
}

// Get returns the value stored under key.
func (d *Dict) Get(key cell.Bitstring) (cell.Slice, bool, error) {
	nd, ok, err := d.lookup(key)
	if err != nil || !ok {
		return cell.Slice{}, false, err
	}
	return nd.value, true, nil
}

// GetRef returns the single reference stored as the value under key.
func (d *Dict) GetRef(key cell.Bitstring) (*cell.Cell, bool, error) {
	v, ok, err := d.Get(key)
	if err != nil || !ok {
		return nil, false, err
	}
	if v.RemainingBits() != 0 || v.RemainingRefs() != 1 {
		return nil, false, fmt.Errorf("%w: value is not a single reference", ErrMalformedNode)
	}
	r, err := v.Ref(0)
	return r, err == nil, err
}

func (d *Dict) Contains(key cell.Bitstring) (bool, error) {
	_, ok, err := d.lookup(key)
	return ok, err
}
