package hashmap

import (
	"fmt"

	"github.com/forestrie/go-celldict/cell"
)

// Split divides the dictionary on the bit that follows prefix: left receives
// the entries whose key continues prefix with a 0, right those that continue
// it with a 1. Every key must start with prefix, and the bit after it must
// not be fixed inside a leaf, otherwise ErrInvalidSplit is returned. The
// receiver is not modified.
func (d *Dict) Split(prefix cell.Bitstring) (left, right Dict, err error) {
	left, right = d.empty(d.bitLen), d.empty(d.bitLen)
	if d.root == nil {
		return left, right, nil
	}
	k := prefix.Len()
	if k >= d.bitLen {
		return Dict{}, Dict{}, fmt.Errorf("%w: prefix of %d bits for %d bit keys", ErrInvalidSplit, k, d.bitLen)
	}
	nd, err := d.parse(d.root, d.bitLen)
	if err != nil {
		return Dict{}, Dict{}, err
	}
	if k > nd.label.Len() || !nd.label.HasPrefix(prefix) {
		return Dict{}, Dict{}, fmt.Errorf("%w: root label %s does not start with %s", ErrInvalidSplit, nd.label, prefix)
	}
	if k < nd.label.Len() {
		// every key shares bit k
		if nd.label.Bit(k) == 0 {
			left.root = d.root
		} else {
			right.root = d.root
		}
		return left, right, nil
	}

	if left.root, err = d.hoist(nd.label, d.bitLen, 0, nd.left); err != nil {
		return Dict{}, Dict{}, err
	}
	if right.root, err = d.hoist(nd.label, d.bitLen, 1, nd.right); err != nil {
		return Dict{}, Dict{}, err
	}
	return left, right, nil
}

// Merge is the inverse of Split: it adds every entry of other, which must
// hold keys that start with prefix and continue it with the bit opposite to
// the keys of d.
func (d *Dict) Merge(other *Dict, prefix cell.Bitstring) error {
	if other.bitLen != d.bitLen {
		return fmt.Errorf("%w: merging %d bit keys into %d", ErrKeyLengthMismatch, other.bitLen, d.bitLen)
	}
	k := prefix.Len()
	if k >= d.bitLen {
		return fmt.Errorf("%w: prefix of %d bits for %d bit keys", ErrInvalidSplit, k, d.bitLen)
	}
	if other.root == nil {
		return nil
	}
	if d.root == nil {
		d.root = other.root
		return nil
	}

	a, err := d.parse(d.root, d.bitLen)
	if err != nil {
		return err
	}
	b, err := d.parse(other.root, d.bitLen)
	if err != nil {
		return err
	}
	for _, nd := range []node{a, b} {
		if nd.label.Len() <= k || !nd.label.HasPrefix(prefix) {
			return fmt.Errorf("%w: root label %s does not extend %s", ErrInvalidSplit, nd.label, prefix)
		}
	}
	bit := a.label.Bit(k)
	if b.label.Bit(k) == bit {
		return fmt.Errorf("%w: both sides continue %s with %d", ErrInvalidSplit, prefix, bit)
	}

	childBits := d.bitLen - k - 1
	ac, err := d.remake(a, a.label.Suffix(k+1), childBits)
	if err != nil {
		return err
	}
	bc, err := d.remake(b, b.label.Suffix(k+1), childBits)
	if err != nil {
		return err
	}
	root, err := d.forkOf(prefix, d.bitLen, bit, ac, bc)
	if err != nil {
		return err
	}
	d.root = root
	return nil
}
