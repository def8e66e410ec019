package hashmap

import (
	"fmt"

	"github.com/forestrie/go-celldict/cell"
)

// descendPrefix walks towards prefix. On success it returns the node whose
// label holds the end of prefix, and how many bits of prefix were consumed
// by the forks above it.
func (d *Dict) descendPrefix(prefix cell.Bitstring) (node, int, bool, error) {
	if prefix.Len() > d.bitLen {
		return node{}, 0, false, fmt.Errorf("%w: prefix of %d bits for %d bit keys", ErrKeyLengthMismatch, prefix.Len(), d.bitLen)
	}
	if d.root == nil {
		return node{}, 0, false, nil
	}
	c, n, consumed := d.root, d.bitLen, 0
	for {
		nd, err := d.parse(c, n)
		if err != nil {
			return node{}, 0, false, err
		}
		q := prefix.Suffix(consumed)
		l := nd.label.Len()
		if q.Len() <= l {
			return nd, consumed, nd.label.HasPrefix(q), nil
		}
		if !q.HasPrefix(nd.label) {
			return node{}, 0, false, nil
		}
		c = nd.child(q.Bit(l))
		n = nd.childBits()
		consumed += l + 1
	}
}

// SubtreeWithoutPrefix returns the dictionary of entries whose keys start
// with prefix, re-keyed by the remaining bits. Keys in the result are
// bitLen - len(prefix) bits long.
func (d *Dict) SubtreeWithoutPrefix(prefix cell.Bitstring) (Dict, error) {
	if prefix.IsEmpty() {
		return *d, nil
	}
	nd, consumed, ok, err := d.descendPrefix(prefix)
	if err != nil {
		return Dict{}, err
	}
	out := d.empty(d.bitLen - prefix.Len())
	if !ok {
		return out, nil
	}
	q := prefix.Len() - consumed
	if out.root, err = d.remake(nd, nd.label.Suffix(q), nd.n-q); err != nil {
		return Dict{}, err
	}
	return out, nil
}

// SubtreeWithPrefix returns the dictionary of entries whose keys start with
// prefix, keys unchanged.
func (d *Dict) SubtreeWithPrefix(prefix cell.Bitstring) (Dict, error) {
	nd, consumed, ok, err := d.descendPrefix(prefix)
	if err != nil {
		return Dict{}, err
	}
	out := d.empty(d.bitLen)
	if !ok {
		return out, nil
	}
	label := prefix.Prefix(consumed).Append(nd.label)
	if out.root, err = d.remake(nd, label, d.bitLen); err != nil {
		return Dict{}, err
	}
	return out, nil
}
