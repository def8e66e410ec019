package hashmap

import (
	"fmt"

	"github.com/forestrie/go-celldict/cell"
)

// DiffFunc receives one differing key. a is the value in the receiver and b
// the value in the other dictionary; either is nil when the key is absent
// from that side. Returning false stops the scan.
type DiffFunc func(key cell.Bitstring, a, b *cell.Slice) (bool, error)

// view is a node seen from below part of its label: skip bits of the label
// have already been matched by the walk.
type view struct {
	c    *cell.Cell
	skip int
}

type nodeDiffFunc func(key cell.Bitstring, a, b *node) (bool, error)

// ScanDiff reports, in ascending key order, every key whose value differs
// between d and other. Subtrees with equal hashes are skipped without being
// read. Only values are compared; on augmented dictionaries a leaf whose
// extra alone differs is not reported (see AugDict.ScanDiffWithAug).
func (d *Dict) ScanDiff(other *Dict, fn DiffFunc) (bool, error) {
	return d.scanDiff(other, func(key cell.Bitstring, a, b *node) (bool, error) {
		if a != nil && b != nil && a.value.Equal(b.value) {
			return true, nil
		}
		var av, bv *cell.Slice
		if a != nil {
			av = &a.value
		}
		if b != nil {
			bv = &b.value
		}
		return fn(key, av, bv)
	})
}

func (d *Dict) scanDiff(other *Dict, fn nodeDiffFunc) (bool, error) {
	if other.bitLen != d.bitLen {
		return false, fmt.Errorf("%w: diff of %d and %d bit keys", ErrKeyLengthMismatch, d.bitLen, other.bitLen)
	}
	return d.diffViews(view{c: d.root}, view{c: other.root}, d.bitLen, cell.Bitstring{}, fn)
}

func (d *Dict) parseView(v view, n int) (node, cell.Bitstring, error) {
	nd, err := d.parse(v.c, n+v.skip)
	if err != nil {
		return node{}, cell.Bitstring{}, err
	}
	return nd, nd.label.Suffix(v.skip), nil
}

func (d *Dict) diffViews(a, b view, n int, prefix cell.Bitstring, fn nodeDiffFunc) (bool, error) {
	switch {
	case a.c == nil && b.c == nil:
		return true, nil
	case a.c == nil:
		return d.emitAll(b, n, prefix, false, fn)
	case b.c == nil:
		return d.emitAll(a, n, prefix, true, fn)
	case a.skip == b.skip && a.c.Equal(b.c):
		return true, nil
	}

	na, la, err := d.parseView(a, n)
	if err != nil {
		return false, err
	}
	nb, lb, err := d.parseView(b, n)
	if err != nil {
		return false, err
	}
	cp := la.CommonPrefixLen(lb)

	switch {
	case cp == la.Len() && cp == lb.Len():
		key := prefix.Append(la)
		if na.isLeaf() {
			if na.body.Equal(nb.body) {
				return true, nil
			}
			return fn(key, &na, &nb)
		}
		for _, bit := range []uint8{0, 1} {
			more, err := d.diffViews(view{c: na.child(bit)}, view{c: nb.child(bit)}, n-cp-1, key.AppendBit(bit), fn)
			if err != nil || !more {
				return more, err
			}
		}
		return true, nil

	case cp == la.Len():
		// la is a proper prefix of lb, so a is a fork
		return d.diffFork(na, la, b, lb.Bit(cp), n, prefix, true, fn)

	case cp == lb.Len():
		return d.diffFork(nb, lb, a, la.Bit(cp), n, prefix, false, fn)
	}

	// disjoint below the common prefix: lower side first
	first, second, firstIsA := a, b, true
	if la.Bit(cp) == 1 {
		first, second, firstIsA = b, a, false
	}
	more, err := d.emitAll(first, n, prefix, firstIsA, fn)
	if err != nil || !more {
		return more, err
	}
	return d.emitAll(second, n, prefix, !firstIsA, fn)
}

// diffFork pairs the children of the fork f (seen through its effective
// label fl) with the longer view o, which continues below the fork via bit.
// forkIsA tells which side of the diff f belongs to.
func (d *Dict) diffFork(f node, fl cell.Bitstring, o view, bit uint8, n int, prefix cell.Bitstring, forkIsA bool, fn nodeDiffFunc) (bool, error) {
	childBits := n - fl.Len() - 1
	below := view{c: o.c, skip: o.skip + fl.Len() + 1}
	for _, b := range []uint8{0, 1} {
		fv := view{c: f.child(b)}
		var ov view
		if b == bit {
			ov = below
		}
		key := prefix.Append(fl).AppendBit(b)
		var (
			more bool
			err  error
		)
		if forkIsA {
			more, err = d.diffViews(fv, ov, childBits, key, fn)
		} else {
			more, err = d.diffViews(ov, fv, childBits, key, fn)
		}
		if err != nil || !more {
			return more, err
		}
	}
	return true, nil
}

// emitAll reports every leaf below v as present on one side only.
func (d *Dict) emitAll(v view, n int, prefix cell.Bitstring, isA bool, fn nodeDiffFunc) (bool, error) {
	nd, label, err := d.parseView(v, n)
	if err != nil {
		return false, err
	}
	key := prefix.Append(label)
	if nd.isLeaf() {
		if isA {
			return fn(key, &nd, nil)
		}
		return fn(key, nil, &nd)
	}
	for _, bit := range []uint8{0, 1} {
		more, err := d.emitAll(view{c: nd.child(bit)}, n-label.Len()-1, key.AppendBit(bit), isA, fn)
		if err != nil || !more {
			return more, err
		}
	}
	return true, nil
}
