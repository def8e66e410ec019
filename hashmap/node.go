package hashmap

import (
	"fmt"

	"github.com/forestrie/go-celldict/cell"
)

// extraCodec is the type-erased view of an Augmenter used by the node layer.
// A nil extraCodec means the dictionary is not augmented.
type extraCodec interface {
	load(s *cell.Slice) (any, error)
	store(b *cell.Builder, x any) error
	combine(a, b any) (any, error)
	fromValue(v cell.Slice) (any, error)
}

// node is a parsed trie node. n is the number of key bits remaining at the
// node's position, including its own label.
type node struct {
	c     *cell.Cell
	label cell.Bitstring
	n     int

	left, right *cell.Cell

	// body is everything after the label: for a leaf the extra (when
	// augmented) and the value.
	body  cell.Slice
	value cell.Slice
	extra any
}

func (nd *node) isLeaf() bool { return nd.label.Len() == nd.n }

func (nd *node) child(bit uint8) *cell.Cell {
	if bit == 0 {
		return nd.left
	}
	return nd.right
}

// childBits is the number of key bits each child of a fork holds.
func (nd *node) childBits() int { return nd.n - nd.label.Len() - 1 }

func (d *Dict) logMalformed(format string, args ...any) {
	if d.opts.Log != nil {
		d.opts.Log.Infof(format, args...)
	}
}

// parse reads the node held by c at a position with n remaining key bits.
func (d *Dict) parse(c *cell.Cell, n int) (node, error) {
	s := cell.NewSlice(c)
	label, err := DecodeLabel(&s, n)
	if err != nil {
		d.logMalformed("hashmap: cell %x: %v", c.Hash(), err)
		return node{}, err
	}
	nd := node{c: c, label: label, n: n, body: s}
	if nd.isLeaf() {
		if d.xc != nil {
			if nd.extra, err = d.xc.load(&s); err != nil {
				return node{}, fmt.Errorf("%w: leaf extra: %w", ErrMalformedNode, err)
			}
		}
		nd.value = s
		return nd, nil
	}

	if nd.left, err = s.ReadRef(); err == nil {
		nd.right, err = s.ReadRef()
	}
	if err != nil {
		d.logMalformed("hashmap: fork %x with fewer than two references", c.Hash())
		return node{}, fmt.Errorf("%w: fork: %w", ErrMalformedNode, err)
	}
	if d.xc != nil {
		if nd.extra, err = d.xc.load(&s); err != nil {
			return node{}, fmt.Errorf("%w: fork extra: %w", ErrMalformedNode, err)
		}
	}
	return nd, nil
}

// nodeExtra loads only the extra of the augmented node held by c.
func (d *Dict) nodeExtra(c *cell.Cell, n int) (any, error) {
	nd, err := d.parse(c, n)
	if err != nil {
		return nil, err
	}
	return nd.extra, nil
}

func (d *Dict) finalize(b *cell.Builder) (*cell.Cell, error) {
	m := d.opts.Meter
	if m == nil {
		m = unmetered{}
	}
	return m.Finalize(b)
}

// makeLeaf builds a leaf. For an augmented dictionary a nil extra is derived
// from the value.
func (d *Dict) makeLeaf(label cell.Bitstring, n int, extra any, value cell.Slice) (*cell.Cell, error) {
	b := cell.NewBuilder()
	if err := EncodeLabel(b, label, n); err != nil {
		return nil, err
	}
	if d.xc != nil {
		var err error
		if extra == nil {
			if extra, err = d.xc.fromValue(value); err != nil {
				return nil, err
			}
		}
		if err = d.xc.store(b, extra); err != nil {
			return nil, err
		}
	}
	if err := b.AppendSlice(value); err != nil {
		return nil, err
	}
	return d.finalize(b)
}

// makeFork builds a fork over two existing children. For an augmented
// dictionary a nil extra is recomputed from the children.
func (d *Dict) makeFork(label cell.Bitstring, n int, left, right *cell.Cell, extra any) (*cell.Cell, error) {
	b := cell.NewBuilder()
	if err := EncodeLabel(b, label, n); err != nil {
		return nil, err
	}
	if err := b.AppendRef(left); err != nil {
		return nil, err
	}
	if err := b.AppendRef(right); err != nil {
		return nil, err
	}
	if d.xc != nil {
		var err error
		if extra == nil {
			if extra, err = d.forkExtra(left, right, n-label.Len()-1); err != nil {
				return nil, err
			}
		}
		if err = d.xc.store(b, extra); err != nil {
			return nil, err
		}
	}
	return d.finalize(b)
}

func (d *Dict) forkExtra(left, right *cell.Cell, childBits int) (any, error) {
	le, err := d.nodeExtra(left, childBits)
	if err != nil {
		return nil, err
	}
	re, err := d.nodeExtra(right, childBits)
	if err != nil {
		return nil, err
	}
	return d.xc.combine(le, re)
}

// remake rebuilds nd under a new label at a position with n remaining bits.
// The node's children, value and extra are carried over unchanged.
func (d *Dict) remake(nd node, label cell.Bitstring, n int) (*cell.Cell, error) {
	if nd.n == n && nd.label.Equal(label) {
		return nd.c, nil
	}
	if nd.isLeaf() {
		return d.makeLeaf(label, n, nd.extra, nd.value)
	}
	return d.makeFork(label, n, nd.left, nd.right, nd.extra)
}

// hoist replaces a fork that lost one child: the surviving child, reached via
// bit, absorbs the fork's label and the branch bit.
func (d *Dict) hoist(parentLabel cell.Bitstring, n int, bit uint8, child *cell.Cell) (*cell.Cell, error) {
	childBits := n - parentLabel.Len() - 1
	nd, err := d.parse(child, childBits)
	if err != nil {
		return nil, err
	}
	return d.remake(nd, parentLabel.AppendBit(bit).Append(nd.label), n)
}

// forkOf builds a fork ordering the two children by bit.
func (d *Dict) forkOf(label cell.Bitstring, n int, bit uint8, c, other *cell.Cell) (*cell.Cell, error) {
	if bit == 0 {
		return d.makeFork(label, n, c, other, nil)
	}
	return d.makeFork(label, n, other, c, nil)
}
