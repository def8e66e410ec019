package hashmap

import "github.com/forestrie/go-celldict/cell"

// FilterAction is the verdict of a filter callback on one entry.
type FilterAction uint8

const (
	// FilterAccept keeps the entry.
	FilterAccept FilterAction = iota
	// FilterRemove drops the entry.
	FilterRemove
	// FilterStop keeps this entry and every later one, and commits the
	// removals made so far.
	FilterStop
	// FilterCancel abandons the filter, leaving the dictionary unchanged.
	FilterCancel
)

// FilterFunc decides the fate of one entry.
type FilterFunc func(key cell.Bitstring, value cell.Slice) (FilterAction, error)

type filterer struct {
	d       *Dict
	visit   func(key cell.Bitstring, nd *node) (FilterAction, error)
	stopped bool
	cancel  bool
	removed int
}

// Filter visits the entries in key order and removes those fn rejects. The
// result is built aside and installed only once the walk completes; on
// FilterCancel or an error the dictionary is left as it was. It returns the
// number of entries removed.
func (d *Dict) Filter(fn FilterFunc) (int, error) {
	return d.filter(func(key cell.Bitstring, nd *node) (FilterAction, error) {
		return fn(key, nd.value)
	})
}

func (d *Dict) filter(visit func(key cell.Bitstring, nd *node) (FilterAction, error)) (int, error) {
	if d.root == nil {
		return 0, nil
	}
	f := &filterer{d: d, visit: visit}
	root, err := f.node(d.root, d.bitLen, cell.Bitstring{})
	if err != nil || f.cancel {
		return 0, err
	}
	d.root = root
	return f.removed, nil
}

// node returns the filtered replacement for c; nil when nothing survives.
func (f *filterer) node(c *cell.Cell, n int, prefix cell.Bitstring) (*cell.Cell, error) {
	if f.stopped || f.cancel {
		return c, nil
	}
	nd, err := f.d.parse(c, n)
	if err != nil {
		return nil, err
	}
	key := prefix.Append(nd.label)

	if nd.isLeaf() {
		act, err := f.visit(key, &nd)
		if err != nil {
			return nil, err
		}
		switch act {
		case FilterRemove:
			f.removed++
			return nil, nil
		case FilterStop:
			f.stopped = true
		case FilterCancel:
			f.cancel = true
		}
		return c, nil
	}

	left, err := f.node(nd.left, nd.childBits(), key.AppendBit(0))
	if err != nil || f.cancel {
		return c, err
	}
	right, err := f.node(nd.right, nd.childBits(), key.AppendBit(1))
	if err != nil || f.cancel {
		return c, err
	}

	switch {
	case left == nd.left && right == nd.right:
		return c, nil
	case left == nil && right == nil:
		return nil, nil
	case left == nil:
		return f.d.hoist(nd.label, n, 1, right)
	case right == nil:
		return f.d.hoist(nd.label, n, 0, left)
	}
	return f.d.makeFork(nd.label, n, left, right, nil)
}
