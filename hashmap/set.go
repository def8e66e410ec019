package hashmap

import (
	"errors"

	"github.com/forestrie/go-celldict/cell"
)

// frame records a fork passed on the way down to a key.
type frame struct {
	label       cell.Bitstring
	n           int
	left, right *cell.Cell
	dir         uint8
}

// rebuild replaces the child taken at each recorded fork, bottom-up, starting
// from the new cell c. It returns the new root.
func (d *Dict) rebuild(path []frame, c *cell.Cell) (*cell.Cell, error) {
	var err error
	for i := len(path) - 1; i >= 0; i-- {
		f := path[i]
		left, right := f.left, f.right
		if f.dir == 0 {
			left = c
		} else {
			right = c
		}
		if c, err = d.makeFork(f.label, f.n, left, right, nil); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// SetWithMode stores value under key subject to mode. It returns the value
// that was present before, if any. When mode does not allow the outcome the
// dictionary is left unchanged and ErrModeViolation is returned, along with
// the existing value in the case of an add over a present key.
func (d *Dict) SetWithMode(key cell.Bitstring, value cell.Slice, mode Mode) (cell.Slice, bool, error) {
	return d.set(key, value, nil, mode)
}

func (d *Dict) set(key cell.Bitstring, value cell.Slice, extra any, mode Mode) (cell.Slice, bool, error) {
	if err := d.checkKey(key); err != nil {
		return cell.Slice{}, false, err
	}

	if d.root == nil {
		if mode&ModeAdd == 0 {
			return cell.Slice{}, false, ErrModeViolation
		}
		leaf, err := d.makeLeaf(key, d.bitLen, extra, value)
		if err != nil {
			return cell.Slice{}, false, err
		}
		d.root = leaf
		return cell.Slice{}, false, nil
	}

	var (
		path     []frame
		c        = d.root
		n        = d.bitLen
		rest     = key
		newc     *cell.Cell
		prev     cell.Slice
		replaced bool
	)
	for {
		nd, err := d.parse(c, n)
		if err != nil {
			return cell.Slice{}, false, err
		}
		l := nd.label.Len()
		cp := nd.label.CommonPrefixLen(rest)

		if cp == l && nd.isLeaf() {
			if mode&ModeReplace == 0 {
				return nd.value, true, ErrModeViolation
			}
			if newc, err = d.makeLeaf(nd.label, n, extra, value); err != nil {
				return cell.Slice{}, false, err
			}
			prev, replaced = nd.value, true
			break
		}

		if cp == l {
			dir := rest.Bit(l)
			path = append(path, frame{label: nd.label, n: n, left: nd.left, right: nd.right, dir: dir})
			c = nd.child(dir)
			n = nd.childBits()
			rest = rest.Suffix(l + 1)
			continue
		}

		// The key leaves the label at cp: split the edge with a new fork.
		if mode&ModeAdd == 0 {
			return cell.Slice{}, false, ErrModeViolation
		}
		childBits := n - cp - 1
		old, err := d.remake(nd, nd.label.Suffix(cp+1), childBits)
		if err != nil {
			return cell.Slice{}, false, err
		}
		leaf, err := d.makeLeaf(rest.Suffix(cp+1), childBits, extra, value)
		if err != nil {
			return cell.Slice{}, false, err
		}
		if newc, err = d.forkOf(nd.label.Prefix(cp), n, rest.Bit(cp), leaf, old); err != nil {
			return cell.Slice{}, false, err
		}
		break
	}

	root, err := d.rebuild(path, newc)
	if err != nil {
		return cell.Slice{}, false, err
	}
	d.root = root
	return prev, replaced, nil
}

// Set stores value under key, replacing any existing value.
func (d *Dict) Set(key cell.Bitstring, value cell.Slice) (cell.Slice, bool, error) {
	return d.SetWithMode(key, value, ModeSet)
}

// Add stores value only if key is absent. It reports whether it did.
func (d *Dict) Add(key cell.Bitstring, value cell.Slice) (bool, error) {
	_, _, err := d.SetWithMode(key, value, ModeAdd)
	if errors.Is(err, ErrModeViolation) {
		return false, nil
	}
	return err == nil, err
}

// Replace stores value only if key is present. It reports whether it did.
func (d *Dict) Replace(key cell.Bitstring, value cell.Slice) (bool, error) {
	_, _, err := d.SetWithMode(key, value, ModeReplace)
	if errors.Is(err, ErrModeViolation) {
		return false, nil
	}
	return err == nil, err
}

// SetRef stores a value consisting of the single reference ref.
func (d *Dict) SetRef(key cell.Bitstring, ref *cell.Cell, mode Mode) (cell.Slice, bool, error) {
	b := cell.NewBuilder()
	if err := b.AppendRef(ref); err != nil {
		return cell.Slice{}, false, err
	}
	v, err := b.ToSlice()
	if err != nil {
		return cell.Slice{}, false, err
	}
	return d.SetWithMode(key, v, mode)
}

// SetBuilder stores the contents of b under key.
func (d *Dict) SetBuilder(key cell.Bitstring, b *cell.Builder, mode Mode) (cell.Slice, bool, error) {
	v, err := b.ToSlice()
	if err != nil {
		return cell.Slice{}, false, err
	}
	return d.SetWithMode(key, v, mode)
}
