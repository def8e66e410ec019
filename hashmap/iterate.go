package hashmap

import "github.com/forestrie/go-celldict/cell"

// IterateFunc receives one entry; returning false stops the iteration.
type IterateFunc func(key cell.Bitstring, value cell.Slice) (bool, error)

// Iterate calls fn for every entry in ascending (unsigned) key order. It
// reports whether every entry was visited.
func (d *Dict) Iterate(fn IterateFunc) (bool, error) {
	return d.iterate(func(key cell.Bitstring, nd *node) (bool, error) {
		return fn(key, nd.value)
	})
}

func (d *Dict) iterate(fn func(key cell.Bitstring, nd *node) (bool, error)) (bool, error) {
	if d.root == nil {
		return true, nil
	}
	return d.iterateNode(d.root, d.bitLen, cell.Bitstring{}, fn)
}

func (d *Dict) iterateNode(c *cell.Cell, n int, prefix cell.Bitstring, fn func(cell.Bitstring, *node) (bool, error)) (bool, error) {
	nd, err := d.parse(c, n)
	if err != nil {
		return false, err
	}
	key := prefix.Append(nd.label)
	if nd.isLeaf() {
		return fn(key, &nd)
	}
	for _, bit := range []uint8{0, 1} {
		more, err := d.iterateNode(nd.child(bit), nd.childBits(), key.AppendBit(bit), fn)
		if err != nil || !more {
			return more, err
		}
	}
	return true, nil
}

// Count returns the number of entries, giving up once it exceeds max. The
// boolean is false when the count was cut short.
func (d *Dict) Count(max int) (int, bool, error) {
	count := 0
	complete, err := d.iterate(func(cell.Bitstring, *node) (bool, error) {
		count++
		return count <= max, nil
	})
	return count, complete, err
}

// Len returns the number of entries.
func (d *Dict) Len() (int, error) {
	count := 0
	_, err := d.iterate(func(cell.Bitstring, *node) (bool, error) {
		count++
		return true, nil
	})
	return count, err
}

// CountCells returns the number of distinct cells reachable from the root,
// value cells included, giving up once it exceeds max.
func (d *Dict) CountCells(max int) (int, bool) {
	seen := map[[cell.HashBytes]byte]struct{}{}
	stack := []*cell.Cell{}
	if d.root != nil {
		stack = append(stack, d.root)
	}
	for len(stack) > 0 {
		c := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if _, ok := seen[c.Hash()]; ok {
			continue
		}
		seen[c.Hash()] = struct{}{}
		if len(seen) > max {
			return len(seen), false
		}
		for i := c.RefCount() - 1; i >= 0; i-- {
			r, _ := c.Ref(i)
			stack = append(stack, r)
		}
	}
	return len(seen), true
}

// Single returns the only entry of a one-entry dictionary.
func (d *Dict) Single() (Entry, bool, error) {
	if d.root == nil {
		return Entry{}, false, nil
	}
	nd, err := d.parse(d.root, d.bitLen)
	if err != nil || !nd.isLeaf() {
		return Entry{}, false, err
	}
	return Entry{Key: nd.label, Value: nd.value}, true, nil
}

// Keys returns every key in ascending order.
func (d *Dict) Keys() ([]cell.Bitstring, error) {
	var keys []cell.Bitstring
	_, err := d.Iterate(func(key cell.Bitstring, _ cell.Slice) (bool, error) {
		keys = append(keys, key)
		return true, nil
	})
	return keys, err
}

// Entries returns every entry in ascending key order.
func (d *Dict) Entries() ([]Entry, error) {
	var out []Entry
	_, err := d.Iterate(func(key cell.Bitstring, value cell.Slice) (bool, error) {
		out = append(out, Entry{Key: key, Value: value})
		return true, nil
	})
	return out, err
}
