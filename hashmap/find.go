package hashmap

import "github.com/forestrie/go-celldict/cell"

// order maps a branch bit to its rank. With signed keys the first key bit is
// a sign bit, so at absolute position 0 a one ranks below a zero.
func order(bit uint8, pos int, signed bool) uint8 {
	if signed && pos == 0 {
		return 1 - bit
	}
	return bit
}

// extreme descends from c to its smallest (or largest) leaf. prefix is the
// key prefix leading to c, n the key bits remaining there.
func (d *Dict) extreme(c *cell.Cell, n int, prefix cell.Bitstring, largest, signed bool) (Entry, node, error) {
	for {
		nd, err := d.parse(c, n)
		if err != nil {
			return Entry{}, node{}, err
		}
		prefix = prefix.Append(nd.label)
		if nd.isLeaf() {
			return Entry{Key: prefix, Value: nd.value}, nd, nil
		}
		want := uint8(0)
		if largest {
			want = 1
		}
		bit := order(want, prefix.Len(), signed)
		prefix = prefix.AppendBit(bit)
		c = nd.child(bit)
		n = nd.childBits()
	}
}

// Min returns the entry with the smallest key.
func (d *Dict) Min(signed bool) (Entry, bool, error) {
	return d.MinMax(false, signed)
}

// Max returns the entry with the largest key.
func (d *Dict) Max(signed bool) (Entry, bool, error) {
	return d.MinMax(true, signed)
}

// MinMax returns the largest entry when fetchMax is set, the smallest
// otherwise.
func (d *Dict) MinMax(fetchMax, signed bool) (Entry, bool, error) {
	if d.root == nil {
		return Entry{}, false, nil
	}
	e, _, err := d.extreme(d.root, d.bitLen, cell.Bitstring{}, fetchMax, signed)
	if err != nil {
		return Entry{}, false, err
	}
	return e, true, nil
}

// FindLeaf returns the entry nearest to key in the given direction: the
// smallest key above it when next is set, the largest key below it
// otherwise. With eq an entry for key itself qualifies.
func (d *Dict) FindLeaf(key cell.Bitstring, next, eq, signed bool) (Entry, bool, error) {
	e, _, ok, err := d.findLeaf(key, next, eq, signed)
	return e, ok, err
}

func (d *Dict) findLeaf(key cell.Bitstring, next, eq, signed bool) (Entry, node, bool, error) {
	if err := d.checkKey(key); err != nil {
		return Entry{}, node{}, false, err
	}
	if d.root == nil {
		return Entry{}, node{}, false, nil
	}

	// The closest subtree seen so far lying wholly in the wanted direction.
	var (
		cand       *cell.Cell
		candN      int
		candPrefix cell.Bitstring
	)
	fromCandidate := func() (Entry, node, bool, error) {
		if cand == nil {
			return Entry{}, node{}, false, nil
		}
		e, nd, err := d.extreme(cand, candN, candPrefix, !next, signed)
		return e, nd, err == nil, err
	}

	c, n, prefix := d.root, d.bitLen, cell.Bitstring{}
	for {
		nd, err := d.parse(c, n)
		if err != nil {
			return Entry{}, node{}, false, err
		}
		l := nd.label.Len()
		rest := key.Suffix(prefix.Len())
		cp := nd.label.CommonPrefixLen(rest)

		if cp < l {
			pos := prefix.Len() + cp
			above := order(nd.label.Bit(cp), pos, signed) > order(rest.Bit(cp), pos, signed)
			if above == next {
				// every key below c lies in the wanted direction
				e, leaf, err := d.extreme(c, n, prefix, !next, signed)
				return e, leaf, err == nil, err
			}
			return fromCandidate()
		}

		if nd.isLeaf() {
			if eq {
				return Entry{Key: key, Value: nd.value}, nd, true, nil
			}
			return fromCandidate()
		}

		pos := prefix.Len() + l
		dir := rest.Bit(l)
		other := 1 - dir
		if (order(other, pos, signed) > order(dir, pos, signed)) == next {
			cand = nd.child(other)
			candN = nd.childBits()
			candPrefix = prefix.Append(nd.label).AppendBit(other)
		}
		prefix = prefix.Append(nd.label).AppendBit(dir)
		c = nd.child(dir)
		n = nd.childBits()
	}
}
