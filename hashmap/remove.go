package hashmap

import "github.com/forestrie/go-celldict/cell"

// Remove deletes key and returns the value it held.
func (d *Dict) Remove(key cell.Bitstring) (cell.Slice, bool, error) {
	if err := d.checkKey(key); err != nil {
		return cell.Slice{}, false, err
	}
	var (
		path []frame
		c    = d.root
		n    = d.bitLen
		rest = key
	)
	for {
		if c == nil {
			return cell.Slice{}, false, nil
		}
		nd, err := d.parse(c, n)
		if err != nil {
			return cell.Slice{}, false, err
		}
		if !rest.HasPrefix(nd.label) {
			return cell.Slice{}, false, nil
		}
		if nd.isLeaf() {
			root, err := d.unlink(path)
			if err != nil {
				return cell.Slice{}, false, err
			}
			d.root = root
			return nd.value, true, nil
		}
		l := nd.label.Len()
		dir := rest.Bit(l)
		path = append(path, frame{label: nd.label, n: n, left: nd.left, right: nd.right, dir: dir})
		c = nd.child(dir)
		n = nd.childBits()
		rest = rest.Suffix(l + 1)
	}
}

// unlink drops the leaf at the end of path. Its parent fork collapses into
// the sibling.
func (d *Dict) unlink(path []frame) (*cell.Cell, error) {
	if len(path) == 0 {
		return nil, nil
	}
	parent := path[len(path)-1]
	keep := 1 - parent.dir
	sibling := parent.right
	if keep == 0 {
		sibling = parent.left
	}
	c, err := d.hoist(parent.label, parent.n, keep, sibling)
	if err != nil {
		return nil, err
	}
	return d.rebuild(path[:len(path)-1], c)
}
