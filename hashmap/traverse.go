package hashmap

import "github.com/forestrie/go-celldict/cell"

// TraverseStep tells a traversal where to go after visiting a node.
type TraverseStep uint8

const (
	// VisitZero descends into the 0 child only.
	VisitZero TraverseStep = iota
	// VisitOne descends into the 1 child only.
	VisitOne
	// VisitZeroOne descends into both children, 0 first.
	VisitZeroOne
	// VisitOneZero descends into both children, 1 first.
	VisitOneZero
	// VisitStop abandons the current branch.
	VisitStop
	// VisitEnd ends the whole traversal with the returned result.
	VisitEnd
)

// TraverseFunc is called for every node reached. For a fork key is the
// prefix shared by every key below it and value is nil. For a leaf key is the
// full key; only VisitEnd has an effect there.
type TraverseFunc[R any] func(key cell.Bitstring, value *cell.Slice) (TraverseStep, R, error)

// Traverse walks d from the root, letting fn steer the descent. It returns the
// result passed with VisitEnd, and whether the traversal ended that way.
func Traverse[R any](d *Dict, fn TraverseFunc[R]) (R, bool, error) {
	return traverse(d, func(key cell.Bitstring, nd *node) (TraverseStep, R, error) {
		if nd.isLeaf() {
			return fn(key, &nd.value)
		}
		return fn(key, nil)
	})
}

func traverse[R any](d *Dict, visit func(key cell.Bitstring, nd *node) (TraverseStep, R, error)) (R, bool, error) {
	var zero R
	if d.root == nil {
		return zero, false, nil
	}
	return traverseNode(d, d.root, d.bitLen, cell.Bitstring{}, visit)
}

func traverseNode[R any](d *Dict, c *cell.Cell, n int, prefix cell.Bitstring, visit func(cell.Bitstring, *node) (TraverseStep, R, error)) (R, bool, error) {
	var zero R
	nd, err := d.parse(c, n)
	if err != nil {
		return zero, false, err
	}
	key := prefix.Append(nd.label)
	step, res, err := visit(key, &nd)
	if err != nil {
		return zero, false, err
	}
	if step == VisitEnd {
		return res, true, nil
	}
	if nd.isLeaf() {
		return zero, false, nil
	}

	var order []uint8
	switch step {
	case VisitZero:
		order = []uint8{0}
	case VisitOne:
		order = []uint8{1}
	case VisitZeroOne:
		order = []uint8{0, 1}
	case VisitOneZero:
		order = []uint8{1, 0}
	default:
		return zero, false, nil
	}
	for _, bit := range order {
		res, done, err := traverseNode(d, nd.child(bit), nd.childBits(), key.AppendBit(bit), visit)
		if err != nil || done {
			return res, done, err
		}
	}
	return zero, false, nil
}
