package hashmap

import (
	"fmt"
	"sort"

	"github.com/forestrie/go-celldict/cell"
)

// sortedBuild constructs a trie bottom-up from entries whose keys are
// strictly increasing. Each node is built exactly once.
type sortedBuild struct {
	d      *Dict
	keys   []cell.Bitstring
	values []cell.Slice
	extras []any
}

func (sb *sortedBuild) check() error {
	for i, k := range sb.keys {
		if err := sb.d.checkKey(k); err != nil {
			return err
		}
		if i == 0 {
			continue
		}
		switch sb.keys[i-1].Compare(k) {
		case 0:
			return fmt.Errorf("%w: %s", ErrDuplicateKey, k)
		case 1:
			return fmt.Errorf("%w: %s after %s", ErrOutOfOrderKey, k, sb.keys[i-1])
		}
	}
	return nil
}

// node builds the subtree over keys[lo:hi], all of which agree on their
// first offset bits.
func (sb *sortedBuild) node(lo, hi, offset int) (*cell.Cell, error) {
	n := sb.d.bitLen - offset
	first := sb.keys[lo].Suffix(offset)
	if hi-lo == 1 {
		var extra any
		if sb.extras != nil {
			extra = sb.extras[lo]
		}
		return sb.d.makeLeaf(first, n, extra, sb.values[lo])
	}
	cp := first.CommonPrefixLen(sb.keys[hi-1].Suffix(offset))
	branch := offset + cp
	mid := lo + sort.Search(hi-lo, func(i int) bool {
		return sb.keys[lo+i].Bit(branch) == 1
	})
	left, err := sb.node(lo, mid, branch+1)
	if err != nil {
		return nil, err
	}
	right, err := sb.node(mid, hi, branch+1)
	if err != nil {
		return nil, err
	}
	return sb.d.makeFork(first.Prefix(cp), n, left, right, nil)
}

func (sb *sortedBuild) run() error {
	if err := sb.check(); err != nil {
		return err
	}
	if len(sb.keys) == 0 {
		return nil
	}
	root, err := sb.node(0, len(sb.keys), 0)
	if err != nil {
		return err
	}
	sb.d.root = root
	return nil
}

// FromSorted builds a dictionary from entries in strictly increasing key
// order.
func FromSorted(bitLen int, entries []Entry, opts ...Option) (Dict, error) {
	d, err := New(bitLen, opts...)
	if err != nil {
		return Dict{}, err
	}
	sb := &sortedBuild{d: &d}
	for _, e := range entries {
		sb.keys = append(sb.keys, e.Key)
		sb.values = append(sb.values, e.Value)
	}
	if err := sb.run(); err != nil {
		return Dict{}, err
	}
	return d, nil
}

// FromSortedAug is FromSorted for augmented dictionaries.
func FromSortedAug[Y any](bitLen int, aug Augmenter[Y], entries []AugEntry[Y], opts ...Option) (AugDict[Y], error) {
	a, err := NewAug(bitLen, aug, opts...)
	if err != nil {
		return AugDict[Y]{}, err
	}
	sb := &sortedBuild{d: &a.Dict}
	for _, e := range entries {
		sb.keys = append(sb.keys, e.Key)
		sb.values = append(sb.values, e.Value)
		sb.extras = append(sb.extras, boxed[Y]{e.Extra})
	}
	if err := sb.run(); err != nil {
		return AugDict[Y]{}, err
	}
	return a, nil
}
