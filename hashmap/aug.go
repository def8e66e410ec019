package hashmap

import (
	"fmt"

	"github.com/forestrie/go-celldict/cell"
)

// Augmenter defines the extra values of an augmented dictionary.
//
// Combine must be associative and Zero its identity, so the root extra does
// not depend on the shape of the trie.
type Augmenter[Y any] interface {
	Zero() Y
	Combine(a, b Y) (Y, error)
	// FromValue derives the extra of a leaf from its value.
	FromValue(v cell.Slice) (Y, error)
	Store(b *cell.Builder, y Y) error
	Load(s *cell.Slice) (Y, error)
}

type augCodec[Y any] struct {
	aug Augmenter[Y]
}

// boxed carries an extra through the node layer. Extras are always boxed, so
// a nil Y (for pointer or interface Y) is still a present extra; only a nil
// any asks makeLeaf and makeFork to derive one.
type boxed[Y any] struct {
	y Y
}

func unbox[Y any](x any) Y { return x.(boxed[Y]).y }

func (a augCodec[Y]) load(s *cell.Slice) (any, error) {
	y, err := a.aug.Load(s)
	if err != nil {
		return nil, err
	}
	return boxed[Y]{y}, nil
}

func (a augCodec[Y]) store(b *cell.Builder, x any) error {
	bx, ok := x.(boxed[Y])
	if !ok {
		return fmt.Errorf("%w: extra of type %T", ErrAugmentMismatch, x)
	}
	return a.aug.Store(b, bx.y)
}

func (a augCodec[Y]) combine(x, y any) (any, error) {
	xv, ok1 := x.(boxed[Y])
	yv, ok2 := y.(boxed[Y])
	if !ok1 || !ok2 {
		return nil, fmt.Errorf("%w: combining %T and %T", ErrAugmentMismatch, x, y)
	}
	c, err := a.aug.Combine(xv.y, yv.y)
	if err != nil {
		return nil, err
	}
	return boxed[Y]{c}, nil
}

func (a augCodec[Y]) fromValue(v cell.Slice) (any, error) {
	y, err := a.aug.FromValue(v)
	if err != nil {
		return nil, err
	}
	return boxed[Y]{y}, nil
}

// AugDict is a HashmapAugE: a dictionary whose every node also carries an
// extra value of type Y.
//
// The embedded Dict methods remain available. Values stored through them get
// their extra from Augmenter.FromValue.
type AugDict[Y any] struct {
	Dict
	aug Augmenter[Y]
}

// AugEntry is an entry of an augmented dictionary.
type AugEntry[Y any] struct {
	Key   cell.Bitstring
	Value cell.Slice
	Extra Y
}

// NewAug returns an empty augmented dictionary for keys of bitLen bits.
func NewAug[Y any](bitLen int, aug Augmenter[Y], opts ...Option) (AugDict[Y], error) {
	d, err := New(bitLen, opts...)
	if err != nil {
		return AugDict[Y]{}, err
	}
	d.xc = augCodec[Y]{aug: aug}
	return AugDict[Y]{Dict: d, aug: aug}, nil
}

func (a *AugDict[Y]) wrap(d Dict) AugDict[Y] {
	return AugDict[Y]{Dict: d, aug: a.aug}
}

// Augmenter returns the augmenter of the dictionary.
func (a *AugDict[Y]) Augmenter() Augmenter[Y] { return a.aug }

// RootExtra returns the extra aggregated over the whole dictionary, Zero for
// the empty dictionary.
func (a *AugDict[Y]) RootExtra() (Y, error) {
	if a.root == nil {
		return a.aug.Zero(), nil
	}
	x, err := a.nodeExtra(a.root, a.bitLen)
	if err != nil {
		var zero Y
		return zero, err
	}
	return unbox[Y](x), nil
}

// SetWithModeAug stores value with an explicit extra under key subject to
// mode. The extra is stored as given, even when it is a nil Y.
func (a *AugDict[Y]) SetWithModeAug(key cell.Bitstring, value cell.Slice, extra Y, mode Mode) (cell.Slice, bool, error) {
	return a.set(key, value, boxed[Y]{extra}, mode)
}

// Set stores value with an explicit extra under key.
func (a *AugDict[Y]) Set(key cell.Bitstring, value cell.Slice, extra Y) (cell.Slice, bool, error) {
	return a.set(key, value, boxed[Y]{extra}, ModeSet)
}

// SetAugmentable stores value under key with the extra derived from it.
func (a *AugDict[Y]) SetAugmentable(key cell.Bitstring, value cell.Slice, mode Mode) (cell.Slice, bool, error) {
	return a.set(key, value, nil, mode)
}

// GetAug returns the value and extra stored under key.
func (a *AugDict[Y]) GetAug(key cell.Bitstring) (cell.Slice, Y, bool, error) {
	var zero Y
	nd, ok, err := a.lookup(key)
	if err != nil || !ok {
		return cell.Slice{}, zero, false, err
	}
	return nd.value, unbox[Y](nd.extra), true, nil
}

// Split is Dict.Split for augmented dictionaries.
func (a *AugDict[Y]) Split(prefix cell.Bitstring) (left, right AugDict[Y], err error) {
	l, r, err := a.Dict.Split(prefix)
	if err != nil {
		return AugDict[Y]{}, AugDict[Y]{}, err
	}
	return a.wrap(l), a.wrap(r), nil
}

// Merge is Dict.Merge for augmented dictionaries.
func (a *AugDict[Y]) Merge(other *AugDict[Y], prefix cell.Bitstring) error {
	return a.Dict.Merge(&other.Dict, prefix)
}

func (a *AugDict[Y]) SubtreeWithoutPrefix(prefix cell.Bitstring) (AugDict[Y], error) {
	d, err := a.Dict.SubtreeWithoutPrefix(prefix)
	if err != nil {
		return AugDict[Y]{}, err
	}
	return a.wrap(d), nil
}

func (a *AugDict[Y]) SubtreeWithPrefix(prefix cell.Bitstring) (AugDict[Y], error) {
	d, err := a.Dict.SubtreeWithPrefix(prefix)
	if err != nil {
		return AugDict[Y]{}, err
	}
	return a.wrap(d), nil
}

// CombineWith is Dict.CombineWith for augmented dictionaries; entries taken
// from other keep their extras.
func (a *AugDict[Y]) CombineWith(other *AugDict[Y], policy CombinePolicy) error {
	return a.Dict.CombineWith(&other.Dict, policy)
}

// AugValue is one side of an augmented diff.
type AugValue[Y any] struct {
	Value cell.Slice
	Extra Y
}

// AugDiffFunc is DiffFunc with extras.
type AugDiffFunc[Y any] func(key cell.Bitstring, a, b *AugValue[Y]) (bool, error)

// ScanDiffWithAug is ScanDiff reporting extras as well as values. Leaves
// differ when either their value or their extra does.
func (a *AugDict[Y]) ScanDiffWithAug(other *AugDict[Y], fn AugDiffFunc[Y]) (bool, error) {
	conv := func(nd *node) *AugValue[Y] {
		if nd == nil {
			return nil
		}
		return &AugValue[Y]{Value: nd.value, Extra: unbox[Y](nd.extra)}
	}
	return a.scanDiff(&other.Dict, func(key cell.Bitstring, x, y *node) (bool, error) {
		return fn(key, conv(x), conv(y))
	})
}

// AugFilterFunc is FilterFunc with the entry's extra.
type AugFilterFunc[Y any] func(key cell.Bitstring, value cell.Slice, extra Y) (FilterAction, error)

// Filter is Dict.Filter with extras passed to fn. Fork extras are recomputed
// for the rebuilt paths.
func (a *AugDict[Y]) Filter(fn AugFilterFunc[Y]) (int, error) {
	return a.filter(func(key cell.Bitstring, nd *node) (FilterAction, error) {
		return fn(key, nd.value, unbox[Y](nd.extra))
	})
}

// IterateAug calls fn for every entry in ascending key order.
func (a *AugDict[Y]) IterateAug(fn func(e AugEntry[Y]) (bool, error)) (bool, error) {
	return a.iterate(func(key cell.Bitstring, nd *node) (bool, error) {
		return fn(AugEntry[Y]{Key: key, Value: nd.value, Extra: unbox[Y](nd.extra)})
	})
}

// FindLeafAug is FindLeaf returning the entry's extra too.
func (a *AugDict[Y]) FindLeafAug(key cell.Bitstring, next, eq, signed bool) (AugEntry[Y], bool, error) {
	e, nd, ok, err := a.findLeaf(key, next, eq, signed)
	if err != nil || !ok {
		return AugEntry[Y]{}, false, err
	}
	return AugEntry[Y]{Key: e.Key, Value: e.Value, Extra: unbox[Y](nd.extra)}, true, nil
}

// AugTraverseFunc is TraverseFunc with the node's extra.
type AugTraverseFunc[Y, R any] func(key cell.Bitstring, extra Y, value *cell.Slice) (TraverseStep, R, error)

// TraverseAug is Traverse for augmented dictionaries: fn also receives the
// extra of every node, forks included.
func TraverseAug[Y, R any](a *AugDict[Y], fn AugTraverseFunc[Y, R]) (R, bool, error) {
	return traverse(&a.Dict, func(key cell.Bitstring, nd *node) (TraverseStep, R, error) {
		extra := unbox[Y](nd.extra)
		if nd.isLeaf() {
			return fn(key, extra, &nd.value)
		}
		return fn(key, extra, nil)
	})
}

// WriteTo stores a in HashmapAugE form: the HashmapE presence bit and root
// followed by the root extra.
func (a *AugDict[Y]) WriteTo(b *cell.Builder) error {
	extra, err := a.RootExtra()
	if err != nil {
		return err
	}
	if err := a.Dict.WriteTo(b); err != nil {
		return err
	}
	return a.aug.Store(b, extra)
}

// ReadAugDict reads a dictionary written by AugDict.WriteTo and checks the
// stored root extra against the root node.
func ReadAugDict[Y any](s *cell.Slice, bitLen int, aug Augmenter[Y], opts ...Option) (AugDict[Y], error) {
	root, err := readOptionalRoot(s)
	if err != nil {
		return AugDict[Y]{}, err
	}
	stored, err := aug.Load(s)
	if err != nil {
		return AugDict[Y]{}, err
	}
	return augFromRoot(root, bitLen, aug, stored, opts...)
}

// ReadAugRoot reads an inline augmented root (the HashmapAug form) followed
// by nothing else; the root extra is the extra of the root node.
func ReadAugRoot[Y any](s *cell.Slice, bitLen int, aug Augmenter[Y], opts ...Option) (AugDict[Y], error) {
	root, err := readInlineRoot(s)
	if err != nil {
		return AugDict[Y]{}, err
	}
	a, err := NewAug(bitLen, aug, opts...)
	if err != nil {
		return AugDict[Y]{}, err
	}
	if _, err := a.parse(root, bitLen); err != nil {
		return AugDict[Y]{}, err
	}
	a.root = root
	return a, nil
}

func augFromRoot[Y any](root *cell.Cell, bitLen int, aug Augmenter[Y], stored Y, opts ...Option) (AugDict[Y], error) {
	a, err := NewAug(bitLen, aug, opts...)
	if err != nil {
		return AugDict[Y]{}, err
	}
	if root != nil {
		if _, err := a.parse(root, bitLen); err != nil {
			return AugDict[Y]{}, err
		}
	}
	a.root = root
	actual, err := a.RootExtra()
	if err != nil {
		return AugDict[Y]{}, err
	}
	same, err := sameExtra(aug, stored, actual)
	if err != nil {
		return AugDict[Y]{}, err
	}
	if !same {
		return AugDict[Y]{}, ErrAugmentMismatch
	}
	return a, nil
}

// sameExtra compares two extras by their serialized form.
func sameExtra[Y any](aug Augmenter[Y], x, y Y) (bool, error) {
	bx, by := cell.NewBuilder(), cell.NewBuilder()
	if err := aug.Store(bx, x); err != nil {
		return false, err
	}
	if err := aug.Store(by, y); err != nil {
		return false, err
	}
	sx, err := bx.ToSlice()
	if err != nil {
		return false, err
	}
	sy, err := by.ToSlice()
	if err != nil {
		return false, err
	}
	return sx.Equal(sy), nil
}
