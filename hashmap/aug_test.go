package hashmap

import (
	"testing"

	"github.com/forestrie/go-celldict/cell"
	"github.com/forestrie/go-celldict/dicttesting"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAugRootExtraTracksUpdates(t *testing.T) {
	tc := newTestContext(t, "TestAugRootExtraTracksUpdates")
	a, err := NewAug[uint64](7, SumAugmenter{}, WithLogger(tc.Log))
	require.NoError(t, err)

	steps := []struct {
		key   string
		extra uint64
		want  uint64
	}{
		{"1111111", 1, 1},
		{"1111111", 2, 2},
		{"1111000", 3, 5},
		{"1111000", 4, 6},
		{"0000000", 5, 11},
		{"0000000", 6, 12},
		{"0000011", 7, 19},
	}
	for _, s := range steps {
		_, _, err := a.Set(dicttesting.Bits(s.key), tc.U8(uint8(s.extra)), s.extra)
		require.NoError(t, err)
		got, err := a.RootExtra()
		require.NoError(t, err)
		assert.Equal(t, s.want, got, "after setting %s", s.key)
	}

	v, extra, ok, err := a.GetAug(dicttesting.Bits("1111000"))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, uint64(4), extra)
	assert.Equal(t, "00000100", v.Bits().String())
}

func TestAugMaxAddRemove(t *testing.T) {
	tc := newTestContext(t, "TestAugMaxAddRemove")
	a, err := NewAug[uint8](8, MaxAugmenter{})
	require.NoError(t, err)

	rootExtra := func() uint8 {
		x, err := a.RootExtra()
		require.NoError(t, err)
		return x
	}

	_, _, err = a.SetAugmentable(dicttesting.Key(1, 8), tc.U8(1), ModeSet)
	require.NoError(t, err)
	assert.Equal(t, uint8(1), rootExtra())
	_, _, err = a.SetAugmentable(dicttesting.Key(2, 8), tc.U8(2), ModeSet)
	require.NoError(t, err)
	assert.Equal(t, uint8(2), rootExtra())

	_, ok, err := a.Remove(dicttesting.Key(2, 8))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, uint8(1), rootExtra())

	_, ok, err = a.Remove(dicttesting.Key(1, 8))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, uint8(0), rootExtra())
	assert.True(t, a.IsEmpty())
}

func TestAugRootExtraIsOrderIndependent(t *testing.T) {
	tc := newTestContext(t, "TestAugRootExtraIsOrderIndependent")
	keys := tc.DistinctKeys(60, 16)
	extras := make([]uint64, len(keys))
	var total uint64
	for i := range extras {
		extras[i] = uint64(tc.Rand.Intn(1000))
		total += extras[i]
	}

	build := func(order []int) AugDict[uint64] {
		a, err := NewAug[uint64](16, SumAugmenter{})
		require.NoError(t, err)
		for _, i := range order {
			_, _, err := a.Set(keys[i], tc.U64(uint64(i)), extras[i])
			require.NoError(t, err)
		}
		return a
	}
	inOrder := make([]int, len(keys))
	for i := range inOrder {
		inOrder[i] = i
	}
	a := build(inOrder)
	b := build(tc.Rand.Perm(len(keys)))

	assert.Equal(t, a.RootHash(), b.RootHash())
	ea, err := a.RootExtra()
	require.NoError(t, err)
	eb, err := b.RootExtra()
	require.NoError(t, err)
	assert.Equal(t, total, ea)
	assert.Equal(t, total, eb)
}

func TestAugDiffReportsExtraChanges(t *testing.T) {
	tc := newTestContext(t, "TestAugDiffReportsExtraChanges")
	k := dicttesting.Key(9, 8)
	a, err := NewAug[uint64](8, SumAugmenter{})
	require.NoError(t, err)
	_, _, err = a.Set(k, tc.U64(1), 10)
	require.NoError(t, err)
	b := a
	_, _, err = b.Set(k, tc.U64(1), 11)
	require.NoError(t, err)

	var got []uint64
	_, err = a.ScanDiffWithAug(&b, func(key cell.Bitstring, x, y *AugValue[uint64]) (bool, error) {
		require.NotNil(t, x)
		require.NotNil(t, y)
		got = append(got, x.Extra, y.Extra)
		return true, nil
	})
	require.NoError(t, err)
	assert.Equal(t, []uint64{10, 11}, got)

	// plain values are identical, so the value diff reports nothing
	reported := 0
	complete, err := a.ScanDiff(&b.Dict, func(cell.Bitstring, *cell.Slice, *cell.Slice) (bool, error) {
		reported++
		return true, nil
	})
	require.NoError(t, err)
	assert.True(t, complete)
	assert.Equal(t, 0, reported)

	// a value change is reported by both
	_, _, err = b.Set(k, tc.U64(2), 11)
	require.NoError(t, err)
	_, err = a.ScanDiff(&b.Dict, func(cell.Bitstring, *cell.Slice, *cell.Slice) (bool, error) {
		reported++
		return true, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, reported)
}

func TestAugFindAndIterate(t *testing.T) {
	tc := newTestContext(t, "TestAugFindAndIterate")
	a := eightLeaves(&tc)

	e, ok, err := a.FindLeafAug(dicttesting.Key(3, 8), true, false, false)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, uint64(4), e.Extra)

	var sum uint64
	complete, err := a.IterateAug(func(e AugEntry[uint64]) (bool, error) {
		sum += e.Extra
		return true, nil
	})
	require.NoError(t, err)
	assert.True(t, complete)
	assert.Equal(t, uint64(28), sum)

	sub, err := a.SubtreeWithPrefix(dicttesting.Bits("000001"))
	require.NoError(t, err)
	extra, err := sub.RootExtra()
	require.NoError(t, err)
	assert.Equal(t, uint64(22), extra)
}

func TestAugCombineKeepsExtras(t *testing.T) {
	tc := newTestContext(t, "TestAugCombineKeepsExtras")
	a := sumDict(&tc, 8, []string{"00000001"})
	b := sumDict(&tc, 8, []string{"00000010", "00000011"})
	require.NoError(t, a.CombineWith(&b, CombineOtherWins))

	extra, err := a.RootExtra()
	require.NoError(t, err)
	// b's entries carry extras 1 and 2
	assert.Equal(t, uint64(4), extra)
}

// tag is an optional per-entry label; a nil tag is a valid extra.
type tag interface{ Level() uint8 }

type tagLevel uint8

func (l tagLevel) Level() uint8 { return uint8(l) }

// tagAugmenter keeps the highest tag level, ignoring untagged entries.
type tagAugmenter struct{}

func (tagAugmenter) Zero() tag { return nil }

func (tagAugmenter) Combine(a, b tag) (tag, error) {
	switch {
	case a == nil:
		return b, nil
	case b == nil:
		return a, nil
	}
	return tagLevel(max(a.Level(), b.Level())), nil
}

func (tagAugmenter) FromValue(v cell.Slice) (tag, error) {
	x, err := v.ReadUint(8)
	if err != nil {
		return nil, err
	}
	return tagLevel(x), nil
}

func (tagAugmenter) Store(b *cell.Builder, y tag) error {
	if y == nil {
		return b.AppendBit(0)
	}
	if err := b.AppendBit(1); err != nil {
		return err
	}
	return b.AppendUint(uint64(y.Level()), 8)
}

func (tagAugmenter) Load(s *cell.Slice) (tag, error) {
	present, err := s.ReadBit()
	if err != nil || present == 0 {
		return nil, err
	}
	x, err := s.ReadUint(8)
	if err != nil {
		return nil, err
	}
	return tagLevel(x), nil
}

func TestAugNilExtraIsStored(t *testing.T) {
	tc := newTestContext(t, "TestAugNilExtraIsStored")
	a, err := NewAug[tag](8, tagAugmenter{}, WithLogger(tc.Log))
	require.NoError(t, err)
	untagged, tagged := dicttesting.Key(3, 8), dicttesting.Key(130, 8)

	_, _, err = a.Set(untagged, tc.U8(7), nil)
	require.NoError(t, err)
	_, extra, ok, err := a.GetAug(untagged)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Nil(t, extra, "a nil extra is not derived from the value")

	root, err := a.RootExtra()
	require.NoError(t, err)
	assert.Nil(t, root)

	_, _, err = a.SetAugmentable(tagged, tc.U8(9), ModeAdd)
	require.NoError(t, err)
	root, err = a.RootExtra()
	require.NoError(t, err)
	require.NotNil(t, root)
	assert.Equal(t, uint8(9), root.Level())

	// the untagged leaf was relabeled under the new fork and kept its extra
	_, extra, ok, err = a.GetAug(untagged)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Nil(t, extra)

	_, _, err = a.Remove(tagged)
	require.NoError(t, err)
	root, err = a.RootExtra()
	require.NoError(t, err)
	assert.Nil(t, root)
}
