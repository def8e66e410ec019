package hashmap

import (
	"testing"

	"github.com/forestrie/go-celldict/cell"
	"github.com/forestrie/go-celldict/dicttesting"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type diffRecord struct {
	key  string
	a, b *uint64
}

func collectDiff(tc *dicttesting.TestContext, x, y *Dict) []diffRecord {
	var out []diffRecord
	read := func(s *cell.Slice) *uint64 {
		if s == nil {
			return nil
		}
		v := tc.ReadU64(*s)
		return &v
	}
	complete, err := x.ScanDiff(y, func(key cell.Bitstring, a, b *cell.Slice) (bool, error) {
		out = append(out, diffRecord{key: key.String(), a: read(a), b: read(b)})
		return true, nil
	})
	require.NoError(tc.T, err)
	require.True(tc.T, complete)
	return out
}

func TestScanDiffMatchesMapDiff(t *testing.T) {
	tc := newTestContext(t, "TestScanDiffMatchesMapDiff")
	const bitLen = 10
	keys := tc.DistinctKeys(150, bitLen)

	// x holds keys[0:100], y holds keys[50:150]; a third of the shared keys
	// get a different value in y.
	xv := map[string]uint64{}
	yv := map[string]uint64{}
	x := mustDict(&tc, bitLen, nil, nil)
	y := mustDict(&tc, bitLen, nil, nil)
	for i, k := range keys {
		if i < 100 {
			xv[k.String()] = uint64(i)
			_, _, err := x.Set(k, tc.U64(uint64(i)))
			require.NoError(t, err)
		}
		if i >= 50 {
			v := uint64(i)
			if i < 100 && i%3 == 0 {
				v += 1000
			}
			yv[k.String()] = v
			_, _, err := y.Set(k, tc.U64(v))
			require.NoError(t, err)
		}
	}

	var want []diffRecord
	for q := uint64(0); q < 1<<bitLen; q++ {
		k := dicttesting.Key(q, bitLen).String()
		a, aok := xv[k]
		b, bok := yv[k]
		if aok && bok && a == b {
			continue
		}
		if !aok && !bok {
			continue
		}
		r := diffRecord{key: k}
		if aok {
			r.a = &a
		}
		if bok {
			r.b = &b
		}
		want = append(want, r)
	}

	got := collectDiff(&tc, &x, &y)
	require.Equal(t, len(want), len(got))
	for i := range want {
		assert.Equal(t, want[i], got[i])
	}

	assert.Empty(t, collectDiff(&tc, &x, &x))
}

func TestScanDiffStopsEarly(t *testing.T) {
	tc := newTestContext(t, "TestScanDiffStopsEarly")
	keys := tc.DistinctKeys(20, 8)
	x := mustDict(&tc, 8, keys, seq(len(keys)))
	y := mustDict(&tc, 8, nil, nil)

	calls := 0
	complete, err := x.ScanDiff(&y, func(cell.Bitstring, *cell.Slice, *cell.Slice) (bool, error) {
		calls++
		return calls < 3, nil
	})
	require.NoError(t, err)
	assert.False(t, complete)
	assert.Equal(t, 3, calls)
}

func TestCombineWithPolicies(t *testing.T) {
	tc := newTestContext(t, "TestCombineWithPolicies")
	k1, k2, k3 := dicttesting.Key(1, 8), dicttesting.Key(2, 8), dicttesting.Key(3, 8)

	mk := func() (Dict, Dict) {
		x := mustDict(&tc, 8, []cell.Bitstring{k1, k2}, []uint64{10, 20})
		y := mustDict(&tc, 8, []cell.Bitstring{k2, k3}, []uint64{21, 30})
		return x, y
	}
	get := func(d *Dict, k cell.Bitstring) uint64 {
		v, ok, err := d.Get(k)
		require.NoError(t, err)
		require.True(t, ok)
		return tc.ReadU64(v)
	}

	x, y := mk()
	require.NoError(t, x.CombineWith(&y, CombineOtherWins))
	assert.Equal(t, uint64(10), get(&x, k1))
	assert.Equal(t, uint64(21), get(&x, k2))
	assert.Equal(t, uint64(30), get(&x, k3))

	x, y = mk()
	require.NoError(t, x.CombineWith(&y, CombineKeepSelf))
	assert.Equal(t, uint64(20), get(&x, k2))
	assert.Equal(t, uint64(30), get(&x, k3))

	x, y = mk()
	before := x.RootHash()
	err := x.CombineWith(&y, CombineFailOnConflict)
	require.ErrorIs(t, err, ErrCombineConflict)
	assert.Equal(t, before, x.RootHash())

	// equal values are not conflicts
	x, _ = mk()
	z := mustDict(&tc, 8, []cell.Bitstring{k2, k3}, []uint64{20, 30})
	require.NoError(t, x.CombineWith(&z, CombineFailOnConflict))
	assert.Equal(t, uint64(30), get(&x, k3))
}
