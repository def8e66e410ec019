package hashmap

import (
	"testing"

	"github.com/forestrie/go-celldict/cell"
	"github.com/forestrie/go-celldict/dicttesting"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// eightLeaves maps the 8-bit keys 0..7 to the values 0..7, extras equal to
// the values.
func eightLeaves(tc *dicttesting.TestContext) AugDict[uint64] {
	a, err := NewAug[uint64](8, SumAugmenter{}, WithLogger(tc.Log))
	require.NoError(tc.T, err)
	for i := uint64(0); i < 8; i++ {
		_, _, err := a.SetAugmentable(dicttesting.Key(i, 8), tc.U64(i), ModeAdd)
		require.NoError(tc.T, err)
	}
	return a
}

func TestTraverseSteering(t *testing.T) {
	tc := newTestContext(t, "TestTraverseSteering")
	a := eightLeaves(&tc)

	tests := []struct {
		name       string
		step       TraverseStep
		stopAt     int
		wantExtras []uint64
		wantEnd    bool
		wantResult uint64
	}{
		{name: "zeros", step: VisitZero, wantExtras: []uint64{28, 6, 1, 0}},
		{name: "ones", step: VisitOne, wantExtras: []uint64{28, 22, 13, 7}, wantEnd: true, wantResult: 7},
		{name: "both pruned", step: VisitZeroOne, stopAt: 6, wantExtras: []uint64{28, 6, 22}},
		{name: "both reversed pruned", step: VisitOneZero, stopAt: 6, wantExtras: []uint64{28, 22, 6}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var extras []uint64
			res, ended, err := TraverseAug(&a, func(key cell.Bitstring, extra uint64, value *cell.Slice) (TraverseStep, uint64, error) {
				extras = append(extras, extra)
				if value != nil {
					if tt.wantEnd {
						return VisitEnd, tc.ReadU64(*value), nil
					}
					return tt.step, 0, nil
				}
				if tt.stopAt != 0 && key.Len() == tt.stopAt {
					return VisitStop, 0, nil
				}
				return tt.step, 0, nil
			})
			require.NoError(t, err)
			assert.Equal(t, tt.wantExtras, extras)
			assert.Equal(t, tt.wantEnd, ended)
			assert.Equal(t, tt.wantResult, res)
		})
	}
}

func TestTraverseFindsFirstKeyAboveThreshold(t *testing.T) {
	tc := newTestContext(t, "TestTraverseFindsFirstKeyAboveThreshold")
	a := eightLeaves(&tc)

	key, ended, err := Traverse(&a.Dict, func(key cell.Bitstring, value *cell.Slice) (TraverseStep, string, error) {
		if value == nil {
			return VisitZeroOne, "", nil
		}
		if tc.ReadU64(*value) >= 5 {
			return VisitEnd, key.String(), nil
		}
		return VisitZeroOne, "", nil
	})
	require.NoError(t, err)
	assert.True(t, ended)
	assert.Equal(t, "00000101", key)

	empty, err := New(8)
	require.NoError(t, err)
	_, ended, err = Traverse(&empty, func(cell.Bitstring, *cell.Slice) (TraverseStep, int, error) {
		return VisitEnd, 1, nil
	})
	require.NoError(t, err)
	assert.False(t, ended)
}
