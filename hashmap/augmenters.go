package hashmap

import (
	"fmt"
	"math"

	"github.com/forestrie/go-celldict/cell"
)

// SumAugmenter keeps the 64-bit sum of the leading uint64 of every value.
type SumAugmenter struct{}

var _ Augmenter[uint64] = SumAugmenter{}

func (SumAugmenter) Zero() uint64 { return 0 }

func (SumAugmenter) Combine(a, b uint64) (uint64, error) {
	if a > math.MaxUint64-b {
		return 0, fmt.Errorf("hashmap: sum extra overflows: %d + %d", a, b)
	}
	return a + b, nil
}

func (SumAugmenter) FromValue(v cell.Slice) (uint64, error) {
	return v.ReadUint(64)
}

func (SumAugmenter) Store(b *cell.Builder, y uint64) error { return b.AppendUint(y, 64) }

func (SumAugmenter) Load(s *cell.Slice) (uint64, error) { return s.ReadUint(64) }

// MaxAugmenter keeps the largest leading byte of any value.
type MaxAugmenter struct{}

var _ Augmenter[uint8] = MaxAugmenter{}

func (MaxAugmenter) Zero() uint8 { return 0 }

func (MaxAugmenter) Combine(a, b uint8) (uint8, error) { return max(a, b), nil }

func (MaxAugmenter) FromValue(v cell.Slice) (uint8, error) {
	x, err := v.ReadUint(8)
	return uint8(x), err
}

func (MaxAugmenter) Store(b *cell.Builder, y uint8) error { return b.AppendUint(uint64(y), 8) }

func (MaxAugmenter) Load(s *cell.Slice) (uint8, error) {
	x, err := s.ReadUint(8)
	return uint8(x), err
}
