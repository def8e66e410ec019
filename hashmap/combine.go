package hashmap

import (
	"fmt"

	"github.com/forestrie/go-celldict/cell"
)

// CombinePolicy decides what happens to keys present in both dictionaries.
type CombinePolicy uint8

const (
	// CombineOtherWins overwrites the receiver's value with the other's.
	CombineOtherWins CombinePolicy = iota
	// CombineKeepSelf keeps the receiver's value.
	CombineKeepSelf
	// CombineFailOnConflict fails with ErrCombineConflict when a key holds
	// different values on the two sides.
	CombineFailOnConflict
)

// CombineWith adds every entry of other to d. Keys holding equal values on
// both sides are never conflicts. On error d is unchanged.
func (d *Dict) CombineWith(other *Dict, policy CombinePolicy) error {
	res := *d
	_, err := d.scanDiff(other, func(key cell.Bitstring, a, b *node) (bool, error) {
		if b == nil {
			return true, nil
		}
		if a != nil {
			switch policy {
			case CombineKeepSelf:
				return true, nil
			case CombineFailOnConflict:
				return false, fmt.Errorf("%w: key %s", ErrCombineConflict, key)
			}
		}
		_, _, err := res.set(key, b.value, b.extra, ModeSet)
		return err == nil, err
	})
	if err != nil {
		return err
	}
	d.root = res.root
	return nil
}
