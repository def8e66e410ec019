package hashmap

import (
	"fmt"
	"math/bits"

	"github.com/forestrie/go-celldict/cell"
)

// labelLenBits is the width k of the length field of the long and same label
// encodings: ceil(log2(max+1)).
func labelLenBits(max int) int {
	return bits.Len(uint(max))
}

type labelKind uint8

const (
	labelShort labelKind = iota
	labelLong
	labelSame
)

// chooseLabel picks the cheapest encoding for label. Ties prefer same, then
// short, then long.
func chooseLabel(label cell.Bitstring, max int) (labelKind, int) {
	n := label.Len()
	k := labelLenBits(max)

	kind, cost := labelSame, -1
	if _, ok := label.Same(); ok {
		cost = 3 + k
	}
	if short := 2*n + 2; cost < 0 || short < cost {
		kind, cost = labelShort, short
	}
	if long := 2 + k + n; long < cost {
		kind, cost = labelLong, long
	}
	return kind, cost
}

// LabelCost returns the number of bits the canonical encoding of label takes
// when max key bits remain.
func LabelCost(label cell.Bitstring, max int) int {
	_, cost := chooseLabel(label, max)
	return cost
}

// EncodeLabel appends the canonical encoding of label to b.
func EncodeLabel(b *cell.Builder, label cell.Bitstring, max int) error {
	n := label.Len()
	if n > max {
		return fmt.Errorf("%w: label of %d bits exceeds %d", ErrMalformedLabel, n, max)
	}
	kind, cost := chooseLabel(label, max)
	if b.Bits()+cost > cell.MaxDataBits {
		return fmt.Errorf("%w: label needs %d bits", cell.ErrCellOverflow, cost)
	}

	k := labelLenBits(max)
	var err error
	switch kind {
	case labelSame:
		v, _ := label.Same()
		err = b.AppendUint(0b110|uint64(v), 3)
		if err == nil {
			err = b.AppendUint(uint64(n), k)
		}
	case labelShort:
		err = b.AppendBit(0)
		if err == nil {
			err = b.AppendBits(cell.Repeat(1, n).AppendBit(0))
		}
		if err == nil {
			err = b.AppendBits(label)
		}
	case labelLong:
		err = b.AppendUint(0b10, 2)
		if err == nil {
			err = b.AppendUint(uint64(n), k)
		}
		if err == nil {
			err = b.AppendBits(label)
		}
	}
	return err
}

// DecodeLabel reads a label from s. The decoded length is bounded by max.
func DecodeLabel(s *cell.Slice, max int) (cell.Bitstring, error) {
	label, err := decodeLabel(s, max)
	if err != nil {
		return cell.Bitstring{}, fmt.Errorf("%w: %w", ErrMalformedLabel, err)
	}
	return label, nil
}

func decodeLabel(s *cell.Slice, max int) (cell.Bitstring, error) {
	tag, err := s.ReadBit()
	if err != nil {
		return cell.Bitstring{}, err
	}
	if tag == 0 {
		// hml_short: unary length, terminated by a zero bit
		n := 0
		for {
			bit, err := s.ReadBit()
			if err != nil {
				return cell.Bitstring{}, err
			}
			if bit == 0 {
				break
			}
			n++
			if n > max {
				return cell.Bitstring{}, fmt.Errorf("short label longer than %d", max)
			}
		}
		return s.ReadBits(n)
	}

	tag, err = s.ReadBit()
	if err != nil {
		return cell.Bitstring{}, err
	}
	k := labelLenBits(max)
	if tag == 0 {
		// hml_long
		n, err := s.ReadUint(k)
		if err != nil {
			return cell.Bitstring{}, err
		}
		if n > uint64(max) {
			return cell.Bitstring{}, fmt.Errorf("long label length %d exceeds %d", n, max)
		}
		return s.ReadBits(int(n))
	}

	// hml_same
	v, err := s.ReadBit()
	if err != nil {
		return cell.Bitstring{}, err
	}
	n, err := s.ReadUint(k)
	if err != nil {
		return cell.Bitstring{}, err
	}
	if n > uint64(max) {
		return cell.Bitstring{}, fmt.Errorf("same label length %d exceeds %d", n, max)
	}
	return cell.Repeat(v, int(n)), nil
}
