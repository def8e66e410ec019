package bloom

import (
	"testing"

	"github.com/forestrie/go-celldict/cell"
	"github.com/stretchr/testify/require"
)

func TestBloomV1InsertAndQuery(t *testing.T) {
	k := DefaultK
	region, err := NewV1(128, DefaultBitsPerKey, k)
	require.NoError(t, err)

	h, ok, err := DecodeHeaderV1(region)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, BitOrderLSB0, h.BitOrder)
	require.Equal(t, k, h.K)
	require.Equal(t, uint32(1280), h.MBits)
	require.Equal(t, uint32(0), h.NInserted)

	key := func(v uint64) cell.Bitstring { return cell.BitsFromUint(v, 32) }

	// An empty filter is definitely-not-present for any key.
	ok, err = MaybeContainsV1(region, key(1))
	require.NoError(t, err)
	require.False(t, ok)

	for i := uint64(0); i < 100; i++ {
		require.NoError(t, InsertV1(region, key(i*7919)))
	}
	for i := uint64(0); i < 100; i++ {
		ok, err := MaybeContainsV1(region, key(i*7919))
		require.NoError(t, err)
		require.True(t, ok)
	}

	h, _, err = DecodeHeaderV1(region)
	require.NoError(t, err)
	require.Equal(t, uint32(100), h.NInserted)
}

func TestBloomV1KeyLengthIsPartOfTheElement(t *testing.T) {
	region, err := NewV1(1, 64, 8)
	require.NoError(t, err)
	require.NoError(t, InsertV1(region, cell.MustParseBits("0")))

	ok, err := MaybeContainsV1(region, cell.MustParseBits("0"))
	require.NoError(t, err)
	require.True(t, ok)

	// "00" packs to the same byte as "0"; with 64 bits and one element a
	// collision on all 8 probes is not expected.
	ok, err = MaybeContainsV1(region, cell.MustParseBits("00"))
	require.NoError(t, err)
	require.False(t, ok)
}

func TestBloomV1RejectsBadInputs(t *testing.T) {
	region, err := NewV1(8, 8, 5)
	require.NoError(t, err)

	long := cell.Repeat(1, MaxKeyBits+1)
	require.ErrorIs(t, InsertV1(region, long), ErrBadKeySize)
	_, err = MaybeContainsV1(region, long)
	require.ErrorIs(t, err, ErrBadKeySize)

	_, err = NewV1(8, 0, 5)
	require.ErrorIs(t, err, ErrBadMBits)
	_, err = NewV1(8, 8, 0)
	require.ErrorIs(t, err, ErrBadK)

	// truncated bitset
	_, err = MaybeContainsV1(region[:HeaderBytesV1+2], cell.MustParseBits("1"))
	require.ErrorIs(t, err, ErrBadRegionSize)

	corrupt := append([]byte(nil), region...)
	corrupt[0] = 'X'
	_, err = MaybeContainsV1(corrupt, cell.MustParseBits("1"))
	require.ErrorIs(t, err, ErrBadMagic)
}

func TestBloomV1RejectsUninitializedRegion(t *testing.T) {
	region := make([]byte, RegionBytesV1(MBitsV1(8, 8))) // remains all-zero

	_, err := MaybeContainsV1(region, cell.MustParseBits("1"))
	require.ErrorIs(t, err, ErrNotInitialized)

	err = InsertV1(region, cell.MustParseBits("1"))
	require.ErrorIs(t, err, ErrNotInitialized)

	require.NoError(t, InitV1(region, 8, 8, 5))
	require.NoError(t, InsertV1(region, cell.MustParseBits("1")))
}
