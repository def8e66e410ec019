package bloom

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSizingV1(t *testing.T) {
	mBits := MBitsV1(1, 10)
	require.Equal(t, uint32(10), mBits)
	require.Equal(t, uint32(2), BitsetBytesV1(mBits))
	require.Equal(t, uint64(HeaderBytesV1+2), RegionBytesV1(mBits))

	mBits = MBitsV1(8, 8)
	require.Equal(t, uint32(64), mBits)
	require.Equal(t, uint64(HeaderBytesV1+8), RegionBytesV1(mBits))

	// the empty dictionary is sized as one key
	require.Equal(t, uint32(10), MBitsV1(0, 10))
}

func TestSizingV1_Overflow(t *testing.T) {
	require.Equal(t, uint32(0), MBitsV1(1, 0))
	require.Equal(t, uint32(0), MBitsV1(uint64(^uint32(0)), 2))
	require.Equal(t, ^uint32(0), MBitsV1(uint64(^uint32(0)), 1))
	require.Equal(t, uint32(1<<29), BitsetBytesV1(^uint32(0)))
}
