package bloom

// MBitsV1 returns the bitset size for keyCount keys at bitsPerKey, or 0 if it
// does not fit in 32 bits. An empty dictionary still gets a one byte bitset.
func MBitsV1(keyCount uint64, bitsPerKey uint64) uint32 {
	if bitsPerKey == 0 {
		return 0
	}
	if keyCount == 0 {
		keyCount = 1
	}
	if keyCount > uint64(^uint32(0))/bitsPerKey {
		return 0
	}
	return uint32(keyCount * bitsPerKey)
}

// BitsetBytesV1 returns ceil(mBits/8).
func BitsetBytesV1(mBits uint32) uint32 {
	return uint32((uint64(mBits) + 7) / 8)
}

// RegionBytesV1 returns HeaderBytesV1 + ceil(mBits/8).
func RegionBytesV1(mBits uint32) uint64 {
	return uint64(HeaderBytesV1) + uint64(BitsetBytesV1(mBits))
}
