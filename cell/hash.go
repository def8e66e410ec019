package cell

import "crypto/sha256"

// HashCell computes the content hash of a cell with the given data and refs:
//
//	H( refCount_u8 || descriptor_u8 || paddedData || depth_be2(ref_i)... || hash(ref_i)... )
func HashCell(data []byte, bits int, refs []*Cell) [HashBytes]byte {
	hasher := sha256.New()
	full := bits / 8
	_, _ = hasher.Write([]byte{byte(len(refs)), byte(full + byteLen(bits))})
	_, _ = hasher.Write(data[:full])
	if rem := bits % 8; rem != 0 {
		last := data[full] & (^byte(0) << (8 - uint(rem)))
		last |= 1 << (7 - uint(rem))
		_, _ = hasher.Write([]byte{last})
	}
	for _, r := range refs {
		HashWriteUint16(hasher, r.depth)
	}
	for _, r := range refs {
		_, _ = hasher.Write(r.hash[:])
	}

	var out [HashBytes]byte
	copy(out[:], hasher.Sum(nil))
	return out
}
