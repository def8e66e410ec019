package cell

import (
	"encoding/binary"
	"hash"
)

// HashWriteUint16 writes a uint16 to a hasher in big-endian layout.
func HashWriteUint16(hasher hash.Hash, value uint16) {
	var b [2]byte
	binary.BigEndian.PutUint16(b[:], value)
	_, _ = hasher.Write(b[:])
}

func byteLen(bits int) int { return (bits + 7) / 8 }

// getBit returns bit i (MSB-first) of data.
func getBit(data []byte, i int) uint8 {
	return (data[i>>3] >> (7 - uint(i&7))) & 1
}

// setBit sets bit i (MSB-first) of data to bit. data must be large enough.
func setBit(data []byte, i int, bit uint8) {
	mask := byte(1) << (7 - uint(i&7))
	if bit != 0 {
		data[i>>3] |= mask
	} else {
		data[i>>3] &^= mask
	}
}
