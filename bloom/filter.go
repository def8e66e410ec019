package bloom

import (
	"crypto/sha256"

	"github.com/forestrie/go-celldict/cell"
)

const bloomDomainV1 = 0xB1

// NewV1 allocates and initializes a region sized for keyCount keys.
func NewV1(keyCount uint64, bitsPerKey uint64, k uint8) ([]byte, error) {
	mBits := MBitsV1(keyCount, bitsPerKey)
	if mBits == 0 {
		if bitsPerKey == 0 {
			return nil, ErrBadMBits
		}
		return nil, ErrMBitsOverflow
	}
	region := make([]byte, RegionBytesV1(mBits))
	return region, EncodeHeaderV1(region, HeaderV1{
		BitOrder: BitOrderLSB0,
		K:        k,
		MBits:    mBits,
	})
}

// InitV1 initializes region in place. region must hold at least
// RegionBytesV1(MBitsV1(keyCount, bitsPerKey)) bytes.
func InitV1(region []byte, keyCount uint64, bitsPerKey uint64, k uint8) error {
	mBits := MBitsV1(keyCount, bitsPerKey)
	if mBits == 0 {
		if bitsPerKey == 0 {
			return ErrBadMBits
		}
		return ErrMBitsOverflow
	}
	need := RegionBytesV1(mBits)
	if uint64(len(region)) < need {
		return ErrBadRegionSize
	}

	// Ensure clean initialization even if region is reused.
	clear(region[:need])

	return EncodeHeaderV1(region, HeaderV1{
		BitOrder: BitOrderLSB0,
		K:        k,
		MBits:    mBits,
	})
}

func bitset(region []byte) (HeaderV1, []byte, error) {
	h, ok, err := DecodeHeaderV1(region)
	if err != nil {
		return HeaderV1{}, nil, err
	}
	if !ok {
		return HeaderV1{}, nil, ErrNotInitialized
	}
	return h, region[HeaderBytesV1 : uint64(HeaderBytesV1)+uint64(BitsetBytesV1(h.MBits))], nil
}

// InsertV1 adds key to the filter and increments NInserted in the header.
func InsertV1(region []byte, key cell.Bitstring) error {
	if key.Len() > MaxKeyBits {
		return ErrBadKeySize
	}
	h, bits, err := bitset(region)
	if err != nil {
		return err
	}

	h1, h2 := hashPairV1(key)
	setBitsLSB0(bits, uint64(h.MBits), h.K, h1, h2)

	h.NInserted++
	return EncodeHeaderV1(region, h)
}

// MaybeContainsV1 checks membership for key.
//
// Returns (false,nil) if the filter says "definitely not present".
// Returns (true,nil) if the filter says "maybe present".
func MaybeContainsV1(region []byte, key cell.Bitstring) (bool, error) {
	if key.Len() > MaxKeyBits {
		return false, ErrBadKeySize
	}
	h, bits, err := bitset(region)
	if err != nil {
		return false, err
	}

	h1, h2 := hashPairV1(key)
	return testBitsLSB0(bits, uint64(h.MBits), h.K, h1, h2), nil
}

func hashPairV1(key cell.Bitstring) (h1 uint64, h2 uint64) {
	// SHA-256( 0xB1 || len16 || bits )
	hasher := sha256.New()
	var prefix [3]byte
	prefix[0] = bloomDomainV1
	writeU16BE(prefix[1:], uint16(key.Len()))
	hasher.Write(prefix[:])
	hasher.Write(key.Bytes())
	sum := hasher.Sum(nil)
	h1 = readU64BE(sum[0:8])
	h2 = readU64BE(sum[8:16])
	if h2 == 0 {
		h2 = 1
	}
	return h1, h2
}

func setBitsLSB0(bitset []byte, mBits uint64, k uint8, h1, h2 uint64) {
	for i := uint64(0); i < uint64(k); i++ {
		j := (h1 + i*h2) % mBits
		bitset[j>>3] |= 1 << uint8(j&7)
	}
}

func testBitsLSB0(bitset []byte, mBits uint64, k uint8, h1, h2 uint64) bool {
	for i := uint64(0); i < uint64(k); i++ {
		j := (h1 + i*h2) % mBits
		if bitset[j>>3]&(1<<uint8(j&7)) == 0 {
			return false
		}
	}
	return true
}
