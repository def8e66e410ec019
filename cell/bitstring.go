package cell

import (
	"fmt"
	"strings"
)

// Bitstring is an immutable MSB-first sequence of bits.
//
// The zero value is the empty bitstring. Operations never modify the receiver;
// they return new values that do not alias the receiver's storage.
type Bitstring struct {
	data []byte
	n    int
}

// BitsFromBytes returns the first n bits of data as a Bitstring.
func BitsFromBytes(data []byte, n int) (Bitstring, error) {
	if n < 0 || n > len(data)*8 {
		return Bitstring{}, ErrBadBitLength
	}
	out := make([]byte, byteLen(n))
	copy(out, data)
	if n%8 != 0 {
		out[len(out)-1] &= ^byte(0) << (8 - uint(n%8))
	}
	return Bitstring{data: out, n: n}, nil
}

// BitsFromUint returns the n low bits of v, most significant first.
// n must be in [0, 64].
func BitsFromUint(v uint64, n int) Bitstring {
	if n < 0 || n > 64 {
		panic("cell: BitsFromUint width out of range")
	}
	out := make([]byte, byteLen(n))
	for i := 0; i < n; i++ {
		setBit(out, i, uint8(v>>(uint(n-1-i)))&1)
	}
	return Bitstring{data: out, n: n}
}

// ParseBits parses a string of '0' and '1' characters. Underscores are ignored
// so long keys can be grouped for readability.
func ParseBits(s string) (Bitstring, error) {
	s = strings.ReplaceAll(s, "_", "")
	out := make([]byte, byteLen(len(s)))
	for i, r := range s {
		switch r {
		case '0':
		case '1':
			setBit(out, i, 1)
		default:
			return Bitstring{}, fmt.Errorf("%w: %q", ErrBadBitString, s)
		}
	}
	return Bitstring{data: out, n: len(s)}, nil
}

// MustParseBits is ParseBits for literals known to be valid.
func MustParseBits(s string) Bitstring {
	b, err := ParseBits(s)
	if err != nil {
		panic(err)
	}
	return b
}

// Repeat returns n copies of bit.
func Repeat(bit uint8, n int) Bitstring {
	out := make([]byte, byteLen(n))
	if bit != 0 {
		for i := 0; i < n; i++ {
			setBit(out, i, 1)
		}
	}
	return Bitstring{data: out, n: n}
}

// Len returns the number of bits.
func (b Bitstring) Len() int { return b.n }

// IsEmpty reports whether b has no bits.
func (b Bitstring) IsEmpty() bool { return b.n == 0 }

// Bit returns bit i. It panics if i is out of range.
func (b Bitstring) Bit(i int) uint8 {
	if i < 0 || i >= b.n {
		panic("cell: bit index out of range")
	}
	return getBit(b.data, i)
}

// Bytes returns a copy of the bits packed MSB-first; trailing bits of the last
// byte are zero.
func (b Bitstring) Bytes() []byte {
	out := make([]byte, byteLen(b.n))
	copy(out, b.data)
	return out
}

// Uint interprets b as an unsigned big-endian integer. b must be at most 64 bits.
func (b Bitstring) Uint() uint64 {
	if b.n > 64 {
		panic("cell: Uint on bitstring longer than 64 bits")
	}
	var v uint64
	for i := 0; i < b.n; i++ {
		v = v<<1 | uint64(getBit(b.data, i))
	}
	return v
}

// Sub returns bits [from, to).
func (b Bitstring) Sub(from, to int) Bitstring {
	if from < 0 || to > b.n || from > to {
		panic("cell: Sub range out of bounds")
	}
	n := to - from
	out := make([]byte, byteLen(n))
	if from%8 == 0 {
		copy(out, b.data[from/8:])
		if n%8 != 0 {
			out[len(out)-1] &= ^byte(0) << (8 - uint(n%8))
		}
		return Bitstring{data: out, n: n}
	}
	for i := 0; i < n; i++ {
		if getBit(b.data, from+i) != 0 {
			setBit(out, i, 1)
		}
	}
	return Bitstring{data: out, n: n}
}

// Prefix returns the first n bits.
func (b Bitstring) Prefix(n int) Bitstring { return b.Sub(0, n) }

// Suffix returns the bits from index from to the end.
func (b Bitstring) Suffix(from int) Bitstring { return b.Sub(from, b.n) }

// Append returns b followed by o.
func (b Bitstring) Append(o Bitstring) Bitstring {
	n := b.n + o.n
	out := make([]byte, byteLen(n))
	copy(out, b.data[:byteLen(b.n)])
	if b.n%8 == 0 {
		copy(out[b.n/8:], o.data[:byteLen(o.n)])
		return Bitstring{data: out, n: n}
	}
	for i := 0; i < o.n; i++ {
		if getBit(o.data, i) != 0 {
			setBit(out, b.n+i, 1)
		}
	}
	return Bitstring{data: out, n: n}
}

// AppendBit returns b followed by a single bit.
func (b Bitstring) AppendBit(bit uint8) Bitstring {
	out := make([]byte, byteLen(b.n+1))
	copy(out, b.data[:byteLen(b.n)])
	if bit != 0 {
		setBit(out, b.n, 1)
	}
	return Bitstring{data: out, n: b.n + 1}
}

// Equal reports whether b and o hold the same bits.
func (b Bitstring) Equal(o Bitstring) bool {
	if b.n != o.n {
		return false
	}
	full := b.n / 8
	for i := 0; i < full; i++ {
		if b.data[i] != o.data[i] {
			return false
		}
	}
	for i := full * 8; i < b.n; i++ {
		if getBit(b.data, i) != getBit(o.data, i) {
			return false
		}
	}
	return true
}

// CommonPrefixLen returns the length of the longest common prefix of b and o.
func (b Bitstring) CommonPrefixLen(o Bitstring) int {
	n := min(b.n, o.n)
	i := 0
	for ; i+8 <= n && b.data[i/8] == o.data[i/8]; i += 8 {
	}
	for ; i < n; i++ {
		if getBit(b.data, i) != getBit(o.data, i) {
			return i
		}
	}
	return n
}

// HasPrefix reports whether p is a prefix of b.
func (b Bitstring) HasPrefix(p Bitstring) bool {
	return p.n <= b.n && b.CommonPrefixLen(p) == p.n
}

// Same reports whether every bit of b equals the returned bit. The empty
// bitstring reports (0, true).
func (b Bitstring) Same() (uint8, bool) {
	if b.n == 0 {
		return 0, true
	}
	first := getBit(b.data, 0)
	for i := 1; i < b.n; i++ {
		if getBit(b.data, i) != first {
			return 0, false
		}
	}
	return first, true
}

// Compare orders bitstrings lexicographically, a proper prefix first.
func (b Bitstring) Compare(o Bitstring) int {
	cp := b.CommonPrefixLen(o)
	switch {
	case cp < b.n && cp < o.n:
		if getBit(b.data, cp) < getBit(o.data, cp) {
			return -1
		}
		return 1
	case b.n < o.n:
		return -1
	case b.n > o.n:
		return 1
	}
	return 0
}

// String renders the bits as '0'/'1' characters.
func (b Bitstring) String() string {
	var sb strings.Builder
	sb.Grow(b.n)
	for i := 0; i < b.n; i++ {
		sb.WriteByte('0' + getBit(b.data, i))
	}
	return sb.String()
}
