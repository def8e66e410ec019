package dicttesting

import (
	"math/rand"
	"testing"

	"github.com/datatrails/go-datatrails-common/logger"
	"github.com/forestrie/go-celldict/cell"
	"github.com/stretchr/testify/require"
)

type TestContext struct {
	Log  logger.Logger
	Rand *rand.Rand
	T    *testing.T
}

type TestConfig struct {
	// Seed for the generated keys and values. It is normal to force it to some
	// fixed value so that the generated data is the same from run to run.
	Seed            int64
	TestLabelPrefix string
}

func NewTestContext(t *testing.T, cfg TestConfig) TestContext {
	logger.New("NOOP")
	return TestContext{
		T:    t,
		Log:  logger.Sugar.WithServiceName(cfg.TestLabelPrefix),
		Rand: rand.New(rand.NewSource(cfg.Seed)),
	}
}

func (c *TestContext) GetLog() logger.Logger { return c.Log }

// Key returns v as a bitLen-bit key.
func Key(v uint64, bitLen int) cell.Bitstring {
	return cell.BitsFromUint(v, bitLen)
}

// Bits parses a literal bit string such as "1100_0011".
func Bits(s string) cell.Bitstring { return cell.MustParseBits(s) }

// U64 returns a value slice holding v as 64 bits.
func (c *TestContext) U64(v uint64) cell.Slice {
	return c.valueOf(cell.BitsFromUint(v, 64))
}

// U8 returns a value slice holding v as 8 bits.
func (c *TestContext) U8(v uint8) cell.Slice {
	return c.valueOf(cell.BitsFromUint(uint64(v), 8))
}

func (c *TestContext) valueOf(bits cell.Bitstring) cell.Slice {
	s, err := cell.SliceOfBits(bits)
	require.NoError(c.T, err)
	return s
}

// ReadU64 reads back a value made by U64.
func (c *TestContext) ReadU64(v cell.Slice) uint64 {
	x, err := v.ReadUint(64)
	require.NoError(c.T, err)
	return x
}

// RandomKey returns a uniformly random key of bitLen bits.
func (c *TestContext) RandomKey(bitLen int) cell.Bitstring {
	k := cell.Bitstring{}
	for k.Len() < bitLen {
		n := min(64, bitLen-k.Len())
		k = k.Append(cell.BitsFromUint(c.Rand.Uint64()>>(64-uint(n)), n))
	}
	return k
}

// DistinctKeys returns count distinct random keys of bitLen bits, in the
// order generated.
func (c *TestContext) DistinctKeys(count, bitLen int) []cell.Bitstring {
	seen := map[string]bool{}
	var keys []cell.Bitstring
	for len(keys) < count {
		k := c.RandomKey(bitLen)
		if seen[k.String()] {
			continue
		}
		seen[k.String()] = true
		keys = append(keys, k)
	}
	return keys
}
