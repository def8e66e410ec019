package snapshot

import (
	"testing"

	"github.com/forestrie/go-celldict/cell"
	"github.com/forestrie/go-celldict/dicttesting"
	"github.com/forestrie/go-celldict/hashmap"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDict(t *testing.T, count, bitLen int) hashmap.Dict {
	tc := dicttesting.NewTestContext(t, dicttesting.TestConfig{Seed: 99, TestLabelPrefix: t.Name()})
	d, err := hashmap.New(bitLen, hashmap.WithLogger(tc.Log))
	require.NoError(t, err)
	for i, k := range tc.DistinctKeys(count, bitLen) {
		_, _, err := d.Set(k, tc.U64(uint64(i)))
		require.NoError(t, err)
	}
	return d
}

// collectHashes lists the hash of every node reachable from c, in a fixed
// walk order.
func collectHashes(t *testing.T, c *cell.Cell) [][cell.HashBytes]byte {
	out := [][cell.HashBytes]byte{c.Hash()}
	for i := 0; i < c.RefCount(); i++ {
		r, err := c.Ref(i)
		require.NoError(t, err)
		out = append(out, collectHashes(t, r)...)
	}
	return out
}

func TestBagRoundTripKeepsEveryNode(t *testing.T) {
	d := testDict(t, 50, 16)
	codec, err := NewCodec()
	require.NoError(t, err)

	data, err := codec.EncodeCells(d.Root())
	require.NoError(t, err)
	roots, err := codec.DecodeCells(data)
	require.NoError(t, err)
	require.Len(t, roots, 1)

	assert.Equal(t, collectHashes(t, d.Root()), collectHashes(t, roots[0]))

	again, err := codec.EncodeCells(roots[0])
	require.NoError(t, err)
	assert.Equal(t, data, again)
}

func TestBagSharesCells(t *testing.T) {
	leaf, err := cell.FromBits(dicttesting.Bits("1010"))
	require.NoError(t, err)
	b := cell.NewBuilder()
	require.NoError(t, b.AppendRef(leaf))
	require.NoError(t, b.AppendRef(leaf))
	parent, err := b.Finalize()
	require.NoError(t, err)

	bag, err := NewBag(parent, leaf)
	require.NoError(t, err)
	assert.Len(t, bag.Cells, 2)
	assert.Equal(t, []uint32{1, 0}, bag.Roots)
}

func TestBagRejectsTampering(t *testing.T) {
	d := testDict(t, 5, 8)
	bag, err := NewBag(d.Root())
	require.NoError(t, err)

	tampered := bag
	tampered.Cells = append([]cellRecord(nil), bag.Cells...)
	tampered.Cells[0].Hash = make([]byte, cell.HashBytes)
	_, err = tampered.RootCells()
	require.ErrorIs(t, err, ErrHashMismatch)

	forward := bag
	forward.Cells = append([]cellRecord(nil), bag.Cells...)
	last := len(forward.Cells) - 1
	forward.Cells[0] = forward.Cells[last]
	_, err = forward.RootCells()
	require.ErrorIs(t, err, ErrBadBag)

	codec, err := NewCodec()
	require.NoError(t, err)
	_, err = codec.DecodeCells([]byte{0xff, 0x00})
	require.ErrorIs(t, err, ErrBadBag)
}
