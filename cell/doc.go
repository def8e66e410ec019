package cell

/*

# Cell primitives

This package provides the immutable, content-addressed building blocks the
dictionary engine is written against:

- `Bitstring`: an immutable MSB-first bit sequence (keys, labels)
- `Cell`: up to 1023 data bits plus up to 4 references to other cells
- `Builder`: a write accumulator that finalizes into a new `Cell`
- `Slice`: a read cursor over the remaining bits and references of a `Cell`

Bit index 0 is the most significant bit of the first data byte.

## Content hash

Every cell carries a SHA-256 hash fixed at construction time:

	H( refCount_u8 || descriptor_u8 || paddedData || depth_be2(ref_i)... || hash(ref_i)... )

descriptor is floor(bits/8)+ceil(bits/8). When the bit length is not a
multiple of 8 the data is completed with a single 1 bit followed by zero
bits, so two cells with equal data bytes but different bit lengths never
collide.

Cells are never mutated once built. Two cells with the same hash hold the
same subtree, which is what allows whole subtrees to be shared between
dictionary versions and skipped when diffing.

*/
