package bloom

/*

# Key prefilter for stored dictionaries

A Bloom filter over the keys of a dictionary lets a reader rule out a key
without rebuilding the dictionary's cells. The filter is written alongside a
snapshot and consulted before the snapshot is loaded.

- If the filter says "definitely not present", the key is not in the dictionary.
- If the filter says "maybe present", it may or may not be (false positives are
  possible).

The filter is NOT a commitment and proves nothing about absence. It is only an
I/O optimization.

## Layout

	+----------------------+  16B header (magic, version, params)
	| HeaderV1             |
	+----------------------+  ceil(mBits/8) bytes
	| bitset               |
	+----------------------+

Keys are bit strings of any length up to 1023 bits. The element hashed for a
key is its big-endian 16 bit length followed by its bits packed MSB-first, so
"0" and "00" are distinct elements.

Bit j of the bitset is bit (j & 7) of byte (j >> 3), least significant first.
The k probe positions are derived by double hashing from SHA-256.

## API versioning

Functions carry a format version suffix (InitV1, InsertV1, MaybeContainsV1).
A V2 may be introduced side by side without breaking persisted filters.

*/
