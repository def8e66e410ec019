package hashmap

/*

# Compressed binary trie dictionaries over cells

This package implements the TL-B `Hashmap`/`HashmapE` dictionary and its
augmented variant `HashmapAugE` on top of the immutable cells provided by the
cell package.

Keys are fixed-length bit strings. Every node of the trie is one cell:

	leaf:      label ‖ value                   (value references follow)
	fork:      label ‖ ^left ‖ ^right
	aug leaf:  label ‖ extra ‖ value
	aug fork:  label ‖ extra ‖ ^left ‖ ^right

A node at a position with n remaining key bits is a leaf exactly when its
label is n bits long. Otherwise, after the label comes one implicit branch bit
per child and each child holds n - len(label) - 1 key bits.

## Labels

Labels are written in whichever of the three `HmLabel` encodings is shortest:

	hml_short$0  unary(n) bits      cost 2n+2
	hml_long$10  n:k bits           cost 2+k+n
	hml_same$11  v:1 n:k            cost 3+k

where k = ceil(log2(max+1)) and max is the number of remaining key bits. On a
tie the order of preference is same, short, long. The encoding is therefore
canonical, and two dictionaries holding the same entries have the same root
hash regardless of the order in which entries were added.

## Persistence

A Dict is a small value: copying it takes a snapshot. Mutating methods build
new cells for the path they touch, reuse every untouched subtree by
reference, and install the new root only once the whole operation has
succeeded. Every newly built cell passes through the configured Meter exactly
once.

## Augmentation

An AugDict carries an Augmenter that derives an extra value for every leaf and
combines the extras of the two children of every fork. The root extra is the
aggregate over the whole dictionary and does not depend on insertion order.

*/
