// Package snapshot persists dictionaries as CBOR encoded bags of cells.
//
// A bag lists every distinct cell reachable from its roots exactly once,
// children before parents, so references are always to earlier entries.
// Decoding rebuilds each cell and checks it against its recorded hash, which
// makes a decoded dictionary node-for-node identical to the one encoded.
package snapshot
