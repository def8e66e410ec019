// Package seal signs and verifies commitments to a dictionary root.
//
// A signed root is a COSE Sign1 message whose payload is the CBOR encoded
// RootState. The root hash is removed from the published payload, so a
// verifier has to recompute it from the dictionary it holds before the
// signature will check.
package seal
