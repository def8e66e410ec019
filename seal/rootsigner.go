package seal

import (
	"crypto/ecdsa"
	"crypto/rand"
	"time"

	dtcbor "github.com/datatrails/go-datatrails-common/cbor"
	dtcose "github.com/datatrails/go-datatrails-common/cose"
	"github.com/forestrie/go-celldict/hashmap"
	"github.com/veraison/go-cose"
)

// RootState defines the details we include in a signed commitment to a
// dictionary.
type RootState struct {
	// KeyBits fixes the key space; the same root under a different key
	// length is a different dictionary.
	KeyBits uint32 `cbor:"1,keyasint"`
	// Root is the hash of the root node, all zeros for the empty dictionary.
	Root []byte `cbor:"2,keyasint"`
	// Count is the number of entries.
	Count uint64 `cbor:"3,keyasint"`
	// Timestamp is the unix time (milliseconds) read at the time the root was
	// signed. Including it allows for the same root to be re-signed.
	Timestamp int64 `cbor:"4,keyasint"`
}

// NewRootState reads the state of d to be signed.
func NewRootState(d *hashmap.Dict) (RootState, error) {
	count, err := d.Len()
	if err != nil {
		return RootState{}, err
	}
	root := d.RootHash()
	return RootState{
		KeyBits:   uint32(d.KeyBitLen()),
		Root:      root[:],
		Count:     uint64(count),
		Timestamp: time.Now().UnixMilli(),
	}, nil
}

// RootSigner is used to produce a signature over a dictionary root state.
type RootSigner struct {
	issuer    string
	cborCodec dtcbor.CBORCodec
}

func NewRootSigner(issuer string, cborCodec dtcbor.CBORCodec) RootSigner {
	return RootSigner{
		issuer:    issuer,
		cborCodec: cborCodec,
	}
}

// Sign1 signs the provided state. The published message has the root removed,
// so a verifier must supply it from the dictionary it holds.
func (rs RootSigner) Sign1(coseSigner cose.Signer, keyIdentifier string, publicKey *ecdsa.PublicKey, subject string, state RootState, external []byte) ([]byte, error) {
	payload, err := rs.cborCodec.MarshalCBOR(state)
	if err != nil {
		return nil, err
	}

	coseHeaders := cose.Headers{
		Protected: cose.ProtectedHeader{
			cose.HeaderLabelAlgorithm:   coseSigner.Algorithm(),
			dtcose.HeaderLabelCWTClaims: dtcose.NewCNFClaim(
				rs.issuer, subject, keyIdentifier, coseSigner.Algorithm(), *publicKey),
		},
	}

	msg := cose.Sign1Message{
		Headers: coseHeaders,
		Payload: payload,
	}
	err = msg.Sign(rand.Reader, external, coseSigner)
	if err != nil {
		return nil, err
	}

	state.Root = nil
	payload, err = rs.cborCodec.MarshalCBOR(state)
	if err != nil {
		return nil, err
	}
	msg.Payload = payload

	return msg.MarshalCBOR()
}

// SignDict signs the current state of d.
func (rs RootSigner) SignDict(coseSigner cose.Signer, keyIdentifier string, publicKey *ecdsa.PublicKey, subject string, d *hashmap.Dict, external []byte) ([]byte, error) {
	state, err := NewRootState(d)
	if err != nil {
		return nil, err
	}
	return rs.Sign1(coseSigner, keyIdentifier, publicKey, subject, state, external)
}

func NewRootSignerCodec() (dtcbor.CBORCodec, error) {
	codec, err := dtcbor.NewCBORCodec(
		dtcbor.NewDeterministicEncOpts(),
		dtcbor.NewDeterministicDecOpts(), // unsigned int decodes to uint64
	)
	if err != nil {
		return dtcbor.CBORCodec{}, err
	}
	return codec, nil
}

func newDecOptions() []dtcose.SignOption {
	return []dtcose.SignOption{dtcose.WithDecOptions(dtcbor.NewDeterministicDecOpts())}
}
