package seal

import (
	"crypto"
	"errors"
	"fmt"

	"github.com/datatrails/go-datatrails-common/cbor"
	dtcose "github.com/datatrails/go-datatrails-common/cose"
	"github.com/forestrie/go-celldict/hashmap"
	"github.com/veraison/go-cose"
)

var (
	ErrRootMismatch     = errors.New("seal: dictionary does not match the signed state")
	ErrSealVerifyFailed = errors.New("seal: signature verification failed")
)

type publicKeyProvider interface {
	PublicKey() (crypto.PublicKey, cose.Algorithm, error)
}

// DecodeSignedRoot decodes the RootState values from the signed message.
// The returned state has no root and will not verify until one is supplied.
func DecodeSignedRoot(
	codec cbor.CBORCodec, msg []byte,
) (*dtcose.CoseSign1Message, RootState, error) {
	signed, err := dtcose.NewCoseSign1MessageFromCBOR(msg, newDecOptions()...)
	if err != nil {
		return nil, RootState{}, err
	}

	var unverifiedState RootState
	err = codec.UnmarshalInto(signed.Payload, &unverifiedState)
	if err != nil {
		return nil, RootState{}, err
	}
	return signed, unverifiedState, nil
}

// VerifySignedRoot applies the provided state to the signed message and
// verifies the result.
func VerifySignedRoot(
	codec cbor.CBORCodec, keyProvider publicKeyProvider, signed *dtcose.CoseSign1Message, unverifiedState RootState, external []byte) error {

	var err error
	signed.Payload, err = codec.MarshalCBOR(unverifiedState)
	if err != nil {
		return err
	}
	if err = signed.VerifyWithProvider(keyProvider, external); err != nil {
		return fmt.Errorf("%w: %w", ErrSealVerifyFailed, err)
	}
	return nil
}

// VerifyDict checks that the signed message commits to d. The root is taken
// from d; the key length and entry count must match the signed state. The
// public key is the one carried in the message's CWT confirmation claim.
func VerifyDict(codec cbor.CBORCodec, msg []byte, d *hashmap.Dict, external []byte) (RootState, error) {
	signed, state, err := DecodeSignedRoot(codec, msg)
	if err != nil {
		return RootState{}, err
	}
	if state.KeyBits != uint32(d.KeyBitLen()) {
		return RootState{}, fmt.Errorf("%w: key bits %d, dictionary has %d", ErrRootMismatch, state.KeyBits, d.KeyBitLen())
	}
	count, err := d.Len()
	if err != nil {
		return RootState{}, err
	}
	if state.Count != uint64(count) {
		return RootState{}, fmt.Errorf("%w: count %d, dictionary has %d", ErrRootMismatch, state.Count, count)
	}

	root := d.RootHash()
	state.Root = root[:]
	err = VerifySignedRoot(codec, dtcose.NewCWTPublicKeyProvider(signed), signed, state, external)
	if err != nil {
		return RootState{}, fmt.Errorf("%w: %w", ErrRootMismatch, err)
	}
	return state, nil
}
