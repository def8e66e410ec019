package seal

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"testing"

	"github.com/datatrails/go-datatrails-common/azkeys"
	dtcose "github.com/datatrails/go-datatrails-common/cose"
	"github.com/datatrails/go-datatrails-common/logger"
	"github.com/forestrie/go-celldict/cell"
	"github.com/forestrie/go-celldict/dicttesting"
	"github.com/forestrie/go-celldict/hashmap"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testGenerateECKey(t *testing.T, curve elliptic.Curve) ecdsa.PrivateKey {
	privateKey, err := ecdsa.GenerateKey(curve, rand.Reader)
	require.NoError(t, err)
	return *privateKey
}

func testNewRootSigner(t *testing.T, issuer string) RootSigner {
	cborCodec, err := NewRootSignerCodec()
	require.NoError(t, err)
	return NewRootSigner(issuer, cborCodec)
}

func testDict(t *testing.T, keys ...uint64) hashmap.Dict {
	tc := dicttesting.NewTestContext(t, dicttesting.TestConfig{TestLabelPrefix: "seal"})
	d, err := hashmap.New(16, hashmap.WithLogger(tc.GetLog()))
	require.NoError(t, err)
	for _, k := range keys {
		_, _, err = d.Set(dicttesting.Key(k, 16), tc.U64(k*3))
		require.NoError(t, err)
	}
	return d
}

func TestRootSigner_Sign1(t *testing.T) {

	logger.New("TEST")

	type fields struct {
		issuer string
		kid    string
	}
	type args struct {
		subject  string
		state    RootState
		external []byte
	}
	tests := []struct {
		name   string
		fields fields
		args   args
	}{
		{
			name: "common case P-256 & ES256",
			fields: fields{
				issuer: "synsation.org",
				kid:    "dict attestation key 1",
			},
			args: args{
				subject: "celldict-attestor",
				state: RootState{
					KeyBits:   16,
					Root:      []byte{1},
					Count:     1,
					Timestamp: 1234,
				},
			},
		},
		{
			name: "external data",
			fields: fields{
				issuer: "synsation.org",
				kid:    "dict attestation key 2",
			},
			args: args{
				subject: "celldict-attestor",
				state: RootState{
					KeyBits:   32,
					Root:      []byte{1, 2, 3},
					Count:     7,
					Timestamp: 5678,
				},
				external: []byte("context"),
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {

			key := testGenerateECKey(t, elliptic.P256())
			rs := testNewRootSigner(t, tt.fields.issuer)

			coseSigner := azkeys.NewTestCoseSigner(t, key)
			pubKey, err := coseSigner.PublicKey()
			require.NoError(t, err)

			coseMsg, err := rs.Sign1(coseSigner, tt.fields.kid, pubKey, tt.args.subject, tt.args.state, tt.args.external)
			require.NoError(t, err)

			signed, state, err := DecodeSignedRoot(rs.cborCodec, coseMsg)
			require.NoError(t, err)
			assert.Nil(t, state.Root)
			assert.Equal(t, tt.args.state.Count, state.Count)

			// the root is detached, so verification must fail until it is restored
			err = VerifySignedRoot(
				rs.cborCodec,
				dtcose.NewCWTPublicKeyProvider(signed),
				signed, state, tt.args.external,
			)
			assert.ErrorIs(t, err, ErrSealVerifyFailed)

			state.Root = tt.args.state.Root
			err = VerifySignedRoot(
				rs.cborCodec,
				dtcose.NewCWTPublicKeyProvider(signed),
				signed, state, tt.args.external,
			)
			assert.NoError(t, err)
		})
	}
}

func TestVerifyDict(t *testing.T) {
	key := testGenerateECKey(t, elliptic.P256())
	rs := testNewRootSigner(t, "synsation.org")
	coseSigner := azkeys.NewTestCoseSigner(t, key)
	pubKey, err := coseSigner.PublicKey()
	require.NoError(t, err)

	d := testDict(t, 1, 2, 300, 4000)
	msg, err := rs.SignDict(coseSigner, "kid", pubKey, "celldict-attestor", &d, nil)
	require.NoError(t, err)

	state, err := VerifyDict(rs.cborCodec, msg, &d, nil)
	require.NoError(t, err)
	root := d.RootHash()
	assert.Equal(t, root[:], state.Root)
	assert.Equal(t, uint64(4), state.Count)
	assert.Equal(t, uint32(16), state.KeyBits)

	tests := []struct {
		name string
		dict hashmap.Dict
	}{
		{name: "different value", dict: func() hashmap.Dict {
			other := d
			value, err := cell.SliceOfBits(cell.BitsFromUint(1, 64))
			require.NoError(t, err)
			replaced, err := other.Replace(dicttesting.Key(300, 16), value)
			require.NoError(t, err)
			require.True(t, replaced)
			return other
		}()},
		{name: "different count", dict: testDict(t, 1, 2, 300)},
		{name: "different key bits", dict: func() hashmap.Dict {
			other, err := hashmap.New(24)
			require.NoError(t, err)
			return other
		}()},
		{name: "empty", dict: testDict(t)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := VerifyDict(rs.cborCodec, msg, &tt.dict, nil)
			assert.ErrorIs(t, err, ErrRootMismatch)
		})
	}

	// wrong external data
	_, err = VerifyDict(rs.cborCodec, msg, &d, []byte("other"))
	assert.ErrorIs(t, err, ErrSealVerifyFailed)
}

func TestVerifyDictExternalData(t *testing.T) {
	key := testGenerateECKey(t, elliptic.P256())
	rs := testNewRootSigner(t, "synsation.org")
	coseSigner := azkeys.NewTestCoseSigner(t, key)
	pubKey, err := coseSigner.PublicKey()
	require.NoError(t, err)

	d := testDict(t, 9, 99, 999)
	aad := []byte("aad")
	msg, err := rs.SignDict(coseSigner, "kid", pubKey, "celldict-attestor", &d, aad)
	require.NoError(t, err)

	state, err := VerifyDict(rs.cborCodec, msg, &d, aad)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), state.Count)

	_, err = VerifyDict(rs.cborCodec, msg, &d, nil)
	assert.ErrorIs(t, err, ErrSealVerifyFailed)
}

func TestNewRootStateEmpty(t *testing.T) {
	d := testDict(t)
	state, err := NewRootState(&d)
	require.NoError(t, err)
	assert.Equal(t, make([]byte, 32), state.Root)
	assert.Equal(t, uint64(0), state.Count)
}
