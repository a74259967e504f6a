package mint_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmto-xyz/dmto-core/crypto"
	"github.com/dmto-xyz/dmto-core/mint"
)

func TestNewKeyset(t *testing.T) {
	ks, err := mint.NewKeyset([]uint64{8, 1, 4, 2})
	require.NoError(t, err)

	require.Equal(t, []uint64{1, 2, 4, 8}, ks.Denominations())
	require.Len(t, ks.ID(), 16)

	for _, amount := range ks.Denominations() {
		priv, ok := ks.PrivateKey(amount)
		require.True(t, ok)
		pub, ok := ks.PublicKey(amount)
		require.True(t, ok)
		require.True(t, priv.PubKey().IsEqual(pub))
	}

	_, ok := ks.PrivateKey(3)
	require.False(t, ok)
}

func TestNewKeysetRejectsBadDenominations(t *testing.T) {
	_, err := mint.NewKeyset(nil)
	require.Error(t, err)

	_, err = mint.NewKeyset([]uint64{1, 0})
	require.Error(t, err)

	_, err = mint.NewKeyset([]uint64{2, 2})
	require.Error(t, err)
}

func TestKeysetIDTracksKeys(t *testing.T) {
	a, err := mint.NewKeyset([]uint64{1, 2})
	require.NoError(t, err)
	b, err := mint.NewKeyset([]uint64{1, 2})
	require.NoError(t, err)

	// Independent keysets get distinct IDs.
	require.NotEqual(t, a.ID(), b.ID())
}

func TestNewKeysetFromHexRoundTrip(t *testing.T) {
	priv1, _, err := crypto.GenerateKeyPair()
	require.NoError(t, err)
	priv2, _, err := crypto.GenerateKeyPair()
	require.NoError(t, err)

	keyHex := map[uint64]string{
		1: crypto.ScalarToHex(&priv1.Key),
		2: crypto.ScalarToHex(&priv2.Key),
	}

	ks, err := mint.NewKeysetFromHex(keyHex)
	require.NoError(t, err)

	pub, ok := ks.PublicKey(1)
	require.True(t, ok)
	require.True(t, priv1.PubKey().IsEqual(pub))

	// Restoring the same keys yields the same keyset ID.
	again, err := mint.NewKeysetFromHex(keyHex)
	require.NoError(t, err)
	require.Equal(t, ks.ID(), again.ID())

	_, err = mint.NewKeysetFromHex(map[uint64]string{1: "not hex"})
	require.Error(t, err)
}
