package mint_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmto-xyz/dmto-core/crypto"
	"github.com/dmto-xyz/dmto-core/mint"
	"github.com/dmto-xyz/dmto-core/protocol"
	"github.com/dmto-xyz/dmto-core/services"
	"github.com/dmto-xyz/dmto-core/testutil"
)

// blindOutputFull prepares a blinded message for amount and returns the
// secret plus a closure that unblinds the mint's signature into a note.
func blindOutputFull(t *testing.T, amount uint64) (protocol.BlindedMessage, []byte, func(sig protocol.BlindedSignature, ks *mint.Keyset) protocol.Note) {
	t.Helper()

	secret := testutil.GenerateRandomBytes(t, crypto.SecretSize)
	Y, err := crypto.HashToCurve(secret)
	require.NoError(t, err)
	r, err := crypto.GenerateBlindingFactor()
	require.NoError(t, err)
	B_, err := crypto.BlindMessage(Y, r)
	require.NoError(t, err)

	unblind := func(sig protocol.BlindedSignature, ks *mint.Keyset) protocol.Note {
		K, ok := ks.PublicKey(amount)
		require.True(t, ok)
		C_, err := crypto.PointFromHex(sig.C_)
		require.NoError(t, err)
		C, err := crypto.UnblindSignature(C_, r, K)
		require.NoError(t, err)
		return protocol.Note{
			Amount: amount,
			Secret: secret,
			Y:      crypto.PointToHex(Y),
			C:      crypto.PointToHex(C),
		}
	}

	return protocol.BlindedMessage{Amount: amount, B_: crypto.PointToHex(B_)}, secret, unblind
}

func TestMintIssueAndRedeem(t *testing.T) {
	ctx := context.Background()
	ks := testutil.NewTestKeyset(t)
	m := testutil.NewTestMintWithKeyset(t, ks)

	output, _, unblind := blindOutputFull(t, 4)

	promises, err := m.Issue(ctx, protocol.BlindedMessages{output})
	require.NoError(t, err)
	require.Len(t, promises, 1)
	require.Equal(t, uint64(4), promises[0].Amount)
	require.NotNil(t, promises[0].DLEQ)

	note := unblind(promises[0], ks)

	amount, err := m.Redeem(ctx, protocol.Notes{note})
	require.NoError(t, err)
	require.Equal(t, uint64(4), amount)

	// Second redemption of the same note is a double spend.
	_, err = m.Redeem(ctx, protocol.Notes{note})
	require.ErrorIs(t, err, services.ErrAlreadySpent)
}

func TestMintIssueRejectsUnknownDenomination(t *testing.T) {
	ctx := context.Background()
	m := testutil.NewTestMint(t)

	output, _, _ := blindOutputFull(t, 3)
	_, err := m.Issue(ctx, protocol.BlindedMessages{output})
	require.ErrorIs(t, err, mint.ErrUnknownDenomination)
}

func TestMintIssueRejectsInvalidPoint(t *testing.T) {
	ctx := context.Background()
	m := testutil.NewTestMint(t)

	_, err := m.Issue(ctx, protocol.BlindedMessages{{Amount: 4, B_: "02deadbeef"}})
	require.ErrorIs(t, err, crypto.ErrInvalidPoint)
}

func TestMintSwap(t *testing.T) {
	ctx := context.Background()
	ks := testutil.NewTestKeyset(t)
	m := testutil.NewTestMintWithKeyset(t, ks)

	inputs := testutil.NewTestNotes(t, ks, 4, 2)

	out1, _, unblind1 := blindOutputFull(t, 4)
	out2, _, unblind2 := blindOutputFull(t, 2)

	sigs, err := m.Swap(ctx, inputs, protocol.BlindedMessages{out1, out2})
	require.NoError(t, err)
	require.Len(t, sigs, 2)

	// The reissued notes verify and redeem.
	note1 := unblind1(sigs[0], ks)
	note2 := unblind2(sigs[1], ks)
	amount, err := m.Redeem(ctx, protocol.Notes{note1, note2})
	require.NoError(t, err)
	require.Equal(t, uint64(6), amount)

	// The burned inputs cannot be redeemed again.
	_, err = m.Redeem(ctx, inputs[:1])
	require.ErrorIs(t, err, services.ErrAlreadySpent)
}

func TestMintSwapRejectsUnbalancedAmounts(t *testing.T) {
	ctx := context.Background()
	ks := testutil.NewTestKeyset(t)
	m := testutil.NewTestMintWithKeyset(t, ks)

	inputs := testutil.NewTestNotes(t, ks, 4)
	output, _, _ := blindOutputFull(t, 2)

	_, err := m.Swap(ctx, inputs, protocol.BlindedMessages{output})
	require.ErrorIs(t, err, mint.ErrAmountMismatch)

	// Unbalanced swap must not burn the inputs.
	balanced, _, _ := blindOutputFull(t, 4)
	_, err = m.Swap(ctx, inputs, protocol.BlindedMessages{balanced})
	require.NoError(t, err)
}

func TestMintSwapRejectsForgedInput(t *testing.T) {
	ctx := context.Background()
	ks := testutil.NewTestKeyset(t)
	m := testutil.NewTestMintWithKeyset(t, ks)

	// A note signed by a different keyset does not verify here.
	otherKS := testutil.NewTestKeyset(t)
	forged := testutil.NewTestNotes(t, otherKS, 4)

	output, _, _ := blindOutputFull(t, 4)
	_, err := m.Swap(ctx, forged, protocol.BlindedMessages{output})
	require.ErrorIs(t, err, mint.ErrInvalidNote)
}

func TestMintSwapRejectsDoubleSpentInput(t *testing.T) {
	ctx := context.Background()
	ks := testutil.NewTestKeyset(t)
	m := testutil.NewTestMintWithKeyset(t, ks)

	inputs := testutil.NewTestNotes(t, ks, 4)
	_, err := m.Redeem(ctx, inputs)
	require.NoError(t, err)

	output, _, _ := blindOutputFull(t, 4)
	_, err = m.Swap(ctx, inputs, protocol.BlindedMessages{output})
	require.ErrorIs(t, err, services.ErrAlreadySpent)
}

func TestMintSignedKeys(t *testing.T) {
	m := testutil.NewTestMint(t)

	signed, err := m.SignedKeys()
	require.NoError(t, err)

	keys, _, err := signed.Recover()
	require.NoError(t, err)
	require.Equal(t, m.Keys().KeysetID, keys.KeysetID)
	require.Len(t, keys.Keys, len(testutil.TestDenominations))
}

func TestMintIgnoresStoredY(t *testing.T) {
	ctx := context.Background()
	ks := testutil.NewTestKeyset(t)
	m := testutil.NewTestMintWithKeyset(t, ks)

	note := testutil.NewTestNote(t, ks, 2)

	// Tampering with the stored Y does not help: verification recomputes
	// it from the secret, so the note still redeems.
	_, bogus, err := crypto.GenerateKeyPair()
	require.NoError(t, err)
	note.Y = crypto.PointToHex(bogus)

	amount, err := m.Redeem(ctx, protocol.Notes{note})
	require.NoError(t, err)
	require.Equal(t, uint64(2), amount)
}
