package wallet

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"

	"github.com/dmto-xyz/dmto-core/crypto"
	"github.com/dmto-xyz/dmto-core/protocol"
)

var (
	// ErrInsufficientBalance indicates the wallet cannot cover the
	// requested amount with its notes.
	ErrInsufficientBalance = errors.New("wallet: insufficient balance")

	// ErrUnrepresentableAmount indicates the amount cannot be expressed
	// with the mint's denominations.
	ErrUnrepresentableAmount = errors.New("wallet: amount not representable in mint denominations")

	// ErrProofInvalid indicates a blind signature whose DLEQ proof does
	// not verify against the mint's published key.
	ErrProofInvalid = errors.New("wallet: DLEQ proof invalid")
)

// PendingOutputs holds the per-output secrets and blinding factors between
// a signing request and the matching response. Signatures arrive in output
// order; the pending state is matched by position.
type PendingOutputs struct {
	Outputs protocol.BlindedMessages

	secrets [][]byte
	factors []*secp256k1.PrivateKey
}

// Wallet holds notes issued by a single mint keyset.
type Wallet struct {
	keysetID string
	mintKeys map[uint64]*secp256k1.PublicKey

	mu    sync.Mutex
	notes protocol.Notes
}

// NewWallet creates a wallet bound to a mint's published keyset.
func NewWallet(keys *protocol.KeysResponse) (*Wallet, error) {
	if keys == nil || len(keys.Keys) == 0 {
		return nil, errors.New("wallet: empty keyset")
	}

	mintKeys := make(map[uint64]*secp256k1.PublicKey, len(keys.Keys))
	for amount, pointHex := range keys.Keys {
		point, err := crypto.PointFromHex(pointHex)
		if err != nil {
			return nil, fmt.Errorf("keyset key for %d: %w", amount, err)
		}
		mintKeys[amount] = point
	}

	return &Wallet{keysetID: keys.KeysetID, mintKeys: mintKeys}, nil
}

// KeysetID returns the ID of the keyset this wallet is bound to.
func (w *Wallet) KeysetID() string {
	return w.keysetID
}

// Balance sums the wallet's notes.
func (w *Wallet) Balance() uint64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.notes.Total()
}

// Notes returns a copy of the wallet's notes.
func (w *Wallet) Notes() protocol.Notes {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append(protocol.Notes{}, w.notes...)
}

// AddNotes stores notes in the wallet.
func (w *Wallet) AddNotes(notes protocol.Notes) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.notes = append(w.notes, notes...)
}

// CreateBlindedMessages splits amount into denominations and produces a
// blinded output for each, with fresh secrets and blinding factors.
func (w *Wallet) CreateBlindedMessages(amount uint64) (*PendingOutputs, error) {
	parts, err := splitAmount(amount, w.denominations())
	if err != nil {
		return nil, err
	}

	pending := &PendingOutputs{
		Outputs: make(protocol.BlindedMessages, 0, len(parts)),
		secrets: make([][]byte, 0, len(parts)),
		factors: make([]*secp256k1.PrivateKey, 0, len(parts)),
	}

	for _, part := range parts {
		secret, err := crypto.GenerateSecret()
		if err != nil {
			return nil, err
		}

		Y, err := crypto.HashToCurve(secret)
		if err != nil {
			return nil, err
		}

		r, err := crypto.GenerateBlindingFactor()
		if err != nil {
			return nil, err
		}

		B_, err := crypto.BlindMessage(Y, r)
		if err != nil {
			return nil, err
		}

		pending.Outputs = append(pending.Outputs, protocol.BlindedMessage{
			Amount: part,
			B_:     crypto.PointToHex(B_),
		})
		pending.secrets = append(pending.secrets, secret)
		pending.factors = append(pending.factors, r)
	}

	return pending, nil
}

// ConstructNotes unblinds the mint's signatures, checks each DLEQ proof
// against the published keyset, and stores the resulting notes. The
// blinding factors are not needed afterwards and pending is consumed.
func (w *Wallet) ConstructNotes(pending *PendingOutputs, sigs protocol.BlindedSignatures) (protocol.Notes, error) {
	if len(sigs) != len(pending.Outputs) {
		return nil, fmt.Errorf("wallet: expected %d signatures, got %d", len(pending.Outputs), len(sigs))
	}

	notes := make(protocol.Notes, 0, len(sigs))
	for i, sig := range sigs {
		output := pending.Outputs[i]
		if sig.Amount != output.Amount {
			return nil, fmt.Errorf("wallet: signature %d amount %d does not match output %d", i, sig.Amount, output.Amount)
		}

		K, ok := w.mintKeys[sig.Amount]
		if !ok {
			return nil, fmt.Errorf("wallet: no mint key for denomination %d", sig.Amount)
		}

		C_, err := crypto.PointFromHex(sig.C_)
		if err != nil {
			return nil, fmt.Errorf("signature %d: %w", i, err)
		}

		B_, err := crypto.PointFromHex(output.B_)
		if err != nil {
			return nil, fmt.Errorf("output %d: %w", i, err)
		}

		if sig.DLEQ == nil {
			return nil, fmt.Errorf("signature %d: %w: proof missing", i, ErrProofInvalid)
		}
		proof, err := sig.DLEQ.Decode()
		if err != nil {
			return nil, fmt.Errorf("signature %d: %w", i, err)
		}
		if !crypto.VerifyDLEQ(proof, B_, C_, K) {
			return nil, fmt.Errorf("signature %d: %w", i, ErrProofInvalid)
		}

		C, err := crypto.UnblindSignature(C_, pending.factors[i], K)
		if err != nil {
			return nil, fmt.Errorf("signature %d: %w", i, err)
		}

		Y, err := crypto.HashToCurve(pending.secrets[i])
		if err != nil {
			return nil, err
		}

		notes = append(notes, protocol.Note{
			Amount: sig.Amount,
			Secret: pending.secrets[i],
			Y:      crypto.PointToHex(Y),
			C:      crypto.PointToHex(C),
		})
	}

	w.AddNotes(notes)
	return notes, nil
}

// SelectNotesToSend picks notes summing to exactly amount, preferring
// larger denominations. The notes stay in the wallet until RemoveNotes.
func (w *Wallet) SelectNotesToSend(amount uint64) (protocol.Notes, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	sorted := append(protocol.Notes{}, w.notes...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Amount > sorted[j].Amount })

	selected := make(protocol.Notes, 0)
	var sum uint64
	for _, note := range sorted {
		if sum >= amount {
			break
		}
		if sum+note.Amount <= amount {
			selected = append(selected, note)
			sum += note.Amount
		}
	}

	if sum != amount {
		if w.notes.Total() < amount {
			return nil, ErrInsufficientBalance
		}
		return nil, fmt.Errorf("%w: have denominations for %d of %d; swap for change first", ErrInsufficientBalance, sum, amount)
	}
	return selected, nil
}

// RemoveNotes drops the given notes from the wallet, matching by secret.
func (w *Wallet) RemoveNotes(notes protocol.Notes) {
	w.mu.Lock()
	defer w.mu.Unlock()

	remaining := w.notes[:0]
	for _, held := range w.notes {
		spent := false
		for _, gone := range notes {
			if bytes.Equal(held.Secret, gone.Secret) {
				spent = true
				break
			}
		}
		if !spent {
			remaining = append(remaining, held)
		}
	}
	w.notes = remaining
}

// MintNotes requests issuance of amount from the mint and stores the
// resulting notes.
func (w *Wallet) MintNotes(ctx context.Context, client *Client, amount uint64) (protocol.Notes, error) {
	pending, err := w.CreateBlindedMessages(amount)
	if err != nil {
		return nil, err
	}

	resp, err := client.Mint(ctx, &protocol.PostMintRequest{Outputs: pending.Outputs})
	if err != nil {
		return nil, err
	}

	return w.ConstructNotes(pending, resp.Promises)
}

// SwapNotes burns the wallet's notes covering amount and replaces them with
// freshly blinded ones, unlinkable from the originals.
func (w *Wallet) SwapNotes(ctx context.Context, client *Client, amount uint64) (protocol.Notes, error) {
	inputs, err := w.SelectNotesToSend(amount)
	if err != nil {
		return nil, err
	}

	pending, err := w.CreateBlindedMessages(inputs.Total())
	if err != nil {
		return nil, err
	}

	resp, err := client.Swap(ctx, &protocol.PostSwapRequest{Inputs: inputs, Outputs: pending.Outputs})
	if err != nil {
		return nil, err
	}

	w.RemoveNotes(inputs)
	return w.ConstructNotes(pending, resp.Signatures)
}

// RedeemNotes presents notes covering amount to the mint and removes them
// from the wallet on success.
func (w *Wallet) RedeemNotes(ctx context.Context, client *Client, amount uint64) error {
	notes, err := w.SelectNotesToSend(amount)
	if err != nil {
		return err
	}

	if _, err := client.Redeem(ctx, &protocol.PostRedeemRequest{Notes: notes}); err != nil {
		return err
	}

	w.RemoveNotes(notes)
	return nil
}

func (w *Wallet) denominations() []uint64 {
	amounts := make([]uint64, 0, len(w.mintKeys))
	for amount := range w.mintKeys {
		amounts = append(amounts, amount)
	}
	sort.Slice(amounts, func(i, j int) bool { return amounts[i] > amounts[j] })
	return amounts
}

// splitAmount decomposes amount greedily into the given denominations,
// which must be sorted descending.
func splitAmount(amount uint64, denominations []uint64) ([]uint64, error) {
	if amount == 0 {
		return nil, fmt.Errorf("%w: amount is zero", ErrUnrepresentableAmount)
	}

	parts := make([]uint64, 0)
	remaining := amount
	for _, denom := range denominations {
		for remaining >= denom {
			parts = append(parts, denom)
			remaining -= denom
		}
	}

	if remaining != 0 {
		return nil, fmt.Errorf("%w: %d left over from %d", ErrUnrepresentableAmount, remaining, amount)
	}
	return parts, nil
}
