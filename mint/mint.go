package mint

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"

	"github.com/dmto-xyz/dmto-core/crypto"
	"github.com/dmto-xyz/dmto-core/metrics"
	"github.com/dmto-xyz/dmto-core/protocol"
	"github.com/dmto-xyz/dmto-core/services"
)

var (
	// ErrUnknownDenomination indicates an output or note references an
	// amount the keyset has no key for.
	ErrUnknownDenomination = errors.New("mint: unknown denomination")

	// ErrAmountMismatch indicates a swap whose input and output totals
	// do not balance.
	ErrAmountMismatch = errors.New("mint: input and output amounts do not balance")

	// ErrInvalidNote indicates a presented note whose signature does not
	// verify against the keyset.
	ErrInvalidNote = errors.New("mint: note signature invalid")
)

// Mint is the signing authority. It owns the keyset, a keyset-publication
// signing key, and the spent-secret store.
type Mint struct {
	keyset     *Keyset
	signingKey *secp256k1.PrivateKey
	store      services.SpentStore
	log        *slog.Logger
}

// New creates a mint from its dependencies. The signing key authenticates
// keyset publications and may be nil if signed publication is not needed.
func New(keyset *Keyset, signingKey *secp256k1.PrivateKey, store services.SpentStore, log *slog.Logger) (*Mint, error) {
	if keyset == nil {
		return nil, errors.New("keyset cannot be nil")
	}
	if store == nil {
		return nil, errors.New("spent store cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}

	return &Mint{
		keyset:     keyset,
		signingKey: signingKey,
		store:      store,
		log:        log.With("keyset", keyset.ID()),
	}, nil
}

// Keys returns the published keyset: denomination public points and the
// keyset ID.
func (m *Mint) Keys() *protocol.KeysResponse {
	return &protocol.KeysResponse{
		KeysetID: m.keyset.ID(),
		Keys:     m.keyset.PublicKeys(),
	}
}

// SignedKeys returns the keyset publication wrapped in a Schnorr-signed
// envelope.
func (m *Mint) SignedKeys() (*protocol.Signed[protocol.KeysResponse], error) {
	if m.signingKey == nil {
		return nil, errors.New("mint has no keyset signing key")
	}
	return protocol.NewSigned(m.signingKey, m.Keys())
}

// Issue blind-signs the outputs directly, without consuming inputs. The
// surrounding deployment decides when issuance is allowed; the demo and
// tests use it as a faucet.
func (m *Mint) Issue(ctx context.Context, outputs protocol.BlindedMessages) (protocol.BlindedSignatures, error) {
	sigs, err := m.signOutputs(outputs)
	if err != nil {
		return nil, err
	}
	m.log.InfoContext(ctx, "issued notes", "outputs", len(outputs), "amount", outputs.Total())
	return sigs, nil
}

// Swap atomically redeems the input notes and blind-signs the outputs.
// Input and output totals must balance exactly. All inputs are verified
// before any secret is marked spent, and all secrets are spent before any
// output is signed, so a double-spent input can never yield new notes.
func (m *Mint) Swap(ctx context.Context, inputs protocol.Notes, outputs protocol.BlindedMessages) (protocol.BlindedSignatures, error) {
	if len(inputs) == 0 || len(outputs) == 0 {
		return nil, fmt.Errorf("%w: empty inputs or outputs", ErrAmountMismatch)
	}
	if inputs.Total() != outputs.Total() {
		return nil, fmt.Errorf("%w: inputs %d, outputs %d", ErrAmountMismatch, inputs.Total(), outputs.Total())
	}

	for i := range inputs {
		if err := m.verifyNote(&inputs[i]); err != nil {
			metrics.ValidationFailures.Inc()
			return nil, fmt.Errorf("input %d: %w", i, err)
		}
	}

	for i := range inputs {
		if err := m.store.MarkSpent(ctx, inputs[i].Secret); err != nil {
			if errors.Is(err, services.ErrAlreadySpent) {
				metrics.DoubleSpendRejections.Inc()
			}
			return nil, fmt.Errorf("input %d: %w", i, err)
		}
	}

	sigs, err := m.signOutputs(outputs)
	if err != nil {
		return nil, err
	}

	metrics.SwapsCompleted.Inc()
	m.log.InfoContext(ctx, "swap completed", "inputs", len(inputs), "outputs", len(outputs), "amount", inputs.Total())
	return sigs, nil
}

// Redeem verifies the presented notes and marks their secrets spent. A
// signature mismatch or double spend is a routine rejection reported in
// the returned error; store failures surface as wrapped errors too, so
// callers distinguish them with errors.Is.
func (m *Mint) Redeem(ctx context.Context, notes protocol.Notes) (uint64, error) {
	if len(notes) == 0 {
		return 0, errors.New("mint: no notes presented")
	}

	for i := range notes {
		if err := m.verifyNote(&notes[i]); err != nil {
			metrics.ValidationFailures.Inc()
			return 0, fmt.Errorf("note %d: %w", i, err)
		}
	}

	for i := range notes {
		if err := m.store.MarkSpent(ctx, notes[i].Secret); err != nil {
			if errors.Is(err, services.ErrAlreadySpent) {
				metrics.DoubleSpendRejections.Inc()
			}
			return 0, fmt.Errorf("note %d: %w", i, err)
		}
		metrics.NotesRedeemed.Inc()
	}

	amount := notes.Total()
	m.log.InfoContext(ctx, "notes redeemed", "notes", len(notes), "amount", amount)
	return amount, nil
}

// verifyNote checks a note's signature against the denomination key. The
// stored Y is not trusted; verification recomputes it from the secret.
func (m *Mint) verifyNote(note *protocol.Note) error {
	key, ok := m.keyset.PrivateKey(note.Amount)
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownDenomination, note.Amount)
	}

	C, err := crypto.PointFromHex(note.C)
	if err != nil {
		return err
	}

	ok, err = crypto.VerifySignature(key, note.Secret, C)
	if err != nil {
		return err
	}
	if !ok {
		return ErrInvalidNote
	}
	return nil
}

// signOutputs blind-signs each output with its denomination key and
// attaches a DLEQ proof.
func (m *Mint) signOutputs(outputs protocol.BlindedMessages) (protocol.BlindedSignatures, error) {
	sigs := make(protocol.BlindedSignatures, 0, len(outputs))

	for i, output := range outputs {
		key, ok := m.keyset.PrivateKey(output.Amount)
		if !ok {
			return nil, fmt.Errorf("output %d: %w: %d", i, ErrUnknownDenomination, output.Amount)
		}

		B_, err := crypto.PointFromHex(output.B_)
		if err != nil {
			return nil, fmt.Errorf("output %d: %w", i, err)
		}

		C_, err := crypto.SignBlinded(key, B_)
		if err != nil {
			return nil, fmt.Errorf("output %d: %w", i, err)
		}

		proof, err := crypto.ProveDLEQ(key, B_, C_)
		if err != nil {
			return nil, fmt.Errorf("output %d: %w", i, err)
		}

		sigs = append(sigs, protocol.BlindedSignature{
			Amount: output.Amount,
			C_:     crypto.PointToHex(C_),
			DLEQ:   protocol.NewDLEQProof(proof),
		})
		metrics.SignaturesIssued.Inc()
	}

	return sigs, nil
}
