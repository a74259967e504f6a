package protocol

import (
	"encoding/json"
	"io"

	"github.com/dmto-xyz/dmto-core/crypto"
)

// BlindedMessage is a wallet's blinded point B_ = Y + r*G submitted for
// signing under the key for Amount. The mint cannot recover Y or r from it.
type BlindedMessage struct {
	Amount uint64 `json:"amount"`
	B_     string `json:"B_"`
}

// BlindedMessages is an ordered list of blinded messages; signatures come
// back in the same order.
type BlindedMessages []BlindedMessage

// Total sums the requested amounts.
func (ms BlindedMessages) Total() uint64 {
	var total uint64
	for _, m := range ms {
		total += m.Amount
	}
	return total
}

// DLEQProof is the wire form of a discrete-log equality proof.
type DLEQProof struct {
	E string `json:"e"`
	S string `json:"s"`
}

// NewDLEQProof encodes a proof for transport.
func NewDLEQProof(proof *crypto.DLEQProof) *DLEQProof {
	return &DLEQProof{
		E: crypto.ScalarToHex(&proof.E),
		S: crypto.ScalarToHex(&proof.S),
	}
}

// Decode parses the proof scalars back into their group form.
func (p *DLEQProof) Decode() (*crypto.DLEQProof, error) {
	e, err := crypto.ScalarFromHex(p.E)
	if err != nil {
		return nil, err
	}
	s, err := crypto.ScalarFromHex(p.S)
	if err != nil {
		return nil, err
	}
	return &crypto.DLEQProof{E: *e, S: *s}, nil
}

// BlindedSignature is the mint's blind signature C_ = k*B_ over a blinded
// message, together with a DLEQ proof binding it to the published key for
// Amount.
type BlindedSignature struct {
	Amount uint64     `json:"amount"`
	C_     string     `json:"C_"`
	DLEQ   *DLEQProof `json:"dleq,omitempty"`
}

// BlindedSignatures is an ordered list of blind signatures.
type BlindedSignatures []BlindedSignature

// Note is the presentable ecash artifact: {secret, Y, C} plus the
// denomination it was issued under. It is created once by the wallet after
// unblinding and is immutable thereafter.
//
// Invariants: Y = HashToCurve(Secret) and C = k*Y for the issuing mint's
// denomination key k. Y is carried for convenience; verifiers recompute it
// from Secret and never trust the stored value.
type Note struct {
	Amount uint64 `json:"amount"`
	Secret []byte `json:"secret"`
	Y      string `json:"Y"`
	C      string `json:"C"`
}

// Notes is a set of notes, typically a wallet's holdings or a swap input.
type Notes []Note

// Total sums the note amounts.
func (ns Notes) Total() uint64 {
	var total uint64
	for _, n := range ns {
		total += n.Amount
	}
	return total
}

// KeysResponse publishes the mint's active keyset: one public point per
// denomination, plus the keyset identifier derived from those points.
type KeysResponse struct {
	KeysetID string            `json:"keyset_id"`
	Keys     map[uint64]string `json:"keys"`
}

// PostMintRequest asks the mint to issue blind signatures over the given
// outputs. Issuance policy (payment, faucet limits) is the caller's
// surrounding concern.
type PostMintRequest struct {
	Outputs BlindedMessages `json:"outputs"`
}

// PostMintResponse carries the blind signatures for a mint request, in
// output order.
type PostMintResponse struct {
	Promises BlindedSignatures `json:"promises"`
}

// PostSwapRequest burns the input notes and asks for blind signatures over
// the outputs. Input and output totals must balance exactly.
type PostSwapRequest struct {
	Inputs  Notes           `json:"inputs"`
	Outputs BlindedMessages `json:"outputs"`
}

// PostSwapResponse carries the blind signatures for a swap, in output order.
type PostSwapResponse struct {
	Signatures BlindedSignatures `json:"signatures"`
}

// PostRedeemRequest presents notes for redemption. All notes are verified
// and marked spent atomically; one bad note rejects the whole batch.
type PostRedeemRequest struct {
	Notes Notes `json:"notes"`
}

// PostRedeemResponse reports the outcome of a redemption.
type PostRedeemResponse struct {
	Redeemed bool   `json:"redeemed"`
	Amount   uint64 `json:"amount"`
}

// UnmarshalMessage deserializes a message from JSON.
func UnmarshalMessage[T any](data []byte) (*T, error) {
	var msg T
	err := json.Unmarshal(data, &msg)
	return &msg, err
}

// DecodeMessage deserializes a message from a JSON reader.
func DecodeMessage[T any](reader io.Reader) (*T, error) {
	var msg T
	err := json.NewDecoder(reader).Decode(&msg)
	return &msg, err
}

// SerializeMessage serializes a message to JSON.
func SerializeMessage[T any](msg *T) ([]byte, error) {
	return json.Marshal(msg)
}
