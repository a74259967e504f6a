package mint

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dmto-xyz/dmto-core/crypto"
	"github.com/dmto-xyz/dmto-core/protocol"
	"github.com/dmto-xyz/dmto-core/services"
)

// Handler exposes the mint's operations over HTTP.
type Handler struct {
	mint *Mint
}

// NewHandler creates an HTTP handler for the mint.
func NewHandler(m *Mint) *Handler {
	return &Handler{mint: m}
}

// RegisterRoutes registers the mint's endpoints with the router.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/keys", h.keys)
	r.Get("/keys/signed", h.signedKeys)
	r.Post("/mint", h.issue)
	r.Post("/swap", h.swap)
	r.Post("/redeem", h.redeem)
}

func (h *Handler) keys(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.mint.Keys())
}

func (h *Handler) signedKeys(w http.ResponseWriter, r *http.Request) {
	signed, err := h.mint.SignedKeys()
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to sign keyset: %v", err), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, signed)
}

func (h *Handler) issue(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()
	req, err := protocol.DecodeMessage[protocol.PostMintRequest](r.Body)
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to parse request: %v", err), http.StatusBadRequest)
		return
	}
	if len(req.Outputs) == 0 {
		http.Error(w, "Missing outputs", http.StatusBadRequest)
		return
	}

	promises, err := h.mint.Issue(r.Context(), req.Outputs)
	if err != nil {
		writeMintError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, &protocol.PostMintResponse{Promises: promises})
}

func (h *Handler) swap(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()
	req, err := protocol.DecodeMessage[protocol.PostSwapRequest](r.Body)
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to parse request: %v", err), http.StatusBadRequest)
		return
	}

	sigs, err := h.mint.Swap(r.Context(), req.Inputs, req.Outputs)
	if err != nil {
		writeMintError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, &protocol.PostSwapResponse{Signatures: sigs})
}

func (h *Handler) redeem(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()
	req, err := protocol.DecodeMessage[protocol.PostRedeemRequest](r.Body)
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to parse request: %v", err), http.StatusBadRequest)
		return
	}

	amount, err := h.mint.Redeem(r.Context(), req.Notes)
	if err != nil {
		writeMintError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, &protocol.PostRedeemResponse{Redeemed: true, Amount: amount})
}

// writeMintError maps mint errors onto HTTP status codes: malformed or
// invalid input is the client's fault, a double spend is a conflict, and
// anything else is internal.
func writeMintError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrAlreadySpent):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, ErrAmountMismatch),
		errors.Is(err, ErrUnknownDenomination),
		errors.Is(err, ErrInvalidNote),
		errors.Is(err, crypto.ErrInvalidPoint),
		errors.Is(err, crypto.ErrInvalidScalar):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
