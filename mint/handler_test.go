package mint_test

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/dmto-xyz/dmto-core/mint"
	"github.com/dmto-xyz/dmto-core/protocol"
	"github.com/dmto-xyz/dmto-core/testutil"
)

func setupTestHandler(t *testing.T) (*mint.Keyset, chi.Router) {
	t.Helper()

	ks := testutil.NewTestKeyset(t)
	m := testutil.NewTestMintWithKeyset(t, ks)

	r := chi.NewRouter()
	mint.NewHandler(m).RegisterRoutes(r)
	return ks, r
}

func postJSON[Req any](t *testing.T, router chi.Router, path string, req *Req) *httptest.ResponseRecorder {
	t.Helper()

	body, err := protocol.SerializeMessage(req)
	require.NoError(t, err)

	httpReq := httptest.NewRequest("POST", path, bytes.NewReader(body))
	httpReq.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httpReq)
	return w
}

func TestHandlerKeys(t *testing.T) {
	ks, router := setupTestHandler(t)

	req := httptest.NewRequest("GET", "/keys", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	keys, err := protocol.DecodeMessage[protocol.KeysResponse](w.Body)
	require.NoError(t, err)
	require.Equal(t, ks.ID(), keys.KeysetID)
	require.Len(t, keys.Keys, len(testutil.TestDenominations))
}

func TestHandlerSignedKeys(t *testing.T) {
	ks, router := setupTestHandler(t)

	req := httptest.NewRequest("GET", "/keys/signed", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	signed, err := protocol.DecodeMessage[protocol.Signed[protocol.KeysResponse]](w.Body)
	require.NoError(t, err)

	keys, _, err := signed.Recover()
	require.NoError(t, err)
	require.Equal(t, ks.ID(), keys.KeysetID)
}

func TestHandlerMintEndpoint(t *testing.T) {
	ks, router := setupTestHandler(t)

	output, _, unblind := blindOutputFull(t, 8)
	w := postJSON(t, router, "/mint", &protocol.PostMintRequest{
		Outputs: protocol.BlindedMessages{output},
	})
	require.Equal(t, http.StatusOK, w.Code)

	resp, err := protocol.DecodeMessage[protocol.PostMintResponse](w.Body)
	require.NoError(t, err)
	require.Len(t, resp.Promises, 1)

	// The promise unblinds to a redeemable note.
	note := unblind(resp.Promises[0], ks)
	w = postJSON(t, router, "/redeem", &protocol.PostRedeemRequest{Notes: protocol.Notes{note}})
	require.Equal(t, http.StatusOK, w.Code)

	redeemResp, err := protocol.DecodeMessage[protocol.PostRedeemResponse](w.Body)
	require.NoError(t, err)
	require.True(t, redeemResp.Redeemed)
	require.Equal(t, uint64(8), redeemResp.Amount)
}

func TestHandlerMintRejectsEmptyOutputs(t *testing.T) {
	_, router := setupTestHandler(t)

	w := postJSON(t, router, "/mint", &protocol.PostMintRequest{})
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandlerSwapStatusCodes(t *testing.T) {
	ks, router := setupTestHandler(t)

	inputs := testutil.NewTestNotes(t, ks, 4)

	// Unbalanced swap is a bad request.
	output, _, _ := blindOutputFull(t, 2)
	w := postJSON(t, router, "/swap", &protocol.PostSwapRequest{
		Inputs:  inputs,
		Outputs: protocol.BlindedMessages{output},
	})
	require.Equal(t, http.StatusBadRequest, w.Code)

	// Balanced swap succeeds.
	balanced, _, _ := blindOutputFull(t, 4)
	w = postJSON(t, router, "/swap", &protocol.PostSwapRequest{
		Inputs:  inputs,
		Outputs: protocol.BlindedMessages{balanced},
	})
	require.Equal(t, http.StatusOK, w.Code)

	// Replay of the same swap is a conflict.
	replay, _, _ := blindOutputFull(t, 4)
	w = postJSON(t, router, "/swap", &protocol.PostSwapRequest{
		Inputs:  inputs,
		Outputs: protocol.BlindedMessages{replay},
	})
	require.Equal(t, http.StatusConflict, w.Code)
}

func TestHandlerRedeemDoubleSpendConflict(t *testing.T) {
	ks, router := setupTestHandler(t)

	note := testutil.NewTestNote(t, ks, 2)

	w := postJSON(t, router, "/redeem", &protocol.PostRedeemRequest{Notes: protocol.Notes{note}})
	require.Equal(t, http.StatusOK, w.Code)

	w = postJSON(t, router, "/redeem", &protocol.PostRedeemRequest{Notes: protocol.Notes{note}})
	require.Equal(t, http.StatusConflict, w.Code)
}

func TestHandlerRejectsMalformedBody(t *testing.T) {
	_, router := setupTestHandler(t)

	req := httptest.NewRequest("POST", "/swap", bytes.NewReader([]byte("{not json")))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusBadRequest, w.Code)
}
