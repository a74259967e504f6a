package wallet

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/dmto-xyz/dmto-core/protocol"
)

// Client talks to a mint's HTTP API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a mint API client for the given base URL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// GetKeys fetches the mint's active keyset.
func (c *Client) GetKeys(ctx context.Context) (*protocol.KeysResponse, error) {
	return get[protocol.KeysResponse](ctx, c, "/keys")
}

// GetSignedKeys fetches the keyset wrapped in the mint's signed envelope
// and verifies the signature before returning it.
func (c *Client) GetSignedKeys(ctx context.Context) (*protocol.KeysResponse, error) {
	signed, err := get[protocol.Signed[protocol.KeysResponse]](ctx, c, "/keys/signed")
	if err != nil {
		return nil, err
	}

	keys, _, err := signed.Recover()
	if err != nil {
		return nil, fmt.Errorf("keyset signature: %w", err)
	}
	return keys, nil
}

// Mint requests issuance of blind signatures over the outputs.
func (c *Client) Mint(ctx context.Context, req *protocol.PostMintRequest) (*protocol.PostMintResponse, error) {
	return post[protocol.PostMintRequest, protocol.PostMintResponse](ctx, c, "/mint", req)
}

// Swap exchanges input notes for blind signatures over the outputs.
func (c *Client) Swap(ctx context.Context, req *protocol.PostSwapRequest) (*protocol.PostSwapResponse, error) {
	return post[protocol.PostSwapRequest, protocol.PostSwapResponse](ctx, c, "/swap", req)
}

// Redeem presents notes for redemption.
func (c *Client) Redeem(ctx context.Context, req *protocol.PostRedeemRequest) (*protocol.PostRedeemResponse, error) {
	return post[protocol.PostRedeemRequest, protocol.PostRedeemResponse](ctx, c, "/redeem", req)
}

func get[Resp any](ctx context.Context, c *Client, path string) (*Resp, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	return do[Resp](c, httpReq)
}

func post[Req, Resp any](ctx context.Context, c *Client, path string, req *Req) (*Resp, error) {
	body, err := protocol.SerializeMessage(req)
	if err != nil {
		return nil, fmt.Errorf("serializing request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	return do[Resp](c, httpReq)
}

func do[Resp any](c *Client, req *http.Request) (*Resp, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("%s %s: mint returned status %d: %s", req.Method, req.URL.Path, resp.StatusCode, bytes.TrimSpace(msg))
	}

	return protocol.DecodeMessage[Resp](resp.Body)
}
