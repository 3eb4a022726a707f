// Package client is the Go SDK for a sealchain ledger service.
//
// It wraps the service's HTTP API with typed, context-aware calls: reading
// the chain overview, fetching records and payload projections, running an
// integrity check, and appending new payloads. Appends block server-side
// until proof-of-work sealing completes, so pass a context with a deadline
// when calling Append against a high-difficulty ledger.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Record mirrors one sealed ledger record as served over the wire.
type Record struct {
	Index      uint64 `json:"index"`
	Timestamp  uint64 `json:"timestamp"`
	Payload    string `json:"payload"`
	PrevDigest string `json:"prev_digest"`
	Digest     string `json:"digest"`
	Nonce      uint64 `json:"nonce"`
}

// Overview holds the chain summary returned by GET /api/v1/ledger.
type Overview struct {
	Records    int    `json:"records"`
	Tip        string `json:"tip"`
	Difficulty int    `json:"difficulty"`
}

// VerifyResult holds the outcome of a chain integrity check. Index and Check
// are populated only when Valid is false.
type VerifyResult struct {
	Valid bool   `json:"valid"`
	Index uint64 `json:"index,omitempty"`
	Check string `json:"check,omitempty"`
}

// Client talks to a sealchain ledger service.
type Client struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
}

// Option is a functional option for configuring a Client.
type Option func(*Client)

// WithHTTPClient sets a custom http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout sets the per-request timeout. It applies to whichever
// http.Client ends up installed, regardless of option order.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// New creates a Client for the service at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.timeout > 0 {
		c.httpClient.Timeout = c.timeout
	}
	return c
}

// Overview returns the chain length, tip digest and difficulty.
func (c *Client) Overview(ctx context.Context) (*Overview, error) {
	var out Overview
	if err := c.get(ctx, "/api/v1/ledger", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Verify runs a full-chain integrity check on the server.
func (c *Client) Verify(ctx context.Context) (*VerifyResult, error) {
	var out VerifyResult
	if err := c.get(ctx, "/api/v1/ledger/verify", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Record fetches the record at the given zero-based index.
func (c *Client) Record(ctx context.Context, index uint64) (*Record, error) {
	var out Record
	if err := c.get(ctx, fmt.Sprintf("/api/v1/ledger/records/%d", index), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Records fetches the full ordered chain.
func (c *Client) Records(ctx context.Context) ([]Record, error) {
	var out struct {
		Records []Record `json:"records"`
	}
	if err := c.get(ctx, "/api/v1/ledger/records", &out); err != nil {
		return nil, err
	}
	return out.Records, nil
}

// Payloads fetches the payload-only projection of the chain, in order.
func (c *Client) Payloads(ctx context.Context) ([]string, error) {
	var out struct {
		Payloads []string `json:"payloads"`
	}
	if err := c.get(ctx, "/api/v1/ledger/payloads", &out); err != nil {
		return nil, err
	}
	return out.Payloads, nil
}

// Append submits a payload for sealing and returns the sealed record.
// The call blocks until the server's proof-of-work search completes.
func (c *Client) Append(ctx context.Context, payload string) (*Record, error) {
	body, err := json.Marshal(map[string]string{"payload": payload})
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/api/v1/ledger/records", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusCreated {
		return nil, apiError(resp)
	}

	var rec Record
	if err := json.NewDecoder(resp.Body).Decode(&rec); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &rec, nil
}

// get performs a GET and decodes a 200 response into out.
func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return apiError(resp)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// apiError extracts the service's {"error": "..."} message from a non-2xx
// response, falling back to the raw status.
func apiError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	var wire struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(body, &wire) == nil && wire.Error != "" {
		return fmt.Errorf("server returned %s: %s", resp.Status, wire.Error)
	}
	return fmt.Errorf("server returned %s", resp.Status)
}
