// Package saipos is the HTTP client for the Saipos POS API: a bearer
// token is obtained with the partner credentials, then the order is
// posted with the token plus the same credentials as secondary headers.
package saipos

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/brmonteiro/saipos-bridge/internal/config"
)

const (
	authPath  = "/v1/auth"
	orderPath = "/v1/orders"

	defaultTimeout = 30 * time.Second
)

// IdempotencyKeyHeader lets the POS deduplicate re-submissions; the key
// travels with the journal row so retries reuse it.
const IdempotencyKeyHeader = "Idempotency-Key"

// APIError is a non-2xx POS response. The body is kept verbatim so the
// operator sees exactly what the POS said.
type APIError struct {
	Status int
	Body   []byte
}

func (e *APIError) Error() string {
	return fmt.Sprintf("saipos responded %d: %s", e.Status, e.Body)
}

type Client struct {
	baseURL   string
	idPartner string
	secret    string
	http      *http.Client
}

func New(cfg config.Saipos) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL:   cfg.BaseURL,
		idPartner: cfg.IDPartner,
		secret:    cfg.Secret,
		http:      &http.Client{Timeout: timeout},
	}
}

// Authenticate exchanges the partner credentials for a bearer token.
func (c *Client) Authenticate(ctx context.Context) (string, error) {
	body, err := json.Marshal(map[string]string{
		"idPartner": c.idPartner,
		"secret":    c.secret,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal auth request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+authPath, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build auth request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("auth request failed: %w", err)
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read auth response: %w", err)
	}

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return "", &APIError{Status: res.StatusCode, Body: raw}
	}

	var payload struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return "", fmt.Errorf("failed to decode auth response: %w", err)
	}
	if payload.Token == "" {
		return "", fmt.Errorf("auth response contains no token")
	}
	return payload.Token, nil
}

// SubmitRaw posts an already-marshaled order payload using a previously
// obtained token. The POS success body comes back verbatim.
func (c *Client) SubmitRaw(ctx context.Context, token, idempotencyKey string, body []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+orderPath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build order request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("x-id-partner", c.idPartner)
	req.Header.Set("x-secret-key", c.secret)
	if idempotencyKey != "" {
		req.Header.Set(IdempotencyKeyHeader, idempotencyKey)
	}

	res, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("order request failed: %w", err)
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read order response: %w", err)
	}

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return nil, &APIError{Status: res.StatusCode, Body: raw}
	}
	return raw, nil
}

// Submit runs the auth-then-submit sequence. There is no automatic
// retry: a failure at either step surfaces to the caller as-is.
func (c *Client) Submit(ctx context.Context, idempotencyKey string, body []byte) ([]byte, error) {
	token, err := c.Authenticate(ctx)
	if err != nil {
		return nil, err
	}
	return c.SubmitRaw(ctx, token, idempotencyKey, body)
}
