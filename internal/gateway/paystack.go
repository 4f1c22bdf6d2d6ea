// Package gateway is a client for the Paystack transaction API.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/example/goshop/internal/config"
)

// SuccessfulResponse gateway_response of a settled charge
const SuccessfulResponse = "Successful"

// Error a rejected call; Message is the gateway's own text
type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	return fmt.Sprintf("gateway: %s (http %d)", e.Message, e.StatusCode)
}

// InitializeRequest body of POST /transaction/initialize; Amount is in
// minor units.
type InitializeRequest struct {
	Reference   string `json:"reference"`
	Amount      int64  `json:"amount"`
	Email       string `json:"email"`
	CallbackURL string `json:"callback_url,omitempty"`
}

type InitializeResponse struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    struct {
		AuthorizationURL string `json:"authorization_url"`
		AccessCode       string `json:"access_code"`
		Reference        string `json:"reference"`
	} `json:"data"`
}

type VerifyResponse struct {
	Status  bool       `json:"status"`
	Message string     `json:"message"`
	Data    VerifyData `json:"data"`
}

type VerifyData struct {
	// Amount in minor units
	Amount          int64  `json:"amount"`
	Currency        string `json:"currency"`
	Status          string `json:"status"`
	Reference       string `json:"reference"`
	GatewayResponse string `json:"gateway_response"`
	PaidAt          string `json:"paid_at"`
}

// Paid reports whether the charge went through.
func (r *VerifyResponse) Paid() bool {
	return r.Status && r.Data.GatewayResponse == SuccessfulResponse
}

type Client struct {
	baseURL   string
	secretKey string
	http      *http.Client
}

func NewClient(cfg *config.GatewayConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		secretKey: cfg.SecretKey,
		http:      &http.Client{Timeout: timeout},
	}
}

// Initialize starts a transaction and returns the checkout page URL in
// Data.AuthorizationURL.
func (c *Client) Initialize(ctx context.Context, in InitializeRequest) (*InitializeResponse, error) {
	body, err := json.Marshal(in)
	if err != nil {
		return nil, err
	}
	status, raw, err := c.do(ctx, http.MethodPost, "/transaction/initialize", body)
	if err != nil {
		return nil, err
	}
	var resp InitializeResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("gateway: decode initialize response: %w", err)
	}
	if status/100 != 2 || !resp.Status || resp.Data.AuthorizationURL == "" {
		return nil, &Error{StatusCode: status, Message: messageOr(resp.Message, "transaction could not be initialized")}
	}
	return &resp, nil
}

// Verify fetches the transaction state. Client errors with a JSON body
// (unknown reference and the like) come back as a response with Status
// false; server errors and undecodable bodies are errors. The raw body is
// returned alongside for storage.
func (c *Client) Verify(ctx context.Context, reference string) (*VerifyResponse, []byte, error) {
	status, raw, err := c.do(ctx, http.MethodGet, "/transaction/verify/"+reference, nil)
	if err != nil {
		return nil, nil, err
	}
	var resp VerifyResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		if status/100 != 2 {
			return nil, nil, &Error{StatusCode: status, Message: http.StatusText(status)}
		}
		return nil, nil, fmt.Errorf("gateway: decode verify response: %w", err)
	}
	if status >= 500 {
		return nil, nil, &Error{StatusCode: status, Message: messageOr(resp.Message, http.StatusText(status))}
	}
	return &resp, raw, nil
}

func (c *Client) do(ctx context.Context, method, path string, body []byte) (int, []byte, error) {
	var rd io.Reader
	if body != nil {
		rd = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("gateway: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return 0, nil, fmt.Errorf("gateway: read body: %w", err)
	}
	return resp.StatusCode, raw, nil
}

func messageOr(msg, fallback string) string {
	if msg == "" {
		return fallback
	}
	return msg
}
