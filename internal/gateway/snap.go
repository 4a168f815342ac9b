// Package gateway talks to the Snap checkout API of the payment provider.
package gateway

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/Domenick1991/ticketing/internal/domain"
)

const (
	SandboxURL    = "https://app.sandbox.midtrans.com/snap/v1/transactions"
	ProductionURL = "https://app.midtrans.com/snap/v1/transactions"

	defaultTimeout = 20 * time.Second
)

type Config struct {
	ServerKey  string
	Production bool
	// BaseURL overrides the sandbox/production endpoint.
	BaseURL string
	Timeout time.Duration
}

type Customer struct {
	FirstName string `json:"first_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
}

type Item struct {
	ID       string `json:"id"`
	Price    int64  `json:"price"`
	Quantity int    `json:"quantity"`
	Name     string `json:"name"`
}

// SessionRequest amounts are integral major units, as the provider requires.
type SessionRequest struct {
	OrderID     string
	GrossAmount int64
	Customer    Customer
	Items       []Item
}

type Session struct {
	Token       string
	RedirectURL string
	Raw         json.RawMessage
}

// Error describes a failed session request. Raw is always valid JSON and is
// meant to be stored on the transaction for diagnostics.
type Error struct {
	StatusCode int
	Raw        json.RawMessage
	Reason     string
}

func (e *Error) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("gateway: %s (status %d)", e.Reason, e.StatusCode)
	}
	return "gateway: " + e.Reason
}

func (e *Error) Unwrap() error {
	return domain.ErrGateway
}

type Client struct {
	serverKey string
	url       string
	http      *http.Client
}

func NewClient(cfg Config) *Client {
	url := cfg.BaseURL
	if url == "" {
		url = SandboxURL
		if cfg.Production {
			url = ProductionURL
		}
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		serverKey: cfg.ServerKey,
		url:       url,
		http:      &http.Client{Timeout: timeout},
	}
}

func (c *Client) Configured() bool {
	return c.serverKey != ""
}

type snapPayload struct {
	TransactionDetails struct {
		OrderID     string `json:"order_id"`
		GrossAmount int64  `json:"gross_amount"`
	} `json:"transaction_details"`
	CustomerDetails Customer `json:"customer_details"`
	ItemDetails     []Item   `json:"item_details"`
}

type snapResponse struct {
	Token       string `json:"token"`
	RedirectURL string `json:"redirect_url"`
}

func (c *Client) CreateSession(ctx context.Context, req SessionRequest) (*Session, error) {
	var payload snapPayload
	payload.TransactionDetails.OrderID = req.OrderID
	payload.TransactionDetails.GrossAmount = req.GrossAmount
	payload.CustomerDetails = req.Customer
	payload.ItemDetails = req.Items

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal snap request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build snap request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Basic "+base64.StdEncoding.EncodeToString([]byte(c.serverKey+":")))
	httpReq.Header.Set("Idempotency-Key", req.OrderID)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, &Error{Raw: errorJSON(err), Reason: transportReason(err)}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{StatusCode: resp.StatusCode, Raw: errorJSON(err), Reason: "read response"}
	}
	raw := rawJSON(respBody)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &Error{StatusCode: resp.StatusCode, Raw: raw, Reason: "session request rejected"}
	}

	var parsed snapResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil || parsed.Token == "" || parsed.RedirectURL == "" {
		return nil, &Error{StatusCode: resp.StatusCode, Raw: raw, Reason: "response missing token or redirect_url"}
	}

	return &Session{Token: parsed.Token, RedirectURL: parsed.RedirectURL, Raw: raw}, nil
}

func transportReason(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "request timed out"
	}
	var netErr interface{ Timeout() bool }
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "request timed out"
	}
	return "request failed"
}

// rawJSON keeps valid JSON bodies as-is and wraps anything else.
func rawJSON(body []byte) json.RawMessage {
	if len(body) > 0 && json.Valid(body) {
		return json.RawMessage(body)
	}
	wrapped, _ := json.Marshal(map[string]string{"raw": string(body)})
	return wrapped
}

func errorJSON(err error) json.RawMessage {
	wrapped, _ := json.Marshal(map[string]string{"error": err.Error()})
	return wrapped
}
