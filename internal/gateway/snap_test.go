package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Domenick1991/ticketing/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sessionRequest() SessionRequest {
	return SessionRequest{
		OrderID:     "ORDER-20251221-001",
		GrossAmount: 202000,
		Customer:    Customer{FirstName: "Budi", Email: "budi@example.com", Phone: "0812"},
		Items:       []Item{{ID: "EVENT-1", Price: 202000, Quantity: 1, Name: "Jazz Night"}},
	}
}

func TestClient_CreateSession_Success(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "SB-Mid-server-key", user)
		assert.Equal(t, "", pass)
		assert.Equal(t, "ORDER-20251221-001", r.Header.Get("Idempotency-Key"))

		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &got))

		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"token":"snap-token","redirect_url":"https://pay.example/snap-token"}`))
	}))
	defer srv.Close()

	client := NewClient(Config{ServerKey: "SB-Mid-server-key", BaseURL: srv.URL})
	session, err := client.CreateSession(context.Background(), sessionRequest())
	require.NoError(t, err)

	assert.Equal(t, "snap-token", session.Token)
	assert.Equal(t, "https://pay.example/snap-token", session.RedirectURL)
	assert.JSONEq(t, `{"token":"snap-token","redirect_url":"https://pay.example/snap-token"}`, string(session.Raw))

	details := got["transaction_details"].(map[string]any)
	assert.Equal(t, "ORDER-20251221-001", details["order_id"])
	assert.Equal(t, float64(202000), details["gross_amount"])
	items := got["item_details"].([]any)
	require.Len(t, items, 1)
	assert.Equal(t, float64(1), items[0].(map[string]any)["quantity"])
}

func TestClient_CreateSession_Failures(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantStatus int
		wantRaw    string
	}{
		{
			name:       "rejected",
			status:     http.StatusUnauthorized,
			body:       `{"error_messages":["Access denied"]}`,
			wantStatus: http.StatusUnauthorized,
			wantRaw:    `{"error_messages":["Access denied"]}`,
		},
		{
			name:       "missing redirect url",
			status:     http.StatusCreated,
			body:       `{"token":"snap-token"}`,
			wantStatus: http.StatusCreated,
			wantRaw:    `{"token":"snap-token"}`,
		},
		{
			name:       "non json body",
			status:     http.StatusBadGateway,
			body:       `upstream down`,
			wantStatus: http.StatusBadGateway,
			wantRaw:    `{"raw":"upstream down"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			client := NewClient(Config{ServerKey: "key", BaseURL: srv.URL})
			session, err := client.CreateSession(context.Background(), sessionRequest())
			assert.Nil(t, session)
			require.Error(t, err)
			assert.True(t, errors.Is(err, domain.ErrGateway))

			var gwErr *Error
			require.True(t, errors.As(err, &gwErr))
			assert.Equal(t, tt.wantStatus, gwErr.StatusCode)
			assert.JSONEq(t, tt.wantRaw, string(gwErr.Raw))
		})
	}
}

func TestClient_CreateSession_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	client := NewClient(Config{ServerKey: "key", BaseURL: srv.URL, Timeout: 50 * time.Millisecond})
	_, err := client.CreateSession(context.Background(), sessionRequest())
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrGateway)

	var gwErr *Error
	require.ErrorAs(t, err, &gwErr)
	assert.Equal(t, "request timed out", gwErr.Reason)
	assert.True(t, json.Valid(gwErr.Raw))
}

func TestNewClient_URLSelection(t *testing.T) {
	assert.Equal(t, SandboxURL, NewClient(Config{}).url)
	assert.Equal(t, ProductionURL, NewClient(Config{Production: true}).url)
	assert.Equal(t, "http://localhost:9999", NewClient(Config{Production: true, BaseURL: "http://localhost:9999"}).url)
	assert.False(t, NewClient(Config{}).Configured())
}
