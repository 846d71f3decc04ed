package skiptrace

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"sold2move/internal/models"
)

var testAddr = models.Address{Street: "123 Main St", City: "Austin", State: "TX", Zip: "78701"}

func TestNewClientRequiresKeyAndURL(t *testing.T) {
	if _, err := NewClient(ClientConfig{BaseURL: "https://api.example.com"}); err == nil {
		t.Error("NewClient() without API key: expected error")
	}
	if _, err := NewClient(ClientConfig{APIKey: "k"}); err == nil {
		t.Error("NewClient() without base URL: expected error")
	}
}

func TestClientLookupSendsRequest(t *testing.T) {
	var (
		gotPath   string
		gotAuth   string
		gotHeader string
		gotBody   Request
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		gotHeader = r.Header.Get("X-Tenant")
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &gotBody); err != nil {
			t.Errorf("decoding request body: %v", err)
		}
		w.Write([]byte(`{"results": {"persons": []}}`))
	}))
	defer srv.Close()

	client, err := NewClient(ClientConfig{
		BaseURL: srv.URL + "/",
		APIKey:  "secret-key",
		Headers: map[string]string{"X-Tenant": "sold2move"},
	})
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}

	raw, err := client.Lookup(context.Background(), testAddr)
	if err != nil {
		t.Fatalf("Lookup() error = %v", err)
	}

	if string(raw) != `{"results": {"persons": []}}` {
		t.Errorf("Lookup() body = %s", raw)
	}
	if gotPath != DefaultSkipTracePath {
		t.Errorf("path = %q, want %q", gotPath, DefaultSkipTracePath)
	}
	if gotAuth != "Bearer secret-key" {
		t.Errorf("Authorization = %q, want bearer token", gotAuth)
	}
	if gotHeader != "sold2move" {
		t.Errorf("X-Tenant = %q, want sold2move", gotHeader)
	}
	want := PropertyAddress{Street: "123 Main St", City: "Austin", State: "TX", Zip: "78701"}
	if len(gotBody.Requests) != 1 || gotBody.Requests[0].PropertyAddress != want {
		t.Errorf("request body = %+v, want one request for %+v", gotBody, want)
	}
}

func TestClientLookupErrorStatus(t *testing.T) {
	tests := []struct {
		name   string
		status int
	}{
		{"unauthorized", http.StatusUnauthorized},
		{"rate limited", http.StatusTooManyRequests},
		{"server error", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls++
				w.WriteHeader(tt.status)
				w.Write([]byte(`{"error":"nope"}`))
			}))
			defer srv.Close()

			client, err := NewClient(ClientConfig{BaseURL: srv.URL, APIKey: "k"})
			if err != nil {
				t.Fatalf("NewClient() error = %v", err)
			}

			_, err = client.Lookup(context.Background(), testAddr)
			var perr *ProviderError
			if !errors.As(err, &perr) {
				t.Fatalf("Lookup() error = %v, want *ProviderError", err)
			}
			if perr.StatusCode != tt.status {
				t.Errorf("StatusCode = %d, want %d", perr.StatusCode, tt.status)
			}
			if !strings.Contains(perr.Body, "nope") {
				t.Errorf("Body = %q, want provider body", perr.Body)
			}
			if calls != 1 {
				t.Errorf("provider called %d times, want exactly 1", calls)
			}
		})
	}
}

func TestClientLookupTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	client, err := NewClient(ClientConfig{BaseURL: url, APIKey: "k"})
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}

	_, err = client.Lookup(context.Background(), testAddr)
	var perr *ProviderError
	if !errors.As(err, &perr) {
		t.Fatalf("Lookup() error = %v, want *ProviderError", err)
	}
	if perr.StatusCode != 0 {
		t.Errorf("StatusCode = %d, want 0", perr.StatusCode)
	}
	if perr.Err == nil {
		t.Error("Err = nil, want transport cause")
	}
}

func TestClientLookupTruncatedSuccessBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", "4096")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"results":`))
	}))
	defer srv.Close()

	client, err := NewClient(ClientConfig{BaseURL: srv.URL, APIKey: "k"})
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}

	_, err = client.Lookup(context.Background(), testAddr)
	var perr *ProviderError
	if !errors.As(err, &perr) {
		t.Fatalf("Lookup() error = %v, want *ProviderError", err)
	}
	if perr.StatusCode != 0 {
		t.Errorf("StatusCode = %d, want 0 for a body that failed to arrive", perr.StatusCode)
	}
	if perr.Err == nil {
		t.Error("Err = nil, want read cause")
	}
}

func TestClientLookupTimeout(t *testing.T) {
	done := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-done:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(done)

	client, err := NewClient(ClientConfig{BaseURL: srv.URL, APIKey: "k", Timeout: 50 * time.Millisecond})
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}

	_, err = client.Lookup(context.Background(), testAddr)
	var perr *ProviderError
	if !errors.As(err, &perr) || perr.StatusCode != 0 {
		t.Fatalf("Lookup() error = %v, want transport ProviderError", err)
	}
}
