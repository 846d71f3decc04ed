package skiptrace

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"

	"sold2move/internal/metrics"
	"sold2move/internal/models"
)

// DefaultSkipTracePath is the provider's property skip-trace endpoint.
const DefaultSkipTracePath = "/api/v1/property/skip-trace"

// maxResponseBytes bounds how much of a provider response is read.
const maxResponseBytes = 10 << 20

// ProviderError is returned when the provider answers with a non-2xx status or cannot be reached.
// StatusCode is zero for transport failures.
type ProviderError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *ProviderError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("skip trace provider unreachable: %v", e.Err)
	}
	return fmt.Sprintf("skip trace provider returned HTTP %d", e.StatusCode)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// ClientConfig configures the provider client.
type ClientConfig struct {
	BaseURL string
	Path    string
	APIKey  string
	// Timeout of zero leaves the call bounded only by the caller's context.
	Timeout time.Duration
	Headers map[string]string
}

// Client calls the skip-trace provider. It performs exactly one attempt per call.
type Client struct {
	httpClient *http.Client
	endpoint   string
	headers    map[string]string
}

// NewClient creates a provider client that authenticates with a static bearer token.
func NewClient(cfg ClientConfig) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("skip trace API key not configured")
	}
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("skip trace base URL not configured")
	}
	path := cfg.Path
	if path == "" {
		path = DefaultSkipTracePath
	}

	base := &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
			Transport: &oauth2.Transport{
				Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.APIKey}),
				Base:   base,
			},
		},
		endpoint: strings.TrimRight(cfg.BaseURL, "/") + "/" + strings.TrimLeft(path, "/"),
		headers:  cfg.Headers,
	}, nil
}

// Lookup requests a skip trace for addr and returns the raw response body.
func (c *Client) Lookup(ctx context.Context, addr models.Address) ([]byte, error) {
	payload, err := json.Marshal(Request{
		Requests: []PropertyRequest{{
			PropertyAddress: PropertyAddress{
				Street: addr.Street,
				City:   addr.City,
				State:  addr.State,
				Zip:    addr.Zip,
			},
		}},
	})
	if err != nil {
		return nil, fmt.Errorf("encoding skip trace request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("building skip trace request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "Sold2Move-Lookup/1.0")
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.ObserveProviderRequest("error", time.Since(start))
		return nil, &ProviderError{Err: err}
	}
	defer resp.Body.Close()
	metrics.ObserveProviderRequest(strconv.Itoa(resp.StatusCode), time.Since(start))

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		perr := &ProviderError{Err: fmt.Errorf("reading response body: %w", err)}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			perr.StatusCode = resp.StatusCode
		}
		return nil, perr
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		logrus.WithFields(logrus.Fields{
			"component": "skiptrace",
			"status":    resp.StatusCode,
			"body":      truncate(string(body), 512),
		}).Warn("Skip trace provider returned an error status")
		return nil, &ProviderError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	return body, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
