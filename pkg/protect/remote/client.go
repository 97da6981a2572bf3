package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"mercator-hq/aegis/pkg/protect"
)

const (
	decidePath = "/v1/decide"
	reportPath = "/v1/report"

	defaultTimeout = 1 * time.Second
)

// Config configures the remote decision client.
type Config struct {
	// BaseURL is the decision service endpoint, without a trailing
	// slash. Required.
	BaseURL string

	// Key is the site key sent as a bearer token. Required.
	Key string

	// Timeout bounds every request. The decide call sits in the
	// request path, so the default is deliberately tight (1s); the
	// engine fails open when it trips.
	Timeout time.Duration

	// MaxIdleConns caps pooled connections. Zero means 10.
	MaxIdleConns int
}

// APIError is a non-2xx response from the decision service.
type APIError struct {
	StatusCode int
	Body       string
}

// Error returns the error message.
func (e *APIError) Error() string {
	return fmt.Sprintf("decision service returned %d: %s", e.StatusCode, e.Body)
}

// Client talks to the remote decision service over HTTPS+JSON. It
// implements protect.Client and is safe for concurrent use.
type Client struct {
	config Config
	client *http.Client
}

var _ protect.Client = (*Client)(nil)

// New creates a remote client with a pooled HTTP transport.
func New(config Config) (*Client, error) {
	if config.BaseURL == "" {
		return nil, fmt.Errorf("base URL is required")
	}
	if config.Key == "" {
		return nil, fmt.Errorf("site key is required")
	}
	if config.Timeout <= 0 {
		config.Timeout = defaultTimeout
	}
	if config.MaxIdleConns == 0 {
		config.MaxIdleConns = 10
	}

	transport := &http.Transport{
		MaxIdleConns:        config.MaxIdleConns,
		MaxIdleConnsPerHost: config.MaxIdleConns,
		IdleConnTimeout:     90 * time.Second,
		ForceAttemptHTTP2:   true,
	}

	return &Client{
		config: config,
		client: &http.Client{
			Transport: transport,
			Timeout:   config.Timeout,
		},
	}, nil
}

// Decide requests an authoritative decision for the request.
func (c *Client) Decide(ctx context.Context, ectx *protect.Context, details *protect.RequestDetails, rules []protect.Rule) (*protect.Decision, error) {
	payload := &decideRequest{
		Context: encodeContext(ectx),
		Details: encodeDetails(details),
		Rules:   encodeRules(rules),
	}

	var dto decisionDTO
	if err := c.post(ctx, decidePath, payload, &dto); err != nil {
		return nil, err
	}
	return decodeDecision(&dto)
}

// Report delivers the final decision and rule outcomes.
func (c *Client) Report(ctx context.Context, ectx *protect.Context, details *protect.RequestDetails, decision *protect.Decision, rules []protect.Rule) error {
	payload := &reportRequest{
		Context:  encodeContext(ectx),
		Details:  encodeDetails(details),
		Decision: encodeDecision(decision),
		Rules:    encodeRules(rules),
	}
	return c.post(ctx, reportPath, payload, nil)
}

// post sends a JSON request and optionally decodes a JSON response.
func (c *Client) post(ctx context.Context, path string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.config.Key)

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// Cap the echoed body; error bodies are for diagnostics only.
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &APIError{StatusCode: resp.StatusCode, Body: string(snippet)}
	}

	if out == nil {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
