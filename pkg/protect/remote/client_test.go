package remote

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"mercator-hq/aegis/pkg/protect"
	"mercator-hq/aegis/pkg/protect/headers"
)

func testContext() *protect.Context {
	return &protect.Context{
		Key:             "site-key",
		Fingerprint:     "fp1:abc",
		Characteristics: []string{"ip.src"},
		Runtime:         "go",
	}
}

func testDetails() *protect.RequestDetails {
	h := headers.New()
	h.Add("User-Agent", "curl/8.0")
	return &protect.RequestDetails{
		IP:      "203.0.113.7",
		Method:  "POST",
		Path:    "/signup",
		Headers: h,
		Email:   "a@example.com",
		Extra:   map[string]string{"userId": "42"},
	}
}

func TestNew_Validation(t *testing.T) {
	if _, err := New(Config{Key: "k"}); err == nil {
		t.Error("expected an error without a base URL")
	}
	if _, err := New(Config{BaseURL: "https://example.com"}); err == nil {
		t.Error("expected an error without a key")
	}

	client, err := New(Config{BaseURL: "https://example.com", Key: "k"})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if client.config.Timeout != defaultTimeout {
		t.Errorf("timeout default = %v", client.config.Timeout)
	}
}

func TestDecide_RoundTrip(t *testing.T) {
	var captured decideRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != decidePath {
			t.Errorf("path = %q", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer site-key" {
			t.Errorf("authorization = %q", got)
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Errorf("failed to decode request: %v", err)
		}

		json.NewEncoder(w).Encode(&decisionDTO{
			ID:         "d-1",
			Conclusion: protect.ConclusionDeny,
			TTL:        60,
			Reason:     &reasonDTO{Kind: protect.ReasonKindBot, Bot: &protect.BotReason{Denied: []string{"CURL"}}},
			Results: []*ruleResultDTO{{
				RuleID:     "r-1",
				TTL:        60,
				State:      protect.StateRun,
				Conclusion: protect.ConclusionDeny,
				Reason:     &reasonDTO{Kind: protect.ReasonKindBot, Bot: &protect.BotReason{Denied: []string{"CURL"}}},
			}},
		})
	}))
	defer server.Close()

	client, err := New(Config{BaseURL: server.URL, Key: "site-key", Timeout: 2 * time.Second})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	rules, err := protect.DetectBot(protect.DetectBotOptions{Mode: protect.ModeLive, Deny: []string{"CURL"}})
	if err != nil {
		t.Fatalf("DetectBot failed: %v", err)
	}

	decision, err := client.Decide(context.Background(), testContext(), testDetails(), rules)
	if err != nil {
		t.Fatalf("Decide failed: %v", err)
	}

	if !decision.IsDenied() || decision.TTL != 60 {
		t.Errorf("decision = %s ttl=%d", decision.Conclusion, decision.TTL)
	}
	reason, ok := decision.Reason.(*protect.BotReason)
	if !ok || len(reason.Denied) != 1 {
		t.Errorf("reason = %#v", decision.Reason)
	}
	if len(decision.Results) != 1 || decision.Results[0].State != protect.StateRun {
		t.Errorf("results = %#v", decision.Results)
	}

	// The request carried the context, details, and rule wire shapes.
	if captured.Context.Key != "site-key" || captured.Context.Fingerprint != "fp1:abc" {
		t.Errorf("captured context = %#v", captured.Context)
	}
	if captured.Details.IP != "203.0.113.7" || captured.Details.Extra["userId"] != "42" {
		t.Errorf("captured details = %#v", captured.Details)
	}
	if len(captured.Details.Headers) != 1 || captured.Details.Headers[0][0] != "user-agent" {
		t.Errorf("captured headers = %v", captured.Details.Headers)
	}
	if len(captured.Rules) != 1 || captured.Rules[0].Kind != protect.RuleKindBot {
		t.Errorf("captured rules = %#v", captured.Rules)
	}
}

func TestDecide_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad key", http.StatusUnauthorized)
	}))
	defer server.Close()

	client, err := New(Config{BaseURL: server.URL, Key: "site-key"})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	_, err = client.Decide(context.Background(), testContext(), testDetails(), nil)
	apiErr, ok := err.(*APIError)
	if !ok {
		t.Fatalf("expected *APIError, got %v", err)
	}
	if apiErr.StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d", apiErr.StatusCode)
	}
}

func TestDecide_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	client, err := New(Config{BaseURL: server.URL, Key: "site-key", Timeout: 20 * time.Millisecond})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if _, err := client.Decide(context.Background(), testContext(), testDetails(), nil); err == nil {
		t.Error("expected a timeout error")
	}
}

func TestReport(t *testing.T) {
	var captured reportRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != reportPath {
			t.Errorf("path = %q", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Errorf("failed to decode report: %v", err)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	client, err := New(Config{BaseURL: server.URL, Key: "site-key"})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	decision := &protect.Decision{
		ID:         "d-2",
		Conclusion: protect.ConclusionError,
		Reason:     &protect.ErrorReason{Message: "remote decision failed: boom"},
	}
	if err := client.Report(context.Background(), testContext(), testDetails(), decision, nil); err != nil {
		t.Fatalf("Report failed: %v", err)
	}

	if captured.Decision.ID != "d-2" || captured.Decision.Conclusion != protect.ConclusionError {
		t.Errorf("captured decision = %#v", captured.Decision)
	}
	if captured.Decision.Reason.Kind != protect.ReasonKindError {
		t.Errorf("captured reason kind = %s", captured.Decision.Reason.Kind)
	}
}
