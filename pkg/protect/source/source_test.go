package source

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"mercator-hq/aegis/pkg/config"
	"mercator-hq/aegis/pkg/protect"
)

func TestBuildRules_AllTypes(t *testing.T) {
	rules, err := BuildRules([]config.RuleConfig{
		{Type: "TOKEN_BUCKET", Mode: "LIVE", RefillRate: 10, Interval: "1m", Capacity: 100},
		{Type: "FIXED_WINDOW", Max: 50, Window: "30s"},
		{Type: "SLIDING_WINDOW", Mode: "LIVE", Max: 100, Interval: "1h"},
		{Type: "BOT", Mode: "LIVE", Deny: []string{"CURL"}},
		{Type: "EMAIL", Block: []string{"DISPOSABLE"}},
		{Type: "SENSITIVE_INFO", DenyEntities: []string{"CREDIT_CARD_NUMBER"}},
		{Type: "SHIELD", Mode: "LIVE"},
	})
	if err != nil {
		t.Fatalf("BuildRules failed: %v", err)
	}
	if len(rules) != 7 {
		t.Fatalf("expected 7 rules, got %d", len(rules))
	}

	// Modes flow through: LIVE where declared, DRY_RUN otherwise.
	if rules[0].Mode() != protect.ModeLive {
		t.Error("token bucket should be LIVE")
	}
	if rules[1].Mode() != protect.ModeDryRun {
		t.Error("fixed window should default to DRY_RUN")
	}

	// Durations flow through the parser.
	if got := rules[2].(*protect.RateLimitRule).Interval; got != 3600 {
		t.Errorf("sliding window interval = %d, want 3600", got)
	}
}

func TestBuildRules_Errors(t *testing.T) {
	if _, err := BuildRules([]config.RuleConfig{{Type: "NOPE"}}); err == nil {
		t.Error("expected an error for an unknown type")
	}
	if _, err := BuildRules([]config.RuleConfig{{Type: "SLIDING_WINDOW", Max: 1, Interval: "1 lightyear"}}); err == nil {
		t.Error("expected an error for a bad duration")
	}
	if _, err := BuildRules([]config.RuleConfig{{Type: "BOT", Deny: []string{"NOT_A_KNOWN_BOT"}}}); err == nil {
		t.Error("expected an error for an unknown bot identifier")
	}
}

const watcherConfig = `
key: ajkey_test
rules:
  - type: BOT
    mode: LIVE
    deny: [CURL]
`

type quietLogger struct{}

func (quietLogger) Debug(string, ...any) {}
func (quietLogger) Warn(string, ...any)  {}
func (quietLogger) Error(string, ...any) {}

func TestWatcher_DeliversReload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "aegis.yaml")
	if err := os.WriteFile(path, []byte(watcherConfig), 0o600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	watcher, err := NewWatcher(path, quietLogger{})
	if err != nil {
		t.Fatalf("NewWatcher failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	events := watcher.Watch(ctx)

	// Give the watch loop a beat before touching the file.
	time.Sleep(50 * time.Millisecond)

	updated := watcherConfig + "  - type: SHIELD\n    mode: LIVE\n"
	if err := os.WriteFile(path, []byte(updated), 0o600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	select {
	case event := <-events:
		if event.Err != nil {
			t.Fatalf("reload failed: %v", event.Err)
		}
		if len(event.Rules) != 2 {
			t.Errorf("expected 2 rules after reload, got %d", len(event.Rules))
		}
	case <-time.After(5 * time.Second):
		t.Fatal("expected a reload event")
	}
}

func TestWatcher_ReportsBadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "aegis.yaml")
	if err := os.WriteFile(path, []byte(watcherConfig), 0o600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	watcher, err := NewWatcher(path, quietLogger{})
	if err != nil {
		t.Fatalf("NewWatcher failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	events := watcher.Watch(ctx)

	time.Sleep(50 * time.Millisecond)
	if err := os.WriteFile(path, []byte("rules: [{type: NOPE}]"), 0o600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	select {
	case event := <-events:
		if event.Err == nil {
			t.Error("expected an error event for a bad config")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("expected an event")
	}
}
