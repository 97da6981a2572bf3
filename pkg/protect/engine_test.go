package protect

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"mercator-hq/aegis/pkg/protect/analyze"
)

// ============================================================================
// Test doubles
// ============================================================================

// stubClient is a scripted remote client. Reports arrive on a buffered
// channel because the engine fires them asynchronously.
type stubClient struct {
	mu           sync.Mutex
	decideResult *Decision
	decideErr    error
	decideCalls  int
	decidedRules [][]Rule

	reports chan reportCall
}

type reportCall struct {
	decision *Decision
	rules    []Rule
}

func newStubClient() *stubClient {
	return &stubClient{
		decideResult: &Decision{ID: "remote", Conclusion: ConclusionAllow, Reason: &GenericReason{}},
		reports:      make(chan reportCall, 16),
	}
}

func (c *stubClient) Decide(ctx context.Context, ectx *Context, details *RequestDetails, rules []Rule) (*Decision, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.decideCalls++
	c.decidedRules = append(c.decidedRules, rules)
	if c.decideErr != nil {
		return nil, c.decideErr
	}
	return c.decideResult, nil
}

func (c *stubClient) Report(ctx context.Context, ectx *Context, details *RequestDetails, decision *Decision, rules []Rule) error {
	// Non-blocking: benchmarks report far more often than tests drain.
	select {
	case c.reports <- reportCall{decision: decision, rules: rules}:
	default:
	}
	return nil
}

func (c *stubClient) calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.decideCalls
}

func (c *stubClient) lastRules() []Rule {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.decidedRules) == 0 {
		return nil
	}
	return c.decidedRules[len(c.decidedRules)-1]
}

// waitReport asserts one asynchronous report arrives.
func waitReport(t *testing.T, c *stubClient) reportCall {
	t.Helper()
	select {
	case call := <-c.reports:
		return call
	case <-time.After(2 * time.Second):
		t.Fatal("expected a report call")
		return reportCall{}
	}
}

// stubAnalyzer overrides individual analyzer operations and falls back
// to the built-in local analyzer for the rest.
type stubAnalyzer struct {
	local *analyze.Local

	mu              sync.Mutex
	botResult       *analyze.BotResult
	botErr          error
	botCalls        int
	emailResult     *analyze.EmailResult
	emailErr        error
	sensitiveResult *analyze.SensitiveInfoResult
}

func newStubAnalyzer() *stubAnalyzer {
	return &stubAnalyzer{local: analyze.NewLocal()}
}

func (a *stubAnalyzer) GenerateFingerprint(ctx context.Context, key string, characteristics []string, req map[string]string) (string, error) {
	return a.local.GenerateFingerprint(ctx, key, characteristics, req)
}

func (a *stubAnalyzer) DetectBot(ctx context.Context, req map[string]string, cfg analyze.BotConfig) (*analyze.BotResult, error) {
	a.mu.Lock()
	a.botCalls++
	result, err := a.botResult, a.botErr
	a.mu.Unlock()
	if err != nil {
		return nil, err
	}
	if result != nil {
		return result, nil
	}
	return a.local.DetectBot(ctx, req, cfg)
}

func (a *stubAnalyzer) IsValidEmail(ctx context.Context, email string, opts analyze.EmailOptions) (*analyze.EmailResult, error) {
	if a.emailErr != nil {
		return nil, a.emailErr
	}
	if a.emailResult != nil {
		return a.emailResult, nil
	}
	return a.local.IsValidEmail(ctx, email, opts)
}

func (a *stubAnalyzer) DetectSensitiveInfo(ctx context.Context, body string, cfg analyze.SensitiveInfoConfig) (*analyze.SensitiveInfoResult, error) {
	if a.sensitiveResult != nil {
		return a.sensitiveResult, nil
	}
	return a.local.DetectSensitiveInfo(ctx, body, cfg)
}

func (a *stubAnalyzer) botCallCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.botCalls
}

// testLogger records messages by level.
type testLogger struct {
	mu     sync.Mutex
	debugs []string
	warns  []string
	errs   []string
}

func (l *testLogger) Debug(format string, args ...any) { l.record(&l.debugs, format, args...) }
func (l *testLogger) Warn(format string, args ...any)  { l.record(&l.warns, format, args...) }
func (l *testLogger) Error(format string, args ...any) { l.record(&l.errs, format, args...) }

func (l *testLogger) record(dst *[]string, format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	*dst = append(*dst, fmt.Sprintf(format, args...))
}

func (l *testLogger) warnCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.warns)
}

// newTestEngine builds an engine with the given rules and doubles.
func newTestEngine(t *testing.T, rules []Rule, client *stubClient, analyzer analyze.Analyzer) (*Engine, *testLogger) {
	t.Helper()
	log := &testLogger{}
	engine, err := New(Options{
		Key:      "site-key",
		Rules:    rules,
		Client:   client,
		Log:      log,
		Analyzer: analyzer,
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return engine, log
}

func emailRequest(email string) *Request {
	return &Request{
		IP:      "203.0.113.7",
		Method:  "POST",
		Path:    "/signup",
		Headers: map[string]string{"User-Agent": "Mozilla/5.0"},
		Email:   email,
	}
}

// must unwraps a rule-constructor result; construction in tests is
// expected to succeed.
func must(rules []Rule, err error) []Rule {
	if err != nil {
		panic(err)
	}
	return rules
}

// ============================================================================
// Construction
// ============================================================================

func TestNew_RequiresClientAndLogger(t *testing.T) {
	if _, err := New(Options{Log: &testLogger{}}); !errors.Is(err, ErrMissingClient) {
		t.Errorf("expected ErrMissingClient, got %v", err)
	}
	if _, err := New(Options{Client: newStubClient()}); !errors.Is(err, ErrMissingLogger) {
		t.Errorf("expected ErrMissingLogger, got %v", err)
	}
}

// ============================================================================
// Local denials
// ============================================================================

func TestProtect_EmailDeny(t *testing.T) {
	client := newStubClient()
	analyzer := newStubAnalyzer()
	analyzer.emailResult = &analyze.EmailResult{
		Validity: analyze.ValidityInvalid,
		Blocked:  []analyze.EmailType{analyze.EmailTypeInvalid},
	}

	rules := must(ValidateEmail(ValidateEmailOptions{Mode: ModeLive}))
	engine, _ := newTestEngine(t, rules, client, analyzer)

	decision := engine.Protect(context.Background(), &Request{Email: "not-an-email"})

	if !decision.IsDenied() {
		t.Fatalf("expected DENY, got %s", decision.Conclusion)
	}
	reason, ok := decision.Reason.(*EmailReason)
	if !ok {
		t.Fatalf("expected EmailReason, got %T", decision.Reason)
	}
	if len(reason.EmailTypes) != 1 || reason.EmailTypes[0] != analyze.EmailTypeInvalid {
		t.Errorf("expected [INVALID], got %v", reason.EmailTypes)
	}
	if decision.Results[0].Conclusion != ConclusionDeny {
		t.Errorf("expected rule result DENY, got %s", decision.Results[0].Conclusion)
	}
	if client.calls() != 0 {
		t.Errorf("decide should not be called after a LIVE local DENY")
	}

	call := waitReport(t, client)
	if !call.decision.IsDenied() {
		t.Errorf("reported decision should be the DENY")
	}
	if len(call.rules) != 1 {
		t.Errorf("expected 1 reported rule, got %d", len(call.rules))
	}
}

func TestProtect_BotDenyWithTTL(t *testing.T) {
	client := newStubClient()
	analyzer := newStubAnalyzer()
	analyzer.botResult = &analyze.BotResult{Denied: []string{"CURL"}}

	rules := must(DetectBot(DetectBotOptions{Mode: ModeLive, Deny: []string{"CURL"}}))
	engine, _ := newTestEngine(t, rules, client, analyzer)

	decision := engine.Protect(context.Background(), &Request{
		IP:      "203.0.113.7",
		Headers: map[string]string{"User-Agent": "curl/8.0"},
	})

	if !decision.IsDenied() {
		t.Fatalf("expected DENY, got %s", decision.Conclusion)
	}
	if decision.TTL != 60 {
		t.Errorf("expected TTL 60, got %d", decision.TTL)
	}
	if _, ok := decision.Reason.(*BotReason); !ok {
		t.Errorf("expected BotReason, got %T", decision.Reason)
	}
}

func TestProtect_DryRunDenyIsOverridden(t *testing.T) {
	client := newStubClient()
	analyzer := newStubAnalyzer()
	analyzer.emailResult = &analyze.EmailResult{
		Validity: analyze.ValidityInvalid,
		Blocked:  []analyze.EmailType{analyze.EmailTypeInvalid},
	}

	rules := must(ValidateEmail(ValidateEmailOptions{Mode: ModeDryRun}))
	engine, log := newTestEngine(t, rules, client, analyzer)

	decision := engine.Protect(context.Background(), &Request{Email: "not-an-email"})

	if client.calls() != 1 {
		t.Fatalf("decide should be called despite the dry-run DENY")
	}
	if decision.Conclusion != ConclusionAllow {
		t.Errorf("expected the remote ALLOW, got %s", decision.Conclusion)
	}
	if log.warnCount() == 0 {
		t.Error("expected an override warning")
	}

	// The intermediate DENY is still reported once.
	call := waitReport(t, client)
	if !call.decision.IsDenied() {
		t.Errorf("expected the reported intermediate to be DENY, got %s", call.decision.Conclusion)
	}
}

// ============================================================================
// Remote escalation
// ============================================================================

func TestProtect_RemoteOnlyRulesGoRemote(t *testing.T) {
	client := newStubClient()
	rules := must(Shield(ShieldOptions{Mode: ModeLive}))
	engine, _ := newTestEngine(t, rules, client, newStubAnalyzer())

	decision := engine.Protect(context.Background(), emailRequest("a@example.com"))

	if client.calls() != 1 {
		t.Fatalf("expected one decide call, got %d", client.calls())
	}
	if decision.ID != "remote" {
		t.Errorf("expected the remote decision to be returned")
	}
	if len(client.lastRules()) != 1 {
		t.Errorf("expected the shield rule to be sent remotely")
	}
}

func TestProtect_RemoteFailureFailsOpen(t *testing.T) {
	client := newStubClient()
	client.decideErr = errors.New("connection refused")

	rules := must(Shield())
	engine, _ := newTestEngine(t, rules, client, newStubAnalyzer())

	decision := engine.Protect(context.Background(), emailRequest("a@example.com"))

	if !decision.IsErrored() {
		t.Fatalf("expected ERROR, got %s", decision.Conclusion)
	}
	if decision.IsDenied() {
		t.Error("a remote failure must never deny")
	}
	if len(decision.Results) != 1 {
		t.Errorf("local results must be preserved, got %d", len(decision.Results))
	}

	call := waitReport(t, client)
	if !call.decision.IsErrored() {
		t.Errorf("the ERROR decision should be reported")
	}
}

func TestProtect_CancelledContext(t *testing.T) {
	client := newStubClient()
	rules := must(Shield())
	engine, _ := newTestEngine(t, rules, client, newStubAnalyzer())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	decision := engine.Protect(ctx, emailRequest("a@example.com"))
	if !decision.IsErrored() {
		t.Errorf("expected ERROR on cancellation, got %s", decision.Conclusion)
	}
}

// ============================================================================
// Block cache
// ============================================================================

func TestProtect_SecondRequestServedFromCache(t *testing.T) {
	client := newStubClient()
	analyzer := newStubAnalyzer()
	analyzer.botResult = &analyze.BotResult{Denied: []string{"CURL"}}

	rules := must(DetectBot(DetectBotOptions{Mode: ModeLive, Deny: []string{"CURL"}}))
	engine, _ := newTestEngine(t, rules, client, analyzer)

	req := &Request{IP: "203.0.113.7", Headers: map[string]string{"User-Agent": "curl/8.0"}}

	first := engine.Protect(context.Background(), req)
	if !first.IsDenied() {
		t.Fatalf("expected first DENY, got %s", first.Conclusion)
	}
	callsAfterFirst := analyzer.botCallCount()

	second := engine.Protect(context.Background(), req)
	if !second.IsDenied() {
		t.Fatalf("expected cached DENY, got %s", second.Conclusion)
	}
	if analyzer.botCallCount() != callsAfterFirst {
		t.Error("no local rule should run on a cache hit")
	}
	if second.TTL == 0 || second.TTL > 60 {
		t.Errorf("expected remaining cache TTL in (0, 60], got %d", second.TTL)
	}
	for _, result := range second.Results {
		if result.State != StateCached {
			t.Errorf("expected CACHED results on a cache hit, got %s", result.State)
		}
	}
	if first.FromCache() {
		t.Error("the first decision was evaluated, not cached")
	}
	if !second.FromCache() {
		t.Error("the second decision should report the cache path")
	}
}

func TestProtect_DryRunDenyIsNotCached(t *testing.T) {
	client := newStubClient()
	analyzer := newStubAnalyzer()
	analyzer.botResult = &analyze.BotResult{Denied: []string{"CURL"}}

	rules := must(DetectBot(DetectBotOptions{Mode: ModeDryRun, Deny: []string{"CURL"}}))
	engine, _ := newTestEngine(t, rules, client, analyzer)

	req := &Request{IP: "203.0.113.7", Headers: map[string]string{"User-Agent": "curl/8.0"}}
	engine.Protect(context.Background(), req)
	engine.Protect(context.Background(), req)

	// Both requests must run the rule: nothing was cached.
	if analyzer.botCallCount() != 2 {
		t.Errorf("expected 2 bot evaluations, got %d", analyzer.botCallCount())
	}
}

func TestProtect_RemoteDenyWithTTLIsCached(t *testing.T) {
	client := newStubClient()
	client.decideResult = &Decision{
		ID:         "remote-deny",
		Conclusion: ConclusionDeny,
		TTL:        120,
		Reason:     &ShieldReason{ShieldTriggered: true},
	}

	rules := must(Shield(ShieldOptions{Mode: ModeLive}))
	engine, _ := newTestEngine(t, rules, client, newStubAnalyzer())

	req := emailRequest("a@example.com")
	first := engine.Protect(context.Background(), req)
	if !first.IsDenied() {
		t.Fatalf("expected remote DENY, got %s", first.Conclusion)
	}

	second := engine.Protect(context.Background(), req)
	if !second.IsDenied() {
		t.Fatalf("expected cached DENY, got %s", second.Conclusion)
	}
	if client.calls() != 1 {
		t.Errorf("second request should not reach the remote, got %d calls", client.calls())
	}
}

// ============================================================================
// Boundaries
// ============================================================================

func TestProtect_TooManyRules(t *testing.T) {
	client := newStubClient()

	var rules []Rule
	for i := 0; i < 11; i++ {
		shield := must(Shield())
		rules = append(rules, shield...)
	}

	engine, _ := newTestEngine(t, rules, client, newStubAnalyzer())
	decision := engine.Protect(context.Background(), emailRequest("a@example.com"))

	if !decision.IsErrored() {
		t.Fatalf("expected ERROR, got %s", decision.Conclusion)
	}
	reason, ok := decision.Reason.(*ErrorReason)
	if !ok || reason.Message != "Only 10 rules may be specified" {
		t.Errorf("unexpected reason: %#v", decision.Reason)
	}
	if len(decision.Results) != 0 {
		t.Errorf("expected no results, got %d", len(decision.Results))
	}

	call := waitReport(t, client)
	if len(call.rules) != 0 {
		t.Errorf("expected an empty rule list in the report, got %d", len(call.rules))
	}
}

func TestProtect_ExactlyTenRules(t *testing.T) {
	client := newStubClient()

	var rules []Rule
	for i := 0; i < 10; i++ {
		rules = append(rules, must(Shield())...)
	}

	engine, _ := newTestEngine(t, rules, client, newStubAnalyzer())
	decision := engine.Protect(context.Background(), emailRequest("a@example.com"))

	if decision.IsErrored() {
		t.Fatalf("10 rules must evaluate normally, got %s", decision.Conclusion)
	}
	if len(client.lastRules()) != 10 {
		t.Errorf("expected 10 rules sent remotely, got %d", len(client.lastRules()))
	}
}

func TestProtect_EmptyRuleListSkipsCache(t *testing.T) {
	client := newStubClient()
	engine, log := newTestEngine(t, nil, client, newStubAnalyzer())

	req := emailRequest("a@example.com")

	// Pre-populate the engine's cache for this fingerprint directly;
	// the empty-rule engine must ignore it.
	details := newRequestDetails(req)
	fp, err := engine.analyzer.GenerateFingerprint(context.Background(), engine.key, engine.characteristics, details.projection())
	if err != nil {
		t.Fatalf("fingerprint failed: %v", err)
	}
	engine.cache.setTTL(fp, &ShieldReason{ShieldTriggered: true}, 300)

	decision := engine.Protect(context.Background(), req)

	if client.calls() != 1 {
		t.Fatalf("expected decide to be called, got %d", client.calls())
	}
	if decision.ID != "remote" {
		t.Errorf("expected the remote decision")
	}
	if log.warnCount() == 0 {
		t.Error("expected a no-rules warning")
	}
}

func TestProtect_NilRequest(t *testing.T) {
	client := newStubClient()
	rules := must(Shield())
	engine, _ := newTestEngine(t, rules, client, newStubAnalyzer())

	decision := engine.Protect(context.Background(), nil)
	if decision == nil {
		t.Fatal("expected a decision for a nil request")
	}
	if decision.IsDenied() {
		t.Errorf("a nil request must not be denied locally, got %s", decision.Conclusion)
	}
}

// ============================================================================
// Error recovery
// ============================================================================

func TestProtect_RuleErrorDoesNotStopEvaluation(t *testing.T) {
	client := newStubClient()
	analyzer := newStubAnalyzer()

	// Email rule will fail validation (no email on the request); the
	// bot rule still runs (before it, by priority) and evaluation still
	// reaches the remote.
	emailRules := must(ValidateEmail(ValidateEmailOptions{Mode: ModeLive}))
	botRules := must(DetectBot(DetectBotOptions{Mode: ModeLive, Deny: []string{"CURL"}}))
	rules := append(append([]Rule{}, emailRules...), botRules...)

	engine, _ := newTestEngine(t, rules, client, analyzer)
	decision := engine.Protect(context.Background(), &Request{
		IP:      "203.0.113.7",
		Headers: map[string]string{"User-Agent": "Mozilla/5.0"},
	})

	if len(decision.Results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(decision.Results))
	}

	// Results are in priority order: bot (4) before email (5).
	botResult, emailResult := decision.Results[0], decision.Results[1]
	if botResult.State != StateRun || botResult.Conclusion != ConclusionAllow {
		t.Errorf("bot rule should have run and allowed, got %s/%s", botResult.State, botResult.Conclusion)
	}
	if emailResult.State != StateRun || emailResult.Conclusion != ConclusionError {
		t.Errorf("email rule should be an ERROR, got %s/%s", emailResult.State, emailResult.Conclusion)
	}
	if client.calls() != 1 {
		t.Errorf("evaluation should still escalate to the remote")
	}
}

func TestProtect_AnalyzerErrorBecomesRuleError(t *testing.T) {
	client := newStubClient()
	analyzer := newStubAnalyzer()
	analyzer.botErr = errors.New("analyzer exploded")

	rules := must(DetectBot(DetectBotOptions{Mode: ModeLive, Deny: []string{"CURL"}}))
	engine, _ := newTestEngine(t, rules, client, analyzer)

	decision := engine.Protect(context.Background(), &Request{
		IP:      "203.0.113.7",
		Headers: map[string]string{"User-Agent": "curl/8.0"},
	})

	if decision.Results[0].Conclusion != ConclusionError {
		t.Errorf("expected ERROR result, got %s", decision.Results[0].Conclusion)
	}
	if decision.IsDenied() {
		t.Error("an analyzer failure must not deny")
	}
}

// ============================================================================
// Ordering and views
// ============================================================================

func TestProtect_RuleOrderDoesNotMatter(t *testing.T) {
	run := func(rules []Rule) Conclusion {
		client := newStubClient()
		analyzer := newStubAnalyzer()
		analyzer.emailResult = &analyze.EmailResult{
			Validity: analyze.ValidityInvalid,
			Blocked:  []analyze.EmailType{analyze.EmailTypeInvalid},
		}
		engine, _ := newTestEngine(t, rules, client, analyzer)
		return engine.Protect(context.Background(), emailRequest("bad")).Conclusion
	}

	emailRules := must(ValidateEmail(ValidateEmailOptions{Mode: ModeLive}))
	shieldRules := must(Shield(ShieldOptions{Mode: ModeLive}))
	botRules := must(DetectBot(DetectBotOptions{Mode: ModeLive, Deny: []string{"CURL"}}))

	forward := append(append(append([]Rule{}, emailRules...), shieldRules...), botRules...)
	backward := append(append(append([]Rule{}, botRules...), shieldRules...), emailRules...)

	if a, b := run(forward), run(backward); a != b {
		t.Errorf("rule order changed the outcome: %s vs %s", a, b)
	}
}

func TestWithRule_ReturnsIndependentView(t *testing.T) {
	client := newStubClient()
	engine, _ := newTestEngine(t, nil, client, newStubAnalyzer())

	shield := must(Shield())
	view := engine.WithRule(shield[0])

	if len(engine.rules) != 0 {
		t.Errorf("parent engine must be unaffected, has %d rules", len(engine.rules))
	}
	if len(view.rules) != 1 {
		t.Errorf("view should have 1 rule, has %d", len(view.rules))
	}

	// Chaining sorts by priority: sensitive-info (1) lands before
	// shield (2) even though it was added last.
	sensitive := must(DetectSensitiveInfo())
	chained := view.WithRule(sensitive[0])
	if chained.rules[0].Kind() != RuleKindSensitiveInfo {
		t.Errorf("expected sensitive-info first, got %s", chained.rules[0].Kind())
	}
}

func TestWithRule_SharesBlockCache(t *testing.T) {
	client := newStubClient()
	analyzer := newStubAnalyzer()
	analyzer.botResult = &analyze.BotResult{Denied: []string{"CURL"}}

	rules := must(DetectBot(DetectBotOptions{Mode: ModeLive, Deny: []string{"CURL"}}))
	engine, _ := newTestEngine(t, rules, client, analyzer)

	req := &Request{IP: "203.0.113.7", Headers: map[string]string{"User-Agent": "curl/8.0"}}
	if decision := engine.Protect(context.Background(), req); !decision.IsDenied() {
		t.Fatalf("expected DENY, got %s", decision.Conclusion)
	}

	shield := must(Shield())
	view := engine.WithRule(shield[0])

	decision := view.Protect(context.Background(), req)
	if !decision.IsDenied() {
		t.Errorf("the view should observe the parent's cached block, got %s", decision.Conclusion)
	}
}

func TestProtect_InjectsEngineCharacteristics(t *testing.T) {
	client := newStubClient()

	rules := must(SlidingWindow(SlidingWindowOptions{Mode: ModeLive, Max: 10, Interval: 60}))
	engine, _ := newTestEngine(t, rules, client, newStubAnalyzer())

	engine.Protect(context.Background(), emailRequest("a@example.com"))

	sent := client.lastRules()
	if len(sent) != 1 {
		t.Fatalf("expected 1 rule, got %d", len(sent))
	}
	rl, ok := sent[0].(*RateLimitRule)
	if !ok {
		t.Fatalf("expected a rate-limit rule, got %T", sent[0])
	}
	if len(rl.Characteristics) != 1 || rl.Characteristics[0] != "ip.src" {
		t.Errorf("expected injected [ip.src], got %v", rl.Characteristics)
	}

	// The configured rule itself stays untouched.
	if len(rules[0].(*RateLimitRule).Characteristics) != 0 {
		t.Error("injection must not mutate the configured rule")
	}
}

func TestProtect_MissingUserCharacteristic(t *testing.T) {
	client := newStubClient()
	log := &testLogger{}
	engine, err := New(Options{
		Key:             "site-key",
		Characteristics: []string{"userId"},
		Client:          client,
		Log:             log,
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	decision := engine.Protect(context.Background(), emailRequest("a@example.com"))
	if !decision.IsErrored() {
		t.Errorf("expected ERROR for a missing user-defined characteristic, got %s", decision.Conclusion)
	}

	// Supplying the value makes it work.
	req := emailRequest("a@example.com")
	req.Extra = map[string]any{"userId": 42}
	decision = engine.Protect(context.Background(), req)
	if decision.IsErrored() {
		t.Errorf("expected success with the characteristic supplied, got %s", decision.Conclusion)
	}
}

// ============================================================================
// Sensitive info
// ============================================================================

func TestProtect_SensitiveInfoDeniesOnBody(t *testing.T) {
	client := newStubClient()

	rules := must(DetectSensitiveInfo(DetectSensitiveInfoOptions{
		Mode: ModeLive,
		Deny: []analyze.EntityType{analyze.EntityCreditCardNumber},
	}))
	engine, _ := newTestEngine(t, rules, client, newStubAnalyzer())

	req := emailRequest("a@example.com")
	req.Body = "card: 4111111111111111 thanks"

	decision := engine.Protect(context.Background(), req)
	if !decision.IsDenied() {
		t.Fatalf("expected DENY for a credit card in the body, got %s", decision.Conclusion)
	}
	reason, ok := decision.Reason.(*SensitiveInfoReason)
	if !ok {
		t.Fatalf("expected SensitiveInfoReason, got %T", decision.Reason)
	}
	if len(reason.Denied) == 0 || reason.Denied[0].Identified != analyze.EntityCreditCardNumber {
		t.Errorf("expected a denied credit card entity, got %v", reason.Denied)
	}
}

func TestProtect_SensitiveInfoWithoutBodyIsError(t *testing.T) {
	client := newStubClient()

	rules := must(DetectSensitiveInfo(DetectSensitiveInfoOptions{Mode: ModeLive}))
	engine, _ := newTestEngine(t, rules, client, newStubAnalyzer())

	decision := engine.Protect(context.Background(), emailRequest("a@example.com"))

	if decision.IsDenied() {
		t.Error("a missing body must not deny")
	}
	if decision.Results[0].Conclusion != ConclusionError {
		t.Errorf("expected ERROR result for the missing body, got %s", decision.Results[0].Conclusion)
	}
}
