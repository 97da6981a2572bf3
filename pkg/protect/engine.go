package protect

import (
	"context"
	"time"

	"github.com/google/uuid"

	"mercator-hq/aegis/pkg/protect/analyze"
)

const (
	// MaxRules is the most rules a single Protect call evaluates.
	MaxRules = 10

	// engineRuntime tags decisions with the executing platform.
	engineRuntime = "go"

	// reportTimeout bounds the asynchronous report call.
	reportTimeout = 5 * time.Second
)

// defaultCharacteristics keys fingerprints and rate limits by client IP
// when the caller configures nothing else.
var defaultCharacteristics = []string{analyze.CharacteristicIP}

// Options configures a new Engine.
type Options struct {
	// Key is the site identifier sent with every remote call.
	Key string

	// Rules is the configured rule set, at most MaxRules entries.
	Rules []Rule

	// Characteristics key the fingerprint; defaults to ["ip.src"].
	Characteristics []string

	// Client is the remote decision transport. Required.
	Client Client

	// Log is the diagnostics sink. Required.
	Log Logger

	// Analyzer overrides the local analyzer; defaults to the built-in.
	Analyzer analyze.Analyzer
}

// Engine owns a configured rule set and produces a Decision per
// request.
//
// # Evaluation order
//
// Rules are stable-sorted by priority at construction, so permutations
// of the same rule set evaluate identically. Protect computes the
// client fingerprint, short-circuits on a cached block, evaluates
// local rules in order (the first LIVE DENY wins), and escalates to
// the remote service for everything local evaluation cannot decide.
//
// # Fail-open
//
// Protect never returns an error: remote failures, cancellation, and
// rule panics-by-contract (errors) all surface as ERROR decisions that
// callers should treat as allow unless they implement their own policy.
//
// # Concurrency
//
// An Engine is immutable after construction and safe for concurrent
// use. The only shared mutable state is the block cache, whose
// individual operations are atomic. WithRule views share the parent's
// client, logger, and cache.
type Engine struct {
	key             string
	rules           []Rule
	characteristics []string
	client          Client
	log             Logger
	analyzer        analyze.Analyzer
	cache           *blockCache
}

// New creates an engine from options. It fails when Client or Log is
// absent; everything else has defaults.
func New(opts Options) (*Engine, error) {
	if opts.Client == nil {
		return nil, ErrMissingClient
	}
	if opts.Log == nil {
		return nil, ErrMissingLogger
	}

	characteristics := opts.Characteristics
	if len(characteristics) == 0 {
		characteristics = defaultCharacteristics
	}

	analyzer := opts.Analyzer
	if analyzer == nil {
		analyzer = analyze.NewLocal()
	}

	return &Engine{
		key:             opts.Key,
		rules:           sortRules(opts.Rules),
		characteristics: characteristics,
		client:          opts.Client,
		log:             opts.Log,
		analyzer:        analyzer,
		cache:           newBlockCache(),
	}, nil
}

// WithRule returns a new engine view whose rule list is this engine's
// plus rule, re-sorted by priority. The receiver is unaffected; the
// view shares the client, logger, analyzer, and block cache, so cached
// blocks apply across views.
func (e *Engine) WithRule(rule Rule) *Engine {
	rules := make([]Rule, 0, len(e.rules)+1)
	rules = append(rules, e.rules...)
	rules = append(rules, rule)

	return &Engine{
		key:             e.key,
		rules:           sortRules(rules),
		characteristics: e.characteristics,
		client:          e.client,
		log:             e.log,
		analyzer:        e.analyzer,
		cache:           e.cache,
	}
}

// Protect evaluates the configured rules against a request and returns
// the decision. A nil request is treated as empty. Protect always
// returns a Decision; see the Engine documentation for the fail-open
// contract.
func (e *Engine) Protect(ctx context.Context, req *Request) *Decision {
	details := newRequestDetails(req)

	ectx := &Context{
		Key:             e.key,
		Characteristics: e.characteristics,
		Runtime:         engineRuntime,
		Log:             e.log,
		GetBody:         bodyFunc(req),
		analyzer:        e.analyzer,
	}

	fingerprint, err := e.analyzer.GenerateFingerprint(ctx, e.key, e.characteristics, details.projection())
	if err != nil {
		e.log.Error("failed to generate fingerprint: %v", err)
		return newDecision(ConclusionError, 0, errorReason(err), nil)
	}
	ectx.Fingerprint = fingerprint

	if len(e.rules) > MaxRules {
		decision := newDecision(ConclusionError, 0, errorReason(ErrTooManyRules), nil)
		e.report(ctx, ectx, details, decision, nil)
		return decision
	}

	rules := e.injectCharacteristics()
	results := make([]*RuleResult, len(rules))
	for i := range results {
		results[i] = &RuleResult{
			RuleID:     uuid.NewString(),
			State:      StateNotRun,
			Conclusion: ConclusionAllow,
			Reason:     &GenericReason{},
		}
	}

	if len(rules) == 0 {
		// Nothing to evaluate locally: the block cache is not consulted
		// and the request goes straight to the remote service.
		e.log.Warn("no rules configured")
		return e.decideRemote(ctx, ectx, details, rules, results)
	}

	if reason, ok := e.cache.get(fingerprint); ok {
		// No rule runs on a cache hit; the CACHED state lets callers
		// and adapters tell this apart from a live local DENY.
		for _, result := range results {
			result.State = StateCached
		}
		decision := newDecision(ConclusionDeny, e.cache.ttl(fingerprint), reason, results)
		e.report(ctx, ectx, details, decision, rules)
		return decision
	}

	for i, rule := range rules {
		local, ok := rule.(LocalRule)
		if !ok {
			continue
		}

		if err := ctx.Err(); err != nil {
			return newDecision(ConclusionError, 0, errorReason(err), results)
		}

		kind := string(rule.Kind())
		ectx.time(kind)
		result := e.evaluateLocal(ctx, local, ectx, details)
		ectx.timeEnd(kind)

		result.RuleID = results[i].RuleID
		results[i] = result

		if !result.IsDenied() {
			continue
		}

		decision := newDecision(ConclusionDeny, result.TTL, result.Reason, results)
		e.report(ctx, ectx, details, decision, rules)

		if rule.Mode() == ModeDryRun {
			e.log.Warn("%s rule would have denied the request, but is in dry-run mode", kind)
			continue
		}

		if result.TTL > 0 {
			e.cache.setTTL(fingerprint, result.Reason, result.TTL)
		}
		return decision
	}

	return e.decideRemote(ctx, ectx, details, rules, results)
}

// evaluateLocal runs one local rule's validate/protect pair, recovering
// any error into an ERROR result so that subsequent rules still run.
func (e *Engine) evaluateLocal(ctx context.Context, rule LocalRule, ectx *Context, details *RequestDetails) *RuleResult {
	kind := string(rule.Kind())

	if err := rule.Validate(ctx, ectx, details); err != nil {
		verr := &RuleValidationError{RuleKind: kind, Cause: err}
		e.log.Debug("%v", verr)
		return &RuleResult{
			State:      StateRun,
			Conclusion: ConclusionError,
			Reason:     errorReason(verr),
		}
	}

	result, err := rule.Protect(ctx, ectx, details)
	if err != nil {
		xerr := &RuleExecutionError{RuleKind: kind, Cause: err}
		e.log.Debug("%v", xerr)
		return &RuleResult{
			State:      StateRun,
			Conclusion: ConclusionError,
			Reason:     errorReason(xerr),
		}
	}

	return result
}

// decideRemote escalates to the remote service and fails open on any
// transport failure.
func (e *Engine) decideRemote(ctx context.Context, ectx *Context, details *RequestDetails, rules []Rule, results []*RuleResult) *Decision {
	if err := ctx.Err(); err != nil {
		return newDecision(ConclusionError, 0, errorReason(err), results)
	}

	decision, err := e.client.Decide(ctx, ectx, details, rules)
	if err != nil {
		rerr := &RemoteDecisionError{Cause: err}
		e.log.Error("%v", rerr)
		decision = newDecision(ConclusionError, 0, errorReason(rerr), results)
		e.report(ctx, ectx, details, decision, rules)
		return decision
	}

	// The remote verdict carries this request's per-rule local results.
	// Copy rather than mutate: clients may hand out shared decisions.
	merged := *decision
	merged.Results = results
	decision = &merged

	if decision.IsDenied() && decision.TTL > 0 {
		e.cache.setTTL(ectx.Fingerprint, decision.Reason, decision.TTL)
	}
	return decision
}

// report fires the outcome to the remote service without blocking the
// caller. Errors are logged, never surfaced; cancellation of the
// request context does not cancel an in-flight report.
func (e *Engine) report(ctx context.Context, ectx *Context, details *RequestDetails, decision *Decision, rules []Rule) {
	rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), reportTimeout)
	go func() {
		defer cancel()
		if err := e.client.Report(rctx, ectx, details, decision, rules); err != nil {
			e.log.Error("failed to report decision %s: %v", decision.ID, err)
		}
	}()
}

// injectCharacteristics returns the evaluation rule list: rate-limit
// rules without their own characteristics get the engine's. Rules are
// copied on injection; the configured list is shared across requests
// and never mutated.
func (e *Engine) injectCharacteristics() []Rule {
	rules := make([]Rule, len(e.rules))
	for i, rule := range e.rules {
		if rl, ok := rule.(*RateLimitRule); ok && len(rl.Characteristics) == 0 {
			rules[i] = rl.withCharacteristics(e.characteristics)
			continue
		}
		rules[i] = rule
	}
	return rules
}

// bodyFunc derives the lazy body accessor from the request: an
// adapter-supplied GetBody wins, a literal Body is wrapped, and
// otherwise no body is available.
func bodyFunc(req *Request) BodyFunc {
	if req == nil {
		return nil
	}
	if req.GetBody != nil {
		return req.GetBody
	}
	if req.Body != "" {
		body := req.Body
		return func(context.Context) (string, bool, error) {
			return body, true, nil
		}
	}
	return nil
}
