// Package protect is the core of the Aegis request-protection SDK: a
// decision engine that composes security rules into a single
// ALLOW/DENY/CHALLENGE/ERROR decision per request.
//
// # Overview
//
// An Engine owns a configured rule set (rate limits, bot detection,
// email validation, sensitive-info scanning, and the catch-all
// shield). For each request it computes a stable client fingerprint,
// short-circuits on cached blocks, evaluates local rules in priority
// order, escalates to the remote decision service when local
// evaluation cannot decide, and reports outcomes asynchronously.
//
// # Usage
//
//	rules, err := protect.ProtectSignup(protect.SignupOptions{
//	    RateLimit: &protect.SlidingWindowOptions{Mode: protect.ModeLive, Max: 5, Interval: "10m"},
//	})
//	if err != nil {
//	    return err
//	}
//
//	engine, err := protect.New(protect.Options{
//	    Key:    siteKey,
//	    Rules:  rules,
//	    Client: client,
//	    Log:    logger,
//	})
//	if err != nil {
//	    return err
//	}
//
//	decision := engine.Protect(ctx, &protect.Request{
//	    IP:      clientIP,
//	    Headers: r.Header,
//	    Email:   form.Email,
//	})
//	if decision.IsDenied() {
//	    // reject the request
//	}
//
// # Fail-open
//
// Protect never returns an error. Remote-service failures, timeouts,
// and rule errors surface as ERROR decisions; callers that do not
// implement their own policy should treat ERROR as allow, so that
// infrastructure outages rather than the SDK decide access.
package protect
