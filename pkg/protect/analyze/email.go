package analyze

import (
	"context"
	"strings"
)

// disposableDomains is a small built-in table of throwaway providers.
// The remote service carries the authoritative list; this local table
// catches the most common ones without any I/O.
var disposableDomains = map[string]bool{
	"mailinator.com":    true,
	"guerrillamail.com": true,
	"10minutemail.com":  true,
	"tempmail.com":      true,
	"temp-mail.org":     true,
	"throwawaymail.com": true,
	"yopmail.com":       true,
	"sharklasers.com":   true,
	"getnada.com":       true,
	"trashmail.com":     true,
}

// freeDomains lists the major free providers.
var freeDomains = map[string]bool{
	"gmail.com":      true,
	"googlemail.com": true,
	"yahoo.com":      true,
	"outlook.com":    true,
	"hotmail.com":    true,
	"live.com":       true,
	"aol.com":        true,
	"icloud.com":     true,
	"proton.me":      true,
	"protonmail.com": true,
	"gmx.com":        true,
	"mail.com":       true,
}

// IsValidEmail validates an address syntactically and reports which of
// the kinds in opts.Block apply. Kinds that need network access
// (NO_MX_RECORDS, NO_GRAVATAR) are never reported locally.
func (*Local) IsValidEmail(ctx context.Context, email string, opts EmailOptions) (*EmailResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	local, domain, ok := splitAddress(email)
	if !ok || !validLocalPart(local) || !validDomain(domain, opts) {
		return &EmailResult{
			Validity: ValidityInvalid,
			Blocked:  blockedKinds(opts.Block, EmailTypeInvalid),
		}, nil
	}

	var applies []EmailType
	lower := strings.ToLower(domain)
	if disposableDomains[lower] {
		applies = append(applies, EmailTypeDisposable)
	}
	if freeDomains[lower] {
		applies = append(applies, EmailTypeFree)
	}

	return &EmailResult{
		Validity: ValidityValid,
		Blocked:  blockedKinds(opts.Block, applies...),
	}, nil
}

// blockedKinds intersects the kinds that apply with the requested block
// set. INVALID is always reported for invalid addresses even when the
// block set is empty, so that a default rule still rejects garbage.
func blockedKinds(block []EmailType, applies ...EmailType) []EmailType {
	if len(applies) == 0 {
		return nil
	}

	if len(block) == 0 {
		if applies[0] == EmailTypeInvalid {
			return []EmailType{EmailTypeInvalid}
		}
		return nil
	}

	set := make(map[EmailType]bool, len(block))
	for _, kind := range block {
		set[kind] = true
	}

	var blocked []EmailType
	for _, kind := range applies {
		if set[kind] || kind == EmailTypeInvalid {
			blocked = append(blocked, kind)
		}
	}
	return blocked
}

// splitAddress splits on the last "@" so that quoted local parts with
// embedded at-signs still parse.
func splitAddress(email string) (local, domain string, ok bool) {
	idx := strings.LastIndex(email, "@")
	if idx <= 0 || idx == len(email)-1 {
		return "", "", false
	}
	return email[:idx], email[idx+1:], true
}

func validLocalPart(local string) bool {
	if len(local) == 0 || len(local) > 64 {
		return false
	}
	if strings.HasPrefix(local, ".") || strings.HasSuffix(local, ".") || strings.Contains(local, "..") {
		return false
	}
	for _, c := range local {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		case strings.ContainsRune("!#$%&'*+-/=?^_`{|}~.", c):
		default:
			return false
		}
	}
	return true
}

func validDomain(domain string, opts EmailOptions) bool {
	if len(domain) == 0 || len(domain) > 255 {
		return false
	}

	// Bracketed domain literal, e.g. [127.0.0.1].
	if strings.HasPrefix(domain, "[") && strings.HasSuffix(domain, "]") {
		return opts.AllowDomainLiteral && len(domain) > 2
	}

	labels := strings.Split(domain, ".")
	if opts.RequireTopLevelDomain && len(labels) < 2 {
		return false
	}

	for _, label := range labels {
		if len(label) == 0 || len(label) > 63 {
			return false
		}
		if strings.HasPrefix(label, "-") || strings.HasSuffix(label, "-") {
			return false
		}
		for _, c := range label {
			switch {
			case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '-':
			default:
				return false
			}
		}
	}

	if opts.RequireTopLevelDomain {
		tld := labels[len(labels)-1]
		if len(tld) < 2 {
			return false
		}
		for _, c := range tld {
			if c >= '0' && c <= '9' {
				return false
			}
		}
	}

	return true
}
