package remote

import (
	"fmt"

	"mercator-hq/aegis/pkg/protect"
	"mercator-hq/aegis/pkg/protect/analyze"
)

// The wire shapes below are owned by this package: the core passes its
// value objects verbatim and the transport is free to encode them as it
// wishes. JSON over HTTPS keeps the service debuggable with curl.

type decideRequest struct {
	Context *contextDTO `json:"context"`
	Details *detailsDTO `json:"details"`
	Rules   []*ruleDTO  `json:"rules"`
}

type reportRequest struct {
	Context  *contextDTO  `json:"context"`
	Details  *detailsDTO  `json:"details"`
	Decision *decisionDTO `json:"decision"`
	Rules    []*ruleDTO   `json:"rules"`
}

type contextDTO struct {
	Key             string   `json:"key"`
	Fingerprint     string   `json:"fingerprint"`
	Characteristics []string `json:"characteristics,omitempty"`
	Runtime         string   `json:"runtime"`
}

type detailsDTO struct {
	IP       string              `json:"ip,omitempty"`
	Method   string              `json:"method,omitempty"`
	Protocol string              `json:"protocol,omitempty"`
	Host     string              `json:"host,omitempty"`
	Path     string              `json:"path,omitempty"`
	Headers  [][2]string         `json:"headers,omitempty"`
	Cookies  string              `json:"cookies,omitempty"`
	Query    string              `json:"query,omitempty"`
	Email    string              `json:"email,omitempty"`
	Extra    map[string]string   `json:"extra,omitempty"`
}

type ruleDTO struct {
	Kind     protect.RuleKind `json:"kind"`
	Mode     protect.Mode     `json:"mode"`
	Priority int              `json:"priority"`

	// Rate limit fields.
	Algorithm       protect.RateLimitAlgorithm `json:"algorithm,omitempty"`
	Match           string                     `json:"match,omitempty"`
	Characteristics []string                   `json:"characteristics,omitempty"`
	RefillRate      int                        `json:"refillRate,omitempty"`
	Interval        uint32                     `json:"interval,omitempty"`
	Capacity        int                        `json:"capacity,omitempty"`
	Max             int                        `json:"max,omitempty"`
	Window          uint32                     `json:"window,omitempty"`

	// Bot fields.
	Allow []string `json:"allow,omitempty"`
	Deny  []string `json:"deny,omitempty"`

	// Email fields.
	Block                 []analyze.EmailType `json:"block,omitempty"`
	RequireTopLevelDomain bool                `json:"requireTopLevelDomain,omitempty"`
	AllowDomainLiteral    bool                `json:"allowDomainLiteral,omitempty"`

	// Sensitive info fields. The custom detect function never crosses
	// the wire; the remote service only sees the declarative parts.
	AllowEntities     []analyze.EntityType `json:"allowEntities,omitempty"`
	DenyEntities      []analyze.EntityType `json:"denyEntities,omitempty"`
	ContextWindowSize int                  `json:"contextWindowSize,omitempty"`
}

type decisionDTO struct {
	ID         string              `json:"id"`
	Conclusion protect.Conclusion  `json:"conclusion"`
	TTL        uint32              `json:"ttl"`
	Reason     *reasonDTO          `json:"reason,omitempty"`
	Results    []*ruleResultDTO    `json:"results,omitempty"`
}

type ruleResultDTO struct {
	RuleID     string             `json:"ruleId"`
	TTL        uint32             `json:"ttl"`
	State      protect.RuleState  `json:"state"`
	Conclusion protect.Conclusion `json:"conclusion"`
	Reason     *reasonDTO         `json:"reason,omitempty"`
}

// reasonDTO is the envelope encoding of the Reason sum: the kind plus
// exactly one populated variant.
type reasonDTO struct {
	Kind          protect.ReasonKind           `json:"kind"`
	RateLimit     *protect.RateLimitReason     `json:"rateLimit,omitempty"`
	Bot           *protect.BotReason           `json:"bot,omitempty"`
	Email         *protect.EmailReason         `json:"email,omitempty"`
	SensitiveInfo *protect.SensitiveInfoReason `json:"sensitiveInfo,omitempty"`
	Shield        *protect.ShieldReason        `json:"shield,omitempty"`
	Error         *protect.ErrorReason         `json:"error,omitempty"`
}

func encodeContext(ectx *protect.Context) *contextDTO {
	return &contextDTO{
		Key:             ectx.Key,
		Fingerprint:     ectx.Fingerprint,
		Characteristics: ectx.Characteristics,
		Runtime:         ectx.Runtime,
	}
}

func encodeDetails(details *protect.RequestDetails) *detailsDTO {
	dto := &detailsDTO{
		IP:       details.IP,
		Method:   details.Method,
		Protocol: details.Protocol,
		Host:     details.Host,
		Path:     details.Path,
		Cookies:  details.Cookies,
		Query:    details.Query,
		Email:    details.Email,
		Extra:    details.Extra,
	}
	if details.Headers != nil {
		for _, entry := range details.Headers.Entries() {
			dto.Headers = append(dto.Headers, [2]string{entry.Name, entry.Value})
		}
	}
	return dto
}

func encodeRules(rules []protect.Rule) []*ruleDTO {
	dtos := make([]*ruleDTO, 0, len(rules))
	for _, rule := range rules {
		dtos = append(dtos, encodeRule(rule))
	}
	return dtos
}

func encodeRule(rule protect.Rule) *ruleDTO {
	dto := &ruleDTO{
		Kind:     rule.Kind(),
		Mode:     rule.Mode(),
		Priority: rule.Priority(),
	}

	switch r := rule.(type) {
	case *protect.RateLimitRule:
		dto.Algorithm = r.Algorithm
		dto.Match = r.Match
		dto.Characteristics = r.Characteristics
		dto.RefillRate = r.RefillRate
		dto.Interval = r.Interval
		dto.Capacity = r.Capacity
		dto.Max = r.Max
		dto.Window = r.Window
	case *protect.BotRule:
		dto.Allow = r.Allow
		dto.Deny = r.Deny
	case *protect.EmailRule:
		dto.Block = r.Block
		dto.RequireTopLevelDomain = r.RequireTopLevelDomain
		dto.AllowDomainLiteral = r.AllowDomainLiteral
	case *protect.SensitiveInfoRule:
		dto.AllowEntities = r.Allow
		dto.DenyEntities = r.Deny
		dto.ContextWindowSize = r.ContextWindowSize
	}

	return dto
}

func encodeDecision(decision *protect.Decision) *decisionDTO {
	dto := &decisionDTO{
		ID:         decision.ID,
		Conclusion: decision.Conclusion,
		TTL:        decision.TTL,
		Reason:     encodeReason(decision.Reason),
	}
	for _, result := range decision.Results {
		dto.Results = append(dto.Results, &ruleResultDTO{
			RuleID:     result.RuleID,
			TTL:        result.TTL,
			State:      result.State,
			Conclusion: result.Conclusion,
			Reason:     encodeReason(result.Reason),
		})
	}
	return dto
}

func encodeReason(reason protect.Reason) *reasonDTO {
	if reason == nil {
		return nil
	}

	dto := &reasonDTO{Kind: reason.Kind()}
	switch r := reason.(type) {
	case *protect.RateLimitReason:
		dto.RateLimit = r
	case *protect.BotReason:
		dto.Bot = r
	case *protect.EmailReason:
		dto.Email = r
	case *protect.SensitiveInfoReason:
		dto.SensitiveInfo = r
	case *protect.ShieldReason:
		dto.Shield = r
	case *protect.ErrorReason:
		dto.Error = r
	}
	return dto
}

func decodeDecision(dto *decisionDTO) (*protect.Decision, error) {
	if dto == nil {
		return nil, fmt.Errorf("empty decision")
	}

	decision := &protect.Decision{
		ID:         dto.ID,
		Conclusion: dto.Conclusion,
		TTL:        dto.TTL,
		Reason:     decodeReason(dto.Reason),
	}
	for _, result := range dto.Results {
		decision.Results = append(decision.Results, &protect.RuleResult{
			RuleID:     result.RuleID,
			TTL:        result.TTL,
			State:      result.State,
			Conclusion: result.Conclusion,
			Reason:     decodeReason(result.Reason),
		})
	}
	return decision, nil
}

func decodeReason(dto *reasonDTO) protect.Reason {
	if dto == nil {
		return &protect.GenericReason{}
	}

	switch {
	case dto.RateLimit != nil:
		return dto.RateLimit
	case dto.Bot != nil:
		return dto.Bot
	case dto.Email != nil:
		return dto.Email
	case dto.SensitiveInfo != nil:
		return dto.SensitiveInfo
	case dto.Shield != nil:
		return dto.Shield
	case dto.Error != nil:
		return dto.Error
	default:
		return &protect.GenericReason{}
	}
}
