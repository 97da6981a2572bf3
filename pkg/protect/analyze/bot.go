package analyze

import (
	"context"
	"sort"
	"strings"
)

// botSignatures maps well-known bot identifiers to lowercase user-agent
// substrings. Substring matching keeps classification cheap and mirrors
// how the fleet of scrapers actually advertises itself; version suffixes
// and casing vary but the product token does not.
var botSignatures = map[string][]string{
	"CURL":               {"curl/"},
	"WGET":               {"wget/"},
	"PYTHON_REQUESTS":    {"python-requests", "python-urllib"},
	"GO_HTTP":            {"go-http-client"},
	"HEADLESS_CHROME":    {"headlesschrome"},
	"PHANTOMJS":          {"phantomjs"},
	"SCRAPY":             {"scrapy"},
	"GOOGLE_CRAWLER":     {"googlebot", "google-extended"},
	"BING_CRAWLER":       {"bingbot", "adidxbot"},
	"YANDEX_CRAWLER":     {"yandexbot"},
	"DUCKDUCKGO_CRAWLER": {"duckduckbot"},
	"APPLE_CRAWLER":      {"applebot"},
	"AMAZON_CRAWLER":     {"amazonbot"},
	"OPENAI_CRAWLER":     {"gptbot", "chatgpt-user", "oai-searchbot"},
	"ANTHROPIC_CRAWLER":  {"claudebot", "anthropic-ai", "claude-web"},
	"PERPLEXITY_CRAWLER": {"perplexitybot"},
	"BYTESPIDER":         {"bytespider"},
	"COMMON_CRAWL":       {"ccbot"},
	"FACEBOOK_CRAWLER":   {"facebookexternalhit", "facebookbot", "meta-externalagent"},
	"TWITTER_CRAWLER":    {"twitterbot"},
	"SLACK_BOT":          {"slackbot"},
	"DISCORD_CRAWLER":    {"discordbot"},
	"AHREFS_CRAWLER":     {"ahrefsbot"},
	"SEMRUSH_CRAWLER":    {"semrushbot"},
	"MJ12_BOT":           {"mj12bot"},
	"PETAL_BOT":          {"petalbot"},
}

// DetectBot classifies the request's user agent against the well-known
// bot table and filters the detected identifiers through cfg.
//
// With a deny list, only listed identifiers are denied. With an allow
// list (including an empty one, the default), every detected identifier
// not on the list is denied. A user agent matching no signature yields
// an empty result.
func (*Local) DetectBot(ctx context.Context, req map[string]string, cfg BotConfig) (*BotResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ua := strings.ToLower(req[HeaderKey("user-agent")])
	detected := detectIdentifiers(ua)

	result := &BotResult{}
	if len(cfg.Deny) > 0 {
		denySet := toSet(cfg.Deny)
		for _, id := range detected {
			if denySet[id] {
				result.Denied = append(result.Denied, id)
			} else {
				result.Allowed = append(result.Allowed, id)
			}
		}
		return result, nil
	}

	allowSet := toSet(cfg.Allow)
	for _, id := range detected {
		if allowSet[id] {
			result.Allowed = append(result.Allowed, id)
		} else {
			result.Denied = append(result.Denied, id)
		}
	}
	return result, nil
}

// detectIdentifiers returns the sorted identifiers whose signatures
// match the lowercased user agent.
func detectIdentifiers(ua string) []string {
	if ua == "" {
		return nil
	}

	var detected []string
	for id, patterns := range botSignatures {
		for _, pattern := range patterns {
			if strings.Contains(ua, pattern) {
				detected = append(detected, id)
				break
			}
		}
	}

	sort.Strings(detected)
	return detected
}

func toSet(ids []string) map[string]bool {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}

// KnownBot reports whether id is a well-known bot identifier. Rule
// constructors use this to reject typos at construction time.
func KnownBot(id string) bool {
	_, ok := botSignatures[id]
	return ok
}
