// Package location maps free-text tour titles to canonical short location
// keys and groups related keys for demand aggregation.
package location

import (
	"regexp"
	"strings"
)

// Rule maps a title substring to a canonical short key. Rules are applied in
// order and the first match wins, so more specific matches must come first.
type Rule struct {
	Match string
	Key   string
}

// dayPrefixRe matches leading day-number prefixes such as "第2天:", "第 3 日",
// "Day1:" or "day 2 -".
var dayPrefixRe = regexp.MustCompile(`^(?:第\s*\d+\s*[天日]|[Dd][Aa][Yy]\s*\d+)\s*[:：\-]?\s*`)

// daySuffixes are trailing day-tour markers stripped before rule matching.
var daySuffixes = []string{"一日游", "半日游", "day tour", "Day Tour"}

// DefaultRules returns the built-in title rule table. The ticket-inclusion
// variants of the same destination collapse to distinct keys so they can be
// folded back together by a merge group.
func DefaultRules() []Rule {
	return []Rule{
		{Match: "亚瑟港迅游", Key: "亚(迅)"},
		{Match: "亚瑟港不含门票", Key: "亚(不含)"},
		{Match: "亚瑟港含门票", Key: "亚(含)"},
		{Match: "亚瑟港", Key: "亚"},
		{Match: "布鲁尼岛美食", Key: "布(美)"},
		{Match: "布鲁尼岛", Key: "布"},
		{Match: "摇篮山", Key: "摇"},
		{Match: "酒杯湾", Key: "酒"},
		{Match: "菲欣纳", Key: "酒"},
		{Match: "霍巴特市区", Key: "市游"},
		{Match: "塔斯曼半岛", Key: "塔"},
		{Match: "惠灵顿山", Key: "惠"},
	}
}

// Normalizer maps raw tour titles to canonical short keys.
// It is stateless and safe for concurrent use.
type Normalizer struct {
	rules []Rule
	known map[string]bool // canonical keys, for idempotence
}

// NewNormalizer creates a Normalizer with the given rule table.
// A nil or empty table falls back to DefaultRules.
func NewNormalizer(rules []Rule) *Normalizer {
	if len(rules) == 0 {
		rules = DefaultRules()
	}
	known := make(map[string]bool, len(rules))
	for _, r := range rules {
		known[r.Key] = true
	}
	return &Normalizer{rules: rules, known: known}
}

// Normalize maps a raw title to its canonical short key.
// It strips a leading day-number prefix and a trailing day-tour suffix, then
// applies the rule table in order (first match wins). If no rule matches, the
// trimmed remainder is returned as-is. Normalize is idempotent: feeding a
// canonical key back in returns it unchanged. An empty or blank title yields
// an empty string; Normalize never fails.
func (n *Normalizer) Normalize(title string) string {
	s := strings.TrimSpace(title)
	if s == "" {
		return ""
	}

	// Already canonical.
	if n.known[s] {
		return s
	}

	s = dayPrefixRe.ReplaceAllString(s, "")
	for _, suffix := range daySuffixes {
		s = strings.TrimSuffix(s, suffix)
	}
	s = strings.TrimSpace(s)

	for _, r := range n.rules {
		if strings.Contains(s, r.Match) {
			return r.Key
		}
	}
	return s
}
