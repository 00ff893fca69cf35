// Package classify maps a record's raw type signals onto the place taxonomy.
package classify

import (
	"slices"
	"strings"

	"github.com/helgo/places/pkg/sources"
	"github.com/helgo/places/pkg/taxonomy"
)

// Classifier applies the keyword rules, then the code rules, then the
// fallback. It holds no state beyond its tables and is safe to share.
type Classifier struct {
	tables *taxonomy.Tables
}

// New creates a Classifier over tables.
func New(tables *taxonomy.Tables) *Classifier {
	return &Classifier{tables: tables}
}

// Classify returns exactly one category for any input.
func (c *Classifier) Classify(sig sources.Signals) taxonomy.Category {
	if cat, ok := c.Match(sig); ok {
		return cat
	}
	return c.tables.Fallback()
}

// Match reports the category of the first matching rule. ok is false when
// neither rule set matches.
func (c *Classifier) Match(sig sources.Signals) (cat taxonomy.Category, ok bool) {
	if cat, ok := c.matchKeywords(sig.Labels); ok {
		return cat, true
	}
	return c.matchCodes(sig.Codes)
}

func (c *Classifier) matchKeywords(labels []string) (taxonomy.Category, bool) {
	if len(labels) == 0 {
		return "", false
	}
	lowered := make([]string, 0, len(labels))
	for _, l := range labels {
		if l = strings.ToLower(strings.TrimSpace(l)); l != "" {
			lowered = append(lowered, l)
		}
	}
	for _, rule := range c.tables.KeywordRules() {
		for _, label := range lowered {
			if containsAny(label, rule.Keywords) {
				return rule.Category, true
			}
		}
	}
	return "", false
}

func (c *Classifier) matchCodes(codes []string) (taxonomy.Category, bool) {
	if len(codes) == 0 {
		return "", false
	}
	lowered := make([]string, len(codes))
	for i, code := range codes {
		lowered[i] = strings.ToLower(strings.TrimSpace(code))
	}
	for _, rule := range c.tables.CodeRules() {
		for _, code := range rule.Codes {
			if slices.Contains(lowered, code) {
				return rule.Category, true
			}
		}
	}
	return "", false
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if kw != "" && strings.Contains(s, kw) {
			return true
		}
	}
	return false
}
