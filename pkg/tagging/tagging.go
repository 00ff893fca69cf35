// Package tagging turns cuisine fields and category labels into tags drawn
// from the allow-list.
//
// Every exported function returns allow-listed, duplicate-free tags. Unknown
// vocabulary is dropped silently.
package tagging

import (
	"strings"

	"github.com/helgo/places/pkg/taxonomy"
)

// Extractor derives tags using one set of tables.
type Extractor struct {
	tables *taxonomy.Tables
}

// New creates an Extractor over tables.
func New(tables *taxonomy.Tables) *Extractor {
	return &Extractor{tables: tables}
}

// Cuisine splits a ";"/"," delimited field into lowercase tokens and maps
// each through the synonym table. Unmapped tokens are dropped.
func (e *Extractor) Cuisine(field string) []string {
	if strings.TrimSpace(field) == "" {
		return nil
	}
	tokens := strings.FieldsFunc(strings.ToLower(field), func(r rune) bool {
		return r == ';' || r == ','
	})
	var tags []string
	for _, tok := range tokens {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		if tag, ok := e.tables.Synonym(tok); ok {
			tags = append(tags, tag)
		}
	}
	return tags
}

// Labels scans each lowercase label for rule keywords. A label can match
// several rules and each rule can add several tags.
func (e *Extractor) Labels(labels []string) []string {
	var tags []string
	for _, label := range labels {
		label = strings.ToLower(label)
		if strings.TrimSpace(label) == "" {
			continue
		}
		for _, rule := range e.tables.LabelTags() {
			for _, kw := range rule.Keywords {
				if kw != "" && strings.Contains(label, kw) {
					tags = append(tags, rule.Tags...)
					break
				}
			}
		}
	}
	return tags
}

// Extract combines category tags, cuisine tags and label tags, then filters
// the result against the allow-list.
func (e *Extractor) Extract(category taxonomy.Category, cuisine string, labels []string) []string {
	combined := append([]string{}, e.tables.CategoryTags(category)...)
	combined = append(combined, e.Cuisine(cuisine)...)
	combined = append(combined, e.Labels(labels)...)
	return e.Filter(combined)
}

// Filter keeps allow-listed tags once each. Filter(Filter(x)) == Filter(x).
func (e *Extractor) Filter(tags []string) []string {
	return e.tables.FilterTags(tags)
}

// Union returns existing unchanged followed by the allow-listed incoming
// tags it lacks, so the result is always a superset of existing.
func (e *Extractor) Union(existing, incoming []string) []string {
	out := append(make([]string, 0, len(existing)+len(incoming)), existing...)
	seen := make(map[string]struct{}, len(out))
	for _, tag := range existing {
		seen[tag] = struct{}{}
	}
	for _, tag := range e.Filter(incoming) {
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}
