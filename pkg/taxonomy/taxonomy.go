// Package taxonomy holds the immutable lookup tables behind classification,
// tag extraction and category defaults.
//
// Tables are built once, from the embedded taxonomy.yaml or a user-supplied
// file, and passed explicitly into every component that reads them. Nothing
// in this package mutates a Tables value after Load returns.
package taxonomy

import (
	_ "embed"
	"fmt"
	"os"
	"slices"
	"strings"
	"sync"

	"github.com/goccy/go-yaml"

	"github.com/helgo/places/pkg/errors"
)

//go:embed taxonomy.yaml
var embeddedTables []byte

// Category is one value of the closed place taxonomy.
type Category string

// Categories shipped in the embedded tables.
const (
	Restaurant    Category = "restaurant"
	Cafe          Category = "cafe"
	Bar           Category = "bar"
	Museum        Category = "museum"
	Market        Category = "market"
	Park          Category = "park"
	Viewpoint     Category = "viewpoint"
	Walk          Category = "walk"
	Activity      Category = "activity"
	Shopping      Category = "shopping"
	Sport         Category = "sport"
	Wellness      Category = "wellness"
	Accommodation Category = "accommodation"
	Event         Category = "event"
	Sightseeing   Category = "sightseeing"
)

// String returns the category label.
func (c Category) String() string { return string(c) }

// AnySource is the defaults key applying to every source.
const AnySource = "*"

// Defaults are the category-indexed values copied onto a place at creation.
type Defaults struct {
	IndoorOutdoor string `yaml:"indoorOutdoor" json:"indoorOutdoor"`
	DurationMins  int    `yaml:"durationMins" json:"durationMins"`
	BestTimeOfDay string `yaml:"bestTimeOfDay" json:"bestTimeOfDay"`
}

// KeywordRule maps label substrings to a category.
type KeywordRule struct {
	Category Category `yaml:"category"`
	Keywords []string `yaml:"keywords"`
}

// CodeRule maps controlled type codes to a category.
type CodeRule struct {
	Category Category `yaml:"category"`
	Codes    []string `yaml:"codes"`
}

// TagRule maps label substrings to one or more tags.
type TagRule struct {
	Keywords []string `yaml:"keywords"`
	Tags     []string `yaml:"tags"`
}

type document struct {
	Fallback     Category                       `yaml:"fallback"`
	Categories   []Category                     `yaml:"categories"`
	AllowedTags  []string                       `yaml:"allowedTags"`
	KeywordRules []KeywordRule                  `yaml:"keywordRules"`
	CodeRules    []CodeRule                     `yaml:"codeRules"`
	Synonyms     map[string]string              `yaml:"synonyms"`
	LabelTags    []TagRule                      `yaml:"labelTags"`
	CategoryTags map[string][]string            `yaml:"categoryTags"`
	Defaults     map[string]map[string]Defaults `yaml:"defaults"`
}

// Tables is a validated, read-only view over one taxonomy document.
type Tables struct {
	doc        document
	categories map[Category]struct{}
	tags       map[string]struct{}
}

var embedded = sync.OnceValues(func() (*Tables, error) {
	return Parse(embeddedTables, "taxonomy.yaml")
})

// Default returns the tables compiled into the binary. The value is shared.
func Default() *Tables {
	t, err := embedded()
	if err != nil {
		panic(fmt.Sprintf("embedded taxonomy is invalid: %v", err))
	}
	return t
}

// Load reads tables from a YAML file. An empty path returns Default.
func Load(path string) (*Tables, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapIO("read", path, err)
	}
	return Parse(data, path)
}

// Parse decodes and validates a taxonomy document.
func Parse(data []byte, name string) (*Tables, error) {
	var doc document
	if err := yaml.UnmarshalWithOptions(data, &doc, yaml.DisallowUnknownField()); err != nil {
		return nil, errors.WrapParse("yaml", name, err)
	}
	normalizeDocument(&doc)

	t := &Tables{
		doc:        doc,
		categories: make(map[Category]struct{}, len(doc.Categories)),
		tags:       make(map[string]struct{}, len(doc.AllowedTags)),
	}
	for _, c := range doc.Categories {
		t.categories[c] = struct{}{}
	}
	for _, tag := range doc.AllowedTags {
		t.tags[tag] = struct{}{}
	}
	if err := t.validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// normalizeDocument lowercases every keyword and code so rule matching can
// compare against lowercased input without re-folding the rules.
func normalizeDocument(doc *document) {
	for i := range doc.KeywordRules {
		doc.KeywordRules[i].Keywords = lowerAll(doc.KeywordRules[i].Keywords)
	}
	for i := range doc.CodeRules {
		doc.CodeRules[i].Codes = lowerAll(doc.CodeRules[i].Codes)
	}
	for i := range doc.LabelTags {
		doc.LabelTags[i].Keywords = lowerAll(doc.LabelTags[i].Keywords)
	}
	if len(doc.Synonyms) > 0 {
		folded := make(map[string]string, len(doc.Synonyms))
		for k, v := range doc.Synonyms {
			folded[strings.ToLower(strings.TrimSpace(k))] = v
		}
		doc.Synonyms = folded
	}
}

func (t *Tables) validate() error {
	if len(t.doc.Categories) == 0 {
		return errors.NewValidationError("categories", nil, "taxonomy declares no categories")
	}
	if !t.IsCategory(t.doc.Fallback) {
		return errors.NewValidationError("fallback", t.doc.Fallback, "fallback is not a declared category")
	}
	for _, r := range t.doc.KeywordRules {
		if !t.IsCategory(r.Category) {
			return errors.NewValidationError("keywordRules", r.Category, "rule targets an undeclared category")
		}
	}
	for _, r := range t.doc.CodeRules {
		if !t.IsCategory(r.Category) {
			return errors.NewValidationError("codeRules", r.Category, "rule targets an undeclared category")
		}
	}
	for c := range t.doc.CategoryTags {
		if !t.IsCategory(Category(c)) {
			return errors.NewValidationError("categoryTags", c, "tags for an undeclared category")
		}
	}
	base, ok := t.doc.Defaults[AnySource]
	if !ok {
		return errors.NewValidationError("defaults", AnySource, "missing defaults for every source")
	}
	for _, c := range t.doc.Categories {
		if _, ok := base[string(c)]; !ok {
			return errors.NewValidationError("defaults", c, "category has no default values")
		}
	}
	return nil
}

// Categories returns the taxonomy in declaration order.
func (t *Tables) Categories() []Category {
	return slices.Clone(t.doc.Categories)
}

// Fallback is the category returned when no rule matches.
func (t *Tables) Fallback() Category {
	return t.doc.Fallback
}

// IsCategory reports whether c belongs to the taxonomy.
func (t *Tables) IsCategory(c Category) bool {
	_, ok := t.categories[c]
	return ok
}

// IsTag reports whether tag is on the allow-list.
func (t *Tables) IsTag(tag string) bool {
	_, ok := t.tags[tag]
	return ok
}

// AllowedTags returns the allow-list in declaration order.
func (t *Tables) AllowedTags() []string {
	return slices.Clone(t.doc.AllowedTags)
}

// KeywordRules returns the free-text rules in priority order. The returned
// slices are shared and must not be modified; the same holds for CodeRules
// and LabelTags.
func (t *Tables) KeywordRules() []KeywordRule {
	return t.doc.KeywordRules
}

// CodeRules returns the controlled-vocabulary rules in priority order.
func (t *Tables) CodeRules() []CodeRule {
	return t.doc.CodeRules
}

// LabelTags returns the label keyword tag rules.
func (t *Tables) LabelTags() []TagRule {
	return t.doc.LabelTags
}

// Synonym maps a lowercase cuisine token to its canonical tag.
func (t *Tables) Synonym(token string) (string, bool) {
	tag, ok := t.doc.Synonyms[token]
	return tag, ok
}

// CategoryTags returns the intrinsic tags of a category.
func (t *Tables) CategoryTags(c Category) []string {
	return t.doc.CategoryTags[string(c)]
}

// DefaultsFor returns the defaults a source assigns to a category. A
// source-specific entry wins over the "*" entry.
func (t *Tables) DefaultsFor(source string, c Category) (Defaults, bool) {
	if bySource, ok := t.doc.Defaults[source]; ok {
		if d, ok := bySource[string(c)]; ok {
			return d, true
		}
	}
	d, ok := t.doc.Defaults[AnySource][string(c)]
	return d, ok
}

// FilterTags keeps allow-listed tags, dropping duplicates while preserving
// first-seen order. Applying it twice is a no-op.
func (t *Tables) FilterTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		if !t.IsTag(tag) {
			continue
		}
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}

func lowerAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.ToLower(s)
	}
	return out
}
