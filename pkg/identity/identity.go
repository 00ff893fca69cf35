// Package identity derives stable place ids from source provenance and name.
package identity

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/helgo/places/pkg/constants"
	"github.com/helgo/places/pkg/sources"
)

// Placeholder replaces a slug or key that folds to nothing.
const Placeholder = constants.FallbackPlaceholder

// Slugify lowercases name, strips diacritics and joins the remaining ASCII
// alphanumeric runs with single hyphens. It never returns an empty string.
func Slugify(name string) string {
	folded, _, err := transform.String(foldChain(), name)
	if err != nil {
		folded = name
	}

	var b strings.Builder
	b.Grow(len(folded))
	pendingSep := false
	for _, r := range strings.ToLower(folded) {
		if isASCIIAlnum(r) {
			if pendingSep && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingSep = false
			b.WriteRune(r)
			continue
		}
		pendingSep = true
	}
	if b.Len() == 0 {
		return Placeholder
	}
	return b.String()
}

// Assign returns "<origin>-<key>-<slug>". Whitespace inside key collapses to
// single hyphens; an empty key becomes the placeholder.
func Assign(origin sources.ID, key, name string) string {
	k := strings.Join(strings.Fields(key), "-")
	if k == "" {
		k = Placeholder
	}
	return string(origin) + "-" + k + "-" + Slugify(name)
}

// foldChain decomposes, drops combining marks and recomposes. A transformer
// chain carries state so each call builds its own.
func foldChain() transform.Transformer {
	return transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
}

func isASCIIAlnum(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
}
