package normalize

import (
	"strings"

	"golang.org/x/net/html"

	"github.com/helgo/places/pkg/sources"
)

// FormatAddress joins the present address parts with ", ". A house number
// that starts with a digit is attached to the street with a space. It
// returns "" when no part is present.
func FormatAddress(a sources.Address) string {
	street := strings.TrimSpace(a.Street)
	number := strings.TrimSpace(a.HouseNumber)

	var parts []string
	switch {
	case street != "" && houseNumberLike(number):
		parts = append(parts, street+" "+number)
	default:
		parts = appendPresent(parts, street, number)
	}
	parts = appendPresent(parts, a.PostalCode, a.City)
	return strings.Join(parts, ", ")
}

func houseNumberLike(s string) bool {
	return s != "" && s[0] >= '0' && s[0] <= '9'
}

func appendPresent(parts []string, values ...string) []string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			parts = append(parts, v)
		}
	}
	return parts
}

// PlainText drops markup from s, decodes entities and collapses whitespace.
func PlainText(s string) string {
	if strings.TrimSpace(s) == "" {
		return ""
	}
	if !strings.ContainsAny(s, "<&") {
		return strings.Join(strings.Fields(s), " ")
	}

	var b strings.Builder
	z := html.NewTokenizer(strings.NewReader(s))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return strings.Join(strings.Fields(b.String()), " ")
		case html.TextToken:
			b.Write(z.Text())
		case html.StartTagToken, html.EndTagToken, html.SelfClosingTagToken:
			b.WriteByte(' ')
		}
	}
}
