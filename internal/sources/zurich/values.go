package zurich

import (
	"bytes"
	"encoding/json"
	"slices"
	"strconv"
	"strings"
)

// The catalog is loose about JSON types: ids arrive as strings or numbers,
// text as plain strings or per-language objects, images as a URL, an
// object or a list. These helpers read a json.RawMessage in any of those
// shapes and yield "" when nothing usable is present.

var languages = []string{"en", "de", "default"}

func isNull(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) == 0 || bytes.Equal(raw, []byte("null"))
}

// scalar reads a string or a number.
func scalar(raw json.RawMessage) string {
	if isNull(raw) {
		return ""
	}
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return strings.TrimSpace(s)
	}
	var n json.Number
	if json.Unmarshal(raw, &n) == nil {
		return n.String()
	}
	return ""
}

// text reads a string or a language map, preferring English.
func text(raw json.RawMessage) string {
	if s := scalar(raw); s != "" {
		return s
	}
	var m map[string]json.RawMessage
	if isNull(raw) || json.Unmarshal(raw, &m) != nil {
		return ""
	}
	for _, lang := range languages {
		if s := scalar(m[lang]); s != "" {
			return s
		}
	}
	return ""
}

// number reads a float given as a number or a numeric string.
func number(raw json.RawMessage) (float64, bool) {
	s := scalar(raw)
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// lowerList reads a string or a list of strings, lowercased.
func lowerList(raw json.RawMessage) []string {
	if s := scalar(raw); s != "" {
		return []string{strings.ToLower(s)}
	}
	var items []json.RawMessage
	if isNull(raw) || json.Unmarshal(raw, &items) != nil {
		return nil
	}
	var out []string
	for _, item := range items {
		if s := scalar(item); s != "" {
			out = append(out, strings.ToLower(s))
		}
	}
	return out
}

// keys returns the sorted keys of a JSON object.
func keys(raw json.RawMessage) []string {
	var m map[string]json.RawMessage
	if isNull(raw) || json.Unmarshal(raw, &m) != nil {
		return nil
	}
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}

// imageURL reads a URL string, an object with a url field, or the first
// element of a list of either.
func imageURL(raw json.RawMessage) string {
	if s := scalar(raw); s != "" {
		return s
	}
	if isNull(raw) {
		return ""
	}
	var obj struct {
		URL json.RawMessage `json:"url"`
	}
	if json.Unmarshal(raw, &obj) == nil {
		return scalar(obj.URL)
	}
	var items []json.RawMessage
	if json.Unmarshal(raw, &items) == nil && len(items) > 0 {
		return imageURL(items[0])
	}
	return ""
}
