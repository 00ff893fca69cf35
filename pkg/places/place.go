// Package places defines the canonical Place entity and the id-keyed
// Dataset it lives in, including the persisted JSON form.
package places

import (
	"bytes"
	"encoding/json"
	"slices"
	"sort"

	"github.com/helgo/places/pkg/taxonomy"
)

// Place is one point of interest.
//
// Required fields are ID, Name, Category, Lat and Lon. Optional fields are
// zero when absent and are omitted from JSON, except that a key a decoded
// document carried with an empty value (null, "", 0) is written back as it
// was read until the field is set. Keys this type does not know are kept in
// Extra and written back unchanged.
type Place struct {
	ID       string            `json:"id" validate:"required"`
	Name     string            `json:"name" validate:"required"`
	Category taxonomy.Category `json:"category" validate:"required,category"`
	Lat      float64           `json:"lat" validate:"gte=-90,lte=90"`
	Lon      float64           `json:"lon" validate:"gte=-180,lte=180"`
	Tags     []string          `json:"tags" validate:"unique,dive,allowed_tag"`

	Address  string `json:"address,omitempty"`
	Website  string `json:"website,omitempty"`
	Phone    string `json:"phone,omitempty"`
	PhotoURL string `json:"photoUrl,omitempty" validate:"omitempty,url"`
	MapsURL  string `json:"mapsUrl,omitempty" validate:"omitempty,url"`

	IndoorOutdoor string `json:"indoorOutdoor,omitempty" validate:"omitempty,oneof=indoor outdoor mixed"`
	DurationMins  int    `json:"durationMins,omitempty" validate:"gte=0"`
	BestTimeOfDay string `json:"bestTimeOfDay,omitempty"`

	Description   string    `json:"description,omitempty"`
	Area          string    `json:"area,omitempty"`
	AIDescription string    `json:"aiDescription,omitempty"`
	Embedding     []float64 `json:"embedding,omitempty"`

	Extra map[string]json.RawMessage `json:"-" validate:"-"`

	// empty holds the raw value of known optional keys that were present
	// but empty when decoded.
	empty map[string]json.RawMessage
}

// placeFields is Place without methods, used to avoid recursive unmarshaling.
type placeFields Place

// field is one known key with its current value.
type field struct {
	key   string
	value any
	empty bool
}

// fields lists the known keys in output order. Required keys are never
// empty.
func (p *Place) fields() []field {
	tags := p.Tags
	if tags == nil {
		tags = []string{}
	}
	return []field{
		{"id", p.ID, false},
		{"name", p.Name, false},
		{"category", p.Category, false},
		{"lat", p.Lat, false},
		{"lon", p.Lon, false},
		{"tags", tags, false},
		{"address", p.Address, p.Address == ""},
		{"website", p.Website, p.Website == ""},
		{"phone", p.Phone, p.Phone == ""},
		{"photoUrl", p.PhotoURL, p.PhotoURL == ""},
		{"mapsUrl", p.MapsURL, p.MapsURL == ""},
		{"indoorOutdoor", p.IndoorOutdoor, p.IndoorOutdoor == ""},
		{"durationMins", p.DurationMins, p.DurationMins == 0},
		{"bestTimeOfDay", p.BestTimeOfDay, p.BestTimeOfDay == ""},
		{"description", p.Description, p.Description == ""},
		{"area", p.Area, p.Area == ""},
		{"aiDescription", p.AIDescription, p.AIDescription == ""},
		{"embedding", p.Embedding, len(p.Embedding) == 0},
	}
}

// Clone returns a deep copy of p.
func (p *Place) Clone() *Place {
	c := *p
	c.Tags = slices.Clone(p.Tags)
	c.Embedding = slices.Clone(p.Embedding)
	c.Extra = cloneRaw(p.Extra)
	c.empty = cloneRaw(p.empty)
	return &c
}

func cloneRaw(m map[string]json.RawMessage) map[string]json.RawMessage {
	if m == nil {
		return nil
	}
	out := make(map[string]json.RawMessage, len(m))
	for k, v := range m {
		out[k] = slices.Clone(v)
	}
	return out
}

// MarshalJSON writes known fields in a fixed order followed by Extra keys
// in sorted order. Tags is always an array.
func (p Place) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	n := 0
	for _, f := range p.fields() {
		var value []byte
		if f.empty {
			raw, ok := p.empty[f.key]
			if !ok {
				continue
			}
			value = raw
		} else {
			var err error
			if value, err = encodeNoEscape(f.value); err != nil {
				return nil, err
			}
		}
		if err := writeMember(&buf, n, f.key, value); err != nil {
			return nil, err
		}
		n++
	}

	keys := make([]string, 0, len(p.Extra))
	for k := range p.Extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := writeMember(&buf, n, k, p.Extra[k]); err != nil {
			return nil, err
		}
		n++
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func writeMember(buf *bytes.Buffer, n int, key string, value []byte) error {
	name, err := encodeNoEscape(key)
	if err != nil {
		return err
	}
	if n > 0 {
		buf.WriteByte(',')
	}
	buf.Write(name)
	buf.WriteByte(':')
	buf.Write(value)
	return nil
}

// UnmarshalJSON reads known fields and keeps every other key in Extra.
// A null optional field reads as absent.
func (p *Place) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	var decoded placeFields
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}
	if decoded.Tags == nil {
		decoded.Tags = []string{}
	}
	*p = Place(decoded)

	for _, f := range p.fields() {
		v, ok := raw[f.key]
		delete(raw, f.key)
		if ok && f.empty {
			if p.empty == nil {
				p.empty = make(map[string]json.RawMessage)
			}
			p.empty[f.key] = bytes.TrimSpace(v)
		}
	}
	if len(raw) > 0 {
		p.Extra = raw
	}
	return nil
}

// encodeNoEscape marshals v without HTML escaping and without the trailing
// newline json.Encoder adds.
func encodeNoEscape(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
