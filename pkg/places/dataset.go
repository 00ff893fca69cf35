package places

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/helgo/places/pkg/constants"
	"github.com/helgo/places/pkg/errors"
	"github.com/helgo/places/pkg/taxonomy"
)

// PlacesKey is the top-level key holding the place array.
const PlacesKey = "places"

// Dataset is an insertion-ordered collection of places keyed by id.
// It is owned by one pass at a time and is not safe for concurrent use.
type Dataset struct {
	places []*Place
	index  map[string]int
	extra  map[string]json.RawMessage
}

// New returns an empty dataset.
func New() *Dataset {
	return &Dataset{index: make(map[string]int)}
}

// Len returns the number of places.
func (d *Dataset) Len() int {
	return len(d.places)
}

// Get returns the place with id. The pointer is live: changes to it are
// changes to the dataset.
func (d *Dataset) Get(id string) (*Place, bool) {
	i, ok := d.index[id]
	if !ok {
		return nil, false
	}
	return d.places[i], true
}

// Has reports whether id is present.
func (d *Dataset) Has(id string) bool {
	_, ok := d.index[id]
	return ok
}

// Insert appends p. Inserting an id that already exists is an error; the
// merger decides what a repeat id means.
func (d *Dataset) Insert(p *Place) error {
	if p == nil || p.ID == "" {
		return errors.NewValidationError("id", nil, "place id is required")
	}
	if _, dup := d.index[p.ID]; dup {
		return &errors.ValidationError{Field: "id", Value: p.ID, Message: "duplicate place id"}
	}
	d.index[p.ID] = len(d.places)
	d.places = append(d.places, p)
	return nil
}

// Places returns the places in insertion order. The slice is a copy; the
// places are not.
func (d *Dataset) Places() []*Place {
	out := make([]*Place, len(d.places))
	copy(out, d.places)
	return out
}

// IDs returns every id in insertion order.
func (d *Dataset) IDs() []string {
	ids := make([]string, len(d.places))
	for i, p := range d.places {
		ids[i] = p.ID
	}
	return ids
}

// CountByCategory tallies places per category.
func (d *Dataset) CountByCategory() map[taxonomy.Category]int {
	counts := make(map[taxonomy.Category]int)
	for _, p := range d.places {
		counts[p.Category]++
	}
	return counts
}

// Decode reads a dataset document. name is used in error messages only.
// Any structural problem is returned as a ParseError.
func Decode(r io.Reader, name string) (*Dataset, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.WrapIO("read", name, err)
	}

	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil {
		return nil, errors.WrapParse("json", name, err)
	}
	rawPlaces, ok := top[PlacesKey]
	if !ok || bytes.Equal(bytes.TrimSpace(rawPlaces), []byte("null")) {
		return nil, errors.NewParseError("json", name, `missing "places" array`, nil)
	}

	var list []*Place
	if err := json.Unmarshal(rawPlaces, &list); err != nil {
		return nil, errors.WrapParse("json", name, err)
	}

	ds := New()
	for i, p := range list {
		if p == nil || p.ID == "" {
			return nil, &errors.ParseError{Format: "json", File: name, Message: placeMessage(i, "has no id")}
		}
		if err := ds.Insert(p); err != nil {
			return nil, errors.NewParseError("json", name, placeMessage(i, "repeats id "+p.ID), err)
		}
	}

	delete(top, PlacesKey)
	if len(top) > 0 {
		ds.extra = top
	}
	return ds, nil
}

// Encode writes the dataset as indented JSON. Top-level keys other than
// "places" are written back in sorted order after it.
func (d *Dataset) Encode(w io.Writer) error {
	var buf bytes.Buffer
	buf.WriteString("{\n  ")
	writeKey(&buf, PlacesKey)

	list := d.places
	if list == nil {
		list = []*Place{}
	}
	body, err := encodeNoEscape(list)
	if err != nil {
		return err
	}
	buf.Write(body)

	keys := make([]string, 0, len(d.extra))
	for k := range d.extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		buf.WriteString(",\n  ")
		writeKey(&buf, k)
		buf.Write(d.extra[k])
	}
	buf.WriteString("\n}\n")

	var out bytes.Buffer
	if err := json.Indent(&out, buf.Bytes(), "", "  "); err != nil {
		return err
	}
	_, err = out.WriteTo(w)
	return err
}

// Load reads the dataset at path.
func Load(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewNotFoundError("dataset", path)
		}
		return nil, errors.WrapIO("open", path, err)
	}
	defer f.Close() //nolint:errcheck

	return Decode(f, path)
}

// LoadOrNew loads path, or returns an empty dataset when the file does not
// exist. Any other failure, including a malformed file, is returned.
func LoadOrNew(path string) (*Dataset, error) {
	ds, err := Load(path)
	if errors.IsNotFound(err) {
		return New(), nil
	}
	return ds, err
}

// Save writes the dataset to path through a temporary file and rename so
// readers never observe a partial document.
func (d *Dataset) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, constants.DirPermissions); err != nil {
		return errors.WrapIO("create", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return errors.WrapIO("create", dir, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) //nolint:errcheck

	if err := d.Encode(tmp); err != nil {
		_ = tmp.Close()
		return errors.WrapIO("write", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		return errors.WrapIO("close", tmpName, err)
	}
	if err := os.Chmod(tmpName, constants.FilePermissions); err != nil {
		return errors.WrapIO("chmod", tmpName, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return errors.WrapIO("rename", path, err)
	}
	return nil
}

func writeKey(buf *bytes.Buffer, key string) {
	k, _ := json.Marshal(key)
	buf.Write(k)
	buf.WriteString(": ")
}

func placeMessage(i int, what string) string {
	return "place #" + strconv.Itoa(i) + " " + what
}
