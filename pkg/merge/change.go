package merge

import (
	"fmt"
	"strings"

	"github.com/helgo/places/pkg/sources"
)

// ChangeType represents the type of change.
type ChangeType string

const (
	// ChangeTypeInsert indicates a new place was added.
	ChangeTypeInsert ChangeType = "insert"
	// ChangeTypeFill indicates an empty field received a value.
	ChangeTypeFill ChangeType = "fill"
	// ChangeTypeTags indicates tags were added to a place.
	ChangeTypeTags ChangeType = "tags"
	// ChangeTypeAttach indicates a generated field was written.
	ChangeTypeAttach ChangeType = "attach"
)

// Change is one recorded modification of the dataset.
type Change struct {
	PlaceID  string     `json:"placeId" yaml:"placeId"`
	Field    string     `json:"field,omitempty" yaml:"field,omitempty"`
	OldValue string     `json:"oldValue,omitempty" yaml:"oldValue,omitempty"`
	NewValue string     `json:"newValue,omitempty" yaml:"newValue,omitempty"`
	Type     ChangeType `json:"type" yaml:"type"`
	Source   sources.ID `json:"source" yaml:"source"`
}

// String implements fmt.Stringer.
func (c Change) String() string {
	switch c.Type {
	case ChangeTypeInsert:
		return fmt.Sprintf("+ %s (%s)", c.PlaceID, c.Source)
	case ChangeTypeTags:
		return fmt.Sprintf("~ %s tags [%s] -> [%s] (%s)", c.PlaceID, c.OldValue, c.NewValue, c.Source)
	default:
		return fmt.Sprintf("~ %s %s = %q (%s)", c.PlaceID, c.Field, c.NewValue, c.Source)
	}
}

func tagList(tags []string) string {
	return strings.Join(tags, ",")
}
