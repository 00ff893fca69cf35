package places

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/helgo/places/pkg/errors"
	"github.com/helgo/places/pkg/taxonomy"
)

// Issue is one dataset-level validation finding.
type Issue struct {
	PlaceID string
	Field   string
	Message string
}

// String implements fmt.Stringer.
func (i Issue) String() string {
	if i.PlaceID == "" {
		return fmt.Sprintf("%s: %s", i.Field, i.Message)
	}
	return fmt.Sprintf("%s: %s: %s", i.PlaceID, i.Field, i.Message)
}

// Validator checks places against struct tags plus the taxonomy's category
// set and tag allow-list.
type Validator struct {
	validate *validator.Validate
}

// NewValidator creates a Validator bound to tables.
func NewValidator(tables *taxonomy.Tables) *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("category", func(fl validator.FieldLevel) bool {
		return tables.IsCategory(taxonomy.Category(fl.Field().String()))
	})
	_ = v.RegisterValidation("allowed_tag", func(fl validator.FieldLevel) bool {
		return tables.IsTag(fl.Field().String())
	})
	return &Validator{validate: v}
}

// Place validates one place. The returned error is a ValidationError that
// names every failing field.
func (v *Validator) Place(p *Place) error {
	issues := v.placeIssues(p)
	if len(issues) == 0 {
		return nil
	}
	fields := make([]string, len(issues))
	msgs := make([]string, len(issues))
	for i, is := range issues {
		fields[i] = is.Field
		msgs[i] = is.Field + " " + is.Message
	}
	return errors.NewValidationError(strings.Join(fields, ","), p.ID, strings.Join(msgs, "; "))
}

// Dataset validates every place plus the embedding dimension, which must
// be identical across the dataset.
func (v *Validator) Dataset(ds *Dataset) []Issue {
	var issues []Issue
	dim := 0
	for _, p := range ds.places {
		issues = append(issues, v.placeIssues(p)...)
		if len(p.Embedding) == 0 {
			continue
		}
		if dim == 0 {
			dim = len(p.Embedding)
			continue
		}
		if len(p.Embedding) != dim {
			issues = append(issues, Issue{
				PlaceID: p.ID,
				Field:   "embedding",
				Message: fmt.Sprintf("has %d dimensions, dataset uses %d", len(p.Embedding), dim),
			})
		}
	}
	return issues
}

func (v *Validator) placeIssues(p *Place) []Issue {
	err := v.validate.Struct(p)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return []Issue{{PlaceID: p.ID, Field: "place", Message: err.Error()}}
	}
	issues := make([]Issue, 0, len(verrs))
	for _, fe := range verrs {
		issues = append(issues, Issue{PlaceID: p.ID, Field: fieldName(fe), Message: describe(fe)})
	}
	return issues
}

func fieldName(fe validator.FieldError) string {
	ns := fe.Namespace()
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return ns
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "category":
		return fmt.Sprintf("%q is not a taxonomy category", fe.Value())
	case "allowed_tag":
		return fmt.Sprintf("%q is not an allowed tag", fe.Value())
	case "unique":
		return "contains duplicates"
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	case "gte", "lte":
		return fmt.Sprintf("is out of range (%s %s)", fe.Tag(), fe.Param())
	case "url":
		return "is not a valid URL"
	default:
		return "is invalid"
	}
}
