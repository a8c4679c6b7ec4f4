package wizard

import (
	"errors"
	"math"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/marcus/bastion/internal/form"
)

var validate = newValidator()

// newValidator reports fields by their JSON name, which is also the field's
// name in the catalog.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// check validates a request and converts the first failure into an inline
// error labelled from the catalog.
func check(c *form.Catalog, req any) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}
	fe := verrs[0]
	label := fe.Field()
	if m, ok := c.Meta(fe.Field()); ok {
		label = m.Label
	}
	return &form.ValidationError{Field: fe.Field(), Message: describe(label, fe.Tag())}
}

func describe(label, tag string) string {
	switch tag {
	case "required":
		return label + " is required"
	case "url":
		return label + " must be a valid URL"
	case "datetime":
		return label + " must be a date (YYYY-MM-DD)"
	case "gte":
		return label + " must not be negative"
	default:
		return label + " is invalid"
	}
}

// maxWhole is the largest count a whole-number field accepts.
const maxWhole = 1 << 53

// whole rounds a number field to an int, rejecting values out of range.
func whole(c *form.Catalog, s *form.Store, field string) (int, error) {
	n := math.Round(s.Number(field))
	if n <= maxWhole {
		return int(n), nil
	}
	label := field
	if m, ok := c.Meta(field); ok {
		label = m.Label
	}
	return 0, &form.ValidationError{Field: field, Message: label + " is too large"}
}
