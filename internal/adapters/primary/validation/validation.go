package validation

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/lorrc/ticket-board/internal/core/domain"
	apperrors "github.com/lorrc/ticket-board/internal/core/errors"
)

// Validator validates request data
type Validator struct {
	errors *apperrors.ValidationErrors
}

// NewValidator creates a new validator
func NewValidator() *Validator {
	return &Validator{
		errors: apperrors.NewValidationErrors(),
	}
}

// HasErrors returns true if there are validation errors
func (v *Validator) HasErrors() bool {
	return v.errors.HasErrors()
}

// Errors returns the validation errors
func (v *Validator) Errors() *apperrors.ValidationErrors {
	return v.errors
}

// MaxLength validates maximum string length
func (v *Validator) MaxLength(field, value string, max int) *Validator {
	if len(value) > max {
		v.errors.Add(field, "Must be at most "+strconv.Itoa(max)+" characters")
	}
	return v
}

// OneOf validates value is one of the allowed values
func (v *Validator) OneOf(field, value string, allowed []string) *Validator {
	if value == "" {
		return v // Empty means "use the default"
	}

	for _, a := range allowed {
		if value == a {
			return v
		}
	}

	v.errors.Add(field, "Must be one of: "+strings.Join(allowed, ", "))
	return v
}

// ParseStringQueryParam returns the trimmed, lower-cased query value or nil.
func ParseStringQueryParam(r *http.Request, key string) *string {
	value := strings.ToLower(strings.TrimSpace(r.URL.Query().Get(key)))
	if value == "" {
		return nil
	}
	return &value
}

// ParseViewOptions reads `grouping` and `ordering` from the query string,
// falling back to defaults for absent parameters. Unknown values are
// reported together as validation errors.
func ParseViewOptions(r *http.Request, defaults domain.ViewOptions) (domain.ViewOptions, error) {
	opts := defaults

	grouping := ParseStringQueryParam(r, "grouping")
	ordering := ParseStringQueryParam(r, "ordering")

	v := NewValidator()
	if grouping != nil {
		v.MaxLength("grouping", *grouping, 32).OneOf("grouping", *grouping, domain.GroupingNames())
	}
	if ordering != nil {
		v.MaxLength("ordering", *ordering, 32).OneOf("ordering", *ordering, domain.OrderingNames())
	}
	if v.HasErrors() {
		return domain.ViewOptions{}, v.Errors()
	}

	if grouping != nil {
		opts.Grouping = domain.Grouping(*grouping)
	}
	if ordering != nil {
		opts.Ordering = domain.Ordering(*ordering)
	}
	return opts, nil
}
