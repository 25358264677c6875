package validation

import (
	"fmt"
	"strings"

	"github.com/kbukum/audioscribe/errors"
)

// FieldError is one failed check, keyed by config path.
type FieldError struct {
	Field   string `json:"field" yaml:"field"`
	Message string `json:"message" yaml:"message"`
}

func (e FieldError) String() string { return e.Field + ": " + e.Message }

// Validator accumulates failed checks so that one run reports all of them.
type Validator struct {
	errs []FieldError
}

func New() *Validator {
	return &Validator{}
}

func (v *Validator) AddError(field, message string) {
	v.errs = append(v.errs, FieldError{Field: field, Message: message})
}

func (v *Validator) HasErrors() bool { return len(v.errs) > 0 }

func (v *Validator) Errors() []FieldError { return v.errs }

// Validate returns the collected failures as a single VALIDATION_ERROR,
// or nil.
func (v *Validator) Validate() error {
	return fail(v.errs)
}

// Required rejects empty and whitespace-only values.
func (v *Validator) Required(field, value string) *Validator {
	if strings.TrimSpace(value) == "" {
		v.AddError(field, "is required")
	}
	return v
}

func (v *Validator) Min(field string, value, floor int) *Validator {
	if value < floor {
		v.AddError(field, fmt.Sprintf("must be at least %d", floor))
	}
	return v
}

// OneOf accepts an empty value; pair it with Required when needed.
func (v *Validator) OneOf(field, value string, allowed []string) *Validator {
	if value == "" {
		return v
	}
	for _, a := range allowed {
		if value == a {
			return v
		}
	}
	v.AddError(field, "must be one of: "+strings.Join(allowed, ", "))
	return v
}

// Custom records message against field unless ok holds.
func (v *Validator) Custom(ok bool, field, message string) *Validator {
	if !ok {
		v.AddError(field, message)
	}
	return v
}

func fail(errs []FieldError) error {
	if len(errs) == 0 {
		return nil
	}
	msgs := make([]string, len(errs))
	for i, e := range errs {
		msgs[i] = e.String()
	}
	return errors.Validation(strings.Join(msgs, "; ")).WithDetail("fields", errs)
}
