// Package validator checks form input with small composable rules.
//
// Each rule returns a Rule; Apply runs them all and collects every failure
// into ValidationErrors instead of stopping at the first one:
//
//	err := validator.Apply(
//		validator.RequiredString("email", form.Email),
//		validator.Email("email", form.Email),
//		validator.MinLenString("password", form.Password, 8),
//	)
//	if ve := validator.ExtractValidationErrors(err); ve != nil {
//		msgs := ve.Get("password")
//	}
package validator

import (
	"errors"
	"strings"
)

// ErrValidation is matched by errors.Is on any ValidationErrors.
var ErrValidation = errors.New("validation failed")

// ValidationError is one failed rule.
type ValidationError struct {
	Values  map[string]any
	Field   string
	Message string
	// Key identifies the rule, e.g. "validation.required".
	Key string
}

// ValidationErrors is the result of a failed Apply.
type ValidationErrors []ValidationError

func (ve ValidationErrors) Error() string {
	parts := make([]string, 0, len(ve))
	for _, e := range ve {
		parts = append(parts, e.Field+": "+e.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (ve ValidationErrors) Is(target error) bool { return target == ErrValidation }

// Has reports whether field failed any rule.
func (ve ValidationErrors) Has(field string) bool {
	for _, e := range ve {
		if e.Field == field {
			return true
		}
	}
	return false
}

// Get returns the messages for field in rule order.
func (ve ValidationErrors) Get(field string) []string {
	var out []string
	for _, e := range ve {
		if e.Field == field {
			out = append(out, e.Message)
		}
	}
	return out
}

// GetErrors returns the failures for field.
func (ve ValidationErrors) GetErrors(field string) []ValidationError {
	var out []ValidationError
	for _, e := range ve {
		if e.Field == field {
			out = append(out, e)
		}
	}
	return out
}

// First returns the first message, or "" when there are none.
func (ve ValidationErrors) First() string {
	if len(ve) == 0 {
		return ""
	}
	return ve[0].Message
}

// Fields maps each failing field to its first message.
func (ve ValidationErrors) Fields() map[string]string {
	out := make(map[string]string, len(ve))
	for _, e := range ve {
		if _, ok := out[e.Field]; !ok {
			out[e.Field] = e.Message
		}
	}
	return out
}

// Rule is a deferred check. A passing rule returns nil.
type Rule func() *ValidationError

// Apply runs every rule and returns ValidationErrors when any failed.
func Apply(rules ...Rule) error {
	var errs ValidationErrors
	for _, rule := range rules {
		if rule == nil {
			continue
		}
		if e := rule(); e != nil {
			errs = append(errs, *e)
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

// When guards rule with cond.
func When(cond bool, rule Rule) Rule {
	if !cond {
		return nil
	}
	return rule
}

// IsValidationError reports whether err carries ValidationErrors.
func IsValidationError(err error) bool {
	return ExtractValidationErrors(err) != nil
}

// ExtractValidationErrors unwraps ValidationErrors from err, or returns nil.
func ExtractValidationErrors(err error) ValidationErrors {
	var ve ValidationErrors
	if errors.As(err, &ve) {
		return ve
	}
	return nil
}

func fail(field, key, message string, values map[string]any) *ValidationError {
	if values == nil {
		values = map[string]any{}
	}
	values["field"] = field
	return &ValidationError{Field: field, Key: key, Message: message, Values: values}
}
