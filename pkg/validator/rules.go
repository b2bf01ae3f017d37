package validator

import (
	"fmt"
	"net/mail"
	"slices"
	"strings"
	"time"
	"unicode/utf8"
)

// Number is any numeric type a rule can compare.
type Number interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64
}

func RequiredString(field, value string) Rule {
	return func() *ValidationError {
		if strings.TrimSpace(value) == "" {
			return fail(field, "validation.required", "is required", nil)
		}
		return nil
	}
}

// RequiredNum fails on the zero value.
func RequiredNum[T Number](field string, value T) Rule {
	return func() *ValidationError {
		if value == 0 {
			return fail(field, "validation.required", "is required", nil)
		}
		return nil
	}
}

func MinLenString(field, value string, min int) Rule {
	return func() *ValidationError {
		if utf8.RuneCountInString(value) < min {
			return fail(field, "validation.min_length",
				fmt.Sprintf("must be at least %d characters long", min),
				map[string]any{"min": min})
		}
		return nil
	}
}

func MaxLenString(field, value string, max int) Rule {
	return func() *ValidationError {
		if utf8.RuneCountInString(value) > max {
			return fail(field, "validation.max_length",
				fmt.Sprintf("must not exceed %d characters", max),
				map[string]any{"max": max})
		}
		return nil
	}
}

func MinNum[T Number](field string, value, min T) Rule {
	return func() *ValidationError {
		if value < min {
			return fail(field, "validation.min", fmt.Sprintf("must be at least %v", min), map[string]any{"min": min})
		}
		return nil
	}
}

func MaxNum[T Number](field string, value, max T) Rule {
	return func() *ValidationError {
		if value > max {
			return fail(field, "validation.max", fmt.Sprintf("must not exceed %v", max), map[string]any{"max": max})
		}
		return nil
	}
}

// Positive fails unless value > 0.
func Positive[T Number](field string, value T) Rule {
	return func() *ValidationError {
		if value <= 0 {
			return fail(field, "validation.positive", "must be greater than zero", nil)
		}
		return nil
	}
}

// Email accepts a bare address; empty input passes so it composes with
// RequiredString.
func Email(field, value string) Rule {
	return func() *ValidationError {
		if value == "" {
			return nil
		}
		addr, err := mail.ParseAddress(value)
		if err != nil || addr.Address != value {
			return fail(field, "validation.email", "must be a valid email address", nil)
		}
		return nil
	}
}

// OneOf fails when value is not among allowed.
func OneOf[T comparable](field string, value T, allowed ...T) Rule {
	return func() *ValidationError {
		if !slices.Contains(allowed, value) {
			return fail(field, "validation.one_of", "is not a valid option", map[string]any{"allowed": allowed})
		}
		return nil
	}
}

// NotBefore fails when value is earlier than min. A zero value passes.
func NotBefore(field string, value, min time.Time) Rule {
	return func() *ValidationError {
		if !value.IsZero() && value.Before(min) {
			return fail(field, "validation.not_before",
				"must not be before "+min.Format(time.DateOnly),
				map[string]any{"min": min})
		}
		return nil
	}
}
