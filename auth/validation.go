package auth

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

const (
	minPasswordLength      = 8
	verificationCodeLength = 6

	// PasswordSymbols are the special characters a password must include at least one of
	PasswordSymbols = `!@#$%^&*(),.?":{}|<>_-`
)

var (
	// local@domain where the domain has at least one dot
	emailPattern  = regexp.MustCompile(`^[^\s@]+@[^\s@.]+(\.[^\s@.]+)+$`)
	digitsPattern = regexp.MustCompile(`^[0-9]+$`)

	lowerEmail = cases.Lower(language.Und)
)

// FieldError is a single field level validation failure
type FieldError struct {
	Field   string
	Message string
}

// ValidationError is returned when one or more form fields fail validation
type ValidationError struct {
	Fields []FieldError
}

// Error implements error
func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// FieldMessages returns the first message reported for each field
func (e *ValidationError) FieldMessages() map[string]string {
	messages := make(map[string]string, len(e.Fields))
	for _, f := range e.Fields {
		if _, ok := messages[f.Field]; !ok {
			messages[f.Field] = f.Message
		}
	}
	return messages
}

// Validator collects field errors through a chainable API. Every form uses the same rules.
// Rules other than Required pass on empty input so a missing field reports only once.
//
// A Validator is not safe for concurrent use; create one per form submission.
type Validator struct {
	errs []FieldError
}

// NewValidator creates an empty Validator
func NewValidator() *Validator {
	return &Validator{}
}

// Required fails if the trimmed value is empty
func (v *Validator) Required(field, value string) *Validator {
	if strings.TrimSpace(value) == "" {
		v.add(field, "This field is required")
	}
	return v
}

// Email fails unless the value looks like local@domain.tld
func (v *Validator) Email(field, value string) *Validator {
	value = strings.TrimSpace(value)
	if value != "" && !emailPattern.MatchString(value) {
		v.add(field, "Must be a valid email address")
	}
	return v
}

// Alphabetic fails if the value holds anything other than letters and spaces
func (v *Validator) Alphabetic(field, value string) *Validator {
	value = norm.NFC.String(strings.TrimSpace(value))
	if value == "" {
		return v
	}
	for _, r := range value {
		if !unicode.IsLetter(r) && r != ' ' {
			v.add(field, "Only letters and spaces are allowed")
			return v
		}
	}
	return v
}

// Digits fails if the value holds anything other than 0-9
func (v *Validator) Digits(field, value string) *Validator {
	value = strings.TrimSpace(value)
	if value != "" && !digitsPattern.MatchString(value) {
		v.add(field, "Only digits are allowed")
	}
	return v
}

// Password enforces the account password policy
func (v *Validator) Password(field, value string) *Validator {
	if value == "" {
		return v
	}
	if utf8.RuneCountInString(value) < minPasswordLength {
		v.add(field, fmt.Sprintf("Minimum %d characters", minPasswordLength))
	}
	if !strings.ContainsFunc(value, unicode.IsUpper) {
		v.add(field, "Must contain at least one uppercase letter")
	}
	if !strings.ContainsAny(value, PasswordSymbols) {
		v.add(field, "Must contain at least one of "+PasswordSymbols)
	}
	return v
}

// Code fails unless the value is a verification code of the expected length
func (v *Validator) Code(field, value string) *Validator {
	value = strings.TrimSpace(value)
	if value == "" {
		return v
	}
	if utf8.RuneCountInString(value) != verificationCodeLength || strings.ContainsFunc(value, unicode.IsSpace) {
		v.add(field, fmt.Sprintf("Must be %d characters", verificationCodeLength))
	}
	return v
}

// PositiveInt fails unless the value parses as an integer greater than zero
func (v *Validator) PositiveInt(field, value string) *Validator {
	value = strings.TrimSpace(value)
	if value == "" {
		return v
	}
	if n, err := strconv.Atoi(value); err != nil || n <= 0 {
		v.add(field, "Must be a whole number greater than zero")
	}
	return v
}

// NonNegativeInt fails unless the value parses as an integer of zero or more
func (v *Validator) NonNegativeInt(field, value string) *Validator {
	value = strings.TrimSpace(value)
	if value == "" {
		return v
	}
	if n, err := strconv.Atoi(value); err != nil || n < 0 {
		v.add(field, "Must be a whole number of zero or more")
	}
	return v
}

// OneOf fails if the value is not in the allowed set
func (v *Validator) OneOf(field, value string, allowed ...string) *Validator {
	value = strings.TrimSpace(value)
	if value == "" {
		return v
	}
	for _, a := range allowed {
		if value == a {
			return v
		}
	}
	v.add(field, "Must be one of: "+strings.Join(allowed, ", "))
	return v
}

// HasErrors reports whether any rule failed so far
func (v *Validator) HasErrors() bool {
	return len(v.errs) > 0
}

// Err returns a *ValidationError if any rule failed, or nil
func (v *Validator) Err() error {
	if len(v.errs) == 0 {
		return nil
	}
	return &ValidationError{Fields: append([]FieldError(nil), v.errs...)}
}

func (v *Validator) add(field, message string) {
	v.errs = append(v.errs, FieldError{Field: field, Message: message})
}

// NormaliseEmail trims and lowercases an email address
func NormaliseEmail(email string) string {
	return lowerEmail.String(strings.TrimSpace(email))
}

// NormaliseName trims a personal name and composes it to NFC
func NormaliseName(name string) string {
	return norm.NFC.String(strings.TrimSpace(name))
}

// NormaliseCode trims a verification code
func NormaliseCode(code string) string {
	return strings.TrimSpace(code)
}
