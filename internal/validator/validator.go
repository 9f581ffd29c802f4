package validator

import (
	"regexp"
	"unicode"
	"unicode/utf8"
)

var (
	EmailRX = regexp.MustCompile("^[a-zA-Z0-9.!#$%&'*+\\/=?^_`{|}~-]+@[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?(?:\\.[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?)+$")
)

// FieldError is a single violated rule. A field can fail more than one rule.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type Errors []FieldError

type Validator struct {
	Errors Errors
}

func New() *Validator {
	return &Validator{Errors: Errors{}}
}

func (v *Validator) Valid() bool {
	return len(v.Errors) == 0
}

func (v *Validator) AddError(key, message string) {
	for _, e := range v.Errors {
		if e.Field == key && e.Message == message {
			return
		}
	}
	v.Errors = append(v.Errors, FieldError{Field: key, Message: message})
}

func (v *Validator) Check(ok bool, key, message string) {
	if !ok {
		v.AddError(key, message)
	}
}

// Has reports whether at least one rule failed for key.
func (v *Validator) Has(key string) bool {
	for _, e := range v.Errors {
		if e.Field == key {
			return true
		}
	}
	return false
}

func In[T comparable](value T, list ...T) bool {
	for _, item := range list {
		if item == value {
			return true
		}
	}
	return false
}

func Matches(value string, rx *regexp.Regexp) bool {
	return rx.MatchString(value)
}

func MinChars(value string, n int) bool {
	return utf8.RuneCountInString(value) >= n
}

func MaxChars(value string, n int) bool {
	return utf8.RuneCountInString(value) <= n
}

// Alphanumeric accepts ASCII letters and digits only. The empty string is not alphanumeric.
func Alphanumeric(value string) bool {
	if value == "" {
		return false
	}
	for _, r := range value {
		if r > unicode.MaxASCII || !(unicode.IsLetter(r) || unicode.IsDigit(r)) {
			return false
		}
	}
	return true
}
