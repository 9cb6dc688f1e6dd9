package validate

import (
	"regexp"
	"strings"
)

type ErrField struct {
	Field string `json:"field"`
	Msg   string `json:"msg"`
}

type Errs []ErrField

func (e Errs) Error() string { // error interface
	var b strings.Builder
	for i, ef := range e {
		if i > 0 {
			b.WriteString("; ")
		}
		b.WriteString(ef.Field + ": " + ef.Msg)
	}
	return b.String()
}

var (
	usernameRe = regexp.MustCompile(`^[A-Za-z0-9_]+$`)
	emailRe    = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	phoneRe    = regexp.MustCompile(`^[+]?[(]?[0-9]{3}[)]?[-\s.]?[0-9]{3}[-\s.]?[0-9]{4,6}$`)
)

// Helpers

func Required(field, value string) *ErrField {
	if strings.TrimSpace(value) == "" {
		return &ErrField{Field: field, Msg: "required"}
	}
	return nil
}

func Username(v string) *ErrField {
	if len(v) < 3 || len(v) > 30 {
		return &ErrField{Field: "username", Msg: "must be 3-30 characters"}
	}
	if !usernameRe.MatchString(v) {
		return &ErrField{Field: "username", Msg: "must contain only letters, numbers, and underscores"}
	}
	return nil
}

func Email(v string) *ErrField {
	if !emailRe.MatchString(v) {
		return &ErrField{Field: "email", Msg: "invalid email address"}
	}
	return nil
}

// Phone accepts the empty string: the number is optional everywhere.
func Phone(v string) *ErrField {
	if v == "" {
		return nil
	}
	if !phoneRe.MatchString(v) {
		return &ErrField{Field: "phone_number", Msg: "invalid phone number format"}
	}
	return nil
}

func Password(v string) *ErrField {
	if len(v) < 6 {
		return &ErrField{Field: "password", Msg: "must be at least 6 characters"}
	}
	return nil
}
