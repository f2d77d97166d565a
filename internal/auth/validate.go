package auth

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	emailRe   = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	upperRe   = regexp.MustCompile(`[A-Z]`)
	digitRe   = regexp.MustCompile(`[0-9]`)
	specialRe = regexp.MustCompile(`[!@#$%^&*(),.?":{}|<>]`)
)

// Minimum lengths.
const (
	MinRegisterPassword = 8
	MinPassword         = 6
	MinName             = 2
)

// ValidationError is a user-facing input problem. Nothing is sent to the
// server when one is returned.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// ValidateEmail checks the address shape.
func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return invalid("email", "Please enter your email address")
	}
	if !emailRe.MatchString(email) {
		return invalid("email", "Please enter a valid email address")
	}
	return nil
}

// ValidateRegisterPassword applies the sign-up policy: at least 8
// characters with an upper-case letter, a digit and a symbol.
func ValidateRegisterPassword(password, confirm string) error {
	switch {
	case len(password) < MinRegisterPassword:
		return invalid("password", "Password must be at least %d characters", MinRegisterPassword)
	case !upperRe.MatchString(password):
		return invalid("password", "Password must contain at least 1 uppercase letter")
	case !digitRe.MatchString(password):
		return invalid("password", "Password must contain at least 1 number")
	case !specialRe.MatchString(password):
		return invalid("password", "Password must contain at least 1 symbol (!@#$%%^&*...)")
	case password != confirm:
		return invalid("confirm", "Password and confirmation password must match")
	}
	return nil
}

// ValidatePassword applies the reset and change policy.
func ValidatePassword(password, confirm string) error {
	if len(password) < MinPassword {
		return invalid("password", "Password must be at least %d characters", MinPassword)
	}
	if password != confirm {
		return invalid("confirm", "Password and confirmation password must match")
	}
	return nil
}

// ValidateName checks a display name.
func ValidateName(name string) error {
	if len([]rune(strings.TrimSpace(name))) < MinName {
		return invalid("name", "Name must be at least %d characters", MinName)
	}
	return nil
}
