// Package validation provides input validation utilities
package validation

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/mrJackie7/coderdev-hub/internal/models"
)

const (
	// MinPasswordLength is the shortest accepted password.
	MinPasswordLength = 6
	// MaxPasswordBytes is the longest input bcrypt will hash.
	MaxPasswordBytes = 72
)

var errPasswordTooLong = fmt.Errorf("password must not exceed %d bytes", MaxPasswordBytes)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// ValidatePassword checks if a password meets the length requirement
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return fmt.Errorf("password must be at least %d characters long", MinPasswordLength)
	}
	if len(password) > MaxPasswordBytes {
		return errPasswordTooLong
	}
	return nil
}

// ValidateEmail checks basic email format
func ValidateEmail(email string) error {
	if !emailRegex.MatchString(email) {
		return fmt.Errorf("invalid email format")
	}
	if len(email) > 254 {
		return fmt.Errorf("email must not exceed 254 characters")
	}
	return nil
}

// Checker collects field failures in the order they were checked, so a
// response can list every problem with a request at once.
type Checker struct {
	fields []models.ErrorMessage
}

func (c *Checker) add(param, msg string) {
	c.fields = append(c.fields, models.ErrorMessage{Msg: msg, Param: param})
}

// Required fails when value is blank.
func (c *Checker) Required(param, value, msg string) {
	if strings.TrimSpace(value) == "" {
		c.add(param, msg)
	}
}

// Email fails when value is not an email address.
func (c *Checker) Email(param, value, msg string) {
	if ValidateEmail(value) != nil {
		c.add(param, msg)
	}
}

// Password fails with msg when value is too short, and with its own
// message when value is longer than bcrypt accepts.
func (c *Checker) Password(param, value, msg string) {
	switch err := ValidatePassword(value); {
	case err == nil:
	case err == errPasswordTooLong:
		c.add(param, "Password must not exceed 72 bytes")
	default:
		c.add(param, msg)
	}
}

// Err returns nil when every check passed, otherwise a VALIDATION_ERROR
// carrying one message per failure.
func (c *Checker) Err() error {
	if len(c.fields) == 0 {
		return nil
	}
	return models.NewFieldErrors(c.fields...)
}
