// Package validation contains input validation rules shared across services.
package validation

import (
	"errors"
	"net/mail"
)

const minPasswordLength = 8

// ValidateEmail checks that the address parses as an RFC 5322 address.
func ValidateEmail(email string) error {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return errors.New("Invalid email address")
	}
	return nil
}

// ValidatePassword enforces the minimum password length.
func ValidatePassword(password string) error {
	if len(password) < minPasswordLength {
		return errors.New("Password must be at least 8 characters")
	}
	return nil
}
