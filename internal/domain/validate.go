package domain

import (
	"regexp"
	"strings"
)

// MinPasswordLength is the shortest password accepted for direct administrator creation.
const MinPasswordLength = 6

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	idPattern    = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)
)

// ValidEmail reports whether s looks like an email address.
func ValidEmail(s string) bool {
	return emailPattern.MatchString(s)
}

// ValidID reports whether s matches the identifier format used for tenants and administrators.
func ValidID(s string) bool {
	return idPattern.MatchString(s)
}

// ValidateID rejects identifiers that could never resolve, so no remote call is made for them.
func ValidateID(field, id string) error {
	if !ValidID(id) {
		return &ValidationError{Field: field, Reason: "is not a valid identifier"}
	}
	return nil
}

// ValidateEmail rejects missing or malformed addresses.
func ValidateEmail(field, email string) error {
	if strings.TrimSpace(email) == "" {
		return &ValidationError{Field: field, Reason: "is required"}
	}
	if !ValidEmail(email) {
		return &ValidationError{Field: field, Reason: "is not a valid email address"}
	}
	return nil
}

func validateOptionalEmail(field, email string) error {
	if strings.TrimSpace(email) == "" {
		return nil
	}
	return ValidateEmail(field, strings.TrimSpace(email))
}

func requireField(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return &ValidationError{Field: field, Reason: "is required"}
	}
	return nil
}
