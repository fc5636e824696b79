// Package validation holds the pure field checks for contact data. It never
// touches the store; uniqueness is the service's concern.
package validation

import (
	"regexp"
	"strings"

	"github.com/crmlite/contact-api/internal/domain"
)

const (
	MinNameLen  = 2
	MinPhoneLen = 10
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidateContact checks all four fields in one pass and returns a map of
// field name to message for every violation. An empty map means the input is
// valid. Length checks run against the trimmed value.
func ValidateContact(name, email, phone string, status domain.ContactStatus) map[string]string {
	errs := make(map[string]string)

	if msg := CheckName(name); msg != "" {
		errs["name"] = msg
	}
	if msg := CheckEmail(email); msg != "" {
		errs["email"] = msg
	}
	if msg := CheckPhone(phone); msg != "" {
		errs["phone"] = msg
	}
	if msg := CheckStatus(status); msg != "" {
		errs["status"] = msg
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

func CheckName(name string) string {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "name is required"
	}
	if len([]rune(trimmed)) < MinNameLen {
		return "name must be at least 2 characters"
	}
	return ""
}

func CheckEmail(email string) string {
	trimmed := strings.TrimSpace(email)
	if trimmed == "" {
		return "email is required"
	}
	if !emailPattern.MatchString(trimmed) {
		return "email address is invalid"
	}
	return ""
}

func CheckPhone(phone string) string {
	trimmed := strings.TrimSpace(phone)
	if trimmed == "" {
		return "phone is required"
	}
	if len([]rune(trimmed)) < MinPhoneLen {
		return "phone must be at least 10 characters"
	}
	return ""
}

func CheckStatus(status domain.ContactStatus) string {
	if !status.IsValid() {
		return "status must be active or inactive"
	}
	return ""
}

// NormalizeEmail produces the canonical form used for storage and comparison.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
