package domain

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

// validate is safe for concurrent use and caches nothing per call.
var validate = validator.New()

// SubscriberEmail is an email address that has passed syntactic validation.
// No DNS or mailbox check is performed.
type SubscriberEmail struct {
	value string
}

// ParseSubscriberEmail validates raw as local-part@domain where the domain
// holds at least one dot and the whole address has no whitespace.
func ParseSubscriberEmail(raw string) (SubscriberEmail, error) {
	if raw == "" {
		return SubscriberEmail{}, invalid("email", "must not be empty")
	}
	if !utf8.ValidString(raw) {
		return SubscriberEmail{}, invalid("email", "must be valid UTF-8")
	}
	if strings.IndexFunc(raw, unicode.IsSpace) >= 0 {
		return SubscriberEmail{}, invalid("email", "must not contain whitespace")
	}
	if strings.Count(raw, "@") != 1 {
		return SubscriberEmail{}, invalid("email", "must contain exactly one @")
	}
	local, host, _ := strings.Cut(raw, "@")
	if local == "" {
		return SubscriberEmail{}, invalid("email", "local part must not be empty")
	}
	if !validDomain(host) {
		return SubscriberEmail{}, invalid("email", "domain must contain a dot between non-empty labels")
	}
	if err := validate.Var(raw, "email"); err != nil {
		return SubscriberEmail{}, invalid("email", "is not a valid address")
	}
	return SubscriberEmail{value: raw}, nil
}

func validDomain(host string) bool {
	if !strings.Contains(host, ".") {
		return false
	}
	for _, label := range strings.Split(host, ".") {
		if label == "" {
			return false
		}
	}
	return true
}

// String returns the validated address.
func (e SubscriberEmail) String() string { return e.value }
