package domain

import (
	"strings"
	"unicode/utf8"

	"github.com/rivo/uniseg"
)

// MaxNameLength is the longest accepted name, counted in grapheme clusters.
const MaxNameLength = 256

const forbiddenNameChars = `/()"<>\{}`

// SubscriberName is a display name that has passed validation.
type SubscriberName struct {
	value string
}

// ParseSubscriberName validates raw and wraps it. The text is kept exactly as
// submitted; trimming only decides emptiness.
func ParseSubscriberName(raw string) (SubscriberName, error) {
	if !utf8.ValidString(raw) {
		return SubscriberName{}, invalid("name", "must be valid UTF-8")
	}
	if strings.TrimSpace(raw) == "" {
		return SubscriberName{}, invalid("name", "must not be empty")
	}
	if uniseg.GraphemeClusterCount(raw) > MaxNameLength {
		return SubscriberName{}, invalid("name", "must be at most 256 characters")
	}
	if strings.ContainsAny(raw, forbiddenNameChars) {
		return SubscriberName{}, invalid("name", `must not contain any of / ( ) " < > \ { }`)
	}
	return SubscriberName{value: raw}, nil
}

// String returns the validated name.
func (n SubscriberName) String() string { return n.value }
