// Package allowlist parses free-text allow-list entries into typed
// values the membership gate can match against group members.
package allowlist

import (
	"strings"

	"siggate/internal/identifier"
	"siggate/internal/phone"
)

// Kind discriminates the parsed entry shapes.
type Kind int

const (
	// KindAny is the wildcard "*": matches any identity.
	KindAny Kind = iota
	// KindPhone matches members by E.164 phone number.
	KindPhone
	// KindUUID matches members by account uuid.
	KindUUID
)

// Entry is one parsed allow-list entry.
type Entry struct {
	Kind  Kind
	Phone string // E.164, set for KindPhone
	UUID  string // lower-cased hyphenated, set for KindUUID
}

// Parse turns a free-text allow-list entry into an Entry. ok is false
// for entries that are neither the wildcard, a phone number, nor a
// uuid; callers drop those silently.
func Parse(raw string) (Entry, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return Entry{}, false
	}
	if s == "*" {
		return Entry{Kind: KindAny}, true
	}

	rest := strings.TrimPrefix(s, "signal:")
	if body, ok := strings.CutPrefix(rest, "uuid:"); ok {
		if canon, ok := identifier.NormalizeUUID(body); ok {
			return Entry{Kind: KindUUID, UUID: canon}, true
		}
		return Entry{}, false
	}
	if canon, ok := identifier.NormalizeUUID(rest); ok {
		return Entry{Kind: KindUUID, UUID: canon}, true
	}
	if e164, ok := phone.Normalize(rest); ok {
		return Entry{Kind: KindPhone, Phone: e164}, true
	}
	return Entry{}, false
}
