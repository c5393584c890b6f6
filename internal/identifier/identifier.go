// Package identifier normalizes and classifies the textual forms a
// Signal target can arrive in: E.164 phone numbers, account uuids
// (hyphenated or compact hex, with or without a "uuid:" prefix), and
// base64 group ids carrying a "group:" prefix. All forms may be wrapped
// in an outer "signal:" scheme.
package identifier

import (
	"regexp"
	"strings"

	"github.com/google/uuid"

	"siggate/internal/phone"
)

var (
	hyphenatedUUID = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)
	compactUUID    = regexp.MustCompile(`^[0-9a-fA-F]{32}$`)
)

// NormalizeUUID canonicalizes a uuid body to its lower-cased hyphenated
// form, re-inserting hyphens when the input is 32 compact hex digits.
// ok is false when body is not uuid-shaped.
func NormalizeUUID(body string) (string, bool) {
	if !hyphenatedUUID.MatchString(body) && !compactUUID.MatchString(body) {
		return "", false
	}
	u, err := uuid.Parse(body)
	if err != nil {
		return "", false
	}
	return u.String(), true
}

// NormalizeTarget converts any accepted textual form of a target into
// its canonical form. Uuids come out lower-cased and hyphenated, phone
// numbers as E.164, group ids keep their original case (base64 group
// ids are case-sensitive) behind a "group:" prefix. Unrecognized forms
// pass through unchanged for the caller to reject.
func NormalizeTarget(input string) string {
	rest := strings.TrimPrefix(input, "signal:")
	if body, ok := strings.CutPrefix(rest, "uuid:"); ok {
		if canon, ok := NormalizeUUID(body); ok {
			return canon
		}
		return rest
	}
	if body, ok := strings.CutPrefix(rest, "group:"); ok {
		return "group:" + body
	}
	if canon, ok := NormalizeUUID(rest); ok {
		return canon
	}
	if e164, ok := phone.Normalize(rest); ok {
		return e164
	}
	return rest
}

// LooksLikeTargetID reports whether input is plausibly a uuid or group
// identifier. Group bodies are not base64-validated; group ids are
// opaque and the daemon is the authority on them. Phone numbers are
// deliberately excluded.
func LooksLikeTargetID(input string) bool {
	rest := strings.TrimPrefix(input, "signal:")
	if body, ok := strings.CutPrefix(rest, "uuid:"); ok {
		return hyphenatedUUID.MatchString(body) || compactUUID.MatchString(body)
	}
	if body, ok := strings.CutPrefix(rest, "group:"); ok {
		return body != ""
	}
	return hyphenatedUUID.MatchString(rest) || compactUUID.MatchString(rest)
}
