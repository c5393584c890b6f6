// Package phone normalizes phone numbers into canonical E.164 form.
// The daemon and the allow-list both carry numbers in a variety of
// spacings and punctuation; everything funnels through Normalize before
// comparison.
package phone

import (
	"regexp"
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// shape is a cheap pre-filter so obviously non-numeric strings (uuids,
// group ids, names) never reach the parser.
var shape = regexp.MustCompile(`^\+?[0-9][0-9 ().-]{2,19}$`)

// Normalize converts raw into E.164 (leading "+", digits only after).
// ok is false when raw does not look like a phone number at all.
func Normalize(raw string) (string, bool) {
	s := strings.TrimSpace(raw)
	if !shape.MatchString(s) {
		return "", false
	}
	if !strings.HasPrefix(s, "+") {
		s = "+" + s
	}
	num, err := phonenumbers.Parse(s, "")
	if err != nil {
		return "", false
	}
	return phonenumbers.Format(num, phonenumbers.E164), true
}
