package groups

import (
	"context"
	"fmt"
	"strings"
)

// NotFoundError reports that no group case-insensitively matched the
// queried id.
type NotFoundError struct {
	GroupID string
	Scanned int
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("group %q not found among %d groups known to the daemon", e.GroupID, e.Scanned)
}

// AmbiguousError reports that more than one group matched the queried
// id case-insensitively. Base64's character space makes this extremely
// unlikely, but it is handled rather than assumed away.
type AmbiguousError struct {
	GroupID string
	Matches int
}

func (e *AmbiguousError) Error() string {
	return fmt.Sprintf("group id %q matches %d groups case-insensitively; supply the exact id", e.GroupID, e.Matches)
}

// Resolve maps a possibly case-mangled group id back to the canonical
// id the daemon reports. Group ids are base64 and case-sensitive at the
// protocol layer, but the host lower-cases them when building session
// keys; this is the single place that lossy transform gets repaired.
func (s *Service) Resolve(ctx context.Context, groupID string, opts Options) (string, error) {
	id := strings.TrimPrefix(groupID, "group:")

	// Zero-cost path for already-canonical ids on a fresh snapshot.
	if cached, ok := s.dir.fresh(opts); ok {
		if g := findExact(cached, id); g != nil {
			return g.ID, nil
		}
	}

	list, err := s.dir.Groups(ctx, opts, true)
	if err != nil {
		return "", err
	}
	if g := findExact(list, id); g != nil {
		return g.ID, nil
	}

	var matches []string
	for i := range list {
		if strings.EqualFold(list[i].ID, id) {
			matches = append(matches, list[i].ID)
		}
	}
	switch len(matches) {
	case 1:
		return matches[0], nil
	case 0:
		return "", &NotFoundError{GroupID: groupID, Scanned: len(list)}
	default:
		return "", &AmbiguousError{GroupID: groupID, Matches: len(matches)}
	}
}
