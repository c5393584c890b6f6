package groups

import (
	"context"
	"strings"
	"sync"
	"time"

	"siggate/internal/allowlist"
	"siggate/internal/phone"
)

// decisionTTL is how long a gate verdict stays cached. Deliberately
// much shorter than the directory TTL: membership changes are exactly
// the event being gated on.
const decisionTTL = 60 * time.Second

type decision struct {
	allowed   bool
	decidedAt time.Time
}

// decisionCache holds per-group gate verdicts so a busy group does not
// trigger an RPC round trip for every inbound message.
type decisionCache struct {
	mu      sync.Mutex
	entries map[string]decision
	now     func() time.Time
}

func newDecisionCache() *decisionCache {
	return &decisionCache{entries: make(map[string]decision), now: time.Now}
}

func (c *decisionCache) get(key string) (allowed, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok || c.now().Sub(e.decidedAt) >= decisionTTL {
		return false, false
	}
	return e.allowed, true
}

func (c *decisionCache) put(key string, allowed bool) {
	c.mu.Lock()
	c.entries[key] = decision{allowed: allowed, decidedAt: c.now()}
	c.mu.Unlock()
}

// drop removes every entry for groupID across endpoint/account keys.
// The suffix comparison is case-insensitive: gate keys may carry a
// host-lowercased id while transport events carry canonical case.
func (c *decisionCache) drop(groupID string) {
	suffix := strings.ToLower("|" + groupID)
	c.mu.Lock()
	for key := range c.entries {
		if strings.HasSuffix(strings.ToLower(key), suffix) {
			delete(c.entries, key)
		}
	}
	c.mu.Unlock()
}

func (c *decisionCache) clear() {
	c.mu.Lock()
	c.entries = make(map[string]decision)
	c.mu.Unlock()
}

// IsSatisfied reports whether the group currently contains at least one
// member matching the allow-list entries in required. A missing group
// or an empty intersection is a legitimate false, not an error; only
// transport failure propagates, and the caller must treat that as
// blocked.
func (s *Service) IsSatisfied(ctx context.Context, groupID string, required []string, opts Options) (bool, error) {
	// No requirement is trivially satisfied. No RPC, no cache write.
	if len(required) == 0 {
		return true, nil
	}

	id := strings.TrimPrefix(groupID, "group:")
	key := cacheKey(opts) + "|" + id
	if allowed, ok := s.decisions.get(key); ok {
		return allowed, nil
	}

	list, err := s.dir.Groups(ctx, opts, false)
	if err != nil {
		return false, err
	}

	group := findExact(list, id)
	if group == nil {
		// Session keys may carry a lower-cased id; fall back to a
		// case-insensitive scan, exact matches taking priority.
		for i := range list {
			if strings.EqualFold(list[i].ID, id) {
				group = &list[i]
				break
			}
		}
	}
	if group == nil {
		s.decisions.put(key, false)
		return false, nil
	}

	allowed := satisfies(group, required)
	s.decisions.put(key, allowed)
	return allowed, nil
}

func satisfies(group *Group, required []string) bool {
	phones := make(map[string]struct{})
	uuids := make(map[string]struct{})
	for _, raw := range required {
		entry, ok := allowlist.Parse(raw)
		if !ok {
			continue // unparsable entries are dropped, not fatal
		}
		switch entry.Kind {
		case allowlist.KindAny:
			return true
		case allowlist.KindPhone:
			phones[entry.Phone] = struct{}{}
		case allowlist.KindUUID:
			uuids[entry.UUID] = struct{}{}
		}
	}

	for _, m := range group.Members {
		if m.Number != "" {
			if e164, ok := phone.Normalize(m.Number); ok {
				if _, hit := phones[e164]; hit {
					return true
				}
			}
		}
		if m.UUID != "" {
			if _, hit := uuids[m.UUID]; hit {
				return true
			}
		}
	}
	return false
}
