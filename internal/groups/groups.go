// Package groups is the group-identity core of the Signal channel
// adapter: a TTL-cached mirror of the daemon's group directory, a
// resolver that repairs case-mangled group ids back to their canonical
// form, and a membership gate that decides whether a group currently
// contains at least one allow-listed identity.
package groups

import (
	"context"
	"encoding/json"
	"strings"
	"time"
)

// Member is one group member as reported by the daemon. Either field
// may be empty; the daemon omits what it does not know.
type Member struct {
	Number string
	UUID   string
}

// Group is a single entry from the daemon's group directory.
type Group struct {
	ID        string // canonical case, exactly as the daemon reports it
	Name      string
	IsMember  bool
	IsBlocked bool
	Members   []Member
}

// Options addresses one daemon connection per call. There is no
// implicit global configuration; every operation takes the endpoint it
// should talk to.
type Options struct {
	Endpoint string
	Account  string        // optional, disambiguates multi-account daemons
	Timeout  time.Duration // per-RPC timeout, zero means the transport default
}

// Caller issues one JSON-RPC call against a daemon endpoint.
// *signalrpc.Client satisfies it; tests inject fakes.
type Caller interface {
	Call(ctx context.Context, endpoint, method string, params map[string]any, timeout time.Duration) (json.RawMessage, error)
}

// Service bundles the directory cache with the decision cache and
// exposes the resolver, the gate, and their invalidation controls.
// Construct one per adapter instance.
type Service struct {
	dir       *Directory
	decisions *decisionCache
}

// NewService returns a Service whose directory reads go through rpc.
func NewService(rpc Caller) *Service {
	return &Service{
		dir:       NewDirectory(rpc),
		decisions: newDecisionCache(),
	}
}

// Groups returns the daemon's group directory for opts, served from
// cache when fresh. forceFresh bypasses the cache TTL.
func (s *Service) Groups(ctx context.Context, opts Options, forceFresh bool) ([]Group, error) {
	return s.dir.Groups(ctx, opts, forceFresh)
}

// Invalidate drops the cached gate decision for groupID across all
// endpoint/account keys and forces the next directory read to
// re-fetch. Other groups' cached decisions are untouched. The host
// calls this when the transport reports a group membership change.
func (s *Service) Invalidate(groupID string) {
	s.decisions.drop(strings.TrimPrefix(groupID, "group:"))
	s.dir.Invalidate()
}

// InvalidateAll clears every cached decision and the directory snapshot.
func (s *Service) InvalidateAll() {
	s.decisions.clear()
	s.dir.Invalidate()
}

// cacheKey identifies one daemon connection. Switching accounts changes
// the key, which invalidates the directory fast path without any
// explicit eviction.
func cacheKey(opts Options) string {
	return opts.Endpoint + "|" + opts.Account
}

func findExact(list []Group, id string) *Group {
	for i := range list {
		if list[i].ID == id {
			return &list[i]
		}
	}
	return nil
}
