package groups

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"
)

// directoryTTL is how long a fetched group list stays authoritative.
// The directory changes rarely; membership churn is handled by the
// shorter decision TTL and explicit invalidation.
const directoryTTL = 5 * time.Minute

// Directory caches the daemon's full group list. It holds a single
// snapshot for the most recently queried endpoint+account pair,
// replaced wholesale on every fetch, never updated in place.
type Directory struct {
	rpc Caller
	now func() time.Time

	mu        sync.Mutex
	key       string
	groups    []Group
	fetchedAt time.Time
}

// NewDirectory returns a Directory that fetches through rpc.
func NewDirectory(rpc Caller) *Directory {
	return &Directory{rpc: rpc, now: time.Now}
}

// Groups returns the snapshot for opts, fetching when the cache is
// absent, keyed for a different connection, or past its TTL.
// forceFresh always re-fetches and replaces the snapshot.
func (d *Directory) Groups(ctx context.Context, opts Options, forceFresh bool) ([]Group, error) {
	if !forceFresh {
		if cached, ok := d.fresh(opts); ok {
			return cached, nil
		}
	}

	list, err := d.fetch(ctx, opts)
	if err != nil {
		// Leave the prior snapshot in place; stale beats absent when
		// the caller decides to retry.
		return nil, err
	}

	// Concurrent misses each fetch and the last writer wins. Both saw
	// the same authoritative list modulo a real membership change.
	d.mu.Lock()
	d.key = cacheKey(opts)
	d.groups = list
	d.fetchedAt = d.now()
	d.mu.Unlock()
	return list, nil
}

// fresh returns the live snapshot for opts without fetching, or false
// when there is none.
func (d *Directory) fresh(opts Options) ([]Group, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.groups != nil && d.key == cacheKey(opts) && d.now().Sub(d.fetchedAt) < directoryTTL {
		return d.groups, true
	}
	return nil, false
}

// Invalidate drops the snapshot so the next read re-fetches.
func (d *Directory) Invalidate() {
	d.mu.Lock()
	d.key = ""
	d.groups = nil
	d.fetchedAt = time.Time{}
	d.mu.Unlock()
}

// Wire shapes of the daemon's listGroups response. Every field beyond
// the id is optional.
type wireMember struct {
	Number *string `json:"number"`
	UUID   *string `json:"uuid"`
}

type wireGroup struct {
	ID        string       `json:"id"`
	Name      *string      `json:"name"`
	IsMember  *bool        `json:"isMember"`
	IsBlocked *bool        `json:"isBlocked"`
	Members   []wireMember `json:"members"`
}

func (d *Directory) fetch(ctx context.Context, opts Options) ([]Group, error) {
	params := map[string]any{}
	if opts.Account != "" {
		params["account"] = opts.Account
	}
	raw, err := d.rpc.Call(ctx, opts.Endpoint, "listGroups", params, opts.Timeout)
	if err != nil {
		return nil, fmt.Errorf("listGroups: %w", err)
	}

	// The daemon is expected to return an array; anything else becomes
	// an empty directory rather than an error.
	var wire []wireGroup
	if err := json.Unmarshal(raw, &wire); err != nil {
		return []Group{}, nil
	}

	list := make([]Group, 0, len(wire))
	for _, g := range wire {
		rec := Group{ID: g.ID}
		if g.Name != nil {
			rec.Name = *g.Name
		}
		if g.IsMember != nil {
			rec.IsMember = *g.IsMember
		}
		if g.IsBlocked != nil {
			rec.IsBlocked = *g.IsBlocked
		}
		for _, m := range g.Members {
			member := Member{}
			if m.Number != nil {
				member.Number = *m.Number
			}
			if m.UUID != nil {
				member.UUID = *m.UUID
			}
			rec.Members = append(rec.Members, member)
		}
		list = append(list, rec)
	}
	return list, nil
}
