// Package adapter is the host-facing surface of the Signal channel
// adapter: the membership gate with its fail-closed contract applied,
// the canonical group-id resolver for outbound addressing, and the
// invalidation hook the host calls on group-change events.
package adapter

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"siggate/internal/groups"
	"siggate/internal/signalrpc"
)

// Adapter binds the group-identity core to one daemon connection.
type Adapter struct {
	groups *groups.Service
	opts   groups.Options
}

// New builds an adapter around svc for the daemon connection opts
// describes.
func New(svc *groups.Service, opts groups.Options) *Adapter {
	return &Adapter{groups: svc, opts: opts}
}

// FromEnv builds an adapter from SIGNAL_ENDPOINT and SIGNAL_ACCOUNT,
// the variables the runtime's channel adapters configure themselves
// with. A .env file is honored when present.
func FromEnv() (*Adapter, error) {
	_ = godotenv.Load()

	endpoint := os.Getenv("SIGNAL_ENDPOINT")
	if endpoint == "" {
		return nil, fmt.Errorf("SIGNAL_ENDPOINT environment variable is required")
	}
	opts := groups.Options{
		Endpoint: endpoint,
		Account:  os.Getenv("SIGNAL_ACCOUNT"),
	}
	return New(groups.NewService(signalrpc.New()), opts), nil
}

// AllowGroupMessage decides whether an inbound group message passes the
// membership gate. An empty allowFrom admits everything. A transport
// failure blocks the message rather than propagating: the gate fails
// closed.
func (a *Adapter) AllowGroupMessage(ctx context.Context, groupID string, allowFrom []string) bool {
	ok, err := a.groups.IsSatisfied(ctx, groupID, allowFrom, a.opts)
	if err != nil {
		log.Printf("[Signal] membership check for group %s failed, blocking: %v", groupID, err)
		return false
	}
	return ok
}

// CanonicalGroupID maps a possibly case-mangled group id to the exact
// id the daemon considers authoritative, for outbound addressing.
func (a *Adapter) CanonicalGroupID(ctx context.Context, groupID string) (string, error) {
	return a.groups.Resolve(ctx, groupID, a.opts)
}

// HandleGroupUpdate reflects a "group changed" event from the daemon:
// the cached verdict for that group is dropped so the next message
// re-checks membership. An empty id drops everything.
func (a *Adapter) HandleGroupUpdate(groupID string) {
	if groupID == "" {
		a.groups.InvalidateAll()
		return
	}
	a.groups.Invalidate(groupID)
}
