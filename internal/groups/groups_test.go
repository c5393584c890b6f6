package groups

import (
	"context"
	"encoding/json"
	"time"
)

// fakeRPC is a scriptable Caller: it replays result (or err) and counts
// calls so tests can assert how many round trips an operation cost.
type fakeRPC struct {
	result     string
	err        error
	calls      int
	lastMethod string
	lastParams map[string]any
}

func (f *fakeRPC) Call(ctx context.Context, endpoint, method string, params map[string]any, timeout time.Duration) (json.RawMessage, error) {
	f.calls++
	f.lastMethod = method
	f.lastParams = params
	if f.err != nil {
		return nil, f.err
	}
	return json.RawMessage(f.result), nil
}

// newTestService wires a Service to rpc with a manual clock. Advancing
// the returned clock moves both cache TTLs deterministically.
func newTestService(rpc *fakeRPC) (*Service, *fakeClock) {
	clk := &fakeClock{t: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}
	svc := NewService(rpc)
	svc.dir.now = clk.Now
	svc.decisions.now = clk.Now
	return svc, clk
}

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time { return c.t }

func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func testOpts() Options {
	return Options{Endpoint: "http://localhost:8080", Account: "+15550001111"}
}
