package groups

import (
	"context"
	"errors"
	"testing"
	"time"
)

const twoGroups = `[
	{"id":"AbC+dEf/GhI=","name":"Ops","isMember":true,"members":[{"number":"+15551111111","uuid":"123e4567-e89b-12d3-a456-426614174000"}]},
	{"id":"ZzYyXx00==","name":"Announcements","isMember":true,"isBlocked":false,"members":[]}
]`

func TestDirectoryServesFromCacheWithinTTL(t *testing.T) {
	rpc := &fakeRPC{result: twoGroups}
	svc, clk := newTestService(rpc)
	ctx := context.Background()

	first, err := svc.Groups(ctx, testOpts(), false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(first) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(first))
	}
	if rpc.lastMethod != "listGroups" {
		t.Fatalf("expected listGroups call, got %q", rpc.lastMethod)
	}
	if rpc.lastParams["account"] != "+15550001111" {
		t.Fatalf("account param missing: %#v", rpc.lastParams)
	}

	clk.Advance(4 * time.Minute)
	if _, err := svc.Groups(ctx, testOpts(), false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rpc.calls != 1 {
		t.Fatalf("expected cache hit, got %d calls", rpc.calls)
	}
}

func TestDirectoryRefetchesAfterTTL(t *testing.T) {
	rpc := &fakeRPC{result: twoGroups}
	svc, clk := newTestService(rpc)
	ctx := context.Background()

	svc.Groups(ctx, testOpts(), false)
	clk.Advance(5*time.Minute + time.Second)
	svc.Groups(ctx, testOpts(), false)
	if rpc.calls != 2 {
		t.Fatalf("expected refetch after TTL, got %d calls", rpc.calls)
	}
}

func TestDirectoryKeyMismatchRefetches(t *testing.T) {
	rpc := &fakeRPC{result: twoGroups}
	svc, _ := newTestService(rpc)
	ctx := context.Background()

	svc.Groups(ctx, testOpts(), false)

	other := testOpts()
	other.Account = "+15559990000"
	svc.Groups(ctx, other, false)
	if rpc.calls != 2 {
		t.Fatalf("expected refetch on account switch, got %d calls", rpc.calls)
	}
}

func TestDirectoryForceFreshBypassesTTL(t *testing.T) {
	rpc := &fakeRPC{result: twoGroups}
	svc, _ := newTestService(rpc)
	ctx := context.Background()

	svc.Groups(ctx, testOpts(), false)
	svc.Groups(ctx, testOpts(), true)
	if rpc.calls != 2 {
		t.Fatalf("expected forced refetch, got %d calls", rpc.calls)
	}
}

func TestDirectoryNonArrayResponseIsEmptyList(t *testing.T) {
	rpc := &fakeRPC{result: `{"error":"unexpected shape"}`}
	svc, _ := newTestService(rpc)

	list, err := svc.Groups(context.Background(), testOpts(), false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(list) != 0 {
		t.Fatalf("expected empty list, got %d groups", len(list))
	}
}

func TestDirectoryOmitsAccountParamWhenUnset(t *testing.T) {
	rpc := &fakeRPC{result: `[]`}
	svc, _ := newTestService(rpc)

	opts := Options{Endpoint: "http://localhost:8080"}
	if _, err := svc.Groups(context.Background(), opts, false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, present := rpc.lastParams["account"]; present {
		t.Fatalf("account param should be omitted: %#v", rpc.lastParams)
	}
}

func TestDirectoryErrorKeepsPriorSnapshot(t *testing.T) {
	rpc := &fakeRPC{result: twoGroups}
	svc, _ := newTestService(rpc)
	ctx := context.Background()

	svc.Groups(ctx, testOpts(), false)

	rpc.err = errors.New("connection refused")
	if _, err := svc.Groups(ctx, testOpts(), true); err == nil {
		t.Fatalf("expected transport error to propagate")
	}

	// The failed fetch must not have clobbered the snapshot.
	rpc.err = nil
	before := rpc.calls
	list, err := svc.Groups(ctx, testOpts(), false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected prior snapshot, got %d groups", len(list))
	}
	if rpc.calls != before {
		t.Fatalf("expected cached read, got %d extra calls", rpc.calls-before)
	}
}
