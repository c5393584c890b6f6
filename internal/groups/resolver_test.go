package groups

import (
	"context"
	"errors"
	"testing"
)

func TestResolveExactMatchUsesFreshSnapshot(t *testing.T) {
	rpc := &fakeRPC{result: twoGroups}
	svc, _ := newTestService(rpc)
	ctx := context.Background()

	// Warm the directory, then resolve an already-canonical id.
	if _, err := svc.Groups(ctx, testOpts(), false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, err := svc.Resolve(ctx, "AbC+dEf/GhI=", testOpts())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "AbC+dEf/GhI=" {
		t.Fatalf("expected canonical id, got %q", got)
	}
	if rpc.calls != 1 {
		t.Fatalf("exact match on fresh snapshot should not re-fetch, got %d calls", rpc.calls)
	}
}

func TestResolveRepairsLowercasedID(t *testing.T) {
	rpc := &fakeRPC{result: twoGroups}
	svc, _ := newTestService(rpc)

	got, err := svc.Resolve(context.Background(), "abc+def/ghi=", testOpts())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "AbC+dEf/GhI=" {
		t.Fatalf("expected canonical casing restored, got %q", got)
	}
}

func TestResolveStripsGroupPrefix(t *testing.T) {
	rpc := &fakeRPC{result: twoGroups}
	svc, _ := newTestService(rpc)

	got, err := svc.Resolve(context.Background(), "group:abc+def/ghi=", testOpts())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "AbC+dEf/GhI=" {
		t.Fatalf("expected canonical id, got %q", got)
	}
}

func TestResolveNotFound(t *testing.T) {
	rpc := &fakeRPC{result: twoGroups}
	svc, _ := newTestService(rpc)

	_, err := svc.Resolve(context.Background(), "missing==", testOpts())
	var notFound *NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
	if notFound.Scanned != 2 {
		t.Fatalf("expected scanned count 2, got %d", notFound.Scanned)
	}
}

func TestResolveAmbiguous(t *testing.T) {
	rpc := &fakeRPC{result: `[{"id":"AbCd=="},{"id":"aBcD=="}]`}
	svc, _ := newTestService(rpc)

	_, err := svc.Resolve(context.Background(), "abcd==", testOpts())
	var ambiguous *AmbiguousError
	if !errors.As(err, &ambiguous) {
		t.Fatalf("expected AmbiguousError, got %v", err)
	}
	if ambiguous.Matches != 2 {
		t.Fatalf("expected 2 matches, got %d", ambiguous.Matches)
	}
}

func TestResolveTransportErrorPropagates(t *testing.T) {
	rpc := &fakeRPC{err: errors.New("connection refused")}
	svc, _ := newTestService(rpc)

	if _, err := svc.Resolve(context.Background(), "AbCd==", testOpts()); err == nil {
		t.Fatalf("expected transport error")
	}
}
