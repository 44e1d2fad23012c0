package records

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/envisage-infotech/hr-interview-desk/internal/infrastructure/external/vapi"
)

// fakeClient counts calls and serves scripted pages.
type fakeClient struct {
	listCalls    int
	pages        map[string]vapi.CallsPage
	listErr      error
	phoneNumbers []vapi.PhoneNumber
	phoneErr     error
}

func (f *fakeClient) ListCalls(_ context.Context, cursor string) (vapi.CallsPage, error) {
	f.listCalls++
	if f.listErr != nil {
		return vapi.CallsPage{}, f.listErr
	}
	return f.pages[cursor], nil
}

func (f *fakeClient) GetCall(context.Context, string) (*vapi.CallLog, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeClient) CreateOutboundCall(context.Context, vapi.OutboundCallRequest) (*vapi.OutboundCallResponse, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeClient) ListPhoneNumbers(context.Context) ([]vapi.PhoneNumber, error) {
	return f.phoneNumbers, f.phoneErr
}

func (f *fakeClient) ImportTwilioNumber(context.Context, vapi.ImportTwilioRequest) (*vapi.PhoneNumber, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeClient) DeletePhoneNumber(context.Context, string) error {
	return errors.New("not implemented")
}

func newTestRepository(client vapi.Client) *Repository {
	return NewRepository(client, zap.NewNop())
}

func TestRefreshDebounce(t *testing.T) {
	client := &fakeClient{
		pages: map[string]vapi.CallsPage{
			"": {Calls: []vapi.CallLog{{ID: "a", Status: "ended"}}},
		},
	}
	repo := newTestRepository(client)

	current := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return current }

	ctx := context.Background()
	if err := repo.Refresh(ctx, false); err != nil {
		t.Fatalf("first refresh failed: %v", err)
	}

	// Two more refreshes within the window must not hit the network.
	current = current.Add(2 * time.Second)
	_ = repo.Refresh(ctx, false)
	current = current.Add(2 * time.Second)
	_ = repo.Refresh(ctx, false)

	if client.listCalls != 1 {
		t.Fatalf("expected exactly 1 network call inside debounce window, got %d", client.listCalls)
	}

	// Force bypasses the window.
	if err := repo.Refresh(ctx, true); err != nil {
		t.Fatalf("forced refresh failed: %v", err)
	}
	if client.listCalls != 2 {
		t.Fatalf("forced refresh should hit the network, got %d calls", client.listCalls)
	}

	// Past the window, a plain refresh goes through again.
	current = current.Add(refreshDebounce)
	if err := repo.Refresh(ctx, false); err != nil {
		t.Fatalf("post-window refresh failed: %v", err)
	}
	if client.listCalls != 3 {
		t.Fatalf("post-window refresh should hit the network, got %d calls", client.listCalls)
	}
}

func TestRefreshDebounceCoversFailedAttempts(t *testing.T) {
	client := &fakeClient{listErr: errors.New("remote down")}
	repo := newTestRepository(client)

	current := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return current }

	ctx := context.Background()
	if err := repo.Refresh(ctx, false); err == nil {
		t.Fatal("expected refresh error")
	}

	current = current.Add(time.Second)
	_ = repo.Refresh(ctx, false)

	if client.listCalls != 1 {
		t.Fatalf("failed attempt must still arm the debounce, got %d calls", client.listCalls)
	}
}

func TestRefreshFallbackOnFirstFailureOnly(t *testing.T) {
	client := &fakeClient{listErr: errors.New("remote down")}
	repo := newTestRepository(client)

	ctx := context.Background()
	if err := repo.Refresh(ctx, true); err == nil {
		t.Fatal("expected refresh error")
	}

	recs, _, lastError := repo.Snapshot()
	if len(recs) == 0 {
		t.Fatal("first-ever failure must substitute the fallback sample set")
	}
	if lastError == "" {
		t.Error("load error must be surfaced in the snapshot")
	}

	// Recover, load real data, then fail again: the real data must survive.
	client.listErr = nil
	client.pages = map[string]vapi.CallsPage{
		"": {Calls: []vapi.CallLog{{ID: "real-1", Status: "ended"}}},
	}
	if err := repo.Refresh(ctx, true); err != nil {
		t.Fatalf("recovery refresh failed: %v", err)
	}

	client.listErr = errors.New("remote down again")
	if err := repo.Refresh(ctx, true); err == nil {
		t.Fatal("expected refresh error")
	}

	recs, _, lastError = repo.Snapshot()
	if len(recs) != 1 || recs[0].ID != "real-1" {
		t.Fatalf("later failures must keep the stale cache, got %+v", recs)
	}
	if lastError == "" {
		t.Error("later failures must still surface the error")
	}
}

func TestRefreshFollowsPagination(t *testing.T) {
	client := &fakeClient{
		pages: map[string]vapi.CallsPage{
			"":   {Calls: []vapi.CallLog{{ID: "a"}}, HasMore: true, NextCursor: "c1"},
			"c1": {Calls: []vapi.CallLog{{ID: "b"}}, HasMore: true, NextCursor: "c2"},
			"c2": {Calls: []vapi.CallLog{{ID: "c"}}},
		},
	}
	repo := newTestRepository(client)

	if err := repo.Refresh(context.Background(), true); err != nil {
		t.Fatalf("refresh failed: %v", err)
	}

	recs, _, _ := repo.Snapshot()
	if len(recs) != 3 {
		t.Fatalf("expected 3 records across 3 pages, got %d", len(recs))
	}
	if client.listCalls != 3 {
		t.Fatalf("expected 3 page fetches, got %d", client.listCalls)
	}
}

func TestAddLocalPrepends(t *testing.T) {
	client := &fakeClient{
		pages: map[string]vapi.CallsPage{
			"": {Calls: []vapi.CallLog{{ID: "remote-1"}}},
		},
	}
	repo := newTestRepository(client)

	if err := repo.Refresh(context.Background(), true); err != nil {
		t.Fatalf("refresh failed: %v", err)
	}

	repo.AddLocal(Normalize(vapi.CallLog{ID: "local-1", Status: "ended"}))

	recs, _, _ := repo.Snapshot()
	if len(recs) != 2 || recs[0].ID != "local-1" {
		t.Fatalf("local record must be prepended, got %+v", recs)
	}
}

func TestPhoneNumbersEmptyListIsValid(t *testing.T) {
	repo := newTestRepository(&fakeClient{})

	numbers, err := repo.PhoneNumbers(context.Background())
	if err != nil {
		t.Fatalf("empty list must not be an error: %v", err)
	}
	if len(numbers) != 0 {
		t.Fatalf("expected empty list, got %+v", numbers)
	}
}

func TestSnapshotReturnsCopy(t *testing.T) {
	client := &fakeClient{
		pages: map[string]vapi.CallsPage{
			"": {Calls: []vapi.CallLog{{ID: "a"}}},
		},
	}
	repo := newTestRepository(client)
	if err := repo.Refresh(context.Background(), true); err != nil {
		t.Fatalf("refresh failed: %v", err)
	}

	recs, _, _ := repo.Snapshot()
	recs[0].ID = "mutated"

	again, _, _ := repo.Snapshot()
	if again[0].ID != "a" {
		t.Fatal("snapshot must not share backing storage with the repository")
	}
}
