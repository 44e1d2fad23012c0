package vapi

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	apperrors "github.com/envisage-infotech/hr-interview-desk/errors"
	"github.com/envisage-infotech/hr-interview-desk/pkg/config"
)

func newTestClient(srv *httptest.Server) Client {
	return NewClient(&config.VapiConfig{
		APIKey:     "test-key",
		APIBaseURL: srv.URL,
	}, zap.NewNop())
}

func TestListCallsBareArray(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("missing bearer auth, got %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id":"call-1"},{"id":"call-2"}]`))
	}))
	defer srv.Close()

	page, err := newTestClient(srv).ListCalls(context.Background(), "")
	if err != nil {
		t.Fatalf("list calls: %v", err)
	}
	if len(page.Calls) != 2 || page.HasMore {
		t.Fatalf("bare array must be a single final page: %+v", page)
	}
}

func TestListCallsEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Query().Get("cursor") == "" {
			_, _ = w.Write([]byte(`{"data":[{"id":"call-1"}],"hasMore":true,"nextCursor":"c1"}`))
			return
		}
		_, _ = w.Write([]byte(`{"data":[{"id":"call-2"}],"hasMore":false}`))
	}))
	defer srv.Close()

	client := newTestClient(srv)

	page, err := client.ListCalls(context.Background(), "")
	if err != nil {
		t.Fatalf("list calls: %v", err)
	}
	if !page.HasMore || page.NextCursor != "c1" {
		t.Fatalf("pagination fields lost: %+v", page)
	}

	page, err = client.ListCalls(context.Background(), page.NextCursor)
	if err != nil {
		t.Fatalf("list calls page 2: %v", err)
	}
	if page.HasMore || len(page.Calls) != 1 || page.Calls[0].ID != "call-2" {
		t.Fatalf("unexpected second page: %+v", page)
	}
}

func TestListCallsUnrecognizedShape(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"message":"nothing here"}`))
	}))
	defer srv.Close()

	page, err := newTestClient(srv).ListCalls(context.Background(), "")
	if err != nil {
		t.Fatalf("unrecognized shape must not error: %v", err)
	}
	if len(page.Calls) != 0 || page.HasMore {
		t.Fatalf("unrecognized shape must yield an empty final page: %+v", page)
	}
}

func TestUnauthorizedMapsToKeyError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"unauthorized"}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	_, err := newTestClient(srv).ListCalls(context.Background(), "")
	var appErr apperrors.AppError
	if !errors.As(err, &appErr) || appErr.Code != apperrors.ErrorCode_UNAUTHORIZED_KEY {
		t.Fatalf("expected unauthorized-key error, got %v", err)
	}
}

func TestPlaceholderKeyRejectedBeforeNetwork(t *testing.T) {
	hit := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hit = true
	}))
	defer srv.Close()

	client := NewClient(&config.VapiConfig{
		APIKey:     config.PlaceholderAPIKey,
		APIBaseURL: srv.URL,
	}, zap.NewNop())

	_, err := client.ListCalls(context.Background(), "")
	var appErr apperrors.AppError
	if !errors.As(err, &appErr) || appErr.Code != apperrors.ErrorCode_KEY_NOT_CONFIGURED {
		t.Fatalf("expected key-not-configured error, got %v", err)
	}
	if hit {
		t.Fatal("placeholder key must be rejected before any request is made")
	}
}

func TestListPhoneNumbersShapes(t *testing.T) {
	tests := []struct {
		name string
		body string
		want int
	}{
		{"bare array", `[{"id":"pn-1","number":"+15550001111"}]`, 1},
		{"data envelope", `{"data":[{"id":"pn-1","number":"+15550001111"},{"id":"pn-2","number":"+15550002222"}]}`, 2},
		{"empty array", `[]`, 0},
		{"unrecognized", `{"message":"none"}`, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			numbers, err := newTestClient(srv).ListPhoneNumbers(context.Background())
			if err != nil {
				t.Fatalf("list phone numbers: %v", err)
			}
			if len(numbers) != tt.want {
				t.Fatalf("got %d numbers, want %d", len(numbers), tt.want)
			}
		})
	}
}

func TestCreateOutboundCall(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/call/phone" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"out-1","status":"queued"}`))
	}))
	defer srv.Close()

	resp, err := newTestClient(srv).CreateOutboundCall(context.Background(), OutboundCallRequest{
		AssistantID: "asst-1",
		Customer:    OutboundCallCustomer{Number: "+919876543210"},
	})
	if err != nil {
		t.Fatalf("create outbound call: %v", err)
	}
	if resp.ID != "out-1" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}
