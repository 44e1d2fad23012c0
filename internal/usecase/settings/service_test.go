package settings

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"github.com/envisage-infotech/hr-interview-desk/internal/domain/entities"
)

const webhookBase = "https://flows.example/webhook"

func newTestService() *Service {
	return NewService(NewMemoryStore(), webhookBase, zap.NewNop())
}

func TestLoadDefaultsWhenNothingSaved(t *testing.T) {
	svc := newTestService()

	got := svc.Load(context.Background())
	want := entities.DefaultAssistantSettings(webhookBase)
	if got != want {
		t.Fatalf("got %+v, want defaults %+v", got, want)
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	saved, err := svc.Save(ctx, entities.AssistantSettings{
		FirstMessage: "Welcome to the interview desk",
		N8NBaseURL:   "https://other.example/webhook/",
	})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if saved.N8NBaseURL != "https://other.example/webhook" {
		t.Errorf("trailing slash must be trimmed, got %q", saved.N8NBaseURL)
	}

	got := svc.Load(ctx)
	if got != saved {
		t.Fatalf("load after save = %+v, want %+v", got, saved)
	}
}

func TestSaveFillsBlankFieldsFromDefaults(t *testing.T) {
	svc := newTestService()

	saved, err := svc.Save(context.Background(), entities.AssistantSettings{
		FirstMessage: "  ",
		N8NBaseURL:   "https://other.example/webhook",
	})
	if err != nil {
		t.Fatalf("save: %v", err)
	}

	defaults := entities.DefaultAssistantSettings(webhookBase)
	if saved.FirstMessage != defaults.FirstMessage {
		t.Errorf("blank first message must fall back to default, got %q", saved.FirstMessage)
	}
	if saved.N8NBaseURL != "https://other.example/webhook" {
		t.Errorf("explicit webhook base must be kept, got %q", saved.N8NBaseURL)
	}
}

func TestLoadCorruptDataFallsBackToDefaults(t *testing.T) {
	store := NewMemoryStore()
	if err := store.Set(context.Background(), entities.SettingsKey, "{not valid json"); err != nil {
		t.Fatalf("seed store: %v", err)
	}
	svc := NewService(store, webhookBase, zap.NewNop())

	got := svc.Load(context.Background())
	if got != entities.DefaultAssistantSettings(webhookBase) {
		t.Fatalf("corrupt data must degrade to defaults, got %+v", got)
	}
}

func TestResetRestoresDefaults(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	if _, err := svc.Save(ctx, entities.AssistantSettings{FirstMessage: "custom"}); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := svc.Reset(ctx)
	if err != nil {
		t.Fatalf("reset: %v", err)
	}
	if got != entities.DefaultAssistantSettings(webhookBase) {
		t.Fatalf("reset must return defaults, got %+v", got)
	}
	if svc.Load(ctx) != entities.DefaultAssistantSettings(webhookBase) {
		t.Fatal("load after reset must also return defaults")
	}
}
