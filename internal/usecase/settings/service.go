package settings

import (
	"context"
	"encoding/json"
	"strings"

	"go.uber.org/zap"

	apperrors "github.com/envisage-infotech/hr-interview-desk/errors"
	"github.com/envisage-infotech/hr-interview-desk/internal/domain/entities"
)

// Store persists the settings blob. Implementations exist for Redis and
// an in-process fallback.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// Service reads and writes the operator-editable assistant settings.
// Loading never fails: missing or corrupt stored data degrades field-wise
// to the built-in defaults.
type Service struct {
	store              Store
	defaultWebhookBase string
	logger             *zap.Logger
}

// NewService wires a settings service over the given store.
func NewService(store Store, defaultWebhookBase string, logger *zap.Logger) *Service {
	return &Service{
		store:              store,
		defaultWebhookBase: defaultWebhookBase,
		logger:             logger,
	}
}

// Load returns the saved settings, substituting defaults for anything
// missing or unreadable.
func (s *Service) Load(ctx context.Context) entities.AssistantSettings {
	defaults := entities.DefaultAssistantSettings(s.defaultWebhookBase)

	raw, found, err := s.store.Get(ctx, entities.SettingsKey)
	if err != nil {
		s.logger.Warn("failed to read settings, using defaults", zap.Error(err))
		return defaults
	}
	if !found {
		return defaults
	}

	var saved entities.AssistantSettings
	if err := json.Unmarshal([]byte(raw), &saved); err != nil {
		s.logger.Warn("stored settings are corrupt, using defaults", zap.Error(err))
		return defaults
	}

	if strings.TrimSpace(saved.FirstMessage) == "" {
		saved.FirstMessage = defaults.FirstMessage
	}
	if strings.TrimSpace(saved.N8NBaseURL) == "" {
		saved.N8NBaseURL = defaults.N8NBaseURL
	}
	return saved
}

// Save persists the given settings. Blank fields are filled from the
// defaults before writing so a partial update never erases a value.
func (s *Service) Save(ctx context.Context, in entities.AssistantSettings) (entities.AssistantSettings, error) {
	defaults := entities.DefaultAssistantSettings(s.defaultWebhookBase)
	if strings.TrimSpace(in.FirstMessage) == "" {
		in.FirstMessage = defaults.FirstMessage
	}
	if strings.TrimSpace(in.N8NBaseURL) == "" {
		in.N8NBaseURL = defaults.N8NBaseURL
	}
	in.N8NBaseURL = strings.TrimRight(in.N8NBaseURL, "/")

	raw, err := json.Marshal(in)
	if err != nil {
		return entities.AssistantSettings{}, apperrors.ErrSettingsFailed("save", err)
	}
	if err := s.store.Set(ctx, entities.SettingsKey, string(raw)); err != nil {
		return entities.AssistantSettings{}, apperrors.ErrSettingsFailed("save", err)
	}
	return in, nil
}

// Reset removes the saved settings and returns the defaults.
func (s *Service) Reset(ctx context.Context) (entities.AssistantSettings, error) {
	if err := s.store.Delete(ctx, entities.SettingsKey); err != nil {
		return entities.AssistantSettings{}, apperrors.ErrSettingsFailed("reset", err)
	}
	return entities.DefaultAssistantSettings(s.defaultWebhookBase), nil
}
