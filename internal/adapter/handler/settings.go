package handler

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	apperrors "github.com/envisage-infotech/hr-interview-desk/errors"
	assistantdto "github.com/envisage-infotech/hr-interview-desk/internal/adapter/dto/assistant"
	"github.com/envisage-infotech/hr-interview-desk/internal/domain/entities"
	"github.com/envisage-infotech/hr-interview-desk/internal/usecase/settings"
)

// Settings handles assistant-settings HTTP requests.
type Settings struct {
	service *settings.Service
	logger  *zap.Logger
}

// NewSettingsHandler creates a new settings handler.
func NewSettingsHandler(service *settings.Service, logger *zap.Logger) *Settings {
	return &Settings{
		service: service,
		logger:  logger,
	}
}

// GetSettings handles GET /settings. Loading never fails; corrupt or
// missing saved data degrades to the defaults.
func (h *Settings) GetSettings(c echo.Context) error {
	return HandleSuccess(h.logger, c, h.service.Load(c.Request().Context()))
}

// UpdateSettings handles PUT /settings.
func (h *Settings) UpdateSettings(c echo.Context) error {
	var req assistantdto.UpdateSettingsRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, apperrors.ErrInvalidPayload())
	}

	saved, err := h.service.Save(c.Request().Context(), entities.AssistantSettings{
		FirstMessage: req.FirstMessage,
		N8NBaseURL:   req.N8NBaseURL,
	})
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, saved)
}

// ResetSettings handles DELETE /settings, restoring the defaults.
func (h *Settings) ResetSettings(c echo.Context) error {
	defaults, err := h.service.Reset(c.Request().Context())
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, defaults)
}
