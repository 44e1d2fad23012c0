package handler

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/envisage-infotech/hr-interview-desk/internal/usecase/calendar"
)

// Calendar handles calendar HTTP requests.
type Calendar struct {
	service *calendar.Service
	logger  *zap.Logger
}

// NewCalendarHandler creates a new calendar handler.
func NewCalendarHandler(service *calendar.Service, logger *zap.Logger) *Calendar {
	return &Calendar{
		service: service,
		logger:  logger,
	}
}

// ListEvents handles GET /calendar/events.
func (h *Calendar) ListEvents(c echo.Context) error {
	events, err := h.service.ListEvents(c.Request().Context())
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, events)
}
