package handler

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	apperrors "github.com/envisage-infotech/hr-interview-desk/errors"
	calldto "github.com/envisage-infotech/hr-interview-desk/internal/adapter/dto/call"
	"github.com/envisage-infotech/hr-interview-desk/internal/usecase/session"
)

// Session handles live call-session HTTP requests. Every mutation returns
// the resulting session snapshot so the dashboard can re-render without a
// second round trip.
type Session struct {
	controller *session.Controller
	logger     *zap.Logger
}

// NewSessionHandler creates a new session handler.
func NewSessionHandler(controller *session.Controller, logger *zap.Logger) *Session {
	return &Session{
		controller: controller,
		logger:     logger,
	}
}

// GetSession handles GET /session.
func (h *Session) GetSession(c echo.Context) error {
	return HandleSuccess(h.logger, c, h.controller.Snapshot())
}

// StartInbound handles POST /session/start.
func (h *Session) StartInbound(c echo.Context) error {
	var req calldto.StartInboundRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, apperrors.ErrInvalidPayload())
	}

	if err := h.controller.StartInboundCall(c.Request().Context(), req.FirstMessage); err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, h.controller.Snapshot())
}

// StartOutbound handles POST /session/outbound.
func (h *Session) StartOutbound(c echo.Context) error {
	var req calldto.StartOutboundRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, apperrors.ErrInvalidPayload())
	}
	if err := c.Validate(&req); err != nil {
		return HandleError(h.logger, c, apperrors.ErrInvalidArgument(err.Error()))
	}

	if err := h.controller.StartOutboundCall(c.Request().Context(), req.PhoneNumber, req.FirstMessage); err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, h.controller.Snapshot())
}

// Stop handles POST /session/stop. Stopping is idempotent and valid in
// any phase.
func (h *Session) Stop(c echo.Context) error {
	h.controller.StopCall()
	return HandleSuccess(h.logger, c, h.controller.Snapshot())
}

// ToggleMute handles POST /session/mute.
func (h *Session) ToggleMute(c echo.Context) error {
	if err := h.controller.ToggleMute(); err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, h.controller.Snapshot())
}

// SendMessage handles POST /session/message.
func (h *Session) SendMessage(c echo.Context) error {
	var req calldto.SendMessageRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, apperrors.ErrInvalidPayload())
	}

	if err := h.controller.SendMessage(req.Content); err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, h.controller.Snapshot())
}
