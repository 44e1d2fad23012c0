package handler

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	apperrors "github.com/envisage-infotech/hr-interview-desk/errors"
	calldto "github.com/envisage-infotech/hr-interview-desk/internal/adapter/dto/call"
	"github.com/envisage-infotech/hr-interview-desk/internal/infrastructure/external/vapi"
	"github.com/envisage-infotech/hr-interview-desk/internal/usecase/records"
)

// Records handles call-record and phone-number HTTP requests.
type Records struct {
	repo   *records.Repository
	client vapi.Client
	logger *zap.Logger
}

// NewRecordsHandler creates a new records handler.
func NewRecordsHandler(repo *records.Repository, client vapi.Client, logger *zap.Logger) *Records {
	return &Records{
		repo:   repo,
		client: client,
		logger: logger,
	}
}

// ListCalls handles GET /calls. A refresh is attempted on every request
// but debounced inside the repository; ?force=true bypasses the debounce.
// The response always carries the current record set, stale or not, with
// any load error alongside it.
func (h *Records) ListCalls(c echo.Context) error {
	force := c.QueryParam("force") == "true"

	if err := h.repo.Refresh(c.Request().Context(), force); err != nil {
		h.logger.Warn("call record refresh failed", zap.Error(err))
	}

	recs, loading, lastError := h.repo.Snapshot()
	return HandleSuccess(h.logger, c, calldto.RecordsResponse{
		Records:   recs,
		Loading:   loading,
		LastError: lastError,
	})
}

// RefreshCalls handles POST /calls/refresh, forcing a refresh past the
// debounce window.
func (h *Records) RefreshCalls(c echo.Context) error {
	if err := h.repo.Refresh(c.Request().Context(), true); err != nil {
		h.logger.Warn("forced call record refresh failed", zap.Error(err))
	}

	recs, loading, lastError := h.repo.Snapshot()
	return HandleSuccess(h.logger, c, calldto.RecordsResponse{
		Records:   recs,
		Loading:   loading,
		LastError: lastError,
	})
}

// GetCall handles GET /calls/:id, fetching a single log from the platform
// and normalizing it the same way the listing does.
func (h *Records) GetCall(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return HandleError(h.logger, c, apperrors.ErrInvalidArgument("call id is required"))
	}

	log, err := h.client.GetCall(c.Request().Context(), id)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleSuccess(h.logger, c, records.Normalize(*log))
}

// ListPhoneNumbers handles GET /phone-numbers. An empty list is a valid
// answer, not an error.
func (h *Records) ListPhoneNumbers(c echo.Context) error {
	numbers, err := h.repo.PhoneNumbers(c.Request().Context())
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, numbers)
}

// ImportTwilioNumber handles POST /phone-numbers/import.
func (h *Records) ImportTwilioNumber(c echo.Context) error {
	var req calldto.ImportTwilioRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, apperrors.ErrInvalidPayload())
	}
	if err := c.Validate(&req); err != nil {
		return HandleError(h.logger, c, apperrors.ErrInvalidArgument(err.Error()))
	}

	number, err := h.client.ImportTwilioNumber(c.Request().Context(), vapi.ImportTwilioRequest{
		TwilioPhoneNumber: req.PhoneNumber,
		TwilioAccountSID:  req.AccountSID,
		TwilioAuthToken:   req.AuthToken,
		Name:              req.Name,
	})
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, number)
}

// DeletePhoneNumber handles DELETE /phone-numbers/:id.
func (h *Records) DeletePhoneNumber(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return HandleError(h.logger, c, apperrors.ErrInvalidArgument("phone number id is required"))
	}

	if err := h.client.DeletePhoneNumber(c.Request().Context(), id); err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, map[string]string{"id": id})
}
