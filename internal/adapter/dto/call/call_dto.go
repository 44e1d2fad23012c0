package call

import "github.com/envisage-infotech/hr-interview-desk/internal/domain/entities"

// StartInboundRequest starts a live browser session with the assistant.
type StartInboundRequest struct {
	FirstMessage string `json:"firstMessage,omitempty"`
}

// StartOutboundRequest asks the platform to dial a candidate.
type StartOutboundRequest struct {
	PhoneNumber  string `json:"phoneNumber" validate:"required"`
	FirstMessage string `json:"firstMessage,omitempty"`
}

// SendMessageRequest injects a typed user message into the live session.
type SendMessageRequest struct {
	Content string `json:"content" validate:"required"`
}

// ImportTwilioRequest imports an existing Twilio number for outbound use.
type ImportTwilioRequest struct {
	PhoneNumber string `json:"phoneNumber" validate:"required"`
	AccountSID  string `json:"accountSid" validate:"required"`
	AuthToken   string `json:"authToken" validate:"required"`
	Name        string `json:"name,omitempty"`
}

// RecordsResponse is the call-record listing with its load status, so the
// dashboard can show stale data alongside the error that made it stale.
type RecordsResponse struct {
	Records   []entities.CallRecord `json:"records"`
	Loading   bool                  `json:"loading"`
	LastError string                `json:"lastError,omitempty"`
}
