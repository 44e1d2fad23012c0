package vapi

import "time"

// CallLog is a raw call log as returned by the platform REST API. Many
// fields are optional and the same data can appear in several places
// (top-level, artifact, OpenAI-formatted lists); normalization into the
// internal record shape happens in the records usecase, not here.
type CallLog struct {
	ID          string     `json:"id"`
	AssistantID string     `json:"assistantId,omitempty"`
	OrgID       string     `json:"orgId,omitempty"`
	Type        string     `json:"type,omitempty"`
	Status      string     `json:"status,omitempty"`
	StartedAt   time.Time  `json:"startedAt,omitempty"`
	EndedAt     *time.Time `json:"endedAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt,omitempty"`
	UpdatedAt   time.Time  `json:"updatedAt,omitempty"`

	Transcript   string        `json:"transcript,omitempty"`
	Summary      string        `json:"summary,omitempty"`
	EndedReason  string        `json:"endedReason,omitempty"`
	RecordingURL string        `json:"recordingUrl,omitempty"`
	WebCallURL   string        `json:"webCallUrl,omitempty"`
	Cost         float64       `json:"cost,omitempty"`
	Messages     []CallMessage `json:"messages,omitempty"`
	Artifact     *Artifact     `json:"artifact,omitempty"`
}

// CallMessage is one raw conversation entry. Content may live in either
// the "content" or the "message" field depending on where the entry came
// from; Time is milliseconds since epoch and zero when absent.
type CallMessage struct {
	Role             string  `json:"role"`
	Time             float64 `json:"time,omitempty"`
	SecondsFromStart float64 `json:"secondsFromStart,omitempty"`
	Message          string  `json:"message,omitempty"`
	Content          string  `json:"content,omitempty"`
}

// Body returns the message content regardless of which field carries it.
func (m CallMessage) Body() string {
	if m.Content != "" {
		return m.Content
	}
	return m.Message
}

// Artifact is the nested artifact blob some call logs carry.
type Artifact struct {
	Transcript              string          `json:"transcript,omitempty"`
	Messages                []CallMessage   `json:"messages,omitempty"`
	MessagesOpenAIFormatted []OpenAIMessage `json:"messagesOpenAIFormatted,omitempty"`
	RecordingURL            string          `json:"recordingUrl,omitempty"`
}

// OpenAIMessage is an entry from the OpenAI-formatted message list.
type OpenAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// CallsPage is one page of call logs.
type CallsPage struct {
	Calls      []CallLog
	HasMore    bool
	NextCursor string
}

// PhoneNumber is a raw originating number record.
type PhoneNumber struct {
	ID        string    `json:"id"`
	OrgID     string    `json:"orgId,omitempty"`
	Number    string    `json:"number"`
	Name      string    `json:"name,omitempty"`
	Provider  string    `json:"provider,omitempty"`
	Status    string    `json:"status,omitempty"`
	CreatedAt time.Time `json:"createdAt,omitempty"`
	UpdatedAt time.Time `json:"updatedAt,omitempty"`
}

// VoiceConfig selects the TTS voice for a session.
type VoiceConfig struct {
	Provider string `json:"provider"`
	VoiceID  string `json:"voiceId"`
}

// TranscriberConfig selects the platform-side STT engine.
type TranscriberConfig struct {
	Provider    string `json:"provider"`
	Model       string `json:"model"`
	Language    string `json:"language"`
	SmartFormat bool   `json:"smartFormat"`
}

// ModelMessage is a system/context message handed to the language model.
type ModelMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ModelConfig selects the language model driving the assistant.
type ModelConfig struct {
	Provider    string         `json:"provider"`
	Model       string         `json:"model"`
	Temperature float64        `json:"temperature"`
	Messages    []ModelMessage `json:"messages,omitempty"`
}

// ToolDefinition declares a webhook tool the assistant may call during a
// session. The webhook endpoints are invoked by the platform's tool-calling
// mechanism, never by this application directly.
type ToolDefinition struct {
	Type        string         `json:"type"`
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	URL         string         `json:"url"`
	Method      string         `json:"method"`
	InputSchema map[string]any `json:"inputSchema,omitempty"`
}

// AssistantOverrides is the per-call assistant configuration supplied at
// call-start time, overriding server-side defaults.
type AssistantOverrides struct {
	FirstMessage string             `json:"firstMessage,omitempty"`
	Voice        *VoiceConfig       `json:"voice,omitempty"`
	Transcriber  *TranscriberConfig `json:"transcriber,omitempty"`
	Model        *ModelConfig       `json:"model,omitempty"`
	Tools        []ToolDefinition   `json:"tools,omitempty"`
}

// OutboundCallCustomer is the destination of an outbound call.
type OutboundCallCustomer struct {
	Number string `json:"number"`
}

// OutboundCallRequest creates an outbound phone call.
type OutboundCallRequest struct {
	AssistantID        string               `json:"assistantId"`
	Customer           OutboundCallCustomer `json:"customer"`
	PhoneNumberID      string               `json:"phoneNumberId,omitempty"`
	AssistantOverrides *AssistantOverrides  `json:"assistantOverrides,omitempty"`
}

// OutboundCallResponse is the platform's answer to an outbound call request.
type OutboundCallResponse struct {
	ID          string     `json:"id"`
	AssistantID string     `json:"assistantId,omitempty"`
	Status      string     `json:"status,omitempty"`
	StartedAt   *time.Time `json:"startedAt,omitempty"`
	EndedAt     *time.Time `json:"endedAt,omitempty"`
	Cost        float64    `json:"cost,omitempty"`
}

// ImportTwilioRequest imports an existing Twilio number into the platform.
type ImportTwilioRequest struct {
	TwilioPhoneNumber string `json:"twilioPhoneNumber"`
	TwilioAccountSID  string `json:"twilioAccountSid"`
	TwilioAuthToken   string `json:"twilioAuthToken"`
	Name              string `json:"name,omitempty"`
}
