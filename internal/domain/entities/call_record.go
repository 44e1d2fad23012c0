package entities

import "time"

// CallType distinguishes who initiated the call.
type CallType string

const (
	CallTypeInbound  CallType = "inbound"
	CallTypeOutbound CallType = "outbound"
)

// CallStatus is the normalized terminal state of a call.
type CallStatus string

const (
	CallStatusCompleted CallStatus = "completed"
	CallStatusPending   CallStatus = "pending"
	CallStatusFailed    CallStatus = "failed"
)

// RecordMessage is one turn reconstructed from a remote call log. Time is
// zero when the remote entry carried no time field.
type RecordMessage struct {
	Role    MessageRole `json:"role"`
	Content string      `json:"content"`
	Time    time.Time   `json:"time,omitempty"`
}

// CallRecord is a call reconstructed from the remote platform's log for
// display. Records are immutable once constructed; a fresh fetch replaces
// the whole set rather than patching records in place.
//
// The Candidate* fields are advisory, best-effort extractions from the
// transcript. They may be wrong and must never drive business logic.
type CallRecord struct {
	ID                string          `json:"id"`
	CallType          CallType        `json:"callType"`
	CallStatus        CallStatus      `json:"callStatus"`
	StartedAt         time.Time       `json:"startedAt"`
	EndedAt           *time.Time      `json:"endedAt,omitempty"`
	Duration          string          `json:"duration"`
	Summary           string          `json:"summary,omitempty"`
	Transcript        string          `json:"transcript,omitempty"`
	TranscriptSnippet string          `json:"transcriptSnippet,omitempty"`
	EndedReason       string          `json:"endedReason,omitempty"`
	RecordingURL      string          `json:"recordingUrl,omitempty"`
	Messages          []RecordMessage `json:"messages"`

	// Advisory extractions, display-only. May be inaccurate.
	CandidateName string `json:"candidateName,omitempty"`
	PhoneNumber   string `json:"phoneNumber,omitempty"`
	Position      string `json:"position,omitempty"`
	Experience    string `json:"experience,omitempty"`
}
