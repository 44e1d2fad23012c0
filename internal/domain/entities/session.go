package entities

// Phase is the UI-facing lifecycle state of the live call session.
type Phase string

const (
	PhaseIdle       Phase = "idle"
	PhaseConnecting Phase = "connecting"
	PhaseConnected  Phase = "connected"
	PhaseEnded      Phase = "ended"
)

// SessionSnapshot is a point-in-time copy of the live session state handed
// to the UI. Connected is the platform-reported ground truth; Phase layers
// locally tracked transitions on top of it.
type SessionSnapshot struct {
	Phase             Phase     `json:"phase"`
	Connected         bool      `json:"connected"`
	Muted             bool      `json:"muted"`
	VolumeLevel       float64   `json:"volumeLevel"`
	PendingSpeechText string    `json:"pendingSpeechText,omitempty"`
	Messages          []Message `json:"messages"`
}
