package vapi

import (
	"encoding/json"
	"fmt"
)

// Event is one member of the typed event union a live session emits. The
// session controller consumes these through a single dispatcher instead of
// per-event callback registrations.
type Event interface {
	// EventType returns the wire type string of the event.
	EventType() string
}

// CallStartEvent signals the platform established the call.
type CallStartEvent struct{}

func (CallStartEvent) EventType() string { return "call-start" }

// CallEndEvent signals the platform terminated the call.
type CallEndEvent struct {
	Reason string `json:"reason,omitempty"`
}

func (CallEndEvent) EventType() string { return "call-end" }

// SpeechStartEvent signals the assistant's own TTS started speaking.
type SpeechStartEvent struct{}

func (SpeechStartEvent) EventType() string { return "speech-start" }

// SpeechEndEvent signals the assistant's TTS finished speaking.
type SpeechEndEvent struct{}

func (SpeechEndEvent) EventType() string { return "speech-end" }

// VolumeLevelEvent reports the current output volume in [0,1].
type VolumeLevelEvent struct {
	Level float64 `json:"volumeLevel"`
}

func (VolumeLevelEvent) EventType() string { return "volume-level" }

// TranscriptEvent carries one platform-side transcription result.
type TranscriptEvent struct {
	Role string `json:"role"`
	Text string `json:"transcript"`
	// Final marks a settled result; non-final results are interim and may
	// still be revised.
	Final bool `json:"-"`
}

func (TranscriptEvent) EventType() string { return "transcript" }

// StatusUpdateEvent carries a call status change reported mid-session.
type StatusUpdateEvent struct {
	Status string `json:"status"`
}

func (StatusUpdateEvent) EventType() string { return "status-update" }

// ErrorEvent carries a platform runtime error. It does not by itself end
// the call.
type ErrorEvent struct {
	Message string `json:"message"`
}

func (ErrorEvent) EventType() string { return "error" }

// wire envelope shapes

type wireError struct {
	Message string `json:"message"`
}

type wireMessage struct {
	Type           string     `json:"type"`
	Role           string     `json:"role,omitempty"`
	Transcript     string     `json:"transcript,omitempty"`
	TranscriptType string     `json:"transcriptType,omitempty"`
	Status         string     `json:"status,omitempty"`
	Error          *wireError `json:"error,omitempty"`
}

type wireEvent struct {
	Type        string       `json:"type"`
	VolumeLevel float64      `json:"volumeLevel,omitempty"`
	Message     *wireMessage `json:"message,omitempty"`
	Error       *wireError   `json:"error,omitempty"`
}

// DecodeEvent decodes one wire frame into the event union. Message frames
// carry a typed payload (transcript, status-update or error) which is
// flattened into the corresponding union member.
func DecodeEvent(data []byte) (Event, error) {
	var we wireEvent
	if err := json.Unmarshal(data, &we); err != nil {
		return nil, fmt.Errorf("decode event: %w", err)
	}

	switch we.Type {
	case "call-start":
		return CallStartEvent{}, nil
	case "call-end":
		return CallEndEvent{}, nil
	case "speech-start":
		return SpeechStartEvent{}, nil
	case "speech-end":
		return SpeechEndEvent{}, nil
	case "volume-level":
		return VolumeLevelEvent{Level: we.VolumeLevel}, nil
	case "error":
		msg := "Unknown error"
		if we.Error != nil && we.Error.Message != "" {
			msg = we.Error.Message
		}
		return ErrorEvent{Message: msg}, nil
	case "message":
		if we.Message == nil {
			return nil, fmt.Errorf("message event without payload")
		}
		return decodeMessageEvent(we.Message)
	default:
		return nil, fmt.Errorf("unknown event type %q", we.Type)
	}
}

func decodeMessageEvent(m *wireMessage) (Event, error) {
	switch m.Type {
	case "transcript":
		return TranscriptEvent{
			Role:  m.Role,
			Text:  m.Transcript,
			Final: m.TranscriptType == "final",
		}, nil
	case "status-update":
		return StatusUpdateEvent{Status: m.Status}, nil
	case "error":
		msg := "Unknown error"
		if m.Error != nil && m.Error.Message != "" {
			msg = m.Error.Message
		}
		return ErrorEvent{Message: msg}, nil
	default:
		return nil, fmt.Errorf("unknown message type %q", m.Type)
	}
}
