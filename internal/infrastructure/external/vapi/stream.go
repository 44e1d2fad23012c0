package vapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/envisage-infotech/hr-interview-desk/pkg/config"
)

// Stream is a live duplex call session: commands go out, lifecycle and
// transcript events come back. A stream is created per session and closed
// on teardown; it is never shared between sessions.
type Stream interface {
	// Events delivers platform events in emission order. The channel is
	// closed when the transport goes away.
	Events() <-chan Event
	// AddMessage injects a message into the assistant's conversational
	// context without going through the audio pipeline.
	AddMessage(role, content string) error
	// SetMuted toggles the caller microphone on the platform side.
	SetMuted(muted bool) error
	// Stop asks the platform to end the call. The call-end event still
	// arrives through Events; state is never changed optimistically.
	Stop() error
	// Close tears down the transport.
	Close() error
}

// Dialer creates live session streams.
type Dialer interface {
	Dial(ctx context.Context, assistantID string, overrides AssistantOverrides) (Stream, error)
}

// NewDialer returns the websocket dialer, or a scripted mock when the
// config asks for one.
func NewDialer(cfg *config.VapiConfig, logger *zap.Logger) Dialer {
	if cfg.UseMock {
		return &mockDialer{logger: logger}
	}
	return &wsDialer{
		streamURL: cfg.StreamURL,
		publicKey: cfg.PublicKey,
		logger:    logger,
	}
}

type wsDialer struct {
	streamURL string
	publicKey string
	logger    *zap.Logger
}

func (d *wsDialer) Dial(ctx context.Context, assistantID string, overrides AssistantOverrides) (Stream, error) {
	header := http.Header{}
	header.Set("Authorization", "Bearer "+d.publicKey)

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, d.streamURL, header)
	if err != nil {
		return nil, fmt.Errorf("dial session stream: %w", err)
	}

	s := &wsStream{
		conn:   conn,
		events: make(chan Event, 16),
		logger: d.logger,
	}

	start := map[string]any{
		"type":               "start",
		"assistantId":        assistantID,
		"assistantOverrides": overrides,
	}
	if err := s.writeJSON(start); err != nil {
		conn.Close()
		return nil, fmt.Errorf("send start command: %w", err)
	}

	go s.readLoop()
	return s, nil
}

type wsStream struct {
	conn   *websocket.Conn
	events chan Event
	logger *zap.Logger

	writeMu   sync.Mutex
	closeOnce sync.Once
}

func (s *wsStream) Events() <-chan Event {
	return s.events
}

func (s *wsStream) readLoop() {
	defer close(s.events)
	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.Warn("session stream read ended", zap.Error(err))
			}
			return
		}
		ev, err := DecodeEvent(data)
		if err != nil {
			// Unknown frames are logged and skipped, never fatal.
			s.logger.Debug("skipping undecodable stream frame", zap.Error(err))
			continue
		}
		s.events <- ev
	}
}

func (s *wsStream) writeJSON(v any) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.conn.WriteMessage(websocket.TextMessage, data)
}

func (s *wsStream) AddMessage(role, content string) error {
	return s.writeJSON(map[string]any{
		"type": "add-message",
		"message": map[string]string{
			"role":    role,
			"content": content,
		},
	})
}

func (s *wsStream) SetMuted(muted bool) error {
	return s.writeJSON(map[string]any{
		"type":  "set-muted",
		"muted": muted,
	})
}

func (s *wsStream) Stop() error {
	return s.writeJSON(map[string]any{"type": "stop"})
}

func (s *wsStream) Close() error {
	var err error
	s.closeOnce.Do(func() {
		err = s.conn.Close()
	})
	return err
}

// mockDialer scripts a short session without a real platform connection.
// Used in development and for demos.
type mockDialer struct {
	logger *zap.Logger
}

func (d *mockDialer) Dial(ctx context.Context, assistantID string, overrides AssistantOverrides) (Stream, error) {
	s := &mockStream{
		events: make(chan Event, 16),
		done:   make(chan struct{}),
	}
	greeting := overrides.FirstMessage
	if greeting == "" {
		greeting = "Hello, how can I help you today?"
	}
	s.events <- CallStartEvent{}
	s.events <- TranscriptEvent{Role: "assistant", Text: greeting, Final: true}
	return s, nil
}

type mockStream struct {
	events chan Event
	done   chan struct{}
	mu     sync.Mutex
	closed bool
}

func (s *mockStream) Events() <-chan Event { return s.events }

func (s *mockStream) AddMessage(role, content string) error { return nil }

func (s *mockStream) SetMuted(muted bool) error { return nil }

func (s *mockStream) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.events <- CallEndEvent{Reason: "stopped"}
	return nil
}

func (s *mockStream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	close(s.events)
	close(s.done)
	return nil
}
