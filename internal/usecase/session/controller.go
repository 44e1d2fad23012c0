package session

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	apperrors "github.com/envisage-infotech/hr-interview-desk/errors"
	"github.com/envisage-infotech/hr-interview-desk/internal/domain/entities"
	"github.com/envisage-infotech/hr-interview-desk/internal/infrastructure/external/n8n"
	"github.com/envisage-infotech/hr-interview-desk/internal/infrastructure/external/vapi"
	"github.com/envisage-infotech/hr-interview-desk/pkg/phone"
)

// RecordStore is the slice of the call-record repository the session
// needs: originating numbers for outbound calls, and prepending a record
// for a call that just finished locally.
type RecordStore interface {
	PhoneNumbers(ctx context.Context) ([]entities.PhoneNumber, error)
	AddLocal(rec entities.CallRecord)
}

// SettingsSource loads the operator-editable assistant settings.
type SettingsSource interface {
	Load(ctx context.Context) entities.AssistantSettings
}

// Config tunes the session lifecycle.
type Config struct {
	AssistantID string
	// SettleDelay is how long after call-start to wait before starting
	// local speech capture, giving the media path time to stabilize.
	// Zero or negative runs synchronously.
	SettleDelay time.Duration
	// EndedDelay is how long the session lingers in the ended phase
	// before returning to idle. Zero or negative runs synchronously.
	EndedDelay time.Duration
}

const (
	inboundFirstMessage  = "Hi, this is HR from Envisage Infotech. How can I help you today?"
	outboundFirstMessage = "Hi, this is HR from Envisage Infotech. Would you like to schedule an interview?"
)

// Controller owns the live call session: at most one call at a time,
// driven by platform events, with local speech capture layered on top.
// All state transitions funnel through the event dispatcher; only the
// outbound start path flips connected optimistically, because the
// platform runs outbound calls remotely and emits no local call-start.
type Controller struct {
	logger   *zap.Logger
	dialer   vapi.Dialer
	api      vapi.Client
	records  RecordStore
	settings SettingsSource
	capture  *Capture
	cfg      Config
	clock    func() time.Time

	mu            sync.Mutex
	phase         entities.Phase
	connected     bool
	muted         bool
	volume        float64
	pendingSpeech string
	messages      []entities.Message
	stream        vapi.Stream
	callType      entities.CallType
	remoteNumber  string
	startedAt     time.Time
	// generation increments on every teardown; events and timers tagged
	// with an older generation are dropped.
	generation uint64
}

// NewController wires a session controller. capture may be built around a
// nil factory; the session then runs without local speech capture.
func NewController(dialer vapi.Dialer, api vapi.Client, records RecordStore, settings SettingsSource, capture *Capture, cfg Config, logger *zap.Logger) *Controller {
	return &Controller{
		logger:   logger,
		dialer:   dialer,
		api:      api,
		records:  records,
		settings: settings,
		capture:  capture,
		cfg:      cfg,
		clock:    time.Now,
		phase:    entities.PhaseIdle,
	}
}

// Snapshot returns a copy of the current session state.
func (c *Controller) Snapshot() entities.SessionSnapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	msgs := make([]entities.Message, len(c.messages))
	copy(msgs, c.messages)
	return entities.SessionSnapshot{
		Phase:             c.phase,
		Connected:         c.connected,
		Muted:             c.muted,
		VolumeLevel:       c.volume,
		PendingSpeechText: c.pendingSpeech,
		Messages:          msgs,
	}
}

// StartInboundCall opens a live browser-style session against the
// assistant. Valid only while no session is in progress.
func (c *Controller) StartInboundCall(ctx context.Context, firstMessage string) error {
	if err := c.reserve(); err != nil {
		return err
	}

	c.appendMessage(entities.RoleSystem, "Initializing call...")

	if !c.capture.Available() {
		c.logger.Warn("speech capture unavailable, continuing without local transcription")
		c.appendMessage(entities.RoleSystem, "Note: Microphone not available, but call can continue.")
	}

	overrides := c.assistantOverrides(ctx, firstMessage, inboundFirstMessage)

	stream, err := c.dialer.Dial(ctx, c.cfg.AssistantID, overrides)
	if err != nil {
		c.appendMessage(entities.RoleSystem, fmt.Sprintf("Error starting call: %v", err))
		c.release()
		return apperrors.ErrCallStartFailed(err)
	}

	c.mu.Lock()
	c.stream = stream
	gen := c.generation
	c.mu.Unlock()

	go c.pump(stream, gen)

	c.appendMessage(entities.RoleSystem, "Inbound call started successfully!")
	return nil
}

// StartOutboundCall asks the platform to dial the given number. The phone
// number is normalized before anything touches the network; on success
// the session is marked connected optimistically since the platform runs
// the call remotely.
func (c *Controller) StartOutboundCall(ctx context.Context, rawNumber, firstMessage string) error {
	if err := c.reserve(); err != nil {
		return err
	}

	c.appendMessage(entities.RoleSystem, fmt.Sprintf("Initiating outbound call to %s...", rawNumber))

	normalized, err := phone.Normalize(rawNumber)
	if err != nil {
		c.appendMessage(entities.RoleSystem, "Invalid phone number. Please enter a 10 digit number or include +1/+91 country code.")
		c.logger.Warn("invalid phone number for outbound call", zap.String("input", rawNumber))
		c.release()
		return err
	}

	c.mu.Lock()
	c.callType = entities.CallTypeOutbound
	c.remoteNumber = normalized
	c.mu.Unlock()

	c.appendMessage(entities.RoleSystem, "Fetching phone number configuration...")

	numbers, err := c.records.PhoneNumbers(ctx)
	if err == nil && len(numbers) == 0 {
		err = apperrors.ErrNoPhoneNumbers()
	}
	if err != nil {
		c.appendMessage(entities.RoleSystem, fmt.Sprintf("Failed to start outbound call: %v", err))
		c.release()
		return apperrors.ErrOutboundCallFailed(err)
	}

	overrides := c.assistantOverrides(ctx, firstMessage, outboundFirstMessage)
	req := vapi.OutboundCallRequest{
		AssistantID:        c.cfg.AssistantID,
		Customer:           vapi.OutboundCallCustomer{Number: normalized},
		PhoneNumberID:      numbers[0].ID,
		AssistantOverrides: &overrides,
	}

	resp, err := c.api.CreateOutboundCall(ctx, req)
	if err != nil {
		c.appendMessage(entities.RoleSystem, fmt.Sprintf("Failed to start outbound call: %v", err))
		c.release()
		return apperrors.ErrOutboundCallFailed(err)
	}

	c.appendMessage(entities.RoleSystem, fmt.Sprintf("Outbound call started successfully. Call ID: %s", resp.ID))

	c.mu.Lock()
	c.phase = entities.PhaseConnected
	c.connected = true
	c.startedAt = c.clock()
	c.mu.Unlock()

	c.appendMessage(entities.RoleSystem, "Outbound call connected successfully!")
	return nil
}

// StopCall requests call teardown. Valid in any phase and idempotent.
// With a live stream the state transition happens only when the call-end
// event arrives; a streamless session (outbound calls run remotely and
// emit no local events) has its end transition synthesized directly.
func (c *Controller) StopCall() {
	c.capture.Stop()

	c.mu.Lock()
	stream := c.stream
	gen := c.generation
	phase := c.phase
	c.mu.Unlock()

	if stream != nil {
		if err := stream.Stop(); err != nil {
			c.logger.Warn("failed to request call stop", zap.Error(err))
		}
		return
	}

	if phase == entities.PhaseConnecting || phase == entities.PhaseConnected {
		c.handleCallEnd(gen)
	}
}

// ToggleMute flips the microphone mute state. Valid only while connected.
func (c *Controller) ToggleMute() error {
	c.mu.Lock()
	if !c.connected {
		c.mu.Unlock()
		return apperrors.ErrSessionNotLive("toggle mute")
	}
	c.muted = !c.muted
	muted := c.muted
	stream := c.stream
	c.mu.Unlock()

	if stream != nil {
		if err := stream.SetMuted(muted); err != nil {
			c.logger.Warn("failed to set mute state", zap.Error(err))
		}
	}
	return nil
}

// SendMessage injects a typed user message into the conversation.
// Whitespace-only input is a silent no-op.
func (c *Controller) SendMessage(content string) error {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil
	}

	c.mu.Lock()
	if !c.connected {
		c.mu.Unlock()
		return apperrors.ErrSessionNotLive("send message")
	}
	stream := c.stream
	c.mu.Unlock()

	c.appendMessage(entities.RoleUser, content)
	if stream != nil {
		if err := stream.AddMessage("user", content); err != nil {
			c.logger.Warn("failed to forward message to assistant", zap.Error(err))
		}
	}
	return nil
}

// HandleEvent applies one platform event to the session state machine.
func (c *Controller) HandleEvent(ev vapi.Event) {
	c.mu.Lock()
	gen := c.generation
	c.mu.Unlock()
	c.dispatch(gen, ev)
}

// reserve claims the session for a new call, clearing leftovers from the
// previous one.
func (c *Controller) reserve() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.phase == entities.PhaseConnecting || c.phase == entities.PhaseConnected {
		return apperrors.ErrSessionActive()
	}
	c.phase = entities.PhaseConnecting
	c.connected = false
	c.muted = false
	c.volume = 0
	c.pendingSpeech = ""
	c.messages = nil
	c.callType = entities.CallTypeInbound
	c.remoteNumber = ""
	c.startedAt = time.Time{}
	return nil
}

// release returns a failed start attempt to idle.
func (c *Controller) release() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.phase == entities.PhaseConnecting {
		c.phase = entities.PhaseIdle
	}
}

// pump drains the stream's event channel into the dispatcher until the
// transport closes it.
func (c *Controller) pump(stream vapi.Stream, gen uint64) {
	for ev := range stream.Events() {
		c.dispatch(gen, ev)
	}
}

func (c *Controller) dispatch(gen uint64, ev vapi.Event) {
	c.mu.Lock()
	stale := gen != c.generation ||
		(c.phase != entities.PhaseConnecting && c.phase != entities.PhaseConnected)
	c.mu.Unlock()
	// Events from a torn-down session are dropped.
	if stale {
		return
	}

	switch e := ev.(type) {
	case vapi.CallStartEvent:
		c.handleCallStart(gen)
	case vapi.CallEndEvent:
		c.handleCallEnd(gen)
	case vapi.SpeechStartEvent:
		c.capture.Pause()
	case vapi.SpeechEndEvent:
		c.mu.Lock()
		connected := c.connected
		c.mu.Unlock()
		if connected {
			c.capture.Resume()
		}
	case vapi.VolumeLevelEvent:
		c.mu.Lock()
		c.volume = e.Level
		c.mu.Unlock()
	case vapi.TranscriptEvent:
		c.handleTranscript(e)
	case vapi.StatusUpdateEvent:
		if e.Status == "ended" {
			c.handleCallEnd(gen)
		}
	case vapi.ErrorEvent:
		msg := e.Message
		if msg == "" {
			msg = "Unknown error"
		}
		c.appendMessage(entities.RoleSystem, "Error: "+msg)
	}
}

func (c *Controller) handleCallStart(gen uint64) {
	c.mu.Lock()
	c.phase = entities.PhaseConnected
	c.connected = true
	if c.startedAt.IsZero() {
		c.startedAt = c.clock()
	}
	c.mu.Unlock()

	c.appendMessage(entities.RoleSystem, "Call connected successfully!")

	if c.cfg.SettleDelay <= 0 {
		c.startCapture(gen)
		return
	}
	time.AfterFunc(c.cfg.SettleDelay, func() {
		c.startCapture(gen)
	})
}

// startCapture begins local speech capture, unless the session it was
// scheduled for has already ended.
func (c *Controller) startCapture(gen uint64) {
	c.mu.Lock()
	stale := gen != c.generation || !c.connected
	c.mu.Unlock()
	if stale {
		return
	}

	if !c.capture.Available() {
		return
	}
	if err := c.capture.Start(c.onCaptureResult); err != nil {
		c.logger.Warn("failed to start speech capture", zap.Error(err))
	}
}

// onCaptureResult receives local recognition results. Final text becomes
// a user message and is forwarded into the assistant's context; interim
// text only updates the pending-speech preview.
func (c *Controller) onCaptureResult(text string, final bool) {
	c.mu.Lock()
	if !c.connected {
		c.mu.Unlock()
		return
	}
	if !final {
		c.pendingSpeech = text
		c.mu.Unlock()
		return
	}
	c.pendingSpeech = ""
	stream := c.stream
	c.mu.Unlock()

	if strings.TrimSpace(text) == "" {
		return
	}
	c.appendMessage(entities.RoleUser, text)
	if stream != nil {
		if err := stream.AddMessage("user", text); err != nil {
			c.logger.Warn("failed to forward captured speech", zap.Error(err))
		}
	}
}

// handleTranscript applies a platform-side transcription result. A final
// user transcript is also forwarded as an add-message so the assistant's
// context and the visible log stay aligned.
func (c *Controller) handleTranscript(e vapi.TranscriptEvent) {
	switch e.Role {
	case "user":
		if !e.Final {
			c.mu.Lock()
			c.pendingSpeech = e.Text
			c.mu.Unlock()
			return
		}
		c.mu.Lock()
		c.pendingSpeech = ""
		stream := c.stream
		c.mu.Unlock()

		if strings.TrimSpace(e.Text) == "" {
			return
		}
		c.appendMessage(entities.RoleUser, e.Text)
		if stream != nil {
			if err := stream.AddMessage("user", e.Text); err != nil {
				c.logger.Warn("failed to forward transcript", zap.Error(err))
			}
		}
	case "assistant":
		if e.Final && strings.TrimSpace(e.Text) != "" {
			c.appendMessage(entities.RoleAssistant, e.Text)
		}
	}
}

func (c *Controller) handleCallEnd(gen uint64) {
	c.capture.Stop()

	c.mu.Lock()
	if gen != c.generation || c.phase == entities.PhaseIdle {
		c.mu.Unlock()
		return
	}
	c.generation++
	endedGen := c.generation
	c.phase = entities.PhaseEnded
	c.connected = false
	c.muted = false
	c.volume = 0
	c.pendingSpeech = ""
	stream := c.stream
	c.stream = nil
	callType := c.callType
	remoteNumber := c.remoteNumber
	startedAt := c.startedAt
	conversation := make([]entities.Message, len(c.messages))
	copy(conversation, c.messages)
	c.mu.Unlock()

	if stream != nil {
		if err := stream.Close(); err != nil {
			c.logger.Debug("stream close", zap.Error(err))
		}
	}

	c.appendMessage(entities.RoleSystem, "Call ended")

	// A call that connected leaves a local record behind; the next
	// successful remote refresh replaces it with the platform's log.
	if !startedAt.IsZero() {
		c.records.AddLocal(c.localRecord(callType, remoteNumber, startedAt, conversation))
	}

	if c.cfg.EndedDelay <= 0 {
		c.settleEnded(endedGen)
		return
	}
	time.AfterFunc(c.cfg.EndedDelay, func() {
		c.settleEnded(endedGen)
	})
}

// localRecord builds the call record left behind by a finished session.
// Only conversation turns are kept; system notices stay in the session.
func (c *Controller) localRecord(callType entities.CallType, remoteNumber string, startedAt time.Time, conversation []entities.Message) entities.CallRecord {
	endedAt := c.clock()
	elapsed := endedAt.Sub(startedAt)
	if elapsed < 0 {
		elapsed = 0
	}

	msgs := make([]entities.RecordMessage, 0, len(conversation))
	for _, m := range conversation {
		if m.Role == entities.RoleSystem {
			continue
		}
		msgs = append(msgs, entities.RecordMessage{
			Role:    m.Role,
			Content: m.Content,
			Time:    m.Timestamp,
		})
	}

	return entities.CallRecord{
		ID:          "local-" + uuid.NewString(),
		CallType:    callType,
		CallStatus:  entities.CallStatusCompleted,
		StartedAt:   startedAt,
		EndedAt:     &endedAt,
		Duration:    fmt.Sprintf("%d:%02d", int(elapsed.Minutes()), int(elapsed.Seconds())%60),
		PhoneNumber: remoteNumber,
		Messages:    msgs,
	}
}

// settleEnded moves the session from ended back to idle, unless a new
// call already started.
func (c *Controller) settleEnded(gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen == c.generation && c.phase == entities.PhaseEnded {
		c.phase = entities.PhaseIdle
	}
}

func (c *Controller) appendMessage(role entities.MessageRole, content string) {
	content = strings.TrimSpace(content)
	if content == "" {
		return
	}
	c.mu.Lock()
	c.messages = append(c.messages, entities.Message{
		Role:      role,
		Content:   content,
		Timestamp: c.clock(),
	})
	c.mu.Unlock()
}

// assistantOverrides assembles the per-call assistant configuration from
// the saved settings, the request's first-message override, and the
// current wall clock.
func (c *Controller) assistantOverrides(ctx context.Context, firstMessage, fallback string) vapi.AssistantOverrides {
	settings := c.settings.Load(ctx)

	if strings.TrimSpace(firstMessage) == "" {
		firstMessage = settings.FirstMessage
	}
	if strings.TrimSpace(firstMessage) == "" {
		firstMessage = fallback
	}

	return vapi.AssistantOverrides{
		FirstMessage: firstMessage,
		Voice: &vapi.VoiceConfig{
			Provider: "11labs",
			VoiceID:  "21m00Tcm4TlvDq8ikWAM",
		},
		Transcriber: &vapi.TranscriberConfig{
			Provider:    "deepgram",
			Model:       "nova-2",
			Language:    "en",
			SmartFormat: true,
		},
		Model: &vapi.ModelConfig{
			Provider:    "openai",
			Model:       "gpt-4",
			Temperature: 0.7,
			Messages: []vapi.ModelMessage{
				{Role: "system", Content: BuildSystemPrompt(c.clock())},
			},
		},
		Tools: n8n.CalendarTools(settings.N8NBaseURL),
	}
}
