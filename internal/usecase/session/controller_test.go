package session

import (
	"context"
	"errors"
	"sync"
	"testing"

	"go.uber.org/zap"

	apperrors "github.com/envisage-infotech/hr-interview-desk/errors"
	"github.com/envisage-infotech/hr-interview-desk/internal/domain/entities"
	"github.com/envisage-infotech/hr-interview-desk/internal/infrastructure/external/vapi"
)

// fakeStream records outgoing commands and exposes a never-firing event
// channel; tests drive the controller through HandleEvent instead.
type fakeStream struct {
	mu       sync.Mutex
	events   chan vapi.Event
	added    []string
	muted    []bool
	stops    int
	closed   bool
	stopErr  error
	closeErr error
}

func newFakeStream() *fakeStream {
	return &fakeStream{events: make(chan vapi.Event)}
}

func (s *fakeStream) Events() <-chan vapi.Event { return s.events }

func (s *fakeStream) AddMessage(role, content string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.added = append(s.added, role+":"+content)
	return nil
}

func (s *fakeStream) SetMuted(muted bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.muted = append(s.muted, muted)
	return nil
}

func (s *fakeStream) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stops++
	return s.stopErr
}

func (s *fakeStream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.closed = true
		close(s.events)
	}
	return s.closeErr
}

func (s *fakeStream) addedMessages() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.added))
	copy(out, s.added)
	return out
}

type fakeDialer struct {
	stream    *fakeStream
	err       error
	dials     int
	overrides vapi.AssistantOverrides
}

func (d *fakeDialer) Dial(_ context.Context, _ string, overrides vapi.AssistantOverrides) (vapi.Stream, error) {
	d.dials++
	d.overrides = overrides
	if d.err != nil {
		return nil, d.err
	}
	return d.stream, nil
}

type fakeAPI struct {
	outboundReq *vapi.OutboundCallRequest
	outboundErr error
}

func (f *fakeAPI) ListCalls(context.Context, string) (vapi.CallsPage, error) {
	return vapi.CallsPage{}, nil
}

func (f *fakeAPI) GetCall(context.Context, string) (*vapi.CallLog, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeAPI) CreateOutboundCall(_ context.Context, req vapi.OutboundCallRequest) (*vapi.OutboundCallResponse, error) {
	f.outboundReq = &req
	if f.outboundErr != nil {
		return nil, f.outboundErr
	}
	return &vapi.OutboundCallResponse{ID: "out-1", Status: "queued"}, nil
}

func (f *fakeAPI) ListPhoneNumbers(context.Context) ([]vapi.PhoneNumber, error) {
	return nil, nil
}

func (f *fakeAPI) ImportTwilioNumber(context.Context, vapi.ImportTwilioRequest) (*vapi.PhoneNumber, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeAPI) DeletePhoneNumber(context.Context, string) error { return nil }

type fakeRecords struct {
	mu      sync.Mutex
	numbers []entities.PhoneNumber
	err     error
	calls   int
	added   []entities.CallRecord
}

func (f *fakeRecords) PhoneNumbers(context.Context) ([]entities.PhoneNumber, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.numbers, f.err
}

func (f *fakeRecords) AddLocal(rec entities.CallRecord) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.added = append(f.added, rec)
}

func (f *fakeRecords) addedRecords() []entities.CallRecord {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]entities.CallRecord, len(f.added))
	copy(out, f.added)
	return out
}

type fakeSettings struct{}

func (fakeSettings) Load(context.Context) entities.AssistantSettings {
	return entities.AssistantSettings{
		FirstMessage: "saved greeting",
		N8NBaseURL:   "https://flows.example/webhook",
	}
}

// fakeRecognizer tracks the running state of the recognition loop.
type fakeRecognizer struct {
	mu      sync.Mutex
	running bool
	starts  int
}

func (r *fakeRecognizer) Start(context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.running = true
	r.starts++
	return nil
}

func (r *fakeRecognizer) Stop() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.running = false
	return nil
}

func (r *fakeRecognizer) isRunning() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running
}

type controllerFixture struct {
	controller *Controller
	dialer     *fakeDialer
	api        *fakeAPI
	records    *fakeRecords
	stream     *fakeStream
	recognizer *fakeRecognizer
	callbacks  *RecognizerCallbacks
}

func newFixture() *controllerFixture {
	f := &controllerFixture{
		stream:     newFakeStream(),
		recognizer: &fakeRecognizer{},
		records: &fakeRecords{
			numbers: []entities.PhoneNumber{{ID: "pn-1", Number: "+15550001111"}},
		},
		api: &fakeAPI{},
	}
	f.dialer = &fakeDialer{stream: f.stream}

	factory := func(cb RecognizerCallbacks) (Recognizer, error) {
		f.callbacks = &cb
		return f.recognizer, nil
	}
	capture := NewCapture(factory, zap.NewNop())

	f.controller = NewController(
		f.dialer, f.api, f.records, fakeSettings{}, capture,
		Config{AssistantID: "asst-1"},
		zap.NewNop(),
	)
	return f
}

func (f *controllerFixture) startConnected(t *testing.T) {
	t.Helper()
	if err := f.controller.StartInboundCall(context.Background(), ""); err != nil {
		t.Fatalf("start inbound: %v", err)
	}
	f.controller.HandleEvent(vapi.CallStartEvent{})
}

func TestInboundCallLifecycle(t *testing.T) {
	f := newFixture()

	if err := f.controller.StartInboundCall(context.Background(), ""); err != nil {
		t.Fatalf("start inbound: %v", err)
	}

	snap := f.controller.Snapshot()
	if snap.Phase != entities.PhaseConnecting {
		t.Fatalf("phase after start = %q, want connecting", snap.Phase)
	}
	if snap.Connected {
		t.Fatal("connected must not be inferred from a successful start")
	}

	f.controller.HandleEvent(vapi.CallStartEvent{})

	snap = f.controller.Snapshot()
	if snap.Phase != entities.PhaseConnected || !snap.Connected {
		t.Fatalf("call-start must connect the session: %+v", snap)
	}
	if !f.recognizer.isRunning() {
		t.Fatal("speech capture must start once the call connects")
	}

	f.controller.HandleEvent(vapi.CallEndEvent{})

	snap = f.controller.Snapshot()
	// EndedDelay is zero in tests, so the ended phase settles immediately.
	if snap.Phase != entities.PhaseIdle {
		t.Fatalf("phase after call-end = %q, want idle", snap.Phase)
	}
	if snap.Connected {
		t.Fatal("call-end must disconnect the session")
	}
	if f.recognizer.isRunning() {
		t.Fatal("speech capture must stop when the call ends")
	}
}

func TestCallEndLeavesLocalRecord(t *testing.T) {
	f := newFixture()
	f.startConnected(t)

	f.controller.HandleEvent(vapi.TranscriptEvent{Role: "user", Text: "Hello", Final: true})
	f.controller.HandleEvent(vapi.TranscriptEvent{Role: "assistant", Text: "Hi there", Final: true})
	f.controller.HandleEvent(vapi.CallEndEvent{})

	added := f.records.addedRecords()
	if len(added) != 1 {
		t.Fatalf("expected 1 local record, got %d", len(added))
	}
	rec := added[0]
	if rec.CallType != entities.CallTypeInbound || rec.CallStatus != entities.CallStatusCompleted {
		t.Fatalf("record type/status = %q/%q", rec.CallType, rec.CallStatus)
	}
	if rec.ID == "" || rec.EndedAt == nil {
		t.Fatalf("record missing id or end time: %+v", rec)
	}
	if len(rec.Messages) != 2 {
		t.Fatalf("system notices must not enter the record, got %d messages", len(rec.Messages))
	}
}

func TestStopAfterOutboundEndsSession(t *testing.T) {
	f := newFixture()

	if err := f.controller.StartOutboundCall(context.Background(), "9876543210", ""); err != nil {
		t.Fatalf("start outbound: %v", err)
	}

	// No stream exists for an outbound call, so stop must end the
	// session itself instead of waiting for an event that never comes.
	f.controller.StopCall()

	snap := f.controller.Snapshot()
	if snap.Phase != entities.PhaseIdle || snap.Connected {
		t.Fatalf("stop must end a streamless session: %+v", snap)
	}
	if added := f.records.addedRecords(); len(added) != 1 {
		t.Fatalf("expected 1 local record after stop, got %d", len(added))
	}

	f.controller.StopCall()
	if added := f.records.addedRecords(); len(added) != 1 {
		t.Fatal("repeated stop must not record the call twice")
	}

	// The controller must accept a new call afterwards.
	if err := f.controller.StartInboundCall(context.Background(), ""); err != nil {
		t.Fatalf("start after stopped outbound call: %v", err)
	}
}

func TestOutboundCallEndRecordsDialedNumber(t *testing.T) {
	f := newFixture()

	if err := f.controller.StartOutboundCall(context.Background(), "9876543210", ""); err != nil {
		t.Fatalf("start outbound: %v", err)
	}
	f.controller.HandleEvent(vapi.CallEndEvent{})

	added := f.records.addedRecords()
	if len(added) != 1 {
		t.Fatalf("expected 1 local record, got %d", len(added))
	}
	if added[0].CallType != entities.CallTypeOutbound {
		t.Fatalf("record type = %q, want outbound", added[0].CallType)
	}
	if added[0].PhoneNumber != "+919876543210" {
		t.Fatalf("record phone = %q, want +919876543210", added[0].PhoneNumber)
	}
}

func TestStartWhileActiveRejected(t *testing.T) {
	f := newFixture()
	f.startConnected(t)

	err := f.controller.StartInboundCall(context.Background(), "")
	var appErr apperrors.AppError
	if !errors.As(err, &appErr) || appErr.Code != apperrors.ErrorCode_SESSION_ACTIVE {
		t.Fatalf("expected session-active error, got %v", err)
	}
}

func TestCaptureAndSpeechMutualExclusion(t *testing.T) {
	f := newFixture()
	f.startConnected(t)

	if !f.recognizer.isRunning() {
		t.Fatal("capture should be running after connect")
	}

	// Assistant starts speaking: the mic must be held.
	f.controller.HandleEvent(vapi.SpeechStartEvent{})
	if f.recognizer.isRunning() {
		t.Fatal("capture must pause while the assistant speaks")
	}

	// Assistant finished: the mic comes back.
	f.controller.HandleEvent(vapi.SpeechEndEvent{})
	if !f.recognizer.isRunning() {
		t.Fatal("capture must resume after the assistant stops speaking")
	}
}

func TestCaptureRestartsAfterNaturalEnd(t *testing.T) {
	f := newFixture()
	f.startConnected(t)

	starts := f.recognizer.starts
	f.callbacks.OnEnd()

	if f.recognizer.starts != starts+1 {
		t.Fatal("capture must restart after the recognizer self-terminates")
	}
}

func TestCaptureResultsFlow(t *testing.T) {
	f := newFixture()
	f.startConnected(t)

	f.callbacks.OnResult("hello th", false)
	snap := f.controller.Snapshot()
	if snap.PendingSpeechText != "hello th" {
		t.Fatalf("interim result must set pending speech, got %q", snap.PendingSpeechText)
	}

	f.callbacks.OnResult("hello there", true)
	snap = f.controller.Snapshot()
	if snap.PendingSpeechText != "" {
		t.Fatal("final result must clear pending speech")
	}

	last := snap.Messages[len(snap.Messages)-1]
	if last.Role != entities.RoleUser || last.Content != "hello there" {
		t.Fatalf("final result must append a user message, got %+v", last)
	}

	added := f.stream.addedMessages()
	if len(added) == 0 || added[len(added)-1] != "user:hello there" {
		t.Fatalf("final result must be forwarded to the assistant, got %v", added)
	}
}

func TestPlatformTranscriptEvents(t *testing.T) {
	f := newFixture()
	f.startConnected(t)

	f.controller.HandleEvent(vapi.TranscriptEvent{Role: "user", Text: "partial", Final: false})
	if snap := f.controller.Snapshot(); snap.PendingSpeechText != "partial" {
		t.Fatalf("interim transcript must set pending speech, got %q", snap.PendingSpeechText)
	}

	f.controller.HandleEvent(vapi.TranscriptEvent{Role: "user", Text: "full question", Final: true})
	snap := f.controller.Snapshot()
	if snap.PendingSpeechText != "" {
		t.Fatal("final transcript must clear pending speech")
	}
	last := snap.Messages[len(snap.Messages)-1]
	if last.Role != entities.RoleUser || last.Content != "full question" {
		t.Fatalf("final user transcript must append a user message, got %+v", last)
	}
	added := f.stream.addedMessages()
	if len(added) == 0 || added[len(added)-1] != "user:full question" {
		t.Fatalf("final user transcript must be forwarded, got %v", added)
	}

	f.controller.HandleEvent(vapi.TranscriptEvent{Role: "assistant", Text: "an answer", Final: true})
	snap = f.controller.Snapshot()
	last = snap.Messages[len(snap.Messages)-1]
	if last.Role != entities.RoleAssistant || last.Content != "an answer" {
		t.Fatalf("final assistant transcript must append an assistant message, got %+v", last)
	}
}

func TestStatusUpdateEndedEndsCall(t *testing.T) {
	f := newFixture()
	f.startConnected(t)

	f.controller.HandleEvent(vapi.StatusUpdateEvent{Status: "ended"})

	snap := f.controller.Snapshot()
	if snap.Connected || snap.Phase != entities.PhaseIdle {
		t.Fatalf("status-update ended must end the call: %+v", snap)
	}
}

func TestVolumeLevelEvent(t *testing.T) {
	f := newFixture()
	f.startConnected(t)

	f.controller.HandleEvent(vapi.VolumeLevelEvent{Level: 0.42})
	if snap := f.controller.Snapshot(); snap.VolumeLevel != 0.42 {
		t.Fatalf("volume = %v, want 0.42", snap.VolumeLevel)
	}
}

func TestErrorEventAppendsSystemMessage(t *testing.T) {
	f := newFixture()
	f.startConnected(t)

	f.controller.HandleEvent(vapi.ErrorEvent{Message: "pipeline hiccup"})

	snap := f.controller.Snapshot()
	last := snap.Messages[len(snap.Messages)-1]
	if last.Role != entities.RoleSystem || last.Content != "Error: pipeline hiccup" {
		t.Fatalf("error event must surface as a system message, got %+v", last)
	}
	if !snap.Connected {
		t.Fatal("an error event alone must not end the call")
	}
}

func TestEventsAfterTeardownDropped(t *testing.T) {
	f := newFixture()
	f.startConnected(t)
	f.controller.HandleEvent(vapi.CallEndEvent{})

	before := f.controller.Snapshot()
	f.controller.HandleEvent(vapi.VolumeLevelEvent{Level: 0.9})
	f.controller.HandleEvent(vapi.TranscriptEvent{Role: "user", Text: "ghost", Final: true})

	after := f.controller.Snapshot()
	if after.VolumeLevel != before.VolumeLevel || len(after.Messages) != len(before.Messages) {
		t.Fatal("events arriving after teardown must be dropped")
	}
}

func TestStopCallIdempotentAndNotOptimistic(t *testing.T) {
	f := newFixture()
	f.startConnected(t)

	f.controller.StopCall()
	f.controller.StopCall()

	// State only changes when the platform confirms with call-end.
	snap := f.controller.Snapshot()
	if !snap.Connected || snap.Phase != entities.PhaseConnected {
		t.Fatalf("stop must not change state before call-end arrives: %+v", snap)
	}
	if f.recognizer.isRunning() {
		t.Fatal("stop must tear down speech capture immediately")
	}

	f.controller.HandleEvent(vapi.CallEndEvent{})
	if snap := f.controller.Snapshot(); snap.Connected {
		t.Fatal("call-end after stop must disconnect")
	}

	// Stopping with no session at all is a no-op.
	f.controller.StopCall()
}

func TestToggleMute(t *testing.T) {
	f := newFixture()

	err := f.controller.ToggleMute()
	var appErr apperrors.AppError
	if !errors.As(err, &appErr) || appErr.Code != apperrors.ErrorCode_SESSION_NOT_LIVE {
		t.Fatalf("mute without a live session must fail, got %v", err)
	}

	f.startConnected(t)

	if err := f.controller.ToggleMute(); err != nil {
		t.Fatalf("toggle mute: %v", err)
	}
	if snap := f.controller.Snapshot(); !snap.Muted {
		t.Fatal("first toggle must mute")
	}
	if err := f.controller.ToggleMute(); err != nil {
		t.Fatalf("toggle mute: %v", err)
	}
	if snap := f.controller.Snapshot(); snap.Muted {
		t.Fatal("second toggle must unmute")
	}

	f.stream.mu.Lock()
	muted := append([]bool{}, f.stream.muted...)
	f.stream.mu.Unlock()
	if len(muted) != 2 || !muted[0] || muted[1] {
		t.Fatalf("mute state must be forwarded to the platform, got %v", muted)
	}
}

func TestSendMessage(t *testing.T) {
	f := newFixture()

	if err := f.controller.SendMessage("   "); err != nil {
		t.Fatalf("blank message must be a silent no-op, got %v", err)
	}

	err := f.controller.SendMessage("hello")
	var appErr apperrors.AppError
	if !errors.As(err, &appErr) || appErr.Code != apperrors.ErrorCode_SESSION_NOT_LIVE {
		t.Fatalf("send without a live session must fail, got %v", err)
	}

	f.startConnected(t)

	if err := f.controller.SendMessage("typed question"); err != nil {
		t.Fatalf("send message: %v", err)
	}

	snap := f.controller.Snapshot()
	last := snap.Messages[len(snap.Messages)-1]
	if last.Role != entities.RoleUser || last.Content != "typed question" {
		t.Fatalf("sent message must be appended, got %+v", last)
	}
	added := f.stream.addedMessages()
	if len(added) == 0 || added[len(added)-1] != "user:typed question" {
		t.Fatalf("sent message must be forwarded, got %v", added)
	}
}

func TestOutboundCallInvalidPhoneNoNetwork(t *testing.T) {
	f := newFixture()

	err := f.controller.StartOutboundCall(context.Background(), "12345", "")
	var appErr apperrors.AppError
	if !errors.As(err, &appErr) || appErr.Code != apperrors.ErrorCode_INVALID_PHONE_NUMBER {
		t.Fatalf("expected invalid-phone error, got %v", err)
	}

	if f.records.calls != 0 {
		t.Fatal("invalid phone number must be rejected before any network call")
	}
	if f.api.outboundReq != nil {
		t.Fatal("no outbound call may be created for an invalid number")
	}
	if snap := f.controller.Snapshot(); snap.Phase != entities.PhaseIdle {
		t.Fatalf("failed outbound start must return to idle, got %q", snap.Phase)
	}
}

func TestOutboundCallOptimisticConnect(t *testing.T) {
	f := newFixture()

	if err := f.controller.StartOutboundCall(context.Background(), "9876543210", ""); err != nil {
		t.Fatalf("start outbound: %v", err)
	}

	if f.api.outboundReq == nil {
		t.Fatal("outbound request was never made")
	}
	if got := f.api.outboundReq.Customer.Number; got != "+919876543210" {
		t.Fatalf("customer number = %q, want +919876543210", got)
	}
	if f.api.outboundReq.PhoneNumberID != "pn-1" {
		t.Fatalf("first available phone number must be used, got %q", f.api.outboundReq.PhoneNumberID)
	}

	snap := f.controller.Snapshot()
	if !snap.Connected || snap.Phase != entities.PhaseConnected {
		t.Fatalf("outbound success must set connected optimistically: %+v", snap)
	}
}

func TestOutboundCallNoPhoneNumbers(t *testing.T) {
	f := newFixture()
	f.records.numbers = nil

	err := f.controller.StartOutboundCall(context.Background(), "9876543210", "")
	var appErr apperrors.AppError
	if !errors.As(err, &appErr) || appErr.Code != apperrors.ErrorCode_OUTBOUND_CALL_FAILED {
		t.Fatalf("expected outbound-call-failed error, got %v", err)
	}
	if f.api.outboundReq != nil {
		t.Fatal("no outbound call may be created without an originating number")
	}
	if snap := f.controller.Snapshot(); snap.Phase != entities.PhaseIdle {
		t.Fatalf("failed outbound start must return to idle, got %q", snap.Phase)
	}
}

func TestStartClearsPreviousConversation(t *testing.T) {
	f := newFixture()
	f.startConnected(t)
	if err := f.controller.SendMessage("old conversation"); err != nil {
		t.Fatalf("send message: %v", err)
	}
	f.controller.HandleEvent(vapi.CallEndEvent{})

	f.dialer.stream = newFakeStream()
	f.stream = f.dialer.stream
	if err := f.controller.StartInboundCall(context.Background(), ""); err != nil {
		t.Fatalf("second start: %v", err)
	}

	for _, m := range f.controller.Snapshot().Messages {
		if m.Content == "old conversation" {
			t.Fatal("starting a session must clear the previous conversation")
		}
	}
}

func TestAssistantOverridesUseSettings(t *testing.T) {
	f := newFixture()

	if err := f.controller.StartInboundCall(context.Background(), ""); err != nil {
		t.Fatalf("start inbound: %v", err)
	}

	ov := f.dialer.overrides
	if ov.FirstMessage != "saved greeting" {
		t.Fatalf("first message must come from settings, got %q", ov.FirstMessage)
	}
	if ov.Model == nil || len(ov.Model.Messages) == 0 {
		t.Fatal("overrides must carry the system prompt")
	}
	if len(ov.Tools) == 0 {
		t.Fatal("overrides must declare the calendar webhook tools")
	}
}

func TestDialFailureReturnsToIdle(t *testing.T) {
	f := newFixture()
	f.dialer.err = errors.New("no route")

	err := f.controller.StartInboundCall(context.Background(), "")
	var appErr apperrors.AppError
	if !errors.As(err, &appErr) || appErr.Code != apperrors.ErrorCode_CALL_START_FAILED {
		t.Fatalf("expected call-start-failed error, got %v", err)
	}

	snap := f.controller.Snapshot()
	if snap.Phase != entities.PhaseIdle || snap.Connected {
		t.Fatalf("failed dial must return to idle: %+v", snap)
	}

	found := false
	for _, m := range snap.Messages {
		if m.Role == entities.RoleSystem && m.Content == "Error starting call: no route" {
			found = true
		}
	}
	if !found {
		t.Fatal("dial failure must surface as a system message")
	}
}
