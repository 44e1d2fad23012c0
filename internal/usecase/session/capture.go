package session

import (
	"context"
	"sync"

	"go.uber.org/zap"

	ucerrors "github.com/envisage-infotech/hr-interview-desk/internal/usecase/errors"
)

// RecognizerCallbacks are the hooks a Recognizer reports through.
type RecognizerCallbacks struct {
	// OnResult delivers recognized text; final marks a settled result,
	// otherwise the text is interim and may still change.
	OnResult func(text string, final bool)
	// OnError reports a recognition error. "no-speech" style errors are
	// not fatal; the capture loop keeps listening.
	OnError func(message string)
	// OnEnd signals the recognizer terminated on its own (most engines
	// self-terminate after silence).
	OnEnd func()
}

// Recognizer is a single speech-recognition run.
type Recognizer interface {
	Start(ctx context.Context) error
	Stop() error
}

// RecognizerFactory builds a Recognizer wired to the given callbacks. A
// nil factory means no recognition engine is available.
type RecognizerFactory func(cb RecognizerCallbacks) (Recognizer, error)

// Capture owns the local speech-recognition loop for one session at a
// time. It enforces the loop's cooperation rules: restart after every
// natural end while capture is wanted, never run while paused (assistant
// speaking), and drop callbacks that arrive after teardown.
type Capture struct {
	factory RecognizerFactory
	logger  *zap.Logger

	mu        sync.Mutex
	rec       Recognizer
	active    bool // session wants capture running
	paused    bool // assistant is speaking; hold the mic
	listening bool // recognizer run in flight; guards redundant starts
	onResult  func(text string, final bool)
}

// NewCapture creates a capture adapter around a recognizer factory.
func NewCapture(factory RecognizerFactory, logger *zap.Logger) *Capture {
	return &Capture{factory: factory, logger: logger}
}

// Available reports whether a recognition engine is configured. Start on
// an unavailable capture fails; callers treat that as non-fatal since the
// platform can still run the call one-way.
func (c *Capture) Available() bool {
	return c.factory != nil
}

// Start begins the capture loop, replacing any previous run.
func (c *Capture) Start(onResult func(text string, final bool)) error {
	if c.factory == nil {
		return ucerrors.ErrRecognizerUnavailable
	}

	c.mu.Lock()
	if c.rec != nil {
		old := c.rec
		c.rec = nil
		c.mu.Unlock()
		_ = old.Stop()
		c.mu.Lock()
	}

	rec, err := c.factory(RecognizerCallbacks{
		OnResult: c.handleResult,
		OnError:  c.handleError,
		OnEnd:    c.handleEnd,
	})
	if err != nil {
		c.mu.Unlock()
		return err
	}

	c.rec = rec
	c.active = true
	c.paused = false
	c.onResult = onResult
	c.mu.Unlock()

	c.startLocked()
	return nil
}

// Pause holds recognition while the assistant speaks, without giving up
// the session's claim on the loop.
func (c *Capture) Pause() {
	c.mu.Lock()
	rec := c.rec
	if rec == nil || c.paused {
		c.mu.Unlock()
		return
	}
	c.paused = true
	c.listening = false
	c.mu.Unlock()
	_ = rec.Stop()
}

// Resume restarts recognition after the assistant finished speaking.
func (c *Capture) Resume() {
	c.mu.Lock()
	if !c.active || !c.paused {
		c.mu.Unlock()
		return
	}
	c.paused = false
	c.mu.Unlock()
	c.startLocked()
}

// Stop fully tears the loop down. Recognition callbacks arriving after
// Stop are ignored. Idempotent.
func (c *Capture) Stop() {
	c.mu.Lock()
	rec := c.rec
	c.rec = nil
	c.active = false
	c.paused = false
	c.listening = false
	c.onResult = nil
	c.mu.Unlock()

	if rec != nil {
		_ = rec.Stop()
	}
}

// startLocked starts the underlying recognizer unless a run is already in
// flight.
func (c *Capture) startLocked() {
	c.mu.Lock()
	rec := c.rec
	if rec == nil || c.listening || !c.active || c.paused {
		c.mu.Unlock()
		return
	}
	c.listening = true
	c.mu.Unlock()

	if err := rec.Start(context.Background()); err != nil {
		c.logger.Warn("failed to start speech recognition", zap.Error(err))
		c.mu.Lock()
		c.listening = false
		c.mu.Unlock()
	}
}

func (c *Capture) handleResult(text string, final bool) {
	c.mu.Lock()
	cb := c.onResult
	active := c.active
	c.mu.Unlock()

	// A result arriving after teardown must not leak into a new session.
	if !active || cb == nil {
		return
	}
	cb(text, final)
}

func (c *Capture) handleError(message string) {
	c.mu.Lock()
	c.listening = false
	c.mu.Unlock()

	if message == "no-speech" {
		c.logger.Debug("no speech detected, continuing to listen")
		return
	}
	c.logger.Warn("speech recognition error", zap.String("error", message))
}

// handleEnd restarts recognition after a natural end while the session
// still wants it; recognition engines self-terminate after silence.
func (c *Capture) handleEnd() {
	c.mu.Lock()
	c.listening = false
	restart := c.active && !c.paused
	c.mu.Unlock()

	if restart {
		c.startLocked()
	}
}
