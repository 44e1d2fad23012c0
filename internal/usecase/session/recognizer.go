package session

import (
	"context"
	"io"
	"time"

	aai "github.com/AssemblyAI/assemblyai-go-sdk"
	"go.uber.org/zap"

	"github.com/envisage-infotech/hr-interview-desk/pkg/config"
)

// AudioSource supplies raw PCM16 audio frames for streaming recognition,
// typically a microphone device or an audio tap on the call media.
type AudioSource interface {
	io.Reader
}

// NewAssemblyAIFactory builds a RecognizerFactory backed by AssemblyAI's
// realtime transcription. Returns nil when the engine cannot be used
// (missing API key or no audio source), which callers surface as
// "capture unavailable" rather than an error.
func NewAssemblyAIFactory(cfg *config.SpeechConfig, source AudioSource, logger *zap.Logger) RecognizerFactory {
	if cfg == nil || cfg.APIKey == "" || source == nil {
		return nil
	}

	return func(cb RecognizerCallbacks) (Recognizer, error) {
		rec := &assemblyRecognizer{
			source:     source,
			sampleRate: cfg.SampleRate,
			logger:     logger,
		}
		rec.client = aai.NewRealTimeClientWithOptions(
			aai.WithRealTimeAPIKey(cfg.APIKey),
			aai.WithRealTimeSampleRate(cfg.SampleRate),
			aai.WithRealTimeTranscriber(&aai.RealTimeTranscriber{
				OnPartialTranscript: func(t aai.PartialTranscript) {
					if cb.OnResult != nil {
						cb.OnResult(t.Text, false)
					}
				},
				OnFinalTranscript: func(t aai.FinalTranscript) {
					if cb.OnResult != nil {
						cb.OnResult(t.Text, true)
					}
				},
				OnSessionTerminated: func(aai.SessionTerminated) {
					if cb.OnEnd != nil {
						cb.OnEnd()
					}
				},
				OnError: func(err error) {
					if cb.OnError != nil {
						cb.OnError(err.Error())
					}
				},
			}),
		)
		return rec, nil
	}
}

type assemblyRecognizer struct {
	client     *aai.RealTimeClient
	source     AudioSource
	sampleRate int
	logger     *zap.Logger
	cancel     context.CancelFunc
}

func (r *assemblyRecognizer) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	r.cancel = cancel

	if err := r.client.Connect(ctx); err != nil {
		cancel()
		return err
	}

	go r.pump(ctx)
	return nil
}

func (r *assemblyRecognizer) Stop() error {
	if r.cancel != nil {
		r.cancel()
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return r.client.Disconnect(ctx, true)
}

// pump streams 50ms PCM16 frames from the audio source until the context
// is cancelled or the source drains.
func (r *assemblyRecognizer) pump(ctx context.Context) {
	frame := make([]byte, r.sampleRate/20*2)
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		n, err := r.source.Read(frame)
		if n > 0 {
			if sendErr := r.client.Send(ctx, frame[:n]); sendErr != nil {
				r.logger.Debug("audio send failed", zap.Error(sendErr))
				return
			}
		}
		if err != nil {
			if err != io.EOF {
				r.logger.Warn("audio source read failed", zap.Error(err))
			}
			return
		}
	}
}
