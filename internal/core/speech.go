package core

import (
	"context"
	"errors"
	"strings"
	"sync"

	"lumera.app/lumera/internal/logger"
)

var (
	ErrRecognitionUnsupported = errors.New("speech recognition not supported")
	ErrRecognitionInProgress  = errors.New("speech recognition already in progress")
	ErrNoSpeech               = errors.New("no speech recognized")
)

// Recognizer transcribes a single utterance in the given locale.
type Recognizer interface {
	Recognize(ctx context.Context, language string) (string, error)
}

// Synthesizer plays text as audio and returns once playback is done.
type Synthesizer interface {
	Speak(ctx context.Context, text string) error
}

// SpeechAdapter puts optional platform voice capabilities behind one
// interface. Either capability may be nil, meaning unsupported.
type SpeechAdapter struct {
	recognizer  Recognizer
	synthesizer Synthesizer
	language    string

	mu     sync.Mutex
	cancel context.CancelFunc // set while a recognition attempt is running
}

func NewSpeechAdapter(recognizer Recognizer, synthesizer Synthesizer, language string) *SpeechAdapter {
	if language == "" {
		language = "en-US"
	}
	return &SpeechAdapter{recognizer: recognizer, synthesizer: synthesizer, language: language}
}

func (a *SpeechAdapter) RecognitionSupported() bool {
	return a != nil && a.recognizer != nil
}

func (a *SpeechAdapter) SynthesisSupported() bool {
	return a != nil && a.synthesizer != nil
}

// StartRecognition runs one recognition attempt in the background. On success
// onResult receives the transcript and onEnd follows; on failure only onError
// is called. It fails immediately when recognition is unsupported or another
// attempt is still running.
func (a *SpeechAdapter) StartRecognition(onResult func(string), onEnd func(), onError func(error)) {
	if !a.RecognitionSupported() {
		logger.Warnw("Speech recognition not supported.")
		onError(ErrRecognitionUnsupported)
		return
	}

	a.mu.Lock()
	if a.cancel != nil {
		a.mu.Unlock()
		onError(ErrRecognitionInProgress)
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel
	a.mu.Unlock()

	go func() {
		transcript, err := a.recognizer.Recognize(ctx, a.language)
		stopped := ctx.Err() != nil

		a.mu.Lock()
		a.cancel = nil
		a.mu.Unlock()
		cancel()

		transcript = strings.TrimSpace(transcript)
		switch {
		case stopped:
			onEnd()
		case err != nil:
			onError(err)
		case transcript == "":
			onError(ErrNoSpeech)
		default:
			onResult(transcript)
			onEnd()
		}
	}()
}

// StopRecognition aborts the running attempt, if any.
func (a *SpeechAdapter) StopRecognition() {
	if a == nil {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.cancel != nil {
		a.cancel()
	}
}

// Recognizing reports whether an attempt is running.
func (a *SpeechAdapter) Recognizing() bool {
	if a == nil {
		return false
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.cancel != nil
}

// Speak queues text for playback without waiting for it. onDone, if set, runs
// after playback finishes or fails.
func (a *SpeechAdapter) Speak(text string, onDone func()) {
	if !a.SynthesisSupported() {
		logger.Warnw("Speech synthesis not supported.")
		return
	}

	go func() {
		if err := a.synthesizer.Speak(context.Background(), text); err != nil {
			logger.Error("speech synthesis failed", err)
		}
		if onDone != nil {
			onDone()
		}
	}()
}
