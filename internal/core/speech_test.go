package core

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

// blockingRecognizer waits for a transcript or error on its channels.
type blockingRecognizer struct {
	started    chan struct{}
	transcript chan string
	err        chan error
}

func newBlockingRecognizer() *blockingRecognizer {
	return &blockingRecognizer{
		started:    make(chan struct{}, 4),
		transcript: make(chan string, 1),
		err:        make(chan error, 1),
	}
}

func (r *blockingRecognizer) Recognize(ctx context.Context, _ string) (string, error) {
	r.started <- struct{}{}
	select {
	case text := <-r.transcript:
		return text, nil
	case err := <-r.err:
		return "", err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// recordingSynthesizer remembers every utterance.
type recordingSynthesizer struct {
	mu     sync.Mutex
	spoken []string
	done   chan string
}

func newRecordingSynthesizer() *recordingSynthesizer {
	return &recordingSynthesizer{done: make(chan string, 16)}
}

func (s *recordingSynthesizer) Speak(_ context.Context, text string) error {
	s.mu.Lock()
	s.spoken = append(s.spoken, text)
	s.mu.Unlock()
	s.done <- text
	return nil
}

func waitFor[T any](t *testing.T, ch <-chan T) T {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting")
	}
	var zero T
	return zero
}

type recognitionEvents struct {
	results chan string
	ends    chan struct{}
	errs    chan error
}

func newRecognitionEvents() *recognitionEvents {
	return &recognitionEvents{
		results: make(chan string, 4),
		ends:    make(chan struct{}, 4),
		errs:    make(chan error, 4),
	}
}

func (e *recognitionEvents) start(a *SpeechAdapter) {
	a.StartRecognition(
		func(text string) { e.results <- text },
		func() { e.ends <- struct{}{} },
		func(err error) { e.errs <- err },
	)
}

func TestRecognitionUnsupported(t *testing.T) {
	adapter := NewSpeechAdapter(nil, nil, "")
	if adapter.RecognitionSupported() {
		t.Fatal("expected recognition to be unsupported")
	}

	events := newRecognitionEvents()
	events.start(adapter)
	if err := waitFor(t, events.errs); !errors.Is(err, ErrRecognitionUnsupported) {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRecognitionSuccess(t *testing.T) {
	rec := newBlockingRecognizer()
	adapter := NewSpeechAdapter(rec, nil, "en-US")
	events := newRecognitionEvents()

	events.start(adapter)
	waitFor(t, rec.started)
	rec.transcript <- "  I feel calm  "

	if got := waitFor(t, events.results); got != "I feel calm" {
		t.Fatalf("unexpected transcript: %q", got)
	}
	waitFor(t, events.ends)
	if adapter.Recognizing() {
		t.Fatal("recognition should be finished")
	}
}

func TestRecognitionIsExclusive(t *testing.T) {
	rec := newBlockingRecognizer()
	adapter := NewSpeechAdapter(rec, nil, "en-US")
	first := newRecognitionEvents()
	second := newRecognitionEvents()

	first.start(adapter)
	waitFor(t, rec.started)

	second.start(adapter)
	if err := waitFor(t, second.errs); !errors.Is(err, ErrRecognitionInProgress) {
		t.Fatalf("expected in-progress error, got %v", err)
	}

	rec.transcript <- "hello"
	waitFor(t, first.results)
	waitFor(t, first.ends)
}

func TestRecognitionErrorAllowsRetry(t *testing.T) {
	rec := newBlockingRecognizer()
	adapter := NewSpeechAdapter(rec, nil, "en-US")
	events := newRecognitionEvents()

	events.start(adapter)
	waitFor(t, rec.started)
	rec.err <- errors.New("microphone busy")
	if err := waitFor(t, events.errs); err == nil || err.Error() != "microphone busy" {
		t.Fatalf("unexpected error: %v", err)
	}

	// wait until the adapter released its handle
	deadline := time.Now().Add(time.Second)
	for adapter.Recognizing() && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}

	events.start(adapter)
	waitFor(t, rec.started)
	rec.transcript <- "second try"
	if got := waitFor(t, events.results); got != "second try" {
		t.Fatalf("unexpected transcript: %q", got)
	}
}

func TestRecognitionEmptyTranscript(t *testing.T) {
	rec := newBlockingRecognizer()
	adapter := NewSpeechAdapter(rec, nil, "en-US")
	events := newRecognitionEvents()

	events.start(adapter)
	waitFor(t, rec.started)
	rec.transcript <- "   "
	if err := waitFor(t, events.errs); !errors.Is(err, ErrNoSpeech) {
		t.Fatalf("expected ErrNoSpeech, got %v", err)
	}
}

func TestStopRecognition(t *testing.T) {
	rec := newBlockingRecognizer()
	adapter := NewSpeechAdapter(rec, nil, "en-US")
	events := newRecognitionEvents()

	adapter.StopRecognition() // no-op while idle

	events.start(adapter)
	waitFor(t, rec.started)
	adapter.StopRecognition()
	adapter.StopRecognition()

	waitFor(t, events.ends)
	select {
	case text := <-events.results:
		t.Fatalf("stopped recognition produced a result: %q", text)
	case err := <-events.errs:
		t.Fatalf("stopped recognition produced an error: %v", err)
	default:
	}
}

func TestSpeak(t *testing.T) {
	syn := newRecordingSynthesizer()
	adapter := NewSpeechAdapter(nil, syn, "en-US")
	done := make(chan struct{}, 1)

	adapter.Speak("first", nil)
	adapter.Speak("second", func() { done <- struct{}{} })

	got := map[string]bool{waitFor(t, syn.done): true, waitFor(t, syn.done): true}
	if !got["first"] || !got["second"] {
		t.Fatalf("expected both utterances, got %v", got)
	}
	waitFor(t, done)
}

func TestSpeakUnsupportedIsNoop(t *testing.T) {
	adapter := NewSpeechAdapter(nil, nil, "en-US")
	called := false
	adapter.Speak("hello", func() { called = true })
	if called {
		t.Fatal("onDone must not run when synthesis is unsupported")
	}
}
