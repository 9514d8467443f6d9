package core

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"lumera.app/lumera/internal/logger"
	"lumera.app/lumera/internal/store"
)

const (
	WelcomeMessage = "Hello! I'm Lumera, your caring digital companion. How are you feeling today?"

	summaryLength = 50
)

// TurnState is the orchestrator's position in the turn cycle.
type TurnState int

const (
	StateIdle TurnState = iota
	StateAwaitingReply
)

func (s TurnState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAwaitingReply:
		return "awaiting_reply"
	default:
		return "unknown"
	}
}

// Turn is the outcome of one accepted Submit.
type Turn struct {
	User       store.ChatMessage `json:"user"`
	Bot        store.ChatMessage `json:"bot"`
	Mood       *store.MoodEntry  `json:"mood,omitempty"`
	Distressed bool              `json:"distressed"`
}

// Snapshot is a copy of the orchestrator's observable state.
type Snapshot struct {
	SessionID  int64               `json:"sessionId"`
	StartTime  int64               `json:"startTime"`
	State      string              `json:"state"`
	Messages   []store.ChatMessage `json:"messages"`
	Distressed bool                `json:"distressed"`
	Recording  bool                `json:"recording"`
	VoiceError string              `json:"voiceError,omitempty"`
}

// Orchestrator runs one conversation session. It owns the session's message
// log and its remote conversation handle, and allows at most one turn in
// flight.
type Orchestrator struct {
	client *ConversationClient
	speech *SpeechAdapter
	repo   *store.Repository
	now    func() time.Time

	mu         sync.Mutex
	state      TurnState
	session    store.ChatSession
	distressed bool
	recording  bool
	voiceErr   string
	listeners  map[int]func(Snapshot)
	nextID     int
}

// NewOrchestrator starts a session. With a nil or empty existing session a
// fresh conversation is opened and greeted with WelcomeMessage; otherwise the
// stored log is restored and handed to the remote model as history.
func NewOrchestrator(client *ConversationClient, speech *SpeechAdapter, repo *store.Repository, existing *store.ChatSession) *Orchestrator {
	o := &Orchestrator{
		client:    client,
		speech:    speech,
		repo:      repo,
		now:       time.Now,
		listeners: make(map[int]func(Snapshot)),
	}

	if existing != nil && len(existing.Messages) > 0 {
		o.session = store.ChatSession{
			ID:        existing.ID,
			StartTime: existing.StartTime,
			Messages:  append([]store.ChatMessage(nil), existing.Messages...),
			Summary:   existing.Summary,
		}
		o.distressed = latestUserDistressed(o.session.Messages)
		client.Begin(o.session.Messages)
		logger.Infow("chat session loaded", "session_id", o.session.ID, "message_count", len(o.session.Messages))
		return o
	}

	if existing != nil {
		o.session.ID = existing.ID
		o.session.StartTime = existing.StartTime
	}
	client.Begin(nil)

	welcome := store.ChatMessage{
		ID:        newMessageID(),
		Text:      WelcomeMessage,
		Sender:    store.SenderBot,
		Timestamp: o.now().UnixMilli(),
	}
	o.session.Messages = []store.ChatMessage{welcome}
	if repo.LoadSettings().VoiceReply {
		speech.Speak(welcome.Text, nil)
	}
	return o
}

// Submit runs one turn: the user message is analysed and logged, sent to the
// remote model, and the reply is logged and persisted. It blocks until the
// reply arrives. ok is false when text is blank or another turn is in flight;
// nothing changes in that case.
func (o *Orchestrator) Submit(ctx context.Context, text string) (turn Turn, ok bool) {
	if strings.TrimSpace(text) == "" {
		return Turn{}, false
	}

	o.mu.Lock()
	if o.state == StateAwaitingReply {
		sessionID := o.session.ID
		o.mu.Unlock()
		logger.Debugw("submit rejected, reply pending", "session_id", sessionID)
		return Turn{}, false
	}

	settings := o.repo.LoadSettings()
	now := o.now()
	userMsg := store.ChatMessage{
		ID:        newMessageID(),
		Text:      text,
		Sender:    store.SenderUser,
		Timestamp: now.UnixMilli(),
	}

	var mood *store.MoodEntry
	if settings.AutoEmotionDetection {
		if emotion := Classify(text); emotion != store.Neutral {
			userMsg.Emotion = emotion
			mood = &store.MoodEntry{Emotion: emotion, Timestamp: now.UnixMilli()}
		}
	}

	o.distressed = IsDistressed(text)
	if o.session.ID == 0 {
		o.session.ID = now.UnixMilli()
		o.session.StartTime = o.session.ID
	}
	o.session.Messages = append(o.session.Messages, userMsg)
	o.state = StateAwaitingReply
	distressed := o.distressed
	sessionID := o.session.ID
	snap := o.snapshotLocked()
	o.mu.Unlock()
	o.notify(snap)

	if distressed {
		logger.Warnw("distress language detected", "session_id", sessionID)
	}

	reply := o.client.Send(ctx, text)

	o.mu.Lock()
	botMsg := store.ChatMessage{
		ID:        newMessageID(),
		Text:      reply,
		Sender:    store.SenderBot,
		Timestamp: o.now().UnixMilli(),
	}
	o.session.Messages = append(o.session.Messages, botMsg)
	o.state = StateIdle
	session := o.sessionLocked()
	snap = o.snapshotLocked()
	o.mu.Unlock()

	if settings.VoiceReply {
		o.speech.Speak(reply, nil)
	}
	o.persist(session, mood)
	o.notify(snap)

	return Turn{User: userMsg, Bot: botMsg, Mood: mood, Distressed: distressed}, true
}

func (o *Orchestrator) persist(session store.ChatSession, mood *store.MoodEntry) {
	if hasExchange(session.Messages) {
		session.Summary = summarize(session.Messages)
		if err := o.repo.SaveSession(session); err != nil {
			logger.Errorw("failed to persist chat session", "session_id", session.ID, "error", err)
		}
	}
	if mood != nil {
		if err := o.repo.AppendMood(*mood); err != nil {
			logger.Errorw("failed to persist mood entry", "emotion", mood.Emotion, "error", err)
		}
	}
}

// StartVoiceInput listens for one utterance and submits the transcript as a
// regular turn. Recognition failures leave the session untouched.
func (o *Orchestrator) StartVoiceInput() error {
	if !o.speech.RecognitionSupported() {
		return ErrRecognitionUnsupported
	}

	o.mu.Lock()
	if o.recording || o.speech.Recognizing() {
		o.mu.Unlock()
		return ErrRecognitionInProgress
	}
	o.recording = true
	o.voiceErr = ""
	snap := o.snapshotLocked()
	o.mu.Unlock()
	o.notify(snap)

	o.speech.StartRecognition(
		func(transcript string) {
			o.setRecording(false, "")
			o.Submit(context.Background(), transcript)
		},
		func() {
			o.setRecording(false, "")
		},
		func(err error) {
			logger.Warnw("speech recognition failed", "error", err)
			o.setRecording(false, err.Error())
		},
	)
	return nil
}

func (o *Orchestrator) StopVoiceInput() {
	o.speech.StopRecognition()
}

func (o *Orchestrator) setRecording(recording bool, voiceErr string) {
	o.mu.Lock()
	changed := o.recording != recording || voiceErr != ""
	o.recording = recording
	if voiceErr != "" {
		o.voiceErr = voiceErr
	}
	snap := o.snapshotLocked()
	o.mu.Unlock()
	if changed {
		o.notify(snap)
	}
}

// Subscribe registers fn to receive a snapshot after every state change. The
// returned func removes it.
func (o *Orchestrator) Subscribe(fn func(Snapshot)) func() {
	o.mu.Lock()
	defer o.mu.Unlock()
	id := o.nextID
	o.nextID++
	o.listeners[id] = fn
	return func() {
		o.mu.Lock()
		defer o.mu.Unlock()
		delete(o.listeners, id)
	}
}

func (o *Orchestrator) notify(snap Snapshot) {
	o.mu.Lock()
	fns := make([]func(Snapshot), 0, len(o.listeners))
	for _, fn := range o.listeners {
		fns = append(fns, fn)
	}
	o.mu.Unlock()

	for _, fn := range fns {
		fn(snap)
	}
}

func (o *Orchestrator) State() TurnState {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

func (o *Orchestrator) Distressed() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.distressed
}

// Messages returns a copy of the message log.
func (o *Orchestrator) Messages() []store.ChatMessage {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]store.ChatMessage(nil), o.session.Messages...)
}

// Session returns a copy of the session as it would be persisted.
func (o *Orchestrator) Session() store.ChatSession {
	o.mu.Lock()
	defer o.mu.Unlock()
	session := o.sessionLocked()
	session.Summary = summarize(session.Messages)
	return session
}

func (o *Orchestrator) Snapshot() Snapshot {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.snapshotLocked()
}

func (o *Orchestrator) sessionLocked() store.ChatSession {
	return store.ChatSession{
		ID:        o.session.ID,
		StartTime: o.session.StartTime,
		Messages:  append([]store.ChatMessage(nil), o.session.Messages...),
		Summary:   o.session.Summary,
	}
}

func (o *Orchestrator) snapshotLocked() Snapshot {
	return Snapshot{
		SessionID:  o.session.ID,
		StartTime:  o.session.StartTime,
		State:      o.state.String(),
		Messages:   append([]store.ChatMessage(nil), o.session.Messages...),
		Distressed: o.distressed,
		Recording:  o.recording,
		VoiceError: o.voiceErr,
	}
}

// hasExchange reports whether a user message has been answered.
func hasExchange(messages []store.ChatMessage) bool {
	sawUser := false
	for _, m := range messages {
		if m.Sender == store.SenderUser {
			sawUser = true
		} else if sawUser {
			return true
		}
	}
	return false
}

func summarize(messages []store.ChatMessage) string {
	for _, m := range messages {
		if m.Sender != store.SenderUser {
			continue
		}
		runes := []rune(m.Text)
		if len(runes) <= summaryLength {
			return m.Text
		}
		return string(runes[:summaryLength]) + "..."
	}
	return ""
}

func latestUserDistressed(messages []store.ChatMessage) bool {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Sender == store.SenderUser {
			return IsDistressed(messages[i].Text)
		}
	}
	return false
}

func newMessageID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
