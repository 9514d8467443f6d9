package core

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"lumera.app/lumera/internal/logger"
	"lumera.app/lumera/internal/store"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrInvalidSettings = errors.New("invalid settings")
	ErrInvalidEmotion  = errors.New("invalid emotion")
)

// ConversationFactory hands out a conversation client per session.
type ConversationFactory interface {
	NewConversation() *ConversationClient
}

// Companion is the app-level controller: it holds the active session and
// the settings, mood and history operations around it.
type Companion struct {
	llm    ConversationFactory
	speech *SpeechAdapter
	repo   *store.Repository
	now    func() time.Time

	mu          sync.Mutex
	current     *Orchestrator
	unsubscribe func()
	listeners   map[int]func(Snapshot)
	nextID      int
}

// NewCompanion creates the controller with a fresh chat already open.
func NewCompanion(llm ConversationFactory, speech *SpeechAdapter, repo *store.Repository) *Companion {
	c := &Companion{
		llm:       llm,
		speech:    speech,
		repo:      repo,
		now:       time.Now,
		listeners: make(map[int]func(Snapshot)),
	}
	c.NewChat()
	return c
}

func (c *Companion) Current() *Orchestrator {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// NewChat discards the active session and opens a fresh one.
func (c *Companion) NewChat() *Orchestrator {
	o := NewOrchestrator(c.llm.NewConversation(), c.speech, c.repo, nil)
	c.activate(o)
	logger.Info("new chat started")
	return o
}

// LoadSession switches to a stored session.
func (c *Companion) LoadSession(id int64) (*Orchestrator, error) {
	session, ok := c.repo.GetSession(id)
	if !ok {
		return nil, fmt.Errorf("load session %d: %w", id, ErrSessionNotFound)
	}
	o := NewOrchestrator(c.llm.NewConversation(), c.speech, c.repo, &session)
	c.activate(o)
	return o, nil
}

func (c *Companion) activate(o *Orchestrator) {
	c.mu.Lock()
	previous, unsubscribe := c.current, c.unsubscribe
	c.current = o
	c.unsubscribe = o.Subscribe(c.publish)
	c.mu.Unlock()

	if previous != nil {
		unsubscribe()
		previous.StopVoiceInput()
	}
	c.publish(o.Snapshot())
}

// Subscribe registers fn for snapshots of whichever session is active.
func (c *Companion) Subscribe(fn func(Snapshot)) func() {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.nextID
	c.nextID++
	c.listeners[id] = fn
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.listeners, id)
	}
}

func (c *Companion) publish(snap Snapshot) {
	c.mu.Lock()
	fns := make([]func(Snapshot), 0, len(c.listeners))
	for _, fn := range c.listeners {
		fns = append(fns, fn)
	}
	c.mu.Unlock()

	for _, fn := range fns {
		fn(snap)
	}
}

// Settings methods
func (c *Companion) Settings() store.Settings {
	return c.repo.LoadSettings()
}

func (c *Companion) UpdateSettings(settings store.Settings) (store.Settings, error) {
	if settings.Theme != store.ThemeLight && settings.Theme != store.ThemeDark {
		return c.Settings(), fmt.Errorf("%w: unknown theme %q", ErrInvalidSettings, settings.Theme)
	}
	if settings.FontSize < store.MinFontSize || settings.FontSize > store.MaxFontSize {
		return c.Settings(), fmt.Errorf("%w: font size %d outside %d-%d", ErrInvalidSettings, settings.FontSize, store.MinFontSize, store.MaxFontSize)
	}
	if err := c.repo.SaveSettings(settings); err != nil {
		return c.Settings(), fmt.Errorf("failed to save settings: %w", err)
	}
	return settings, nil
}

func (c *Companion) ResetSettings() (store.Settings, error) {
	settings, err := c.repo.ResetSettings()
	if err != nil {
		return settings, err
	}
	logger.Info("Preferences reset to default")
	return settings, nil
}

// Mood methods

// LogMood records a mood picked by the user outside the chat flow.
func (c *Companion) LogMood(emotion store.Emotion) (store.MoodEntry, error) {
	parsed, ok := store.ParseEmotion(string(emotion))
	if !ok {
		return store.MoodEntry{}, fmt.Errorf("%w: %q", ErrInvalidEmotion, emotion)
	}
	entry := store.MoodEntry{Emotion: parsed, Timestamp: c.now().UnixMilli()}
	if err := c.repo.AppendMood(entry); err != nil {
		return store.MoodEntry{}, fmt.Errorf("failed to log mood: %w", err)
	}
	return entry, nil
}

func (c *Companion) Moods() []store.MoodEntry {
	return c.repo.ListMoods()
}

// History methods
func (c *Companion) History() []store.ChatSession {
	return c.repo.ListSessions()
}

func (c *Companion) DeleteSession(id int64) error {
	deleted, err := c.repo.DeleteSession(id)
	if err != nil {
		return fmt.Errorf("failed to delete session %d: %w", id, err)
	}
	if !deleted {
		return fmt.Errorf("delete session %d: %w", id, ErrSessionNotFound)
	}
	return nil
}

func (c *Companion) ClearHistory() error {
	if err := c.repo.ClearHistory(); err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	logger.Info("chat history cleared")
	return nil
}
