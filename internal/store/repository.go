package store

import (
	"fmt"
	"sync"
)

// Storage keys. They must never change or existing users lose their data.
const (
	SettingsKey    = "lumera-settings"
	MoodsKey       = "lumera-moods"
	ChatHistoryKey = "lumera-chat-history"
)

// Repository exposes the three namespaces the app keeps: settings, mood
// entries and chat session history.
type Repository struct {
	kv KV
	mu sync.Mutex // serializes read-modify-write on the list keys
}

func NewRepository(kv KV) *Repository {
	return &Repository{kv: kv}
}

// Settings methods
func (r *Repository) LoadSettings() Settings {
	return Read(r.kv, SettingsKey, DefaultSettings())
}

func (r *Repository) SaveSettings(settings Settings) error {
	return Write(r.kv, SettingsKey, settings)
}

// ResetSettings drops the persisted override and returns the defaults.
func (r *Repository) ResetSettings() (Settings, error) {
	if err := Remove(r.kv, SettingsKey); err != nil {
		return DefaultSettings(), fmt.Errorf("failed to reset settings: %w", err)
	}
	return DefaultSettings(), nil
}

// Mood methods
func (r *Repository) ListMoods() []MoodEntry {
	moods := Read(r.kv, MoodsKey, []MoodEntry{})
	if moods == nil {
		return []MoodEntry{}
	}
	return moods
}

func (r *Repository) AppendMood(entry MoodEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	moods := Read(r.kv, MoodsKey, []MoodEntry{})
	moods = append(moods, entry)
	return Write(r.kv, MoodsKey, moods)
}

// Session history methods
func (r *Repository) ListSessions() []ChatSession {
	sessions := Read(r.kv, ChatHistoryKey, []ChatSession{})
	if sessions == nil {
		return []ChatSession{}
	}
	return sessions
}

// GetSession returns the stored session with the given id.
func (r *Repository) GetSession(id int64) (ChatSession, bool) {
	for _, s := range r.ListSessions() {
		if s.ID == id {
			return s, true
		}
	}
	return ChatSession{}, false
}

// SaveSession stores session at the front of the history, replacing any
// previous copy with the same id.
func (r *Repository) SaveSession(session ChatSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	sessions := Read(r.kv, ChatHistoryKey, []ChatSession{})
	updated := make([]ChatSession, 0, len(sessions)+1)
	updated = append(updated, session)
	for _, s := range sessions {
		if s.ID != session.ID {
			updated = append(updated, s)
		}
	}
	return Write(r.kv, ChatHistoryKey, updated)
}

// DeleteSession removes the session with id and reports whether it existed.
func (r *Repository) DeleteSession(id int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	sessions := Read(r.kv, ChatHistoryKey, []ChatSession{})
	kept := make([]ChatSession, 0, len(sessions))
	for _, s := range sessions {
		if s.ID != id {
			kept = append(kept, s)
		}
	}
	if len(kept) == len(sessions) {
		return false, nil
	}
	return true, Write(r.kv, ChatHistoryKey, kept)
}

func (r *Repository) ClearHistory() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return Write(r.kv, ChatHistoryKey, []ChatSession{})
}
