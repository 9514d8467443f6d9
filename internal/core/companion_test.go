package core

import (
	"context"
	"errors"
	"testing"
	"time"

	"lumera.app/lumera/internal/store"
)

type fakeFactory struct {
	opener *recordingOpener
}

func (f fakeFactory) NewConversation() *ConversationClient {
	return NewConversationClient(f.opener.open, time.Second)
}

func newTestCompanion(t *testing.T) (*Companion, *store.Repository) {
	t.Helper()
	repo := newTestRepo(t)
	return NewCompanion(fakeFactory{opener: &recordingOpener{reply: echoReply}}, nil, repo), repo
}

func TestCompanionStartsWithWelcome(t *testing.T) {
	c, _ := newTestCompanion(t)

	msgs := c.Current().Messages()
	if len(msgs) != 1 || msgs[0].Text != WelcomeMessage {
		t.Fatalf("expected welcome message, got %+v", msgs)
	}
}

func TestCompanionNewChatAndLoad(t *testing.T) {
	c, _ := newTestCompanion(t)

	first := c.Current()
	first.Submit(context.Background(), "I feel hopeless")
	id := first.Snapshot().SessionID

	second := c.NewChat()
	if second == first || c.Current() != second {
		t.Fatal("NewChat should replace the active session")
	}
	if second.Distressed() || len(second.Messages()) != 1 {
		t.Fatal("new chat should start clean")
	}

	loaded, err := c.LoadSession(id)
	if err != nil {
		t.Fatalf("LoadSession err: %v", err)
	}
	if len(loaded.Messages()) != 3 || !loaded.Distressed() {
		t.Fatalf("loaded session not restored: %+v", loaded.Snapshot())
	}

	if _, err := c.LoadSession(42); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
	if c.Current() != loaded {
		t.Fatal("failed load must keep the active session")
	}
}

func TestCompanionForwardsActiveSnapshots(t *testing.T) {
	c, _ := newTestCompanion(t)
	snaps := make(chan Snapshot, 32)
	defer c.Subscribe(func(s Snapshot) { snaps <- s })()

	old := c.Current()
	c.NewChat()
	if s := waitFor(t, snaps); len(s.Messages) != 1 {
		t.Fatalf("expected fresh snapshot on switch, got %+v", s)
	}

	old.Submit(context.Background(), "stale session")
	c.Current().Submit(context.Background(), "active session")

	for len(snaps) > 0 {
		s := <-snaps
		for _, m := range s.Messages {
			if m.Text == "stale session" {
				t.Fatal("snapshots of a replaced session must not be forwarded")
			}
		}
	}
}

func TestCompanionSettings(t *testing.T) {
	c, _ := newTestCompanion(t)

	custom := store.Settings{Theme: store.ThemeDark, FontSize: 18, VoiceReply: true, AutoEmotionDetection: false, CompactView: true, PrivacyMode: true}
	if _, err := c.UpdateSettings(custom); err != nil {
		t.Fatalf("UpdateSettings err: %v", err)
	}
	if got := c.Settings(); got != custom {
		t.Fatalf("settings not saved: %+v", got)
	}

	bad := []store.Settings{
		{Theme: "sepia", FontSize: 16},
		{Theme: store.ThemeLight, FontSize: 11},
		{Theme: store.ThemeLight, FontSize: 21},
	}
	for _, s := range bad {
		if _, err := c.UpdateSettings(s); !errors.Is(err, ErrInvalidSettings) {
			t.Fatalf("expected ErrInvalidSettings for %+v, got %v", s, err)
		}
	}
	if got := c.Settings(); got != custom {
		t.Fatal("invalid update must not overwrite settings")
	}

	reset, err := c.ResetSettings()
	if err != nil {
		t.Fatalf("ResetSettings err: %v", err)
	}
	want := store.Settings{Theme: store.ThemeLight, FontSize: 16, VoiceReply: false, AutoEmotionDetection: true, CompactView: false, PrivacyMode: false}
	if reset != want || c.Settings() != want {
		t.Fatalf("reset returned %+v, stored %+v", reset, c.Settings())
	}
}

func TestCompanionMoods(t *testing.T) {
	c, _ := newTestCompanion(t)

	entry, err := c.LogMood(store.Calm)
	if err != nil {
		t.Fatalf("LogMood err: %v", err)
	}
	if entry.Emotion != store.Calm || entry.Timestamp == 0 {
		t.Fatalf("unexpected entry: %+v", entry)
	}
	if _, err := c.LogMood("Bored"); !errors.Is(err, ErrInvalidEmotion) {
		t.Fatalf("expected ErrInvalidEmotion, got %v", err)
	}

	c.Current().Submit(context.Background(), "I'm so angry")
	moods := c.Moods()
	if len(moods) != 2 || moods[0].Emotion != store.Calm || moods[1].Emotion != store.Angry {
		t.Fatalf("unexpected mood log: %+v", moods)
	}
}

func TestCompanionHistory(t *testing.T) {
	c, repo := newTestCompanion(t)

	for _, s := range []store.ChatSession{
		{ID: 1, StartTime: 1, Messages: []store.ChatMessage{{ID: "a", Text: "one", Sender: store.SenderUser}}},
		{ID: 2, StartTime: 2, Messages: []store.ChatMessage{{ID: "b", Text: "two", Sender: store.SenderUser}}},
	} {
		if err := repo.SaveSession(s); err != nil {
			t.Fatalf("SaveSession err: %v", err)
		}
	}

	history := c.History()
	if len(history) != 2 || history[0].ID != 2 {
		t.Fatalf("expected newest first, got %+v", history)
	}

	if err := c.DeleteSession(1); err != nil {
		t.Fatalf("DeleteSession err: %v", err)
	}
	if err := c.DeleteSession(1); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
	if err := c.ClearHistory(); err != nil {
		t.Fatalf("ClearHistory err: %v", err)
	}
	if len(c.History()) != 0 {
		t.Fatal("history should be empty after clear")
	}
}
