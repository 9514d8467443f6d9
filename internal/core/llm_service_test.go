package core

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/generative-ai-go/genai"

	"lumera.app/lumera/internal/store"
)

// fakeChat records what it is sent and answers through reply.
type fakeChat struct {
	mu      sync.Mutex
	history []*genai.Content
	sent    []string
	reply   func(ctx context.Context, msg string) (*genai.GenerateContentResponse, error)
}

func (f *fakeChat) SendMessage(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error) {
	var msg string
	for _, p := range parts {
		if txt, ok := p.(genai.Text); ok {
			msg += string(txt)
		}
	}
	f.mu.Lock()
	f.sent = append(f.sent, msg)
	f.mu.Unlock()
	return f.reply(ctx, msg)
}

func (f *fakeChat) sentCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

func textResponse(text string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Role: "model", Parts: []genai.Part{genai.Text(text)}},
		}},
	}
}

func echoReply(_ context.Context, msg string) (*genai.GenerateContentResponse, error) {
	return textResponse("echo: " + msg), nil
}

func failingReply(_ context.Context, _ string) (*genai.GenerateContentResponse, error) {
	return nil, errors.New("remote unavailable")
}

// recordingOpener counts opened handles and keeps the most recent one.
type recordingOpener struct {
	mu     sync.Mutex
	opened []*fakeChat
	reply  func(ctx context.Context, msg string) (*genai.GenerateContentResponse, error)
}

func (o *recordingOpener) open(history []*genai.Content) RemoteChat {
	o.mu.Lock()
	defer o.mu.Unlock()
	chat := &fakeChat{history: history, reply: o.reply}
	o.opened = append(o.opened, chat)
	return chat
}

func (o *recordingOpener) last() *fakeChat {
	o.mu.Lock()
	defer o.mu.Unlock()
	if len(o.opened) == 0 {
		return nil
	}
	return o.opened[len(o.opened)-1]
}

func TestBeginMapsRoles(t *testing.T) {
	opener := &recordingOpener{reply: echoReply}
	client := NewConversationClient(opener.open, time.Second)

	client.Begin([]store.ChatMessage{
		{Text: "Hello! I'm Lumera", Sender: store.SenderBot},
		{Text: "hi there", Sender: store.SenderUser},
		{Text: "how are you?", Sender: store.SenderBot},
	})

	history := opener.last().history
	if len(history) != 3 {
		t.Fatalf("expected 3 history entries, got %d", len(history))
	}
	wantRoles := []string{"model", "user", "model"}
	for i, content := range history {
		if content.Role != wantRoles[i] {
			t.Fatalf("entry %d: role %q, want %q", i, content.Role, wantRoles[i])
		}
	}
	if txt, ok := history[1].Parts[0].(genai.Text); !ok || string(txt) != "hi there" {
		t.Fatalf("unexpected text part: %#v", history[1].Parts[0])
	}
}

func TestBeginTwiceReplacesHandle(t *testing.T) {
	opener := &recordingOpener{reply: echoReply}
	client := NewConversationClient(opener.open, time.Second)

	history := []store.ChatMessage{{Text: "hi", Sender: store.SenderUser}}
	client.Begin(history)
	client.Begin(history)

	reply := client.Send(context.Background(), "ping")
	if reply != "echo: ping" {
		t.Fatalf("unexpected reply: %q", reply)
	}
	if len(opener.opened) != 2 {
		t.Fatalf("expected 2 opened handles, got %d", len(opener.opened))
	}
	if opener.opened[0].sentCount() != 0 {
		t.Fatal("replaced handle must not receive messages")
	}
	if opener.opened[1].sentCount() != 1 {
		t.Fatal("current handle should receive exactly one message")
	}
}

func TestSendLazilyBegins(t *testing.T) {
	opener := &recordingOpener{reply: echoReply}
	client := NewConversationClient(opener.open, 0)

	if reply := client.Send(context.Background(), "hello"); reply != "echo: hello" {
		t.Fatalf("unexpected reply: %q", reply)
	}
	if len(opener.opened) != 1 || len(opener.opened[0].history) != 0 {
		t.Fatalf("expected one lazily opened handle with empty history")
	}
}

func TestSendFallbacks(t *testing.T) {
	cases := []struct {
		name   string
		client *ConversationClient
	}{
		{"remote error", NewConversationClient((&recordingOpener{reply: failingReply}).open, time.Second)},
		{"no opener", NewConversationClient(nil, time.Second)},
		{"empty response", NewConversationClient((&recordingOpener{reply: func(context.Context, string) (*genai.GenerateContentResponse, error) {
			return &genai.GenerateContentResponse{}, nil
		}}).open, time.Second)},
	}
	for _, tc := range cases {
		if reply := tc.client.Send(context.Background(), "hello"); reply != FallbackReply {
			t.Fatalf("%s: expected fallback, got %q", tc.name, reply)
		}
	}
}

func TestSendTimeoutFallsBack(t *testing.T) {
	opener := &recordingOpener{reply: func(ctx context.Context, _ string) (*genai.GenerateContentResponse, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}}
	client := NewConversationClient(opener.open, 20*time.Millisecond)

	if reply := client.Send(context.Background(), "hello"); reply != FallbackReply {
		t.Fatalf("expected fallback after timeout, got %q", reply)
	}
}

func TestSendReturnsReplyVerbatim(t *testing.T) {
	raw := "  *Take a deep breath.*\n\nI'm here.  "
	opener := &recordingOpener{reply: func(context.Context, string) (*genai.GenerateContentResponse, error) {
		return textResponse(raw), nil
	}}
	client := NewConversationClient(opener.open, time.Second)

	if reply := client.Send(context.Background(), "help"); reply != raw {
		t.Fatalf("reply was reformatted: %q", reply)
	}
}

func TestOfflineServiceConversation(t *testing.T) {
	svc, err := NewLLMService(context.Background(), "", "", time.Second)
	if err != nil {
		t.Fatalf("NewLLMService err: %v", err)
	}
	defer svc.Close()

	if reply := svc.NewConversation().Send(context.Background(), "hi"); reply != FallbackReply {
		t.Fatalf("expected fallback from offline service, got %q", reply)
	}
}
