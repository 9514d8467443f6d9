package core

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"lumera.app/lumera/internal/logger"
	"lumera.app/lumera/internal/store"
)

const (
	defaultChatModelName = "gemini-2.5-flash"

	personaSystemInstruction = "You are Lumera, a caring, empathetic, and supportive mental wellness chatbot. " +
		"Your tone should always be comforting, non-judgmental, and encouraging. " +
		"Never give medical advice, but provide helpful, positive conversation. " +
		"Keep your responses concise and gentle."

	// FallbackReply stands in for the model's answer whenever the remote call fails.
	FallbackReply = "I'm sorry, I encountered an error. Could you please rephrase that?"
)

// RemoteChat is one open conversation with the remote model. *genai.ChatSession satisfies it.
type RemoteChat interface {
	SendMessage(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

// ChatOpener opens a remote conversation seeded with history.
type ChatOpener func(history []*genai.Content) RemoteChat

// LLMService owns the Gemini client shared by every conversation.
type LLMService struct {
	client    *genai.Client
	modelName string
	timeout   time.Duration
}

// NewLLMService connects to Gemini. An empty apiKey yields an offline service
// whose conversations always answer with FallbackReply.
func NewLLMService(ctx context.Context, apiKey, modelName string, timeout time.Duration) (*LLMService, error) {
	if modelName == "" {
		modelName = defaultChatModelName
	}
	svc := &LLMService{modelName: modelName, timeout: timeout}
	if apiKey == "" {
		logger.Warnw("GenAI client not initialized, no API key configured")
		return svc, nil
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	svc.client = client
	return svc, nil
}

func (s *LLMService) Close() {
	if s.client != nil {
		if err := s.client.Close(); err != nil {
			logger.Error("Error closing GenAI client", err)
		} else {
			logger.Info("GenAI client closed.")
		}
	}
}

// NewConversation returns a client with its own remote session handle.
func (s *LLMService) NewConversation() *ConversationClient {
	if s.client == nil {
		return NewConversationClient(nil, s.timeout)
	}

	model := s.client.GenerativeModel(s.modelName)
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(personaSystemInstruction)},
	}
	return NewConversationClient(func(history []*genai.Content) RemoteChat {
		chatSession := model.StartChat()
		chatSession.History = history
		return chatSession
	}, s.timeout)
}

// ConversationClient exchanges one user turn for one model turn over a single
// remote session handle.
type ConversationClient struct {
	open    ChatOpener
	timeout time.Duration

	mu     sync.Mutex
	handle RemoteChat
}

// NewConversationClient builds a client around open. A nil opener means the
// remote service is unavailable. timeout <= 0 disables the per-call deadline.
func NewConversationClient(open ChatOpener, timeout time.Duration) *ConversationClient {
	return &ConversationClient{open: open, timeout: timeout}
}

// Begin opens a fresh handle seeded with history, replacing any previous one.
func (c *ConversationClient) Begin(history []store.ChatMessage) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.beginLocked(history)
}

func (c *ConversationClient) beginLocked(history []store.ChatMessage) {
	if c.open == nil {
		logger.Errorw("GenAI not initialized, cannot open chat session. Check API key.")
		c.handle = nil
		return
	}
	c.handle = c.open(toContents(history))
}

// Send delivers message and returns the model's reply verbatim. It never
// fails: any problem yields FallbackReply.
func (c *ConversationClient) Send(ctx context.Context, message string) string {
	c.mu.Lock()
	if c.handle == nil {
		c.beginLocked(nil)
	}
	handle := c.handle
	c.mu.Unlock()

	if handle == nil {
		return FallbackReply
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	resp, err := handle.SendMessage(ctx, genai.Text(message))
	if err != nil {
		logger.Error("Error sending message to Gemini", err)
		return FallbackReply
	}

	reply := responseText(resp)
	if reply == "" {
		logger.Warnw("Gemini response was empty or had no text parts")
		return FallbackReply
	}
	return reply
}

func toContents(history []store.ChatMessage) []*genai.Content {
	contents := make([]*genai.Content, 0, len(history))
	for _, msg := range history {
		role := "model"
		if msg.Sender == store.SenderUser {
			role = "user"
		}
		contents = append(contents, &genai.Content{
			Role:  role,
			Parts: []genai.Part{genai.Text(msg.Text)},
		})
	}
	return contents
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}

	var responseText strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			responseText.WriteString(string(txt))
		} else {
			logger.Debugw("Gemini response part was not text", "type", fmt.Sprintf("%T", part))
		}
	}
	return responseText.String()
}
