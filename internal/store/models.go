package store

import "strings"

type Emotion string

const (
	Happy   Emotion = "Happy"
	Sad     Emotion = "Sad"
	Anxious Emotion = "Anxious"
	Angry   Emotion = "Angry"
	Calm    Emotion = "Calm"
	Neutral Emotion = "Neutral"
)

// Emotions lists every emotion in enumeration order.
var Emotions = []Emotion{Happy, Sad, Anxious, Angry, Calm, Neutral}

// ParseEmotion matches name case-insensitively against the known emotions.
func ParseEmotion(name string) (Emotion, bool) {
	for _, e := range Emotions {
		if strings.EqualFold(strings.TrimSpace(name), string(e)) {
			return e, true
		}
	}
	return "", false
}

type Sender string

const (
	SenderUser Sender = "user"
	SenderBot  Sender = "bot"
)

type ChatMessage struct {
	ID        string  `json:"id"`
	Text      string  `json:"text"`
	Sender    Sender  `json:"sender"`
	Emotion   Emotion `json:"emotion,omitempty"` // empty when detection was off or matched nothing
	Timestamp int64   `json:"timestamp"`         // epoch milliseconds
}

type ChatSession struct {
	ID        int64         `json:"id"`
	StartTime int64         `json:"startTime"`
	Messages  []ChatMessage `json:"messages"`
	Summary   string        `json:"summary,omitempty"`
}

type MoodEntry struct {
	Emotion   Emotion `json:"emotion"`
	Timestamp int64   `json:"timestamp"`
}

type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

type Settings struct {
	Theme                Theme `json:"theme"`
	FontSize             int   `json:"fontSize"`
	VoiceReply           bool  `json:"voiceReply"`
	AutoEmotionDetection bool  `json:"autoEmotionDetection"`
	CompactView          bool  `json:"compactView"`
	PrivacyMode          bool  `json:"privacyMode"`
}

const (
	MinFontSize = 12
	MaxFontSize = 20
)

// DefaultSettings is the tuple restored by a settings reset.
func DefaultSettings() Settings {
	return Settings{
		Theme:                ThemeLight,
		FontSize:             16,
		VoiceReply:           false,
		AutoEmotionDetection: true,
		CompactView:          false,
		PrivacyMode:          false,
	}
}
