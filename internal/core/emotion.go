package core

import (
	"strings"

	"lumera.app/lumera/internal/store"
)

// classificationOrder is the tie-break: when keywords of several emotions
// appear, the earliest emotion in this list wins.
var classificationOrder = []store.Emotion{store.Happy, store.Sad, store.Anxious, store.Angry, store.Calm}

var emotionKeywords = map[store.Emotion][]string{
	store.Happy:   {"happy", "joyful", "excited", "great", "amazing", "wonderful", "fantastic", "good"},
	store.Sad:     {"sad", "unhappy", "crying", "miserable", "down", "depressed", "hopeless"},
	store.Anxious: {"anxious", "worried", "nervous", "stressed", "scared", "panicked"},
	store.Angry:   {"angry", "mad", "furious", "irritated", "annoyed", "frustrated"},
	store.Calm:    {"calm", "relaxed", "peaceful", "serene", "content"},
}

// Classify returns the emotion whose keywords appear in text, or Neutral when
// none do. Matching is a case-insensitive substring test.
func Classify(text string) store.Emotion {
	lower := strings.ToLower(text)
	for _, emotion := range classificationOrder {
		if containsAny(lower, emotionKeywords[emotion]) {
			return emotion
		}
	}
	return store.Neutral
}

func containsAny(text string, needles []string) bool {
	for _, needle := range needles {
		if strings.Contains(text, needle) {
			return true
		}
	}
	return false
}
