package core

import "strings"

// Extend with care: a missed phrase is worse than a false alarm.
var distressPhrases = []string{
	"suicide",
	"kill myself",
	"depressed",
	"hopeless",
	"end it all",
	"can't go on",
	"can’t go on",
}

// IsDistressed reports whether text contains crisis language.
func IsDistressed(text string) bool {
	return containsAny(strings.ToLower(text), distressPhrases)
}
