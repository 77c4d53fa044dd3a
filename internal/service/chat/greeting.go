package chat

import (
	"strings"
)

// GreetingReply is returned for a bare greeting without calling the model.
const GreetingReply = "Merhaba! Ben Lokman, sağlık asistanınız. Size bugün nasıl yardımcı olabilirim?"

var greetings = []string{
	"merhaba", "selam", "selamlar", "hello", "hi", "hey",
	"günaydın", "iyi günler", "iyi akşamlar",
}

// IsGreeting reports whether msg is, or starts with, a greeting token
// followed by a space or an exclamation mark.
func IsGreeting(msg string) bool {
	m := lower(strings.TrimSpace(msg))
	for _, g := range greetings {
		if m == g || strings.HasPrefix(m, g+" ") || strings.HasPrefix(m, g+"!") {
			return true
		}
	}
	return false
}

// lower folds dotted capital I to a plain i before lower-casing, so
// Turkish keywords still match.
func lower(s string) string {
	return strings.ToLower(strings.ReplaceAll(s, "İ", "i"))
}

// KeyValid rejects empty, short and placeholder credentials.
func KeyValid(key string) bool {
	return len(key) >= 20 && !strings.Contains(key, "your_")
}
