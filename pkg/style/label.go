package style

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

const statePrefix = "state."

// Label formats a raw node label for display.
//
// Steps and activities have underscores replaced by spaces and every word
// title-cased ("send_email" → "Send Email"). State labels additionally lose a
// leading "state." ("state.order_total" → "Order Total"). Labels of unknown
// types are returned unchanged.
func Label(t NodeType, raw string) string {
	switch t {
	case NodeStep, NodeActivity:
		return titleWords(raw)
	case NodeState:
		return titleWords(strings.TrimPrefix(raw, statePrefix))
	default:
		return raw
	}
}

// titleWords replaces underscores with spaces and title-cases each
// space-separated word. Consecutive separators are kept.
func titleWords(s string) string {
	words := strings.Split(strings.ReplaceAll(s, "_", " "), " ")
	for i, w := range words {
		words[i] = titleWord(w)
	}
	return strings.Join(words, " ")
}

func titleWord(w string) string {
	if w == "" {
		return w
	}
	r, size := utf8.DecodeRuneInString(w)
	return string(unicode.ToUpper(r)) + strings.ToLower(w[size:])
}
