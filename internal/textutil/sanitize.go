package textutil

import (
	"strings"
	"unicode/utf8"
)

// maxFileNameLength caps sanitized titles so channel/date/title paths stay
// well inside common filesystem limits.
const maxFileNameLength = 200

// fallbackFileName is used when sanitization removes every character.
const fallbackFileName = "untitled"

func isIllegalFileNameRune(r rune) bool {
	if r < 0x20 || r == 0x7f {
		return true
	}
	switch r {
	case '<', '>', ':', '"', '/', '\\', '|', '?', '*':
		return true
	}
	return false
}

// SanitizeFileName strips characters that are illegal in path components
// along with control characters, caps the length, and trims leading/trailing
// whitespace and dots. Returns "untitled" when nothing survives.
func SanitizeFileName(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		if isIllegalFileNameRune(r) {
			continue
		}
		b.WriteRune(r)
	}

	cleaned := b.String()
	// Cap counts runes, not bytes, so multi-byte titles are never cut
	// mid-character.
	if utf8.RuneCountInString(cleaned) > maxFileNameLength {
		runes := []rune(cleaned)
		cleaned = string(runes[:maxFileNameLength])
	}
	cleaned = strings.Trim(cleaned, " .")
	if cleaned == "" {
		return fallbackFileName
	}
	return cleaned
}

// SanitizeToken converts a string to a lowercase slug suitable for channel
// names. Letters are lowercased, digits and hyphens are kept, runs of
// everything else collapse to a single hyphen. Returns "unknown" for input
// that yields nothing.
func SanitizeToken(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return "unknown"
	}
	var b strings.Builder
	lastHyphen := false
	for _, r := range value {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		case r >= 'A' && r <= 'Z':
			b.WriteRune(r + ('a' - 'A'))
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	out := strings.Trim(b.String(), "-")
	if len(out) > 50 {
		out = strings.Trim(out[:50], "-")
	}
	if out == "" {
		return "unknown"
	}
	return out
}
