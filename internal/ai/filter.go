package ai

import "strings"

// StripCJK removes Chinese, Japanese and Korean code points from a fragment.
// Responses must not contain CJK script; free-tier models occasionally leak
// it mid-stream. The filter is idempotent.
func StripCJK(s string) string {
	if !containsCJK(s) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if isCJK(r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func containsCJK(s string) bool {
	for _, r := range s {
		if isCJK(r) {
			return true
		}
	}
	return false
}

func isCJK(r rune) bool {
	switch {
	case r >= 0x4E00 && r <= 0x9FFF: // CJK unified ideographs
		return true
	case r >= 0x3040 && r <= 0x309F: // hiragana
		return true
	case r >= 0x30A0 && r <= 0x30FF: // katakana
		return true
	case r >= 0xAC00 && r <= 0xD7AF: // hangul syllables
		return true
	}
	return false
}

// IsArabic reports whether the text is predominantly Arabic script, used to
// pick the language of user-facing failure messages.
func IsArabic(s string) bool {
	for _, r := range s {
		if r >= 0x0600 && r <= 0x06FF {
			return true
		}
	}
	return false
}
