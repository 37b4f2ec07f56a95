package validators

import (
	"strings"
	"unicode"
)

// SanitizeString trims input, drops control characters and caps it at maxLen
// runes. A maxLen of zero or less leaves the length alone.
func SanitizeString(input string, maxLen int) string {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, strings.TrimSpace(input))

	if maxLen <= 0 {
		return cleaned
	}
	count := 0
	for i := range cleaned {
		if count == maxLen {
			return strings.TrimSpace(cleaned[:i])
		}
		count++
	}
	return cleaned
}
