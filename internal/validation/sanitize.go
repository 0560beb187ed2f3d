package validation

import (
	"regexp"
	"strings"
	"unicode"
)

// scriptBlock matches a script element and its body, non-greedy and case-insensitive
var scriptBlock = regexp.MustCompile(`(?is)<script\b.*?</script\s*>`)

// SanitizeInput strips script blocks from free text and trims surrounding whitespace.
// Applying it twice yields the same result as applying it once.
func SanitizeInput(text string) string {
	for {
		stripped := scriptBlock.ReplaceAllString(text, "")
		if stripped == text {
			break
		}
		text = stripped
	}
	return strings.TrimSpace(text)
}

// SanitizeValue sanitizes strings and passes every other value, including nil, through unchanged
func SanitizeValue(v any) any {
	switch s := v.(type) {
	case string:
		return SanitizeInput(s)
	case *string:
		if s == nil {
			return s
		}
		out := SanitizeInput(*s)
		return &out
	default:
		return v
	}
}

// SanitizeText sanitizes single-line input by trimming whitespace and removing control characters
func SanitizeText(text string) string {
	text = strings.TrimSpace(text)

	// Remove control characters except newline and tab
	var sanitized strings.Builder
	for _, r := range text {
		if unicode.IsControl(r) && r != '\n' && r != '\t' {
			continue
		}
		sanitized.WriteRune(r)
	}

	return sanitized.String()
}
