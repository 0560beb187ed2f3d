package logger

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Length limits applied before values reach the log
const (
	MaxPathLength          = 500
	MaxIdentifierLength    = 128 // dates are 10 chars, UUIDs 36
	MaxNotePreviewLength   = 80
	MaxErrorMessageLength  = 1000
	MaxGeneralStringLength = 2000
	MaxDebugContentLength  = 10000 // advisor prompts and responses
)

// SanitizeString makes s safe to log: invalid UTF-8 and control characters other
// than whitespace are dropped and the result is cut at maxLength bytes, on a rune
// boundary, with "..." appended. A non-positive maxLength uses MaxGeneralStringLength.
func SanitizeString(s string, maxLength int) string {
	if s == "" {
		return ""
	}
	if maxLength <= 0 {
		maxLength = MaxGeneralStringLength
	}

	s = strings.Map(func(r rune) rune {
		if r == utf8.RuneError || (!unicode.IsPrint(r) && !isLogWhitespace(r)) {
			return -1
		}
		return r
	}, strings.ToValidUTF8(s, ""))

	if len(s) <= maxLength {
		return s
	}
	cut := maxLength
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}

func isLogWhitespace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r'
}

// SanitizePath sanitizes a request path
func SanitizePath(path string) string { return SanitizeString(path, MaxPathLength) }

// SanitizeError sanitizes an error message. A nil error is the empty string.
func SanitizeError(err error) string {
	if err == nil {
		return ""
	}
	return SanitizeString(err.Error(), MaxErrorMessageLength)
}

// SanitizeIdentifier sanitizes a client supplied identifier (date, medication id, rate limit key)
func SanitizeIdentifier(id string) string { return SanitizeString(id, MaxIdentifierLength) }

// SanitizeNote keeps a short preview of journal text. Notes are private.
func SanitizeNote(note string) string { return SanitizeString(note, MaxNotePreviewLength) }

// SanitizeDebugContent sanitizes advisor prompts and responses logged in debug mode
func SanitizeDebugContent(content string) string {
	return SanitizeString(content, MaxDebugContentLength)
}
