package logger

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	// MaxPathLength bounds URL paths in logs
	MaxPathLength = 500
	// MaxErrorMessageLength bounds error text and panic values in logs
	MaxErrorMessageLength = 1000
	// MaxGeneralStringLength is the default bound for SanitizeString
	MaxGeneralStringLength = 2000
)

// SanitizePath prepares a URL path for a single log line. Line breaks are
// dropped along with other control characters.
func SanitizePath(path string) string {
	return truncate(filterRunes(path, false), MaxPathLength)
}

// SanitizeString removes control characters other than whitespace and
// bounds s to maxLength bytes. A non-positive maxLength uses MaxGeneralStringLength.
func SanitizeString(s string, maxLength int) string {
	if maxLength <= 0 {
		maxLength = MaxGeneralStringLength
	}
	return truncate(filterRunes(s, true), maxLength)
}

// SanitizeError renders err for logging
func SanitizeError(err error) string {
	if err == nil {
		return ""
	}
	return SanitizeString(err.Error(), MaxErrorMessageLength)
}

func filterRunes(s string, keepBreaks bool) string {
	if s == "" {
		return ""
	}
	if !utf8.ValidString(s) {
		s = strings.ToValidUTF8(s, "")
	}
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case unicode.IsPrint(r), r == ' ', r == '\t':
			b.WriteRune(r)
		case keepBreaks && (r == '\n' || r == '\r'):
			b.WriteRune(r)
		}
	}
	return b.String()
}

// truncate cuts s to at most n bytes on a rune boundary
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	cut := n
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
