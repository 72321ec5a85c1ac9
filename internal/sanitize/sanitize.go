// Package sanitize turns arbitrary values into bounded, single-line text
// that is safe to write into structured logs.
package sanitize

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	// DefaultMaxLength bounds values logged without a specific limit.
	DefaultMaxLength = 500

	identifierMaxLength = 100
	contentMaxLength    = 200
	feedbackMaxLength   = 150

	ellipsis = "..."
)

// Backslash goes first so the escapes introduced below are not escaped again.
var escaper = strings.NewReplacer(
	`\`, `\\`,
	"\n", `\n`,
	"\r", `\r`,
	"\t", `\t`,
	"\x00", `\0`,
	"\x1b", `\x1b`,
)

var controlChars = regexp.MustCompile("[\x00-\x08\x0b-\x0c\x0e-\x1f]")

// Value renders v as text, escapes line-breaking and terminal control
// characters, drops the remaining ASCII controls and truncates the result to
// maxLength runes. A truncated result ends in "...".
func Value(v any, maxLength int) string {
	s := controlChars.ReplaceAllString(escaper.Replace(text(v)), "")
	return truncate(s, maxLength)
}

// ToolName sanitizes a tool name.
func ToolName(v any) string { return Value(v, identifierMaxLength) }

// Identifier sanitizes short identifiers such as request or session IDs.
func Identifier(v any) string { return Value(v, identifierMaxLength) }

// ThreadID sanitizes a conversation thread ID.
func ThreadID(v any) string { return Value(v, identifierMaxLength) }

// AgentName sanitizes an agent name.
func AgentName(v any) string { return Value(v, identifierMaxLength) }

// UserContent sanitizes user-provided message content.
func UserContent(v any) string { return Value(v, contentMaxLength) }

// Feedback sanitizes a free-text decision returned by a human.
func Feedback(v any) string { return Value(v, feedbackMaxLength) }

var placeholder = regexp.MustCompile(`\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// Message fills {key} placeholders in template with sanitized values.
// Placeholders without a value are kept as written.
func Message(template string, values map[string]any) string {
	return placeholder.ReplaceAllStringFunc(template, func(m string) string {
		key := m[1 : len(m)-1]
		v, ok := values[key]
		if !ok {
			return m
		}
		return Value(v, DefaultMaxLength)
	})
}

func text(v any) string {
	switch value := v.(type) {
	case nil:
		return "None"
	case string:
		return value
	case []byte:
		return string(value)
	default:
		// fmt recovers from panicking String/Error methods on nil receivers.
		return fmt.Sprint(value)
	}
}

func truncate(s string, maxLength int) string {
	if maxLength <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= maxLength {
		return s
	}
	if maxLength <= len(ellipsis) {
		return ellipsis[:maxLength]
	}
	runes := []rune(s)
	return string(runes[:maxLength-len(ellipsis)]) + ellipsis
}
