package display

import (
	"fmt"
	"strings"

	"github.com/muesli/reflow/wordwrap"
)

const DefaultWidth = 80

// NoticePrefix marks system notices sent to players.
const NoticePrefix = "(!) "

// Wrap word-wraps text to DefaultWidth, preserving ANSI escape sequences.
func Wrap(text string) string {
	return wordwrap.String(text, DefaultWidth)
}

// Notice formats a player notice, capitalized and wrapped.
func Notice(format string, args ...any) string {
	msg := strings.TrimSpace(fmt.Sprintf(format, args...))
	if msg == "" {
		return ""
	}
	return Wrap(NoticePrefix + Capitalize(msg))
}

// Capitalize returns s with its first character uppercased.
func Capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
