package llm

import (
	"regexp"
	"strings"
)

var (
	thinkRe = regexp.MustCompile(`(?s)<think>.*?</think>`)
	fenceRe = regexp.MustCompile("(?s)```(?:sql|SQL)?\\s*(.*?)```")
)

// StripReasoning removes <think>...</think> blocks that reasoning
// models emit before their answer. An unclosed block swallows
// everything after the opening tag, leaving what came before it.
func StripReasoning(s string) string {
	s = thinkRe.ReplaceAllString(s, "")
	if i := strings.Index(s, "<think>"); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}

// CleanSQL reduces a model response to a single bare SELECT statement:
// reasoning blocks are dropped, code fences unwrapped, everything past
// the first semicolon discarded, and any chatter before the first
// SELECT or WITH cut away.
func CleanSQL(s string) string {
	s = StripReasoning(s)

	if m := fenceRe.FindStringSubmatch(s); m != nil {
		s = m[1]
	}
	s = strings.TrimSpace(s)

	// First statement only. Models sometimes helpfully append a
	// second query after the one asked for.
	if i := strings.Index(s, ";"); i >= 0 {
		s = s[:i]
	}

	upper := strings.ToUpper(s)
	sel := strings.Index(upper, "SELECT")
	with := strings.Index(upper, "WITH")
	switch {
	case with >= 0 && (sel < 0 || with < sel):
		s = s[with:]
	case sel >= 0:
		s = s[sel:]
	}
	return strings.TrimSpace(s)
}
