package savedb

import (
	"errors"
	"strings"
)

// ErrorKind buckets execution failures for logging and for the error
// context handed back to the SQL generator on a retry.
type ErrorKind string

const (
	KindNotSelect ErrorKind = "not-select" // write verb or non-SELECT
	KindSyntax    ErrorKind = "syntax"     // malformed SQL
	KindSchema    ErrorKind = "schema"     // unknown table or column
	KindLocked    ErrorKind = "locked"     // file lock / transient I/O
	KindOther     ErrorKind = "other"
)

// Classify buckets a query error. All kinds are retryable from the
// router's point of view (regeneration may fix the statement, a lock may
// clear); the kind only shapes the retry prompt and the logs.
func Classify(err error) ErrorKind {
	if err == nil {
		return KindOther
	}
	if errors.Is(err, ErrNotSelect) {
		return KindNotSelect
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "syntax error"):
		return KindSyntax
	case strings.Contains(msg, "no such table"), strings.Contains(msg, "no such column"),
		strings.Contains(msg, "no such function"), strings.Contains(msg, "ambiguous column"):
		return KindSchema
	case strings.Contains(msg, "database is locked"), strings.Contains(msg, "unable to open"),
		strings.Contains(msg, "disk i/o"):
		return KindLocked
	default:
		return KindOther
	}
}
