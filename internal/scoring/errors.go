// Package scoring implements the live, ball-by-ball cricket scoring engine.
// A MatchSession owns two innings and is mutated only through Service
// operations, which the Registry serializes per match identifier.
package scoring

import (
	"errors"
	"fmt"
)

// Kind classifies engine failures so that transport layers can translate
// them without inspecting messages.
type Kind string

const (
	// KindNotFound covers unknown match identifiers and unknown batsman or
	// bowler ids inside the active innings.
	KindNotFound Kind = "NOT_FOUND"
	// KindInvalidOperation covers malformed input and operations that the
	// current state cannot accept (undo on an empty log, unknown status).
	KindInvalidOperation Kind = "INVALID_OPERATION"
	// KindPreconditionFailed covers operations that need a striker or a
	// bowler when none is set.
	KindPreconditionFailed Kind = "PRECONDITION_FAILED"
)

// Sentinel values usable with errors.Is.
var (
	ErrNotFound           = errors.New("not found")
	ErrInvalidOperation   = errors.New("invalid operation")
	ErrPreconditionFailed = errors.New("precondition failed")
)

// Error is the structured failure returned by every engine operation.
type Error struct {
	Kind Kind
	Op   string
	Msg  string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Msg)
}

// Is lets errors.Is match an *Error against the kind sentinels.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.Kind == KindNotFound
	case ErrInvalidOperation:
		return e.Kind == KindInvalidOperation
	case ErrPreconditionFailed:
		return e.Kind == KindPreconditionFailed
	}
	return false
}

func notFound(op, format string, args ...any) error {
	return &Error{Kind: KindNotFound, Op: op, Msg: fmt.Sprintf(format, args...)}
}

func invalid(op, format string, args ...any) error {
	return &Error{Kind: KindInvalidOperation, Op: op, Msg: fmt.Sprintf(format, args...)}
}

func precondition(op, format string, args ...any) error {
	return &Error{Kind: KindPreconditionFailed, Op: op, Msg: fmt.Sprintf(format, args...)}
}

// KindOf reports the Kind of err, or "" when err is not an engine error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
