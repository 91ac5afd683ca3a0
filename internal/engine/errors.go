package engine

import (
	"context"
	"errors"
	"net/http"
	"strings"
)

// Kind classifies a pipeline failure for the caller.
type Kind int

const (
	KindInternal Kind = iota
	KindConfiguration
	KindInvalidInput
	KindNoTranscript
	KindTimeout
)

func (k Kind) String() string {
	switch k {
	case KindConfiguration:
		return "ConfigurationError"
	case KindInvalidInput:
		return "InvalidInput"
	case KindNoTranscript:
		return "NoTranscript"
	case KindTimeout:
		return "Timeout"
	default:
		return "Internal"
	}
}

// Sentinel errors, one per non-internal kind. Match with errors.Is.
var (
	ErrNotConfigured = errors.New("api key is not configured")
	ErrInvalidInput  = errors.New("invalid youtube url")
	ErrNoTranscript  = errors.New("no transcript available")
	ErrTimeout       = errors.New("operation timed out")
)

// Error is a classified pipeline failure. Err keeps the raw cause for logs.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is lets errors.Is match an *Error against the sentinel of its kind.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrNotConfigured:
		return e.Kind == KindConfiguration
	case ErrInvalidInput:
		return e.Kind == KindInvalidInput
	case ErrNoTranscript:
		return e.Kind == KindNoTranscript
	case ErrTimeout:
		return e.Kind == KindTimeout
	}
	return false
}

// NewError builds a classified error.
func NewError(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// KindOf reports the kind of err. Unclassified errors whose message contains
// "timed out", or that wrap context.DeadlineExceeded, count as timeouts.
func KindOf(err error) Kind {
	if err == nil {
		return KindInternal
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	switch {
	case errors.Is(err, ErrNotConfigured):
		return KindConfiguration
	case errors.Is(err, ErrInvalidInput):
		return KindInvalidInput
	case errors.Is(err, ErrNoTranscript):
		return KindNoTranscript
	case errors.Is(err, ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return KindTimeout
	}
	if strings.Contains(strings.ToLower(err.Error()), "timed out") {
		return KindTimeout
	}
	return KindInternal
}

// Classification is the user-facing rendering of a failure.
type Classification struct {
	Message   string
	Retryable bool
	Status    int
}

// Classify maps err to a fixed-vocabulary message, a retryable flag and an HTTP status.
// The raw error text never leaks into the message.
func Classify(err error) Classification {
	switch KindOf(err) {
	case KindConfiguration:
		return Classification{"API key is not configured", false, http.StatusInternalServerError}
	case KindInvalidInput:
		return Classification{"Invalid YouTube URL", false, http.StatusBadRequest}
	case KindNoTranscript:
		return Classification{"Could not retrieve transcript", true, http.StatusInternalServerError}
	case KindTimeout:
		return Classification{"Request timed out", true, http.StatusInternalServerError}
	default:
		return Classification{"Failed to process video", false, http.StatusInternalServerError}
	}
}
