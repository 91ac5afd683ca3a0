package engine

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		message   string
		retryable bool
		status    int
	}{
		{"config", NewError(KindConfiguration, "config", ErrNotConfigured), "API key is not configured", false, http.StatusInternalServerError},
		{"invalid", NewError(KindInvalidInput, "validate", errors.New("bad host")), "Invalid YouTube URL", false, http.StatusBadRequest},
		{"wrapped sentinel", fmt.Errorf("parse: %w", ErrInvalidInput), "Invalid YouTube URL", false, http.StatusBadRequest},
		{"no transcript", NewError(KindNoTranscript, "transcript", ErrNoTranscript), "Could not retrieve transcript", true, http.StatusInternalServerError},
		{"timeout kind", NewError(KindTimeout, "captions", ErrTimeout), "Request timed out", true, http.StatusInternalServerError},
		{"deadline", fmt.Errorf("fetch: %w", context.DeadlineExceeded), "Request timed out", true, http.StatusInternalServerError},
		{"timed out text", errors.New("upstream timed out while reading"), "Request timed out", true, http.StatusInternalServerError},
		{"internal", errors.New("unexpected json shape"), "Failed to process video", false, http.StatusInternalServerError},
		{"nil", nil, "Failed to process video", false, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Classify(tt.err)
			assert.Equal(t, tt.message, c.Message)
			assert.Equal(t, tt.retryable, c.Retryable)
			assert.Equal(t, tt.status, c.Status)
		})
	}
}

func TestErrorIsAndUnwrap(t *testing.T) {
	cause := errors.New("socket closed")
	err := fmt.Errorf("run: %w", NewError(KindTimeout, "comments", cause))

	assert.ErrorIs(t, err, ErrTimeout)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, ErrInvalidInput)
	assert.Equal(t, KindTimeout, KindOf(err))
	assert.Contains(t, err.Error(), "comments: Timeout: socket closed")
}

func TestClassifyDoesNotLeakUpstreamText(t *testing.T) {
	c := Classify(errors.New("HTTP 403: <html>quota exceeded for key AIza...</html>"))
	assert.NotContains(t, c.Message, "quota")
	assert.NotContains(t, c.Message, "AIza")
}
