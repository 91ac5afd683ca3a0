package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/anatolykoptev/go_ytdigest/internal/engine"
	"github.com/anatolykoptev/go_ytdigest/internal/toolutil"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRunner struct {
	out *engine.DigestOutput
	err error
	got engine.Request
}

func (s *stubRunner) Run(_ context.Context, req engine.Request) (*engine.DigestOutput, error) {
	s.got = req
	return s.out, s.err
}

func withRunner(t *testing.T, r toolutil.Runner) {
	t.Helper()
	prev := runnerFactory
	runnerFactory = func(*cobra.Command) (toolutil.Runner, error) { return r, nil }
	t.Cleanup(func() { runnerFactory = prev })
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func digest() *engine.DigestOutput {
	return &engine.DigestOutput{
		Filename: "Hello_ World_ 世界.json",
		Document: engine.ResultDocument{
			VideoID:    "dQw4w9WgXcQ",
			Title:      "Hello, World! 世界",
			Transcript: []engine.TimedLine{{Time: "00:05", Text: "hi"}},
		},
	}
}

func TestExtractToStdout(t *testing.T) {
	runner := &stubRunner{out: digest()}
	withRunner(t, runner)

	out, err := execute(t, "extract", "--comments", "https://youtu.be/dQw4w9WgXcQ")
	require.NoError(t, err)
	assert.Equal(t, engine.Request{URL: "https://youtu.be/dQw4w9WgXcQ", ExtractComments: true}, runner.got)

	var doc engine.ResultDocument
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Equal(t, "dQw4w9WgXcQ", doc.VideoID)
	assert.NotNil(t, doc.Comments)
}

func TestExtractToDirectory(t *testing.T) {
	withRunner(t, &stubRunner{out: digest()})
	dir := filepath.Join(t.TempDir(), "notes")

	out, err := execute(t, "extract", "-o", dir, "https://youtu.be/dQw4w9WgXcQ")
	require.NoError(t, err)

	path := filepath.Join(dir, "Hello_ World_ 世界.json")
	assert.Equal(t, path+"\n", out)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"title": "Hello, World! 世界"`)
}

func TestExtractErrors(t *testing.T) {
	withRunner(t, &stubRunner{err: engine.NewError(engine.KindNoTranscript, "transcript", engine.ErrNoTranscript)})
	_, err := execute(t, "extract", "https://youtu.be/dQw4w9WgXcQ")
	require.Error(t, err)
	assert.Equal(t, "Could not retrieve transcript (retryable)", err.Error())

	withRunner(t, &stubRunner{err: engine.NewError(engine.KindInvalidInput, "validate", engine.ErrInvalidInput)})
	_, err = execute(t, "extract", "nope")
	require.Error(t, err)
	assert.Equal(t, "Invalid YouTube URL", err.Error())
}

func TestExtractRequiresURL(t *testing.T) {
	withRunner(t, &stubRunner{out: digest()})
	_, err := execute(t, "extract")
	assert.Error(t, err)
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, version+"\n", out)
}
