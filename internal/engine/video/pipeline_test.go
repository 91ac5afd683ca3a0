package video

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/anatolykoptev/go_ytdigest/internal/engine"
	"github.com/anatolykoptev/go_ytdigest/internal/engine/sources"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testURL = "https://www.youtube.com/watch?v=" + testID

type pipelineFixture struct {
	cfg      engine.Config
	fast     *fakeFast
	sessions *fakeSessions
	captions *fakeSource
	tracks   *fakeSource
	api      *fakeDataAPI
}

func newFixture(t *testing.T) *pipelineFixture {
	t.Helper()
	return &pipelineFixture{
		cfg: engine.Config{YouTubeAPIKey: "test-key", RequireAPIKey: true, ArtifactDir: t.TempDir()},
		fast: &fakeFast{info: &sources.BasicInfo{
			VideoID: testID, Title: "Hello, World! 世界", ViewCount: "1,234", PublishDate: "2020-01-02", Author: "Owner", LengthSeconds: "213",
		}},
		sessions: &fakeSessions{session: &fakeSession{feed: &fakeFeed{pages: [][]sources.CommentNode{
			{thread("@alice", "nice", "1.2K")},
		}}}},
		captions: &fakeSource{segs: []engine.TranscriptSegment{{Start: 0, Text: "intro"}, {Start: 65.5, Text: "later"}}},
		tracks:   &fakeSource{},
		api: &fakeDataAPI{
			channelID: "UC123",
			channel:   &sources.ChannelInfo{ID: "UC123", SubscriberCount: "4200", PublishedAt: "2010-05-06T07:08:09Z"},
		},
	}
}

func (f *pipelineFixture) pipeline() *Pipeline {
	var api DataAPI
	if f.api != nil {
		api = f.api
	}
	return New(f.cfg, Deps{
		URLs:        sources.URLParser{},
		Metadata:    &MetadataFetcher{Fast: f.fast, Sessions: f.sessions},
		Transcripts: &Transcripts{Captions: f.captions, Tracks: f.tracks},
		Channels:    &ChannelEnricher{API: api},
		Comments:    &CommentCollector{Sessions: f.sessions, API: api, Max: 500, MaxAPI: 100, Timeout: time.Second},
	})
}

func writeArtifact(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o600))
	return path
}

func TestPipelineRunSuccess(t *testing.T) {
	f := newFixture(t)
	stray := writeArtifact(t, f.cfg.ArtifactDir, "1700000000-player-script.js")
	keep := writeArtifact(t, f.cfg.ArtifactDir, "notes.txt")

	out, err := f.pipeline().Run(context.Background(), engine.Request{URL: testURL, ExtractComments: true})
	require.NoError(t, err)

	assert.Equal(t, "Hello_ World_ 世界.json", out.Filename)
	doc := out.Document
	assert.Equal(t, testID, doc.VideoID)
	assert.Equal(t, testURL, doc.URL)
	assert.Equal(t, "Hello, World! 世界", doc.Title)
	assert.Equal(t, "Owner", doc.ChannelName)
	assert.Equal(t, "UC123", doc.ChannelID)
	assert.EqualValues(t, 4200, doc.Subscribers)
	assert.Equal(t, "2010-05-06T07:08:09Z", doc.ChannelCreatedAt)
	assert.Equal(t, "2020-01-02", doc.PublishedAt)
	assert.EqualValues(t, 1234, doc.Views)
	assert.Equal(t, "PT3M33S", doc.Duration)
	assert.Equal(t, []engine.TimedLine{{Time: "00:00", Text: "intro"}, {Time: "01:05", Text: "later"}}, doc.Transcript)
	assert.Equal(t, []engine.Comment{{Author: "@alice", Text: "nice", Likes: 12}}, doc.Comments)
	assert.EqualValues(t, 0, f.tracks.calls.Load())

	assert.NoFileExists(t, stray)
	assert.FileExists(t, keep)
}

func TestPipelineSkipsCommentsUnlessRequested(t *testing.T) {
	f := newFixture(t)
	out, err := f.pipeline().Run(context.Background(), engine.Request{URL: testURL})
	require.NoError(t, err)
	require.NotNil(t, out.Document.Comments)
	assert.Empty(t, out.Document.Comments)
}

func TestPipelineDegradesOptionalData(t *testing.T) {
	f := newFixture(t)
	f.api = &fakeDataAPI{videoErr: errUpstream, threadsErr: errUpstream}
	f.sessions.session.feedErr = errUpstream
	f.fast.info.LengthSeconds = ""
	f.fast.info.Title = ""
	f.captions = &fakeSource{err: errUpstream}
	f.tracks = &fakeSource{segs: []engine.TranscriptSegment{{Start: 5.2, Text: "hi"}}}

	out, err := f.pipeline().Run(context.Background(), engine.Request{URL: "https://youtu.be/" + testID, ExtractComments: true})
	require.NoError(t, err)
	doc := out.Document
	assert.Empty(t, doc.ChannelID)
	assert.Zero(t, doc.Subscribers)
	assert.Empty(t, doc.ChannelCreatedAt)
	assert.Empty(t, doc.Duration)
	assert.Empty(t, doc.Comments)
	assert.Equal(t, []engine.TimedLine{{Time: "00:05", Text: "hi"}}, doc.Transcript)
	assert.Equal(t, "video_"+testID+".json", out.Filename)
}

func TestPipelineWithoutDataAPI(t *testing.T) {
	f := newFixture(t)
	f.cfg.YouTubeAPIKey = ""
	f.cfg.RequireAPIKey = false
	f.api = nil

	out, err := f.pipeline().Run(context.Background(), engine.Request{URL: testURL})
	require.NoError(t, err)
	assert.Empty(t, out.Document.ChannelID)
	assert.NotEmpty(t, out.Document.Transcript)
}

func TestPipelineErrors(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		setup   func(f *pipelineFixture)
		kind    engine.Kind
		message string
	}{
		{
			name:    "missing api key",
			url:     testURL,
			setup:   func(f *pipelineFixture) { f.cfg.YouTubeAPIKey = "" },
			kind:    engine.KindConfiguration,
			message: "API key is not configured",
		},
		{name: "empty url", url: "", kind: engine.KindInvalidInput, message: "Invalid YouTube URL"},
		{name: "foreign host", url: "https://example.com/watch?v=" + testID, kind: engine.KindInvalidInput, message: "Invalid YouTube URL"},
		{
			name: "no transcript",
			url:  testURL,
			setup: func(f *pipelineFixture) {
				f.captions = &fakeSource{}
				f.tracks = &fakeSource{err: errUpstream}
			},
			kind:    engine.KindNoTranscript,
			message: "Could not retrieve transcript",
		},
		{
			name: "metadata unavailable",
			url:  testURL,
			setup: func(f *pipelineFixture) {
				f.fast.err = errUpstream
				f.sessions.session.infoErr = errUpstream
			},
			kind:    engine.KindInternal,
			message: "Failed to process video",
		},
		{
			name: "metadata timeout",
			url:  testURL,
			setup: func(f *pipelineFixture) {
				f.fast.err = errUpstream
				f.sessions.session.infoErr = engine.NewError(engine.KindTimeout, "player", engine.ErrTimeout)
			},
			kind:    engine.KindTimeout,
			message: "Request timed out",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			if tt.setup != nil {
				tt.setup(f)
			}
			stray := writeArtifact(t, f.cfg.ArtifactDir, "a-player-script.js")

			out, err := f.pipeline().Run(context.Background(), engine.Request{URL: tt.url, ExtractComments: true})
			require.Error(t, err)
			assert.Nil(t, out)
			assert.Equal(t, tt.kind, engine.KindOf(err))
			assert.Equal(t, tt.message, engine.Classify(err).Message)
			assert.NotContains(t, engine.Classify(err).Message, errUpstream.Error())
			assert.NoFileExists(t, stray, "sweep runs on failure too")
		})
	}
}

func TestPipelineConfigCheckedFirst(t *testing.T) {
	f := newFixture(t)
	f.cfg.YouTubeAPIKey = ""

	_, err := f.pipeline().Run(context.Background(), engine.Request{URL: "not a url"})
	assert.ErrorIs(t, err, engine.ErrNotConfigured)
	assert.EqualValues(t, 0, f.captions.calls.Load())
}

func TestPipelineNoTranscriptWrapsSentinel(t *testing.T) {
	f := newFixture(t)
	f.captions = &fakeSource{}

	_, err := f.pipeline().Run(context.Background(), engine.Request{URL: testURL})
	assert.ErrorIs(t, err, engine.ErrNoTranscript)
	assert.True(t, engine.Classify(err).Retryable)
	assert.EqualValues(t, 1, f.tracks.calls.Load())
}

func TestPipelineCancelledContext(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.pipeline().Run(ctx, engine.Request{URL: testURL})
	assert.Error(t, err)
}

func TestSuggestedFilename(t *testing.T) {
	assert.Equal(t, "Hello_ World_ 世界.json", SuggestedFilename("Hello, World! 世界", testID))
	assert.Equal(t, "video_"+testID+".json", SuggestedFilename("", testID))
	assert.Equal(t, "__.json", SuggestedFilename("?!", testID))
}
