package video

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/anatolykoptev/go_ytdigest/internal/engine"
	"github.com/anatolykoptev/go_ytdigest/internal/engine/sources"
)

const testID = "dQw4w9WgXcQ"

var errUpstream = errors.New("upstream exploded")

// --- captions ---

type captionResult struct {
	caps []sources.Caption
	err  error
}

type fakeLookup struct {
	mu      sync.Mutex
	results map[string]captionResult
	block   bool
	langs   []string
}

func (f *fakeLookup) Captions(ctx context.Context, _ string, lang string) ([]sources.Caption, error) {
	f.mu.Lock()
	f.langs = append(f.langs, lang)
	r := f.results[lang]
	f.mu.Unlock()
	if f.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return r.caps, r.err
}

func (f *fakeLookup) calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.langs...)
}

// --- transcript sources ---

type fakeSource struct {
	segs  []engine.TranscriptSegment
	err   error
	calls atomic.Int32
}

func (f *fakeSource) Fetch(context.Context, string, string) ([]engine.TranscriptSegment, error) {
	f.calls.Add(1)
	return f.segs, f.err
}

// --- platform sessions ---

type fakeSession struct {
	info      *sources.VideoInfo
	infoErr   error
	tracks    []sources.CaptionTrack
	tracksErr error
	feed      sources.CommentFeed
	feedErr   error
	block     bool // hold CaptionTracks and Comments until ctx is done
}

func (s *fakeSession) Info(context.Context, string) (*sources.VideoInfo, error) {
	return s.info, s.infoErr
}

func (s *fakeSession) CaptionTracks(ctx context.Context, _ string) ([]sources.CaptionTrack, error) {
	if s.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return s.tracks, s.tracksErr
}

func (s *fakeSession) Comments(ctx context.Context, _ string) (sources.CommentFeed, error) {
	if s.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if s.feedErr != nil {
		return nil, s.feedErr
	}
	return s.feed, nil
}

type fakeSessions struct {
	session *fakeSession
	err     error
	mu      sync.Mutex
	locales []engine.Locale
}

func (f *fakeSessions) NewSession(_ context.Context, locale engine.Locale) (Session, error) {
	f.mu.Lock()
	f.locales = append(f.locales, locale)
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return f.session, nil
}

// fakeFeed serves pages in order; loop repeats the last page forever.
type fakeFeed struct {
	pages [][]sources.CommentNode
	idx   int
	loop  bool
	err   error // returned by Next
}

func (f *fakeFeed) Items() []sources.CommentNode { return f.pages[f.idx] }

func (f *fakeFeed) HasNext() bool { return f.loop || f.idx+1 < len(f.pages) }

func (f *fakeFeed) Next(context.Context) (sources.CommentFeed, error) {
	if f.err != nil {
		return nil, f.err
	}
	next := *f
	if next.idx+1 < len(next.pages) {
		next.idx++
	}
	return &next, nil
}

// --- documents ---

type fakeDocs struct {
	doc     string
	err     error
	mu      sync.Mutex
	url     string
	referer string
}

func (f *fakeDocs) FetchCaptionDocument(_ context.Context, trackURL, referer string) (string, error) {
	f.mu.Lock()
	f.url, f.referer = trackURL, referer
	f.mu.Unlock()
	return f.doc, f.err
}

// --- metadata ---

type fakeFast struct {
	info *sources.BasicInfo
	err  error
}

func (f *fakeFast) BasicInfo(context.Context, string) (*sources.BasicInfo, error) {
	return f.info, f.err
}

// --- data api ---

type fakeDataAPI struct {
	channelID  string
	videoErr   error
	channel    *sources.ChannelInfo
	channelErr error
	threads    []sources.APIComment
	threadsErr error
	maxSeen    atomic.Int64
}

func (f *fakeDataAPI) VideoChannelID(context.Context, string) (string, error) {
	return f.channelID, f.videoErr
}

func (f *fakeDataAPI) Channel(context.Context, string) (*sources.ChannelInfo, error) {
	return f.channel, f.channelErr
}

func (f *fakeDataAPI) CommentThreads(_ context.Context, _ string, max int64) ([]sources.APIComment, error) {
	f.maxSeen.Store(max)
	return f.threads, f.threadsErr
}
