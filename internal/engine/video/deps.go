// Package video assembles one consolidated digest of a YouTube video from
// several unreliable upstreams: metadata, transcript, channel statistics and comments.
package video

import (
	"context"

	"github.com/anatolykoptev/go_ytdigest/internal/engine"
	"github.com/anatolykoptev/go_ytdigest/internal/engine/sources"
)

// URLParser validates a video URL and returns its canonical ID.
type URLParser interface {
	ParseVideoURL(raw string) (string, error)
}

// FastMetadataFetcher is the cheap metadata lookup keyed by URL.
type FastMetadataFetcher interface {
	BasicInfo(ctx context.Context, videoURL string) (*sources.BasicInfo, error)
}

// Session is a locale-scoped platform client.
type Session interface {
	Info(ctx context.Context, videoID string) (*sources.VideoInfo, error)
	CaptionTracks(ctx context.Context, videoID string) ([]sources.CaptionTrack, error)
	Comments(ctx context.Context, videoID string) (sources.CommentFeed, error)
}

// SessionFactory opens platform sessions.
type SessionFactory interface {
	NewSession(ctx context.Context, locale engine.Locale) (Session, error)
}

// CaptionLookup fetches community captions; lang "" means any language.
type CaptionLookup interface {
	Captions(ctx context.Context, videoID, lang string) ([]sources.Caption, error)
}

// CaptionDocumentFetcher downloads a caption track's timed-text markup.
type CaptionDocumentFetcher interface {
	FetchCaptionDocument(ctx context.Context, trackURL, referer string) (string, error)
}

// DataAPI is the subset of the official Data API the pipeline reads.
type DataAPI interface {
	VideoChannelID(ctx context.Context, videoID string) (string, error)
	Channel(ctx context.Context, channelID string) (*sources.ChannelInfo, error)
	CommentThreads(ctx context.Context, videoID string, max int64) ([]sources.APIComment, error)
}

// InnertubeSessions adapts *sources.Innertube to SessionFactory.
type InnertubeSessions struct {
	Innertube *sources.Innertube
}

func (f InnertubeSessions) NewSession(ctx context.Context, locale engine.Locale) (Session, error) {
	s, err := f.Innertube.NewSession(ctx, locale)
	if err != nil {
		return nil, err
	}
	return s, nil
}
