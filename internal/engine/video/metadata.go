package video

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/anatolykoptev/go_ytdigest/internal/engine"
)

// MetadataFetcher reads video metadata from the watch page and falls back to
// a platform session when the fast path fails.
type MetadataFetcher struct {
	Fast     FastMetadataFetcher
	Sessions SessionFactory
	Locale   engine.Locale
}

// Fetch returns metadata from exactly one of the two paths.
func (m *MetadataFetcher) Fetch(ctx context.Context, videoID, canonicalURL string) (*engine.VideoMetadata, error) {
	info, fastErr := m.Fast.BasicInfo(ctx, canonicalURL)
	if fastErr == nil {
		return &engine.VideoMetadata{
			Title:         info.Title,
			ViewCount:     info.ViewCount,
			PublishDate:   info.PublishDate,
			Author:        info.Author,
			LengthSeconds: engine.ParseDurationToSeconds(info.LengthSeconds),
		}, nil
	}

	engine.IncrMetadataFallbacks()
	slog.Debug("metadata: fast path failed, using session", slog.String("video", videoID), slog.Any("error", fastErr))

	meta, err := m.fromSession(ctx, videoID)
	if err != nil {
		return nil, fmt.Errorf("metadata (fast path: %v): %w", fastErr, err)
	}
	return meta, nil
}

func (m *MetadataFetcher) fromSession(ctx context.Context, videoID string) (*engine.VideoMetadata, error) {
	sess, err := m.Sessions.NewSession(ctx, m.Locale)
	if err != nil {
		return nil, fmt.Errorf("open session: %w", err)
	}
	info, err := sess.Info(ctx, videoID)
	if err != nil {
		return nil, err
	}
	length := info.DurationSeconds
	if length <= 0 {
		length = engine.ParseDurationToSeconds(info.DurationText)
	}
	return &engine.VideoMetadata{
		Title:         info.Title,
		ViewCount:     info.ViewCount,
		PublishDate:   info.Published,
		Author:        info.Author,
		LengthSeconds: length,
	}, nil
}
