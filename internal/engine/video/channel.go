package video

import (
	"context"
	"log/slog"

	"github.com/anatolykoptev/go_ytdigest/internal/engine"
)

// ChannelEnricher looks up the publishing channel's statistics.
// A nil API disables enrichment.
type ChannelEnricher struct {
	API DataAPI
}

// Fetch returns nil whenever any step fails or finds nothing. It never
// returns partial data.
func (c *ChannelEnricher) Fetch(ctx context.Context, videoID string) *engine.ChannelEnrichment {
	if c == nil || c.API == nil {
		return nil
	}
	out := c.fetch(ctx, videoID)
	engine.IncrEnrichment(out != nil)
	return out
}

func (c *ChannelEnricher) fetch(ctx context.Context, videoID string) *engine.ChannelEnrichment {
	channelID, err := c.API.VideoChannelID(ctx, videoID)
	if err != nil {
		slog.Warn("enrichment: video lookup failed", slog.String("video", videoID), slog.Any("error", err))
		return nil
	}
	if channelID == "" {
		return nil
	}

	ch, err := c.API.Channel(ctx, channelID)
	if err != nil {
		slog.Warn("enrichment: channel lookup failed", slog.String("channel", channelID), slog.Any("error", err))
		return nil
	}
	if ch == nil {
		return nil
	}

	return &engine.ChannelEnrichment{
		ChannelID:   channelID,
		Subscribers: engine.ParseCount(ch.SubscriberCount),
		CreatedAt:   ch.PublishedAt,
	}
}
