package sources

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/anatolykoptev/go_ytdigest/internal/engine"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"
)

// DataAPI wraps the official YouTube Data API v3. Every call waits on the
// shared rate limiter and goes through the circuit breaker.
type DataAPI struct {
	service *youtube.Service
	guard   *engine.Guard
}

// ChannelInfo is the channel snippet+statistics subset used for enrichment.
// SubscriberCount keeps the API's decimal string form.
type ChannelInfo struct {
	ID              string
	Title           string
	SubscriberCount string
	PublishedAt     string
}

// APIComment is one top-level comment from commentThreads.list.
type APIComment struct {
	Author       string
	TextDisplay  string
	TextOriginal string
	LikeCount    int64
}

// NewDataAPI creates a Data API client authenticated with apiKey.
// Extra options (e.g. option.WithEndpoint) are appended after the key.
func NewDataAPI(ctx context.Context, apiKey string, rps float64, opts ...option.ClientOption) (*DataAPI, error) {
	if apiKey == "" {
		return nil, errors.New("api key required")
	}
	all := append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)
	service, err := youtube.NewService(ctx, all...)
	if err != nil {
		return nil, fmt.Errorf("create youtube service: %w", err)
	}
	return &DataAPI{
		service: service,
		guard:   engine.NewGuard("youtube-data-api", rps),
	}, nil
}

// VideoChannelID returns the channel ID of a video, or "" when the video is unknown.
func (d *DataAPI) VideoChannelID(ctx context.Context, videoID string) (string, error) {
	return engine.Do(ctx, d.guard, func() (string, error) {
		engine.IncrDataAPIRequests()
		resp, err := d.service.Videos.List([]string{"snippet"}).Id(videoID).Context(ctx).Do()
		if err != nil {
			return "", fmt.Errorf("videos.list: %w", err)
		}
		if len(resp.Items) == 0 || resp.Items[0].Snippet == nil {
			return "", nil
		}
		return resp.Items[0].Snippet.ChannelId, nil
	})
}

// Channel returns channel snippet and statistics, or nil when the channel is unknown.
func (d *DataAPI) Channel(ctx context.Context, channelID string) (*ChannelInfo, error) {
	return engine.Do(ctx, d.guard, func() (*ChannelInfo, error) {
		engine.IncrDataAPIRequests()
		resp, err := d.service.Channels.List([]string{"snippet", "statistics"}).Id(channelID).Context(ctx).Do()
		if err != nil {
			return nil, fmt.Errorf("channels.list: %w", err)
		}
		if len(resp.Items) == 0 {
			return nil, nil
		}
		ch := resp.Items[0]
		info := &ChannelInfo{ID: ch.Id}
		if ch.Snippet != nil {
			info.Title = ch.Snippet.Title
			info.PublishedAt = ch.Snippet.PublishedAt
		}
		if ch.Statistics != nil {
			info.SubscriberCount = strconv.FormatUint(ch.Statistics.SubscriberCount, 10)
		}
		return info, nil
	})
}

// CommentThreads returns one page of up to max top-level comments, newest first.
func (d *DataAPI) CommentThreads(ctx context.Context, videoID string, max int64) ([]APIComment, error) {
	return engine.Do(ctx, d.guard, func() ([]APIComment, error) {
		engine.IncrDataAPIRequests()
		resp, err := d.service.CommentThreads.List([]string{"snippet"}).
			VideoId(videoID).
			MaxResults(max).
			Order("time").
			Context(ctx).
			Do()
		if err != nil {
			return nil, fmt.Errorf("commentThreads.list: %w", err)
		}
		out := make([]APIComment, 0, len(resp.Items))
		for _, item := range resp.Items {
			if item.Snippet == nil || item.Snippet.TopLevelComment == nil || item.Snippet.TopLevelComment.Snippet == nil {
				continue
			}
			s := item.Snippet.TopLevelComment.Snippet
			out = append(out, APIComment{
				Author:       s.AuthorDisplayName,
				TextDisplay:  s.TextDisplay,
				TextOriginal: s.TextOriginal,
				LikeCount:    s.LikeCount,
			})
		}
		return out, nil
	})
}
