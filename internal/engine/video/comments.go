package video

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/anatolykoptev/go_ytdigest/internal/engine"
	"github.com/anatolykoptev/go_ytdigest/internal/engine/sources"
)

const unknownAuthor = "Unknown"

// CommentCollector enumerates the platform comment feed and falls back to
// one page of the Data API. It never fails.
type CommentCollector struct {
	Sessions SessionFactory
	Locale   engine.Locale
	API      DataAPI // nil disables the fallback
	Max      int
	MaxAPI   int64
	Timeout  time.Duration
}

// Collect returns a normalized, possibly empty comment list.
func (c *CommentCollector) Collect(ctx context.Context, videoID string) []engine.Comment {
	engine.IncrCommentRequests()

	comments, err := c.feed(ctx, videoID)
	primary := Evaluate(comments, err)
	if primary.OK() {
		return primary.Items
	}
	if primary.Kind == OutcomeFailed {
		countTimeout(primary.Err)
		slog.Debug("comments: feed failed", slog.String("video", videoID), slog.Any("error", primary.Err))
	}

	if c.API == nil {
		return []engine.Comment{}
	}
	engine.IncrCommentAPIFallbacks()
	comments, err = c.dataAPI(ctx, videoID)
	if err != nil {
		slog.Warn("comments: data api fallback failed", slog.String("video", videoID), slog.Any("error", err))
		return []engine.Comment{}
	}
	return comments
}

func (c *CommentCollector) feed(ctx context.Context, videoID string) ([]engine.Comment, error) {
	return engine.WithTimeout(ctx, c.Timeout, "comments", func(ctx context.Context) ([]engine.Comment, error) {
		sess, err := c.Sessions.NewSession(ctx, c.Locale)
		if err != nil {
			return nil, fmt.Errorf("open session: %w", err)
		}
		feed, err := sess.Comments(ctx, videoID)
		if err != nil {
			if errors.Is(err, sources.ErrNoComments) {
				return nil, nil
			}
			return nil, err
		}

		var out []engine.Comment
		for {
			for _, node := range feed.Items() {
				cm, ok := normalizeNode(node)
				if !ok {
					continue
				}
				out = append(out, cm)
				if c.Max > 0 && len(out) >= c.Max {
					return out, nil
				}
			}
			if !feed.HasNext() {
				return out, nil
			}
			feed, err = feed.Next(ctx)
			if err != nil {
				if len(out) > 0 {
					slog.Debug("comments: stopping at page error", slog.Int("collected", len(out)), slog.Any("error", err))
					return out, nil
				}
				return nil, err
			}
		}
	})
}

// normalizeNode accepts single comments and threads (unwrapped to their
// top-level comment). Other kinds and empty texts are skipped.
func normalizeNode(node sources.CommentNode) (engine.Comment, bool) {
	switch node.Kind {
	case sources.KindComment:
	case sources.KindCommentThread:
		if node.Comment == nil {
			return engine.Comment{}, false
		}
		node = *node.Comment
	default:
		return engine.Comment{}, false
	}
	return newComment(node.Author, node.Text, engine.ParseCount(node.Likes))
}

func (c *CommentCollector) dataAPI(ctx context.Context, videoID string) ([]engine.Comment, error) {
	threads, err := c.API.CommentThreads(ctx, videoID, c.MaxAPI)
	if err != nil {
		return nil, err
	}
	out := make([]engine.Comment, 0, len(threads))
	for _, t := range threads {
		text := displayText(t.TextDisplay)
		if text == "" {
			text = t.TextOriginal
		}
		if cm, ok := newComment(t.Author, text, t.LikeCount); ok {
			out = append(out, cm)
		}
	}
	return out, nil
}

// displayText turns the API's HTML display text into markdown.
func displayText(s string) string {
	if s == "" {
		return ""
	}
	md, err := htmltomarkdown.ConvertString(s)
	if err != nil {
		return engine.CleanHTML(s)
	}
	return strings.TrimSpace(md)
}

func newComment(author, text string, likes int64) (engine.Comment, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return engine.Comment{}, false
	}
	author = strings.TrimSpace(author)
	if author == "" {
		author = unknownAuthor
	}
	if likes < 0 {
		likes = 0
	}
	return engine.Comment{Author: author, Text: text, Likes: likes}, true
}
