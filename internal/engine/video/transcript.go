package video

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/anatolykoptev/go_ytdigest/internal/engine"
	"github.com/anatolykoptev/go_ytdigest/internal/engine/sources"
)

// TranscriptSource is one step of the transcript chain. videoURL is only
// needed by sources that resolve platform track metadata.
type TranscriptSource interface {
	Fetch(ctx context.Context, videoID, videoURL string) ([]engine.TranscriptSegment, error)
}

// --- Source A: community captions ---

// CaptionExtractor tries each preferred language, then one unconstrained request.
type CaptionExtractor struct {
	Lookup  CaptionLookup
	Langs   []string
	Timeout time.Duration
}

func (c *CaptionExtractor) Fetch(ctx context.Context, videoID, _ string) ([]engine.TranscriptSegment, error) {
	return engine.WithTimeout(ctx, c.Timeout, "captions", func(ctx context.Context) ([]engine.TranscriptSegment, error) {
		for _, lang := range c.Langs {
			caps, err := c.Lookup.Captions(ctx, videoID, lang)
			if err != nil {
				if ctx.Err() != nil {
					return nil, ctx.Err()
				}
				slog.Debug("captions: language miss", slog.String("video", videoID), slog.String("lang", lang), slog.Any("error", err))
				continue
			}
			if segs := captionSegments(caps); len(segs) > 0 {
				return segs, nil
			}
		}
		caps, err := c.Lookup.Captions(ctx, videoID, "")
		if err != nil {
			return nil, err
		}
		return captionSegments(caps), nil
	})
}

func captionSegments(caps []sources.Caption) []engine.TranscriptSegment {
	if len(caps) == 0 {
		return nil
	}
	segs := make([]engine.TranscriptSegment, 0, len(caps))
	for _, c := range caps {
		start, err := strconv.ParseFloat(strings.TrimSpace(c.Start), 64)
		if err != nil || start < 0 {
			start = 0
		}
		segs = append(segs, engine.TranscriptSegment{Start: start, Text: c.Text})
	}
	return segs
}

// --- Source B: platform caption tracks ---

// TrackFallback ranks the platform's own caption tracks and parses the best one.
type TrackFallback struct {
	Sessions  SessionFactory
	Documents CaptionDocumentFetcher
	Locale    engine.Locale
	Langs     []string
	Timeout   time.Duration
}

func (t *TrackFallback) Fetch(ctx context.Context, videoID, videoURL string) ([]engine.TranscriptSegment, error) {
	return engine.WithTimeout(ctx, t.Timeout, "caption tracks", func(ctx context.Context) ([]engine.TranscriptSegment, error) {
		sess, err := t.Sessions.NewSession(ctx, t.Locale)
		if err != nil {
			return nil, fmt.Errorf("open session: %w", err)
		}
		tracks, err := sess.CaptionTracks(ctx, videoID)
		if err != nil {
			return nil, fmt.Errorf("list tracks: %w", err)
		}
		if len(tracks) == 0 {
			return nil, nil
		}
		best := RankTracks(tracks, t.Langs)[0]
		doc, err := t.Documents.FetchCaptionDocument(ctx, best.BaseURL, videoURL)
		if err != nil {
			return nil, fmt.Errorf("fetch track %s: %w", best.LanguageCode, err)
		}
		return ParseTimedText(doc), nil
	})
}

// RankTracks orders tracks by their position in langs. Tracks in other
// languages go last and keep their relative order. The input is not modified.
func RankTracks(tracks []sources.CaptionTrack, langs []string) []sources.CaptionTrack {
	rank := func(t sources.CaptionTrack) int {
		for i, l := range langs {
			if strings.EqualFold(t.LanguageCode, l) {
				return i
			}
		}
		return len(langs)
	}
	out := slices.Clone(tracks)
	slices.SortStableFunc(out, func(a, b sources.CaptionTrack) int {
		return rank(a) - rank(b)
	})
	return out
}

var timedTextRe = regexp.MustCompile(`(?s)<text\b[^>]*?\bstart="([\d.]+)"[^>]*>(.*?)</text>`)

// ParseTimedText extracts <text start="S">TEXT</text> elements. Only &#39;,
// &quot; and &amp; are decoded. Markup without matches yields nil.
func ParseTimedText(doc string) []engine.TranscriptSegment {
	matches := timedTextRe.FindAllStringSubmatch(doc, -1)
	if len(matches) == 0 {
		return nil
	}
	segs := make([]engine.TranscriptSegment, 0, len(matches))
	for _, m := range matches {
		start, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			continue
		}
		segs = append(segs, engine.TranscriptSegment{Start: start, Text: engine.DecodeCaptionEntities(m[2])})
	}
	return segs
}

// --- Orchestrator ---

// TranscriptResult records which source answered and how each step ended.
type TranscriptResult struct {
	Segments []engine.TranscriptSegment
	Source   string // "captions", "tracks" or ""
	Captions Outcome[engine.TranscriptSegment]
	Tracks   Outcome[engine.TranscriptSegment]
}

// Transcripts runs the community captions first and the platform tracks only
// when the captions produced nothing.
type Transcripts struct {
	Captions TranscriptSource
	Tracks   TranscriptSource
}

// Fetch never fails: a miss on both sources is an empty result.
func (t *Transcripts) Fetch(ctx context.Context, videoID, videoURL string) TranscriptResult {
	var res TranscriptResult

	segs, err := t.Captions.Fetch(ctx, videoID, videoURL)
	res.Captions = Evaluate(segs, err)
	if res.Captions.OK() {
		engine.IncrCaptionHits()
		res.Segments, res.Source = res.Captions.Items, "captions"
		return res
	}
	if res.Captions.Kind == OutcomeFailed {
		countTimeout(res.Captions.Err)
		slog.Debug("transcript: captions failed", slog.String("video", videoID), slog.Any("error", res.Captions.Err))
	}

	engine.IncrTrackFallbacks()
	segs, err = t.Tracks.Fetch(ctx, videoID, videoURL)
	res.Tracks = Evaluate(segs, err)
	if res.Tracks.OK() {
		engine.IncrTrackHits()
		res.Segments, res.Source = res.Tracks.Items, "tracks"
		return res
	}
	if res.Tracks.Kind == OutcomeFailed {
		countTimeout(res.Tracks.Err)
		slog.Debug("transcript: tracks failed", slog.String("video", videoID), slog.Any("error", res.Tracks.Err))
	}
	engine.IncrTranscriptMisses()
	return res
}

// ToTimedLines renders segments as mm:ss (hh:mm:ss) lines, in input order.
func ToTimedLines(segs []engine.TranscriptSegment) []engine.TimedLine {
	lines := make([]engine.TimedLine, len(segs))
	for i, s := range segs {
		lines[i] = engine.TimedLine{Time: engine.FormatTimestamp(s.Start), Text: s.Text}
	}
	return lines
}

func countTimeout(err error) {
	if engine.KindOf(err) == engine.KindTimeout {
		engine.IncrTimeouts()
	}
}
