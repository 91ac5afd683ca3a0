package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"
)

// Metrics tracks operational counters across the engine.
var metrics struct {
	Requests            atomic.Int64
	RequestErrors       atomic.Int64
	MetadataFallbacks   atomic.Int64
	CaptionHits         atomic.Int64
	TrackFallbacks      atomic.Int64
	TrackHits           atomic.Int64
	TranscriptMisses    atomic.Int64
	CommentRequests     atomic.Int64
	CommentAPIFallbacks atomic.Int64
	EnrichmentHits      atomic.Int64
	EnrichmentMisses    atomic.Int64
	DataAPIRequests     atomic.Int64
	InnertubeRequests   atomic.Int64
	WatchPageRequests   atomic.Int64
	Timeouts            atomic.Int64
	ArtifactsSwept      atomic.Int64
}

// GetMetrics returns a snapshot of all metrics.
func GetMetrics() map[string]int64 {
	return map[string]int64{
		"requests":              metrics.Requests.Load(),
		"request_errors":        metrics.RequestErrors.Load(),
		"metadata_fallbacks":    metrics.MetadataFallbacks.Load(),
		"caption_hits":          metrics.CaptionHits.Load(),
		"track_fallbacks":       metrics.TrackFallbacks.Load(),
		"track_hits":            metrics.TrackHits.Load(),
		"transcript_misses":     metrics.TranscriptMisses.Load(),
		"comment_requests":      metrics.CommentRequests.Load(),
		"comment_api_fallbacks": metrics.CommentAPIFallbacks.Load(),
		"enrichment_hits":       metrics.EnrichmentHits.Load(),
		"enrichment_misses":     metrics.EnrichmentMisses.Load(),
		"data_api_requests":     metrics.DataAPIRequests.Load(),
		"innertube_requests":    metrics.InnertubeRequests.Load(),
		"watch_page_requests":   metrics.WatchPageRequests.Load(),
		"timeouts":              metrics.Timeouts.Load(),
		"artifacts_swept":       metrics.ArtifactsSwept.Load(),
	}
}

// FormatMetrics returns metrics as a simple text format for HTTP endpoint.
func FormatMetrics() string {
	m := GetMetrics()
	var sb strings.Builder
	keys := []string{
		"requests", "request_errors",
		"metadata_fallbacks",
		"caption_hits", "track_fallbacks", "track_hits", "transcript_misses",
		"comment_requests", "comment_api_fallbacks",
		"enrichment_hits", "enrichment_misses",
		"data_api_requests", "innertube_requests", "watch_page_requests",
		"timeouts", "artifacts_swept",
	}
	for _, k := range keys {
		fmt.Fprintf(&sb, "%s %d\n", k, m[k])
	}
	return sb.String()
}

// Incrementors for the video pipeline.
func IncrRequests()            { metrics.Requests.Add(1) }
func IncrRequestErrors()       { metrics.RequestErrors.Add(1) }
func IncrMetadataFallbacks()   { metrics.MetadataFallbacks.Add(1) }
func IncrCaptionHits()         { metrics.CaptionHits.Add(1) }
func IncrTrackFallbacks()      { metrics.TrackFallbacks.Add(1) }
func IncrTrackHits()           { metrics.TrackHits.Add(1) }
func IncrTranscriptMisses()    { metrics.TranscriptMisses.Add(1) }
func IncrCommentRequests()     { metrics.CommentRequests.Add(1) }
func IncrCommentAPIFallbacks() { metrics.CommentAPIFallbacks.Add(1) }
func IncrEnrichment(hit bool) {
	if hit {
		metrics.EnrichmentHits.Add(1)
		return
	}
	metrics.EnrichmentMisses.Add(1)
}
func IncrTimeouts() { metrics.Timeouts.Add(1) }

// Incrementors for sources/ sub-package.
func IncrDataAPIRequests()   { metrics.DataAPIRequests.Add(1) }
func IncrInnertubeRequests() { metrics.InnertubeRequests.Add(1) }
func IncrWatchPageRequests() { metrics.WatchPageRequests.Add(1) }

// TrackOperation logs a warning if an operation takes longer than threshold.
func TrackOperation(ctx context.Context, name string, fn func(context.Context) error) error {
	start := time.Now()
	err := fn(ctx)
	elapsed := time.Since(start)
	if elapsed > 5*time.Second {
		slog.Warn("slow operation", slog.String("op", name), slog.Duration("elapsed", elapsed))
	}
	return err
}
