package video

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/anatolykoptev/go_ytdigest/internal/engine"
	"github.com/anatolykoptev/go_ytdigest/internal/engine/sources"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Deps are the collaborators a Pipeline drives.
type Deps struct {
	URLs        URLParser
	Metadata    *MetadataFetcher
	Transcripts *Transcripts
	Channels    *ChannelEnricher
	Comments    *CommentCollector
}

// Pipeline runs one digest request end to end.
type Pipeline struct {
	cfg  engine.Config
	deps Deps
}

// New builds a Pipeline from explicit collaborators.
func New(cfg engine.Config, deps Deps) *Pipeline {
	return &Pipeline{cfg: cfg.WithDefaults(), deps: deps}
}

// NewPipeline wires the production collaborators from cfg.
func NewPipeline(ctx context.Context, cfg engine.Config) (*Pipeline, error) {
	cfg = cfg.WithDefaults()
	hc := cfg.HTTPClient

	watch := &sources.WatchPage{HTTPClient: hc, Locale: cfg.Locale}
	sessions := InnertubeSessions{Innertube: &sources.Innertube{HTTPClient: hc}}
	docs := &sources.TimedTextFetcher{HTTPClient: hc}
	if cfg.BrowserTLS {
		bc, err := engine.NewBrowserClient(int(cfg.FetchTimeout.Seconds()))
		if err != nil {
			slog.Warn("browser TLS client unavailable, using net/http", slog.Any("error", err))
		} else {
			docs.Browser = bc
		}
	}

	var api DataAPI
	if cfg.YouTubeAPIKey != "" {
		d, err := sources.NewDataAPI(ctx, cfg.YouTubeAPIKey, cfg.DataAPIRPS)
		if err != nil {
			return nil, err
		}
		api = d
	}

	return New(cfg, Deps{
		URLs: sources.URLParser{},
		Metadata: &MetadataFetcher{
			Fast:     watch,
			Sessions: sessions,
			Locale:   cfg.Locale,
		},
		Transcripts: &Transcripts{
			Captions: &CaptionExtractor{
				Lookup:  &sources.CaptionScraper{Page: watch},
				Langs:   cfg.CaptionLangs,
				Timeout: cfg.CaptionTimeout,
			},
			Tracks: &TrackFallback{
				Sessions:  sessions,
				Documents: docs,
				Locale:    cfg.Locale,
				Langs:     cfg.CaptionLangs,
				Timeout:   cfg.TrackTimeout,
			},
		},
		Channels: &ChannelEnricher{API: api},
		Comments: &CommentCollector{
			Sessions: sessions,
			Locale:   cfg.Locale,
			API:      api,
			Max:      cfg.MaxComments,
			MaxAPI:   cfg.MaxAPIComments,
			Timeout:  cfg.CommentsTimeout,
		},
	}), nil
}

// Run produces the digest for req. The artifact sweep runs whatever the outcome.
func (p *Pipeline) Run(ctx context.Context, req engine.Request) (out *engine.DigestOutput, err error) {
	_ = engine.TrackOperation(ctx, "digest:"+req.URL, func(ctx context.Context) error {
		out, err = p.run(ctx, req)
		return err
	})
	return
}

func (p *Pipeline) run(ctx context.Context, req engine.Request) (out *engine.DigestOutput, err error) {
	reqID := uuid.NewString()
	log := slog.With(slog.String("request_id", reqID), slog.String("url", req.URL))
	started := time.Now()
	engine.IncrRequests()

	defer engine.SweepArtifacts(p.cfg.ArtifactDir, p.cfg.ArtifactPattern)
	defer func() {
		if err != nil {
			engine.IncrRequestErrors()
			log.Warn("digest failed", slog.String("kind", engine.KindOf(err).String()), slog.Any("error", err))
			return
		}
		log.Info("digest done",
			slog.String("video", out.Document.VideoID),
			slog.Int("lines", len(out.Document.Transcript)),
			slog.Int("comments", len(out.Document.Comments)),
			slog.Duration("elapsed", time.Since(started)))
	}()

	if p.cfg.RequireAPIKey && p.cfg.YouTubeAPIKey == "" {
		return nil, engine.NewError(engine.KindConfiguration, "config", engine.ErrNotConfigured)
	}
	if req.URL == "" {
		return nil, engine.NewError(engine.KindInvalidInput, "validate", errors.New("empty url"))
	}
	videoID, err := p.deps.URLs.ParseVideoURL(req.URL)
	if err != nil {
		return nil, engine.NewError(engine.KindInvalidInput, "validate", err)
	}
	canonical := sources.CanonicalURL(videoID)

	ectx, cancel := context.WithCancel(ctx)
	defer cancel()
	var (
		g       errgroup.Group
		channel *engine.ChannelEnrichment
	)
	g.Go(func() error {
		channel = p.deps.Channels.Fetch(ectx, videoID)
		return nil
	})

	meta, err := p.deps.Metadata.Fetch(ctx, videoID, canonical)
	if err != nil {
		return nil, engine.NewError(failureKind(err), "metadata", err)
	}

	tr := p.deps.Transcripts.Fetch(ctx, videoID, req.URL)
	if err := ctx.Err(); err != nil {
		return nil, engine.NewError(failureKind(err), "transcript", err)
	}
	if len(tr.Segments) == 0 {
		return nil, engine.NewError(engine.KindNoTranscript, "transcript",
			fmt.Errorf("%w (captions: %s, tracks: %s)", engine.ErrNoTranscript, tr.Captions.Kind, tr.Tracks.Kind))
	}
	lines := ToTimedLines(tr.Segments)

	comments := []engine.Comment{}
	if req.ExtractComments {
		comments = p.deps.Comments.Collect(ctx, videoID)
	}

	_ = g.Wait()

	doc := engine.ResultDocument{
		VideoID:     videoID,
		URL:         req.URL,
		Title:       meta.Title,
		ChannelName: meta.Author,
		PublishedAt: meta.PublishDate,
		Views:       engine.ParseCount(meta.ViewCount),
		Transcript:  lines,
		Comments:    comments,
	}
	if meta.LengthSeconds > 0 {
		doc.Duration = engine.SecondsToISODuration(meta.LengthSeconds)
	}
	if channel != nil {
		doc.ChannelID = channel.ChannelID
		doc.Subscribers = channel.Subscribers
		doc.ChannelCreatedAt = channel.CreatedAt
	}

	log.Debug("transcript source", slog.String("source", tr.Source))
	return &engine.DigestOutput{Filename: SuggestedFilename(meta.Title, videoID), Document: doc}, nil
}

// SuggestedFilename derives a filesystem-safe document name from the title.
func SuggestedFilename(title, videoID string) string {
	name := engine.SafeFilename(title)
	if name == "" {
		name = "video_" + videoID
	}
	return name + ".json"
}

// failureKind keeps timeouts retryable and reports everything else as internal.
func failureKind(err error) engine.Kind {
	if engine.KindOf(err) == engine.KindTimeout {
		return engine.KindTimeout
	}
	return engine.KindInternal
}
