// go_ytdigest is a YouTube video digest server.
//
// Turns a video URL into one JSON document: metadata, timestamped transcript,
// channel statistics and optionally comments. Serves a plain JSON HTTP API
// (TRANSPORT=http, default) or an MCP server with the youtube_digest tool
// (TRANSPORT=mcp).
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/anatolykoptev/go-kit/env"
	"github.com/anatolykoptev/go-mcpserver"
	"github.com/anatolykoptev/go_ytdigest/internal/engine"
	"github.com/anatolykoptev/go_ytdigest/internal/engine/video"
	"github.com/anatolykoptev/go_ytdigest/internal/httpapi"
	"github.com/anatolykoptev/go_ytdigest/internal/ytserver"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

var version = "dev"

func main() {
	slog.SetDefault(engine.NewLogger(os.Stderr, env.Str("LOG_LEVEL", "info"), env.Str("LOG_FORMAT", "text")))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := engine.LoadConfig()
	if cfg.YouTubeAPIKey == "" {
		slog.Warn("no YouTube Data API key set; channel enrichment and comment fallback disabled",
			slog.Bool("require_api_key", cfg.RequireAPIKey))
	}

	pipeline, err := video.NewPipeline(ctx, cfg)
	if err != nil {
		slog.Error("pipeline init failed", slog.Any("error", err))
		os.Exit(1)
	}

	transport := env.Str("TRANSPORT", "http")
	slog.Info("starting go_ytdigest",
		slog.String("version", version),
		slog.String("transport", transport),
		slog.Any("caption_langs", cfg.CaptionLangs))

	switch transport {
	case "mcp":
		runMCP(pipeline)
	default:
		port := env.Str("PORT", "8080")
		if err := httpapi.New(pipeline, version, slog.Default()).ListenAndServe(ctx, ":"+port); err != nil {
			slog.Error("server failed", slog.Any("error", err))
			os.Exit(1)
		}
	}
}

func runMCP(pipeline *video.Pipeline) {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "go_ytdigest",
		Version: version,
	}, nil)

	ytserver.RegisterTools(server, pipeline)
	slog.Info("tools registered", slog.Int("count", 1))

	if err := mcpserver.Run(server, mcpserver.Config{
		Name:         "go_ytdigest",
		Version:      version,
		Port:         env.Str("MCP_PORT", "8892"),
		WriteTimeout: 120 * time.Second,
		Metrics:      engine.FormatMetrics,
	}); err != nil {
		slog.Error("server failed", slog.Any("error", err))
	}
}
