// Package ytserver registers the digest pipeline as an MCP tool.
package ytserver

import (
	"context"
	"errors"
	"log/slog"

	"github.com/anatolykoptev/go_ytdigest/internal/engine"
	"github.com/anatolykoptev/go_ytdigest/internal/toolutil"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// RegisterTools registers youtube_digest on the given MCP server.
func RegisterTools(server *mcp.Server, runner toolutil.Runner) {
	registerDigest(server, runner)
}

func registerDigest(server *mcp.Server, runner toolutil.Runner) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "youtube_digest",
		Description: "Build a consolidated JSON digest of a YouTube video: title, channel, subscriber count, publish date, views, ISO-8601 duration, timestamped transcript (mm:ss) and optionally up to 500 top-level comments. Returns the document plus a suggested filename.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, req *mcp.CallToolRequest, input engine.DigestInput) (*mcp.CallToolResult, engine.DigestOutput, error) {
		res := toolutil.Execute(ctx, runner, engine.Request{
			URL:             input.URL,
			ExtractComments: input.ExtractComments,
		})
		if res.Err != nil {
			slog.Warn("youtube_digest failed", slog.String("url", input.URL), slog.Any("error", res.Err))
			body, _ := res.Body.(engine.ErrorResponse)
			return nil, engine.DigestOutput{}, errors.New(body.Error)
		}
		return nil, *res.Output, nil
	})
}
