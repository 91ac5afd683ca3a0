package sources

// YouTube collaborators are split across files by responsibility:
//   youtube.go            URL validation and canonical IDs
//   youtube_watch.go      watch page scraping (fast metadata, ytInitialPlayerResponse)
//   youtube_transcript.go community caption scraper keyed by language
//   youtube_timedtext.go  caption document download for platform tracks
//   youtube_innertube.go  Innertube session: player info, caption tracks, comment feed
//   youtube_dataapi.go    official Data API v3 (video/channel snippets, comment threads)

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/anatolykoptev/go_ytdigest/internal/engine"
)

const watchURLPrefix = "https://www.youtube.com/watch?v="

var videoIDRE = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)

var youtubeHosts = map[string]bool{
	"youtube.com":       true,
	"www.youtube.com":   true,
	"m.youtube.com":     true,
	"music.youtube.com": true,
	"youtu.be":          true,
	"www.youtu.be":      true,
}

// pathPrefixes carry the ID as the next path segment.
var pathPrefixes = []string{"/shorts/", "/embed/", "/live/", "/v/"}

// ParseVideoURL validates a YouTube video URL and returns its 11-char ID.
func ParseVideoURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("empty url: %w", engine.ErrInvalidInput)
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("parse url: %w", engine.ErrInvalidInput)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("scheme %q: %w", u.Scheme, engine.ErrInvalidInput)
	}
	host := strings.ToLower(u.Hostname())
	if !youtubeHosts[host] {
		return "", fmt.Errorf("host %q: %w", host, engine.ErrInvalidInput)
	}

	var id string
	switch {
	case strings.HasSuffix(host, "youtu.be"):
		id = firstSegment(u.Path, "/")
	case u.Path == "/watch":
		id = u.Query().Get("v")
	default:
		for _, p := range pathPrefixes {
			if strings.HasPrefix(u.Path, p) {
				id = firstSegment(u.Path, p)
				break
			}
		}
	}
	if !videoIDRE.MatchString(id) {
		return "", fmt.Errorf("no video id in %q: %w", raw, engine.ErrInvalidInput)
	}
	return id, nil
}

func firstSegment(path, prefix string) string {
	rest := strings.TrimPrefix(path, prefix)
	if i := strings.IndexByte(rest, '/'); i >= 0 {
		rest = rest[:i]
	}
	return rest
}

// CanonicalURL returns the watch URL for a video ID.
func CanonicalURL(videoID string) string {
	return watchURLPrefix + videoID
}

// URLParser adapts ParseVideoURL to the pipeline's collaborator interface.
type URLParser struct{}

func (URLParser) ParseVideoURL(raw string) (string, error) { return ParseVideoURL(raw) }
