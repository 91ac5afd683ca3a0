package sources

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/anatolykoptev/go_ytdigest/internal/engine"
)

// ytInitialPlayerResponseMarker marks the start of the player response JSON in watch page HTML.
const ytInitialPlayerResponseMarker = "ytInitialPlayerResponse = "

const defaultWatchBase = "https://www.youtube.com"

// WatchPage scrapes the public watch page.
type WatchPage struct {
	HTTPClient *http.Client
	BaseURL    string // default https://www.youtube.com
	Locale     engine.Locale
}

// BasicInfo is the fast metadata view of a video. LengthSeconds is kept as
// the raw string the page carries.
type BasicInfo struct {
	VideoID       string
	Title         string
	ViewCount     string
	PublishDate   string
	Author        string
	LengthSeconds string
}

func (w *WatchPage) client() *http.Client {
	if w.HTTPClient != nil {
		return w.HTTPClient
	}
	return http.DefaultClient
}

// fetch downloads the watch page HTML for a video ID.
func (w *WatchPage) fetch(ctx context.Context, videoID string) ([]byte, error) {
	engine.IncrWatchPageRequests()
	base := strings.TrimRight(w.BaseURL, "/")
	if base == "" {
		base = defaultWatchBase
	}
	watchURL := base + "/watch?v=" + videoID
	if w.Locale.HL != "" {
		watchURL += "&hl=" + w.Locale.HL
	}

	resp, err := engine.RetryHTTP(ctx, engine.DefaultRetryConfig, func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, watchURL, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", engine.RandomUserAgent())
		req.Header.Set("Accept-Language", "en-US,en;q=0.9")
		req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
		return w.client().Do(req)
	})
	if err != nil {
		return nil, fmt.Errorf("watch page: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("watch page HTTP %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 6*1024*1024))
	if err != nil {
		return nil, fmt.Errorf("read watch page: %w", err)
	}
	return body, nil
}

// parsePlayerResponse locates ytInitialPlayerResponse in watch page HTML.
// Script bodies are checked first; a raw byte scan covers pages goquery cannot split.
func parsePlayerResponse(page []byte) (*playerResponse, error) {
	var jsonData []byte
	if doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page)); err == nil {
		doc.Find("script").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
			text := sel.Text()
			idx := strings.Index(text, ytInitialPlayerResponseMarker)
			if idx < 0 {
				return true
			}
			jsonData = extractJSON([]byte(text[idx+len(ytInitialPlayerResponseMarker):]))
			return jsonData == nil
		})
	}
	if jsonData == nil {
		idx := bytes.Index(page, []byte(ytInitialPlayerResponseMarker))
		if idx < 0 {
			return nil, errors.New("ytInitialPlayerResponse not found in watch page")
		}
		jsonData = extractJSON(page[idx+len(ytInitialPlayerResponseMarker):])
	}
	if jsonData == nil {
		return nil, errors.New("failed to extract ytInitialPlayerResponse JSON")
	}

	var pr playerResponse
	if err := json.Unmarshal(jsonData, &pr); err != nil {
		return nil, fmt.Errorf("decode ytInitialPlayerResponse: %w", err)
	}
	return &pr, nil
}

// playerResponse fetches and decodes the player response of a video's watch page.
func (w *WatchPage) playerResponse(ctx context.Context, videoID string) (*playerResponse, error) {
	page, err := w.fetch(ctx, videoID)
	if err != nil {
		return nil, err
	}
	return parsePlayerResponse(page)
}

// BasicInfo fetches fast metadata for a video URL.
func (w *WatchPage) BasicInfo(ctx context.Context, videoURL string) (*BasicInfo, error) {
	id, err := ParseVideoURL(videoURL)
	if err != nil {
		return nil, err
	}
	pr, err := w.playerResponse(ctx, id)
	if err != nil {
		return nil, err
	}
	if pr.VideoDetails == nil {
		if reason := pr.unplayableReason(); reason != "" {
			return nil, fmt.Errorf("video unavailable: %s", reason)
		}
		return nil, errors.New("no videoDetails in watch page")
	}
	vd := pr.VideoDetails
	info := &BasicInfo{
		VideoID:       id,
		Title:         vd.Title,
		ViewCount:     vd.ViewCount,
		Author:        vd.Author,
		LengthSeconds: vd.LengthSeconds,
	}
	if pr.Microformat != nil {
		mf := pr.Microformat.PlayerMicroformatRenderer
		info.PublishDate = mf.PublishDate
		if info.PublishDate == "" {
			info.PublishDate = mf.UploadDate
		}
	}
	return info, nil
}

// extractJSON extracts a complete JSON object starting at b[0] == '{' by tracking brace depth.
func extractJSON(b []byte) []byte {
	if len(b) == 0 || b[0] != '{' {
		return nil
	}
	depth := 0
	inStr := false
	escaped := false
	for i, c := range b {
		if inStr {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inStr = false
			}
			continue
		}
		switch c {
		case '"':
			inStr = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return b[:i+1]
			}
		}
	}
	return nil
}
