package sources

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"strconv"
	"strings"

	"github.com/anatolykoptev/go_ytdigest/internal/engine"
)

// YouTube Innertube API: session, player info, caption tracks and the comment feed.

const (
	defaultInnertubeBase = "https://www.youtube.com/youtubei/v1"
	ytWebVersion         = "2.20250222.10.00"
)

// ErrNoComments means the watch page exposes no comment section (disabled or hidden).
var ErrNoComments = errors.New("comment section not found")

// --- Shared player response (watch page + /player) ---

type playerResponse struct {
	PlayabilityStatus *struct {
		Status string `json:"status"`
		Reason string `json:"reason"`
	} `json:"playabilityStatus"`
	VideoDetails *struct {
		VideoID       string `json:"videoId"`
		Title         string `json:"title"`
		LengthSeconds string `json:"lengthSeconds"`
		ViewCount     string `json:"viewCount"`
		Author        string `json:"author"`
		ChannelID     string `json:"channelId"`
	} `json:"videoDetails"`
	Microformat *struct {
		PlayerMicroformatRenderer struct {
			PublishDate      string `json:"publishDate"`
			UploadDate       string `json:"uploadDate"`
			LengthSeconds    string `json:"lengthSeconds"`
			ViewCount        string `json:"viewCount"`
			OwnerChannelName string `json:"ownerChannelName"`
		} `json:"playerMicroformatRenderer"`
	} `json:"microformat"`
	Captions *struct {
		PlayerCaptionsTracklistRenderer struct {
			CaptionTracks []captionTrackJSON `json:"captionTracks"`
		} `json:"playerCaptionsTracklistRenderer"`
	} `json:"captions"`
}

type captionTrackJSON struct {
	BaseURL      string `json:"baseUrl"`
	LanguageCode string `json:"languageCode"`
	Kind         string `json:"kind"` // "asr" = auto-generated
	VssID        string `json:"vssId"`
	Name         struct {
		SimpleText string `json:"simpleText"`
		Runs       []struct {
			Text string `json:"text"`
		} `json:"runs"`
	} `json:"name"`
}

// CaptionTrack is one language/style variant of a video's captions.
type CaptionTrack struct {
	BaseURL      string
	LanguageCode string
	Name         string
	Kind         string
	VssID        string
}

func (pr *playerResponse) captionTracks() []CaptionTrack {
	if pr.Captions == nil {
		return nil
	}
	raw := pr.Captions.PlayerCaptionsTracklistRenderer.CaptionTracks
	tracks := make([]CaptionTrack, 0, len(raw))
	for _, t := range raw {
		if t.BaseURL == "" {
			continue
		}
		name := t.Name.SimpleText
		if name == "" && len(t.Name.Runs) > 0 {
			name = t.Name.Runs[0].Text
		}
		tracks = append(tracks, CaptionTrack{
			BaseURL:      t.BaseURL,
			LanguageCode: t.LanguageCode,
			Name:         name,
			Kind:         t.Kind,
			VssID:        t.VssID,
		})
	}
	return tracks
}

func (pr *playerResponse) unplayableReason() string {
	if pr.PlayabilityStatus == nil || pr.PlayabilityStatus.Status == "" || pr.PlayabilityStatus.Status == "OK" {
		return ""
	}
	if pr.PlayabilityStatus.Reason != "" {
		return pr.PlayabilityStatus.Status + ": " + pr.PlayabilityStatus.Reason
	}
	return pr.PlayabilityStatus.Status
}

// --- WEB client context ---

type ytWebClientCtx struct {
	ClientName    string `json:"clientName"`
	ClientVersion string `json:"clientVersion"`
	VisitorData   string `json:"visitorData,omitempty"`
	Hl            string `json:"hl,omitempty"`
	Gl            string `json:"gl,omitempty"`
}

type ytWebUser struct {
	EnableSafetyMode bool `json:"enableSafetyMode"`
}

type ytWebReqCtx struct {
	UseSsl bool `json:"useSsl"`
}

// generateVisitorData creates a random 11-char visitor ID for Innertube requests.
func generateVisitorData() string {
	const chars = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-_"
	b := make([]byte, 11)
	for i := range b {
		b[i] = chars[rand.Intn(len(chars))] //nolint:gosec // non-cryptographic use
	}
	return string(b)
}

// --- Session factory ---

// Innertube creates locale-scoped sessions against the Innertube API.
type Innertube struct {
	HTTPClient *http.Client
	BaseURL    string // default https://www.youtube.com/youtubei/v1
}

// Session is one visitor identity bound to a locale. It holds no state that
// outlives the request it was created for.
type Session struct {
	hc          *http.Client
	base        string
	locale      engine.Locale
	visitorData string
}

// NewSession opens a session for the given locale.
func (it *Innertube) NewSession(ctx context.Context, locale engine.Locale) (*Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	hc := it.HTTPClient
	if hc == nil {
		hc = http.DefaultClient
	}
	base := strings.TrimRight(it.BaseURL, "/")
	if base == "" {
		base = defaultInnertubeBase
	}
	if locale.HL == "" {
		locale = engine.DefaultLocale
	}
	return &Session{hc: hc, base: base, locale: locale, visitorData: generateVisitorData()}, nil
}

func (s *Session) context() map[string]any {
	return map[string]any{
		"client": ytWebClientCtx{
			ClientName:    "WEB",
			ClientVersion: ytWebVersion,
			VisitorData:   s.visitorData,
			Hl:            s.locale.HL,
			Gl:            s.locale.GL,
		},
		"user":    ytWebUser{EnableSafetyMode: false},
		"request": ytWebReqCtx{UseSsl: true},
	}
}

// post sends a JSON payload to an Innertube endpoint with WEB client headers.
func (s *Session) post(ctx context.Context, endpoint string, payload map[string]any) ([]byte, error) {
	engine.IncrInnertubeRequests()
	payload["context"] = s.context()
	bodyBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	target := s.base + "/" + endpoint + "?prettyPrint=false"
	resp, err := engine.RetryHTTP(ctx, engine.DefaultRetryConfig, func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(bodyBytes))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "*/*")
		req.Header.Set("User-Agent", engine.UserAgentChrome)
		req.Header.Set("X-Youtube-Client-Name", "1")
		req.Header.Set("X-Youtube-Client-Version", ytWebVersion)
		req.Header.Set("X-Goog-Visitor-Id", s.visitorData)
		req.Header.Set("Origin", "https://www.youtube.com")
		req.Header.Set("Referer", "https://www.youtube.com/")
		return s.hc.Do(req)
	})
	if err != nil {
		return nil, fmt.Errorf("innertube [%s]: %w", endpoint, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return nil, fmt.Errorf("innertube [%s] HTTP %d: %s", endpoint, resp.StatusCode, snippet)
	}
	return io.ReadAll(io.LimitReader(resp.Body, 4*1024*1024))
}

func (s *Session) player(ctx context.Context, videoID string) (*playerResponse, error) {
	data, err := s.post(ctx, "player", map[string]any{
		"videoId":        videoID,
		"racyCheckOk":    true,
		"contentCheckOk": true,
	})
	if err != nil {
		return nil, err
	}
	var pr playerResponse
	if err := json.Unmarshal(data, &pr); err != nil {
		return nil, fmt.Errorf("decode player: %w", err)
	}
	return &pr, nil
}

// VideoInfo is the full-client view of a video.
// DurationSeconds is 0 when the player omitted it; DurationText is the
// microformat's textual length and may be empty.
type VideoInfo struct {
	Title           string
	ViewCount       string
	Published       string
	Author          string
	DurationSeconds float64
	DurationText    string
}

// Info fetches player details for a video.
func (s *Session) Info(ctx context.Context, videoID string) (*VideoInfo, error) {
	pr, err := s.player(ctx, videoID)
	if err != nil {
		return nil, err
	}
	if pr.VideoDetails == nil {
		if reason := pr.unplayableReason(); reason != "" {
			return nil, fmt.Errorf("video unavailable: %s", reason)
		}
		return nil, errors.New("no videoDetails in player response")
	}
	vd := pr.VideoDetails
	info := &VideoInfo{
		Title:     vd.Title,
		ViewCount: vd.ViewCount,
		Author:    vd.Author,
	}
	if n, err := strconv.ParseFloat(vd.LengthSeconds, 64); err == nil {
		info.DurationSeconds = n
	}
	if pr.Microformat != nil {
		mf := pr.Microformat.PlayerMicroformatRenderer
		info.Published = mf.PublishDate
		if info.Published == "" {
			info.Published = mf.UploadDate
		}
		info.DurationText = mf.LengthSeconds
		if info.Author == "" {
			info.Author = mf.OwnerChannelName
		}
	}
	return info, nil
}

// CaptionTracks lists the caption tracks the player exposes for a video.
func (s *Session) CaptionTracks(ctx context.Context, videoID string) ([]CaptionTrack, error) {
	pr, err := s.player(ctx, videoID)
	if err != nil {
		return nil, err
	}
	return pr.captionTracks(), nil
}
