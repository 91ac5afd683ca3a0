package sources

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/anatolykoptev/go_ytdigest/internal/engine"
	"golang.org/x/net/html"
)

// Community-style caption scraping: watch page → captionTracks → timedtext XML.
// Every call is independent; nothing is shared between languages.

// ErrNoCaptions means the watch page lists no track for the requested language.
var ErrNoCaptions = errors.New("could not find captions")

// Caption is one caption line with its start offset still in upstream text form.
type Caption struct {
	Start string
	Text  string
}

// CaptionScraper fetches captions by language from the watch page.
type CaptionScraper struct {
	Page *WatchPage
}

// selectTrack picks the track for lang by language code, then by vssId
// (".lang" manual, "a.lang" auto-generated). An empty lang takes the first track.
func selectTrack(tracks []CaptionTrack, lang string) (CaptionTrack, bool) {
	if len(tracks) == 0 {
		return CaptionTrack{}, false
	}
	if lang == "" {
		return tracks[0], true
	}
	for _, t := range tracks {
		if strings.EqualFold(t.LanguageCode, lang) {
			return t, true
		}
	}
	for _, t := range tracks {
		if t.VssID == "."+lang || t.VssID == "a."+lang || strings.Contains(t.VssID, "."+lang) {
			return t, true
		}
	}
	return CaptionTrack{}, false
}

// Captions returns the captions of a video in lang ("" = any language).
func (c *CaptionScraper) Captions(ctx context.Context, videoID, lang string) ([]Caption, error) {
	pr, err := c.Page.playerResponse(ctx, videoID)
	if err != nil {
		return nil, err
	}
	track, ok := selectTrack(pr.captionTracks(), lang)
	if !ok {
		return nil, fmt.Errorf("%w: video %s, lang %q", ErrNoCaptions, videoID, lang)
	}

	resp, err := engine.RetryHTTP(ctx, engine.DefaultRetryConfig, func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, track.BaseURL, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", engine.UserAgentBot)
		return c.Page.client().Do(req)
	})
	if err != nil {
		return nil, fmt.Errorf("fetch captions: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("captions HTTP %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 2*1024*1024))
	if err != nil {
		return nil, err
	}
	return parseCaptionXML(body)
}

// parseCaptionXML reads <text start> elements, strips inner tags and
// decodes all HTML entities, including double-encoded ones.
func parseCaptionXML(body []byte) ([]Caption, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse captions: %w", err)
	}
	var out []Caption
	doc.Find("text").Each(func(_ int, sel *goquery.Selection) {
		start, ok := sel.Attr("start")
		if !ok {
			return
		}
		inner, _ := sel.Html()
		text := engine.CleanHTML(html.UnescapeString(html.UnescapeString(inner)))
		text = strings.Join(strings.Fields(text), " ")
		out = append(out, Caption{Start: start, Text: text})
	})
	return out, nil
}
