package sources

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/anatolykoptev/go_ytdigest/internal/engine"
)

// TimedTextFetcher downloads a caption track document. YouTube rejects requests
// without a browser User-Agent, so every request carries one.
type TimedTextFetcher struct {
	HTTPClient *http.Client
	Browser    *engine.BrowserClient // nil = plain net/http with browser headers
}

// FetchCaptionDocument returns the raw timed-text markup of a track.
func (f *TimedTextFetcher) FetchCaptionDocument(ctx context.Context, trackURL, referer string) (string, error) {
	if f.Browser != nil {
		headers := engine.ChromeHeaders()
		if referer != "" {
			headers["referer"] = referer
		}
		data, status, err := f.Browser.Get(ctx, trackURL, headers)
		if err != nil {
			return "", fmt.Errorf("timedtext browser fetch: %w", err)
		}
		if status != http.StatusOK {
			return "", fmt.Errorf("timedtext HTTP %d", status)
		}
		return string(data), nil
	}

	hc := f.HTTPClient
	if hc == nil {
		hc = http.DefaultClient
	}
	resp, err := engine.RetryHTTP(ctx, engine.DefaultRetryConfig, func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, trackURL, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", engine.UserAgentChrome)
		req.Header.Set("Accept-Language", "en-US,en;q=0.9")
		if referer != "" {
			req.Header.Set("Referer", referer)
		}
		return hc.Do(req)
	})
	if err != nil {
		return "", fmt.Errorf("fetch timedtext: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("timedtext HTTP %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 2*1024*1024))
	if err != nil {
		return "", err
	}
	return string(body), nil
}
