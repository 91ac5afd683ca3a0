package sources

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testCaptionXML = `<?xml version="1.0" encoding="utf-8" ?><transcript>
<text start="0.5" dur="2.1">Hello &amp;#39;world&amp;#39;</text>
<text start="2.6" dur="1.4"><font color="#E5E5E5">we&amp;#39;re</font>   no strangers</text>
<text start="4" dur="1">to &amp;quot;love&amp;quot; &amp;amp; rules</text>
</transcript>`

func TestCaptionScraperCaptions(t *testing.T) {
	srv := newWatchServer(t, testCaptionXML)
	scraper := &CaptionScraper{Page: &WatchPage{BaseURL: srv.URL}}

	caps, err := scraper.Captions(context.Background(), testVideoID, "zh-TW")
	require.NoError(t, err)
	require.Len(t, caps, 3)
	assert.Equal(t, Caption{Start: "0.5", Text: "Hello 'world'"}, caps[0])
	assert.Equal(t, "we're no strangers", caps[1].Text)
	assert.Equal(t, `to "love" & rules`, caps[2].Text)
	assert.Equal(t, "4", caps[2].Start)
}

func TestCaptionScraperUnknownLanguage(t *testing.T) {
	srv := newWatchServer(t, testCaptionXML)
	scraper := &CaptionScraper{Page: &WatchPage{BaseURL: srv.URL}}

	_, err := scraper.Captions(context.Background(), testVideoID, "fr")
	assert.ErrorIs(t, err, ErrNoCaptions)
}

func TestSelectTrack(t *testing.T) {
	tracks := []CaptionTrack{
		{BaseURL: "u-en", LanguageCode: "en", VssID: ".en"},
		{BaseURL: "u-ja", LanguageCode: "ja", VssID: "a.ja"},
		{BaseURL: "u-hant", LanguageCode: "zh-Hant", VssID: ".zh-Hant"},
	}
	tests := []struct {
		lang string
		want string
		ok   bool
	}{
		{"", "u-en", true},
		{"JA", "u-ja", true},
		{"zh-Hant", "u-hant", true},
		{"de", "", false},
	}
	for _, tt := range tests {
		got, ok := selectTrack(tracks, tt.lang)
		assert.Equal(t, tt.ok, ok, "lang %q", tt.lang)
		assert.Equal(t, tt.want, got.BaseURL, "lang %q", tt.lang)
	}

	_, ok := selectTrack(nil, "")
	assert.False(t, ok)
}

func TestParseCaptionXMLSkipsTextWithoutStart(t *testing.T) {
	caps, err := parseCaptionXML([]byte(`<transcript><text dur="1">no start</text><text start="1">ok</text></transcript>`))
	require.NoError(t, err)
	require.Len(t, caps, 1)
	assert.Equal(t, "ok", caps[0].Text)
}
