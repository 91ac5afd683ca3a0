package engine

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/anatolykoptev/go-kit/env"
)

// Config holds all engine configuration, read once in main and injected into constructors.
type Config struct {
	YouTubeAPIKey   string
	RequireAPIKey   bool     // reject every request when no Data API key is set
	CaptionLangs    []string // preferred caption languages, most wanted first
	Locale          Locale   // Innertube session locale
	CaptionTimeout  time.Duration
	TrackTimeout    time.Duration
	CommentsTimeout time.Duration
	FetchTimeout    time.Duration
	MaxComments     int   // cap for the Innertube comment feed
	MaxAPIComments  int64 // page size for the Data API comment fallback
	DataAPIRPS      float64
	ArtifactDir     string // swept after every request
	ArtifactPattern string
	BrowserTLS      bool // fetch caption documents through the Chrome TLS client
	HTTPClient      *http.Client
}

// Locale scopes an Innertube session to a UI language and content region.
type Locale struct {
	HL string
	GL string
}

// Defaults shared by LoadConfig and tests.
var (
	DefaultCaptionLangs    = []string{"zh-TW", "zh-Hant", "zh-Hans"}
	DefaultLocale          = Locale{HL: "zh-TW", GL: "TW"}
	DefaultArtifactPattern = "*-player-script.js"
)

const (
	DefaultCaptionTimeout  = 6000 * time.Millisecond
	DefaultTrackTimeout    = 4000 * time.Millisecond
	DefaultCommentsTimeout = 10000 * time.Millisecond
	DefaultMaxComments     = 500
	DefaultMaxAPIComments  = 100
)

// apiKeyVars are checked in order; the first non-empty value wins.
var apiKeyVars = []string{"YOUTUBE_API_KEY", "GOOGLE_API_KEY"}

// LoadConfig reads the engine configuration from the environment.
func LoadConfig() Config {
	fetchTimeout := env.Duration("FETCH_TIMEOUT", 15*time.Second)
	return Config{
		YouTubeAPIKey:   LookupAPIKey(),
		RequireAPIKey:   envBool("REQUIRE_API_KEY", true),
		CaptionLangs:    env.List("CAPTION_LANGS", strings.Join(DefaultCaptionLangs, ",")),
		Locale:          Locale{HL: env.Str("YT_HL", DefaultLocale.HL), GL: env.Str("YT_GL", DefaultLocale.GL)},
		CaptionTimeout:  env.Duration("CAPTION_TIMEOUT", DefaultCaptionTimeout),
		TrackTimeout:    env.Duration("TRACK_TIMEOUT", DefaultTrackTimeout),
		CommentsTimeout: env.Duration("COMMENTS_TIMEOUT", DefaultCommentsTimeout),
		FetchTimeout:    fetchTimeout,
		MaxComments:     env.Int("MAX_COMMENTS", DefaultMaxComments),
		MaxAPIComments:  int64(env.Int("MAX_API_COMMENTS", DefaultMaxAPIComments)),
		DataAPIRPS:      env.Float("DATA_API_RPS", 5),
		ArtifactDir:     env.Str("ARTIFACT_DIR", "."),
		ArtifactPattern: env.Str("ARTIFACT_PATTERN", DefaultArtifactPattern),
		BrowserTLS:      envBool("BROWSER_TLS", false),
		HTTPClient: &http.Client{
			Timeout: fetchTimeout,
			Transport: &http.Transport{
				MaxIdleConns:        20,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     60 * time.Second,
			},
		},
	}
}

// LookupAPIKey returns the Data API key from the first configured variable that is set.
func LookupAPIKey() string {
	for _, name := range apiKeyVars {
		if v := strings.TrimSpace(env.Str(name, "")); v != "" {
			return v
		}
	}
	return ""
}

// WithDefaults fills zero fields so a partially built Config (tests, CLI) is usable.
func (c Config) WithDefaults() Config {
	if len(c.CaptionLangs) == 0 {
		c.CaptionLangs = DefaultCaptionLangs
	}
	if c.Locale.HL == "" {
		c.Locale = DefaultLocale
	}
	if c.CaptionTimeout <= 0 {
		c.CaptionTimeout = DefaultCaptionTimeout
	}
	if c.TrackTimeout <= 0 {
		c.TrackTimeout = DefaultTrackTimeout
	}
	if c.CommentsTimeout <= 0 {
		c.CommentsTimeout = DefaultCommentsTimeout
	}
	if c.MaxComments <= 0 {
		c.MaxComments = DefaultMaxComments
	}
	if c.MaxAPIComments <= 0 {
		c.MaxAPIComments = DefaultMaxAPIComments
	}
	if c.ArtifactPattern == "" {
		c.ArtifactPattern = DefaultArtifactPattern
	}
	if c.ArtifactDir == "" {
		c.ArtifactDir = "."
	}
	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{Timeout: 15 * time.Second}
	}
	return c
}

func envBool(key string, def bool) bool {
	v, err := strconv.ParseBool(env.Str(key, strconv.FormatBool(def)))
	if err != nil {
		return def
	}
	return v
}
