package engine

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/anatolykoptev/go-kit/strutil"
)

// User-Agent strings used across HTTP clients.
const (
	UserAgentBot    = "GoYTDigest/1.0"
	UserAgentChrome = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"
)

var htmlTagRe = regexp.MustCompile(`<[^>]+>`)

// CleanHTML strips HTML tags and trims whitespace.
func CleanHTML(s string) string {
	return strings.TrimSpace(htmlTagRe.ReplaceAllString(s, ""))
}

// captionEntities are the only entities timed-text markup is decoded for.
var captionEntities = strings.NewReplacer(
	"&#39;", "'",
	"&quot;", `"`,
	"&amp;", "&",
)

// DecodeCaptionEntities decodes &#39;, &quot; and &amp; and leaves everything else alone.
func DecodeCaptionEntities(s string) string {
	return captionEntities.Replace(s)
}

// DigitsOnly drops every non-digit rune: "1.2K" → "12".
func DigitsOnly(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)
}

// ParseCount strips decoration from a count ("1,234 views", "1.2K") and parses
// the remaining digits. Empty or oversized input yields 0.
func ParseCount(s string) int64 {
	n, err := strconv.ParseInt(DigitsOnly(s), 10, 64)
	if err != nil {
		return 0
	}
	return n
}

const maxFilenameRunes = 50

// SafeFilename keeps letters, digits, whitespace and Japanese script
// (Hiragana, Katakana, CJK ideographs), replaces everything else with '_',
// and caps the result at 50 runes.
func SafeFilename(title string) string {
	var sb strings.Builder
	for _, r := range title {
		if keepFilenameRune(r) {
			sb.WriteRune(r)
		} else {
			sb.WriteByte('_')
		}
	}
	return strutil.TruncateWith(sb.String(), maxFilenameRunes, "")
}

func keepFilenameRune(r rune) bool {
	switch {
	case r < unicode.MaxASCII:
		return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || unicode.IsSpace(r)
	case r >= 0x3040 && r <= 0x309F: // Hiragana
		return true
	case r >= 0x30A0 && r <= 0x30FF: // Katakana
		return true
	case r >= 0x4E00 && r <= 0x9FAF: // CJK unified ideographs
		return true
	}
	return unicode.IsSpace(r)
}

// FormatTimestamp renders whole seconds as mm:ss, or hh:mm:ss when hours are non-zero.
func FormatTimestamp(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	total := int64(seconds)
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60
	if h > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}
