package engine

// --- Request types ---

// Request is the body accepted by every transport.
type Request struct {
	URL             string `json:"url"`
	ExtractComments bool   `json:"extractComments"`
}

// DigestInput is the MCP tool input.
type DigestInput struct {
	URL             string `json:"url" jsonschema:"YouTube video URL (watch, youtu.be, shorts, embed or live link)"`
	ExtractComments bool   `json:"extract_comments,omitempty" jsonschema:"Also collect up to 500 top-level comments (default: false)"`
}

// --- Pipeline intermediates ---

// TranscriptSegment is one timed caption unit, in upstream order.
type TranscriptSegment struct {
	Start float64
	Text  string
}

// VideoMetadata is the result of whichever metadata path succeeded.
type VideoMetadata struct {
	Title         string
	ViewCount     string
	PublishDate   string
	Author        string
	LengthSeconds float64
}

// ChannelEnrichment is all-or-nothing; a nil pointer means absent.
type ChannelEnrichment struct {
	ChannelID   string
	Subscribers int64
	CreatedAt   string
}

// --- Output types (JSON responses) ---

// TimedLine is a transcript segment rendered for output.
type TimedLine struct {
	Time string `json:"time"`
	Text string `json:"text"`
}

type Comment struct {
	Author string `json:"author"`
	Text   string `json:"text"`
	Likes  int64  `json:"likes"`
}

// ResultDocument is the consolidated output of one request.
// Optional fields degrade to zero values; Transcript is never empty on success.
type ResultDocument struct {
	VideoID          string      `json:"videoId"`
	URL              string      `json:"url"`
	Title            string      `json:"title"`
	ChannelID        string      `json:"channelId"`
	ChannelName      string      `json:"channelName"`
	Subscribers      int64       `json:"subscribers"`
	ChannelCreatedAt string      `json:"channelCreatedAt"`
	PublishedAt      string      `json:"publishedAt"`
	Views            int64       `json:"views"`
	Duration         string      `json:"duration"`
	Transcript       []TimedLine `json:"transcript"`
	Comments         []Comment   `json:"comments"`
}

// DigestOutput is what a successful run hands to a transport.
type DigestOutput struct {
	Filename string         `json:"filename"`
	Document ResultDocument `json:"document"`
}

// ResponseMetadata summarizes a document for the HTTP response.
type ResponseMetadata struct {
	VideoID         string `json:"videoId"`
	Title           string `json:"title"`
	ChannelName     string `json:"channelName"`
	TranscriptLines int    `json:"transcriptLines"`
	CommentCount    int    `json:"commentCount"`
}

// SuccessResponse is the HTTP body on success.
type SuccessResponse struct {
	Filename string           `json:"filename"`
	Content  string           `json:"content"`
	Metadata ResponseMetadata `json:"metadata"`
}

// ErrorResponse is the HTTP body on failure.
type ErrorResponse struct {
	Error     string `json:"error"`
	Retryable bool   `json:"retryable"`
}
