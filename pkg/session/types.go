// Package session holds the in-memory state of one analysis session: the
// current analysis result, the request lifecycle status, and the chat
// transcript. Nothing in this package survives the process.
package session

import (
	"fmt"
	"strings"
)

// TranscriptSegment is one chronological slice of the video transcript.
// Segments are immutable once received.
type TranscriptSegment struct {
	// Start is the segment start offset in seconds.
	Start float64 `json:"start" yaml:"start"`

	// Text is the transcribed speech for this segment.
	Text string `json:"text" yaml:"text"`

	// FormattedTimestamp is the HH:MM:SS rendering of Start.
	FormattedTimestamp string `json:"formatted_timestamp" yaml:"formatted_timestamp"`
}

// DocumentationSection is one generated documentation section.
type DocumentationSection struct {
	// Title is the generated section title.
	Title string `json:"title" yaml:"title"`

	// TimestampSeconds is the video offset the section was generated from.
	TimestampSeconds float64 `json:"timestamp" yaml:"timestamp"`

	// SummaryMarkup is the section body as untrusted markdown. It is only
	// displayed after passing through the markdown renderer.
	SummaryMarkup string `json:"summary" yaml:"summary"`
}

// FaqEntry is one generated question/answer pair.
type FaqEntry struct {
	Question string `json:"question" yaml:"question"`
	Answer   string `json:"answer" yaml:"answer"`
}

// MediaKind identifies which playback backend a result targets.
type MediaKind int

const (
	// MediaNone means the result carries no playable media.
	MediaNone MediaKind = iota
	// MediaEmbedded means playback goes through the embedded streaming
	// platform player, addressed by video ID.
	MediaEmbedded
	// MediaHosted means playback is a directly hosted media file, addressed
	// by URL.
	MediaHosted
)

// String returns a human-readable name for the media kind.
func (k MediaKind) String() string {
	switch k {
	case MediaEmbedded:
		return "embedded"
	case MediaHosted:
		return "hosted"
	default:
		return "none"
	}
}

// MediaRef is the tagged choice of playback backend for one analysis result.
// At most one variant is populated; use the constructors to preserve that.
type MediaRef struct {
	Kind MediaKind `json:"kind" yaml:"kind"`

	// VideoID is set only when Kind is MediaEmbedded.
	VideoID string `json:"video_id,omitempty" yaml:"video_id,omitempty"`

	// PlaybackURL and DownloadURL are set only when Kind is MediaHosted.
	// DownloadURL is optional.
	PlaybackURL string `json:"playback_url,omitempty" yaml:"playback_url,omitempty"`
	DownloadURL string `json:"download_url,omitempty" yaml:"download_url,omitempty"`
}

// EmbeddedPlatform returns a MediaRef targeting the embedded platform player.
func EmbeddedPlatform(videoID string) MediaRef {
	return MediaRef{Kind: MediaEmbedded, VideoID: videoID}
}

// HostedFile returns a MediaRef targeting a hosted media file.
func HostedFile(playbackURL, downloadURL string) MediaRef {
	return MediaRef{Kind: MediaHosted, PlaybackURL: playbackURL, DownloadURL: downloadURL}
}

// AnalysisResult aggregates everything the analysis service produced for one
// video. It is owned by the Store and replaced wholesale on a new submission.
type AnalysisResult struct {
	VideoTitle    string                 `json:"video_title" yaml:"video_title"`
	Media         MediaRef               `json:"media" yaml:"media"`
	Transcript    []TranscriptSegment    `json:"full_transcript_segments" yaml:"full_transcript_segments"`
	Documentation []DocumentationSection `json:"documentation" yaml:"documentation"`
	Faqs          []FaqEntry             `json:"faqs" yaml:"faqs"`
}

// HasTranscript reports whether the result carries any transcript segments.
func (r *AnalysisResult) HasTranscript() bool {
	return r != nil && len(r.Transcript) > 0
}

// FullTranscript returns the transcript segments joined into a single string,
// used as context for question answering.
func (r *AnalysisResult) FullTranscript() string {
	if r == nil {
		return ""
	}
	parts := make([]string, 0, len(r.Transcript))
	for _, seg := range r.Transcript {
		parts = append(parts, strings.TrimSpace(seg.Text))
	}
	return strings.Join(parts, " ")
}

// Status is the lifecycle state of the current analysis request.
type Status int

const (
	// StatusIdle means no submission has been made yet.
	StatusIdle Status = iota
	// StatusInFlight means a submission is outstanding.
	StatusInFlight
	// StatusReady means the current result is usable.
	StatusReady
	// StatusFailed means the last submission failed; the reason is held
	// alongside the status.
	StatusFailed
)

// String returns a human-readable name for the status.
func (s Status) String() string {
	switch s {
	case StatusInFlight:
		return "in-flight"
	case StatusReady:
		return "ready"
	case StatusFailed:
		return "failed"
	default:
		return "idle"
	}
}

// Sender identifies who produced a chat turn.
type Sender int

const (
	SenderUser Sender = iota
	SenderBot
)

// String returns a human-readable name for the sender.
func (s Sender) String() string {
	if s == SenderBot {
		return "bot"
	}
	return "you"
}

// ChatTurn is one entry in the append-only chat transcript.
type ChatTurn struct {
	Sender Sender `json:"sender" yaml:"sender"`
	Text   string `json:"text" yaml:"text"`
}

// FormatTimestamp converts a second offset to HH:MM:SS, matching the format
// the analysis service uses for transcript segments.
func FormatTimestamp(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	total := int(seconds)
	return fmt.Sprintf("%02d:%02d:%02d", total/3600, (total%3600)/60, total%60)
}
