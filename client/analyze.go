package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"

	"go.opentelemetry.io/otel/trace"

	vserrors "github.com/vidscribe/vidscribe-cli/pkg/errors"
	"github.com/vidscribe/vidscribe-cli/pkg/observability"
	"github.com/vidscribe/vidscribe-cli/pkg/playback"
	"github.com/vidscribe/vidscribe-cli/pkg/session"
)

// AnalyzeRequest describes one video submission. Exactly one of VideoURL,
// FilePath, or File must be set.
type AnalyzeRequest struct {
	// VideoURL is a streaming platform URL to analyze.
	VideoURL string

	// FilePath is a local video file to upload.
	FilePath string

	// File streams video content directly; Filename names the part when
	// File is used instead of FilePath.
	File     io.Reader
	Filename string

	// Language is the BCP 47 transcription language tag.
	Language string
}

// sourceKind reports how the request addresses its video, for telemetry.
func (r *AnalyzeRequest) sourceKind() string {
	if r.VideoURL != "" {
		return "url"
	}
	return "file"
}

// AnalyzeResult pairs the decoded analysis with the service's soft failure
// message. Both can be populated at once: the service reports per-section
// generation failures while still returning the sections that succeeded.
type AnalyzeResult struct {
	Result    *session.AnalysisResult
	SoftError string
}

// uploadResponse is the wire shape of the service's analysis response.
type uploadResponse struct {
	VideoTitle       string `json:"video_title"`
	VideoID          string `json:"video_id"`
	VideoPlaybackURL string `json:"video_playback_url"`
	VideoDownloadURL string `json:"video_download_url"`

	TranscriptSegments []struct {
		Start              float64 `json:"start"`
		Text               string  `json:"text"`
		FormattedTimestamp string  `json:"formatted_timestamp"`
	} `json:"full_transcript_segments"`

	Documentation []struct {
		Title     string  `json:"title"`
		Timestamp float64 `json:"timestamp"`
		Summary   string  `json:"summary"`
	} `json:"documentation"`

	Faqs []struct {
		Question string `json:"question"`
		Answer   string `json:"answer"`
	} `json:"faqs"`

	// Error is the soft failure message; it coexists with partial results.
	Error string `json:"error"`
}

// Analyze submits a video for analysis and blocks until the service responds.
// The call can take minutes; cancel via ctx to abandon it.
func (c *Client) Analyze(ctx context.Context, req *AnalyzeRequest) (*AnalyzeResult, error) {
	if req == nil || (req.VideoURL == "" && req.FilePath == "" && req.File == nil) {
		return nil, vserrors.ErrMissingSource
	}

	requestID := newRequestID()

	var span trace.Span
	if c.tracer != nil {
		ctx, span = c.tracer.StartSubmitSpan(ctx, requestID, req.sourceKind(), req.Language)
		defer span.End()
	}

	body, contentType, err := buildUploadBody(req)
	if err != nil {
		observability.RecordError(span, err)
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(endpointUpload), body)
	if err != nil {
		observability.RecordError(span, err)
		return nil, fmt.Errorf("building request: %w", err)
	}
	httpReq.Header.Set("Content-Type", contentType)

	var resp uploadResponse
	if err := c.do(httpReq, "upload", requestID, &resp); err != nil {
		observability.RecordError(span, err)
		return nil, err
	}
	observability.RecordSuccess(span)

	result := convertUploadResponse(c, &resp)

	// Some service versions omit video_id for platform URLs; recover it from
	// the submitted URL so the embedded player still works.
	if result.Media.Kind == session.MediaNone && req.VideoURL != "" {
		if id, ok := playback.ExtractVideoID(req.VideoURL); ok {
			result.Media = session.EmbeddedPlatform(id)
		}
	}

	return &AnalyzeResult{
		Result:    result,
		SoftError: resp.Error,
	}, nil
}

// buildUploadBody assembles the multipart form for an analysis submission.
// The form carries exactly one of video_url or video, plus language.
func buildUploadBody(req *AnalyzeRequest) (io.Reader, string, error) {
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)

	switch {
	case req.VideoURL != "":
		if err := w.WriteField("video_url", req.VideoURL); err != nil {
			return nil, "", fmt.Errorf("writing video_url field: %w", err)
		}
	case req.FilePath != "":
		f, err := os.Open(req.FilePath)
		if err != nil {
			return nil, "", fmt.Errorf("opening video file: %w", err)
		}
		defer f.Close()
		part, err := w.CreateFormFile("video", filepath.Base(req.FilePath))
		if err != nil {
			return nil, "", fmt.Errorf("creating video part: %w", err)
		}
		if _, err := io.Copy(part, f); err != nil {
			return nil, "", fmt.Errorf("reading video file: %w", err)
		}
	default:
		name := req.Filename
		if name == "" {
			name = "video"
		}
		part, err := w.CreateFormFile("video", name)
		if err != nil {
			return nil, "", fmt.Errorf("creating video part: %w", err)
		}
		if _, err := io.Copy(part, req.File); err != nil {
			return nil, "", fmt.Errorf("reading video stream: %w", err)
		}
	}

	// The form always carries the language field, even when empty; the
	// service applies its own default.
	if err := w.WriteField("language", req.Language); err != nil {
		return nil, "", fmt.Errorf("writing language field: %w", err)
	}

	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("finalizing form: %w", err)
	}
	return buf, w.FormDataContentType(), nil
}

// convertUploadResponse maps the wire response into the session model.
func convertUploadResponse(c *Client, resp *uploadResponse) *session.AnalysisResult {
	result := &session.AnalysisResult{
		VideoTitle: resp.VideoTitle,
	}

	// The platform video ID wins over hosted URLs; the two backends are
	// mutually exclusive downstream.
	switch {
	case resp.VideoID != "":
		result.Media = session.EmbeddedPlatform(resp.VideoID)
	case resp.VideoPlaybackURL != "":
		result.Media = session.HostedFile(
			c.ResolveRef(resp.VideoPlaybackURL),
			c.ResolveRef(resp.VideoDownloadURL),
		)
	}

	for _, seg := range resp.TranscriptSegments {
		formatted := seg.FormattedTimestamp
		if formatted == "" {
			formatted = session.FormatTimestamp(seg.Start)
		}
		result.Transcript = append(result.Transcript, session.TranscriptSegment{
			Start:              seg.Start,
			Text:               seg.Text,
			FormattedTimestamp: formatted,
		})
	}

	for _, doc := range resp.Documentation {
		result.Documentation = append(result.Documentation, session.DocumentationSection{
			Title:            doc.Title,
			TimestampSeconds: doc.Timestamp,
			SummaryMarkup:    doc.Summary,
		})
	}

	for _, faq := range resp.Faqs {
		result.Faqs = append(result.Faqs, session.FaqEntry{
			Question: faq.Question,
			Answer:   faq.Answer,
		})
	}

	return result
}
