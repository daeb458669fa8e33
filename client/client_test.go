// Package client provides the HTTP client for the video analysis service.
package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	vserrors "github.com/vidscribe/vidscribe-cli/pkg/errors"
	"github.com/vidscribe/vidscribe-cli/pkg/observability"
	"github.com/vidscribe/vidscribe-cli/pkg/session"
)

func TestNew_RejectsBadURL(t *testing.T) {
	if _, err := New("not a url", nil); err == nil {
		t.Error("expected error for unparseable URL")
	}
	if _, err := New("ftp://example.com", nil); err == nil {
		t.Error("expected error for non-http scheme")
	}
	if _, err := New("http://localhost:5000", nil); err != nil {
		t.Errorf("expected http URL to be accepted, got %v", err)
	}
}

func TestResolveRef(t *testing.T) {
	c, err := New("https://analysis.example.com", nil)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		ref  string
		want string
	}{
		{"", ""},
		{"/media/demo.mp4", "https://analysis.example.com/media/demo.mp4"},
		{"https://cdn.example.com/v.mp4", "https://cdn.example.com/v.mp4"},
	}
	for _, tt := range tests {
		if got := c.ResolveRef(tt.ref); got != tt.want {
			t.Errorf("ResolveRef(%q) = %q, want %q", tt.ref, got, tt.want)
		}
	}
}

// TestAnalyze_URLSubmission verifies the multipart form carries video_url and
// language, and that the response is converted into the session model.
func TestAnalyze_URLSubmission(t *testing.T) {
	var gotURL, gotLanguage string
	var hadFilePart bool

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/upload" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			t.Fatalf("parsing multipart form: %v", err)
		}
		gotURL = r.FormValue("video_url")
		gotLanguage = r.FormValue("language")
		_, _, err := r.FormFile("video")
		hadFilePart = err == nil

		resp := map[string]interface{}{
			"video_title": "Demo Walkthrough",
			"video_id":    "dQw4w9WgXcQ",
			"full_transcript_segments": []map[string]interface{}{
				{"start": 0.0, "text": "Welcome.", "formatted_timestamp": "00:00:00"},
				{"start": 65.2, "text": "Next part."},
			},
			"documentation": []map[string]interface{}{
				{"title": "Intro", "timestamp": 0.0, "summary": "# Intro\nWelcome."},
			},
			"faqs": []map[string]interface{}{
				{"question": "What is this?", "answer": "A demo."},
			},
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	c, err := New(srv.URL, nil)
	if err != nil {
		t.Fatal(err)
	}

	out, err := c.Analyze(context.Background(), &AnalyzeRequest{
		VideoURL: "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
		Language: "en",
	})
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}

	if gotURL != "https://www.youtube.com/watch?v=dQw4w9WgXcQ" {
		t.Errorf("video_url = %q", gotURL)
	}
	if gotLanguage != "en" {
		t.Errorf("language = %q", gotLanguage)
	}
	if hadFilePart {
		t.Error("URL submission must not carry a video file part")
	}

	res := out.Result
	if res.VideoTitle != "Demo Walkthrough" {
		t.Errorf("VideoTitle = %q", res.VideoTitle)
	}
	if res.Media.Kind != session.MediaEmbedded || res.Media.VideoID != "dQw4w9WgXcQ" {
		t.Errorf("unexpected media ref: %+v", res.Media)
	}
	if len(res.Transcript) != 2 {
		t.Fatalf("expected 2 transcript segments, got %d", len(res.Transcript))
	}
	// Missing formatted timestamp is synthesized client-side.
	if res.Transcript[1].FormattedTimestamp != "00:01:05" {
		t.Errorf("FormattedTimestamp = %q, want 00:01:05", res.Transcript[1].FormattedTimestamp)
	}
	if len(res.Documentation) != 1 || res.Documentation[0].Title != "Intro" {
		t.Errorf("unexpected documentation: %+v", res.Documentation)
	}
	if len(res.Faqs) != 1 {
		t.Errorf("unexpected faqs: %+v", res.Faqs)
	}
	if out.SoftError != "" {
		t.Errorf("unexpected soft error %q", out.SoftError)
	}
}

// TestAnalyze_FileSubmission verifies file uploads carry the video part and
// no video_url field, and that hosted media URLs are resolved against the
// service base URL.
func TestAnalyze_FileSubmission(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			t.Fatalf("parsing multipart form: %v", err)
		}
		if r.FormValue("video_url") != "" {
			t.Error("file submission must not carry video_url")
		}
		file, header, err := r.FormFile("video")
		if err != nil {
			t.Fatalf("expected video part: %v", err)
		}
		defer file.Close()
		if header.Filename != "clip.mp4" {
			t.Errorf("filename = %q", header.Filename)
		}

		json.NewEncoder(w).Encode(map[string]interface{}{
			"video_title":        "Uploaded Clip",
			"video_playback_url": "/media/clip.mp4",
			"video_download_url": "/media/clip-dl.mp4",
		})
	}))
	defer srv.Close()

	c, err := New(srv.URL, nil)
	if err != nil {
		t.Fatal(err)
	}

	out, err := c.Analyze(context.Background(), &AnalyzeRequest{
		File:     strings.NewReader("fake video bytes"),
		Filename: "clip.mp4",
		Language: "en",
	})
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}

	media := out.Result.Media
	if media.Kind != session.MediaHosted {
		t.Fatalf("expected hosted media, got %s", media.Kind)
	}
	if media.PlaybackURL != srv.URL+"/media/clip.mp4" {
		t.Errorf("PlaybackURL = %q, want resolved URL", media.PlaybackURL)
	}
	if media.DownloadURL != srv.URL+"/media/clip-dl.mp4" {
		t.Errorf("DownloadURL = %q, want resolved URL", media.DownloadURL)
	}
}

func TestAnalyze_MissingSource(t *testing.T) {
	c, err := New("http://localhost:5000", nil)
	if err != nil {
		t.Fatal(err)
	}

	_, err = c.Analyze(context.Background(), &AnalyzeRequest{Language: "en"})
	if !vserrors.IsMissingSource(err) {
		t.Errorf("expected ErrMissingSource, got %v", err)
	}
}

// TestAnalyze_SoftError verifies a soft error coexists with partial results.
func TestAnalyze_SoftError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"video_title": "Partial",
			"full_transcript_segments": []map[string]interface{}{
				{"start": 0.0, "text": "Hello"},
			},
			"error": "documentation generation failed",
		})
	}))
	defer srv.Close()

	c, err := New(srv.URL, nil)
	if err != nil {
		t.Fatal(err)
	}

	out, err := c.Analyze(context.Background(), &AnalyzeRequest{VideoURL: "https://youtu.be/x"})
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if out.SoftError != "documentation generation failed" {
		t.Errorf("SoftError = %q", out.SoftError)
	}
	if !out.Result.HasTranscript() {
		t.Error("expected partial transcript alongside soft error")
	}
}

// TestAnalyze_VideoIDFallback verifies the video ID is recovered from the
// submitted URL when the response omits it, and that the language field is
// present on the wire even when no language was set.
func TestAnalyze_VideoIDFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			t.Fatalf("parsing multipart form: %v", err)
		}
		if vals, ok := r.MultipartForm.Value["language"]; !ok || len(vals) != 1 || vals[0] != "" {
			t.Errorf("language field = %v, want a single empty value", vals)
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"video_title": "No ID",
			"full_transcript_segments": []map[string]interface{}{
				{"start": 0.0, "text": "Hello"},
			},
		})
	}))
	defer srv.Close()

	c, err := New(srv.URL, nil)
	if err != nil {
		t.Fatal(err)
	}

	out, err := c.Analyze(context.Background(), &AnalyzeRequest{
		VideoURL: "https://youtu.be/dQw4w9WgXcQ",
	})
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	media := out.Result.Media
	if media.Kind != session.MediaEmbedded || media.VideoID != "dQw4w9WgXcQ" {
		t.Errorf("unexpected media ref: %+v", media)
	}
}

func TestAnalyze_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]string{"error": "transcription backend down"})
	}))
	defer srv.Close()

	c, err := New(srv.URL, nil)
	if err != nil {
		t.Fatal(err)
	}

	_, err = c.Analyze(context.Background(), &AnalyzeRequest{VideoURL: "https://youtu.be/x"})
	if !vserrors.IsServer(err) {
		t.Errorf("expected ErrServer, got %v", err)
	}
	if !strings.Contains(err.Error(), "transcription backend down") {
		t.Errorf("expected server reason in error, got %v", err)
	}
}

func TestAnalyze_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // Connection refused from here on.

	c, err := New(srv.URL, nil)
	if err != nil {
		t.Fatal(err)
	}

	_, err = c.Analyze(context.Background(), &AnalyzeRequest{VideoURL: "https://youtu.be/x"})
	if !vserrors.IsTransport(err) {
		t.Errorf("expected ErrTransport, got %v", err)
	}
}

func TestClassify(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/classify" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var req struct {
			Text string `json:"text"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decoding request: %v", err)
		}
		if req.Text != "go to the faqs page" {
			t.Errorf("text = %q", req.Text)
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"intent":     "navigate",
			"parameters": map[string]string{"page_name": "faqs"},
		})
	}))
	defer srv.Close()

	c, err := New(srv.URL, nil)
	if err != nil {
		t.Fatal(err)
	}

	cls, err := c.Classify(context.Background(), "go to the faqs page")
	if err != nil {
		t.Fatalf("Classify() error = %v", err)
	}
	if cls.Intent != "navigate" {
		t.Errorf("Intent = %q", cls.Intent)
	}
	if cls.Parameters["page_name"] != "faqs" {
		t.Errorf("Parameters = %v", cls.Parameters)
	}
}

func TestAnswerQuestion(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/answer" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var req struct {
			Question string `json:"question"`
			Context  string `json:"context"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decoding request: %v", err)
		}
		if req.Context == "" {
			t.Error("expected transcript context")
		}
		json.NewEncoder(w).Encode(map[string]string{"answer": "It covers deployment."})
	}))
	defer srv.Close()

	c, err := New(srv.URL, nil)
	if err != nil {
		t.Fatal(err)
	}

	answer, err := c.AnswerQuestion(context.Background(), "what does the video cover?", "deployment walkthrough transcript")
	if err != nil {
		t.Fatalf("AnswerQuestion() error = %v", err)
	}
	if answer != "It covers deployment." {
		t.Errorf("answer = %q", answer)
	}
}

func TestAPIKeyHeader(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode(map[string]string{"answer": "ok"})
	}))
	defer srv.Close()

	c, err := New(srv.URL, &Options{APIKey: "secret-key"})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := c.AnswerQuestion(context.Background(), "q", "ctx"); err != nil {
		t.Fatal(err)
	}
	if gotAuth != "Bearer secret-key" {
		t.Errorf("Authorization = %q", gotAuth)
	}
}

// TestRequestIDHeader verifies each call carries a usable correlation ID even
// when tracing is enabled: the ID is minted before the span starts, so the
// header never degrades to an empty value.
func TestRequestIDHeader(t *testing.T) {
	var gotRequestID string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotRequestID = r.Header.Get("X-Request-ID")
		json.NewEncoder(w).Encode(map[string]interface{}{"intent": "navigate"})
	}))
	defer srv.Close()

	c, err := New(srv.URL, &Options{Tracer: observability.NewTracer()})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := c.Classify(context.Background(), "hello"); err != nil {
		t.Fatal(err)
	}
	if _, err := uuid.Parse(gotRequestID); err != nil {
		t.Errorf("X-Request-ID = %q, want a UUID", gotRequestID)
	}
}
