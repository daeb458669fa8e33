package session

import (
	"sync"
	"testing"
)

func TestStore_InitialState(t *testing.T) {
	s := NewStore()

	status, reason := s.Status()
	if status != StatusIdle {
		t.Errorf("expected idle status, got %s", status)
	}
	if reason != "" {
		t.Errorf("expected empty reason, got %q", reason)
	}
	if s.Result() != nil {
		t.Error("expected nil result")
	}
	if s.CurrentToken() != 0 {
		t.Errorf("expected zero token, got %d", s.CurrentToken())
	}
}

func TestStore_BeginResetsState(t *testing.T) {
	s := NewStore()

	tok := s.Begin()
	if !s.Complete(tok, &AnalysisResult{VideoTitle: "first"}, "partial failure") {
		t.Fatal("expected completion to apply")
	}

	tok2 := s.Begin()
	if tok2 <= tok {
		t.Errorf("expected token to increase, got %d after %d", tok2, tok)
	}
	if s.Result() != nil {
		t.Error("expected Begin to clear the previous result")
	}
	if s.SoftError() != "" {
		t.Error("expected Begin to clear the soft error")
	}
	status, _ := s.Status()
	if status != StatusInFlight {
		t.Errorf("expected in-flight status, got %s", status)
	}
}

func TestStore_StaleCompletionDiscarded(t *testing.T) {
	s := NewStore()

	tokN := s.Begin()
	tokN1 := s.Begin()

	// Request N's late response arrives after N+1 started.
	if s.Complete(tokN, &AnalysisResult{VideoTitle: "stale"}, "") {
		t.Fatal("expected stale completion to be discarded")
	}
	if s.Result() != nil {
		t.Error("stale completion must not mutate the store")
	}

	if !s.Complete(tokN1, &AnalysisResult{VideoTitle: "fresh"}, "") {
		t.Fatal("expected current completion to apply")
	}
	if got := s.Result().VideoTitle; got != "fresh" {
		t.Errorf("expected fresh result, got %q", got)
	}

	// And a stale failure after a fresh completion changes nothing.
	if s.Fail(tokN, "network down") {
		t.Fatal("expected stale failure to be discarded")
	}
	status, _ := s.Status()
	if status != StatusReady {
		t.Errorf("expected ready status, got %s", status)
	}
}

func TestStore_FailSetsReason(t *testing.T) {
	s := NewStore()
	tok := s.Begin()

	if !s.Fail(tok, "network unavailable: dial tcp: refused") {
		t.Fatal("expected failure to apply")
	}
	status, reason := s.Status()
	if status != StatusFailed {
		t.Errorf("expected failed status, got %s", status)
	}
	if reason == "" {
		t.Error("expected a failure reason")
	}
	if s.Result() != nil {
		t.Error("expected no result after failure")
	}
}

func TestStore_SoftErrorCoexistsWithResult(t *testing.T) {
	s := NewStore()
	tok := s.Begin()

	res := &AnalysisResult{
		Transcript: []TranscriptSegment{{Start: 0, Text: "Hello", FormattedTimestamp: "00:00:00"}},
	}
	s.Complete(tok, res, "summarization failed for one chunk")

	if s.Result() == nil || !s.Result().HasTranscript() {
		t.Fatal("expected partial result to be ingested")
	}
	if s.SoftError() == "" {
		t.Error("expected soft error to be surfaced alongside the result")
	}
	status, _ := s.Status()
	if status != StatusReady {
		t.Errorf("expected ready status with soft error, got %s", status)
	}
}

func TestStore_ChatTranscriptAppendOnly(t *testing.T) {
	s := NewStore()

	s.AppendUserTurn("hello")
	s.AppendBotTurn("hi there")

	turns := s.Turns()
	if len(turns) != 2 {
		t.Fatalf("expected 2 turns, got %d", len(turns))
	}
	if turns[0].Sender != SenderUser || turns[1].Sender != SenderBot {
		t.Error("expected turns in append order")
	}

	// Mutating the returned slice must not affect the store.
	turns[0].Text = "mutated"
	if s.Turns()[0].Text != "hello" {
		t.Error("expected Turns to return a copy")
	}
}

func TestStore_ConcurrentTurnAppends(t *testing.T) {
	s := NewStore()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.AppendBotTurn("turn")
		}()
	}
	wg.Wait()

	if s.TurnCount() != 50 {
		t.Errorf("expected 50 turns, got %d", s.TurnCount())
	}
}

func TestMediaRefConstructors(t *testing.T) {
	embedded := EmbeddedPlatform("abc123")
	if embedded.Kind != MediaEmbedded || embedded.VideoID != "abc123" || embedded.PlaybackURL != "" {
		t.Errorf("unexpected embedded ref: %+v", embedded)
	}

	hosted := HostedFile("/media/demo.mp4", "/media/demo-dl.mp4")
	if hosted.Kind != MediaHosted || hosted.PlaybackURL != "/media/demo.mp4" || hosted.VideoID != "" {
		t.Errorf("unexpected hosted ref: %+v", hosted)
	}

	var none MediaRef
	if none.Kind != MediaNone {
		t.Errorf("expected zero value to be MediaNone, got %s", none.Kind)
	}
}

func TestFormatTimestamp(t *testing.T) {
	tests := []struct {
		seconds float64
		want    string
	}{
		{0, "00:00:00"},
		{1.4, "00:00:01"},
		{59, "00:00:59"},
		{61, "00:01:01"},
		{3600, "01:00:00"},
		{3725.9, "01:02:05"},
		{-5, "00:00:00"},
	}
	for _, tt := range tests {
		if got := FormatTimestamp(tt.seconds); got != tt.want {
			t.Errorf("FormatTimestamp(%v) = %q, want %q", tt.seconds, got, tt.want)
		}
	}
}

func TestFullTranscript(t *testing.T) {
	r := &AnalysisResult{
		Transcript: []TranscriptSegment{
			{Text: " Hello "},
			{Text: "world."},
		},
	}
	if got := r.FullTranscript(); got != "Hello world." {
		t.Errorf("expected joined transcript, got %q", got)
	}

	var nilResult *AnalysisResult
	if nilResult.FullTranscript() != "" {
		t.Error("expected empty transcript for nil result")
	}
	if nilResult.HasTranscript() {
		t.Error("expected HasTranscript false for nil result")
	}
}
