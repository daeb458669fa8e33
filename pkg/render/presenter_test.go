package render

import (
	"bytes"
	"strings"
	"testing"

	"github.com/vidscribe/vidscribe-cli/pkg/session"
)

func threeItems() []Item {
	return []Item{
		{Header: "Intro", Body: "intro body"},
		{Header: "Setup", Body: "setup body"},
		{Header: "Deploy", Body: "deploy body"},
	}
}

func TestPresenter_StartsCollapsed(t *testing.T) {
	p := NewPresenter(threeItems())
	if p.Expanded() != -1 {
		t.Errorf("Expanded() = %d, want -1", p.Expanded())
	}
}

// TestPresenter_ToggleSameCollapses: expanding item i then toggling i again
// collapses everything.
func TestPresenter_ToggleSameCollapses(t *testing.T) {
	p := NewPresenter(threeItems())

	p.Toggle(1)
	if p.Expanded() != 1 {
		t.Fatalf("Expanded() = %d, want 1", p.Expanded())
	}
	p.Toggle(1)
	if p.Expanded() != -1 {
		t.Errorf("Expanded() = %d, want -1 after re-toggle", p.Expanded())
	}
}

// TestPresenter_ToggleOtherMovesExpansion: with i expanded, toggling j
// leaves only j expanded.
func TestPresenter_ToggleOtherMovesExpansion(t *testing.T) {
	p := NewPresenter(threeItems())

	p.Toggle(0)
	p.Toggle(2)
	if p.Expanded() != 2 {
		t.Errorf("Expanded() = %d, want 2", p.Expanded())
	}
}

func TestPresenter_ToggleOutOfRangeIgnored(t *testing.T) {
	p := NewPresenter(threeItems())
	p.Toggle(0)

	p.Toggle(-1)
	p.Toggle(3)
	if p.Expanded() != 0 {
		t.Errorf("out-of-range toggle changed state: %d", p.Expanded())
	}
}

func TestPresenter_RenderShowsOnlyExpandedBody(t *testing.T) {
	p := NewPresenter(threeItems())
	p.Toggle(1)

	var buf bytes.Buffer
	if err := p.Render(&buf); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	out := buf.String()

	for _, header := range []string{"Intro", "Setup", "Deploy"} {
		if !strings.Contains(out, header) {
			t.Errorf("missing header %q in output", header)
		}
	}
	if !strings.Contains(out, "setup body") {
		t.Error("expanded body missing from output")
	}
	if strings.Contains(out, "intro body") || strings.Contains(out, "deploy body") {
		t.Error("collapsed bodies must not be rendered")
	}
}

func TestDocsItems(t *testing.T) {
	sections := []session.DocumentationSection{
		{Title: "Intro", TimestampSeconds: 65, SummaryMarkup: "**bold** text"},
	}

	items := DocsItems(sections, GoldmarkRenderer())
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}
	if items[0].Header != "Intro (00:01:05)" {
		t.Errorf("Header = %q", items[0].Header)
	}
	if !strings.Contains(items[0].Body, "bold text") {
		t.Errorf("Body = %q, want rendered markdown", items[0].Body)
	}
	if strings.Contains(items[0].Body, "**") {
		t.Errorf("Body = %q, markdown markers should be rendered away", items[0].Body)
	}
}

func TestDocsItems_NilRendererKeepsRaw(t *testing.T) {
	sections := []session.DocumentationSection{
		{Title: "Intro", SummaryMarkup: "raw *markup*"},
	}
	items := DocsItems(sections, nil)
	if items[0].Body != "raw *markup*" {
		t.Errorf("Body = %q", items[0].Body)
	}
}

func TestFaqItems(t *testing.T) {
	items := FaqItems([]session.FaqEntry{{Question: "Q1?", Answer: "A1."}})
	if len(items) != 1 || items[0].Header != "Q1?" || items[0].Body != "A1." {
		t.Errorf("unexpected items: %+v", items)
	}
}

func TestGoldmarkRenderer_StripsEmbeddedHTML(t *testing.T) {
	render := GoldmarkRenderer()
	out, err := render("hello <script>alert(1)</script> world")
	if err != nil {
		t.Fatalf("render error: %v", err)
	}
	if strings.Contains(out, "<script>") {
		t.Errorf("embedded HTML must be stripped, got %q", out)
	}
}

func TestGoldmarkRenderer_Lists(t *testing.T) {
	render := GoldmarkRenderer()
	out, err := render("- first\n- second\n")
	if err != nil {
		t.Fatalf("render error: %v", err)
	}
	if !strings.Contains(out, "first") || !strings.Contains(out, "second") {
		t.Errorf("list items missing: %q", out)
	}
}
