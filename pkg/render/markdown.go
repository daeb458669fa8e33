package render

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// MarkdownRenderer converts untrusted markdown markup into display text.
// Section bodies from the analysis service are never displayed raw.
type MarkdownRenderer func(markup string) (string, error)

var (
	md = goldmark.New(
		goldmark.WithExtensions(extension.GFM),
	)

	tagPattern    = regexp.MustCompile(`<[^>]+>`)
	entityReplace = strings.NewReplacer(
		"&amp;", "&",
		"&lt;", "<",
		"&gt;", ">",
		"&quot;", `"`,
		"&#39;", "'",
	)
	blankLines = regexp.MustCompile(`\n{3,}`)
)

// GoldmarkRenderer returns a renderer that parses GitHub-flavored markdown
// and flattens the result to plain terminal text. Raw HTML embedded in the
// markup is stripped, not passed through.
func GoldmarkRenderer() MarkdownRenderer {
	return func(markup string) (string, error) {
		var buf bytes.Buffer
		if err := md.Convert([]byte(markup), &buf); err != nil {
			return "", fmt.Errorf("rendering markdown: %w", err)
		}

		text := buf.String()
		text = strings.ReplaceAll(text, "</p>", "\n")
		text = strings.ReplaceAll(text, "<br>", "\n")
		text = strings.ReplaceAll(text, "<li>", "  - ")
		text = strings.ReplaceAll(text, "</li>", "\n")
		text = tagPattern.ReplaceAllString(text, "")
		text = entityReplace.Replace(text)
		text = blankLines.ReplaceAllString(text, "\n\n")
		return strings.TrimSpace(text), nil
	}
}
