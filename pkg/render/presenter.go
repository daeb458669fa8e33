// Package render displays analysis results in the terminal: collapsible
// documentation and FAQ lists, and markdown rendering for generated section
// bodies.
package render

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/vidscribe/vidscribe-cli/pkg/session"
)

// Item is one collapsible entry: a always-visible header and a body shown
// only while expanded.
type Item struct {
	Header string
	Body   string
}

// Presenter shows a list of collapsible items with at most one expanded at a
// time. Toggling the expanded item collapses it; toggling another item moves
// the expansion there.
type Presenter struct {
	mu       sync.Mutex
	items    []Item
	expanded int
}

// NewPresenter creates a presenter with everything collapsed.
func NewPresenter(items []Item) *Presenter {
	return &Presenter{items: items, expanded: -1}
}

// Len returns the number of items.
func (p *Presenter) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.items)
}

// Expanded returns the index of the expanded item, or -1 when all are
// collapsed.
func (p *Presenter) Expanded() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.expanded
}

// Toggle flips item i: expanding it collapses whichever item was expanded
// before. Out-of-range indexes are ignored.
func (p *Presenter) Toggle(i int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if i < 0 || i >= len(p.items) {
		return
	}
	if p.expanded == i {
		p.expanded = -1
		return
	}
	p.expanded = i
}

// Render writes the list to w, with the expanded item's body inlined under
// its header.
func (p *Presenter) Render(w io.Writer) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	for i, item := range p.items {
		marker := "+"
		if i == p.expanded {
			marker = "-"
		}
		if _, err := fmt.Fprintf(w, "[%d] %s %s\n", i+1, marker, item.Header); err != nil {
			return err
		}
		if i == p.expanded && item.Body != "" {
			body := strings.TrimRight(item.Body, "\n")
			for _, line := range strings.Split(body, "\n") {
				if _, err := fmt.Fprintf(w, "    %s\n", line); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// DocsItems builds presenter items from documentation sections. Bodies pass
// through render, typically a markdown renderer; render errors fall back to
// the raw markup.
func DocsItems(sections []session.DocumentationSection, render func(string) (string, error)) []Item {
	items := make([]Item, 0, len(sections))
	for _, sec := range sections {
		body := sec.SummaryMarkup
		if render != nil {
			if out, err := render(sec.SummaryMarkup); err == nil {
				body = out
			}
		}
		items = append(items, Item{
			Header: fmt.Sprintf("%s (%s)", sec.Title, session.FormatTimestamp(sec.TimestampSeconds)),
			Body:   body,
		})
	}
	return items
}

// FaqItems builds presenter items from FAQ entries.
func FaqItems(faqs []session.FaqEntry) []Item {
	items := make([]Item, 0, len(faqs))
	for _, faq := range faqs {
		items = append(items, Item{Header: faq.Question, Body: faq.Answer})
	}
	return items
}
