package intent

import (
	"context"
	"sync"
	"time"

	"github.com/vidscribe/vidscribe-cli/pkg/logging"
	"github.com/vidscribe/vidscribe-cli/pkg/observability"
	"github.com/vidscribe/vidscribe-cli/pkg/session"
)

// Pages the navigate intent can target.
const (
	PageHome   = "home"
	PageUpload = "upload"
	PageFaqs   = "faqs"
)

// DefaultNavigateDelay is how long the router lingers after confirming a
// navigation, so the user sees the confirmation before the page changes.
const DefaultNavigateDelay = time.Second

// ClassifyFunc asks the service to classify an utterance.
type ClassifyFunc func(ctx context.Context, text string) (*Classification, error)

// AnswerFunc asks the service to answer a question against a transcript.
type AnswerFunc func(ctx context.Context, question, transcript string) (string, error)

// SubmitFunc starts an analysis submission for a video URL. It may block for
// the full analysis; the router always calls it from its own goroutine.
type SubmitFunc func(ctx context.Context, url string) error

// Config wires a Router to its collaborators. Classify is required; the
// rest default to no-ops so partial wiring works in tests.
type Config struct {
	Store    *session.Store
	Classify ClassifyFunc
	Answer   AnswerFunc
	Submit   SubmitFunc

	// Navigate switches to a known page.
	Navigate func(page string)

	// Scroll jumps to a content section, reporting whether it exists.
	Scroll func(section string) bool

	// ClosePanel collapses the chat panel after a fulfilled action.
	ClosePanel func()

	// NavigateDelay overrides DefaultNavigateDelay. Tests inject Sleep to
	// avoid real waiting.
	NavigateDelay time.Duration
	Sleep         func(time.Duration)

	Log     logging.Logger
	Metrics *observability.Metrics
}

// Router dispatches classified chat utterances. Every utterance produces at
// least one bot turn, and turns are appended in completion order.
type Router struct {
	store    *session.Store
	classify ClassifyFunc
	answer   AnswerFunc
	submit   SubmitFunc

	navigate   func(page string)
	scroll     func(section string) bool
	closePanel func()

	navigateDelay time.Duration
	sleep         func(time.Duration)

	log     logging.Logger
	metrics *observability.Metrics

	wg sync.WaitGroup
}

// NewRouter creates a router from cfg.
func NewRouter(cfg Config) *Router {
	r := &Router{
		store:         cfg.Store,
		classify:      cfg.Classify,
		answer:        cfg.Answer,
		submit:        cfg.Submit,
		navigate:      cfg.Navigate,
		scroll:        cfg.Scroll,
		closePanel:    cfg.ClosePanel,
		navigateDelay: cfg.NavigateDelay,
		sleep:         cfg.Sleep,
		log:           cfg.Log,
		metrics:       cfg.Metrics,
	}
	if r.navigateDelay <= 0 {
		r.navigateDelay = DefaultNavigateDelay
	}
	if r.sleep == nil {
		r.sleep = time.Sleep
	}
	if r.navigate == nil {
		r.navigate = func(string) {}
	}
	if r.scroll == nil {
		r.scroll = func(string) bool { return false }
	}
	if r.closePanel == nil {
		r.closePanel = func() {}
	}
	if r.log == nil {
		r.log = logging.NewNopLogger()
	}
	return r
}

// Wait blocks until background submissions kicked off by the router finish.
func (r *Router) Wait() {
	r.wg.Wait()
}

// HandleUtterance processes one chat utterance end to end: record the user
// turn, classify, dispatch, and record the bot's response. The busy flag is
// a display signal for the duration of the call; it never gates input.
// Overlapping calls all run to completion and append their bot turns in
// whatever order they finish.
func (r *Router) HandleUtterance(ctx context.Context, text string) {
	r.store.AppendUserTurn(text)
	r.store.SetBotBusy(true)
	defer r.store.SetBotBusy(false)

	cls, err := r.classify(ctx, text)
	if err != nil {
		r.log.Warn("classification failed", logging.Err(err))
		r.store.AppendBotTurn("Sorry, I couldn't process that right now. Please try again.")
		return
	}

	in := FromClassification(cls, text)
	r.metrics.ObserveIntent(in.Kind.String())
	r.log.Debug("utterance classified", logging.F("intent", in.Kind.String()))

	switch in.Kind {
	case KindUploadVideo:
		r.handleUpload(ctx, in.URL)
	case KindNavigate:
		r.handleNavigate(in.Page)
	case KindScrollToSection:
		r.handleScroll(in.Section)
	case KindAnswerQuestion:
		r.handleQuestion(ctx, in.Question)
	case KindUnrecognized:
		r.store.AppendBotTurn("Sorry, I didn't understand that. You can give me a video link, ask about the current video, or ask me to show a section.")
	}
}

// handleUpload confirms immediately and runs the submission in the
// background so the chat stays responsive during a long analysis.
func (r *Router) handleUpload(ctx context.Context, url string) {
	r.store.AppendBotTurn("Sure! I'll start analyzing that video now.")
	r.closePanel()

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		if err := r.submit(ctx, url); err != nil {
			r.log.Warn("chat-initiated submission failed", logging.Err(err))
		}
	}()
}

func (r *Router) handleNavigate(page string) {
	switch page {
	case PageHome, PageUpload, PageFaqs:
		r.store.AppendBotTurn("Taking you to the " + page + " page.")
		r.sleep(r.navigateDelay)
		r.navigate(page)
		r.closePanel()
	default:
		// Unknown target: explain, keep the panel open.
		r.store.AppendBotTurn("Sorry, I can't navigate there. I know the home, upload, and faqs pages.")
	}
}

func (r *Router) handleScroll(section string) {
	if r.scroll(section) {
		r.store.AppendBotTurn("Here's the " + section + " section.")
		r.closePanel()
		return
	}
	// Section absent on this page: explain, keep the panel open.
	r.store.AppendBotTurn("I couldn't find a " + section + " section here.")
}

// handleQuestion short-circuits when no transcript exists, without touching
// the network.
func (r *Router) handleQuestion(ctx context.Context, question string) {
	result := r.store.Result()
	if !result.HasTranscript() {
		r.store.AppendBotTurn("Please upload a video first, then I can answer questions about it.")
		return
	}
	if r.answer == nil {
		r.store.AppendBotTurn("Sorry, question answering isn't available right now.")
		return
	}

	answer, err := r.answer(ctx, question, result.FullTranscript())
	if err != nil {
		r.log.Warn("question answering failed", logging.Err(err))
		r.store.AppendBotTurn("Sorry, I couldn't answer that right now. Please try again.")
		return
	}
	r.store.AppendBotTurn(answer)
}
