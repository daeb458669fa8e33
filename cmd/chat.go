package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vidscribe/vidscribe-cli/client"
	"github.com/vidscribe/vidscribe-cli/config"
	vserrors "github.com/vidscribe/vidscribe-cli/pkg/errors"
	"github.com/vidscribe/vidscribe-cli/pkg/intent"
	"github.com/vidscribe/vidscribe-cli/pkg/logging"
	"github.com/vidscribe/vidscribe-cli/pkg/playback"
	"github.com/vidscribe/vidscribe-cli/pkg/render"
	"github.com/vidscribe/vidscribe-cli/pkg/session"
	"github.com/vidscribe/vidscribe-cli/pkg/submit"
)

// ChatCommandDeps holds the dependencies for the chat command.
type ChatCommandDeps struct {
	LoadConfig func() (*config.CLIConfig, error)
	InitClient func(*config.CLIConfig) (*client.Client, error)
}

// DefaultChatDeps returns the default dependencies for production use.
func DefaultChatDeps() *ChatCommandDeps {
	return &ChatCommandDeps{
		LoadConfig: loadConfigWithFlags,
		InitClient: initClient,
	}
}

// staticFaqs backs the faqs page before any video has been analyzed.
var staticFaqs = []session.FaqEntry{
	{Question: "What does vidscribe do?", Answer: "It turns a video into a transcript, documentation sections, and FAQs you can explore and question."},
	{Question: "What videos can I analyze?", Answer: "Streaming platform URLs or local video files (uploaded to the service)."},
	{Question: "How do I jump the video to a section?", Answer: "Use /play <n> on a documentation section, or /seek <time>."},
}

// NewChatCommand creates the chat command.
func NewChatCommand(deps *ChatCommandDeps) *cobra.Command {
	if deps == nil {
		deps = DefaultChatDeps()
	}

	return &cobra.Command{
		Use:   "chat",
		Short: "Interactive session: analyze videos, explore results, ask questions",
		Long: `Chat starts an interactive session with the vidscribe assistant.

Type naturally: give it a video link to analyze, ask questions about the
current video, or ask it to show a section or page. Slash commands drive the
result views directly:

  /docs [n]     list documentation sections; n expands/collapses section n
  /faqs [n]     list FAQs; n expands/collapses entry n
  /transcript   print the transcript
  /play <n>     play the video from documentation section n
  /seek <time>  jump the video to a timestamp (seconds or HH:MM:SS)
  /status       show the current request status
  /help         show this list
  /quit         leave the session`,
		Example: `  vidscribe chat`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChat(cmd, deps)
		},
	}
}

func runChat(cmd *cobra.Command, deps *ChatCommandDeps) error {
	cfg, err := deps.LoadConfig()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	cli, err := deps.InitClient(cfg)
	if err != nil {
		return fmt.Errorf("initializing client: %w", err)
	}

	log := newLogger(cfg)
	store := session.NewStore()
	ctl := submit.NewController(store, cli, log)

	loader := playback.NewExecIntegrationLoader(cfg.PlayerCommand, log)
	resolver := playback.NewResolver(loader, playback.NewExecHostedFactory(cfg.PlayerCommand, log), log, sharedMetrics)
	defer resolver.Close()

	s := &chatSession{
		cfg:      cfg,
		store:    store,
		resolver: resolver,
		out:      cmd.OutOrStdout(),
		log:      log,
		renderMD: render.GoldmarkRenderer(),
		page:     intent.PageHome,
	}

	s.router = intent.NewRouter(intent.Config{
		Store: store,
		Classify: func(ctx context.Context, text string) (*intent.Classification, error) {
			cls, err := cli.Classify(ctx, text)
			if err != nil {
				return nil, err
			}
			return &intent.Classification{Intent: cls.Intent, Parameters: cls.Parameters}, nil
		},
		Answer: cli.AnswerQuestion,
		Submit: func(ctx context.Context, url string) error {
			return ctl.Submit(ctx, submit.Source{URL: url}, submit.Options{Language: cfg.Language})
		},
		Navigate: s.showPage,
		Scroll:   s.scrollTo,
		Log:      log,
		Metrics:  sharedMetrics,
	})

	return s.run(cmd.Context(), cmd.InOrStdin())
}

// chatSession holds the interactive session state.
type chatSession struct {
	cfg      *config.CLIConfig
	store    *session.Store
	router   *intent.Router
	resolver *playback.Resolver
	out      io.Writer
	log      logging.Logger
	renderMD render.MarkdownRenderer

	page          string
	attachedToken uint64
	printedTurns  int

	presenterToken uint64
	docs           *render.Presenter
	faqs           *render.Presenter
}

func (s *chatSession) run(ctx context.Context, in io.Reader) error {
	fmt.Fprintln(s.out, "Welcome to vidscribe. Give me a video link to analyze, or type /help.")

	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	for {
		fmt.Fprint(s.out, "> ")
		if !scanner.Scan() {
			break
		}
		if ctx.Err() != nil {
			break
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			s.syncSession(ctx)
			continue
		}

		if strings.HasPrefix(line, "/") {
			if quit := s.handleCommand(ctx, line); quit {
				break
			}
		} else {
			s.router.HandleUtterance(ctx, line)
		}

		s.syncSession(ctx)
	}

	// Let chat-initiated submissions finish before tearing the session down.
	s.router.Wait()
	return scanner.Err()
}

// syncSession prints new chat turns and attaches the player when a fresh
// result has arrived.
func (s *chatSession) syncSession(ctx context.Context) {
	s.flushTurns()

	token := s.store.CurrentToken()
	if token == s.attachedToken {
		return
	}
	result := s.store.Result()
	if result == nil {
		return
	}

	if err := s.resolver.Attach(ctx, token, result.Media); err != nil {
		s.log.Warn("attaching player", logging.Err(err))
	}
	s.attachedToken = token

	if soft := s.store.SoftError(); soft != "" {
		fmt.Fprintf(s.out, "Warning: %s\n", soft)
	}
	fmt.Fprintf(s.out, "Analysis ready: %s (%d transcript segments, %d sections, %d FAQs)\n",
		result.VideoTitle, len(result.Transcript), len(result.Documentation), len(result.Faqs))
}

// flushTurns prints chat turns added since the last flush.
func (s *chatSession) flushTurns() {
	turns := s.store.Turns()
	for ; s.printedTurns < len(turns); s.printedTurns++ {
		turn := turns[s.printedTurns]
		if turn.Sender == session.SenderUser {
			continue // The user already sees their own input.
		}
		fmt.Fprintf(s.out, "[bot] %s\n", turn.Text)
	}
}

// handleCommand executes one slash command, returning true to quit.
func (s *chatSession) handleCommand(ctx context.Context, line string) bool {
	fields := strings.Fields(line)
	cmdName, args := fields[0], fields[1:]

	switch cmdName {
	case "/quit", "/exit":
		return true

	case "/help":
		fmt.Fprintln(s.out, `Commands:
  /docs [n]     list documentation sections; n expands/collapses section n
  /faqs [n]     list FAQs; n expands/collapses entry n
  /transcript   print the transcript
  /play <n>     play the video from documentation section n
  /seek <time>  jump the video to a timestamp (seconds or HH:MM:SS)
  /status       show the current request status
  /quit         leave the session`)

	case "/status":
		s.showStatus()

	case "/transcript":
		s.showTranscript()

	case "/docs":
		s.togglePresenter(s.docsPresenter(), args, "documentation section")

	case "/faqs", "/faq":
		s.togglePresenter(s.faqPresenter(), args, "FAQ")

	case "/play":
		s.playSection(ctx, args)

	case "/seek":
		s.seekTo(ctx, args)

	default:
		fmt.Fprintf(s.out, "Unknown command %s; try /help.\n", cmdName)
	}
	return false
}

func (s *chatSession) showStatus() {
	status, reason := s.store.Status()
	switch status {
	case session.StatusFailed:
		fmt.Fprintf(s.out, "Status: failed (%s)\n", reason)
	case session.StatusReady:
		result := s.store.Result()
		fmt.Fprintf(s.out, "Status: ready (%s)\n", result.VideoTitle)
		if soft := s.store.SoftError(); soft != "" {
			fmt.Fprintf(s.out, "Warning: %s\n", soft)
		}
	default:
		fmt.Fprintf(s.out, "Status: %s\n", status)
	}
}

func (s *chatSession) showTranscript() {
	result := s.store.Result()
	if !result.HasTranscript() {
		fmt.Fprintln(s.out, "No transcript yet; analyze a video first.")
		return
	}
	for _, seg := range result.Transcript {
		fmt.Fprintf(s.out, "[%s] %s\n", seg.FormattedTimestamp, seg.Text)
	}
}

// docsPresenter returns the documentation presenter for the current result,
// rebuilding it when a new result arrives.
func (s *chatSession) docsPresenter() *render.Presenter {
	s.refreshPresenters()
	return s.docs
}

func (s *chatSession) faqPresenter() *render.Presenter {
	s.refreshPresenters()
	return s.faqs
}

func (s *chatSession) refreshPresenters() {
	token := s.store.CurrentToken()
	if s.docs != nil && token == s.presenterToken {
		return
	}
	s.presenterToken = token

	result := s.store.Result()
	if result != nil {
		s.docs = render.NewPresenter(render.DocsItems(result.Documentation, s.renderMD))
		s.faqs = render.NewPresenter(render.FaqItems(result.Faqs))
		return
	}
	s.docs = render.NewPresenter(nil)
	s.faqs = render.NewPresenter(render.FaqItems(staticFaqs))
}

func (s *chatSession) togglePresenter(p *render.Presenter, args []string, what string) {
	if p.Len() == 0 {
		fmt.Fprintf(s.out, "No %ss to show yet.\n", what)
		return
	}

	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n < 1 || n > p.Len() {
			fmt.Fprintf(s.out, "Pick a %s between 1 and %d.\n", what, p.Len())
			return
		}
		p.Toggle(n - 1)
	}
	if err := p.Render(s.out); err != nil {
		s.log.Warn("rendering list", logging.Err(err))
	}
}

// playSection seeks the video to the timestamp of documentation section n.
func (s *chatSession) playSection(ctx context.Context, args []string) {
	result := s.store.Result()
	if result == nil || len(result.Documentation) == 0 {
		fmt.Fprintln(s.out, "No documentation sections yet; analyze a video first.")
		return
	}
	if len(args) == 0 {
		fmt.Fprintln(s.out, "Usage: /play <section-number>")
		return
	}
	n, err := strconv.Atoi(args[0])
	if err != nil || n < 1 || n > len(result.Documentation) {
		fmt.Fprintf(s.out, "Pick a section between 1 and %d.\n", len(result.Documentation))
		return
	}

	sec := result.Documentation[n-1]
	s.seek(ctx, sec.TimestampSeconds)
}

func (s *chatSession) seekTo(ctx context.Context, args []string) {
	if len(args) == 0 {
		fmt.Fprintln(s.out, "Usage: /seek <seconds or HH:MM:SS>")
		return
	}
	seconds, err := parseTimestamp(args[0])
	if err != nil {
		fmt.Fprintf(s.out, "Couldn't read %q as a timestamp.\n", args[0])
		return
	}
	s.seek(ctx, seconds)
}

func (s *chatSession) seek(ctx context.Context, seconds float64) {
	err := s.resolver.Seek(ctx, s.store.CurrentToken(), seconds)
	switch {
	case err == nil:
		fmt.Fprintf(s.out, "Playing from %s.\n", session.FormatTimestamp(seconds))
	case vserrors.IsPlayerNotReady(err):
		fmt.Fprintln(s.out, "The player isn't ready yet; try again in a moment.")
	default:
		fmt.Fprintf(s.out, "Couldn't control the player: %v\n", err)
	}
}

// showPage is the router's navigation target.
func (s *chatSession) showPage(page string) {
	s.page = page
	fmt.Fprintf(s.out, "--- %s ---\n", page)
	if page == intent.PageFaqs {
		s.togglePresenter(s.faqPresenter(), nil, "FAQ")
	}
}

// scrollTo is the router's scroll target: it reports whether the section
// exists for the current result and prints it when it does.
func (s *chatSession) scrollTo(section string) bool {
	result := s.store.Result()
	switch section {
	case "transcript":
		if !result.HasTranscript() {
			return false
		}
		s.showTranscript()
		return true
	case "documentation":
		if result == nil || len(result.Documentation) == 0 {
			return false
		}
		s.togglePresenter(s.docsPresenter(), nil, "documentation section")
		return true
	case "faqs":
		if result == nil || len(result.Faqs) == 0 {
			return false
		}
		s.togglePresenter(s.faqPresenter(), nil, "FAQ")
		return true
	default:
		return false
	}
}

// parseTimestamp reads "90", "1:30", or "00:01:30" into seconds.
func parseTimestamp(raw string) (float64, error) {
	parts := strings.Split(raw, ":")
	if len(parts) > 3 {
		return 0, fmt.Errorf("too many components in %q", raw)
	}

	var seconds float64
	for _, part := range parts {
		n, err := strconv.ParseFloat(part, 64)
		if err != nil || n < 0 {
			return 0, fmt.Errorf("invalid timestamp component %q", part)
		}
		seconds = seconds*60 + n
	}
	return seconds, nil
}
