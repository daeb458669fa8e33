package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/vidscribe/vidscribe-cli/client"
	"github.com/vidscribe/vidscribe-cli/config"
	"github.com/vidscribe/vidscribe-cli/pkg/render"
	"github.com/vidscribe/vidscribe-cli/pkg/session"
	"github.com/vidscribe/vidscribe-cli/pkg/submit"
)

// Analyze command flags
var (
	analyzeLanguage string
)

// AnalyzeCommandDeps holds the dependencies for the analyze command.
type AnalyzeCommandDeps struct {
	LoadConfig func() (*config.CLIConfig, error)
	InitClient func(*config.CLIConfig) (*client.Client, error)

	// Mock function override for testing
	AnalyzeFn func(ctx context.Context, req *client.AnalyzeRequest) (*client.AnalyzeResult, error)
}

// DefaultAnalyzeDeps returns the default dependencies for production use.
func DefaultAnalyzeDeps() *AnalyzeCommandDeps {
	return &AnalyzeCommandDeps{
		LoadConfig: loadConfigWithFlags,
		InitClient: initClient,
	}
}

// analyzeFnAPI adapts a mock analyze function to the submit.API interface.
type analyzeFnAPI func(ctx context.Context, req *client.AnalyzeRequest) (*client.AnalyzeResult, error)

func (f analyzeFnAPI) Analyze(ctx context.Context, req *client.AnalyzeRequest) (*client.AnalyzeResult, error) {
	return f(ctx, req)
}

// NewAnalyzeCommand creates the analyze command.
func NewAnalyzeCommand(deps *AnalyzeCommandDeps) *cobra.Command {
	if deps == nil {
		deps = DefaultAnalyzeDeps()
	}

	cmd := &cobra.Command{
		Use:   "analyze <video-url-or-file>",
		Short: "Analyze a video into a transcript, documentation, and FAQs",
		Long: `Analyze submits a video to the analysis service and prints the result.

The argument is either a video URL (anything starting with http:// or
https://) or a path to a local video file to upload. Analysis can take
several minutes for long videos; the command waits for completion.

The service may fail individual sections (for example FAQ generation) while
still producing the rest; such soft failures are printed as a warning
alongside the partial result.`,
		Example: `  # Analyze a streaming platform video
  vidscribe analyze https://www.youtube.com/watch?v=dQw4w9WgXcQ

  # Upload and analyze a local recording in German
  vidscribe analyze ./standup.mp4 --language de

  # Machine-readable output
  vidscribe analyze https://youtu.be/dQw4w9WgXcQ --output json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd, deps, args[0])
		},
	}

	cmd.Flags().StringVarP(&analyzeLanguage, "language", "l", "", "transcription language tag (default from config)")

	return cmd
}

func runAnalyze(cmd *cobra.Command, deps *AnalyzeCommandDeps, source string) error {
	cfg, err := deps.LoadConfig()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	api, err := resolveAnalyzeAPI(deps, cfg)
	if err != nil {
		return err
	}

	lang := analyzeLanguage
	if lang == "" {
		lang = cfg.Language
	}

	store := session.NewStore()
	ctl := submit.NewController(store, api, newLogger(cfg))

	src := submit.Source{}
	if isURL(source) {
		src.URL = source
	} else {
		src.FilePath = source
	}

	fmt.Fprintln(cmd.ErrOrStderr(), "Analyzing video, this can take a few minutes...")
	if err := ctl.Submit(cmd.Context(), src, submit.Options{Language: lang}); err != nil {
		return err
	}

	return printAnalysis(cmd, cfg.OutputFormat, store.Result(), store.SoftError())
}

func resolveAnalyzeAPI(deps *AnalyzeCommandDeps, cfg *config.CLIConfig) (submit.API, error) {
	if deps.AnalyzeFn != nil {
		return analyzeFnAPI(deps.AnalyzeFn), nil
	}
	cli, err := deps.InitClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("initializing client: %w", err)
	}
	return cli, nil
}

// isURL reports whether the analyze argument addresses a remote video.
func isURL(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}

// printAnalysis writes the analysis result in the configured output format.
func printAnalysis(cmd *cobra.Command, format config.OutputFormat, result *session.AnalysisResult, softError string) error {
	out := cmd.OutOrStdout()

	switch format {
	case config.OutputFormatJSON:
		payload := struct {
			*session.AnalysisResult
			SoftError string `json:"soft_error,omitempty"`
		}{result, softError}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(payload)

	case config.OutputFormatYAML:
		payload := struct {
			Result    *session.AnalysisResult `yaml:"result"`
			SoftError string                  `yaml:"soft_error,omitempty"`
		}{result, softError}
		return yaml.NewEncoder(out).Encode(payload)

	default:
		if softError != "" {
			fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %s\n\n", softError)
		}
		if result == nil {
			fmt.Fprintln(out, "No result.")
			return nil
		}

		fmt.Fprintf(out, "%s\n%s\n\n", result.VideoTitle, strings.Repeat("=", len(result.VideoTitle)))

		if result.Media.Kind != session.MediaNone {
			fmt.Fprintf(out, "Playback: %s", result.Media.Kind)
			if result.Media.VideoID != "" {
				fmt.Fprintf(out, " (video %s)", result.Media.VideoID)
			}
			fmt.Fprintln(out)
		}
		fmt.Fprintf(out, "Transcript segments: %d\n\n", len(result.Transcript))

		if len(result.Documentation) > 0 {
			fmt.Fprintln(out, "Documentation")
			fmt.Fprintln(out, "-------------")
			renderMD := render.GoldmarkRenderer()
			for _, sec := range result.Documentation {
				fmt.Fprintf(out, "\n## %s [%s]\n", sec.Title, session.FormatTimestamp(sec.TimestampSeconds))
				body := sec.SummaryMarkup
				if rendered, err := renderMD(sec.SummaryMarkup); err == nil {
					body = rendered
				}
				fmt.Fprintln(out, body)
			}
			fmt.Fprintln(out)
		}

		if len(result.Faqs) > 0 {
			fmt.Fprintln(out, "FAQs")
			fmt.Fprintln(out, "----")
			for i, faq := range result.Faqs {
				fmt.Fprintf(out, "%d. %s\n   %s\n", i+1, faq.Question, faq.Answer)
			}
		}
		return nil
	}
}
