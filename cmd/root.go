// Package cmd provides CLI commands for the vidscribe tool.
package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/vidscribe/vidscribe-cli/client"
	"github.com/vidscribe/vidscribe-cli/config"
	"github.com/vidscribe/vidscribe-cli/credentials"
	"github.com/vidscribe/vidscribe-cli/pkg/logging"
	"github.com/vidscribe/vidscribe-cli/pkg/observability"
)

// Global flags shared by all commands.
var (
	flagServiceURL string
	flagTimeout    time.Duration
	flagOutput     string
	flagDebug      bool
)

// sharedMetrics is registered once on the default registry for the process.
var sharedMetrics = observability.DefaultMetrics()

// NewRootCommand creates the vidscribe root command with all subcommands.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "vidscribe",
		Short: "Vidscribe CLI - turn videos into searchable documentation",
		Long: `vidscribe is the command-line client for the vidscribe video analysis
service. Point it at a video URL or file and it produces a full transcript,
generated documentation sections, and FAQs, then lets you explore the result:
jump the video to any documentation section, expand FAQs, and ask questions
about the content in a chat session.

COMMON WORKFLOWS:
  Analyze a video:   vidscribe analyze https://www.youtube.com/watch?v=...
  Analyze a file:    vidscribe analyze ./recording.mp4 --language de
  Explore in chat:   vidscribe chat
  Configure:         vidscribe config init  →  edit ~/.vidscribe/config.yaml
  Authenticate:      vidscribe auth set

Use --output json on any command for machine-readable results.`,
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&flagServiceURL, "service-url", "", "analysis service base URL (overrides config)")
	root.PersistentFlags().DurationVar(&flagTimeout, "timeout", 0, "request timeout (overrides config)")
	root.PersistentFlags().StringVarP(&flagOutput, "output", "o", "", "output format: text, json, or yaml")
	root.PersistentFlags().BoolVar(&flagDebug, "debug", false, "enable debug logging")

	root.AddCommand(NewAnalyzeCommand(nil))
	root.AddCommand(NewChatCommand(nil))
	root.AddCommand(NewConfigCommand(nil))
	root.AddCommand(NewAuthCommand(nil))
	root.AddCommand(NewVersionCommand())

	return root
}

// loadConfigWithFlags loads the configuration and applies global flag
// overrides on top.
func loadConfigWithFlags() (*config.CLIConfig, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}

	if flagServiceURL != "" {
		cfg.ServiceURL = flagServiceURL
	}
	if flagTimeout != 0 {
		cfg.Timeout = flagTimeout
	}
	if flagOutput != "" {
		cfg.OutputFormat = config.OutputFormat(flagOutput)
		if !cfg.OutputFormat.IsValid() {
			return nil, fmt.Errorf("invalid output format %q (must be text, json, or yaml)", flagOutput)
		}
	}
	if flagDebug {
		cfg.Debug = true
	}
	return cfg, nil
}

// newLogger creates the CLI logger for the loaded configuration.
func newLogger(cfg *config.CLIConfig) logging.Logger {
	level := logging.LevelWarn
	if cfg.Debug {
		level = logging.LevelDebug
	}
	return logging.NewLogger(&logging.Config{
		Level:     level,
		Component: "vidscribe",
		Output:    os.Stderr,
	})
}

// initClient builds the service client from the configuration, picking up a
// stored API key when one exists.
func initClient(cfg *config.CLIConfig) (*client.Client, error) {
	return client.New(cfg.ServiceURL, &client.Options{
		Timeout: cfg.Timeout,
		APIKey:  loadAPIKey(),
		Logger:  newLogger(cfg),
		Metrics: sharedMetrics,
		Tracer:  observability.NewTracer(),
	})
}

// loadAPIKey returns the configured API key, or empty when none is stored.
// A missing key is not an error; the service may run without auth.
func loadAPIKey() string {
	if key := os.Getenv("VIDSCRIBE_API_KEY"); key != "" {
		return key
	}
	store, err := credentials.NewStore()
	if err != nil {
		return ""
	}
	key, err := store.LoadAPIKey()
	if err != nil {
		return ""
	}
	return key
}
