package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vidscribe/vidscribe-cli/config"
	"github.com/vidscribe/vidscribe-cli/credentials"
)

// AuthCommandDeps holds the dependencies for auth commands.
type AuthCommandDeps struct {
	LoadConfig func() (*config.CLIConfig, error)
	NewStore   func() (*credentials.Store, error)

	// ReadSecret reads the API key from the user; overridden in tests.
	ReadSecret func(cmd *cobra.Command) (string, error)
}

// DefaultAuthDeps returns the default dependencies for production use.
func DefaultAuthDeps() *AuthCommandDeps {
	return &AuthCommandDeps{
		LoadConfig: loadConfigWithFlags,
		NewStore:   credentials.NewStore,
		ReadSecret: readSecret,
	}
}

// NewAuthCommand creates the auth command with all subcommands.
func NewAuthCommand(deps *AuthCommandDeps) *cobra.Command {
	if deps == nil {
		deps = DefaultAuthDeps()
	}

	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage the analysis service API key",
		Long: `Auth stores the API key for the analysis service. The key is encrypted at
rest; the encryption key lives in the system keyring. Set VIDSCRIBE_API_KEY
to bypass the store entirely (for CI).`,
		Example: `  # Store an API key (prompted, not echoed)
  vidscribe auth set

  # Check what is stored
  vidscribe auth show

  # Remove the stored key
  vidscribe auth clear`,
	}

	cmd.AddCommand(newAuthSetCommand(deps))
	cmd.AddCommand(newAuthShowCommand(deps))
	cmd.AddCommand(newAuthClearCommand(deps))

	return cmd
}

func newAuthSetCommand(deps *AuthCommandDeps) *cobra.Command {
	return &cobra.Command{
		Use:   "set",
		Short: "Store the API key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := deps.LoadConfig()
			if err != nil {
				return fmt.Errorf("loading configuration: %w", err)
			}

			key, err := deps.ReadSecret(cmd)
			if err != nil {
				return err
			}
			if key == "" {
				return errors.New("no API key entered")
			}

			store, err := deps.NewStore()
			if err != nil {
				return fmt.Errorf("opening credential store: %w", err)
			}
			if err := store.SaveAPIKey(key, cfg.ServiceURL); err != nil {
				return fmt.Errorf("saving API key: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "API key stored (%s).\n", store.KeyStorageDescription())
			return nil
		},
	}
}

func newAuthShowCommand(deps *AuthCommandDeps) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show stored credential metadata",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			if os.Getenv("VIDSCRIBE_API_KEY") != "" {
				fmt.Fprintln(out, "Using API key from VIDSCRIBE_API_KEY environment variable.")
				return nil
			}

			store, err := deps.NewStore()
			if err != nil {
				return fmt.Errorf("opening credential store: %w", err)
			}

			info, err := store.Info()
			if errors.Is(err, credentials.ErrNoCredentials) {
				fmt.Fprintln(out, "No API key stored. Run 'vidscribe auth set'.")
				return nil
			}
			if err != nil {
				return err
			}

			fmt.Fprintf(out, "API key:     stored (encrypted, %s)\n", store.KeyStorageDescription())
			if info.ServiceURL != "" {
				fmt.Fprintf(out, "Service URL: %s\n", info.ServiceURL)
			}
			fmt.Fprintf(out, "Updated:     %s\n", info.LastUpdated.Format("2006-01-02 15:04:05 MST"))
			return nil
		},
	}
}

func newAuthClearCommand(deps *AuthCommandDeps) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove the stored API key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := deps.NewStore()
			if err != nil {
				return fmt.Errorf("opening credential store: %w", err)
			}

			if err := store.Delete(); err != nil {
				if errors.Is(err, credentials.ErrNoCredentials) {
					fmt.Fprintln(cmd.OutOrStdout(), "No API key stored.")
					return nil
				}
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), "API key removed.")
			return nil
		},
	}
}

// readSecret prompts for the API key without echoing when stdin is a
// terminal, falling back to a plain line read otherwise.
func readSecret(cmd *cobra.Command) (string, error) {
	fmt.Fprint(cmd.OutOrStdout(), "API key: ")

	if f, ok := cmd.InOrStdin().(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		key, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(cmd.OutOrStdout())
		if err != nil {
			return "", fmt.Errorf("reading API key: %w", err)
		}
		return strings.TrimSpace(string(key)), nil
	}

	reader := bufio.NewReader(cmd.InOrStdin())
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("reading API key: %w", err)
	}
	return strings.TrimSpace(line), nil
}
