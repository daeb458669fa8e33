package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/vidscribe/vidscribe-cli/config"
)

// ConfigCommandDeps holds the dependencies for config commands.
type ConfigCommandDeps struct {
	LoadConfig func() (*config.CLIConfig, error)
	SaveConfig func(*config.CLIConfig) error
}

// DefaultConfigDeps returns the default dependencies for production use.
func DefaultConfigDeps() *ConfigCommandDeps {
	return &ConfigCommandDeps{
		LoadConfig: loadConfigWithFlags,
		SaveConfig: config.SaveConfig,
	}
}

// NewConfigCommand creates the config command with all subcommands.
func NewConfigCommand(deps *ConfigCommandDeps) *cobra.Command {
	if deps == nil {
		deps = DefaultConfigDeps()
	}

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage CLI configuration",
		Long: `Config shows and initializes the vidscribe configuration.

Settings come from ~/.vidscribe/config.yaml, overridden by VIDSCRIBE_*
environment variables, overridden by command-line flags.`,
		Example: `  # Show the effective configuration
  vidscribe config show

  # Write a default config file to edit
  vidscribe config init`,
	}

	cmd.AddCommand(newConfigShowCommand(deps))
	cmd.AddCommand(newConfigInitCommand(deps))

	return cmd
}

func newConfigShowCommand(deps *ConfigCommandDeps) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := deps.LoadConfig()
			if err != nil {
				return fmt.Errorf("loading configuration: %w", err)
			}

			out := cmd.OutOrStdout()
			switch cfg.OutputFormat {
			case config.OutputFormatJSON:
				payload := map[string]interface{}{
					"service_url":    cfg.ServiceURL,
					"timeout":        cfg.Timeout.String(),
					"output_format":  cfg.OutputFormat.String(),
					"language":       cfg.Language,
					"player_command": cfg.PlayerCommand,
					"debug":          cfg.Debug,
				}
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(payload)
			case config.OutputFormatYAML:
				return yaml.NewEncoder(out).Encode(cfg)
			default:
				fmt.Fprintf(out, "service_url:    %s\n", cfg.ServiceURL)
				fmt.Fprintf(out, "timeout:        %s\n", cfg.Timeout)
				fmt.Fprintf(out, "output_format:  %s\n", cfg.OutputFormat)
				fmt.Fprintf(out, "language:       %s\n", cfg.Language)
				fmt.Fprintf(out, "player_command: %s\n", cfg.PlayerCommand)
				fmt.Fprintf(out, "debug:          %t\n", cfg.Debug)
				return nil
			}
		},
	}
}

func newConfigInitCommand(deps *ConfigCommandDeps) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Write a default configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.ConfigPath()
			if err != nil {
				return err
			}

			if _, err := os.Stat(path); err == nil {
				return fmt.Errorf("config file already exists at %s", path)
			}

			if err := deps.SaveConfig(config.DefaultConfig()); err != nil {
				return fmt.Errorf("writing config: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Wrote default configuration to %s\n", path)
			return nil
		},
	}
}
