package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/vidscribe/vidscribe-cli/config"
	"github.com/vidscribe/vidscribe-cli/pkg/buildinfo"
)

// NewVersionCommand creates the version command.
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			info := buildinfo.Get()
			out := cmd.OutOrStdout()

			switch config.OutputFormat(flagOutput) {
			case config.OutputFormatJSON:
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(info)
			case config.OutputFormatYAML:
				return yaml.NewEncoder(out).Encode(info)
			default:
				fmt.Fprintf(out, "vidscribe %s\n", buildinfo.String())
				fmt.Fprintf(out, "go: %s\n", info.GoVersion)
				return nil
			}
		},
	}
}
