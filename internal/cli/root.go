// Package cli provides the Cobra command structure for corg.
package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/tehprofessor/corg/internal/logging"
)

// BuildInfo holds build-time version information.
type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

// NewRootCommand creates the root corg command with all subcommands.
func NewRootCommand(info BuildInfo) *cobra.Command {
	var debug bool
	var configPath string
	var color string

	rootCmd := &cobra.Command{
		Use:   "corg",
		Short: "Turn Markdown runbooks into runnable shell scripts",
		Long: `corg turns Markdown runbooks into runnable shell scripts.

Every level-2 heading of a runbook becomes a shell function and every code
block under it becomes that function's body. Prose is kept as debug logging
so a script explains itself as it runs. Generated scripts end by calling
their functions in document order.

Scripts log through a small helper library that corg writes next to them.
'corg run' bundles the helper with a script and runs it locally or on a
remote host over SSH.`,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			if debug {
				logging.SetLevel("debug")
			}
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags.
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config file")
	rootCmd.PersistentFlags().StringVar(&color, "color", "auto",
		"colorize output: auto, always, never")

	// Add subcommands.
	rootCmd.AddCommand(newConvertCommand(info))
	rootCmd.AddCommand(newRunCommand(info))
	rootCmd.AddCommand(newListCommand(info))
	rootCmd.AddCommand(newWatchCommand(info))
	rootCmd.AddCommand(newInitCommand())
	rootCmd.AddCommand(newVersionCommand(info))

	// Apply styled help formatting.
	helpFormatter := NewHelpFormatter(color, os.Stdout)
	helpFormatter.ApplyToCommand(rootCmd)

	return rootCmd
}
