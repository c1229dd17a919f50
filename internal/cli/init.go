package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/tehprofessor/corg/internal/configloader"
	"github.com/tehprofessor/corg/internal/logging"
	"github.com/tehprofessor/corg/pkg/config"
	"github.com/tehprofessor/corg/pkg/helper"
)

// configFilePermissions is the file mode for configuration files (world-readable).
const configFilePermissions = 0o644

// initFlags holds the flags for the init command.
type initFlags struct {
	force    bool
	output   string
	noHelper bool
}

func newInitCommand() *cobra.Command {
	flags := &initFlags{}

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a new corg configuration file",
		Long: `Create a .corg.yml configuration file in the current directory with every
setting at its default, and write the helper library to
scripts/utils/corg-logger.sh.

Examples:
  corg init                       Create .corg.yml and the helper library
  corg init --no-helper           Create .corg.yml only
  corg init --output ops.yml      Write to a custom file path`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runInit(cmd, flags)
		},
	}

	cmd.Flags().BoolVarP(&flags.force, "force", "f", false, "Overwrite existing configuration file")
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "Output file path (default: .corg.yml)")
	cmd.Flags().BoolVar(&flags.noHelper, "no-helper", false, "Do not write the helper library")

	return cmd
}

func runInit(cmd *cobra.Command, flags *initFlags) error {
	logger := logging.NewInteractive()

	outputPath := flags.output
	if outputPath == "" {
		outputPath = configloader.ProjectConfigFiles[0]
	}

	absPath, err := filepath.Abs(outputPath)
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}

	if _, err := os.Stat(absPath); err == nil {
		if !flags.force && !confirmOverwrite(cmd.InOrStdin(), cmd.ErrOrStderr(), outputPath) {
			return fmt.Errorf("%w: file %q already exists; use --force to overwrite", ErrInvalidUsage, outputPath)
		}
		logger.Warn("overwriting existing file", logging.FieldPath, outputPath)
	}

	if err := os.WriteFile(absPath, config.GenerateTemplate(), configFilePermissions); err != nil {
		return fmt.Errorf("write file: %w", err)
	}
	logger.Info("created configuration file", logging.FieldPath, outputPath)

	if !flags.noHelper {
		defaults := config.NewConfig()
		helperPath := filepath.Join(filepath.Dir(absPath), defaults.OutputDir, defaults.HelperPath)
		if _, err := helper.Write(cmd.Context(), helperPath); err != nil {
			return err
		}
		logger.Info("wrote helper library", logging.FieldPath, displayPath(helperPath, filepath.Dir(absPath)))
	}

	logger.Info("customize your configuration by editing the file")
	logger.Info("run 'corg convert' to generate scripts")

	return nil
}

// confirmOverwrite asks before replacing an existing file. Without a
// terminal on stdin the answer is no.
func confirmOverwrite(stdin io.Reader, prompt io.Writer, path string) bool {
	f, ok := stdin.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return false
	}
	fmt.Fprintf(prompt, "%s already exists. Overwrite? [y/N] ", path)
	answer, err := bufio.NewReader(stdin).ReadString('\n')
	if err != nil {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}
