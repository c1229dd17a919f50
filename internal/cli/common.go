package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/tehprofessor/corg/internal/configloader"
	"github.com/tehprofessor/corg/internal/logging"
	"github.com/tehprofessor/corg/internal/ui/pretty"
	"github.com/tehprofessor/corg/pkg/config"
	"github.com/tehprofessor/corg/pkg/convert"
	"github.com/tehprofessor/corg/pkg/fsutil"
	goldmarkparser "github.com/tehprofessor/corg/pkg/parser/goldmark"
	"github.com/tehprofessor/corg/pkg/runner"
)

// session is the state shared by commands that work on runbooks.
type session struct {
	cfg     *config.Config
	workDir string
	logger  *log.Logger
	ctx     context.Context
}

// newSession loads the configuration with cliCfg layered on top and
// attaches the default logger to the command context.
func newSession(cmd *cobra.Command, version string, cliCfg *config.Config) (*session, error) {
	logger := logging.Default()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = logging.WithLogger(ctx, logger)

	// Get the explicit config path from the root command's persistent flag.
	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, fmt.Errorf("get config flag: %w", err)
	}

	workDir, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("get working directory: %w", err)
	}

	loadResult, err := configloader.Load(ctx, configloader.LoadOptions{
		WorkingDir:   workDir,
		ExplicitPath: configPath,
		Version:      version,
		CLIConfig:    cliCfg,
	})
	if err != nil {
		return nil, errors.Join(ErrConfig, err)
	}

	for _, warning := range loadResult.Warnings {
		logger.Warn(warning)
	}

	if len(loadResult.LoadedFrom) > 0 {
		logger.Debug("loaded configuration from", logging.FieldFiles, loadResult.LoadedFrom)
	}

	cfg := loadResult.Config
	logger.Debug("configuration loaded",
		logging.FieldOutput, cfg.OutputDir,
		logging.FieldFlavor, cfg.Flavor,
		logging.FieldCheck, cfg.Check,
		logging.FieldDryRun, cfg.DryRun,
		logging.FieldJobs, cfg.Jobs,
	)

	return &session{cfg: cfg, workDir: workDir, logger: logger, ctx: ctx}, nil
}

// converter builds the conversion pipeline from the configuration.
func (s *session) converter() *convert.Converter {
	conv := convert.New(goldmarkparser.New(string(s.cfg.Flavor)), s.cfg.OutputDir)
	conv.Backups = fsutil.BackupConfig{
		Enabled: s.cfg.Backups.Enabled,
		Mode:    fsutil.BackupMode(s.cfg.Backups.Mode),
	}
	return conv
}

// runnerOptions returns batch options for the resolved paths.
func (s *session) runnerOptions(paths []string) runner.Options {
	return runner.Options{
		Paths:        paths,
		WorkingDir:   s.workDir,
		Extensions:   s.cfg.Extensions,
		ExcludeGlobs: s.cfg.Ignore,
		Jobs:         s.cfg.Jobs,
		Convert: convert.Options{
			Check:  s.cfg.Check,
			DryRun: s.cfg.DryRun,
		},
	}
}

// helperPath is where the helper library lives.
func (s *session) helperPath() string {
	if filepath.IsAbs(s.cfg.HelperPath) {
		return s.cfg.HelperPath
	}
	return filepath.Join(s.cfg.OutputDir, s.cfg.HelperPath)
}

// resolveDocuments maps arguments to runbook paths. An argument that exists
// on disk is used as is; anything else is taken as a runbook name and
// searched for under the working directory with each configured extension.
func (s *session) resolveDocuments(args []string) ([]string, error) {
	paths := make([]string, 0, len(args))
	for _, arg := range args {
		if _, err := os.Stat(arg); err == nil {
			paths = append(paths, arg)
			continue
		}
		path, err := s.findRunbook(arg)
		if err != nil {
			return nil, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func (s *session) findRunbook(name string) (string, error) {
	extensions := s.cfg.Extensions
	if len(extensions) == 0 {
		extensions = runner.DefaultExtensions()
	}

	var lastErr error
	for _, ext := range extensions {
		path, err := runner.FindByName(s.ctx, s.workDir, name, ext)
		if err == nil {
			return path, nil
		}
		if !errors.Is(err, runner.ErrDocumentNotFound) {
			return "", err
		}
		lastErr = err
	}
	return "", lastErr
}

// colorMode returns the --color flag value.
func colorMode(cmd *cobra.Command) string {
	mode, err := cmd.Flags().GetString("color")
	if err != nil {
		return "auto"
	}
	return mode
}

// styles returns the output styles for the command's stdout.
func styles(cmd *cobra.Command) *pretty.Styles {
	return pretty.NewStyles(pretty.IsColorEnabled(colorMode(cmd), cmd.OutOrStdout()))
}

// displayPath shows path relative to workDir when it lies below it.
func displayPath(path, workDir string) string {
	rel, err := filepath.Rel(workDir, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return path
	}
	return rel
}
