package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/tehprofessor/corg/internal/logging"
	"github.com/tehprofessor/corg/pkg/config"
	"github.com/tehprofessor/corg/pkg/convert"
	"github.com/tehprofessor/corg/pkg/runner"
	"github.com/tehprofessor/corg/pkg/watch"
)

func newWatchCommand(info BuildInfo) *cobra.Command {
	var out string
	var cfg config.Config

	cmd := &cobra.Command{
		Use:     "watch [paths...]",
		Aliases: []string{"w"},
		Short:   "Reconvert runbooks whenever they change",
		Long: `Convert every runbook once, then watch for changes and reconvert each
runbook as it is saved. Directories are watched recursively and new ones
are picked up as they appear. Stop with Ctrl-C.

Examples:
  corg watch               # Watch the current directory
  corg watch docs/ ops.md  # Watch a directory and a single runbook`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("out") {
				cfg.OutputDir = out
			}
			return runWatch(cmd, args, info.Version, &cfg)
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "directory for generated scripts (default \"scripts\")")
	cmd.Flags().BoolVar(&cfg.NoHelper, "no-helper", false, "do not write the helper library")

	return cmd
}

func runWatch(cmd *cobra.Command, args []string, version string, cliCfg *config.Config) error {
	sess, err := newSession(cmd, version, cliCfg)
	if err != nil {
		return err
	}

	paths, err := sess.resolveDocuments(args)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		paths = []string{sess.workDir}
	}

	conv := sess.converter()
	result, err := runner.New(conv).Run(sess.ctx, sess.runnerOptions(paths))
	if err != nil {
		return errors.Join(errors.New("initial conversion failed"), err)
	}
	if err := sess.writeHelper(result); err != nil {
		return err
	}
	sess.reportFiles(result)
	if _, err := io.WriteString(cmd.ErrOrStderr(), styles(cmd).FormatSummaryOneLine(result.Stats)); err != nil {
		return fmt.Errorf("write summary: %w", err)
	}

	watcher := watch.New(sess.cfg.Extensions)
	watcher.Skip = func(path string) bool {
		return runner.Excluded(path, sess.workDir, sess.cfg.Ignore)
	}

	sess.logger.Info("watching for changes", logging.FieldPaths, paths)

	return watcher.Run(sess.ctx, paths, func(ctx context.Context, path string) {
		outcome, err := conv.Convert(ctx, path, convert.Options{})
		display := displayPath(path, sess.workDir)
		if err != nil {
			sess.logger.Error("conversion failed", logging.FieldPath, display, logging.FieldError, err)
			return
		}
		if !outcome.Written {
			sess.logger.Debug("script unchanged", logging.FieldPath, display)
			return
		}
		sess.logger.Info("wrote script",
			logging.FieldPath, display,
			logging.FieldOutput, displayPath(outcome.Script, sess.workDir),
			logging.FieldFunctions, len(outcome.Functions),
		)
	})
}
