package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tehprofessor/corg/internal/logging"
	"github.com/tehprofessor/corg/pkg/config"
	"github.com/tehprofessor/corg/pkg/helper"
	"github.com/tehprofessor/corg/pkg/reporter"
	"github.com/tehprofessor/corg/pkg/runner"
)

type convertFlags struct {
	out     string
	flavor  string
	format  string
	ignore  []string
	compact bool
}

func newConvertCommand(info BuildInfo) *cobra.Command {
	var cfg config.Config
	flags := &convertFlags{}

	cmd := &cobra.Command{
		Use:     "convert [paths|names...]",
		Aliases: []string{"c"},
		Short:   "Convert Markdown runbooks into shell scripts",
		Long:    convertLongDescription,
		Args:    cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(cmd, args, info.Version, &cfg, flags)
		},
	}

	addConvertFlags(cmd, &cfg, flags)

	return cmd
}

const convertLongDescription = `Convert Markdown runbooks into shell scripts.

By default, converts every .md and .markdown file below the current
directory. Each runbook is written to <output_dir>/<name>.sh and the helper
library is written to <output_dir>/<helper_path>.

An argument that is not an existing path is taken as a runbook name and
searched for below the current directory.

Examples:
  corg convert                      # Convert every runbook
  corg convert deploy               # Convert deploy.md, wherever it lives
  corg convert docs/ --out bin      # Write scripts to bin/
  corg convert --dry-run deploy     # Print the script instead of writing it
  corg convert --check              # Exit 2 if any script is out of date
  corg convert --format json        # Machine-readable results for CI`

func runConvert(cmd *cobra.Command, args []string, version string, cfg *config.Config, flags *convertFlags) error {
	// Only set values that were explicitly provided via CLI flags.
	if cmd.Flags().Changed("out") {
		cfg.OutputDir = flags.out
	}
	if cmd.Flags().Changed("flavor") {
		cfg.Flavor = config.Flavor(flags.flavor)
	}
	if cmd.Flags().Changed("ignore") {
		cfg.Ignore = flags.ignore
	}

	format, err := reporter.ParseFormat(flags.format)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidUsage, err)
	}

	sess, err := newSession(cmd, version, cfg)
	if err != nil {
		return err
	}
	if sess.cfg.Check && sess.cfg.DryRun {
		return fmt.Errorf("%w: --check and --dry-run are mutually exclusive", ErrInvalidUsage)
	}

	paths, err := sess.resolveDocuments(args)
	if err != nil {
		return err
	}

	opts := sess.runnerOptions(paths)
	sess.logger.Debug("starting conversion",
		logging.FieldPaths, opts.Paths,
		logging.FieldWorkingDir, opts.WorkingDir,
		logging.FieldJobs, opts.Jobs,
	)

	result, err := runner.New(sess.converter()).Run(sess.ctx, opts)
	if err != nil {
		return errors.Join(errors.New("conversion run failed"), err)
	}

	if !sess.cfg.Check && !sess.cfg.DryRun {
		if err := sess.writeHelper(result); err != nil {
			return err
		}
	}

	sess.reportFiles(result)

	rep, err := reporter.New(reporter.Options{
		Writer:      cmd.OutOrStdout(),
		ErrorWriter: cmd.ErrOrStderr(),
		Format:      format,
		Color:       colorMode(cmd),
		Scripts:     sess.cfg.DryRun,
		ShowSummary: !sess.cfg.DryRun,
		Compact:     flags.compact,
		WorkingDir:  sess.workDir,
	})
	if err != nil {
		return fmt.Errorf("create reporter: %w", err)
	}
	if err := rep.Report(sess.ctx, result); err != nil {
		return fmt.Errorf("report results: %w", err)
	}

	switch {
	case result.HasErrors():
		return ErrConversionFailed
	case sess.cfg.Check && result.HasStale():
		return ErrStaleScripts
	}
	return nil
}

// writeHelper writes the helper library when at least one runbook was
// found and the configuration allows it.
func (s *session) writeHelper(result *runner.Result) error {
	if !s.cfg.HelperEnabled() || result.Stats.FilesDiscovered == 0 {
		return nil
	}
	path := s.helperPath()
	written, err := helper.Write(s.ctx, path)
	if err != nil {
		return err
	}
	s.logger.Debug("helper library", logging.FieldPath, path, logging.FieldWritten, written)
	return nil
}

// reportFiles logs one line per runbook that failed or changed.
func (s *session) reportFiles(result *runner.Result) {
	for _, file := range result.Files {
		path := displayPath(file.Path, s.workDir)
		switch {
		case file.Error != nil:
			s.logger.Error("conversion failed", logging.FieldPath, path, logging.FieldError, file.Error)
		case file.Outcome.Written:
			s.logger.Info("wrote script",
				logging.FieldPath, path,
				logging.FieldOutput, displayPath(file.Outcome.Script, s.workDir),
				logging.FieldFunctions, len(file.Outcome.Functions),
			)
		case file.Outcome.Stale:
			s.logger.Warn("script is out of date",
				logging.FieldPath, path,
				logging.FieldOutput, displayPath(file.Outcome.Script, s.workDir),
			)
		}
	}
}

func addConvertFlags(cmd *cobra.Command, cfg *config.Config, flags *convertFlags) {
	cmd.Flags().StringVarP(&flags.out, "out", "o", "", "directory for generated scripts (default \"scripts\")")
	cmd.Flags().BoolVar(&cfg.Check, "check", false, "report out-of-date scripts without writing them")
	cmd.Flags().BoolVar(&cfg.DryRun, "dry-run", false, "print generated scripts instead of writing them")
	cmd.Flags().IntVar(&cfg.Jobs, "jobs", 0, "number of parallel workers (0 = auto)")
	cmd.Flags().StringSliceVar(&flags.ignore, "ignore", nil, "glob patterns to ignore")
	cmd.Flags().StringVar(&flags.flavor, "flavor", "gfm", "Markdown flavor: gfm, commonmark")
	cmd.Flags().BoolVar(&cfg.NoHelper, "no-helper", false, "do not write the helper library")
	cmd.Flags().StringVar(&flags.format, "format", "text", "output format: text, json, summary")
	cmd.Flags().BoolVar(&flags.compact, "compact", false, "minified JSON output")
}
