package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tehprofessor/corg/internal/logging"
	"github.com/tehprofessor/corg/pkg/config"
	"github.com/tehprofessor/corg/pkg/convert"
	"github.com/tehprofessor/corg/pkg/execute"
	"github.com/tehprofessor/corg/pkg/fsutil"
	"github.com/tehprofessor/corg/pkg/helper"
	"github.com/tehprofessor/corg/pkg/runner"
)

type runFlags struct {
	host  string
	shell string
}

func newRunCommand(info BuildInfo) *cobra.Command {
	flags := &runFlags{}

	cmd := &cobra.Command{
		Use:   "run <script|runbook|name> [-- args...]",
		Short: "Run a generated script locally or over SSH",
		Long: `Run a generated script with the helper library bundled in front of it.

The argument may be a script, a runbook or a bare name. A name is looked up
as <output_dir>/<name>.sh first; when no script exists the runbook named
<name>.md is converted in memory. Runbooks given by path are always
converted in memory, so the script on disk is never consulted.

The script is streamed to '<shell> -s' on standard input and never written
to the target. Arguments after -- become the script's positional
parameters. With --host the script runs on a remote machine over SSH; the
host may be a name from the hosts list of the configuration or
[user@]address[:port].

Examples:
  corg run deploy                       # Run scripts/deploy.sh
  corg run docs/restore.md -- --force   # Convert and run with arguments
  corg run deploy --host web            # Run on the configured host "web"
  corg run deploy --host ops@10.0.0.5   # Run on an ad hoc host`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRun(cmd, args, info.Version, flags)
		},
	}

	cmd.Flags().StringVarP(&flags.host, "host", "H", "", "run on this host over SSH")
	cmd.Flags().StringVar(&flags.shell, "shell", "", "shell that runs the script (default from config, \"bash\")")

	return cmd
}

func runRun(cmd *cobra.Command, args []string, version string, flags *runFlags) error {
	cliCfg := &config.Config{Shell: flags.shell}

	sess, err := newSession(cmd, version, cliCfg)
	if err != nil {
		return err
	}

	if dash := cmd.ArgsLenAtDash(); dash > 1 {
		return fmt.Errorf("%w: expected one script before --, got %d", ErrInvalidUsage, dash)
	}
	if cmd.ArgsLenAtDash() < 0 && len(args) > 1 {
		return fmt.Errorf("%w: pass script arguments after --", ErrInvalidUsage)
	}

	script, source, err := sess.loadScript(args[0])
	if err != nil {
		return err
	}
	scriptArgs := args[1:]

	executor, target, closeFn, err := sess.executor(cmd, flags.host)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := closeFn(); cerr != nil {
			sess.logger.Debug("close ssh agent", logging.FieldError, cerr)
		}
	}()

	sess.logger.Info("running script",
		logging.FieldScript, displayPath(source, sess.workDir),
		logging.FieldHost, target,
		logging.FieldShell, sess.cfg.Shell,
		logging.FieldArgs, scriptArgs,
	)

	if err := executor.Run(sess.ctx, helper.Bundle(script), scriptArgs); err != nil {
		return fmt.Errorf("run %s: %w", displayPath(source, sess.workDir), err)
	}
	return nil
}

// loadScript returns the script to run for arg and the file it came from.
func (s *session) loadScript(arg string) ([]byte, string, error) {
	if _, err := os.Stat(arg); err == nil {
		if s.isRunbook(arg) {
			return s.convertInMemory(arg)
		}
		content, _, err := fsutil.ReadFile(s.ctx, arg)
		if err != nil {
			return nil, "", err
		}
		return content, arg, nil
	}

	name := strings.TrimSuffix(arg, convert.ScriptExt)
	scriptPath := filepath.Join(s.cfg.OutputDir, name+convert.ScriptExt)
	content, _, err := fsutil.ReadFile(s.ctx, scriptPath)
	if err == nil {
		return content, scriptPath, nil
	}
	if !errors.Is(err, fsutil.ErrNotFound) {
		return nil, "", err
	}

	doc, ferr := s.findRunbook(name)
	if ferr != nil {
		return nil, "", fmt.Errorf("no script %s and %w", scriptPath, ferr)
	}
	return s.convertInMemory(doc)
}

func (s *session) isRunbook(path string) bool {
	extensions := s.cfg.Extensions
	if len(extensions) == 0 {
		extensions = runner.DefaultExtensions()
	}
	return slices.Contains(extensions, strings.ToLower(filepath.Ext(path)))
}

func (s *session) convertInMemory(doc string) ([]byte, string, error) {
	outcome, err := s.converter().Convert(s.ctx, doc, convert.Options{DryRun: true})
	if err != nil {
		return nil, "", fmt.Errorf("convert %s: %w", doc, err)
	}
	s.logger.Debug("converted runbook for run",
		logging.FieldPath, doc,
		logging.FieldFunctions, len(outcome.Functions),
	)
	return outcome.Output, doc, nil
}

// executor picks a local or remote executor. The returned close function
// releases the SSH agent connection, if any.
func (s *session) executor(cmd *cobra.Command, host string) (execute.Executor, string, func() error, error) {
	noop := func() error { return nil }

	if host == "" {
		return &execute.Local{
			Shell:  s.cfg.Shell,
			Stdout: cmd.OutOrStdout(),
			Stderr: cmd.ErrOrStderr(),
		}, "local", noop, nil
	}

	target, err := execute.ResolveTarget(host, s.cfg)
	if err != nil {
		return nil, "", noop, fmt.Errorf("%w: %w", ErrInvalidUsage, err)
	}

	clientCfg, closeFn, err := execute.NewClientConfig(s.cfg.SSH, target.User)
	if err != nil {
		return nil, "", noop, err
	}

	return &execute.Remote{
		Target:       target,
		Shell:        s.cfg.Shell,
		ClientConfig: clientCfg,
		Stdout:       cmd.OutOrStdout(),
		Stderr:       cmd.ErrOrStderr(),
	}, target.String(), closeFn, nil
}
