package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/tehprofessor/corg/internal/logging"
	"github.com/tehprofessor/corg/internal/ui/pretty"
	"github.com/tehprofessor/corg/pkg/config"
	"github.com/tehprofessor/corg/pkg/fsutil"
	"github.com/tehprofessor/corg/pkg/runner"
)

func newListCommand(info BuildInfo) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:     "list [paths...]",
		Aliases: []string{"ls"},
		Short:   "List runbooks and the state of their scripts",
		Long: `List runbooks with their function count, modification time, size,
content hash and the state of their generated script:

  ok       the script matches the runbook
  stale    the script differs from what the runbook generates
  missing  no script has been generated yet
  error    the runbook could not be converted

Nothing is written.`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCfg := &config.Config{Check: true}
			if cmd.Flags().Changed("out") {
				cliCfg.OutputDir = out
			}
			return runList(cmd, args, info.Version, cliCfg)
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "directory holding generated scripts (default \"scripts\")")

	return cmd
}

func runList(cmd *cobra.Command, args []string, version string, cliCfg *config.Config) error {
	sess, err := newSession(cmd, version, cliCfg)
	if err != nil {
		return err
	}

	paths, err := sess.resolveDocuments(args)
	if err != nil {
		return err
	}

	result, err := runner.New(sess.converter()).Run(sess.ctx, sess.runnerOptions(paths))
	if err != nil {
		return errors.Join(errors.New("list runbooks failed"), err)
	}

	rows := make([]pretty.DocumentRow, 0, len(result.Files))
	for _, file := range result.Files {
		row, err := sess.documentRow(file)
		if err != nil {
			return err
		}
		rows = append(rows, row)
	}

	w := cmd.OutOrStdout()
	if len(rows) == 0 {
		_, err := io.WriteString(w, styles(cmd).FormatSummaryOneLine(result.Stats))
		return err
	}

	table := pretty.NewTableFormatter(styles(cmd), pretty.TerminalWidth(w))
	if _, err := io.WriteString(w, table.FormatDocuments(rows, time.Now())); err != nil {
		return fmt.Errorf("write table: %w", err)
	}
	return nil
}

func (s *session) documentRow(file runner.FileOutcome) (pretty.DocumentRow, error) {
	_, info, err := fsutil.ReadFile(s.ctx, file.Path)
	if err != nil {
		return pretty.DocumentRow{}, fmt.Errorf("read runbook: %w", err)
	}

	row := pretty.DocumentRow{
		Document: displayPath(file.Path, s.workDir),
		Modified: info.ModTime,
		Size:     info.Size,
		Hash:     info.ShortHash(),
	}

	switch {
	case file.Error != nil:
		row.Status = pretty.StatusError
		s.logger.Warn("conversion failed", logging.FieldPath, row.Document, logging.FieldError, file.Error)
		return row, nil
	case !file.Outcome.Stale:
		row.Status = pretty.StatusOK
	case scriptExists(file.Outcome.Script):
		row.Status = pretty.StatusStale
	default:
		row.Status = pretty.StatusMissing
	}
	row.Functions = len(file.Outcome.Functions)

	return row, nil
}

func scriptExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
