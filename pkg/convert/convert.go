// Package convert runs the single-document pipeline: load a runbook, parse
// it, transpile it to a shell script, then diff or write the result.
package convert

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tehprofessor/corg/internal/logging"
	"github.com/tehprofessor/corg/pkg/fsutil"
	"github.com/tehprofessor/corg/pkg/langdetect"
	"github.com/tehprofessor/corg/pkg/parser/goldmark"
	"github.com/tehprofessor/corg/pkg/shell"
)

// ScriptExt is the extension of generated scripts.
const ScriptExt = ".sh"

// DetectFunc resolves the language of a code block from its info string and
// body. detected reports whether the body had to be inspected.
type DetectFunc func(info string, body []byte) (lang string, detected bool)

// Options controls a single conversion.
type Options struct {
	// Check compares the generated script with the one on disk and never
	// writes.
	Check bool

	// DryRun generates the script without writing it.
	DryRun bool
}

// Outcome describes the result of converting one document.
type Outcome struct {
	// Document is the path of the source runbook.
	Document string

	// Script is the path the script is (or would be) written to.
	Script string

	// Functions lists the generated function names in document order.
	Functions []string

	// Written reports whether the script on disk changed.
	Written bool

	// BackedUp reports whether the previous script was backed up.
	BackedUp bool

	// Stale reports, in check mode, that the script on disk is missing or
	// differs from the generated one.
	Stale bool

	// Diff is the unified diff between the script on disk and the generated
	// one. Only set in check mode.
	Diff string

	// Output is the generated script.
	Output []byte
}

// Converter converts runbooks into scripts under OutputDir.
type Converter struct {
	Parser    *goldmark.Parser
	OutputDir string
	Mode      os.FileMode
	Backups   fsutil.BackupConfig
	Detector  DetectFunc
}

// New returns a Converter writing to outputDir with the default script mode
// and language detector.
func New(parser *goldmark.Parser, outputDir string) *Converter {
	return &Converter{
		Parser:    parser,
		OutputDir: outputDir,
		Mode:      fsutil.ScriptFileMode,
		Backups:   fsutil.DefaultBackupConfig(),
		Detector:  langdetect.Resolve,
	}
}

// ScriptPath returns where the script for doc is written: the document's
// stem with a .sh extension, inside outputDir.
func ScriptPath(outputDir, doc string) string {
	base := filepath.Base(doc)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(outputDir, stem+ScriptExt)
}

// Convert transpiles the document at path.
func (c *Converter) Convert(ctx context.Context, path string, opts Options) (*Outcome, error) {
	logger := logging.FromContext(ctx)

	content, _, err := fsutil.ReadFile(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("load document: %w", err)
	}

	doc, err := c.parser().Parse(ctx, path, content)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	summary, err := shell.Write(&buf, doc.Events())
	if err != nil {
		return nil, err
	}

	out := &Outcome{
		Document:  path,
		Script:    ScriptPath(c.OutputDir, path),
		Functions: summary.Functions,
		Output:    buf.Bytes(),
	}

	c.logCodeBlocks(ctx, path, summary.CodeBlocks)

	logger.Debug("transpiled document",
		logging.FieldPath, path,
		logging.FieldOutput, out.Script,
		logging.FieldFunctions, len(out.Functions),
		logging.FieldFootnotes, len(summary.Footnotes),
	)

	switch {
	case opts.Check:
		return out, c.check(ctx, out)
	case opts.DryRun:
		return out, nil
	}

	return out, c.write(ctx, out)
}

func (c *Converter) parser() *goldmark.Parser {
	if c.Parser == nil {
		c.Parser = goldmark.New(goldmark.FlavorGFM)
	}
	return c.Parser
}

func (c *Converter) check(ctx context.Context, out *Outcome) error {
	current, _, err := fsutil.ReadFile(ctx, out.Script)
	switch {
	case errors.Is(err, fsutil.ErrNotFound):
		current = nil
	case err != nil:
		return fmt.Errorf("read script: %w", err)
	}

	if bytes.Equal(current, out.Output) && current != nil {
		return nil
	}

	out.Stale = true
	diff, err := Diff(out.Script, current, out.Output)
	if err != nil {
		return err
	}
	out.Diff = diff
	return nil
}

func (c *Converter) write(ctx context.Context, out *Outcome) error {
	logger := logging.FromContext(ctx)

	current, _, err := fsutil.ReadFile(ctx, out.Script)
	if err == nil && bytes.Equal(current, out.Output) {
		return nil
	}
	if err == nil {
		backedUp, berr := fsutil.CreateBackup(ctx, out.Script, c.Backups)
		if berr != nil {
			return fmt.Errorf("backup %s: %w", out.Script, berr)
		}
		out.BackedUp = backedUp
	}

	mode := c.Mode
	if mode == 0 {
		mode = fsutil.ScriptFileMode
	}

	written, err := fsutil.WriteAtomicIfChanged(ctx, out.Script, out.Output, mode)
	if err != nil {
		return fmt.Errorf("write %s: %w", out.Script, err)
	}
	out.Written = written

	if written {
		logger.Debug("wrote script",
			logging.FieldOutput, out.Script,
			logging.FieldBackup, out.BackedUp,
		)
	}
	return nil
}

func (c *Converter) logCodeBlocks(ctx context.Context, path string, blocks []shell.CodeBlock) {
	detect := c.Detector
	if detect == nil {
		detect = langdetect.Resolve
	}
	logger := logging.FromContext(ctx)

	for i, block := range blocks {
		lang, detected := detect(block.Info, []byte(block.Body))
		logger.Debug("code block",
			logging.FieldPath, path,
			logging.FieldBlock, i+1,
			logging.FieldLang, lang,
			logging.FieldDetected, detected,
		)
		if lang != "" && lang != "text" && !langdetect.IsShell(lang) {
			logger.Warn("code block is not shell; it will run as shell anyway",
				logging.FieldPath, path,
				logging.FieldBlock, i+1,
				logging.FieldLang, lang,
			)
		}
	}
}
