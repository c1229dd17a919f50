package cli_test

import (
	"bytes"
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tehprofessor/corg/internal/cli"
	"github.com/tehprofessor/corg/pkg/helper"
	"github.com/tehprofessor/corg/pkg/reporter"
)

const deployRunbook = "# Deploy\n\nShip it.\n\n## Greet\n\n```bash\necho \"hello world\"\n```\n\n## Finish\n\n```bash\necho finished\n```\n"

// project lays out a runbook and a config writing scripts to <dir>/scripts.
type project struct {
	dir     string
	config  string
	runbook string
	scripts string
}

func newProject(t *testing.T) project {
	t.Helper()

	dir := t.TempDir()
	p := project{
		dir:     dir,
		config:  filepath.Join(dir, "corg.yml"),
		runbook: filepath.Join(dir, "docs", "deploy.md"),
		scripts: filepath.Join(dir, "scripts"),
	}
	require.NoError(t, os.MkdirAll(filepath.Dir(p.runbook), 0o755))
	require.NoError(t, os.WriteFile(p.runbook, []byte(deployRunbook), 0o644))
	require.NoError(t, os.WriteFile(p.config, []byte("output_dir: "+p.scripts+"\n"), 0o644))
	return p
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	cmd := cli.NewRootCommand(testInfo())
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(strings.NewReader(""))
	cmd.SetArgs(append([]string{"--color", "never"}, args...))

	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestIntegration_Convert(t *testing.T) {
	t.Parallel()

	p := newProject(t)

	_, stderr, err := execute(t, "convert", "--config", p.config, p.runbook)
	require.NoError(t, err)
	assert.Contains(t, stderr, "1 script written")

	script, err := os.ReadFile(filepath.Join(p.scripts, "deploy.sh"))
	require.NoError(t, err)
	assert.Contains(t, string(script), "function greet {")
	assert.True(t, strings.HasSuffix(string(script), "\n# - run doc: \ngreet\nfinish"))

	info, err := os.Stat(filepath.Join(p.scripts, "deploy.sh"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o755), info.Mode().Perm())

	logger, err := os.ReadFile(filepath.Join(p.scripts, helper.DefaultPath))
	require.NoError(t, err)
	assert.Equal(t, helper.Script(), logger)
}

func TestIntegration_ConvertNoHelper(t *testing.T) {
	t.Parallel()

	p := newProject(t)

	_, _, err := execute(t, "convert", "--config", p.config, "--no-helper", p.runbook)
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(p.scripts, "deploy.sh"))
	assert.NoFileExists(t, filepath.Join(p.scripts, helper.DefaultPath))
}

func TestIntegration_ConvertOutFlag(t *testing.T) {
	t.Parallel()

	p := newProject(t)
	out := filepath.Join(p.dir, "bin")

	_, _, err := execute(t, "convert", "--config", p.config, "--out", out, p.runbook)
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(out, "deploy.sh"))
	assert.NoDirExists(t, p.scripts)
}

func TestIntegration_ConvertDryRun(t *testing.T) {
	t.Parallel()

	p := newProject(t)

	stdout, _, err := execute(t, "convert", "--config", p.config, "--dry-run", p.runbook)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(stdout, "corg_announce \"Running Document: Deploy\"\n\n"))
	assert.NoDirExists(t, p.scripts)
}

func TestIntegration_ConvertCheck(t *testing.T) {
	t.Parallel()

	p := newProject(t)

	stdout, _, err := execute(t, "convert", "--config", p.config, "--check", p.runbook)
	require.ErrorIs(t, err, cli.ErrStaleScripts)
	assert.Equal(t, cli.ExitStaleScripts, cli.ExitCode(err))
	assert.Contains(t, stdout, "+function greet {")
	assert.NoDirExists(t, p.scripts)

	_, _, err = execute(t, "convert", "--config", p.config, p.runbook)
	require.NoError(t, err)

	stdout, _, err = execute(t, "convert", "--config", p.config, "--check", p.runbook)
	require.NoError(t, err)
	assert.Empty(t, stdout)
}

func TestIntegration_ConvertJSON(t *testing.T) {
	t.Parallel()

	p := newProject(t)

	stdout, _, err := execute(t, "convert", "--config", p.config, "--format", "json", p.runbook)
	require.NoError(t, err)

	var got reporter.JSONOutput
	require.NoError(t, json.Unmarshal([]byte(stdout), &got))
	require.Len(t, got.Files, 1)
	assert.Equal(t, []string{"greet", "finish"}, got.Files[0].Functions)
	assert.True(t, got.Files[0].Written)
	assert.Equal(t, 1, got.Summary.FilesWritten)

	_, _, err = execute(t, "convert", "--config", p.config, "--format", "xml", p.runbook)
	require.ErrorIs(t, err, cli.ErrInvalidUsage)
}

func TestIntegration_ConvertCheckAndDryRun(t *testing.T) {
	t.Parallel()

	p := newProject(t)

	_, _, err := execute(t, "convert", "--config", p.config, "--check", "--dry-run", p.runbook)
	require.ErrorIs(t, err, cli.ErrInvalidUsage)
}

func TestIntegration_ConvertUnknownName(t *testing.T) {
	t.Parallel()

	p := newProject(t)

	_, _, err := execute(t, "convert", "--config", p.config, "no-such-runbook-anywhere")
	require.Error(t, err)
	assert.Equal(t, cli.ExitInvalidUsage, cli.ExitCode(err))
}

func TestIntegration_InvalidConfig(t *testing.T) {
	t.Parallel()

	p := newProject(t)
	require.NoError(t, os.WriteFile(p.config, []byte("flavor: markdown-extra\n"), 0o644))

	_, _, err := execute(t, "convert", "--config", p.config, p.runbook)
	require.Error(t, err)
	assert.Equal(t, cli.ExitConfigError, cli.ExitCode(err))
}

func TestIntegration_List(t *testing.T) {
	t.Parallel()

	p := newProject(t)
	other := filepath.Join(p.dir, "docs", "restore.md")
	require.NoError(t, os.WriteFile(other, []byte("## Restore\n\n```bash\necho restore\n```\n"), 0o644))

	_, _, err := execute(t, "convert", "--config", p.config, p.runbook)
	require.NoError(t, err)

	stdout, _, err := execute(t, "list", "--config", p.config, filepath.Join(p.dir, "docs"))
	require.NoError(t, err)

	var deployLine, restoreLine string
	for _, line := range strings.Split(stdout, "\n") {
		switch {
		case strings.Contains(line, "deploy.md"):
			deployLine = line
		case strings.Contains(line, "restore.md"):
			restoreLine = line
		}
	}
	assert.True(t, strings.HasSuffix(deployLine, "ok"), deployLine)
	assert.True(t, strings.HasSuffix(restoreLine, "missing"), restoreLine)
	assert.Contains(t, stdout, "2 runbooks | 3 functions")

	require.NoError(t, os.WriteFile(p.runbook, []byte(deployRunbook+"\n## Extra\n"), 0o644))
	stdout, _, err = execute(t, "list", "--config", p.config, p.runbook)
	require.NoError(t, err)
	assert.Contains(t, stdout, "1 stale")
}

func TestIntegration_Run(t *testing.T) {
	t.Parallel()

	if _, err := exec.LookPath("bash"); err != nil {
		t.Skip("bash not available")
	}

	p := newProject(t)

	stdout, _, err := execute(t, "run", "--config", p.config, p.runbook)
	require.NoError(t, err)
	assert.Contains(t, stdout, "[announce] Running Document: Deploy")
	assert.Contains(t, stdout, "[debug] Ship it.")
	assert.Contains(t, stdout, "hello world\n")
	assert.Contains(t, stdout, "finished\n")
}

func TestIntegration_RunGeneratedScriptByName(t *testing.T) {
	t.Parallel()

	if _, err := exec.LookPath("bash"); err != nil {
		t.Skip("bash not available")
	}

	p := newProject(t)
	require.NoError(t, os.MkdirAll(p.scripts, 0o755))
	script := "echo from-disk \"$@\"\n"
	require.NoError(t, os.WriteFile(filepath.Join(p.scripts, "deploy.sh"), []byte(script), 0o755))

	stdout, _, err := execute(t, "run", "--config", p.config, "deploy", "--", "a", "b c")
	require.NoError(t, err)
	assert.Equal(t, "from-disk a b c\n", stdout)
}

func TestIntegration_RunFailingScript(t *testing.T) {
	t.Parallel()

	if _, err := exec.LookPath("bash"); err != nil {
		t.Skip("bash not available")
	}

	p := newProject(t)
	failing := filepath.Join(p.dir, "fail.sh")
	require.NoError(t, os.WriteFile(failing, []byte("exit 7\n"), 0o755))

	_, _, err := execute(t, "run", "--config", p.config, failing)
	require.Error(t, err)
	assert.Equal(t, 7, cli.ExitCode(err))
}

func TestIntegration_RunArgsWithoutDash(t *testing.T) {
	t.Parallel()

	p := newProject(t)

	_, _, err := execute(t, "run", "--config", p.config, p.runbook, "extra")
	require.ErrorIs(t, err, cli.ErrInvalidUsage)
}

func TestIntegration_RunHostWithoutCredentials(t *testing.T) {
	t.Setenv("SSH_AUTH_SOCK", "")

	p := newProject(t)

	_, _, err := execute(t, "run", "--config", p.config, "--host", "ops@127.0.0.1:1", p.runbook)
	require.Error(t, err)
	assert.ErrorContains(t, err, "no SSH authentication method available")
}

func TestIntegration_Init(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cfgPath := filepath.Join(dir, ".corg.yml")

	_, _, err := execute(t, "init", "--output", cfgPath)
	require.NoError(t, err)

	content, err := os.ReadFile(cfgPath)
	require.NoError(t, err)
	assert.Contains(t, string(content), "output_dir: scripts")
	assert.FileExists(t, filepath.Join(dir, "scripts", helper.DefaultPath))

	_, _, err = execute(t, "init", "--output", cfgPath)
	require.ErrorIs(t, err, cli.ErrInvalidUsage)

	_, _, err = execute(t, "init", "--output", cfgPath, "--force", "--no-helper")
	require.NoError(t, err)
}
