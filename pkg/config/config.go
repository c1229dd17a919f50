// Package config defines the configuration types for corg.
// These types are pure data structures; loading and layering live in
// internal/configloader.
package config

import "time"

// Flavor specifies the Markdown flavor to use for parsing.
type Flavor string

const (
	FlavorCommonMark Flavor = "commonmark"
	FlavorGFM        Flavor = "gfm"
)

// IsValid reports whether f names a supported flavor.
func (f Flavor) IsValid() bool {
	return f == FlavorCommonMark || f == FlavorGFM
}

// Backup modes.
const (
	BackupModeSidecar = "sidecar"
	BackupModeNone    = "none"
)

// Defaults.
const (
	DefaultOutputDir  = "scripts"
	DefaultHelperPath = "utils/corg-logger.sh"
	DefaultShell      = "bash"
	DefaultSSHPort    = 22
	DefaultSSHTimeout = 10 * time.Second
)

// BackupsConfig controls backups of scripts before they are overwritten.
type BackupsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Mode    string `yaml:"mode"` // "sidecar" or "none"
}

// SSHConfig holds the defaults used by `corg run --host`.
type SSHConfig struct {
	User         string        `yaml:"user,omitempty"`
	Port         int           `yaml:"port,omitempty"`
	IdentityFile string        `yaml:"identity_file,omitempty"`
	KnownHosts   string        `yaml:"known_hosts,omitempty"`
	Timeout      time.Duration `yaml:"timeout,omitempty"`
	UseAgent     *bool         `yaml:"use_agent,omitempty"`
}

// AgentEnabled reports whether the SSH agent should be used. Defaults to
// true.
func (s SSHConfig) AgentEnabled() bool {
	return s.UseAgent == nil || *s.UseAgent
}

// Host is a named remote target.
type Host struct {
	Name    string `yaml:"name"`
	Address string `yaml:"address"`
	User    string `yaml:"user,omitempty"`
	Port    int    `yaml:"port,omitempty"`
}

// Config is the root configuration structure.
type Config struct {
	// OutputDir is where generated scripts are written.
	OutputDir string `yaml:"output_dir"`

	// HelperPath is the helper library location, relative to OutputDir.
	HelperPath string `yaml:"helper_path"`

	// WriteHelper controls whether the helper library is written next to the
	// scripts. Nil means true.
	WriteHelper *bool `yaml:"write_helper,omitempty"`

	// Flavor specifies the Markdown flavor ("commonmark" or "gfm").
	Flavor Flavor `yaml:"flavor"`

	// Extensions are the runbook file extensions.
	Extensions []string `yaml:"extensions,omitempty"`

	// Ignore contains glob patterns for runbooks to skip.
	Ignore []string `yaml:"ignore,omitempty"`

	// Shell runs scripts for `corg run`.
	Shell string `yaml:"shell"`

	// Backups configures backups of overwritten scripts.
	Backups BackupsConfig `yaml:"backups"`

	// RequiredVersion is a semver constraint the binary must satisfy.
	RequiredVersion string `yaml:"required_version,omitempty"`

	// SSH holds remote execution defaults.
	SSH SSHConfig `yaml:"ssh,omitempty"`

	// Hosts are named remote targets.
	Hosts []Host `yaml:"hosts,omitempty"`

	// CLI-level options (not persisted to config files).

	// Jobs specifies the number of parallel workers.
	Jobs int `yaml:"-"`

	// Check reports stale scripts without writing.
	Check bool `yaml:"-"`

	// DryRun prints scripts without writing.
	DryRun bool `yaml:"-"`

	// NoHelper skips writing the helper library.
	NoHelper bool `yaml:"-"`
}

// NewConfig returns a Config with the defaults.
func NewConfig() *Config {
	return &Config{
		OutputDir:  DefaultOutputDir,
		HelperPath: DefaultHelperPath,
		Flavor:     FlavorGFM,
		Extensions: []string{".md", ".markdown"},
		Shell:      DefaultShell,
		Backups: BackupsConfig{
			Enabled: false,
			Mode:    BackupModeSidecar,
		},
		SSH: SSHConfig{
			Port:    DefaultSSHPort,
			Timeout: DefaultSSHTimeout,
		},
		Jobs: 0, // 0 means use runtime.NumCPU
	}
}

// HelperEnabled reports whether the helper library should be written.
func (c *Config) HelperEnabled() bool {
	if c.NoHelper {
		return false
	}
	return c.WriteHelper == nil || *c.WriteHelper
}

// FindHost returns the host named name.
func (c *Config) FindHost(name string) (Host, bool) {
	for _, h := range c.Hosts {
		if h.Name == name {
			return h, true
		}
	}
	return Host{}, false
}

// Bool returns a pointer to b.
func Bool(b bool) *bool {
	return &b
}
