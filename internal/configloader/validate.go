package configloader

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/tehprofessor/corg/pkg/config"
)

// maxPort is the largest valid TCP port.
const maxPort = 65535

// ValidationError represents a configuration validation error.
type ValidationError struct {
	// Field is the path to the invalid field (e.g., "hosts[0].address").
	Field string

	// Value is the invalid value.
	Value any

	// Message describes the validation error.
	Message string

	// FilePath is the config file containing the error (if known).
	FilePath string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	var parts []string

	if e.FilePath != "" {
		parts = append(parts, e.FilePath)
	}
	if e.Field != "" {
		parts = append(parts, e.Field)
	}
	parts = append(parts, e.Message)

	return strings.Join(parts, ": ")
}

// ValidationResult contains all validation findings.
type ValidationResult struct {
	// Errors are validation failures that prevent loading.
	Errors []ValidationError

	// Warnings are non-fatal issues.
	Warnings []ValidationError
}

// Valid returns true if there are no errors.
func (r *ValidationResult) Valid() bool {
	return len(r.Errors) == 0
}

// HasWarnings returns true if there are any warnings.
func (r *ValidationResult) HasWarnings() bool {
	return len(r.Warnings) > 0
}

// AllMessages returns all error and warning messages combined.
func (r *ValidationResult) AllMessages() []string {
	messages := make([]string, 0, len(r.Errors)+len(r.Warnings))
	for _, e := range r.Errors {
		messages = append(messages, "error: "+e.Error())
	}
	for _, w := range r.Warnings {
		messages = append(messages, "warning: "+w.Error())
	}
	return messages
}

func (r *ValidationResult) addError(field string, value any, format string, args ...any) {
	r.Errors = append(r.Errors, ValidationError{Field: field, Value: value, Message: fmt.Sprintf(format, args...)})
}

func (r *ValidationResult) addWarning(field string, value any, format string, args ...any) {
	r.Warnings = append(r.Warnings, ValidationError{Field: field, Value: value, Message: fmt.Sprintf(format, args...)})
}

// knownBackupModes lists valid backup mode values.
//
//nolint:gochecknoglobals // Read-only lookup table.
var knownBackupModes = map[string]bool{
	config.BackupModeSidecar: true,
	config.BackupModeNone:    true,
}

// Validate checks a configuration for errors and warnings.
func Validate(cfg *config.Config) *ValidationResult {
	result := &ValidationResult{}
	if cfg == nil {
		return result
	}

	if cfg.Flavor != "" && !cfg.Flavor.IsValid() {
		result.addError("flavor", cfg.Flavor, "invalid flavor %q; must be one of: commonmark, gfm", cfg.Flavor)
	}

	if cfg.Jobs < 0 {
		result.addError("jobs", cfg.Jobs, "jobs must be >= 0 (0 means auto)")
	}

	if strings.TrimSpace(cfg.Shell) == "" {
		result.addError("shell", cfg.Shell, "shell must not be empty")
	}

	if cfg.Backups.Mode != "" && !knownBackupModes[cfg.Backups.Mode] {
		result.addError("backups.mode", cfg.Backups.Mode,
			"invalid backup mode %q; must be one of: sidecar, none", cfg.Backups.Mode)
	}

	if cfg.RequiredVersion != "" {
		if _, err := semver.NewConstraint(cfg.RequiredVersion); err != nil {
			result.addError("required_version", cfg.RequiredVersion, "invalid version constraint: %v", err)
		}
	}

	if filepath.IsAbs(cfg.HelperPath) {
		result.addWarning("helper_path", cfg.HelperPath,
			"absolute helper path %q is used as is, outside output_dir", cfg.HelperPath)
	}

	for i, ext := range cfg.Extensions {
		if !strings.HasPrefix(ext, ".") {
			result.addWarning(fmt.Sprintf("extensions[%d]", i), ext,
				"extension %q has no leading dot and will never match", ext)
		}
	}

	validatePort(result, "ssh.port", cfg.SSH.Port)
	validateHosts(cfg, result)
	validateIgnorePatterns(cfg, result)

	return result
}

func validatePort(result *ValidationResult, field string, port int) {
	if port < 0 || port > maxPort {
		result.addError(field, port, "port %d out of range 1-%d", port, maxPort)
	}
}

func validateHosts(cfg *config.Config, result *ValidationResult) {
	seen := make(map[string]bool, len(cfg.Hosts))
	for i, h := range cfg.Hosts {
		field := fmt.Sprintf("hosts[%d]", i)
		if h.Name == "" {
			result.addError(field+".name", h.Name, "host name must not be empty")
		} else if seen[h.Name] {
			result.addError(field+".name", h.Name, "duplicate host name %q", h.Name)
		}
		seen[h.Name] = true

		if h.Address == "" {
			result.addError(field+".address", h.Address, "host address must not be empty")
		}
		validatePort(result, field+".port", h.Port)
	}
}

// validateIgnorePatterns checks that ignore patterns are valid globs.
func validateIgnorePatterns(cfg *config.Config, result *ValidationResult) {
	for i, pattern := range cfg.Ignore {
		// filepath.Match returns an error only for malformed patterns
		if _, err := filepath.Match(pattern, ""); err != nil {
			result.addError(fmt.Sprintf("ignore[%d]", i), pattern, "invalid glob pattern: %v", err)
		}
	}
}

// validateVersion checks the binary version against required_version.
// Development builds are not checked.
func validateVersion(cfg *config.Config, version string, result *ValidationResult) {
	if cfg.RequiredVersion == "" || version == "" || version == "dev" {
		return
	}

	constraint, err := semver.NewConstraint(cfg.RequiredVersion)
	if err != nil {
		// Already reported by Validate.
		return
	}

	v, err := semver.NewVersion(version)
	if err != nil {
		result.addWarning("required_version", version, "cannot compare unparsable version %q", version)
		return
	}

	if !constraint.Check(v) {
		result.addError("required_version", cfg.RequiredVersion,
			"corg %s does not satisfy %q", v, cfg.RequiredVersion)
	}
}

// ValidateWithFile validates configuration and includes file path in errors.
func ValidateWithFile(cfg *config.Config, filePath string) *ValidationResult {
	result := Validate(cfg)

	for i := range result.Errors {
		result.Errors[i].FilePath = filePath
	}
	for i := range result.Warnings {
		result.Warnings[i].FilePath = filePath
	}

	return result
}

// IsValidBackupMode returns true if the backup mode is valid.
func IsValidBackupMode(mode string) bool {
	return knownBackupModes[mode]
}
