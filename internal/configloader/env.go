package configloader

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/tehprofessor/corg/pkg/config"
)

// envVarPrefix is the prefix for all corg environment variables.
const envVarPrefix = "CORG_"

// envFieldType represents the type of a configuration field.
type envFieldType int

const (
	envTypeString envFieldType = iota
	envTypeBool
	envTypeInt
	envTypeSlice
)

// envMapping defines an environment variable to config field mapping.
type envMapping struct {
	field string
	typ   envFieldType
	help  string
}

// envMappings maps environment variable names (without prefix) to config fields.
//
//nolint:gochecknoglobals // Read-only lookup table.
var envMappings = map[string]envMapping{
	"OUTPUT_DIR":        {field: "output_dir", typ: envTypeString, help: "Directory for generated scripts"},
	"HELPER_PATH":       {field: "helper_path", typ: envTypeString, help: "Helper library path, relative to the output directory"},
	"WRITE_HELPER":      {field: "write_helper", typ: envTypeBool, help: "Write the helper library: true or false"},
	"FLAVOR":            {field: "flavor", typ: envTypeString, help: "Markdown flavor: commonmark or gfm"},
	"SHELL":             {field: "shell", typ: envTypeString, help: "Shell used by 'corg run'"},
	"JOBS":              {field: "jobs", typ: envTypeInt, help: "Number of parallel workers (0 = auto)"},
	"IGNORE":            {field: "ignore", typ: envTypeSlice, help: "Comma-separated list of ignore patterns"},
	"BACKUPS_ENABLED":   {field: "backups.enabled", typ: envTypeBool, help: "Back up scripts before overwriting: true or false"},
	"BACKUPS_MODE":      {field: "backups.mode", typ: envTypeString, help: "Backup mode: sidecar or none"},
	"SSH_USER":          {field: "ssh.user", typ: envTypeString, help: "Default SSH user for 'corg run --host'"},
	"SSH_IDENTITY_FILE": {field: "ssh.identity_file", typ: envTypeString, help: "SSH private key file"},
	"SSH_PORT":          {field: "ssh.port", typ: envTypeInt, help: "Default SSH port"},
}

// LoadFromEnv applies environment variable overrides to the configuration.
// Environment variables are prefixed with CORG_ (e.g., CORG_FLAVOR).
func LoadFromEnv(cfg *config.Config) error {
	if cfg == nil {
		return nil
	}

	for envSuffix, mapping := range envMappings {
		envVar := envVarPrefix + envSuffix
		value := os.Getenv(envVar)
		if value == "" {
			continue
		}

		if err := applyEnvValue(cfg, mapping, value, envVar); err != nil {
			return err
		}
	}

	return nil
}

// applyEnvValue applies a single environment variable value to the config.
func applyEnvValue(cfg *config.Config, mapping envMapping, value, envVar string) error {
	switch mapping.typ {
	case envTypeString:
		return setStringField(cfg, mapping.field, value)
	case envTypeBool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean for %s: %q (expected true/false/1/0)", envVar, value)
		}
		return setBoolField(cfg, mapping.field, b)
	case envTypeInt:
		i, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid integer for %s: %q", envVar, value)
		}
		return setIntField(cfg, mapping.field, i)
	case envTypeSlice:
		return setSliceField(cfg, mapping.field, parseSliceValue(value))
	default:
		return fmt.Errorf("unknown field type for %s", envVar)
	}
}

// parseSliceValue parses a comma-separated string into a slice.
// Each element is trimmed of whitespace.
func parseSliceValue(value string) []string {
	if value == "" {
		return nil
	}

	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func setStringField(cfg *config.Config, field, value string) error {
	switch field {
	case "output_dir":
		cfg.OutputDir = value
	case "helper_path":
		cfg.HelperPath = value
	case "flavor":
		cfg.Flavor = config.Flavor(value)
	case "shell":
		cfg.Shell = value
	case "backups.mode":
		cfg.Backups.Mode = value
	case "ssh.user":
		cfg.SSH.User = value
	case "ssh.identity_file":
		cfg.SSH.IdentityFile = value
	default:
		return fmt.Errorf("unknown string field: %s", field)
	}
	return nil
}

func setBoolField(cfg *config.Config, field string, value bool) error {
	switch field {
	case "write_helper":
		cfg.WriteHelper = config.Bool(value)
	case "backups.enabled":
		cfg.Backups.Enabled = value
	default:
		return fmt.Errorf("unknown boolean field: %s", field)
	}
	return nil
}

func setIntField(cfg *config.Config, field string, value int) error {
	switch field {
	case "jobs":
		cfg.Jobs = value
	case "ssh.port":
		cfg.SSH.Port = value
	default:
		return fmt.Errorf("unknown integer field: %s", field)
	}
	return nil
}

func setSliceField(cfg *config.Config, field string, value []string) error {
	switch field {
	case "ignore":
		cfg.Ignore = value
	default:
		return fmt.Errorf("unknown slice field: %s", field)
	}
	return nil
}

// GetEnvVarName returns the full environment variable name for a config field.
func GetEnvVarName(field string) string {
	for suffix, mapping := range envMappings {
		if mapping.field == field {
			return envVarPrefix + suffix
		}
	}
	return ""
}

// EnvVar describes a supported environment variable.
type EnvVar struct {
	Name        string
	Description string
}

// ListEnvVars returns every supported environment variable, sorted by name.
func ListEnvVars() []EnvVar {
	vars := make([]EnvVar, 0, len(envMappings))
	for suffix, mapping := range envMappings {
		vars = append(vars, EnvVar{Name: envVarPrefix + suffix, Description: mapping.help})
	}
	sort.Slice(vars, func(i, j int) bool { return vars[i].Name < vars[j].Name })
	return vars
}
