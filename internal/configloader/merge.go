package configloader

import "github.com/tehprofessor/corg/pkg/config"

// merge combines two configurations, with override taking precedence over base.
// The merge follows these rules:
//   - Scalar values: override overwrites base if override is non-zero
//   - Pointer booleans: override overwrites base if non-nil
//   - Slices: override replaces base entirely if override is non-nil
//   - Hosts: merged by name, override's entry wins
func merge(base, override *config.Config) *config.Config {
	if base == nil {
		return override
	}
	if override == nil {
		return base
	}

	result := *base

	if override.OutputDir != "" {
		result.OutputDir = override.OutputDir
	}
	if override.HelperPath != "" {
		result.HelperPath = override.HelperPath
	}
	if override.WriteHelper != nil {
		result.WriteHelper = override.WriteHelper
	}
	if override.Flavor != "" {
		result.Flavor = override.Flavor
	}
	if override.Shell != "" {
		result.Shell = override.Shell
	}
	if override.RequiredVersion != "" {
		result.RequiredVersion = override.RequiredVersion
	}
	if override.Jobs != 0 {
		result.Jobs = override.Jobs
	}

	// false is the zero value, so only true can be layered on.
	if override.Check {
		result.Check = true
	}
	if override.DryRun {
		result.DryRun = true
	}
	if override.NoHelper {
		result.NoHelper = true
	}

	if override.Backups.Mode != "" {
		result.Backups.Mode = override.Backups.Mode
	}
	if override.Backups.Enabled {
		result.Backups.Enabled = true
	}

	result.SSH = mergeSSH(base.SSH, override.SSH)

	if override.Extensions != nil {
		result.Extensions = override.Extensions
	}
	if override.Ignore != nil {
		result.Ignore = override.Ignore
	}
	result.Hosts = mergeHosts(base.Hosts, override.Hosts)

	return &result
}

func mergeSSH(base, override config.SSHConfig) config.SSHConfig {
	result := base
	if override.User != "" {
		result.User = override.User
	}
	if override.Port != 0 {
		result.Port = override.Port
	}
	if override.IdentityFile != "" {
		result.IdentityFile = override.IdentityFile
	}
	if override.KnownHosts != "" {
		result.KnownHosts = override.KnownHosts
	}
	if override.Timeout != 0 {
		result.Timeout = override.Timeout
	}
	if override.UseAgent != nil {
		result.UseAgent = override.UseAgent
	}
	return result
}

// mergeHosts keeps base's order and appends hosts only override defines.
func mergeHosts(base, override []config.Host) []config.Host {
	if len(override) == 0 {
		return base
	}

	result := make([]config.Host, 0, len(base)+len(override))
	index := make(map[string]int, len(base))
	for _, h := range base {
		index[h.Name] = len(result)
		result = append(result, h)
	}
	for _, h := range override {
		if i, ok := index[h.Name]; ok {
			result[i] = h
			continue
		}
		index[h.Name] = len(result)
		result = append(result, h)
	}
	return result
}

// MergeAll merges multiple configurations in order, with later configs taking precedence.
func MergeAll(configs ...*config.Config) *config.Config {
	if len(configs) == 0 {
		return nil
	}

	result := configs[0]
	for i := 1; i < len(configs); i++ {
		result = merge(result, configs[i])
	}
	return result
}
