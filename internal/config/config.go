// Package config loads the optional per-project migration settings file.
package config

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/conn-castle/capmigrate/internal/steps"
)

// FileNames lists the project config files in lookup order.
var FileNames = []string{".capmigrate.toml", ".capmigrate.yaml", ".capmigrate.yml"}

// DefaultInstallCommand reinstalls dependencies after the manifest changes.
const DefaultInstallCommand = "npm install"

// DefaultLockFiles are deleted before reinstalling.
var DefaultLockFiles = []string{"package-lock.json"}

// Config is the project migration config.
type Config struct {
	// Target is the default migration target id.
	Target string `toml:"target" yaml:"target"`
	// InstallCommand replaces "npm install". It is split on whitespace.
	InstallCommand string        `toml:"install_command" yaml:"install_command"`
	LockFiles      []string      `toml:"lock_files" yaml:"lock_files"`
	SkipInstall    bool          `toml:"skip_install" yaml:"skip_install"`
	Android        AndroidConfig `toml:"android" yaml:"android"`
	IOS            IOSConfig     `toml:"ios" yaml:"ios"`
	// Variables overrides entries of the step's Gradle variable floor table.
	Variables map[string]any `toml:"variables" yaml:"variables"`

	source string
}

// AndroidConfig holds Android overrides.
type AndroidConfig struct {
	Skip        bool   `toml:"skip" yaml:"skip"`
	WrapperMode string `toml:"wrapper_mode" yaml:"wrapper_mode"`
}

// IOSConfig holds iOS overrides.
type IOSConfig struct {
	Skip bool `toml:"skip" yaml:"skip"`
}

// Source returns the file the config was loaded from, or "" for defaults.
func (c *Config) Source() string {
	if c == nil {
		return ""
	}
	return c.source
}

// InstallArgs returns the install command as argv.
func (c *Config) InstallArgs() []string {
	if c == nil || strings.TrimSpace(c.InstallCommand) == "" {
		return strings.Fields(DefaultInstallCommand)
	}
	return strings.Fields(c.InstallCommand)
}

// Locks returns the lock files to delete, relative to the project directory.
func (c *Config) Locks() []string {
	if c == nil || c.LockFiles == nil {
		return append([]string(nil), DefaultLockFiles...)
	}
	out := make([]string, 0, len(c.LockFiles))
	for _, lock := range c.LockFiles {
		out = append(out, filepath.FromSlash(lock))
	}
	return out
}

// VariableOverrides returns Variables as step variables sorted by name.
// Call Validate first; invalid entries are skipped.
func (c *Config) VariableOverrides() []steps.Variable {
	if c == nil {
		return nil
	}
	out := make([]steps.Variable, 0, len(c.Variables))
	for name, raw := range c.Variables {
		v, err := steps.NewVariable(name, raw)
		if err != nil || name == "" {
			continue
		}
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
