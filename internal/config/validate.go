package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/conn-castle/capmigrate/internal/messages"
	"github.com/conn-castle/capmigrate/internal/steps"
)

// Validate ensures the config values are usable.
func (c *Config) Validate(path string) error {
	if c.InstallCommand != "" && strings.TrimSpace(c.InstallCommand) == "" {
		return fmt.Errorf(messages.ConfigInstallCommandEmpty, path)
	}
	switch c.Android.WrapperMode {
	case "", steps.WrapperModeCommand, steps.WrapperModeProperties:
	default:
		return fmt.Errorf(messages.ConfigWrapperModeInvalidFmt, path, steps.WrapperModeCommand, steps.WrapperModeProperties, c.Android.WrapperMode)
	}
	for _, lock := range c.LockFiles {
		clean := filepath.ToSlash(filepath.Clean(filepath.FromSlash(lock)))
		if strings.TrimSpace(lock) == "" || filepath.IsAbs(lock) || strings.HasPrefix(lock, "/") ||
			clean == "." || clean == ".." || strings.HasPrefix(clean, "../") {
			return fmt.Errorf(messages.ConfigLockFileInvalidFmt, path, lock)
		}
	}
	for name, raw := range c.Variables {
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf(messages.ConfigVariableNameEmptyFmt, path)
		}
		if _, err := steps.NewVariable(name, raw); err != nil {
			return fmt.Errorf(messages.ConfigVariableTypeFmt, path, name, raw)
		}
	}
	return nil
}
