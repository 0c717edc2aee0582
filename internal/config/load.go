package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/pelletier/go-toml/v2"

	"github.com/conn-castle/capmigrate/internal/messages"
)

// ErrConfigValidation wraps config validation failures, as opposed to
// syntax and filesystem errors.
var ErrConfigValidation = errors.New("config validation failed")

// Find returns the first config file present in dir, or "" when there is none.
func Find(dir string) (string, error) {
	for _, name := range FileNames {
		path := filepath.Join(dir, name)
		info, err := os.Stat(path)
		if err == nil && !info.IsDir() {
			return path, nil
		}
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf(messages.ConfigReadFailedFmt, path, err)
		}
	}
	return "", nil
}

// Discover loads the config in dir. A project without a config file gets
// an empty Config.
func Discover(dir string) (*Config, error) {
	path, err := Find(dir)
	if err != nil {
		return nil, err
	}
	if path == "" {
		return &Config{}, nil
	}
	return Load(path)
}

// Load reads and validates the config file at path. The format follows the extension.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf(messages.ConfigReadFailedFmt, path, err)
	}
	return Parse(data, path)
}

// Parse decodes and validates config data. source names the file in errors
// and selects the format by extension. Unknown keys are rejected.
func Parse(data []byte, source string) (*Config, error) {
	var cfg Config
	switch strings.ToLower(filepath.Ext(source)) {
	case ".toml":
		decoder := toml.NewDecoder(bytes.NewReader(data))
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, fmt.Errorf(messages.ConfigInvalidFmt, source, err)
		}
	case ".yaml", ".yml":
		if err := yaml.UnmarshalWithOptions(data, &cfg, yaml.DisallowUnknownField()); err != nil {
			return nil, fmt.Errorf(messages.ConfigInvalidFmt, source, err)
		}
	default:
		return nil, fmt.Errorf(messages.ConfigUnsupportedFormatFmt, filepath.Ext(source), source)
	}
	cfg.source = source
	if err := cfg.Validate(source); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfigValidation, err)
	}
	return &cfg, nil
}
