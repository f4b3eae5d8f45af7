package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

//go:embed defaults/gridlife.yaml
var defaultYAML []byte

// LocalFile is the config file looked up in the working directory.
const LocalFile = "gridlife.yaml"

// Load reads the configuration and validates it.
// Search order: customPath -> ~/.gridlife/config.yaml -> ./gridlife.yaml -> embedded default
// The returned string is the path that was used, or "" for the embedded default.
func Load(customPath string) (Config, string, error) {
	return load(customPath, userConfigPath(), LocalFile)
}

func load(customPath string, candidates ...string) (Config, string, error) {
	if customPath != "" {
		cfg, err := readFile(customPath)
		if err != nil {
			return Config{}, "", err
		}
		return cfg, customPath, cfg.Validate()
	}

	for _, path := range candidates {
		if path == "" {
			continue
		}
		// Unreadable or malformed optional files fall through to the next
		// candidate.
		if cfg, err := readFile(path); err == nil {
			return cfg, path, cfg.Validate()
		}
	}

	cfg, err := Default()
	return cfg, "", err
}

// Default is the embedded configuration.
func Default() (Config, error) {
	cfg, err := parse(defaultYAML, "embedded default")
	if err != nil {
		return Config{}, err
	}
	return cfg, cfg.Validate()
}

// DefaultYAML returns a copy of the embedded default file.
func DefaultYAML() []byte {
	return append([]byte(nil), defaultYAML...)
}

func readFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: failed to read %s: %w", path, err)
	}
	return parse(data, path)
}

func parse(data []byte, name string) (Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: failed to parse %s: %w", name, err)
	}
	return cfg, nil
}

// userConfigPath returns ~/.gridlife/config.yaml, or empty if home is unavailable.
func userConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".gridlife", "config.yaml")
}
