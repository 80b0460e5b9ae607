package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// Template renders cfg as a config file.
func Template(cfg Config) ([]byte, error) {
	out, err := toml.Marshal(toFile(cfg))
	if err != nil {
		return nil, fmt.Errorf("render config template: %w", err)
	}
	return out, nil
}

// WriteTemplate writes the default configuration to path.
func WriteTemplate(path string, overwrite bool) error {
	template, err := Template(DefaultConfig())
	if err != nil {
		return err
	}
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config already exists: %s", path)
		}
	}
	return os.WriteFile(path, template, 0o600)
}
