package config

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the default configuration file name.
const DefaultConfigFile = ".wikiextract"

// ErrConfigNotFound is returned when the configuration file does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")

// LanguageConfig holds per-language overrides from the config file.
// Zero fields fall through to the defaults section, then to the built-in
// defaults.
type LanguageConfig struct {
	// Mirror overrides the dump mirror base URL for this language.
	Mirror string `yaml:"mirror,omitempty"`

	// DumpVersion pins a dump date instead of "latest".
	DumpVersion string `yaml:"dumpVersion,omitempty"`
}

// File represents the structure of the .wikiextract configuration file.
type File struct {
	// Languages maps Wikipedia language codes to their overrides.
	Languages map[string]LanguageConfig `yaml:"languages,omitempty"`

	// Defaults applies to every language unless overridden.
	Defaults LanguageConfig `yaml:"defaults,omitempty"`
}

// GetLanguageConfig returns the merged configuration for a language code.
func (f *File) GetLanguageConfig(lang string) LanguageConfig {
	result := f.Defaults
	if lc, ok := f.Languages[lang]; ok {
		if lc.Mirror != "" {
			result.Mirror = lc.Mirror
		}
		if lc.DumpVersion != "" {
			result.DumpVersion = lc.DumpVersion
		}
	}
	return result
}

// LoadConfigFile loads language overrides from a YAML file.
// If the file does not exist, it returns ErrConfigNotFound; callers decide
// whether that is fatal based on whether the path was user-supplied.
func LoadConfigFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, err
	}

	if f.Languages == nil {
		f.Languages = make(map[string]LanguageConfig)
	}
	return &f, nil
}

// FindConfigFile searches for the configuration file:
//  1. the explicit path, if given
//  2. .wikiextract in the current directory
//  3. .wikiextract in the user's home directory
//
// Returns the path found, or "" if none exists.
func FindConfigFile(configPath string) string {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	if cwd, err := os.Getwd(); err == nil {
		p := filepath.Join(cwd, DefaultConfigFile)
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	if home, err := os.UserHomeDir(); err == nil {
		p := filepath.Join(home, DefaultConfigFile)
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	return ""
}
