package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// TestNewConfig tests that defaults are populated.
func TestNewConfig(t *testing.T) {
	t.Parallel()

	cfg := NewConfig()

	if cfg.Language != DefaultLanguage {
		t.Errorf("expected language %q, got %q", DefaultLanguage, cfg.Language)
	}
	if cfg.DumpVersion != DefaultDumpVersion {
		t.Errorf("expected dump version %q, got %q", DefaultDumpVersion, cfg.DumpVersion)
	}
	if cfg.ChunkSize != DefaultChunkSize {
		t.Errorf("expected chunk size %d, got %d", DefaultChunkSize, cfg.ChunkSize)
	}
	if cfg.QueueDepth != DefaultQueueDepth {
		t.Errorf("expected queue depth %d, got %d", DefaultQueueDepth, cfg.QueueDepth)
	}
	if cfg.ReadTimeout != 30*time.Second {
		t.Errorf("expected read timeout 30s, got %v", cfg.ReadTimeout)
	}
	if !cfg.Text.OnlySentences {
		t.Error("expected only-sentences to default on")
	}
	if !cfg.Text.IncludeTables {
		t.Error("expected tables to default on")
	}
	if cfg.Text.Markdown {
		t.Error("expected markdown to default off")
	}
}

// TestConfigValidate tests validation sentinel errors.
func TestConfigValidate(t *testing.T) {
	t.Parallel()

	valid := func() *Config {
		cfg := NewConfig()
		cfg.Source = "https://dumps.wikimedia.org/"
		cfg.CollectText = true
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{"valid config", func(*Config) {}, nil},
		{"missing source", func(c *Config) { c.Source = "" }, ErrNoSource},
		{"no generators", func(c *Config) { c.CollectText = false }, ErrNoGenerator},
		{"zero chunk size", func(c *Config) { c.ChunkSize = 0 }, ErrInvalidChunkSize},
		{"negative chunk size", func(c *Config) { c.ChunkSize = -1 }, ErrInvalidChunkSize},
		{"zero queue depth", func(c *Config) { c.QueueDepth = 0 }, ErrInvalidQueueDepth},
		{"zero parse workers", func(c *Config) { c.ParseWorkers = 0 }, ErrInvalidParseWorkers},
		{"zero retry limit", func(c *Config) { c.RetryLimit = 0 }, ErrInvalidRetryLimit},
		{"zero timeout", func(c *Config) { c.ReadTimeout = 0 }, ErrInvalidTimeout},
		{"zero page cap", func(c *Config) { c.MaxPageBytes = 0 }, ErrInvalidPageCap},
		{"bogus language", func(c *Config) { c.Language = "not a language!" }, ErrInvalidLanguage},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := valid()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("expected valid config, got %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

// TestAnyGenerator tests the generator toggle predicate.
func TestAnyGenerator(t *testing.T) {
	t.Parallel()

	cfg := NewConfig()
	if cfg.AnyGenerator() {
		t.Error("expected no generators by default")
	}

	cfg.BuildDictionary = true
	if !cfg.AnyGenerator() {
		t.Error("expected dictionary toggle to count")
	}
}

// TestLoadConfigFile tests YAML loading and language merge behavior.
func TestLoadConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("loads and merges languages", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), DefaultConfigFile)
		content := `
defaults:
  mirror: https://mirror.example.org/
languages:
  hr:
    dumpVersion: "20260801"
  de:
    mirror: https://de.example.org/
`
		if err := os.WriteFile(path, []byte(content), 0600); err != nil {
			t.Fatal(err)
		}

		f, err := LoadConfigFile(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		hr := f.GetLanguageConfig("hr")
		if hr.Mirror != "https://mirror.example.org/" {
			t.Errorf("expected default mirror for hr, got %q", hr.Mirror)
		}
		if hr.DumpVersion != "20260801" {
			t.Errorf("expected pinned version for hr, got %q", hr.DumpVersion)
		}

		de := f.GetLanguageConfig("de")
		if de.Mirror != "https://de.example.org/" {
			t.Errorf("expected override mirror for de, got %q", de.Mirror)
		}

		en := f.GetLanguageConfig("en")
		if en.Mirror != "https://mirror.example.org/" {
			t.Errorf("expected default mirror for unknown language, got %q", en.Mirror)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()

		_, err := LoadConfigFile(filepath.Join(t.TempDir(), "nope"))
		if !errors.Is(err, ErrConfigNotFound) {
			t.Errorf("expected ErrConfigNotFound, got %v", err)
		}
	})

	t.Run("malformed yaml", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), DefaultConfigFile)
		if err := os.WriteFile(path, []byte("languages: [broken"), 0600); err != nil {
			t.Fatal(err)
		}
		if _, err := LoadConfigFile(path); err == nil {
			t.Error("expected error for malformed yaml")
		}
	})
}

// TestFindConfigFile tests explicit-path resolution.
func TestFindConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("explicit existing path", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "custom.yaml")
		if err := os.WriteFile(path, []byte("{}"), 0600); err != nil {
			t.Fatal(err)
		}
		if got := FindConfigFile(path); got != path {
			t.Errorf("expected %q, got %q", path, got)
		}
	})

	t.Run("explicit missing path", func(t *testing.T) {
		t.Parallel()

		if got := FindConfigFile(filepath.Join(t.TempDir(), "nope")); got != "" {
			t.Errorf("expected empty result, got %q", got)
		}
	})
}
