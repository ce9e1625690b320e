package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/gridsnap/gridsnap/pkg/errors"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Align.Columns != 4 || cfg.Align.Sort != "number" {
		t.Errorf("defaults not applied: %+v", cfg.Align)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
[align]
columns = 6
sort = "color"
strict = true

[board]
url = "http://board.internal:9000"

[cache]
redis_addr = "localhost:6379"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Align.Columns != 6 || cfg.Align.Sort != "color" || !cfg.Align.Strict {
		t.Errorf("align = %+v", cfg.Align)
	}
	// Untouched keys keep their defaults.
	if cfg.Align.HGap != 20 || cfg.Align.Anchor != "top-left" {
		t.Errorf("partial override clobbered defaults: %+v", cfg.Align)
	}
	if cfg.Board.URL != "http://board.internal:9000" {
		t.Errorf("board = %+v", cfg.Board)
	}
	if cfg.Cache.RedisAddr != "localhost:6379" {
		t.Errorf("cache = %+v", cfg.Cache)
	}
}

func TestLoadRejectsMalformedFile(t *testing.T) {
	path := writeConfig(t, `[align`)
	_, err := Load(path)
	if errors.GetCode(err) != errors.ErrCodeInvalidConfig {
		t.Errorf("code = %v, want INVALID_CONFIG", errors.GetCode(err))
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	path := writeConfig(t, `
[align]
colums = 3
`)
	_, err := Load(path)
	if errors.GetCode(err) != errors.ErrCodeInvalidConfig {
		t.Errorf("code = %v, want INVALID_CONFIG for misspelled key", errors.GetCode(err))
	}
}
