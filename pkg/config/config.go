// Package config loads gridsnap settings from a TOML file.
//
// The file provides defaults for flags the user would otherwise repeat on
// every invocation; flags always win over file values. The default location
// follows XDG (~/.config/gridsnap/config.toml).
package config

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/gridsnap/gridsnap/pkg/errors"
)

// appName is the directory name used under the XDG config home.
const appName = "gridsnap"

// Config mirrors the TOML file layout.
type Config struct {
	Align AlignConfig `toml:"align"`
	Board BoardConfig `toml:"board"`
	Cache CacheConfig `toml:"cache"`
}

// AlignConfig holds default alignment parameters.
type AlignConfig struct {
	Columns  int     `toml:"columns"`
	HGap     float64 `toml:"hgap"`
	VGap     float64 `toml:"vgap"`
	Sort     string  `toml:"sort"`
	Strict   bool    `toml:"strict"`
	Anchor   string  `toml:"anchor"`
	SizeMode string  `toml:"size_mode"`
	RowMode  string  `toml:"row_mode"`
}

// BoardConfig selects which board backend the CLI talks to.
type BoardConfig struct {
	URL             string `toml:"url"`
	MongoURI        string `toml:"mongo_uri"`
	MongoDatabase   string `toml:"mongo_database"`
	MongoCollection string `toml:"mongo_collection"`
}

// CacheConfig controls luminance caching.
type CacheConfig struct {
	Disabled  bool   `toml:"disabled"`
	Dir       string `toml:"dir"`
	RedisAddr string `toml:"redis_addr"`
}

// Default returns the built-in configuration used when no file exists.
func Default() Config {
	return Config{
		Align: AlignConfig{
			Columns:  4,
			HGap:     20,
			VGap:     20,
			Sort:     "number",
			Anchor:   "top-left",
			SizeMode: "none",
			RowMode:  "uniform",
		},
		Board: BoardConfig{
			URL:             "http://localhost:8722",
			MongoDatabase:   appName,
			MongoCollection: "items",
		},
	}
}

// DefaultPath returns the XDG location of the config file.
func DefaultPath() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}

// Load reads the config file at path, layering it over Default(). A missing
// file is not an error; a malformed one is.
func Load(path string) (Config, error) {
	cfg := Default()
	meta, err := toml.DecodeFile(path, &cfg)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse %s", path)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return cfg, errors.New(errors.ErrCodeInvalidConfig,
			"unknown key %q in %s", undecoded[0].String(), path)
	}
	return cfg, nil
}
