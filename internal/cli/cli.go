package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/gridsnap/gridsnap/pkg/align"
	"github.com/gridsnap/gridsnap/pkg/board"
	"github.com/gridsnap/gridsnap/pkg/buildinfo"
	"github.com/gridsnap/gridsnap/pkg/cache"
	"github.com/gridsnap/gridsnap/pkg/config"
	"github.com/gridsnap/gridsnap/pkg/luma"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "gridsnap"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
	Config config.Config

	configPath string
	boardURL   string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: config.Default(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          "gridsnap",
		Short:        "Gridsnap arranges board images into ordered grids",
		Long:         `Gridsnap is a board-plugin CLI that orders the selected images on an infinite canvas (by title number, alphabetically, by position, or by brightness) and lays them out as a grid anchored to a corner of their original bounding box.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := c.loadConfig(); err != nil {
				return err
			}
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default ~/.config/gridsnap/config.toml)")
	root.PersistentFlags().StringVar(&c.boardURL, "board", "", "board server URL (overrides config)")

	// Register all subcommands
	root.AddCommand(c.alignCommand())
	root.AddCommand(c.importCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig reads the config file, using the XDG default path when the
// --config flag is unset.
func (c *CLI) loadConfig() error {
	path := c.configPath
	if path == "" {
		var err error
		if path, err = config.DefaultPath(); err != nil {
			c.Logger.Debug("no home directory, using built-in defaults", "err", err)
			return nil
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	c.Config = cfg
	return nil
}

// =============================================================================
// Collaborator Factories
// =============================================================================

// newBoard connects to the configured board backend. The returned closer
// must be called when the command finishes.
func (c *CLI) newBoard(ctx context.Context) (board.Board, func(), error) {
	if uri := c.Config.Board.MongoURI; uri != "" {
		mb, err := board.NewMongoBoard(ctx, uri, c.Config.Board.MongoDatabase, c.Config.Board.MongoCollection, c.Logger)
		if err != nil {
			return nil, nil, err
		}
		return mb, func() { mb.Close(context.Background()) }, nil
	}

	url := c.boardURL
	if url == "" {
		url = c.Config.Board.URL
	}
	client := board.NewClient(url)
	if err := client.Health(ctx); err != nil {
		return nil, nil, err
	}
	return client, func() {}, nil
}

// newCache builds the luminance cache backend: Redis when configured, a
// file cache otherwise, and a null cache when caching is off or no
// directory is available.
func (c *CLI) newCache(ctx context.Context, noCache bool) cache.Cache {
	if noCache || c.Config.Cache.Disabled {
		return cache.NewNullCache()
	}
	if addr := c.Config.Cache.RedisAddr; addr != "" {
		rc, err := cache.NewRedisCache(ctx, addr)
		if err != nil {
			c.Logger.Warn("redis cache unavailable, falling back to file cache", "addr", addr, "err", err)
		} else {
			return rc
		}
	}

	dir := c.Config.Cache.Dir
	if dir == "" {
		var err error
		if dir, err = cacheDir(); err != nil {
			return cache.NewNullCache()
		}
	}
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		c.Logger.Warn("file cache unavailable, caching disabled", "dir", dir, "err", err)
		return cache.NewNullCache()
	}
	return fc
}

// newSampler builds the cached luminance sampler used by color sorts.
func (c *CLI) newSampler(ctx context.Context, noCache bool) align.Sampler {
	return luma.NewCachedSampler(luma.NewSampler(c.Logger), c.newCache(ctx, noCache), c.Logger)
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/gridsnap/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}
