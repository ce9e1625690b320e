package luma

import (
	"context"
	"strconv"

	"github.com/charmbracelet/log"

	"github.com/gridsnap/gridsnap/pkg/board"
	"github.com/gridsnap/gridsnap/pkg/cache"
)

// keyPrefix namespaces luminance entries within a shared cache backend.
const keyPrefix = "luma"

// Backend is any luminance source the cached wrapper can delegate to.
type Backend interface {
	Sample(ctx context.Context, src board.ImageSource) (float64, error)
}

// CachedSampler memoizes Backend results in a cache.Cache. A stable image
// source always yields the same luminance, so entries are safe to share
// between runs and between processes.
type CachedSampler struct {
	backend Backend
	cache   cache.Cache
	logger  *log.Logger
}

// NewCachedSampler wraps backend with the given cache.
func NewCachedSampler(backend Backend, c cache.Cache, logger *log.Logger) *CachedSampler {
	if logger == nil {
		logger = log.Default()
	}
	return &CachedSampler{backend: backend, cache: c, logger: logger}
}

// Sample returns the cached luminance when present, otherwise samples and
// stores. Cache failures are logged and ignored; the sampler still answers.
func (s *CachedSampler) Sample(ctx context.Context, src board.ImageSource) (float64, error) {
	key := cache.Key(keyPrefix, src.CacheContent())

	if data, hit, err := s.cache.Get(ctx, key); err != nil {
		s.logger.Debug("cache read failed", "key", key, "err", err)
	} else if hit {
		if v, perr := strconv.ParseFloat(string(data), 64); perr == nil {
			return v, nil
		}
		// Corrupt entry: drop it and resample.
		_ = s.cache.Delete(ctx, key)
	}

	v, err := s.backend.Sample(ctx, src)
	if err != nil {
		return 0, err
	}

	if err := s.cache.Set(ctx, key, []byte(board.FormatLuma(v)), cache.TTLLuma); err != nil {
		s.logger.Debug("cache write failed", "key", key, "err", err)
	}
	return v, nil
}
