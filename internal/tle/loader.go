package tle

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"
)

// Loader resolves a satellite name to its element set, preferring a fresh
// cache entry, then the remote source, then a stale cache entry.
type Loader struct {
	fetcher *Fetcher
	cache   *Cache
	maxAge  time.Duration
	offline bool
	logger  *slog.Logger
	now     func() time.Time
}

// LoaderConfig configures a Loader.
type LoaderConfig struct {
	SourceURL string
	CacheDir  string
	MaxAge    time.Duration // zero: any cached file is fresh
	Offline   bool          // never contact the source
	Timeout   time.Duration
}

// NewLoader creates a Loader.
func NewLoader(cfg LoaderConfig, logger *slog.Logger) *Loader {
	return &Loader{
		fetcher: NewFetcher(cfg.SourceURL, cfg.Timeout, logger),
		cache:   NewCache(cfg.CacheDir),
		maxAge:  cfg.MaxAge,
		offline: cfg.Offline,
		logger:  logger,
		now:     time.Now,
	}
}

// Load returns the element set for name.
func (l *Loader) Load(ctx context.Context, name string) (ElementSet, error) {
	cached, modTime, cacheErr := l.cache.Load(name)
	if cacheErr != nil && !errors.Is(cacheErr, os.ErrNotExist) {
		l.logger.Warn("unreadable tle cache", "component", "tle", "satellite", name, "error", cacheErr)
	}
	haveCache := cacheErr == nil

	if haveCache && (l.offline || l.maxAge <= 0 || l.now().Sub(modTime) < l.maxAge) {
		if e, err := l.decode(cached, name); err == nil {
			l.logger.Debug("tle loaded from cache", "component", "tle", "satellite", name, "age", l.now().Sub(modTime).String())
			return e, nil
		} else if l.offline {
			return ElementSet{}, fmt.Errorf("cached tle for %s: %w", name, err)
		}
	}
	if l.offline {
		return ElementSet{}, fmt.Errorf("no cached tle for %s in offline mode", name)
	}

	e, data, fetchErr := l.fetch(ctx, name)
	if fetchErr == nil {
		if err := l.cache.Write(name, data); err != nil {
			l.logger.Warn("failed to write tle cache", "component", "tle", "satellite", name, "error", err)
		}
		l.logger.Info("tle fetched", "component", "tle", "satellite", name, "norad_id", e.NORADID, "epoch", e.Epoch)
		return e, nil
	}

	if haveCache {
		if e, err := l.decode(cached, name); err == nil {
			l.logger.Warn("tle fetch failed, using stale cache",
				"component", "tle",
				"satellite", name,
				"cache_age", l.now().Sub(modTime).String(),
				"error", fetchErr,
			)
			return e, nil
		}
	}
	return ElementSet{}, fetchErr
}

func (l *Loader) fetch(ctx context.Context, name string) (ElementSet, []byte, error) {
	data, err := l.fetcher.Fetch(ctx, name)
	if err != nil {
		return ElementSet{}, nil, err
	}
	e, err := l.decode(data, name)
	if err != nil {
		return ElementSet{}, nil, fmt.Errorf("fetched tle for %s: %w", name, err)
	}
	return e, data, nil
}

func (l *Loader) decode(data []byte, name string) (ElementSet, error) {
	entries, err := Parse(bytes.NewReader(data), l.logger)
	if err != nil {
		return ElementSet{}, err
	}
	return Find(entries, name)
}
