// Package resource resolves each upstream resource through fresh cache,
// remote API, stale cache and bundled snapshot files, in that order.
package resource

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"

	"github.com/cespare/xxhash/v2"

	"consultantpdf/internal/cache"
)

// ErrUnavailable is returned when no tier could serve a resource.
var ErrUnavailable = errors.New("resource unavailable")

// Source records which tier served a payload.
type Source string

const (
	SourceFreshCache Source = "fresh-cache"
	SourceRemote     Source = "remote"
	SourceStaleCache Source = "stale-cache"
	SourceFallback   Source = "fallback"
)

// Remote is the upstream API.
type Remote interface {
	GetJSON(ctx context.Context, path string, params url.Values) (json.RawMessage, error)
}

// Result is a payload and the tier it came from.
type Result struct {
	Payload json.RawMessage
	Source  Source
	// Path is the fallback file used, when Source is SourceFallback.
	Path string
}

// Fetcher serves resources through the cache/remote/fallback chain.
type Fetcher struct {
	cache   cache.Cache
	remote  Remote
	metrics *Metrics
	logger  *slog.Logger
}

// NewFetcher creates a Fetcher. metrics may be nil.
func NewFetcher(c cache.Cache, remote Remote, metrics *Metrics, logger *slog.Logger) *Fetcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Fetcher{cache: c, remote: remote, metrics: metrics, logger: logger}
}

// Fetch returns the payload for d from the first tier that can serve it:
// fresh cache, remote, stale cache, then each fallback file in order.
func (f *Fetcher) Fetch(ctx context.Context, d Descriptor) (Result, error) {
	log := f.logger.With("resource", d.Name, "key", d.Key)

	if payload, ok := f.readFresh(ctx, d, log); ok {
		return f.served(log, d, Result{Payload: payload, Source: SourceFreshCache}), nil
	}

	payload, remoteErr := f.remote.GetJSON(ctx, d.Path, d.Params)
	if remoteErr == nil {
		f.logChange(ctx, d, payload, log)
		f.persist(ctx, d, payload, log)
		return f.served(log, d, Result{Payload: payload, Source: SourceRemote}), nil
	}
	log.Warn("remote fetch failed", "error", remoteErr)

	// Stale entries are already on disk and are not rewritten.
	stale, ok, err := f.cache.ReadStale(ctx, d.Key)
	if err != nil {
		log.Warn("stale cache unreadable", "error", err)
	}
	if ok {
		return f.served(log, d, Result{Payload: stale, Source: SourceStaleCache}), nil
	}

	for _, path := range d.Fallbacks {
		data, err := os.ReadFile(path)
		if err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				log.Warn("fallback file unreadable", "path", path, "error", err)
			}
			continue
		}
		if !json.Valid(data) {
			log.Warn("fallback file is not valid JSON", "path", path)
			continue
		}
		f.persist(ctx, d, data, log)
		return f.served(log, d, Result{Payload: json.RawMessage(data), Source: SourceFallback, Path: path}), nil
	}

	f.metrics.unavailable(d.Name)
	return Result{}, fmt.Errorf("%w: %s: %w", ErrUnavailable, d.Name, remoteErr)
}

func (f *Fetcher) readFresh(ctx context.Context, d Descriptor, log *slog.Logger) (json.RawMessage, bool) {
	payload, ok, err := f.cache.ReadFresh(ctx, d.Key, d.MaxAge)
	if err != nil {
		log.Warn("cache entry unreadable, ignoring", "error", err)
		return nil, false
	}
	return payload, ok
}

// persist writes payload to the cache. Failures never fail the fetch.
func (f *Fetcher) persist(ctx context.Context, d Descriptor, payload json.RawMessage, log *slog.Logger) {
	if err := f.cache.Write(ctx, d.Key, payload); err != nil {
		log.Warn("cache write failed, continuing without persistence", "error", err)
	}
}

// logChange reports whether a remote payload differs from the cached copy.
func (f *Fetcher) logChange(ctx context.Context, d Descriptor, payload json.RawMessage, log *slog.Logger) {
	previous, ok, err := f.cache.ReadStale(ctx, d.Key)
	if err != nil || !ok {
		return
	}
	log.Debug("remote payload compared with cache",
		"changed", xxhash.Sum64(previous) != xxhash.Sum64(payload),
		"digest", fmt.Sprintf("%016x", xxhash.Sum64(payload)))
}

func (f *Fetcher) served(log *slog.Logger, d Descriptor, r Result) Result {
	f.metrics.served(d.Name, r.Source)
	if r.Path != "" {
		log.Info("resource served", "source", r.Source, "path", r.Path)
	} else {
		log.Debug("resource served", "source", r.Source)
	}
	return r
}
