// Package fetch materializes a selected track as a local audio file. Each
// fetch runs in its own scratch directory that is cleaned up on a delay, so
// callers get a grace period to stream the file out before it disappears.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/semaphore"

	"tunestream/musicbot/internal/domain"
	"tunestream/musicbot/internal/metrics"
)

var (
	// ErrBadURL means the source locator is not a usable http(s) URL.
	ErrBadURL = errors.New("fetch: source url is not valid")

	// ErrNoAudio means the download finished but produced no audio file
	// under the size ceiling.
	ErrNoAudio = errors.New("fetch: no acceptable audio file produced")
)

// Extensions the chat platform accepts as audio attachments.
var audioExtensions = map[string]struct{}{
	".mp3":  {},
	".m4a":  {},
	".ogg":  {},
	".wav":  {},
	".flac": {},
}

const (
	defaultConcurrency = 2
	defaultTimeout     = 120 * time.Second
	defaultMaxBytes    = 50 << 20
	cleanupDelay       = 2 * time.Second
)

// Downloader writes the media behind sourceURL into dir. Implementations
// decide formats and naming; the fetcher only cares what lands in dir.
type Downloader interface {
	Download(ctx context.Context, sourceURL, dir string) error
}

type Fetcher struct {
	downloader Downloader
	timeout    time.Duration
	maxBytes   int64
	sem        *semaphore.Weighted

	// Hook for tests; production uses the delayed removal below.
	cleanup func(dir string)
}

type Option func(*Fetcher)

// WithTimeout bounds a single download attempt.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		if d > 0 {
			f.timeout = d
		}
	}
}

// WithMaxBytes sets the size ceiling; larger files are skipped, not errors.
func WithMaxBytes(n int64) Option {
	return func(f *Fetcher) {
		if n > 0 {
			f.maxBytes = n
		}
	}
}

// WithConcurrency bounds how many downloads may run at once.
func WithConcurrency(n int64) Option {
	return func(f *Fetcher) {
		if n > 0 {
			f.sem = semaphore.NewWeighted(n)
		}
	}
}

func withCleanup(fn func(dir string)) Option {
	return func(f *Fetcher) { f.cleanup = fn }
}

func New(downloader Downloader, opts ...Option) *Fetcher {
	f := &Fetcher{
		downloader: downloader,
		timeout:    defaultTimeout,
		maxBytes:   defaultMaxBytes,
		sem:        semaphore.NewWeighted(defaultConcurrency),
		cleanup:    scheduleCleanup,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch downloads the track and returns the path of the best audio file it
// produced. The file lives in a scratch directory that is removed shortly
// after Fetch returns; the caller must consume or move it promptly.
func (f *Fetcher) Fetch(ctx context.Context, track domain.Track) (domain.FetchResult, error) {
	if err := validateSourceURL(track.SourceURL); err != nil {
		metrics.FetchTotal.WithLabelValues("bad_url").Inc()
		return domain.FetchResult{}, err
	}

	if err := f.sem.Acquire(ctx, 1); err != nil {
		return domain.FetchResult{}, err
	}
	defer f.sem.Release(1)

	ctx, span := otel.Tracer("musicbot/fetch").Start(ctx, "fetch.run")
	span.SetAttributes(attribute.String("url", track.SourceURL))
	defer span.End()

	dir, err := os.MkdirTemp("", "fetch-*")
	if err != nil {
		return domain.FetchResult{}, fmt.Errorf("fetch: scratch dir: %w", err)
	}
	defer f.cleanup(dir)

	dlCtx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	startedAt := time.Now()
	if err := f.downloader.Download(dlCtx, track.SourceURL, dir); err != nil {
		metrics.FetchTotal.WithLabelValues("error").Inc()
		return domain.FetchResult{}, fmt.Errorf("fetch %q: %w", track.SourceURL, err)
	}
	metrics.FetchDuration.Observe(time.Since(startedAt).Seconds())

	result, err := f.pickAudioFile(dir)
	if err != nil {
		metrics.FetchTotal.WithLabelValues("no_audio").Inc()
		return domain.FetchResult{}, err
	}

	metrics.FetchTotal.WithLabelValues("ok").Inc()
	slog.Info("fetch completed",
		slog.String("url", track.SourceURL),
		slog.String("path", result.Path),
		slog.Int64("size_bytes", result.SizeBytes),
	)
	return result, nil
}

func validateSourceURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return ErrBadURL
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return ErrBadURL
	}
	return nil
}

// pickAudioFile returns the first audio file in dir, in lexical order, that
// fits under the size ceiling. Oversized files are skipped silently so a
// smaller alternative format can still win.
func (f *Fetcher) pickAudioFile(dir string) (domain.FetchResult, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return domain.FetchResult{}, fmt.Errorf("fetch: scan scratch dir: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if _, ok := audioExtensions[ext]; !ok {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.Size() >= f.maxBytes {
			slog.Warn("skipping oversized download",
				slog.String("file", entry.Name()),
				slog.Int64("size_bytes", info.Size()),
			)
			continue
		}
		return domain.FetchResult{
			Path:      filepath.Join(dir, entry.Name()),
			SizeBytes: info.Size(),
		}, nil
	}
	return domain.FetchResult{}, ErrNoAudio
}

// scheduleCleanup removes dir after a short delay without blocking the
// caller. RemoveAll tolerates files already deleted by the consumer.
func scheduleCleanup(dir string) {
	time.AfterFunc(cleanupDelay, func() {
		if err := os.RemoveAll(dir); err != nil {
			slog.Warn("scratch dir cleanup failed",
				slog.String("dir", dir),
				slog.String("error", err.Error()),
			)
		}
	})
}
