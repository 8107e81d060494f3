// Package soundcloud resolves queries against the SoundCloud catalog and
// downloads tracks, both through the yt-dlp binary managed by go-ytdlp.
package soundcloud

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/lrstanley/go-ytdlp"
	"golang.org/x/time/rate"

	"tunestream/musicbot/internal/domain"
)

const (
	// bestaudio with a preference for containers the chat platform can
	// attach without transcoding.
	downloadFormat = "bestaudio[ext=mp3]/bestaudio[ext=m4a]/bestaudio/best"

	outputTemplate = "%(title)s.%(ext)s"
)

// Install ensures a yt-dlp binary is available, downloading one if needed.
// Call it once at startup.
func Install(ctx context.Context) error {
	if _, err := ytdlp.Install(ctx, nil); err != nil {
		return fmt.Errorf("soundcloud: install yt-dlp: %w", err)
	}
	return nil
}

// Client talks to SoundCloud through yt-dlp. A courtesy limiter spaces out
// invocations so bursts of chat commands do not hammer the catalog.
type Client struct {
	limiter *rate.Limiter
}

func New() *Client {
	return &Client{
		limiter: rate.NewLimiter(rate.Every(time.Second), 2),
	}
}

func (c *Client) Name() string { return "soundcloud" }

// Search runs a flat catalog search and returns up to wanted raw results.
func (c *Client) Search(ctx context.Context, query string, wanted int) ([]domain.RawResult, error) {
	if wanted <= 0 {
		wanted = 1
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	res, err := ytdlp.New().
		DumpSingleJSON().
		FlatPlaylist().
		SkipDownload().
		Quiet().
		NoWarnings().
		Run(ctx, fmt.Sprintf("scsearch%d:%s", wanted, query))
	if err != nil {
		return nil, fmt.Errorf("soundcloud: search %q: %w", query, err)
	}

	results, err := parseSearchOutput(res.Stdout)
	if err != nil {
		return nil, fmt.Errorf("soundcloud: search %q: %w", query, err)
	}
	return results, nil
}

// Download fetches the audio behind sourceURL into dir.
func (c *Client) Download(ctx context.Context, sourceURL, dir string) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	_, err := ytdlp.New().
		Format(downloadFormat).
		Output(filepath.Join(dir, outputTemplate)).
		NoPlaylist().
		NoProgress().
		Quiet().
		NoWarnings().
		Run(ctx, sourceURL)
	if err != nil {
		return fmt.Errorf("soundcloud: download %q: %w", sourceURL, err)
	}
	return nil
}
