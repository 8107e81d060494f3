package soundcloud

import (
	"encoding/json"
	"fmt"
	"strings"

	"tunestream/musicbot/internal/domain"
)

// searchPayload mirrors the single-JSON dump of a flat search. A one-track
// result may arrive as a bare entry instead of a playlist wrapper.
type searchPayload struct {
	Type    string         `json:"_type"`
	Entries []entryPayload `json:"entries"`
	entryPayload
}

type entryPayload struct {
	Title      string      `json:"title"`
	URL        string      `json:"url"`
	WebpageURL string      `json:"webpage_url"`
	Duration   json.Number `json:"duration"`
	Uploader   string      `json:"uploader"`
	UploaderID string      `json:"uploader_id"`
}

func parseSearchOutput(stdout string) ([]domain.RawResult, error) {
	var payload searchPayload
	if err := json.Unmarshal([]byte(stdout), &payload); err != nil {
		return nil, fmt.Errorf("parse search output: %w", err)
	}

	entries := payload.Entries
	if payload.Type != "playlist" && len(entries) == 0 {
		entries = []entryPayload{payload.entryPayload}
	}

	results := make([]domain.RawResult, 0, len(entries))
	for _, e := range entries {
		r, ok := e.toRawResult()
		if !ok {
			continue
		}
		results = append(results, r)
	}
	return results, nil
}

func (e entryPayload) toRawResult() (domain.RawResult, bool) {
	locator := e.WebpageURL
	if locator == "" {
		locator = e.URL
	}
	if strings.TrimSpace(e.Title) == "" && locator == "" {
		return domain.RawResult{}, false
	}

	uploader := e.Uploader
	if uploader == "" {
		uploader = e.UploaderID
	}

	return domain.RawResult{
		Title:           e.Title,
		URL:             locator,
		DurationSeconds: durationSeconds(e.Duration),
		Uploader:        uploader,
	}, true
}

// durationSeconds tolerates the three shapes yt-dlp emits: an integer, a
// fractional number of seconds, or null for tracks without metadata.
func durationSeconds(n json.Number) int {
	if n == "" {
		return 0
	}
	f, err := n.Float64()
	if err != nil {
		return 0
	}
	return int(f)
}
