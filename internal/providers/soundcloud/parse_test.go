package soundcloud

import (
	"testing"
)

func TestParseSearchOutputPlaylist(t *testing.T) {
	stdout := `{
		"_type": "playlist",
		"entries": [
			{"title": "First Track", "url": "https://soundcloud.com/a/first", "duration": 267.741, "uploader": "Artist A"},
			{"title": "Second Track", "webpage_url": "https://soundcloud.com/b/second", "url": "https://api.soundcloud.com/2", "duration": 180, "uploader_id": "artist-b"},
			{"title": "No Duration", "url": "https://soundcloud.com/c/third", "duration": null}
		]
	}`

	results, err := parseSearchOutput(stdout)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}

	if results[0].DurationSeconds != 267 {
		t.Fatalf("fractional duration must truncate, got %d", results[0].DurationSeconds)
	}
	if results[1].URL != "https://soundcloud.com/b/second" {
		t.Fatalf("webpage_url must win over url, got %s", results[1].URL)
	}
	if results[1].Uploader != "artist-b" {
		t.Fatalf("uploader_id is the fallback, got %q", results[1].Uploader)
	}
	if results[2].DurationSeconds != 0 {
		t.Fatalf("null duration must map to zero, got %d", results[2].DurationSeconds)
	}
}

func TestParseSearchOutputSingleEntry(t *testing.T) {
	stdout := `{"title": "Lone Track", "webpage_url": "https://soundcloud.com/x/lone", "duration": 95, "uploader": "X"}`

	results, err := parseSearchOutput(stdout)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected the bare entry to be wrapped, got %d results", len(results))
	}
	if results[0].Title != "Lone Track" || results[0].DurationSeconds != 95 {
		t.Fatalf("unexpected result: %+v", results[0])
	}
}

func TestParseSearchOutputEmptyPlaylist(t *testing.T) {
	results, err := parseSearchOutput(`{"_type": "playlist", "entries": []}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("expected no results, got %d", len(results))
	}
}

func TestParseSearchOutputGarbage(t *testing.T) {
	if _, err := parseSearchOutput("yt-dlp exploded"); err == nil {
		t.Fatal("expected a parse error")
	}
}

func TestParseSearchOutputDropsEmptyEntries(t *testing.T) {
	stdout := `{"_type": "playlist", "entries": [{"duration": 100}, {"title": "ok", "url": "https://soundcloud.com/ok"}]}`

	results, err := parseSearchOutput(stdout)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("entry with neither title nor locator must be dropped, got %d", len(results))
	}
}
