package domain

import "time"

// RawResult is one unfiltered hit from the media provider. Duration and
// uploader may be absent depending on the extractor.
type RawResult struct {
	Title           string
	URL             string
	DurationSeconds int
	Uploader        string
}

// Track is one ranked, playable search candidate. Identity is SourceURL.
type Track struct {
	Title           string
	SourceURL       string
	DurationSeconds int
	Artist          string
	Score           int
}

// ResultSet is the outcome of one logical search: an ordered, already
// ranked and capped list of tracks plus the normalized query that produced
// it. Holders treat it as an immutable snapshot.
type ResultSet struct {
	Query     string
	Tracks    []Track
	CreatedAt time.Time
}

// Clone returns a deep copy so two holders never share the track slice.
func (r ResultSet) Clone() ResultSet {
	cloned := r
	if r.Tracks != nil {
		cloned.Tracks = append([]Track(nil), r.Tracks...)
	}
	return cloned
}

// Session binds a chat to its most recent result set and the requester
// allowed to act on it.
type Session struct {
	ChatID      int64
	RequesterID int64
	Results     ResultSet
	CreatedAt   time.Time
}

// FetchResult is a downloaded audio file on local disk. It is only valid
// until the fetcher's deferred cleanup removes its scratch directory.
type FetchResult struct {
	Path      string
	SizeBytes int64
}
