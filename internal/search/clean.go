package search

import (
	"regexp"
	"strings"
)

// Characters allowed in a presented title. Letters and digits from any
// script survive; stray markup and emoji are stripped.
var titleAllowPattern = regexp.MustCompile(`[^\p{L}\p{N}_\s\-\.\(\)\[\]]`)

// Marketing suffixes removed from titles, longest first so that "official
// music video" disappears before "official video" or "video" get a chance
// to leave fragments behind.
var marketingTagPatterns = compileTags(
	"official music video",
	"official video",
	"official audio",
	"lyric video",
	"audio",
	"video",
	"clip",
	"1080p",
	"720p",
	"hd",
	"4k",
	"mv",
)

func compileTags(tags ...string) []*regexp.Regexp {
	patterns := make([]*regexp.Regexp, 0, len(tags))
	for _, tag := range tags {
		patterns = append(patterns, regexp.MustCompile(`(?i)`+regexp.QuoteMeta(tag)))
	}
	return patterns
}

// Brackets left hollow after tag removal, e.g. "Song (Official Video)"
// becoming "Song ()".
var emptyBracketPattern = regexp.MustCompile(`\(\s*\)|\[\s*\]`)

// CleanTitle strips decoration and marketing tags from a provider title and
// collapses the remaining whitespace. The result may be empty.
func CleanTitle(title string) string {
	cleaned := titleAllowPattern.ReplaceAllString(title, "")
	for _, pattern := range marketingTagPatterns {
		cleaned = pattern.ReplaceAllString(cleaned, "")
	}
	cleaned = emptyBracketPattern.ReplaceAllString(cleaned, "")
	return strings.Join(strings.Fields(cleaned), " ")
}
