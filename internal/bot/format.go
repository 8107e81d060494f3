package bot

import (
	"fmt"
	"strings"
)

const buttonTitleRunes = 30

// FormatDuration renders seconds as MM:SS. Negative values render as 00:00.
func FormatDuration(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}

// buttonLabel renders one keyboard row: position, truncated title, duration.
func buttonLabel(position int, title string, durationSeconds int) string {
	return fmt.Sprintf("%d. %s (%s)", position, truncateRunes(title, buttonTitleRunes), FormatDuration(durationSeconds))
}

// truncateRunes shortens s to at most max runes, appending an ellipsis when
// something was cut. Rune-based so multi-byte titles are never split.
func truncateRunes(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}

// extractFindQuery strips the trigger word and filler words from a free-text
// find command. The result may be empty.
func extractFindQuery(text, trigger string) string {
	query := strings.TrimSpace(strings.TrimPrefix(text, trigger))
	for _, word := range stopWords {
		query = strings.ReplaceAll(query, word, "")
	}
	return strings.Join(strings.Fields(query), " ")
}
