// Package translit expands a free-text query into spelling variants by
// converting between Cyrillic and Latin scripts. Variants feed the search
// orchestrator so a query typed in either script can match catalog entries
// labeled in the other.
package translit

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// toLatin maps single Cyrillic letters to their Latin spelling. Letters
// without a sound ("ъ", "ь") map to the empty string and are dropped.
var toLatin = map[rune]string{
	'а': "a", 'б': "b", 'в': "v", 'г': "g", 'д': "d", 'е': "e", 'ё': "e",
	'ж': "zh", 'з': "z", 'и': "i", 'й': "y", 'к': "k", 'л': "l", 'м': "m",
	'н': "n", 'о': "o", 'п': "p", 'р': "r", 'с': "s", 'т': "t", 'у': "u",
	'ф': "f", 'х': "h", 'ц': "ts", 'ч': "ch", 'ш': "sh", 'щ': "sch",
	'ъ': "", 'ы': "y", 'ь': "", 'э': "e", 'ю': "yu", 'я': "ya",
}

// cyrDigraphs are multi-letter Cyrillic sequences with a dedicated Latin
// spelling. They must be matched before single-letter mapping so the pair is
// not transliterated letter by letter.
var cyrDigraphs = []struct{ from, to string }{
	{"шч", "shch"},
	{"жч", "shch"},
	{"йо", "yo"},
	{"йе", "ye"},
}

// latinDigraphs are Latin sequences mapping to one Cyrillic letter, ordered
// longest first so "shch" is never consumed as "sh"+"ch".
var latinDigraphs = []struct{ from, to string }{
	{"shch", "щ"},
	{"sch", "щ"},
	{"zh", "ж"},
	{"ts", "ц"},
	{"ch", "ч"},
	{"sh", "ш"},
	{"yu", "ю"},
	{"ya", "я"},
}

// toCyrillic maps single Latin letters back to Cyrillic. Ambiguous letters
// resolve to the most common source ("y" to "ы", "e" to "э").
var toCyrillic = map[rune]string{
	'a': "а", 'b': "б", 'v': "в", 'g': "г", 'd': "д", 'e': "э", 'z': "з",
	'i': "и", 'y': "ы", 'k': "к", 'l': "л", 'm': "м", 'n': "н", 'o': "о",
	'p': "п", 'r': "р", 's': "с", 't': "т", 'u': "у", 'f': "ф", 'h': "х",
}

// Expand returns the ordered variant list for query: the query itself first,
// then at most one transliterated alternate. The alternate is omitted when it
// is identical to the query. Expand never fails; unmapped characters pass
// through unchanged.
func Expand(query string) []string {
	normalized := norm.NFC.String(query)
	variants := []string{normalized}

	var alternate string
	if hasCyrillic(normalized) {
		alternate = ToLatin(normalized)
	} else {
		// Reverse conversion is best-effort: offer it only when every letter
		// mapped, otherwise a half-converted variant would search for garbage.
		alternate = ToCyrillic(normalized)
		if hasLatinLetter(alternate) {
			alternate = ""
		}
	}
	if alternate != "" && alternate != normalized {
		variants = append(variants, alternate)
	}
	return variants
}

// ToLatin transliterates Cyrillic text to a lowercase Latin spelling.
func ToLatin(text string) string {
	runes := []rune(strings.ToLower(text))
	var b strings.Builder
	b.Grow(len(runes))

	for i := 0; i < len(runes); {
		if mapped, consumed := matchCyrDigraph(runes[i:]); consumed > 0 {
			b.WriteString(mapped)
			i += consumed
			continue
		}
		r := runes[i]
		if mapped, ok := toLatin[r]; ok {
			b.WriteString(mapped)
		} else {
			b.WriteRune(r)
		}
		i++
	}
	return b.String()
}

// ToCyrillic transliterates Latin text to a lowercase Cyrillic spelling,
// trying digraphs longest-first before single letters.
func ToCyrillic(text string) string {
	lowered := strings.ToLower(text)
	var b strings.Builder
	b.Grow(len(lowered))

	for i := 0; i < len(lowered); {
		if mapped, consumed := matchLatinDigraph(lowered[i:]); consumed > 0 {
			b.WriteString(mapped)
			i += consumed
			continue
		}
		r, size := utf8.DecodeRuneInString(lowered[i:])
		if mapped, ok := toCyrillic[r]; ok {
			b.WriteString(mapped)
		} else {
			b.WriteRune(r)
		}
		i += size
	}
	return b.String()
}

func matchCyrDigraph(rest []rune) (string, int) {
	for _, d := range cyrDigraphs {
		from := []rune(d.from)
		if len(rest) < len(from) {
			continue
		}
		if string(rest[:len(from)]) == d.from {
			return d.to, len(from)
		}
	}
	return "", 0
}

func matchLatinDigraph(rest string) (string, int) {
	for _, d := range latinDigraphs {
		if strings.HasPrefix(rest, d.from) {
			return d.to, len(d.from)
		}
	}
	return "", 0
}

func hasLatinLetter(text string) bool {
	for _, r := range text {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
			return true
		}
	}
	return false
}

func hasCyrillic(text string) bool {
	for _, r := range strings.ToLower(text) {
		if (r >= 'а' && r <= 'я') || r == 'ё' {
			return true
		}
	}
	return false
}
