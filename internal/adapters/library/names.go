package library

import (
	"path/filepath"
	"strings"
	"unicode"
)

var audioExtensions = map[string]struct{}{
	".mp3": {},
	".wav": {},
	".ogg": {},
}

func isAudio(name string) bool {
	_, ok := audioExtensions[strings.ToLower(filepath.Ext(name))]
	return ok
}

// parseSongName splits a file name into title and artist. Two layouts are
// recognised: "Artist - Title" and "Title by Artist". Anything else is a
// bare title with an unknown artist.
func parseSongName(fileName string) (title, artist string) {
	base := tidyName(strings.TrimSuffix(fileName, filepath.Ext(fileName)))

	if parts := strings.SplitN(base, " - ", 2); len(parts) == 2 && strings.TrimSpace(parts[0]) != "" && strings.TrimSpace(parts[1]) != "" {
		return titleCase(parts[1]), titleCase(parts[0])
	}
	if idx := strings.Index(strings.ToLower(base), " by "); idx > 0 && idx+4 < len(base) {
		return titleCase(base[:idx]), titleCase(base[idx+4:])
	}
	return titleCase(base), ""
}

// tidyName turns underscores into spaces and collapses whitespace.
func tidyName(s string) string {
	s = strings.ReplaceAll(s, "_", " ")
	return strings.Join(strings.Fields(s), " ")
}

// titleCase upper-cases the first letter of every word and lower-cases the
// rest.
func titleCase(s string) string {
	var out strings.Builder
	startOfWord := true
	for _, r := range strings.TrimSpace(s) {
		if unicode.IsLetter(r) {
			if startOfWord {
				out.WriteRune(unicode.ToUpper(r))
			} else {
				out.WriteRune(unicode.ToLower(r))
			}
			startOfWord = false
			continue
		}
		out.WriteRune(r)
		startOfWord = !unicode.IsDigit(r) && r != '\''
	}
	return out.String()
}

var noiseTokens = map[string]struct{}{
	"clean":      {},
	"explicit":   {},
	"feat":       {},
	"featuring":  {},
	"ft":         {},
	"official":   {},
	"audio":      {},
	"lyrics":     {},
	"remaster":   {},
	"remastered": {},
	"version":    {},
}

// dedupeKey reduces a title and artist to a comparison key so the same song
// found twice (e.g. an "(Official Audio)" copy) is listed once.
func dedupeKey(title, artist string) string {
	return normalizeForMatch(title) + "|" + normalizeForMatch(artist)
}

func normalizeForMatch(input string) string {
	if input == "" {
		return ""
	}
	tokens := strings.Fields(cleanSeparators(stripBracketedSegments(strings.ToLower(input))))
	cleaned := make([]string, 0, len(tokens))
	for _, token := range tokens {
		if _, drop := noiseTokens[token]; drop {
			continue
		}
		cleaned = append(cleaned, token)
	}
	return strings.Join(cleaned, " ")
}

func stripBracketedSegments(input string) string {
	var out strings.Builder
	depth := 0
	for _, r := range input {
		switch r {
		case '(', '[':
			depth++
		case ')', ']':
			if depth > 0 {
				depth--
			}
		default:
			if depth == 0 {
				out.WriteRune(r)
			}
		}
	}
	return out.String()
}

func cleanSeparators(input string) string {
	var out strings.Builder
	lastSpace := false
	for _, r := range input {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			out.WriteRune(r)
			lastSpace = false
			continue
		}
		if !lastSpace {
			out.WriteRune(' ')
			lastSpace = true
		}
	}
	return out.String()
}
