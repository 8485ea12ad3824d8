package ai

import (
	"encoding/json"
	"regexp"
	"strings"
)

// Outcome tags how much of the provider's reply was usable.
type Outcome int

const (
	// Parsed: the reply carried the structured shape we asked for.
	Parsed Outcome = iota
	// PartiallyParsed: structure was missing but labeled lines were found.
	PartiallyParsed
	// Unparsed: nothing usable; the title was derived from the dream text.
	Unparsed
)

// ParsedTitle is the outcome of parsing one provider reply.
type ParsedTitle struct {
	Title   string
	Themes  []string
	Outcome Outcome
}

var (
	titleLineRe  = regexp.MustCompile(`(?im)^\s*\**title\**\s*[:\-]\s*(.+?)\s*$`)
	themesLineRe = regexp.MustCompile(`(?im)^\s*\**themes?\**\s*[:\-]\s*(.+?)\s*$`)
	// Providers like wrapping JSON in markdown fences.
	codeFenceRe = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)\\s*```")
)

// ParseTitleResponse extracts a title and themes from the provider's reply.
// The upstream is unreliable about shape, so parsing runs in stages: strict
// JSON first, then label-prefixed lines, then a deterministic title derived
// from the dream text itself. The result is always usable.
func ParseTitleResponse(raw, dreamText string) ParsedTitle {
	candidate := strings.TrimSpace(raw)
	if m := codeFenceRe.FindStringSubmatch(candidate); m != nil {
		candidate = m[1]
	}

	var structured struct {
		Title  string   `json:"title"`
		Themes []string `json:"themes"`
	}
	if err := json.Unmarshal([]byte(candidate), &structured); err == nil && strings.TrimSpace(structured.Title) != "" {
		return ParsedTitle{
			Title:   strings.TrimSpace(structured.Title),
			Themes:  cleanThemes(structured.Themes),
			Outcome: Parsed,
		}
	}

	if m := titleLineRe.FindStringSubmatch(candidate); m != nil {
		parsed := ParsedTitle{
			Title:   strings.Trim(m[1], `"'* `),
			Outcome: PartiallyParsed,
		}
		if tm := themesLineRe.FindStringSubmatch(candidate); tm != nil {
			parsed.Themes = cleanThemes(strings.Split(tm[1], ","))
		}
		return parsed
	}

	return ParsedTitle{Title: FallbackTitle(dreamText), Themes: []string{}, Outcome: Unparsed}
}

const (
	fallbackMaxWords = 6
	fallbackMaxRunes = 60
)

// FallbackTitle derives a deterministic title from the dream's opening words
func FallbackTitle(text string) string {
	words := strings.Fields(strings.TrimSpace(text))
	if len(words) == 0 {
		return "Untitled dream"
	}
	truncated := len(words) > fallbackMaxWords
	if truncated {
		words = words[:fallbackMaxWords]
	}
	title := strings.Join(words, " ")
	if r := []rune(title); len(r) > fallbackMaxRunes {
		title = string(r[:fallbackMaxRunes])
		truncated = true
	}
	title = strings.TrimRight(title, ".,;:!? ")
	if truncated {
		title += "…"
	}
	return title
}

func cleanThemes(in []string) []string {
	out := make([]string, 0, len(in))
	for _, t := range in {
		t = strings.Trim(strings.TrimSpace(t), `"'`)
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}
