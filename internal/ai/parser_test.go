package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseTitleResponseStrictJSON(t *testing.T) {
	got := ParseTitleResponse(`{"title": "The Glass Ocean", "themes": ["water", "fragility"]}`, "ignored")

	assert.Equal(t, Parsed, got.Outcome)
	assert.Equal(t, "The Glass Ocean", got.Title)
	assert.Equal(t, []string{"water", "fragility"}, got.Themes)
}

func TestParseTitleResponseFencedJSON(t *testing.T) {
	raw := "```json\n{\"title\": \"Night Market\", \"themes\": [\"crowds\"]}\n```"
	got := ParseTitleResponse(raw, "ignored")

	assert.Equal(t, Parsed, got.Outcome)
	assert.Equal(t, "Night Market", got.Title)
}

func TestParseTitleResponseLabeledLines(t *testing.T) {
	raw := "Sure! Here you go:\nTitle: The Unfinished Staircase\nThemes: climbing, repetition, dread"
	got := ParseTitleResponse(raw, "ignored")

	assert.Equal(t, PartiallyParsed, got.Outcome)
	assert.Equal(t, "The Unfinished Staircase", got.Title)
	assert.Equal(t, []string{"climbing", "repetition", "dread"}, got.Themes)
}

func TestParseTitleResponseMarkdownLabel(t *testing.T) {
	got := ParseTitleResponse("**Title:** \"Borrowed Wings\"", "ignored")

	assert.Equal(t, PartiallyParsed, got.Outcome)
	assert.Equal(t, "Borrowed Wings", got.Title)
}

func TestParseTitleResponseUnparsedFallsBackToText(t *testing.T) {
	got := ParseTitleResponse("I'm sorry, I can't help with that.", "walking through a city made of paper and rain")

	assert.Equal(t, Unparsed, got.Outcome)
	assert.Equal(t, "walking through a city made of…", got.Title)
	assert.Empty(t, got.Themes)
}

func TestParseTitleResponseEmptyJSONTitleFallsThrough(t *testing.T) {
	// Valid JSON with a blank title is not a usable structured answer.
	got := ParseTitleResponse(`{"title": "", "themes": ["x"]}`, "some dream text here")
	assert.Equal(t, Unparsed, got.Outcome)
	assert.NotEmpty(t, got.Title)
}

func TestFallbackTitle(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"short text kept whole", "three word dream", "three word dream"},
		{"long text truncated", "one two three four five six seven eight", "one two three four five six…"},
		{"trailing punctuation trimmed", "I woke up, then fell asleep again, twice more", "I woke up, then fell asleep…"},
		{"empty text", "   ", "Untitled dream"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FallbackTitle(tt.in))
		})
	}
}
