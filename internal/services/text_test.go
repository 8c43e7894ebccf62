package services

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	assert.Equal(t, "hello-world", Slugify("Hello World!"))
	assert.Equal(t, "release-notes-part-2", Slugify("  Release Notes: Part 2 "))
	assert.Equal(t, "snake-case-title", Slugify("snake_case title"))
	assert.Equal(t, "", Slugify("!!!"))
	assert.True(t, IsValidSlug(Slugify("Crème brûlée & friends")))
}

func TestIsValidSlug(t *testing.T) {
	valid := []string{"hello", "hello-world", "a1-b2-c3", "2024"}
	invalid := []string{"", "Hello", "hello_world", "-hello", "hello-", "hello--world", "hello world"}

	for _, s := range valid {
		assert.True(t, IsValidSlug(s), s)
	}
	for _, s := range invalid {
		assert.False(t, IsValidSlug(s), s)
	}
}

func TestSummarizeShortContent(t *testing.T) {
	content := strings.Repeat("a", 200)
	assert.Equal(t, content, Summarize(content))
}

func TestSummarizeCutsAtWhitespace(t *testing.T) {
	// 50 words of "word " = 250 characters.
	content := strings.TrimSpace(strings.Repeat("word ", 50)) + "x"
	assert.Len(t, content, 250)

	got := Summarize(content)

	assert.True(t, strings.HasSuffix(got, "..."))
	body := strings.TrimSuffix(got, "...")
	assert.LessOrEqual(t, len(body), 200)
	assert.True(t, strings.HasPrefix(content, body))
	assert.Equal(t, " ", content[len(body):len(body)+1], "cut must land on a whitespace boundary")
	assert.Equal(t, strings.TrimSpace(strings.Repeat("word ", 40)), body)
}

func TestSummarizeWithoutSpaces(t *testing.T) {
	content := strings.Repeat("x", 250)
	assert.Equal(t, strings.Repeat("x", 200)+"...", Summarize(content))
}

func TestSummarizeCountsCharacters(t *testing.T) {
	content := strings.Repeat("é", 250)
	got := Summarize(content)
	assert.Equal(t, 203, utf8.RuneCountInString(got))
}
