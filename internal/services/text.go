package services

import (
	"regexp"
	"strings"

	"github.com/gosimple/slug"
)

const summaryMaxLength = 200

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

// Slugify turns a title into an ASCII, lowercase, hyphen-separated slug.
func Slugify(text string) string {
	s := strings.ReplaceAll(slug.MakeLang(text, "en"), "_", "-")
	for strings.Contains(s, "--") {
		s = strings.ReplaceAll(s, "--", "-")
	}
	return strings.Trim(s, "-")
}

// IsValidSlug reports whether s is a well-formed slug.
func IsValidSlug(s string) bool {
	return slugPattern.MatchString(s)
}

// Summarize returns content unchanged when it fits in 200 characters.
// Otherwise it cuts at the last space within the limit and appends "...".
func Summarize(content string) string {
	runes := []rune(content)
	if len(runes) <= summaryMaxLength {
		return content
	}

	summary := string(runes[:summaryMaxLength])
	if i := strings.LastIndex(summary, " "); i != -1 {
		summary = summary[:i]
	}
	return strings.TrimRight(summary, " \t\r\n") + "..."
}
