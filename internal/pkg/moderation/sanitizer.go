package moderation

import (
	"html"
	"regexp"
	"strings"
)

var (
	scriptTagRegex = regexp.MustCompile(`(?is)<script\b.*?</script>`)
	htmlTagRegex   = regexp.MustCompile(`<[^>]+>`)
	zeroWidthRegex = regexp.MustCompile("[\u200B-\u200D\uFEFF]")
)

// Sanitize normalizes raw user text into a safe canonical form: script blocks
// and markup tags are stripped, HTML entities are decoded back to literal
// characters, whitespace runs collapse to single spaces and the result is
// trimmed, and zero-width characters are removed.
//
// The pass is repeated until the text stops changing, so decoding an entity
// that reveals new markup (e.g. "&lt;script&gt;") can never smuggle tags into
// the output and Sanitize(Sanitize(x)) == Sanitize(x) holds for any input.
// Every changing pass strictly shortens the text, so the loop terminates.
func Sanitize(text string) string {
	out := text
	for {
		next := sanitizePass(out)
		if next == out {
			return out
		}
		out = next
	}
}

func sanitizePass(text string) string {
	s := scriptTagRegex.ReplaceAllString(text, "")
	s = htmlTagRegex.ReplaceAllString(s, "")
	s = html.UnescapeString(s)
	s = zeroWidthRegex.ReplaceAllString(s, "")
	// strings.Fields splits on unicode whitespace, which also covers
	// non-breaking spaces produced by &nbsp; decoding
	return strings.Join(strings.Fields(s), " ")
}
