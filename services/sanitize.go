package services

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var strictPolicy = bluemonday.StrictPolicy()

const maxCleanPasses = 8

// CleanText strips all markup from user supplied text and trims it. The
// result is plain text, not HTML. Entities are decoded before sanitising so
// encoded tags are stripped too, and passes repeat until the text is stable
// so decoding the output can never reassemble a tag.
func CleanText(s string) string {
	for i := 0; i < maxCleanPasses; i++ {
		cleaned := html.UnescapeString(strictPolicy.Sanitize(html.UnescapeString(s)))
		if cleaned == s {
			return strings.TrimSpace(s)
		}
		s = cleaned
	}
	// still changing: keep the escaped form rather than risk live markup
	return strings.TrimSpace(strictPolicy.Sanitize(s))
}
