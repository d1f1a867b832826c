package feedback

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

const maxSanitizePasses = 4

var strictPolicy = bluemonday.StrictPolicy()

// sanitizeMessage strips every HTML element and collapses whitespace. Entity
// encoded markup is decoded and stripped again until the text is stable; input
// that is still changing after the last pass is kept in its escaped form.
func sanitizeMessage(raw string) string {
	cleaned := raw
	stable := false
	for i := 0; i < maxSanitizePasses; i++ {
		next := html.UnescapeString(strictPolicy.Sanitize(cleaned))
		if next == cleaned {
			stable = true
			break
		}
		cleaned = next
	}
	if !stable {
		cleaned = strictPolicy.Sanitize(cleaned)
	}
	return strings.Join(strings.Fields(cleaned), " ")
}
