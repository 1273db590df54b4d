// Package sanitize normalises user input that is matched against stored
// text. Stored text itself is kept as typed; responses are JSON encoded,
// which escapes <, > and &.
package sanitize

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var policy = bluemonday.StrictPolicy()

// SearchTerm strips pasted markup from a search query, decodes entities and
// collapses runs of whitespace.
func SearchTerm(s string) string {
	s = strings.NewReplacer("</p>", " ", "<br>", " ", "</div>", " ").Replace(s)
	return strings.Join(strings.Fields(html.UnescapeString(policy.Sanitize(s))), " ")
}
