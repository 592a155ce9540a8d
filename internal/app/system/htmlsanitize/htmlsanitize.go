// internal/app/system/htmlsanitize/htmlsanitize.go
package htmlsanitize

import (
	"github.com/microcosm-cc/bluemonday"
)

// policy is the shared sanitizer for user-authored rich text such as
// collection descriptions and collectable docs. Policies are safe for
// concurrent use once built.
var policy = newPolicy()

// newPolicy builds the allowlist: basic formatting, lists, headings up to
// h3, code blocks, images, links (forced rel=nofollow), and tables with
// layout attributes. Scripts, styles sheets, frames, forms, event handler
// attributes, and javascript:/data: URLs never survive.
func newPolicy() *bluemonday.Policy {
	p := bluemonday.NewPolicy()

	p.AllowStandardURLs()
	p.RequireNoFollowOnLinks(true)

	p.AllowElements(
		"p", "br", "hr",
		"strong", "em", "b", "i", "u", "s", "sub", "sup", "mark",
		"blockquote",
		"h1", "h2", "h3",
		"pre", "code",
		"ul", "ol", "li",
	)

	p.AllowAttrs("href").OnElements("a")
	p.AllowAttrs("src", "alt").OnElements("img")

	p.AllowElements("table", "thead", "tbody", "tfoot", "tr", "th", "td", "caption")
	p.AllowAttrs("colspan", "rowspan").OnElements("td", "th")
	p.AllowAttrs("class", "style").OnElements("table", "thead", "tbody", "tfoot", "tr", "th", "td")

	return p
}

// Sanitize strips everything outside the allowlist from s and returns the
// cleaned markup.
func Sanitize(s string) string {
	if s == "" {
		return ""
	}
	return policy.Sanitize(s)
}
