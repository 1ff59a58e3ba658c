// Package htmlsanitize sanitizes untrusted HTML before storage or
// rendering. Announcement content comes in through a rich-text editor
// and is rendered unescaped on the dashboard, so everything passes
// through here first.
package htmlsanitize

import (
	"html/template"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	once   sync.Once
	policy *bluemonday.Policy
)

// getPolicy returns the shared sanitization policy. Built on UGC with
// table support and class attributes for editor-produced markup.
func getPolicy() *bluemonday.Policy {
	once.Do(func() {
		p := bluemonday.UGCPolicy()
		p.AllowTables()
		p.AllowAttrs("class").OnElements("table", "thead", "tbody", "tr", "th", "td", "p", "span", "div")
		p.AllowAttrs("colspan", "rowspan").OnElements("td", "th")
		p.AllowElements("u", "s", "sub", "sup", "mark")
		policy = p
	})
	return policy
}

// Sanitize strips dangerous markup (scripts, event handlers,
// javascript: URLs, iframes) and returns the cleaned HTML.
func Sanitize(html string) string {
	if html == "" {
		return ""
	}
	return getPolicy().Sanitize(html)
}

// SanitizeToHTML sanitizes and returns template.HTML so templates can
// render the result without re-escaping. Only use on content that has
// no other path to the page.
func SanitizeToHTML(html string) template.HTML {
	return template.HTML(Sanitize(html))
}
