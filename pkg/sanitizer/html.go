// Package sanitizer strips dangerous markup from user-supplied strings
// before they reach the record store or an email body.
package sanitizer

import (
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	policies struct {
		strict *bluemonday.Policy
		safe   *bluemonday.Policy
	}
	policyInit sync.Once
)

func loadPolicies() {
	policyInit.Do(func() {
		policies.strict = bluemonday.StrictPolicy()

		safe := bluemonday.NewPolicy()
		safe.AllowStandardURLs()
		safe.AllowElements(
			"p", "br",
			"strong", "b", "em", "i",
			"ul", "ol", "li",
			"code", "pre", "blockquote",
		)
		safe.AllowAttrs("href").OnElements("a")
		safe.RequireNoFollowOnLinks(true)
		policies.safe = safe
	})
}

// SanitizeHTML keeps basic formatting (paragraphs, emphasis, lists,
// code, links) and removes everything else: scripts, event handlers,
// iframes, javascript: URLs. Use it for stored user content.
func SanitizeHTML(s string) string {
	loadPolicies()
	return policies.safe.Sanitize(s)
}

// StripHTML removes all markup and returns plain text.
func StripHTML(s string) string {
	loadPolicies()
	return policies.strict.Sanitize(s)
}

// SanitizeHTMLCustom applies a caller-supplied bluemonday policy.
// A nil policy returns the input unchanged.
func SanitizeHTMLCustom(s string, policy *bluemonday.Policy) string {
	if policy == nil {
		return s
	}
	return policy.Sanitize(s)
}
