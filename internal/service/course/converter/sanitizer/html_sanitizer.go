package sanitizer

import (
	"github.com/microcosm-cc/bluemonday"
)

// HTMLSanitizer strips authored rich text down to markup that is safe to hand
// to a renderer. A headless browser executes whatever it is given, so scripts,
// event handlers and remote frames must never reach it.
//
// Thread-safe for concurrent use.
type HTMLSanitizer struct {
	policy *bluemonday.Policy
}

// NewHTMLSanitizer creates a sanitizer for authored lesson content.
// Starts from the UGC policy and adds the inline formatting editors commonly
// emit plus text alignment, which survives into the printed page.
func NewHTMLSanitizer() *HTMLSanitizer {
	policy := bluemonday.UGCPolicy()

	// Pasted screenshots arrive inline
	policy.AllowDataURIImages()

	policy.AllowElements("u", "s", "mark", "figure", "figcaption")
	policy.AllowStyles("text-align").
		MatchingEnum("left", "right", "center", "justify").
		Globally()

	return &HTMLSanitizer{policy: policy}
}

// NewStrictHTMLSanitizer creates a sanitizer that strips all markup.
func NewStrictHTMLSanitizer() *HTMLSanitizer {
	return &HTMLSanitizer{policy: bluemonday.StrictPolicy()}
}

// Sanitize returns html with every disallowed element and attribute removed.
// Text content of removed elements is kept, except for script and style.
func (s *HTMLSanitizer) Sanitize(html string) string {
	return s.policy.Sanitize(html)
}
