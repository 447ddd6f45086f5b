// Package security holds input hygiene for user-supplied free text.
package security

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// plainText undoes the escaping the policy applies to ordinary characters.
// &lt; and &gt; stay encoded so no tag can come back out.
var plainText = strings.NewReplacer("&amp;", "&", "&#39;", "'", "&#34;", `"`)

// TextSanitizer strips markup from free-text fields such as care
// requirements. Entities are decoded before filtering so encoded markup is
// filtered like literal markup.
type TextSanitizer struct {
	policy *bluemonday.Policy
}

func NewTextSanitizer() *TextSanitizer {
	return &TextSanitizer{policy: bluemonday.StrictPolicy()}
}

// Sanitize returns s without markup and surrounding whitespace.
func (t *TextSanitizer) Sanitize(s string) string {
	clean := t.policy.Sanitize(html.UnescapeString(s))
	return strings.TrimSpace(plainText.Replace(clean))
}
