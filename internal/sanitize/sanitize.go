// Package sanitize turns model output into plain chat text.
package sanitize

import (
	"bytes"
	"html"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
)

var (
	listItemOpen   = regexp.MustCompile(`<li>\s*(<p>)?`)
	listItemClose  = regexp.MustCompile(`(</p>)?\s*</li>\n?`)
	blockTags      = regexp.MustCompile(`<br\s*/?>|</?p>|</?div>|</?pre>|</?h[1-6]>|</?ul>|</?ol>|</?blockquote>|<hr\s*/?>`)
	extraNewlines  = regexp.MustCompile(`\n\s*\n+`)
	trailingBlanks = regexp.MustCompile(`[ \t]+\n`)
)

// Policy strips markdown and HTML, keeping list items as bullet lines.
type Policy struct {
	policy   *bluemonday.Policy
	markdown goldmark.Markdown
}

func NewPolicy() *Policy {
	return &Policy{
		policy:   bluemonday.StrictPolicy(),
		markdown: goldmark.New(),
	}
}

// Text returns s without markup. If s cannot be parsed it is returned
// trimmed but otherwise unchanged.
func (p *Policy) Text(s string) string {
	if strings.TrimSpace(s) == "" {
		return ""
	}

	var buf bytes.Buffer
	if err := p.markdown.Convert([]byte(s), &buf); err != nil {
		return strings.TrimSpace(s)
	}

	out := listItemOpen.ReplaceAllString(buf.String(), "• ")
	out = listItemClose.ReplaceAllString(out, "\n")
	out = blockTags.ReplaceAllString(out, "\n")
	out = p.policy.Sanitize(out)
	out = html.UnescapeString(out)
	out = trailingBlanks.ReplaceAllString(out, "\n")
	out = extraNewlines.ReplaceAllString(out, "\n\n")

	return strings.TrimSpace(out)
}
