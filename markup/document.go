package markup

import (
	"html"
	"strings"
)

// ParagraphDocument wraps each paragraph in <p>, escaping its text. Tabs and
// line breaks survive through white-space: pre-wrap.
func ParagraphDocument(paragraphs []string) string {
	var b strings.Builder
	b.WriteString("<html><head><style>p { white-space: pre-wrap }</style></head><body>")
	for _, p := range paragraphs {
		b.WriteString("<p>")
		b.WriteString(html.EscapeString(p))
		b.WriteString("</p>")
	}
	b.WriteString("</body></html>")
	return b.String()
}
