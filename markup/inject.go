package markup

import (
	"fmt"
	"regexp"
	"strings"
)

type Policy string

const (
	// PolicyAlways adds a <style> block when the document has none.
	PolicyAlways Policy = "always"
	// PolicyExistingStyleOnly only extends a <style> block already present.
	PolicyExistingStyleOnly Policy = "existing_style_only"
)

func ParsePolicy(s string) (Policy, error) {
	switch p := Policy(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return PolicyAlways, nil
	case PolicyAlways, PolicyExistingStyleOnly:
		return p, nil
	}
	return "", fmt.Errorf("unknown stylesheet policy %q", s)
}

const metaCharset = `<meta charset="UTF-8">`

var (
	charsetRe   = regexp.MustCompile(`(?i)<meta[^>]+charset[^>]*>`)
	headOpenRe  = regexp.MustCompile(`(?i)<head(\s[^>]*)?>`)
	headCloseRe = regexp.MustCompile(`(?i)</head\s*>`)
	styleOpenRe = regexp.MustCompile(`(?i)<style[^>]*>`)
)

type Injector struct {
	Sheet  StyleSheet
	Policy Policy
}

func NewInjector(policy Policy) *Injector {
	return &Injector{Sheet: DefaultStyleSheet(), Policy: policy}
}

// Inject declares UTF-8, dropping any other charset, and prepends the
// stylesheet to the first <style> block.
// Documents without a head get one.
func (i *Injector) Inject(doc string) string {
	doc = ensureCharset(doc)

	css := i.Sheet.CSS()
	if loc := styleOpenRe.FindStringIndex(doc); loc != nil {
		return doc[:loc[1]] + css + "\n" + doc[loc[1]:]
	}
	if i.Policy == PolicyExistingStyleOnly {
		return doc
	}

	block := "<style>" + css + "</style>"
	if loc := headCloseRe.FindStringIndex(doc); loc != nil {
		return doc[:loc[0]] + block + doc[loc[0]:]
	}
	if loc := headOpenRe.FindStringIndex(doc); loc != nil {
		return doc[:loc[1]] + block + doc[loc[1]:]
	}
	return "<head>" + block + "</head>" + doc
}

// ensureCharset replaces every charset declaration with a UTF-8 one placed
// first in the head. Callers only pass UTF-8 text.
func ensureCharset(doc string) string {
	doc = charsetRe.ReplaceAllString(doc, "")
	if loc := headOpenRe.FindStringIndex(doc); loc != nil {
		return doc[:loc[1]] + metaCharset + doc[loc[1]:]
	}
	return "<head>" + metaCharset + "</head>" + doc
}
