// Package markup prepares HTML for the rendering backends: it generates the
// default print stylesheet, injects it together with a UTF-8 charset
// declaration, and builds minimal documents from plain paragraphs.
package markup

import (
	"strings"
)

type Declaration struct {
	Property string
	Value    string
}

type Rule struct {
	Selector     string
	Declarations []Declaration
}

// StyleSheet keeps rules in insertion order.
type StyleSheet struct {
	Rules []Rule
}

const DefaultPageMargin = "40px"

// DefaultStyleSheet returns the stylesheet applied to every rendered document.
func DefaultStyleSheet() StyleSheet {
	return StyleSheet{Rules: []Rule{
		{Selector: "body", Declarations: []Declaration{
			{Property: "padding", Value: "0"},
			{Property: "font-family", Value: "Arial, sans-serif"},
		}},
		{Selector: "@page", Declarations: []Declaration{
			{Property: "margin", Value: DefaultPageMargin},
		}},
	}}
}

// CSS renders one line per rule, for example "body { padding: 0 }".
func (s StyleSheet) CSS() string {
	lines := make([]string, 0, len(s.Rules))
	for _, r := range s.Rules {
		props := make([]string, 0, len(r.Declarations))
		for _, d := range r.Declarations {
			props = append(props, d.Property+": "+d.Value)
		}
		lines = append(lines, r.Selector+" { "+strings.Join(props, "; ")+" }")
	}
	return strings.Join(lines, "\n")
}
