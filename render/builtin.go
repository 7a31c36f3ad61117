package render

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/phpdave11/gofpdf"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// 40px page margin at 96 CSS px per inch
const builtinMarginMM = 40 * 25.4 / 96

// Builtin lays out the text blocks of a document with gofpdf core fonts. It
// needs no external tools and ignores CSS beyond the page margin.
type Builtin struct {
	FontDir string
	Options PageOptions
}

func NewBuiltin(fontDir string, opts PageOptions) *Builtin {
	return &Builtin{FontDir: fontDir, Options: opts}
}

func (b *Builtin) Name() string {
	return BackendBuiltin
}

type textBlock struct {
	heading int
	item    bool
	text    string
}

var headingSizes = map[int]float64{1: 20, 2: 17, 3: 15, 4: 13, 5: 12, 6: 11}

func (b *Builtin) Render(ctx context.Context, doc string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, NewRendererError(b.Name(), "render", err)
	}
	root, err := html.Parse(strings.NewReader(doc))
	if err != nil {
		return nil, NewRendererError(b.Name(), "parse", err)
	}
	blocks := extractBlocks(root)

	pdf := gofpdf.New("P", "mm", b.Options.PageSize, b.FontDir)
	pdf.SetMargins(builtinMarginMM, builtinMarginMM, builtinMarginMM)
	pdf.SetAutoPageBreak(true, builtinMarginMM)
	pdf.SetCreator("docconv", true)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	for _, blk := range blocks {
		blk.text = strings.ReplaceAll(blk.text, "\t", "    ")
		switch {
		case blk.heading > 0:
			size := headingSizes[blk.heading]
			pdf.SetFont("Arial", "B", size)
			pdf.MultiCell(0, size*0.5, tr(blk.text), "", "L", false)
			pdf.Ln(2)
		case blk.item:
			pdf.SetFont("Arial", "", 11)
			pdf.MultiCell(0, 5.5, tr("- "+blk.text), "", "L", false)
		default:
			pdf.SetFont("Arial", "", 11)
			pdf.MultiCell(0, 5.5, tr(blk.text), "", "L", false)
			pdf.Ln(2)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, NewRendererError(b.Name(), "generate PDF", fmt.Errorf("failed to generate PDF: %w", err))
	}
	return buf.Bytes(), nil
}

func headingLevel(a atom.Atom) int {
	switch a {
	case atom.H1:
		return 1
	case atom.H2:
		return 2
	case atom.H3:
		return 3
	case atom.H4:
		return 4
	case atom.H5:
		return 5
	case atom.H6:
		return 6
	}
	return 0
}

func isBlock(a atom.Atom) bool {
	switch a {
	case atom.P, atom.Div, atom.Li, atom.Tr, atom.Pre, atom.Blockquote,
		atom.Section, atom.Article, atom.Table, atom.Ul, atom.Ol, atom.Body:
		return true
	}
	return headingLevel(a) > 0
}

// extractBlocks flattens the body into text blocks, one per block element.
func extractBlocks(root *html.Node) []textBlock {
	var (
		blocks []textBlock
		cur    strings.Builder
		kind   textBlock
	)
	flush := func() {
		text := strings.TrimSpace(cur.String())
		if text != "" {
			kind.text = text
			blocks = append(blocks, kind)
		}
		cur.Reset()
		kind = textBlock{}
	}

	var walk func(n *html.Node, pre bool)
	walk = func(n *html.Node, pre bool) {
		switch n.Type {
		case html.TextNode:
			if pre {
				cur.WriteString(n.Data)
			} else {
				cur.WriteString(collapseSpace(n.Data))
			}
			return
		case html.ElementNode:
			switch n.DataAtom {
			case atom.Head, atom.Style, atom.Script, atom.Title, atom.Noscript, atom.Template:
				return
			case atom.Br:
				cur.WriteString("\n")
				return
			}
		}

		block := n.Type == html.ElementNode && isBlock(n.DataAtom)
		if block {
			flush()
			kind.heading = headingLevel(n.DataAtom)
			kind.item = n.DataAtom == atom.Li
		}
		childPre := pre
		if n.Type == html.ElementNode && n.DataAtom == atom.Pre {
			childPre = true
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c, childPre)
		}
		if block {
			flush()
		}
	}
	walk(root, false)
	flush()
	return blocks
}

func collapseSpace(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		if s != "" {
			return " "
		}
		return ""
	}
	out := strings.Join(fields, " ")
	if strings.TrimLeft(s[:1], " \t\r\n") == "" {
		out = " " + out
	}
	if strings.TrimRight(s[len(s)-1:], " \t\r\n") == "" {
		out += " "
	}
	return out
}
