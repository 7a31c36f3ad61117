package converter

import (
	"context"
	"strings"
	"unicode/utf8"

	"docconv/contracts"
	"docconv/markup"
	"docconv/render"
)

var HTMLTypes = contracts.MediaSet{"text/html", "application/xhtml+xml"}

type HTMLConverter struct {
	Renderer render.Renderer
	Injector *markup.Injector
}

func (c *HTMLConverter) Convert(ctx context.Context, req contracts.ConversionRequest) (contracts.ConversionResult, error) {
	if err := validateRequest(req, exactlyOne); err != nil {
		return contracts.ConversionResult{}, err
	}
	p := req.Payloads[0]

	// markup submitted as a form field often arrives untyped
	if p.MediaType != "" && !HTMLTypes.Contains(p.MediaType) {
		return contracts.ConversionResult{}, contracts.Invalid("unsupported markup type %s, expected one of: %s", contracts.NormalizeMediaType(p.MediaType), HTMLTypes)
	}
	if strings.TrimSpace(string(p.Data)) == "" {
		return contracts.ConversionResult{}, contracts.Invalid("missing HTML content")
	}
	if !utf8.Valid(p.Data) {
		return contracts.ConversionResult{}, contracts.Invalid("HTML content is not valid UTF-8")
	}

	doc := c.Injector.Inject(string(p.Data))
	return renderPDF(ctx, c.Renderer, doc, req.BaseName)
}
