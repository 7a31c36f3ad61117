package converter

import (
	"bytes"
	"context"

	"docconv/contracts"
	"docconv/docx"
	"docconv/markup"
	"docconv/office"
	"docconv/pdf_writer"
	"docconv/render"
)

type WordStrategy string

const (
	// StrategyParagraphs transcribes body paragraphs and renders them as HTML.
	StrategyParagraphs WordStrategy = "paragraphs"
	// StrategyOffice saves the document as PDF with LibreOffice.
	StrategyOffice WordStrategy = "office"
)

const (
	DOCXType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	DOCType  = "application/msword"
)

// compound file header of legacy .doc files
var oleSignature = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}

var (
	ParagraphWordTypes = contracts.MediaSet{DOCXType}
	OfficeWordTypes    = contracts.MediaSet{DOCXType, DOCType}
)

type WordConverter struct {
	Strategy WordStrategy
	Renderer render.Renderer
	Injector *markup.Injector
	Office   *office.Driver
}

func (c *WordConverter) SupportedTypes() contracts.MediaSet {
	if c.Strategy == StrategyOffice {
		return OfficeWordTypes
	}
	return ParagraphWordTypes
}

func (c *WordConverter) Convert(ctx context.Context, req contracts.ConversionRequest) (contracts.ConversionResult, error) {
	if err := validateRequest(req, exactlyOne); err != nil {
		return contracts.ConversionResult{}, err
	}
	p := req.Payloads[0]
	supported := c.SupportedTypes()
	if !supported.Contains(p.MediaType) {
		return contracts.ConversionResult{}, contracts.Invalid("unsupported document type %q, expected one of: %s", contracts.NormalizeMediaType(p.MediaType), supported)
	}
	if len(p.Data) == 0 {
		return contracts.ConversionResult{}, contracts.Invalid("document %q is empty", p.Name)
	}

	if c.Strategy == StrategyOffice {
		return c.viaOffice(ctx, req.BaseName, p)
	}
	return c.viaParagraphs(ctx, req.BaseName, p)
}

func (c *WordConverter) viaParagraphs(ctx context.Context, baseName string, p contracts.Payload) (contracts.ConversionResult, error) {
	paragraphs, err := docx.Paragraphs(p.Data)
	if err != nil {
		return contracts.ConversionResult{}, contracts.InvalidWithCause(err, "cannot read Word document %q", p.Name)
	}
	log.Debugf("%s: %d paragraph(s)", p.Name, len(paragraphs))
	doc := c.Injector.Inject(markup.ParagraphDocument(paragraphs))
	return renderPDF(ctx, c.Renderer, doc, baseName)
}

func (c *WordConverter) viaOffice(ctx context.Context, baseName string, p contracts.Payload) (contracts.ConversionResult, error) {
	ext := ".docx"
	if contracts.NormalizeMediaType(p.MediaType) == DOCType {
		ext = ".doc"
		if !bytes.HasPrefix(p.Data, oleSignature) {
			return contracts.ConversionResult{}, contracts.Invalid("document %q is not a Word 97-2003 file", p.Name)
		}
	} else if err := docx.Check(p.Data); err != nil {
		return contracts.ConversionResult{}, contracts.InvalidWithCause(err, "cannot read Word document %q", p.Name)
	}
	out, err := c.Office.ConvertToPDF(ctx, "document"+ext, p.Data)
	if err != nil {
		return contracts.ConversionResult{}, contracts.Failed("office save as pdf", err)
	}
	pages, err := pdf_writer.PageCount(out)
	if err != nil {
		return contracts.ConversionResult{}, contracts.Failed("verify office output", err)
	}
	return newResult(baseName, contracts.FormatPDF, out, pages), nil
}
