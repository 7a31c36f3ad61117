// Package converter holds one FormatConverter per conversion mode and the
// dispatcher that routes requests to them.
package converter

import (
	"context"
	"fmt"

	"github.com/flanksource/commons/logger"
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"docconv/contracts"
	"docconv/pdf_writer"
	"docconv/render"
	"docconv/utils"
)

var log = logger.GetLogger("converter")

// Converter turns one request into one result. Implementations keep no state
// between calls.
type Converter interface {
	Convert(ctx context.Context, req contracts.ConversionRequest) (contracts.ConversionResult, error)
}

type payloadCount int

const (
	atLeastOne payloadCount = iota
	exactlyOne
)

func validateRequest(req contracts.ConversionRequest, count payloadCount) error {
	err := validation.ValidateStruct(&req,
		validation.Field(&req.Payloads,
			validation.Required.Error("at least one file is required"),
			validation.When(count == exactlyOne, validation.Length(1, 1).Error("exactly one file is required")),
		),
	)
	if err != nil {
		return contracts.InvalidWithCause(err, "invalid %s request", req.Mode)
	}
	return nil
}

func newResult(baseName string, format contracts.Format, content []byte, pages int) contracts.ConversionResult {
	return contracts.ConversionResult{
		FileName:    utils.OutputFileName(baseName, format.Extension),
		Content:     content,
		ContentType: format.ContentType,
		Pages:       pages,
	}
}

// renderPDF renders a prepared document and checks the backend returned a
// readable PDF.
func renderPDF(ctx context.Context, r render.Renderer, doc string, baseName string) (contracts.ConversionResult, error) {
	out, err := r.Render(ctx, doc)
	if err != nil {
		return contracts.ConversionResult{}, contracts.Failed("render with "+r.Name(), err)
	}
	pages, err := pdf_writer.PageCount(out)
	if err != nil {
		return contracts.ConversionResult{}, contracts.Failed("verify "+r.Name()+" output", err)
	}
	log.Debugf("%s rendered %d page(s), %d bytes", r.Name(), pages, len(out))
	return newResult(baseName, contracts.FormatPDF, out, pages), nil
}

// singlePage assembles one JPEG page into a PDF.
func singlePage(page pdf_writer.Page) ([]byte, error) {
	out, err := pdf_writer.Assemble([]pdf_writer.Page{page})
	if err != nil {
		return nil, fmt.Errorf("assemble pdf: %w", err)
	}
	return out, nil
}
