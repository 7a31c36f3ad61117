package converter

import (
	"context"
	"fmt"

	"docconv/contracts"
	"docconv/pdf_writer"
	"docconv/raster"
)

// ImagesToPDFConverter puts every input image on its own page, in input order.
type ImagesToPDFConverter struct{}

func (c *ImagesToPDFConverter) Convert(ctx context.Context, req contracts.ConversionRequest) (contracts.ConversionResult, error) {
	if err := validateRequest(req, atLeastOne); err != nil {
		return contracts.ConversionResult{}, err
	}
	// reject the whole batch before decoding anything
	for _, p := range req.Payloads {
		if err := raster.CheckType(p, raster.PDFSourceTypes); err != nil {
			return contracts.ConversionResult{}, err
		}
	}
	opts := raster.LoadOptions{AutoOrient: req.Option(contracts.OptionAutoOrient)}

	pages := make([]pdf_writer.Page, 0, len(req.Payloads))
	for i, p := range req.Payloads {
		if err := ctx.Err(); err != nil {
			return contracts.ConversionResult{}, contracts.Failed("convert images", err)
		}
		img, err := raster.Load(p, raster.PDFSourceTypes, opts)
		if err != nil {
			return contracts.ConversionResult{}, err
		}
		data, err := raster.EncodeJPEG(raster.ToRGB(img.Image), raster.JPEGOptions{Quality: raster.PageQuality})
		if err != nil {
			return contracts.ConversionResult{}, contracts.Failed(fmt.Sprintf("encode page %d", i+1), err)
		}
		pages = append(pages, pdf_writer.Page{
			Data:        data,
			PixelWidth:  img.Width(),
			PixelHeight: img.Height(),
			DPI:         pdf_writer.DefaultDPI,
		})
	}

	out, err := pdf_writer.Assemble(pages)
	if err != nil {
		return contracts.ConversionResult{}, contracts.Failed("assemble pdf", err)
	}
	log.Debugf("assembled %d page(s), %d bytes", len(pages), len(out))
	return newResult(req.BaseName, contracts.FormatPDF, out, len(pages)), nil
}
