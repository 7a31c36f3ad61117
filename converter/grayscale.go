package converter

import (
	"context"

	"docconv/contracts"
	"docconv/pdf_writer"
	"docconv/raster"
)

type GrayscaleConverter struct{}

func (c *GrayscaleConverter) Convert(ctx context.Context, req contracts.ConversionRequest) (contracts.ConversionResult, error) {
	if err := validateRequest(req, exactlyOne); err != nil {
		return contracts.ConversionResult{}, err
	}
	img, err := raster.Load(req.Payloads[0], raster.GrayscaleSourceTypes, raster.LoadOptions{AutoOrient: req.Option(contracts.OptionAutoOrient)})
	if err != nil {
		return contracts.ConversionResult{}, err
	}
	gray := raster.ToGray(img.Image)

	if !req.Option(contracts.OptionConvertToPDF) {
		data, err := raster.EncodeJPEG(gray, raster.JPEGOptions{Quality: raster.ImageQuality})
		if err != nil {
			return contracts.ConversionResult{}, contracts.Failed("encode jpeg", err)
		}
		return newResult(req.BaseName, contracts.FormatJPEG, data, 0), nil
	}

	data, err := raster.EncodeJPEG(gray, raster.JPEGOptions{Quality: raster.PageQuality})
	if err != nil {
		return contracts.ConversionResult{}, contracts.Failed("encode page", err)
	}
	b := gray.Bounds()
	out, err := singlePage(pdf_writer.Page{Data: data, PixelWidth: b.Dx(), PixelHeight: b.Dy(), Gray: true, DPI: pdf_writer.DefaultDPI})
	if err != nil {
		return contracts.ConversionResult{}, contracts.Failed("assemble pdf", err)
	}
	return newResult(req.BaseName, contracts.FormatPDF, out, 1), nil
}
