package converter

import (
	"context"
	"image"

	"docconv/contracts"
	"docconv/pdf_writer"
	"docconv/raster"
)

// DistortConverter skews an image in perspective, optionally swirls it, and
// lays the result on a single PDF page.
type DistortConverter struct{}

func (c *DistortConverter) Convert(ctx context.Context, req contracts.ConversionRequest) (contracts.ConversionResult, error) {
	if err := validateRequest(req, exactlyOne); err != nil {
		return contracts.ConversionResult{}, err
	}
	img, err := raster.Load(req.Payloads[0], raster.GrayscaleSourceTypes, raster.LoadOptions{AutoOrient: req.Option(contracts.OptionAutoOrient)})
	if err != nil {
		return contracts.ConversionResult{}, err
	}
	grayscale := req.Option(contracts.OptionGrayscale)

	var src image.Image = img.Image
	if grayscale {
		src = raster.ToGray(src)
	}
	rgb := raster.ToRGB(src)

	from, to := raster.SkewCorners(img.Width(), img.Height())
	warped, err := raster.Perspective(rgb, from, to, raster.White)
	if err != nil {
		return contracts.ConversionResult{}, contracts.Failed("perspective", err)
	}
	if req.Option(contracts.OptionSwirl) {
		warped = raster.Swirl(warped, raster.SwirlStrength, raster.SwirlRadius)
	}

	var page image.Image = warped
	if grayscale {
		page = raster.ToGray(warped)
	}
	data, err := raster.EncodeJPEG(page, raster.JPEGOptions{Quality: raster.PageQuality})
	if err != nil {
		return contracts.ConversionResult{}, contracts.Failed("encode page", err)
	}
	b := page.Bounds()
	out, err := singlePage(pdf_writer.Page{Data: data, PixelWidth: b.Dx(), PixelHeight: b.Dy(), Gray: grayscale, DPI: pdf_writer.DefaultDPI})
	if err != nil {
		return contracts.ConversionResult{}, contracts.Failed("assemble pdf", err)
	}
	return newResult(req.BaseName, contracts.FormatPDF, out, 1), nil
}
