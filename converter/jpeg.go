package converter

import (
	"context"

	"docconv/contracts"
	"docconv/raster"
)

// ToJPEGConverter re-encodes one raster image as an opaque RGB JPEG.
type ToJPEGConverter struct {
	Accepts contracts.MediaSet
	// FullChroma disables chroma subsampling.
	FullChroma bool
}

func NewPNGToJPEG() *ToJPEGConverter {
	return &ToJPEGConverter{Accepts: raster.PNGTypes, FullChroma: true}
}

func NewBMPToJPEG() *ToJPEGConverter {
	return &ToJPEGConverter{Accepts: raster.BMPTypes}
}

func (c *ToJPEGConverter) Convert(ctx context.Context, req contracts.ConversionRequest) (contracts.ConversionResult, error) {
	if err := validateRequest(req, exactlyOne); err != nil {
		return contracts.ConversionResult{}, err
	}
	img, err := raster.Load(req.Payloads[0], c.Accepts, raster.LoadOptions{})
	if err != nil {
		return contracts.ConversionResult{}, err
	}
	data, err := raster.EncodeJPEG(raster.ToRGB(img.Image), raster.JPEGOptions{
		Quality:    raster.ImageQuality,
		FullChroma: c.FullChroma,
	})
	if err != nil {
		return contracts.ConversionResult{}, contracts.Failed("encode jpeg", err)
	}
	return newResult(req.BaseName, contracts.FormatJPEG, data, 0), nil
}
