// Package raster decodes, normalizes, transforms and encodes the images handled
// by the image converters. A RasterImage lives only for the duration of one
// conversion call.
package raster

import (
	"bytes"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/flanksource/commons/logger"
	_ "golang.org/x/image/bmp"

	"docconv/contracts"
	"docconv/utils"
)

var log = logger.GetLogger("raster")

// Media sets accepted by the image converters.
var (
	PDFSourceTypes       = contracts.MediaSet{"image/jpeg", "image/png", "image/bmp", "image/gif"}
	GrayscaleSourceTypes = contracts.MediaSet{"image/jpeg", "image/png", "image/bmp"}
	PNGTypes             = contracts.MediaSet{"image/png", "image/x-png"}
	BMPTypes             = contracts.MediaSet{"image/bmp", "image/x-ms-bmp"}
)

// decoder format name -> canonical media type
var formatMediaTypes = map[string]string{
	"jpeg": "image/jpeg",
	"png":  "image/png",
	"bmp":  "image/bmp",
	"gif":  "image/gif",
}

// aliases accepted in declared media types
var canonicalMediaTypes = map[string]string{
	"image/x-png":    "image/png",
	"image/x-ms-bmp": "image/bmp",
}

type RasterImage struct {
	Image  image.Image
	Format string
}

func (r *RasterImage) Width() int  { return r.Image.Bounds().Dx() }
func (r *RasterImage) Height() int { return r.Image.Bounds().Dy() }

type LoadOptions struct {
	// AutoOrient applies the EXIF Orientation of JPEG sources.
	AutoOrient bool
}

// Load checks the declared media type of p against supported, then decodes it.
// Every failure is a validation error: the bytes came from the caller.
func Load(p contracts.Payload, supported contracts.MediaSet, opts LoadOptions) (*RasterImage, error) {
	if err := CheckType(p, supported); err != nil {
		return nil, err
	}
	declared := contracts.NormalizeMediaType(p.MediaType)

	img, format, err := image.Decode(bytes.NewReader(p.Data))
	if err != nil {
		return nil, contracts.InvalidWithCause(err, "cannot open image %q", p.Name)
	}
	detected := formatMediaTypes[format]
	if !supported.Contains(detected) {
		return nil, contracts.Invalid("image %q is %s data, expected one of: %s", p.Name, format, supported)
	}
	if canonical(declared) != detected {
		log.Debugf("%s: declared %s but decoded %s", p.Name, declared, format)
	}

	if opts.AutoOrient && format == "jpeg" {
		orientation, err := utils.GetJPEGOrientation(p.Data)
		if err != nil {
			log.Warnf("%s: ignoring unreadable orientation metadata: %v", p.Name, err)
		}
		img = Orient(img, orientation)
	}

	b := img.Bounds()
	if b.Empty() {
		return nil, contracts.Invalid("image %q has no pixels", p.Name)
	}
	log.Debugf("decoded %s: %s %dx%d", p.Name, format, b.Dx(), b.Dy())

	return &RasterImage{Image: img, Format: format}, nil
}

// CheckType validates the declared media type of p and that it carries data,
// without decoding.
func CheckType(p contracts.Payload, supported contracts.MediaSet) error {
	declared := contracts.NormalizeMediaType(p.MediaType)
	if declared == "" {
		return contracts.Invalid("image %q has no media type", p.Name)
	}
	if !supported.Contains(declared) {
		return contracts.Invalid("unsupported image format %s for %q, expected one of: %s", declared, p.Name, supported)
	}
	if len(p.Data) == 0 {
		return contracts.Invalid("image %q is empty", p.Name)
	}
	return nil
}

func canonical(mediaType string) string {
	if c, ok := canonicalMediaTypes[mediaType]; ok {
		return c
	}
	return mediaType
}
