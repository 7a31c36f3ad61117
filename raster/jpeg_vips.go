//go:build cgo
// +build cgo

package raster

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"sync"

	"github.com/davidbyttow/govips/v2/vips"
)

var vipsStartup sync.Once

func startVips() {
	vipsStartup.Do(func() {
		vips.LoggingSettings(nil, vips.LogLevelWarning)
		vips.Startup(nil)
	})
}

// encodeFullChroma hands the pixels to libvips, the standard library encoder
// always subsamples chroma 4:2:0.
func encodeFullChroma(img image.Image, quality int) ([]byte, error) {
	startVips()

	var src bytes.Buffer
	enc := png.Encoder{CompressionLevel: png.NoCompression}
	if err := enc.Encode(&src, img); err != nil {
		return nil, fmt.Errorf("stage pixels for libvips: %w", err)
	}

	ref, err := vips.NewImageFromBuffer(src.Bytes())
	if err != nil {
		return nil, fmt.Errorf("load pixels into libvips: %w", err)
	}
	defer ref.Close()

	params := vips.NewJpegExportParams()
	params.Quality = quality
	params.OptimizeCoding = true
	params.StripMetadata = true
	params.SubsampleMode = vips.VipsForeignSubsampleOff

	out, _, err := ref.ExportJpeg(params)
	if err != nil {
		return nil, fmt.Errorf("libvips jpeg export: %w", err)
	}
	return out, nil
}
