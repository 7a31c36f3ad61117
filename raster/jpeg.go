package raster

import (
	"bytes"
	"image"
	"image/jpeg"
)

// Fixed encoder qualities.
const (
	PageQuality  = 90
	ImageQuality = 95
)

type JPEGOptions struct {
	Quality int
	// FullChroma disables chroma subsampling (4:4:4) and enables optimized
	// Huffman tables.
	FullChroma bool
}

// EncodeJPEG encodes img with the given options.
func EncodeJPEG(img image.Image, opts JPEGOptions) ([]byte, error) {
	if opts.Quality <= 0 || opts.Quality > 100 {
		opts.Quality = ImageQuality
	}
	if opts.FullChroma && ModeOf(img) != ModeGray {
		return encodeFullChroma(img, opts.Quality)
	}
	return encodeStd(img, opts.Quality)
}

func encodeStd(img image.Image, quality int) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
