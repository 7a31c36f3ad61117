//go:build !cgo
// +build !cgo

package raster

import (
	"image"
	"sync"
)

var warnSubsampling sync.Once

func encodeFullChroma(img image.Image, quality int) ([]byte, error) {
	warnSubsampling.Do(func() {
		log.Warnf("built without cgo: JPEG output uses 4:2:0 chroma subsampling")
	})
	return encodeStd(img, quality)
}
