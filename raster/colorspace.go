package raster

import (
	"image"
	"image/color"

	"golang.org/x/image/draw"
)

type ColorMode int

const (
	ModeGray ColorMode = iota
	ModeRGB
	ModeRGBA
)

func (m ColorMode) String() string {
	switch m {
	case ModeGray:
		return "L"
	case ModeRGB:
		return "RGB"
	case ModeRGBA:
		return "RGBA"
	}
	return "unknown"
}

// White is the background transparency is flattened onto.
var White = color.RGBA{R: 255, G: 255, B: 255, A: 255}

// ModeOf classifies the pixel encoding of img.
func ModeOf(img image.Image) ColorMode {
	switch m := img.ColorModel(); m {
	case color.GrayModel, color.Gray16Model:
		return ModeGray
	case color.NRGBAModel, color.NRGBA64Model, color.RGBAModel, color.RGBA64Model, color.AlphaModel, color.Alpha16Model:
		return ModeRGBA
	default:
		if p, ok := m.(color.Palette); ok && paletteHasAlpha(p) {
			return ModeRGBA
		}
	}
	return ModeRGB
}

func paletteHasAlpha(p color.Palette) bool {
	for _, c := range p {
		if _, _, _, a := c.RGBA(); a != 0xffff {
			return true
		}
	}
	return false
}

// HasAlpha reports whether img carries an alpha channel.
func HasAlpha(img image.Image) bool {
	return ModeOf(img) == ModeRGBA
}

// Flatten composites img onto an opaque bg using its alpha channel as the mask.
func Flatten(img image.Image, bg color.Color) *image.RGBA {
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Over)
	return dst
}

// ToRGB returns an opaque three-channel copy of img. Transparent pixels are
// flattened onto white.
func ToRGB(img image.Image) *image.RGBA {
	if HasAlpha(img) {
		return Flatten(img, White)
	}
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst
}

// ToGray returns the single-channel luminance of img using the ITU-R 601
// weights of color.GrayModel.
func ToGray(img image.Image) *image.Gray {
	if g, ok := img.(*image.Gray); ok && g.Bounds().Min == (image.Point{}) {
		return g
	}
	var src image.Image = img
	if HasAlpha(img) {
		src = Flatten(img, White)
	}
	b := src.Bounds()
	dst := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
	return dst
}
