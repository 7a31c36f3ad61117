package raster

import (
	"errors"
	"image"
	"image/color"
	"math"
)

type Point struct {
	X, Y float64
}

// Quad lists corners clockwise from the top-left.
type Quad [4]Point

// Swirl defaults.
const (
	SwirlStrength = 5.0
	SwirlRadius   = 200.0
)

var ErrDegenerateQuad = errors.New("perspective corners are collinear")

// SkewCorners returns the target quad of the default perspective skew for a w x h
// image. Offsets shrink for images smaller than 100px so the quad stays convex.
func SkewCorners(w, h int) (src Quad, dst Quad) {
	fw, fh := float64(w), float64(h)
	s := math.Min(1, math.Min(fw, fh)/100)
	src = Quad{{0, 0}, {fw, 0}, {fw, fh}, {0, fh}}
	dst = Quad{
		{20 * s, 10 * s},
		{fw - 20*s, 15 * s},
		{fw - 15*s, fh - 20*s},
		{10 * s, fh - 10*s},
	}
	return src, dst
}

// Perspective warps img so the src corners land on dst. Pixels mapping outside
// the source are filled with bg.
func Perspective(img *image.RGBA, src, dst Quad, bg color.RGBA) (*image.RGBA, error) {
	// inverse mapping: for every output pixel find where it came from
	h, err := homography(dst, src)
	if err != nil {
		return nil, err
	}
	b := img.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			px, py := float64(x)+0.5, float64(y)+0.5
			den := h[6]*px + h[7]*py + 1
			if den == 0 {
				out.SetRGBA(x, y, bg)
				continue
			}
			sx := (h[0]*px + h[1]*py + h[2]) / den
			sy := (h[3]*px + h[4]*py + h[5]) / den
			out.SetRGBA(x, y, sample(img, sx-0.5, sy-0.5, bg))
		}
	}
	return out, nil
}

// Swirl rotates pixels around the centre by an angle that falls off linearly
// from strength radians at the centre to zero at radius.
func Swirl(img *image.RGBA, strength, radius float64) *image.RGBA {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	cx, cy := float64(w)/2, float64(h)/2
	out := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			dx, dy := float64(x)-cx, float64(y)-cy
			d := math.Hypot(dx, dy)
			if d >= radius {
				out.SetRGBA(x, y, img.RGBAAt(b.Min.X+x, b.Min.Y+y))
				continue
			}
			angle := math.Atan2(dy, dx) + strength*(radius-d)/radius
			sx := cx + d*math.Cos(angle)
			sy := cy + d*math.Sin(angle)
			out.SetRGBA(x, y, sample(img, sx, sy, img.RGBAAt(b.Min.X+x, b.Min.Y+y)))
		}
	}
	return out
}

// sample reads img at fractional coordinates relative to its origin with
// bilinear interpolation.
func sample(img *image.RGBA, fx, fy float64, bg color.RGBA) color.RGBA {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if fx < -0.5 || fy < -0.5 || fx > float64(w)-0.5 || fy > float64(h)-0.5 {
		return bg
	}
	x0, y0 := int(math.Floor(fx)), int(math.Floor(fy))
	wx, wy := fx-float64(x0), fy-float64(y0)
	at := func(x, y int) color.RGBA {
		x = clamp(x, 0, w-1)
		y = clamp(y, 0, h-1)
		return img.RGBAAt(b.Min.X+x, b.Min.Y+y)
	}
	c00, c10 := at(x0, y0), at(x0+1, y0)
	c01, c11 := at(x0, y0+1), at(x0+1, y0+1)
	mix := func(a, b, c, d uint8) uint8 {
		top := float64(a)*(1-wx) + float64(b)*wx
		bottom := float64(c)*(1-wx) + float64(d)*wx
		return uint8(math.Round(top*(1-wy) + bottom*wy))
	}
	return color.RGBA{
		R: mix(c00.R, c10.R, c01.R, c11.R),
		G: mix(c00.G, c10.G, c01.G, c11.G),
		B: mix(c00.B, c10.B, c01.B, c11.B),
		A: mix(c00.A, c10.A, c01.A, c11.A),
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// homography solves for the 3x3 projective matrix (h[8] = 1) taking from onto to.
func homography(from, to Quad) ([8]float64, error) {
	var a [8][9]float64
	for i := 0; i < 4; i++ {
		x, y := from[i].X, from[i].Y
		u, v := to[i].X, to[i].Y
		a[2*i] = [9]float64{x, y, 1, 0, 0, 0, -u * x, -u * y, u}
		a[2*i+1] = [9]float64{0, 0, 0, x, y, 1, -v * x, -v * y, v}
	}

	// gaussian elimination with partial pivoting
	for col := 0; col < 8; col++ {
		pivot := col
		for r := col + 1; r < 8; r++ {
			if math.Abs(a[r][col]) > math.Abs(a[pivot][col]) {
				pivot = r
			}
		}
		if math.Abs(a[pivot][col]) < 1e-12 {
			return [8]float64{}, ErrDegenerateQuad
		}
		a[col], a[pivot] = a[pivot], a[col]
		for r := 0; r < 8; r++ {
			if r == col {
				continue
			}
			f := a[r][col] / a[col][col]
			for c := col; c < 9; c++ {
				a[r][c] -= f * a[col][c]
			}
		}
	}

	var h [8]float64
	for i := 0; i < 8; i++ {
		h[i] = a[i][8] / a[i][i]
	}
	return h, nil
}
