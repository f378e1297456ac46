package preview

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"golang.org/x/image/vector"
)

const (
	// kappa places cubic control points so four segments approximate a circle.
	kappa       = 0.5522847498
	strokeWidth = 1.3
	discMargin  = 2
)

// Realization is a shape rasterized once into a coverage mask and reused for
// every frame.
type Realization struct {
	mask *image.Alpha
}

// Fill paints c through the realization's coverage onto dst.
func (r *Realization) Fill(dst *image.RGBA, c color.RGBA) {
	draw.DrawMask(dst, dst.Bounds(), image.NewUniform(c), image.Point{}, r.mask, image.Point{}, draw.Over)
}

// Coverage returns the mask value at (x, y), 0 outside the shape.
func (r *Realization) Coverage(x, y int) uint8 {
	return r.mask.AlphaAt(x, y).A
}

// discRadius is the radius that fits a size x size window with a margin
// for the outline.
func discRadius(size int) float32 {
	return float32(size)/2 - discMargin
}

// realizeDisc rasterizes a filled disc centered in a size x size area.
func realizeDisc(size int) (*Realization, error) {
	radius := discRadius(size)
	if radius < 1 {
		return nil, fmt.Errorf("window size %d too small for preview disc", size)
	}
	center := float32(size) / 2

	z := vector.NewRasterizer(size, size)
	addCircle(z, center, center, radius, false)
	return rasterize(z, size), nil
}

// realizeRing rasterizes the disc outline as a stroked annulus. The outer and
// inner circles wind in opposite directions so the inner area cancels out.
func realizeRing(size int) (*Realization, error) {
	radius := discRadius(size)
	if radius < 1 {
		return nil, fmt.Errorf("window size %d too small for preview outline", size)
	}
	center := float32(size) / 2
	half := float32(strokeWidth / 2)

	z := vector.NewRasterizer(size, size)
	addCircle(z, center, center, radius+half, false)
	addCircle(z, center, center, radius-half, true)
	return rasterize(z, size), nil
}

func rasterize(z *vector.Rasterizer, size int) *Realization {
	mask := image.NewAlpha(image.Rect(0, 0, size, size))
	z.Draw(mask, mask.Bounds(), image.Opaque, image.Point{})
	return &Realization{mask: mask}
}

func addCircle(z *vector.Rasterizer, cx, cy, r float32, reverse bool) {
	k := float32(kappa) * r
	z.MoveTo(cx+r, cy)
	if !reverse {
		z.CubeTo(cx+r, cy+k, cx+k, cy+r, cx, cy+r)
		z.CubeTo(cx-k, cy+r, cx-r, cy+k, cx-r, cy)
		z.CubeTo(cx-r, cy-k, cx-k, cy-r, cx, cy-r)
		z.CubeTo(cx+k, cy-r, cx+r, cy-k, cx+r, cy)
	} else {
		z.CubeTo(cx+r, cy-k, cx+k, cy-r, cx, cy-r)
		z.CubeTo(cx-k, cy-r, cx-r, cy-k, cx-r, cy)
		z.CubeTo(cx-r, cy+k, cx-k, cy+r, cx, cy+r)
		z.CubeTo(cx+k, cy+r, cx+r, cy+k, cx+r, cy)
	}
	z.ClosePath()
}
