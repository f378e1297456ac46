package preview

import (
	"image/color"

	"wcolor/src/colormodel"
)

// contrastColor outlines the disc so it stays visible on any background.
var contrastColor = color.RGBA{R: 26, G: 26, B: 26, A: 0xff}

// Brush is the single solid color used to paint the preview. It starts fully
// transparent and unset.
type Brush struct {
	color color.RGBA
	set   bool
}

func newBrush() *Brush {
	return &Brush{}
}

// Matches reports whether the brush already shows c in all three channels.
func (b *Brush) Matches(c colormodel.Color) bool {
	if !b.set {
		return false
	}
	r, g, bl := c.Channels()
	return b.color.R == r && b.color.G == g && b.color.B == bl
}

func (b *Brush) SetColor(c color.RGBA) {
	b.color = c
	b.set = true
}

func (b *Brush) Color() color.RGBA {
	return b.color
}
