package colormodel

import (
	"fmt"
	"image/color"
	"strings"
)

// Color is a packed 0xRRGGBB value. The channel order is fixed regardless of
// how the platform pixel API orders its bytes.
type Color uint32

// Pack builds a Color from its three channels.
func Pack(r, g, b uint8) Color {
	return Color(uint32(r)<<16 | uint32(g)<<8 | uint32(b))
}

// FromCOLORREF normalizes a Windows COLORREF (0x00BBGGRR) into a Color.
func FromCOLORREF(ref uint32) Color {
	return Pack(uint8(ref), uint8(ref>>8), uint8(ref>>16))
}

// FromRGBA converts any image color, dropping alpha.
func FromRGBA(c color.Color) Color {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return Pack(n.R, n.G, n.B)
}

// Channels returns the red, green and blue components.
func (c Color) Channels() (r, g, b uint8) {
	return uint8(c >> 16), uint8(c >> 8), uint8(c)
}

// RGBA returns the opaque image color used by the preview brush.
func (c Color) RGBA() color.RGBA {
	r, g, b := c.Channels()
	return color.RGBA{R: r, G: g, B: b, A: 0xff}
}

// Hex renders the color as #rgb when every channel is below 16 and as
// #rrggbb otherwise.
func (c Color) Hex(upper bool) string {
	r, g, b := c.Channels()
	verb := "%x"
	if upper {
		verb = "%X"
	}

	var sb strings.Builder
	sb.WriteByte('#')
	short := r < 16 && g < 16 && b < 16
	for _, ch := range [3]uint8{r, g, b} {
		if ch < 16 && !short {
			sb.WriteByte('0')
		}
		fmt.Fprintf(&sb, verb, ch)
	}
	return sb.String()
}

// RGB renders the color as "R, G, B" in decimal.
func (c Color) RGB() string {
	r, g, b := c.Channels()
	return fmt.Sprintf("%d, %d, %d", r, g, b)
}

func (c Color) String() string {
	return c.Hex(false)
}
