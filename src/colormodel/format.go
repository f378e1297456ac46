package colormodel

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidFormat is returned for an output format token other than HEX or RGB.
var ErrInvalidFormat = errors.New("invalid format")

type Kind int

const (
	KindHex Kind = iota
	KindRGB
)

// Format selects how a picked color is rendered.
type Format struct {
	Kind  Kind
	Upper bool
}

var (
	FormatHexUpper = Format{Kind: KindHex, Upper: true}
	FormatHexLower = Format{Kind: KindHex}
	FormatRGB      = Format{Kind: KindRGB}
)

// ParseFormat matches HEX and RGB case-insensitively. An all-lowercase "hex"
// selects lowercase digits; any other spelling of HEX selects uppercase.
func ParseFormat(token string) (Format, error) {
	trimmed := strings.TrimSpace(token)
	switch strings.ToUpper(trimmed) {
	case "HEX":
		if trimmed == strings.ToLower(trimmed) {
			return FormatHexLower, nil
		}
		return FormatHexUpper, nil
	case "RGB":
		return FormatRGB, nil
	default:
		return Format{}, fmt.Errorf("%w: %q (expected HEX, hex or RGB)", ErrInvalidFormat, token)
	}
}

// Apply renders c in this format.
func (f Format) Apply(c Color) string {
	if f.Kind == KindRGB {
		return c.RGB()
	}
	return c.Hex(f.Upper)
}

func (f Format) String() string {
	switch {
	case f.Kind == KindRGB:
		return "RGB"
	case f.Upper:
		return "HEX"
	default:
		return "hex"
	}
}
