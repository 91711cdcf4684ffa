package utils

import (
	"fmt"
	"strconv"
	"strings"
)

// RGB is a plain 8-bit-per-channel color, independent of any terminal
// palette.
type RGB struct {
	R, G, B uint8
}

// cube6 is the component ramp xterm uses for the 6x6x6 color cube
// (palette indices 16..231).
var cube6 = [6]uint8{0, 95, 135, 175, 215, 255}

// Palette256 is the standard 256-color xterm palette: the 16 base ANSI
// colors, a 6x6x6 RGB cube, and a 24-step grayscale ramp.
var Palette256 = buildPalette256()

func buildPalette256() [256]RGB {
	var p [256]RGB

	// 0-7: normal, 8-15: bright. Matches the conventional xterm values
	// (and sparques-fansiterm's PaletteANSI ordering).
	ansi16 := [16]RGB{
		{0, 0, 0}, {127, 0, 0}, {0, 170, 0}, {170, 85, 0},
		{0, 0, 170}, {170, 0, 170}, {0, 170, 170}, {200, 200, 200},
		{85, 85, 85}, {255, 0, 0}, {85, 255, 85}, {255, 255, 85},
		{85, 85, 255}, {255, 85, 255}, {85, 255, 255}, {255, 255, 255},
	}
	copy(p[0:16], ansi16[:])

	i := 16
	for r := 0; r < 6; r++ {
		for g := 0; g < 6; g++ {
			for b := 0; b < 6; b++ {
				p[i] = RGB{cube6[r], cube6[g], cube6[b]}
				i++
			}
		}
	}

	for step := 0; step < 24; step++ {
		v := uint8(8 + step*10)
		p[232+step] = RGB{v, v, v}
	}

	return p
}

// NearestPaletteIndex returns the Palette256 index whose color minimizes
// squared Euclidean distance to c.
func NearestPaletteIndex(c RGB) uint8 {
	best := 0
	bestDist := -1
	for i, p := range Palette256 {
		dr := int(p.R) - int(c.R)
		dg := int(p.G) - int(c.G)
		db := int(p.B) - int(c.B)
		dist := dr*dr + dg*dg + db*db
		if bestDist == -1 || dist < bestDist {
			bestDist = dist
			best = i
		}
	}
	return uint8(best)
}

// ParseCSSColor parses a CSS-style hex color (#rgb, #rrggbb, or bare
// rrggbb/rgb without the hash) into RGB. Non-hex CSS colors (named colors,
// rgba(), hsl()) are not supported; styles using them resolve to black,
// matching the "degrade, don't crash" error-handling rule for StylerCompile.
func ParseCSSColor(s string) (RGB, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	switch len(s) {
	case 3:
		r, err1 := strconv.ParseUint(s[0:1], 16, 8)
		g, err2 := strconv.ParseUint(s[1:2], 16, 8)
		b, err3 := strconv.ParseUint(s[2:3], 16, 8)
		if err1 != nil || err2 != nil || err3 != nil {
			return RGB{}, fmt.Errorf("parse hex color %q", s)
		}
		return RGB{uint8(r * 17), uint8(g * 17), uint8(b * 17)}, nil
	case 6:
		v, err := strconv.ParseUint(s, 16, 32)
		if err != nil {
			return RGB{}, fmt.Errorf("parse hex color %q: %w", s, err)
		}
		return RGB{uint8(v >> 16), uint8(v >> 8), uint8(v)}, nil
	default:
		return RGB{}, fmt.Errorf("unsupported color format %q", s)
	}
}

// ColorToPaletteIndex is the composition most callers want: parse a CSS hex
// string straight to a Palette256 index.
func ColorToPaletteIndex(s string) (uint8, error) {
	rgb, err := ParseCSSColor(s)
	if err != nil {
		return 0, err
	}
	return NearestPaletteIndex(rgb), nil
}
