// Package braille packs a 2x4 grid of pixels per terminal cell into a
// Unicode braille glyph (or an ASCII block-glyph fallback), tracks a
// per-cell foreground/background palette index, and serializes the whole
// grid into a minimal, state-compressed ANSI SGR stream.
//
// The cell-packing and SGR-emission rules mirror the escape-sequence
// handling in sparques-fansiterm (escCSI.go's 'm' case builds up the same
// kind of terminal attribute state this package walks down into text), run
// in the opposite direction: there we parsed SGR into pixels, here we
// flatten pixels back into SGR.
package braille

import (
	"fmt"
	"strings"

	"github.com/rivo/uniseg"
)

const (
	sgrCSI   = "\x1b["
	sgrReset = "\x1b[39;49m"
)

// brailleBits maps (x mod 2, y mod 4) to the bit it sets within a cell's
// pixel byte, per spec's canonical braille layout:
//
//	col0  col1
//	0x01  0x08   row 0
//	0x02  0x10   row 1
//	0x04  0x20   row 2
//	0x40  0x80   row 3
var brailleBits = [2][4]uint8{
	{0x01, 0x02, 0x04, 0x40}, // col 0
	{0x08, 0x10, 0x20, 0x80}, // col 1
}

// Buffer is a sub-character pixel raster: width W (even, in pixels) by
// height H (a multiple of 4), packed 8 pixels to a terminal cell.
type Buffer struct {
	W, H int

	pixel []uint8
	fg    []uint8
	bg    []uint8
	fgSet []bool
	bgSet []bool
	char  []string

	globalBg    uint8
	globalBgSet bool

	useBraille bool
	delimiter  string
}

// Config controls how a Buffer serializes itself.
type Config struct {
	UseBraille bool   // braille glyphs vs ASCII block-glyph fallback
	Delimiter  string // row separator; defaults to "\n\r"
}

// New allocates a cleared Buffer. W must be even and H must be a multiple
// of 4; New does not validate this (callers are expected to size the canvas
// correctly once, at startup).
func New(w, h int, cfg Config) *Buffer {
	delim := cfg.Delimiter
	if delim == "" {
		delim = "\n\r"
	}
	cells := (w / 2) * (h / 4)
	b := &Buffer{
		W:          w,
		H:          h,
		pixel:      make([]uint8, cells),
		fg:         make([]uint8, cells),
		bg:         make([]uint8, cells),
		fgSet:      make([]bool, cells),
		bgSet:      make([]bool, cells),
		char:       make([]string, cells),
		useBraille: cfg.UseBraille,
		delimiter:  delim,
	}
	return b
}

func (b *Buffer) cols() int { return b.W / 2 }
func (b *Buffer) rows() int { return b.H / 4 }

// cellIndex returns the terminal-cell index for pixel coordinate (x, y), or
// ok=false if (x, y) is out of bounds.
func (b *Buffer) cellIndex(x, y int) (i int, ok bool) {
	if x < 0 || x >= b.W || y < 0 || y >= b.H {
		return 0, false
	}
	return (x >> 1) + (b.W>>1)*(y>>2), true
}

// Clear zeroes all four per-cell arrays (pixel, fg, bg, char) and the
// global-background floor.
func (b *Buffer) Clear() {
	for i := range b.pixel {
		b.pixel[i] = 0
		b.fg[i] = 0
		b.bg[i] = 0
		b.fgSet[i] = false
		b.bgSet[i] = false
		b.char[i] = ""
	}
	b.globalBg = 0
	b.globalBgSet = false
}

// SetPixel ORs the bit for (x, y) into its cell's pixel mask and sets that
// cell's foreground color. color 0 means "no explicit foreground" and
// leaves the cell's fg unset rather than painting palette index 0.
// Out-of-range coordinates are a silent no-op.
func (b *Buffer) SetPixel(x, y int, color uint8) {
	i, ok := b.cellIndex(x, y)
	if !ok {
		return
	}
	b.pixel[i] |= brailleBits[x&1][y&3]
	if color != 0 {
		b.fg[i] = color
		b.fgSet[i] = true
	}
}

// UnsetPixel clears the bit for (x, y) without touching fg.
func (b *Buffer) UnsetPixel(x, y int) {
	i, ok := b.cellIndex(x, y)
	if !ok {
		return
	}
	b.pixel[i] &^= brailleBits[x&1][y&3]
}

// SetBackground sets the background color for the cell containing (x, y).
func (b *Buffer) SetBackground(x, y int, color uint8) {
	i, ok := b.cellIndex(x, y)
	if !ok {
		return
	}
	b.bg[i] = color
	b.bgSet[i] = true
}

// SetGlobalBackground sets the background floor used during emission for
// any cell that has no background of its own.
func (b *Buffer) SetGlobalBackground(color uint8) {
	b.globalBg = color
	b.globalBgSet = true
}

// SetChar stores an override character for the cell containing (x, y): that
// cell will emit ch instead of its braille/ASCII glyph. The foreground
// color is set the same way SetPixel sets it.
func (b *Buffer) SetChar(ch rune, x, y int, color uint8) {
	i, ok := b.cellIndex(x, y)
	if !ok {
		return
	}
	b.char[i] = string(ch)
	if color != 0 {
		b.fg[i] = color
		b.fgSet[i] = true
	}
}

// WriteText places text one sub-cell (i.e. one terminal cell) apart
// horizontally, per code point, optionally centered on x. Centering uses
// East-Asian-width-aware measurement rather than rune count, per spec §9's
// redesign note (c) — the source's ASCII-only centering is not reproduced.
func (b *Buffer) WriteText(text string, x, y int, color uint8, center bool) {
	if center {
		w := uniseg.StringWidth(text)
		x -= w/2 + 1
	}
	for i, r := range []rune(text) {
		b.SetChar(r, x+2*i, y, color)
	}
}

// sgrFor computes the desired SGR sequence for cell i, applying the "cell
// background if set, else global background" rule of spec §9's redesign
// note (d) (the source's OR-fusion of the two is not reproduced).
func (b *Buffer) sgrFor(i int) string {
	hasFg := b.fgSet[i]
	var bgVal uint8
	hasBg := b.bgSet[i]
	if hasBg {
		bgVal = b.bg[i]
	} else if b.globalBgSet {
		bgVal = b.globalBg
		hasBg = true
	}

	switch {
	case hasFg && hasBg:
		return fmt.Sprintf("%s38;5;%d;48;5;%dm", sgrCSI, b.fg[i], bgVal)
	case hasFg:
		return fmt.Sprintf("%s49;38;5;%dm", sgrCSI, b.fg[i])
	case hasBg:
		return fmt.Sprintf("%s39;48;5;%dm", sgrCSI, bgVal)
	default:
		return sgrReset
	}
}

// Frame serializes the grid: row-major, one delimiter between rows, SGR
// sequences emitted only when the desired attribute state changes (the
// single state-compression rule), terminated by a reset and a final
// delimiter.
func (b *Buffer) Frame() string {
	var sb strings.Builder
	cols, rows := b.cols(), b.rows()

	lastSGR := ""
	skip := 0
	for y := 0; y < rows; y++ {
		if y > 0 {
			sb.WriteString(b.delimiter)
		}
		for x := 0; x < cols; x++ {
			i := x + cols*y

			sgr := b.sgrFor(i)
			if sgr != lastSGR {
				sb.WriteString(sgr)
				lastSGR = sgr
			}

			if b.char[i] != "" {
				sb.WriteString(b.char[i])
				skip = uniseg.StringWidth(b.char[i]) - 1
				continue
			}
			if skip > 0 {
				skip--
				continue
			}

			if b.useBraille {
				sb.WriteRune(rune(0x2800 + int(b.pixel[i])))
			} else {
				sb.WriteRune(asciiFallbackTable[b.pixel[i]])
			}
		}
	}
	sb.WriteString(sgrReset)
	sb.WriteString(b.delimiter)
	return sb.String()
}
