// Package canvas layers vector drawing primitives — lines, filled polygons,
// and positioned text — over a braille.Buffer. It is the geometry half of
// the rendering pipeline; braille.Buffer only knows about individual pixels
// and cells.
package canvas

import "github.com/mapscii-go/mapscii/braille"

// Point is an integer canvas-pixel coordinate.
type Point struct {
	X, Y int
}

// Canvas wraps a braille.Buffer with higher-level drawing operations.
type Canvas struct {
	buf *braille.Buffer
}

// New wraps buf in a Canvas. Canvas does not own buf's lifecycle; callers
// clear/resize the buffer directly if needed.
func New(buf *braille.Buffer) *Canvas {
	return &Canvas{buf: buf}
}

func (c *Canvas) Clear() { c.buf.Clear() }

func (c *Canvas) Frame() string { return c.buf.Frame() }

func (c *Canvas) SetBackground(color uint8) { c.buf.SetGlobalBackground(color) }

// Background sets the background color of the cell containing (x, y).
func (c *Canvas) Background(x, y int, color uint8) { c.buf.SetBackground(x, y, color) }

// Text forwards to the underlying buffer's width-aware text placement.
func (c *Canvas) Text(text string, x, y int, color uint8, center bool) {
	c.buf.WriteText(text, x, y, color, center)
}

func (c *Canvas) Width() int  { return c.buf.W }
func (c *Canvas) Height() int { return c.buf.H }
