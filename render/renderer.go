// Package render drives one frame: pick the tiles a viewport touches,
// project and style each layer's features onto a canvas, place labels,
// and serialize the result.
package render

import (
	"context"
	"math"
	"sync"

	"github.com/cockroachdb/errors"

	"github.com/mapscii-go/mapscii/canvas"
	"github.com/mapscii-go/mapscii/config"
	"github.com/mapscii-go/mapscii/internal/logging"
	"github.com/mapscii-go/mapscii/internal/utils"
	"github.com/mapscii-go/mapscii/label"
	"github.com/mapscii-go/mapscii/style"
	"github.com/mapscii-go/mapscii/tilesource"
)

// ErrBusy is returned by Draw when another draw is already in flight.
var ErrBusy = errors.New("render: a draw is already in progress")

// ErrTileUnavailable is returned by Draw when at least one required tile
// could not be fetched or decoded.
var ErrTileUnavailable = errors.New("render: one or more tiles unavailable")

// NotificationKind classifies a Notification.
type NotificationKind int

const (
	NotificationNone NotificationKind = iota
	NotificationBusy
	NotificationTileUnavailable
)

// Notification is a small user-facing status returned alongside a failed
// Draw — the screen keeps the prior frame, and this is the one-line
// explanation of why nothing changed.
type Notification struct {
	Kind    NotificationKind
	Message string
}

// Center is a viewport center in geographic degrees.
type Center struct {
	Lon, Lat float64
}

// Renderer turns a (center, zoom) viewport into a frame string.
type Renderer struct {
	canvas *canvas.Canvas
	labels *label.Buffer
	source *tilesource.TileSource
	styler *style.Styler
	cfg    config.Config

	mu sync.Mutex
}

// New assembles a Renderer from its already-constructed collaborators.
func New(c *canvas.Canvas, labels *label.Buffer, source *tilesource.TileSource, styler *style.Styler, cfg config.Config) *Renderer {
	return &Renderer{canvas: c, labels: labels, source: source, styler: styler, cfg: cfg}
}

// Draw renders the viewport at (center, zoom) and returns the resulting
// frame string. A concurrent call while one Draw is in flight is rejected
// with ErrBusy and does not disturb the in-flight draw; a tile that fails
// to fetch or decode fails the whole frame with ErrTileUnavailable, per
// spec.md §5's "frame is produced atomically" rule — nothing is painted
// from a partially-resolved tile set.
func (r *Renderer) Draw(ctx context.Context, center Center, zoom float64) (string, Notification, error) {
	if !r.mu.TryLock() {
		logging.Default().Warn("render: draw rejected, already in progress")
		return "", Notification{NotificationBusy, "renderer busy, try again"}, ErrBusy
	}
	defer r.mu.Unlock()

	zBase := math.Floor(zoom)
	zoomScale := math.Exp2(zoom - zBase)
	tilePixelSize := float64(r.cfg.ProjectSize) * zoomScale

	centerTX, centerTY := utils.LL2Tile(center.Lon, center.Lat, zBase)

	w, h := r.canvas.Width(), r.canvas.Height()
	halfW := float64(w) / 2 / tilePixelSize
	halfH := float64(h) / 2 / tilePixelSize

	coords := tileCoordsInRange(centerTX, centerTY, halfW, halfH, zBase)
	tiles, err := r.fetchAll(ctx, coords)
	if err != nil {
		logging.Default().Warn("render: tile fetch failed, keeping previous frame", "err", err)
		return "", Notification{NotificationTileUnavailable, "tile unavailable"}, ErrTileUnavailable
	}

	r.canvas.Clear()
	r.labels.Clear()
	r.paintBackground()

	view := viewportGeom{centerTX: centerTX, centerTY: centerTY, tilePixelSize: tilePixelSize, w: w, h: h}
	for _, layer := range r.styler.Layers() {
		if layer.Type == "background" {
			continue
		}
		if zoom < layer.MinZoom || zoom > layer.MaxZoom {
			continue
		}
		r.paintLayer(layer, coords, tiles, view)
	}

	return r.canvas.Frame(), Notification{}, nil
}
