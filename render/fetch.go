package render

import (
	"context"
	"math"
	"sync"

	"github.com/mapscii-go/mapscii/tile"
)

// tileCoord is an integer (z, x, y) tile address.
type tileCoord struct{ Z, X, Y int }

// tileCoordsInRange enumerates the z-level tiles intersecting a viewport
// half-width/half-height (in fractional tile units) around (centerTX,
// centerTY), clipped to the valid [0, 2^z) tile grid.
func tileCoordsInRange(centerTX, centerTY, halfW, halfH, zBase float64) []tileCoord {
	z := int(zBase)
	n := int(math.Exp2(zBase))

	minTX := clampTileIndex(int(math.Floor(centerTX-halfW)), n)
	maxTX := clampTileIndex(int(math.Floor(centerTX+halfW)), n)
	minTY := clampTileIndex(int(math.Floor(centerTY-halfH)), n)
	maxTY := clampTileIndex(int(math.Floor(centerTY+halfH)), n)

	var coords []tileCoord
	for tx := minTX; tx <= maxTX; tx++ {
		for ty := minTY; ty <= maxTY; ty++ {
			coords = append(coords, tileCoord{Z: z, X: tx, Y: ty})
		}
	}
	return coords
}

func clampTileIndex(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

// fetchAll requests every coordinate in parallel and waits for all of them,
// per spec.md §4.7 step 3 — a single failure fails the whole batch so the
// caller never paints from a partially-resolved tile set.
func (r *Renderer) fetchAll(ctx context.Context, coords []tileCoord) (map[tileCoord]*tile.Tile, error) {
	results := make(map[tileCoord]*tile.Tile, len(coords))
	var mu sync.Mutex
	var firstErr error

	var wg sync.WaitGroup
	for _, c := range coords {
		wg.Add(1)
		go func(c tileCoord) {
			defer wg.Done()
			t, err := r.source.GetTile(ctx, c.Z, c.X, c.Y)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if firstErr == nil {
					firstErr = err
				}
				return
			}
			results[c] = t
		}(c)
	}
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	return results, nil
}
