//go:build !mbtiles

package mbtiles

import (
	"context"

	"github.com/cockroachdb/errors"
)

// Archive is a disabled stand-in: this build was compiled without the
// "mbtiles" tag, so no sqlite3 driver is linked in.
type Archive struct{}

// Open always fails in this build. Rebuild with -tags mbtiles to read
// local .mbtiles archives.
func Open(path string) (*Archive, error) {
	return nil, errors.Newf("mbtiles: archive support not compiled in (rebuild with -tags mbtiles) for %q", path)
}

func (a *Archive) Fetch(ctx context.Context, z, x, y int) ([]byte, error) {
	return nil, errors.New("mbtiles: archive support not compiled in")
}

func (a *Archive) Close() error { return nil }
