//go:build mbtiles

// Package mbtiles opens a local MBTiles SQLite archive as a tilesource
// byte fetcher. It is built only with the "mbtiles" tag — see archive_stub.go
// for the default, archive-less build.
package mbtiles

import (
	"context"
	"database/sql"

	"github.com/cockroachdb/errors"
	_ "github.com/mattn/go-sqlite3"
)

// Archive is a read-only handle on an .mbtiles file. It satisfies
// tilesource.Fetcher structurally (Fetch(ctx, z, x, y) ([]byte, error))
// without importing that package, avoiding an import cycle.
type Archive struct {
	db *sql.DB
}

// Open opens path as a read-only MBTiles SQLite archive.
func Open(path string) (*Archive, error) {
	db, err := sql.Open("sqlite3", "file:"+path+"?mode=ro&immutable=1")
	if err != nil {
		return nil, errors.Wrap(err, "mbtiles: open")
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "mbtiles: ping")
	}
	return &Archive{db: db}, nil
}

// Fetch reads the tile at (z, x, y). MBTiles stores tile_row in TMS order
// (flipped from the standard XYZ y used everywhere else in this module),
// so y is flipped before the query.
func (a *Archive) Fetch(ctx context.Context, z, x, y int) ([]byte, error) {
	tmsRow := (1 << uint(z)) - 1 - y
	row := a.db.QueryRowContext(ctx,
		`SELECT tile_data FROM tiles WHERE zoom_level = ? AND tile_column = ? AND tile_row = ?`,
		z, x, tmsRow)

	var data []byte
	if err := row.Scan(&data); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errors.Newf("mbtiles: no tile at z=%d x=%d y=%d", z, x, y)
		}
		return nil, errors.Wrap(err, "mbtiles: scan")
	}
	return data, nil
}

// Close releases the underlying database handle.
func (a *Archive) Close() error { return a.db.Close() }
