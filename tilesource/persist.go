package tilesource

import (
	"fmt"
	"os"
	"path/filepath"
)

// cachePath lays out persisted tiles as <user-cache-dir>/mapscii/<z>/<x>-<y>.pbf.
func cachePath(z, x, y int) string {
	base, err := os.UserCacheDir()
	if err != nil {
		base = os.TempDir()
	}
	return filepath.Join(base, "mapscii", fmt.Sprint(z), fmt.Sprintf("%d-%d.pbf", x, y))
}

// readPersisted never raises: a missing or unreadable file is simply a miss.
func readPersisted(z, x, y int) ([]byte, bool) {
	b, err := os.ReadFile(cachePath(z, x, y))
	if err != nil {
		return nil, false
	}
	return b, true
}

// persistTile is best effort: a write failure is silently dropped rather
// than surfaced, per spec.md §4.6's persistence contract.
func persistTile(z, x, y int, data []byte) {
	path := cachePath(z, x, y)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return
	}
	_ = os.WriteFile(path, data, 0o644)
}
