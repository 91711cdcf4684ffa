package tilesource

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/mapscii-go/mapscii/style"
	"github.com/mapscii-go/mapscii/tile"
)

func emptyStyle(t *testing.T) *style.Styler {
	t.Helper()
	s, err := style.Compile([]byte(`{"layers":[{"id":"roads","type":"line","source-layer":"roads"}]}`))
	if err != nil {
		t.Fatalf("style.Compile: %v", err)
	}
	return s
}

// countingFetcher returns an empty (but valid, ungzipped) mvt payload and
// counts how many times each key was actually fetched.
type countingFetcher struct {
	mu      sync.Mutex
	calls   map[string]int
	gate    chan struct{} // closed to let fetches proceed, for coalescing tests
	payload []byte
}

func newCountingFetcher(payload []byte) *countingFetcher {
	return &countingFetcher{calls: map[string]int{}, payload: payload}
}

func (f *countingFetcher) Fetch(ctx context.Context, z, x, y int) ([]byte, error) {
	if f.gate != nil {
		<-f.gate
	}
	key := tileKey(z, x, y)
	f.mu.Lock()
	f.calls[key]++
	f.mu.Unlock()
	return f.payload, nil
}

func (f *countingFetcher) callsFor(z, x, y int) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[tileKey(z, x, y)]
}

func emptyMVTPayload(t *testing.T) []byte {
	t.Helper()
	// An MVT payload with zero layers is valid and decodes cleanly.
	return []byte{}
}

func newTestSource(t *testing.T, fetcher Fetcher, size int) *TileSource {
	t.Helper()
	return &TileSource{
		cfg:      Config{CacheSize: size},
		fetcher:  fetcher,
		styler:   emptyStyle(t),
		cache:    map[string]*tile.Tile{},
		order:    nil,
		inflight: map[string]*inflightFetch{},
	}
}

func TestModeInferenceRejectsUnknownScheme(t *testing.T) {
	if _, err := newFetcher("not-a-known-scheme"); err == nil {
		t.Fatal("expected an error for an unrecognized source string")
	}
}

func TestModeInferenceAcceptsHTTP(t *testing.T) {
	f, err := newFetcher("http://tiles.example.com")
	if err != nil {
		t.Fatalf("newFetcher(http...) failed: %v", err)
	}
	if _, ok := f.(*httpFetcher); !ok {
		t.Fatalf("expected *httpFetcher, got %T", f)
	}
}

func TestModeInferenceRejectsMissingMBTilesTag(t *testing.T) {
	// Without the mbtiles build tag, opening a .mbtiles source must fail
	// clearly rather than silently doing nothing.
	if _, err := newFetcher("world.mbtiles"); err == nil {
		t.Fatal("expected an error opening .mbtiles without the mbtiles build tag")
	}
}

func TestGetTileCachesAcrossCalls(t *testing.T) {
	fetcher := newCountingFetcher(emptyMVTPayload(t))
	ts := newTestSource(t, fetcher, 16)

	ctx := context.Background()
	if _, err := ts.GetTile(ctx, 1, 2, 3); err != nil {
		t.Fatalf("GetTile: %v", err)
	}
	if _, err := ts.GetTile(ctx, 1, 2, 3); err != nil {
		t.Fatalf("GetTile (cached): %v", err)
	}
	if got := fetcher.callsFor(1, 2, 3); got != 1 {
		t.Errorf("expected exactly 1 fetch for a repeated key, got %d", got)
	}
}

func TestEvictionIsStrictFIFO(t *testing.T) {
	fetcher := newCountingFetcher(emptyMVTPayload(t))
	ts := newTestSource(t, fetcher, 2)
	ctx := context.Background()

	for _, k := range [][3]int{{0, 0, 0}, {0, 1, 0}, {0, 2, 0}} {
		if _, err := ts.GetTile(ctx, k[0], k[1], k[2]); err != nil {
			t.Fatalf("GetTile(%v): %v", k, err)
		}
	}

	ts.mu.Lock()
	_, firstStillCached := ts.cache[tileKey(0, 0, 0)]
	_, lastCached := ts.cache[tileKey(0, 2, 0)]
	size := len(ts.cache)
	ts.mu.Unlock()

	if firstStillCached {
		t.Error("oldest entry should have been evicted first")
	}
	if !lastCached {
		t.Error("most recently inserted entry should still be cached")
	}
	if size != 2 {
		t.Errorf("cache should hold exactly 2 entries, got %d", size)
	}
}

func TestConcurrentRequestsCoalesceToOneFetch(t *testing.T) {
	fetcher := newCountingFetcher(emptyMVTPayload(t))
	fetcher.gate = make(chan struct{})
	ts := newTestSource(t, fetcher, 16)
	ctx := context.Background()

	const n = 8
	var wg sync.WaitGroup
	var successes atomic.Int32
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := ts.GetTile(ctx, 5, 5, 5); err == nil {
				successes.Add(1)
			}
		}()
	}
	close(fetcher.gate) // release every goroutine's fetch at once
	wg.Wait()

	if got := successes.Load(); got != n {
		t.Errorf("expected all %d requesters to succeed, got %d", n, got)
	}
	if got := fetcher.callsFor(5, 5, 5); got != 1 {
		t.Errorf("expected exactly 1 fetch for %d coalesced requests, got %d", n, got)
	}
}

func TestPersistenceRoundTripsSilently(t *testing.T) {
	// Point the user cache dir at a temp dir so the test never touches the
	// real tile cache.
	dir := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", dir)
	t.Setenv("HOME", dir)
	t.Setenv("LocalAppData", dir)

	// readPersisted on a key that was never written must report a clean
	// miss, never an error.
	if _, ok := readPersisted(99, 99, 99); ok {
		t.Error("expected a miss for a never-persisted tile")
	}

	want := []byte{0x1a, 0x00, 0x2a}
	persistTile(99, 99, 99, want)
	got, ok := readPersisted(99, 99, 99)
	if !ok || string(got) != string(want) {
		t.Errorf("readPersisted after persistTile = %v, %v; want %v, true", got, ok, want)
	}
}

func TestCachePathIsStableAcrossCalls(t *testing.T) {
	a := cachePath(3, 4, 5)
	b := cachePath(3, 4, 5)
	if a != b {
		t.Errorf("cachePath should be deterministic: %q != %q", a, b)
	}
}
