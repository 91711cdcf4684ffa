package tilesource

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
)

type httpFetcher struct {
	base   string
	client *http.Client
}

func newHTTPFetcher(base string) *httpFetcher {
	return &httpFetcher{
		base:   strings.TrimSuffix(base, "/"),
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

func (f *httpFetcher) Fetch(ctx context.Context, z, x, y int) ([]byte, error) {
	url := fmt.Sprintf("%s/%d/%d/%d.pbf", f.base, z, x, y)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Wrap(err, "tilesource: build request")
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "tilesource: request")
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, errors.Newf("tilesource: %s returned status %d", url, resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}
