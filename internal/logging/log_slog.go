//go:build !lognone && !logprintln

package logging

import (
	"log/slog"
	"os"
)

func init() {
	Output = os.Stderr
	log = slog.New(slog.NewTextHandler(Output, nil))
}
