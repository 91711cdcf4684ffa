package render

import (
	"golang.org/x/term"

	"github.com/cockroachdb/errors"
)

// DetectTerminalSize reports the terminal's column/row count for fd, so a
// headless or host-embedded caller can size the canvas (2 pixels per
// column, 4 per row) without shelling out to stty.
func DetectTerminalSize(fd int) (cols, rows int, err error) {
	cols, rows, err = term.GetSize(fd)
	if err != nil {
		return 0, 0, errors.Wrap(err, "render: detect terminal size")
	}
	return cols, rows, nil
}
