//go:build lognone && !logprintln

package logging

import "io"

func init() {
	Output = io.Discard
	log = nilLogger{}
}

type nilLogger struct{}

func (nilLogger) Info(string, ...any)  {}
func (nilLogger) Warn(string, ...any)  {}
func (nilLogger) Error(string, ...any) {}
