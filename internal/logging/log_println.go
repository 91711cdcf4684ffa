//go:build logprintln

package logging

import (
	"fmt"
	"os"
	"time"
)

func init() {
	Output = os.Stderr
	log = printlnLogger{}
}

type printlnLogger struct{}

func (p printlnLogger) Info(msg string, args ...any)  { p.log("INFO", msg, args...) }
func (p printlnLogger) Warn(msg string, args ...any)  { p.log("WARN", msg, args...) }
func (p printlnLogger) Error(msg string, args ...any) { p.log("ERROR", msg, args...) }

func (printlnLogger) log(lvl, msg string, args ...any) {
	fmt.Fprintf(Output, "%d [%s] %s", time.Now().Unix(), lvl, msg)
	for i := 0; i+1 < len(args); i += 2 {
		fmt.Fprintf(Output, " %v=%v", args[i], args[i+1])
	}
	fmt.Fprint(Output, "\n")
}
