// Package console implements the interactive shutdown console: a
// stdin-reading loop that responds to "help" and "shutdown" while the
// device runtime serves requests in the background.
package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"iotscp/internal/application"
)

// Run reads commands from in until "shutdown" is typed or ctx is
// cancelled, calling stop exactly once before returning.
func Run(ctx context.Context, log application.Logger, in io.Reader, out io.Writer, stop context.CancelFunc) {
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprintln(out, "Type `help` for a list of commands")
		if !scanner.Scan() {
			stop()
			return
		}
		switch strings.TrimSpace(scanner.Text()) {
		case "help":
			fmt.Fprintln(out, "`shutdown` causes the server to shutdown")
		case "shutdown":
			log.Printf("console: shutting down; this will take some time")
			stop()
			return
		}
		if ctx.Err() != nil {
			stop()
			return
		}
	}
}
