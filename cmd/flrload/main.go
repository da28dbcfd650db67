// Command flrload loads fixed-length census extracts into PostgreSQL.
package main

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/vvka-141/flrload/internal/cli"
	"github.com/vvka-141/flrload/pkg/flrload"
)

// crashEnv makes the binary panic on start, so scripts wrapping flrload can
// check how they handle exit code 3.
const crashEnv = "FLRLOAD_CRASH"

func main() {
	os.Exit(run())
}

func run() (code int) {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "flrload crashed: %v\n%s\n", r, debug.Stack())
			code = flrload.ExitPanic
		}
	}()

	if os.Getenv(crashEnv) == "1" {
		panic(crashEnv + " is set")
	}
	return flrload.ExitCodeForError(cli.Execute())
}
