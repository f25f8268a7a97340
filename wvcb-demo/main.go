package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/jessevdk/go-flags"
)

// The native window must be created and run on the main OS thread.
func init() { runtime.LockOSThread() }

var (
	runCmd   RunCommand
	spawnCmd SpawnCommand
)

func main() {
	parser := flags.NewParser(nil, flags.HelpFlag|flags.PassDoubleDash)
	parser.AddCommand("run", "Open the demo window",
		"Opens a webview window whose dispatch and bind callbacks run on a single script loop.", &runCmd)
	parser.AddCommand("spawn", "Remote-control a running demo",
		"Connects to the demo's socket and unbinds the bound function, then terminates the window.", &spawnCmd)
	if _, err := parser.Parse(); err != nil {
		if fe, ok := err.(*flags.Error); ok && fe.Type == flags.ErrHelp {
			fmt.Fprintln(os.Stdout, err)
			return
		}
		die(err)
	}
}

func die(err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "oops: %v\n", err)
		os.Exit(1)
	}
}
