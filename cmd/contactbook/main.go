// Command contactbook serves the contact book web UI and runs the scripted
// demo scenarios.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
)

var exitFunc = os.Exit

func main() {
	exitFunc(cli(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

func cli(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	root := newRootCmd(stdout, stderr)
	root.SetArgs(args)
	if err := root.ExecuteContext(ctx); err != nil {
		if _, writeErr := fmt.Fprintf(stderr, "contactbook: %v\n", err); writeErr != nil {
			return 2
		}
		return 1
	}
	return 0
}
