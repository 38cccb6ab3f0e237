// Package main implements apqctl, a command line companion to persistgraphql
// for working with persisted query files.
package main

import (
	"fmt"
	"os"
)

// Version is the apqctl version
const Version = "0.1.0"

func main() {
	if err := NewRootCommand().Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
