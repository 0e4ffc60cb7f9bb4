// Package main provides the catalog command-line tool: it loads a dataset
// catalog, exports the static bundle and queries it with filters and search.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		os.Exit(1)
	}
}
