// Package main is the entry point for the cyre CLI: a single-process
// runner that loads a declarative channel list, serves Prometheus metrics,
// and prints colorized status to the console.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
