package main

import (
	"fmt"
	"os"
)

// main is the only place the process terminates on error: stages and
// collaborators return error values all the way up to here.
func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "fovea: %v\n", err)
		os.Exit(1)
	}
}
