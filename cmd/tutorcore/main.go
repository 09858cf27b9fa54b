// Package main is the entry point for the tutorcore CLI.
//
// Usage:
//
//	tutorcore [flags] <command> [args]
//
// Commands:
//
//	run       - Run an interactive tutoring session in the terminal
//	math      - Convert and render a spoken math phrase
//	sessions  - Inspect archived tutoring sessions
//	config    - Show the resolved configuration
//	version   - Show version information
package main

import (
	"fmt"
	"os"

	"github.com/tutorstack/tutorcore/cmd/tutorcore/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
