// Package main is the entry point for the morganai CLI.
//
// Usage:
//
//	morganai [flags] <command> [subcommand] [args]
//
// Commands:
//
//	serve     - Run the assistant API server
//	login     - Authenticate against a running server
//	chat      - Ask the assistant a question
//	talk      - Hold a realtime voice conversation
//	ingest    - Index documents into the knowledge base
//	config    - Manage named server contexts
//	version   - Show version information
package main

import (
	"fmt"
	"os"

	"github.com/morganstate-cs/morganai/cmd/morganai/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
