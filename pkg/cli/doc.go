// Package cli carries the shared plumbing of the morganai command-line
// tool: context-based configuration under ~/.morganai, output formatting
// (YAML, JSON, raw), request file loading, and terminal styling.
//
// Contexts work like kubectl's: each names a server plus credentials, and
// one is current at a time.
//
//	cfg, err := cli.LoadConfig("")
//	ctx, err := cfg.CurrentContext()
//	cli.Output(result, cli.OutputOptions{Format: cli.FormatJSON})
package cli
