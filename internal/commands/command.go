// Package commands provides the command interface and implementations.
package commands

import (
	"context"
	"flag"
	"io"

	"livetask/internal/config"
	"livetask/internal/service"
)

// Command defines the interface for CLI commands.
type Command interface {
	// Name returns the primary command name.
	Name() string

	// Aliases returns alternative names for the command.
	Aliases() []string

	// Synopsis returns a short description for help output.
	Synopsis() string

	// Usage returns the usage string for help output.
	Usage() string

	// NeedsBackend returns true if the command talks to the task backend.
	// Commands like help, version, login, logout return false.
	NeedsBackend() bool

	// RegisterFlags registers command-specific flags.
	RegisterFlags(fs *flag.FlagSet)

	// Run executes the command.
	// cfg is always provided.
	// backend is nil if NeedsBackend() returns false.
	// args contains positional arguments after flag parsing.
	// in is only read by commands that prompt.
	// Returns exit code.
	Run(ctx context.Context, cfg *config.Config, backend service.Backend, args []string, in io.Reader, out, errOut io.Writer) int
}
