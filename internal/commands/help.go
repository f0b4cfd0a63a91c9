package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"livetask/internal/config"
	"livetask/internal/exitcode"
	"livetask/internal/service"
)

func init() {
	Register(&HelpCmd{})
}

// HelpCmd implements the help command.
type HelpCmd struct{}

func (c *HelpCmd) Name() string       { return "help" }
func (c *HelpCmd) Aliases() []string  { return nil }
func (c *HelpCmd) Synopsis() string   { return "Print usage" }
func (c *HelpCmd) Usage() string      { return "livetask help" }
func (c *HelpCmd) NeedsBackend() bool { return false }

func (c *HelpCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *HelpCmd) Run(ctx context.Context, cfg *config.Config, backend service.Backend, args []string, in io.Reader, out, errOut io.Writer) int {
	fmt.Fprint(out, helpText)
	return exitcode.Success
}

const helpText = `Usage:
  livetask                                   List all tasks
  livetask list [common flags] [--search <text>]
  livetask add [common flags] [--desc <text>] [--priority high|medium|low] <title...>
  livetask edit [common flags] [--title <t>] [--desc <d>] [--priority <p>] [--done|--undone] <ref>
  livetask done [common flags] <ref>
  livetask rm [common flags] [--yes] <ref>
  livetask watch [common flags] [--search <text>]
  livetask tui [common flags]
  livetask login [common flags]
  livetask logout [common flags]
  livetask help
  livetask version

A <ref> is the number printed by list, or a task ID (or a unique prefix of
at least 4 characters).

Common flags:
  --config <dir>      Override config directory
  --backend <name>    Task backend: firestore or mongo
  --quiet             Suppress informational output
  --debug             Print debug logs to stderr
`
