package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"livetask/internal/config"
	"livetask/internal/exitcode"
	"livetask/internal/service"
)

func init() {
	Register(&AddCmd{})
}

// AddCmd implements the add command.
type AddCmd struct {
	desc     string
	priority string
}

// SetOptions sets the description and priority (for testing).
func (c *AddCmd) SetOptions(desc, priority string) {
	c.desc = desc
	c.priority = priority
}

func (c *AddCmd) Name() string       { return "add" }
func (c *AddCmd) Aliases() []string  { return []string{"create"} }
func (c *AddCmd) Synopsis() string   { return "Create a task" }
func (c *AddCmd) Usage() string      { return "livetask add [--desc <text>] [--priority <p>] <title...>" }
func (c *AddCmd) NeedsBackend() bool { return true }

func (c *AddCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.desc, "desc", "", "")
	fs.StringVar(&c.desc, "d", "", "")
	fs.StringVar(&c.priority, "priority", "", "")
	fs.StringVar(&c.priority, "p", "", "")
}

// Run writes the task without subscribing; the new task shows up in the
// next snapshot any live view receives.
func (c *AddCmd) Run(ctx context.Context, cfg *config.Config, backend service.Backend, args []string, in io.Reader, out, errOut io.Writer) int {
	priority, err := service.ParsePriority(c.priority)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	store := newStore(cfg, backend, errOut)
	if err := store.Create(ctx, strings.Join(args, " "), c.desc, priority); err != nil {
		return exitFor(err)
	}

	if !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}
