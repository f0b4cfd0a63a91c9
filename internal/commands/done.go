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
	Register(&DoneCmd{})
}

// DoneCmd implements the done command. It toggles, so running it on a
// completed task reopens it.
type DoneCmd struct{}

func (c *DoneCmd) Name() string       { return "done" }
func (c *DoneCmd) Aliases() []string  { return []string{"toggle"} }
func (c *DoneCmd) Synopsis() string   { return "Toggle task completion" }
func (c *DoneCmd) Usage() string      { return "livetask done <ref>" }
func (c *DoneCmd) NeedsBackend() bool { return true }

func (c *DoneCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *DoneCmd) Run(ctx context.Context, cfg *config.Config, backend service.Backend, args []string, in io.Reader, out, errOut io.Writer) int {
	ref, err := ParseTaskRef(args)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	store, code := openStore(ctx, cfg, backend, errOut)
	if store == nil {
		return code
	}
	defer store.Deactivate()

	task, err := ResolveTaskRef(store.Tasks(), ref)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}
	if err := store.ToggleCompletion(ctx, task.ID); err != nil {
		return exitFor(err)
	}

	if !cfg.Quiet {
		if task.Completed {
			fmt.Fprintln(out, "reopened")
		} else {
			fmt.Fprintln(out, "done")
		}
	}
	return exitcode.Success
}
