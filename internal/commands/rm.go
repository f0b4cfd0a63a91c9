package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"

	"livetask/internal/config"
	"livetask/internal/exitcode"
	"livetask/internal/service"
	"livetask/internal/taskstore"
)

func init() {
	Register(&RmCmd{})
}

// RmCmd implements the rm command.
type RmCmd struct {
	yes bool
}

// SetYes skips the confirmation prompt (for testing).
func (c *RmCmd) SetYes(yes bool) {
	c.yes = yes
}

func (c *RmCmd) Name() string       { return "rm" }
func (c *RmCmd) Aliases() []string  { return []string{"delete"} }
func (c *RmCmd) Synopsis() string   { return "Delete a task" }
func (c *RmCmd) Usage() string      { return "livetask rm [--yes] <ref>" }
func (c *RmCmd) NeedsBackend() bool { return true }

func (c *RmCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.BoolVar(&c.yes, "yes", false, "")
	fs.BoolVar(&c.yes, "y", false, "")
}

func (c *RmCmd) Run(ctx context.Context, cfg *config.Config, backend service.Backend, args []string, in io.Reader, out, errOut io.Writer) int {
	ref, err := ParseTaskRef(args)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	var confirmer taskstore.Confirmer = newPromptConfirmer(in, errOut)
	if c.yes {
		confirmer = taskstore.ConfirmFunc(func(context.Context, taskstore.Prompt) (bool, error) {
			return true, nil
		})
	}

	store, code := openStore(ctx, cfg, backend, errOut, taskstore.WithConfirmer(confirmer))
	if store == nil {
		return code
	}
	defer store.Deactivate()

	task, err := ResolveTaskRef(store.Tasks(), ref)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	if err := store.Delete(ctx, task.ID); err != nil {
		var writeErr *taskstore.WriteError
		if !errors.As(err, &writeErr) {
			// Write failures were already reported by the store.
			fmt.Fprintf(errOut, "error: %v\n", err)
		}
		return exitFor(err)
	}

	if !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}
