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
	Register(&EditCmd{})
}

// optString is a string flag that records whether it was set, so an
// explicit empty value can clear a field.
type optString struct {
	value string
	set   bool
}

func (o *optString) String() string { return o.value }

func (o *optString) Set(s string) error {
	o.value = s
	o.set = true
	return nil
}

// EditCmd implements the edit command.
type EditCmd struct {
	title    optString
	desc     optString
	priority optString
	done     bool
	undone   bool
}

func (c *EditCmd) Name() string      { return "edit" }
func (c *EditCmd) Aliases() []string { return nil }
func (c *EditCmd) Synopsis() string  { return "Change a task" }
func (c *EditCmd) Usage() string {
	return "livetask edit [--title <t>] [--desc <d>] [--priority <p>] [--done|--undone] <ref>"
}
func (c *EditCmd) NeedsBackend() bool { return true }

func (c *EditCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.Var(&c.title, "title", "")
	fs.Var(&c.title, "t", "")
	fs.Var(&c.desc, "desc", "")
	fs.Var(&c.desc, "d", "")
	fs.Var(&c.priority, "priority", "")
	fs.Var(&c.priority, "p", "")
	fs.BoolVar(&c.done, "done", false, "")
	fs.BoolVar(&c.undone, "undone", false, "")
}

func (c *EditCmd) Run(ctx context.Context, cfg *config.Config, backend service.Backend, args []string, in io.Reader, out, errOut io.Writer) int {
	ref, err := ParseTaskRef(args)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}
	if c.done && c.undone {
		fmt.Fprintln(errOut, "error: --done and --undone are mutually exclusive")
		return exitcode.UserError
	}
	if !c.title.set && !c.desc.set && !c.priority.set && !c.done && !c.undone {
		fmt.Fprintln(errOut, "error: nothing to change")
		return exitcode.UserError
	}

	var priority service.Priority
	if c.priority.set {
		if priority, err = service.ParsePriority(c.priority.value); err != nil {
			fmt.Fprintf(errOut, "error: %v\n", err)
			return exitcode.UserError
		}
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

	// Update replaces every mutable field, so start from the current task.
	fields := task.Fields()
	if c.title.set {
		fields.Title = c.title.value
	}
	if c.desc.set {
		fields.Description = c.desc.value
	}
	if c.priority.set {
		fields.Priority = priority
	}
	if c.done {
		fields.Completed = true
	}
	if c.undone {
		fields.Completed = false
	}

	if err := store.Update(ctx, task.ID, fields); err != nil {
		return exitFor(err)
	}

	if !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}
