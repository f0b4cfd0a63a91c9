package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"livetask/internal/config"
	"livetask/internal/exitcode"
	"livetask/internal/output"
	"livetask/internal/service"
	"livetask/internal/taskstore"
)

func init() {
	Register(&ListCmd{})
}

// ListCmd implements the list command.
type ListCmd struct {
	search string
}

// SetSearch sets the search query (for testing).
func (c *ListCmd) SetSearch(search string) {
	c.search = search
}

func (c *ListCmd) Name() string       { return "list" }
func (c *ListCmd) Aliases() []string  { return []string{"ls"} }
func (c *ListCmd) Synopsis() string   { return "List tasks, newest first" }
func (c *ListCmd) Usage() string      { return "livetask list [--search <text>]" }
func (c *ListCmd) NeedsBackend() bool { return true }

func (c *ListCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.search, "search", "", "")
	fs.StringVar(&c.search, "s", "", "")
}

func (c *ListCmd) Run(ctx context.Context, cfg *config.Config, backend service.Backend, args []string, in io.Reader, out, errOut io.Writer) int {
	if len(args) > 0 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[0])
		return exitcode.UserError
	}

	store, code := openStore(ctx, cfg, backend, errOut)
	if store == nil {
		return code
	}
	defer store.Deactivate()

	printTasks(out, store.Tasks(), c.search)
	return exitcode.Success
}

// printTasks prints the tasks that match search. Numbers are positions in
// the full snapshot so they stay valid as references.
func printTasks(w io.Writer, tasks []service.Task, search string) int {
	shown := 0
	for i, task := range tasks {
		if !taskstore.Matches(task, search) {
			continue
		}
		output.FormatTask(w, i+1, task)
		shown++
	}
	if shown == 0 {
		output.FormatEmpty(w, search)
	}
	return shown
}
