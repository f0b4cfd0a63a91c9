package commands

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"io"
	"time"

	"livetask/internal/config"
	"livetask/internal/exitcode"
	"livetask/internal/output"
	"livetask/internal/service"
	"livetask/internal/taskstore"
)

func init() {
	Register(&WatchCmd{})
}

// WatchCmd implements the watch command.
type WatchCmd struct {
	search string
	now    func() time.Time
}

// SetSearch sets the search query (for testing).
func (c *WatchCmd) SetSearch(search string) {
	c.search = search
}

// SetClock sets the clock used for snapshot headers (for testing).
func (c *WatchCmd) SetClock(now func() time.Time) {
	c.now = now
}

func (c *WatchCmd) Name() string       { return "watch" }
func (c *WatchCmd) Aliases() []string  { return nil }
func (c *WatchCmd) Synopsis() string   { return "Print the task list every time it changes" }
func (c *WatchCmd) Usage() string      { return "livetask watch [--search <text>]" }
func (c *WatchCmd) NeedsBackend() bool { return true }

func (c *WatchCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.search, "search", "", "")
	fs.StringVar(&c.search, "s", "", "")
}

// Run prints every snapshot until ctx is cancelled. A broken subscription
// ends the command with a backend error.
func (c *WatchCmd) Run(ctx context.Context, cfg *config.Config, backend service.Backend, args []string, in io.Reader, out, errOut io.Writer) int {
	if len(args) > 0 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[0])
		return exitcode.UserError
	}
	now := c.now
	if now == nil {
		now = time.Now
	}

	// Only the latest state matters; a slow terminal skips intermediate ones.
	states := make(chan taskstore.State, 1)
	onChange := func(st taskstore.State) {
		for {
			select {
			case states <- st:
				return
			default:
			}
			select {
			case <-states:
			default:
			}
		}
	}

	store := newStore(cfg, backend, errOut, taskstore.WithChangeHandler(onChange))
	if err := store.Activate(ctx); err != nil {
		return exitFor(err)
	}
	defer store.Deactivate()

	for {
		select {
		case <-ctx.Done():
			return exitcode.Success
		case st := <-states:
			if st.Loading {
				continue
			}
			if st.Err != nil {
				return exitFor(st.Err)
			}
			var buf bytes.Buffer
			shown := printTasks(&buf, st.Tasks, c.search)
			output.FormatSnapshotHeader(out, now(), shown, len(st.Tasks))
			out.Write(buf.Bytes())
		}
	}
}
