package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"livetask/internal/config"
	"livetask/internal/exitcode"
	"livetask/internal/logging"
	"livetask/internal/service"
	"livetask/internal/ui"
)

// TUILogFile receives debug logs while the terminal view owns the screen.
const TUILogFile = "tui.log"

func init() {
	Register(&TUICmd{})
}

// TUICmd implements the tui command.
type TUICmd struct{}

func (c *TUICmd) Name() string       { return "tui" }
func (c *TUICmd) Aliases() []string  { return []string{"ui"} }
func (c *TUICmd) Synopsis() string   { return "Open the interactive task view" }
func (c *TUICmd) Usage() string      { return "livetask tui [common flags]" }
func (c *TUICmd) NeedsBackend() bool { return true }

func (c *TUICmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *TUICmd) Run(ctx context.Context, cfg *config.Config, backend service.Backend, args []string, in io.Reader, out, errOut io.Writer) int {
	if len(args) > 0 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[0])
		return exitcode.UserError
	}

	logger := logging.Discard()
	if cfg.Debug {
		f, err := openTUILog(cfg)
		if err != nil {
			fmt.Fprintf(errOut, "error: %v\n", err)
			return exitcode.UserError
		}
		defer f.Close()
		logger = logging.New(f, logging.Options{Debug: true, ReportTimestamp: true})
	}

	if err := ui.Run(ctx, backend, in, out, logger); err != nil {
		if errors.Is(err, ui.ErrNotTerminal) {
			fmt.Fprintf(errOut, "error: %v (use list or watch instead)\n", err)
			return exitcode.UserError
		}
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.BackendError
	}
	return exitcode.Success
}

func openTUILog(cfg *config.Config) (*os.File, error) {
	if err := cfg.EnsureDir(); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}
	path := filepath.Join(cfg.Dir, TUILogFile)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	return f, nil
}

