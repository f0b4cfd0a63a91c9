package commands

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"livetask/internal/config"
	"livetask/internal/exitcode"
	"livetask/internal/logging"
	"livetask/internal/service"
	"livetask/internal/taskstore"
)

// newStore builds a task store that reports notices on errOut. Store logs
// only show with --debug; notices already cover what the user must see.
func newStore(cfg *config.Config, backend service.Backend, errOut io.Writer, opts ...taskstore.Option) *taskstore.Store {
	logger := logging.Discard()
	if cfg.Debug {
		logger = logging.New(errOut, logging.Options{Debug: true})
	}
	base := []taskstore.Option{
		taskstore.WithLogger(logger),
		taskstore.WithNotifier(taskstore.NotifierFunc(func(n taskstore.Notice) {
			fmt.Fprintf(errOut, "error: %s\n", n)
		})),
	}
	return taskstore.New(backend, append(base, opts...)...)
}

// openStore activates a store and waits for the first snapshot.
// On success the caller must Deactivate the store.
func openStore(ctx context.Context, cfg *config.Config, backend service.Backend, errOut io.Writer, opts ...taskstore.Option) (*taskstore.Store, int) {
	store := newStore(cfg, backend, errOut, opts...)
	if err := store.Activate(ctx); err != nil {
		// Already reported by the store's notifier.
		return nil, exitFor(err)
	}
	if err := store.WaitReady(ctx); err != nil {
		store.Deactivate()
		if ctx.Err() != nil {
			fmt.Fprintln(errOut, "error: cancelled")
			return nil, exitcode.BackendError
		}
		return nil, exitFor(err)
	}
	return store, exitcode.Success
}

// exitFor maps a store or backend error to an exit code.
// The error itself has already been reported.
func exitFor(err error) int {
	switch {
	case err == nil:
		return exitcode.Success
	case taskstore.IsValidation(err),
		errors.Is(err, taskstore.ErrTaskNotFound),
		errors.Is(err, taskstore.ErrCancelled),
		errors.Is(err, service.ErrNotFound):
		return exitcode.UserError
	case errors.Is(err, service.ErrUnauthenticated):
		return exitcode.AuthError
	}
	return exitcode.BackendError
}

// promptConfirmer asks on errOut and reads the answer from in.
type promptConfirmer struct {
	in  *bufio.Reader
	out io.Writer
}

func newPromptConfirmer(in io.Reader, out io.Writer) *promptConfirmer {
	return &promptConfirmer{in: bufio.NewReader(in), out: out}
}

// Confirm implements taskstore.Confirmer. Only "y" or "yes" confirms;
// EOF counts as no.
func (p *promptConfirmer) Confirm(ctx context.Context, prompt taskstore.Prompt) (bool, error) {
	fmt.Fprintf(p.out, "%s [y/N] ", prompt.Message)
	line, err := p.in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, fmt.Errorf("reading answer: %w", err)
	}
	if errors.Is(err, io.EOF) && line == "" {
		fmt.Fprintln(p.out)
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}
