// Package ui provides the interactive terminal view of the task list.
package ui

import (
	"context"
	"errors"
	"io"
	"os"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/mattn/go-isatty"

	"livetask/internal/service"
	"livetask/internal/taskstore"
)

// ErrNotTerminal is returned when the view is started without a terminal.
var ErrNotTerminal = errors.New("tui requires a terminal")

// Run shows the live task view until the user quits or ctx is cancelled.
// The store is activated once the program starts and deactivated before
// Run returns.
func Run(ctx context.Context, backend service.Backend, in io.Reader, out io.Writer, logger *log.Logger) error {
	if !IsTTY(out) {
		return ErrNotTerminal
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	b := &bridge{}
	store := taskstore.New(backend,
		taskstore.WithLogger(logger),
		taskstore.WithNotifier(taskstore.NotifierFunc(func(n taskstore.Notice) {
			b.send(noticeMsg(n))
		})),
		taskstore.WithConfirmer(b),
		taskstore.WithChangeHandler(func(st taskstore.State) {
			b.send(stateMsg(st))
		}),
	)

	program := tea.NewProgram(newModel(ctx, store),
		tea.WithContext(ctx),
		tea.WithInput(in),
		tea.WithOutput(out),
		tea.WithAltScreen(),
	)
	b.attach(program)

	_, err := program.Run()
	// Unblock pending confirmations and mutations before tearing down.
	cancel()
	store.Deactivate()
	if errors.Is(err, tea.ErrProgramKilled) {
		return nil
	}
	return err
}

// IsTTY reports whether w is a terminal.
func IsTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// bridge forwards store callbacks into the running program. Store
// callbacks arrive on backend goroutines, so they are delivered as
// messages rather than touching the model.
type bridge struct {
	mu      sync.Mutex
	program *tea.Program
}

func (b *bridge) attach(p *tea.Program) {
	b.mu.Lock()
	b.program = p
	b.mu.Unlock()
}

func (b *bridge) send(msg tea.Msg) {
	b.mu.Lock()
	p := b.program
	b.mu.Unlock()
	if p != nil {
		p.Send(msg)
	}
}

// Confirm implements taskstore.Confirmer by asking inside the view and
// waiting for the answer.
func (b *bridge) Confirm(ctx context.Context, p taskstore.Prompt) (bool, error) {
	reply := make(chan bool, 1)
	b.send(confirmMsg{prompt: p, reply: reply})
	select {
	case ok := <-reply:
		return ok, nil
	case <-ctx.Done():
		return false, ctx.Err()
	}
}
