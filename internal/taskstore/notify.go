package taskstore

import (
	"context"
	"fmt"
)

// NoticeKind classifies a user-visible notice.
type NoticeKind int

const (
	// NoticeValidation reports rejected input. No write was attempted.
	NoticeValidation NoticeKind = iota
	// NoticeWriteFailed reports a write rejected by the backend.
	NoticeWriteFailed
	// NoticeNotFound reports a stale task reference.
	NoticeNotFound
	// NoticeConnection reports a live subscription failure.
	NoticeConnection
)

func (k NoticeKind) String() string {
	switch k {
	case NoticeValidation:
		return "validation"
	case NoticeWriteFailed:
		return "write failed"
	case NoticeNotFound:
		return "not found"
	case NoticeConnection:
		return "connection"
	}
	return fmt.Sprintf("NoticeKind(%d)", int(k))
}

// Notice is a non-blocking, user-visible message.
type Notice struct {
	Kind    NoticeKind
	Title   string
	Message string
	Err     error
}

func (n Notice) String() string {
	if n.Err != nil && n.Kind != NoticeValidation {
		return fmt.Sprintf("%s: %v", n.Message, n.Err)
	}
	return n.Message
}

// Notifier receives notices raised by the store.
// Notify must not block and must not call back into the store.
type Notifier interface {
	Notify(n Notice)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(Notice)

// Notify implements Notifier.
func (f NotifierFunc) Notify(n Notice) { f(n) }

// Prompt is a destructive-action confirmation request.
type Prompt struct {
	Title   string
	Message string
	Confirm string // label of the destructive choice
}

// Confirmer answers confirmation prompts.
type Confirmer interface {
	Confirm(ctx context.Context, p Prompt) (bool, error)
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(ctx context.Context, p Prompt) (bool, error)

// Confirm implements Confirmer.
func (f ConfirmFunc) Confirm(ctx context.Context, p Prompt) (bool, error) { return f(ctx, p) }

// denyAll is the default Confirmer. Without a way to ask, nothing is deleted.
type denyAll struct{}

func (denyAll) Confirm(context.Context, Prompt) (bool, error) { return false, nil }

func validationNotice(err error) Notice {
	return Notice{Kind: NoticeValidation, Title: "Required field", Message: err.Error(), Err: err}
}
