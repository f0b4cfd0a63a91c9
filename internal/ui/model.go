package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"livetask/internal/service"
	"livetask/internal/taskstore"
)

type mode int

const (
	modeList mode = iota
	modeSearch
	modeAdd
	modeConfirm
)

type (
	stateMsg  taskstore.State
	noticeMsg taskstore.Notice

	// confirmMsg carries a delete prompt; the answer goes back on reply.
	confirmMsg struct {
		prompt taskstore.Prompt
		reply  chan<- bool
	}

	activatedMsg struct{ err error }

	mutationMsg struct {
		op  string
		err error
	}
)

type model struct {
	ctx   context.Context
	store *taskstore.Store

	state  taskstore.State
	cursor int
	mode   mode
	search textinput.Model
	add    textinput.Model
	prompt *confirmMsg
	status string
	isErr  bool
}

func newModel(ctx context.Context, store *taskstore.Store) *model {
	search := textinput.New()
	search.Prompt = "/ "
	search.Placeholder = "search titles"

	add := textinput.New()
	add.Prompt = "new task: "
	add.Placeholder = "title"
	add.CharLimit = 200

	return &model{
		ctx:    ctx,
		store:  store,
		state:  taskstore.State{Loading: true},
		search: search,
		add:    add,
	}
}

func (m *model) Init() tea.Cmd {
	return m.activate
}

func (m *model) activate() tea.Msg {
	return activatedMsg{err: m.store.Activate(m.ctx)}
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case stateMsg:
		m.state = taskstore.State(msg)
		m.clampCursor()
		return m, nil

	case noticeMsg:
		m.setStatus(taskstore.Notice(msg).String(), true)
		return m, nil

	case activatedMsg:
		if msg.err != nil && !errors.Is(msg.err, taskstore.ErrAlreadyActive) {
			m.state = m.store.State()
		}
		return m, nil

	case confirmMsg:
		if m.prompt != nil {
			// One prompt at a time; overlapping deletes are declined.
			msg.reply <- false
			return m, nil
		}
		m.prompt = &msg
		m.mode = modeConfirm
		return m, nil

	case mutationMsg:
		switch {
		case msg.err == nil:
			m.setStatus(msg.op, false)
		case errors.Is(msg.err, taskstore.ErrCancelled):
			m.setStatus("cancelled", false)
		}
		// Other failures arrive as notices.
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		m.answer(false)
		return m, tea.Quit
	}

	switch m.mode {
	case modeConfirm:
		switch msg.String() {
		case "y", "Y":
			m.answer(true)
		case "n", "N", "esc":
			m.answer(false)
		}
		return m, nil

	case modeSearch:
		switch msg.String() {
		case "esc":
			m.search.SetValue("")
			m.search.Blur()
			m.mode = modeList
		case "enter":
			m.search.Blur()
			m.mode = modeList
		default:
			var cmd tea.Cmd
			m.search, cmd = m.search.Update(msg)
			m.cursor = 0
			return m, cmd
		}
		m.clampCursor()
		return m, nil

	case modeAdd:
		switch msg.String() {
		case "esc":
			m.add.SetValue("")
			m.add.Blur()
			m.mode = modeList
			return m, nil
		case "enter":
			title := m.add.Value()
			m.add.SetValue("")
			m.add.Blur()
			m.mode = modeList
			return m, m.create(title)
		}
		var cmd tea.Cmd
		m.add, cmd = m.add.Update(msg)
		return m, cmd
	}

	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "j", "down":
		m.cursor++
		m.clampCursor()
	case "k", "up":
		m.cursor--
		m.clampCursor()
	case "/":
		m.mode = modeSearch
		return m, m.search.Focus()
	case "a":
		m.mode = modeAdd
		return m, m.add.Focus()
	case "esc":
		m.search.SetValue("")
		m.clampCursor()
	case "r":
		if m.state.Err != nil {
			return m, m.reload
		}
	case " ":
		if task, ok := m.selected(); ok {
			return m, m.toggle(task.ID)
		}
	case "d":
		if task, ok := m.selected(); ok {
			return m, m.remove(task.ID)
		}
	}
	return m, nil
}

func (m *model) create(title string) tea.Cmd {
	return func() tea.Msg {
		err := m.store.Create(m.ctx, title, "", service.DefaultPriority)
		return mutationMsg{op: "task added", err: err}
	}
}

func (m *model) toggle(id string) tea.Cmd {
	return func() tea.Msg {
		return mutationMsg{op: "task updated", err: m.store.ToggleCompletion(m.ctx, id)}
	}
}

func (m *model) remove(id string) tea.Cmd {
	return func() tea.Msg {
		return mutationMsg{op: "task deleted", err: m.store.Delete(m.ctx, id)}
	}
}

func (m *model) reload() tea.Msg {
	m.store.Deactivate()
	return m.activate()
}

// answer resolves the pending prompt, if any.
func (m *model) answer(ok bool) {
	if m.prompt == nil {
		return
	}
	m.prompt.reply <- ok
	m.prompt = nil
	m.mode = modeList
}

func (m *model) visible() []service.Task {
	return taskstore.Filter(m.state.Tasks, m.search.Value())
}

func (m *model) selected() (service.Task, bool) {
	tasks := m.visible()
	if m.cursor < 0 || m.cursor >= len(tasks) {
		return service.Task{}, false
	}
	return tasks[m.cursor], true
}

func (m *model) clampCursor() {
	n := len(m.visible())
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m *model) setStatus(s string, isErr bool) {
	m.status = s
	m.isErr = isErr
}

func (m *model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("livetask"))
	if !m.state.Loading && m.state.Err == nil {
		fmt.Fprintf(&b, "  %d tasks", len(m.state.Tasks))
	}
	b.WriteString("\n\n")

	switch {
	case m.state.Loading:
		b.WriteString("Loading tasks...\n")
	case m.state.Err != nil:
		b.WriteString(errorStyle.Render("Could not load tasks") + "\n")
		b.WriteString("  " + m.state.Err.Error() + "\n\n")
		b.WriteString(helpStyle.Render("r retry • q quit") + "\n")
		return b.String()
	default:
		m.writeList(&b)
	}

	b.WriteString("\n")
	switch m.mode {
	case modeSearch:
		b.WriteString(m.search.View() + "\n")
	case modeAdd:
		b.WriteString(m.add.View() + "\n")
	case modeConfirm:
		b.WriteString(promptStyle.Render(m.prompt.prompt.Title+"\n"+m.prompt.prompt.Message+"  (y/n)") + "\n")
	default:
		if q := m.search.Value(); q != "" {
			b.WriteString(helpStyle.Render("search: "+q+"  (esc to clear)") + "\n")
		}
	}

	if m.status != "" {
		if m.isErr {
			b.WriteString(errorStyle.Render(m.status) + "\n")
		} else {
			b.WriteString(statusStyle.Render(m.status) + "\n")
		}
	}
	b.WriteString(helpStyle.Render("j/k move • space toggle • d delete • a add • / search • q quit") + "\n")
	return b.String()
}

func (m *model) writeList(b *strings.Builder) {
	tasks := m.visible()
	if len(tasks) == 0 {
		if q := m.search.Value(); q != "" {
			fmt.Fprintf(b, "No tasks match %q.\n", q)
		} else {
			b.WriteString("No tasks yet. Press a to add one.\n")
		}
		return
	}
	for i, task := range tasks {
		marker := "  "
		if i == m.cursor {
			marker = cursorStyle.Render("> ")
		}
		check, title := "[ ]", task.Title
		if task.Completed {
			check, title = "[x]", doneStyle.Render(title)
		}
		fmt.Fprintf(b, "%s%s %s  %s\n", marker, check, title, priorityBadge(task.Priority))
		if task.Description != "" {
			b.WriteString("      " + descStyle.Render(task.Description) + "\n")
		}
	}
}
