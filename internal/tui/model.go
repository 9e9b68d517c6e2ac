// Package tui renders a board.Board as a bubbletea program.
package tui

import (
	"context"
	"fmt"
	"strings"
	"taskboard/internal/board"
	"taskboard/internal/models/task"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

const requestTimeout = 15 * time.Second

type mode int

const (
	modeBrowse mode = iota
	modeAdd
	modeConfirm
)

type loadedMsg struct{ err error }

type actionDoneMsg struct {
	create bool
	err    error
}

type Model struct {
	ctx   context.Context
	board *board.Board

	mode     mode
	cursor   int
	loading  bool
	input    textinput.Model
	spinner  spinner.Model
	help     help.Model
	action   *board.Action
	fromAdd  bool // the pending action came from the add input
	quitting bool
}

func New(ctx context.Context, b *board.Board) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "What needs to be done?"
	ti.CharLimit = 200

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = pendingStyle

	return Model{
		ctx:     ctx,
		board:   b,
		loading: true,
		input:   ti,
		spinner: sp,
		help:    help.New(),
	}
}

// Run starts the program on the terminal and blocks until the user quits.
func Run(ctx context.Context, b *board.Board) error {
	p := tea.NewProgram(New(ctx, b), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.load(), m.spinner.Tick)
}

func (m Model) load() tea.Cmd {
	ctx, b := m.ctx, m.board
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, requestTimeout)
		defer cancel()
		return loadedMsg{err: b.Load(ctx)}
	}
}

func (m Model) run(a *board.Action, create bool) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, requestTimeout)
		defer cancel()
		return actionDoneMsg{create: create, err: a.Run(ctx)}
	}
}

// rows lists pending tasks first, then completed ones, matching the rendered order.
func (m Model) rows() []*task.Task {
	return append(m.board.Pending(), m.board.Completed()...)
}

func (m Model) selected() *task.Task {
	rows := m.rows()
	if m.cursor < 0 || m.cursor >= len(rows) {
		return nil
	}
	return rows[m.cursor]
}

func (m *Model) clampCursor() {
	n := len(m.rows())
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg:
		m.loading = false
		m.clampCursor()
		return m, nil

	case actionDoneMsg:
		if msg.create && msg.err == nil {
			m.input.Reset()
			m.input.Blur()
			m.mode = modeBrowse
		}
		m.clampCursor()
		return m, nil

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		switch m.mode {
		case modeAdd:
			return m.updateAdd(msg)
		case modeConfirm:
			return m.updateConfirm(msg)
		default:
			return m.updateBrowse(msg)
		}
	}

	return m, nil
}

func (m Model) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, keys.Add):
		m.mode = modeAdd
		return m, m.input.Focus()

	case key.Matches(msg, keys.Complete):
		if t := m.selected(); t != nil {
			if a := m.board.CompleteAction(t.ID); a != nil {
				m.confirm(a, false)
			}
		}
		return m, nil

	case key.Matches(msg, keys.Delete):
		if t := m.selected(); t != nil {
			m.confirm(m.board.DeleteAction(t.ID), false)
		}
		return m, nil

	case key.Matches(msg, keys.Reload):
		m.loading = true
		return m, tea.Batch(m.load(), m.spinner.Tick)

	case key.Matches(msg, keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil

	case key.Matches(msg, keys.Down):
		if m.cursor < len(m.rows())-1 {
			m.cursor++
		}
		return m, nil
	}

	return m, nil
}

func (m Model) updateAdd(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.Type == tea.KeyCtrlC:
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, keys.Submit):
		if a := m.board.CreateAction(m.input.Value()); a != nil {
			m.confirm(a, true)
		}
		return m, nil

	case key.Matches(msg, keys.Back):
		m.mode = modeBrowse
		m.input.Reset()
		m.input.Blur()
		m.board.ClearFieldError()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.Type == tea.KeyCtrlC:
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, keys.Confirm):
		a, create := m.action, m.fromAdd
		m.action = nil
		m.fromAdd = false
		m.mode = modeBrowse
		if create {
			// stay in the input until the request comes back
			m.mode = modeAdd
		}
		return m, m.run(a, create)

	case key.Matches(msg, keys.Cancel):
		m.mode = modeBrowse
		if m.fromAdd {
			m.mode = modeAdd
		}
		m.action = nil
		m.fromAdd = false
		return m, nil
	}

	return m, nil
}

func (m *Model) confirm(a *board.Action, fromAdd bool) {
	m.action = a
	m.fromAdd = fromAdd
	m.mode = modeConfirm
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	fmt.Fprintf(&b, "%s  %s\n\n",
		titleStyle.Render("Tasks"),
		pendingStyle.Render(fmt.Sprintf("%d pending", m.board.PendingCount())))

	if banner := m.board.Banner(); banner != "" {
		b.WriteString(bannerStyle.Render(errorStyle.Render(banner)))
		b.WriteString("\n\n")
	}

	switch {
	case m.loading || m.board.Loading():
		fmt.Fprintf(&b, "%s Loading...\n", m.spinner.View())
	case len(m.board.Tasks()) == 0:
		b.WriteString(mutedStyle.Render("No tasks yet. Add the first one."))
		b.WriteString("\n")
	default:
		m.renderSections(&b)
	}

	b.WriteString("\n")

	switch m.mode {
	case modeAdd:
		b.WriteString(m.input.View())
		b.WriteString("\n")
		if fe := m.board.FieldError(); fe != "" {
			b.WriteString(errorStyle.Render(fe))
			b.WriteString("\n")
		}
		b.WriteString(m.help.ShortHelpView(keys.addHelp()))
	case modeConfirm:
		fmt.Fprintf(&b, "%s %s\n", promptStyle.Render(m.action.Prompt), mutedStyle.Render("(y/n)"))
		b.WriteString(m.help.ShortHelpView(keys.confirmHelp()))
	default:
		b.WriteString(m.help.ShortHelpView(keys.browseHelp()))
	}

	return b.String()
}

func (m Model) renderSections(b *strings.Builder) {
	pending := m.board.Pending()
	completed := m.board.Completed()

	b.WriteString(sectionStyle.Render("Pending"))
	b.WriteString("\n")
	if len(pending) == 0 {
		b.WriteString(mutedStyle.Render("  Nothing pending."))
		b.WriteString("\n")
	}
	for i, t := range pending {
		m.renderRow(b, t, i == m.cursor)
	}

	b.WriteString("\n")
	b.WriteString(sectionStyle.Render("Completed"))
	b.WriteString("\n")
	if len(completed) == 0 {
		b.WriteString(mutedStyle.Render("  Nothing completed yet."))
		b.WriteString("\n")
	}
	for i, t := range completed {
		m.renderRow(b, t, len(pending)+i == m.cursor)
	}
}

func (m Model) renderRow(b *strings.Builder, t *task.Task, selected bool) {
	prefix := "  "
	if selected {
		prefix = selectedStyle.Render(">") + " "
	}

	box := mutedStyle.Render(boxUnchecked)
	title := t.Title
	if t.Completed {
		box = successStyle.Render(boxChecked)
		title = doneStyle.Render(t.Title)
	}

	created := mutedStyle.Render(t.CreatedAt.Local().Format("2006-01-02 15:04"))
	fmt.Fprintf(b, "%s%s %s  %s\n", prefix, box, title, created)
}
