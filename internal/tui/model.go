// Package tui implements the interactive history picker.
//
// The picker holds the whole ranked corpus in memory and requeries it
// synchronously on every keystroke, so there is no loading state to
// manage: the list under the query line is always current.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/bastiangx/histrank/pkg/rank"
	"github.com/bastiangx/histrank/pkg/session"
	"github.com/bastiangx/histrank/pkg/suggest"
)

// Action tells the caller what to do with the picked command.
type Action int

const (
	ActionNone    Action = iota // cancelled, nothing picked
	ActionExecute               // type the command into the tty and run it
	ActionEdit                  // type the command, leave it on the prompt
)

// Model is the Bubble Tea model for the history picker.
type Model struct {
	sess *session.Session
	opts rank.Options

	corpus *rank.PrioritizedHistory
	sug    *suggest.Suggester
	input  textinput.Model
	mode   suggest.Mode

	items     []suggest.Suggestion
	selection int // index into items; -1 when empty
	scroll    int

	width  int
	height int

	status string
	err    error

	action Action
	result string
}

// New builds a picker over an already loaded session. mode sets the
// initial match behavior; ctrl+e rotates it at runtime.
func New(sess *session.Session, opts rank.Options, mode suggest.Mode) Model {
	ti := textinput.New()
	ti.Placeholder = "type to filter ranked history"
	ti.Prompt = "> "
	ti.CharLimit = 256
	ti.Focus()

	m := Model{
		sess:      sess,
		opts:      opts,
		input:     ti,
		mode:      mode,
		selection: -1,
	}
	m.rebuild()
	m.requery()
	return m
}

// WithQuery seeds the filter input, as when the shell binding hands
// over whatever was already typed on the prompt.
func (m Model) WithQuery(q string) Model {
	m.input.SetValue(q)
	m.input.CursorEnd()
	m.requery()
	return m
}

// Result returns the picked command and what to do with it. The
// command is "" when the picker was cancelled.
func (m Model) Result() (string, Action) {
	return m.result, m.action
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if msg.Width > 4 {
			m.input.Width = msg.Width - 4
		}
		m.ensureVisible()
		return m, nil
	}

	return m, nil
}

// handleKey processes keyboard input. Picker bindings win over the
// text input's own (ctrl+d and ctrl+e mean delete-forward and line-end
// there); everything unclaimed falls through to the query line.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "ctrl+c":
		m.result = ""
		m.action = ActionNone
		return m, tea.Quit

	case "enter":
		if m.selection >= 0 && m.selection < len(m.items) {
			m.result = m.items[m.selection].Text
			m.action = ActionExecute
			return m, tea.Quit
		}
		return m, nil

	case "tab":
		if m.selection >= 0 && m.selection < len(m.items) {
			m.result = m.items[m.selection].Text
			m.action = ActionEdit
			return m, tea.Quit
		}
		return m, nil

	case "up":
		if m.selection > 0 {
			m.selection--
			m.ensureVisible()
		}
		return m, nil

	case "down":
		if m.selection < len(m.items)-1 {
			m.selection++
			m.ensureVisible()
		}
		return m, nil

	case "pgup":
		m.selection -= m.listHeight()
		if m.selection < 0 {
			m.selection = 0
		}
		m.ensureVisible()
		return m, nil

	case "pgdown":
		m.selection += m.listHeight()
		if m.selection > len(m.items)-1 {
			m.selection = len(m.items) - 1
		}
		m.ensureVisible()
		return m, nil

	case "ctrl+d":
		return m.removeSelected()

	case "ctrl+e":
		if m.mode == suggest.ModeSubstring {
			m.mode = suggest.ModePrefix
		} else {
			m.mode = suggest.ModeSubstring
		}
		m.requery()
		return m, nil
	}

	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if m.input.Value() != before {
		m.requery()
	}
	return m, cmd
}

// removeSelected forgets every history occurrence of the highlighted
// command, rewrites the file, and reranks what is left. The session
// stays dirty so the caller flushes the reload directive on exit.
func (m Model) removeSelected() (tea.Model, tea.Cmd) {
	if m.selection < 0 || m.selection >= len(m.items) {
		return m, nil
	}
	text := m.items[m.selection].Text

	count, err := m.sess.RemoveAll(text)
	if err != nil {
		m.err = err
		return m, nil
	}
	m.err = nil
	m.rebuild()
	m.requery()
	m.status = fmt.Sprintf("removed %d occurrences of %q", count, text)
	return m, nil
}

// rebuild reranks the store and reindexes the suggester.
func (m *Model) rebuild() {
	m.corpus = rank.Prioritize(m.sess.Store(), m.opts)
	var items []string
	if m.corpus != nil {
		items = m.corpus.Items
	}
	m.sug = suggest.NewSuggester(items)
}

// requery refreshes the visible list. Selection snaps back to the best
// match since the old index points at a different command now.
func (m *Model) requery() {
	m.items = m.sug.Query(m.input.Value(), 0, m.mode)
	m.scroll = 0
	m.status = ""
	if len(m.items) == 0 {
		m.selection = -1
	} else {
		m.selection = 0
	}
}

// ensureVisible adjusts the scroll window around the selection.
func (m *Model) ensureVisible() {
	if m.selection < 0 {
		m.scroll = 0
		return
	}
	h := m.listHeight()
	if m.selection < m.scroll {
		m.scroll = m.selection
	}
	if m.selection >= m.scroll+h {
		m.scroll = m.selection - h + 1
	}
}

// listHeight returns the number of visible list rows (terminal height
// minus header, query line, and footer).
func (m Model) listHeight() int {
	const chrome = 3
	h := m.height - chrome
	if h < 1 {
		h = 20 // sensible default before the first WindowSizeMsg
	}
	return h
}

// --- View rendering ---

var (
	headerStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")).Background(lipgloss.Color("62"))
	selectedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15"))
	normalStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	statusStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(m.viewHeader())
	b.WriteRune('\n')

	b.WriteString(m.input.View())
	b.WriteRune('\n')

	b.WriteString(m.viewList())
	b.WriteRune('\n')

	b.WriteString(m.viewFooter())

	return b.String()
}

// viewHeader renders the corpus summary bar.
func (m Model) viewHeader() string {
	ranked := 0
	if m.corpus != nil {
		ranked = len(m.corpus.Items)
	}
	return headerStyle.Render(fmt.Sprintf(" histrank | %d ranked | %s match ", ranked, m.mode))
}

// viewList renders the visible window of matches with the selection
// marker.
func (m Model) viewList() string {
	if len(m.items) == 0 {
		return dimStyle.Render("  no matches")
	}

	var b strings.Builder
	end := m.scroll + m.listHeight()
	if end > len(m.items) {
		end = len(m.items)
	}
	for i := m.scroll; i < end; i++ {
		display := m.items[i].Text
		if m.width > 4 {
			display = ansi.Truncate(display, m.width-4, "…")
		}

		if i == m.selection {
			b.WriteString(selectedStyle.Render("> " + display))
		} else {
			b.WriteString(normalStyle.Render("  " + display))
		}
		if i < end-1 {
			b.WriteRune('\n')
		}
	}
	return b.String()
}

// viewFooter renders the status line, or the key help when there is
// nothing to report.
func (m Model) viewFooter() string {
	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("error: %v", m.err))
	}
	if m.status != "" {
		return statusStyle.Render(m.status)
	}
	return dimStyle.Render("enter run | tab edit | ctrl+d forget | ctrl+e mode | esc quit")
}
