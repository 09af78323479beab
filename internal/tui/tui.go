// Package tui provides an interactive terminal UI for chew using Bubble Tea.
package tui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/baiirun/chew/internal/collection"
	"github.com/baiirun/chew/internal/model"
	"github.com/baiirun/chew/internal/nutrition"
)

// InputMode represents what kind of text input is active.
type InputMode int

const (
	InputNone   InputMode = iota
	InputCreate           // Entering a new food line
	InputEdit             // Editing the selected entry's title
)

const (
	iconOpen = "○"
	iconDone = "●"

	contentPadding = 2
)

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))

	selectedRowStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("229")).
				Background(lipgloss.Color("57"))

	doneRowStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")).
			Strikethrough(true)

	countStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))

	calStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39"))

	totalStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("42"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	inputStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("57")).
			Padding(0, 1)

	messageStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))
)

type keyMap struct {
	Up        key.Binding
	Down      key.Binding
	Top       key.Binding
	Bottom    key.Binding
	New       key.Binding
	Edit      key.Binding
	Toggle    key.Binding
	Delete    key.Binding
	ToggleAll key.Binding
	Clear     key.Binding
	Reload    key.Binding
	Quit      key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.New, k.Toggle, k.Edit, k.Delete, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Top, k.Bottom},
		{k.New, k.Edit, k.Toggle, k.Delete},
		{k.ToggleAll, k.Clear, k.Reload, k.Quit},
	}
}

func defaultKeys() keyMap {
	return keyMap{
		Up:        key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("k/↑", "up")),
		Down:      key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("j/↓", "down")),
		Top:       key.NewBinding(key.WithKeys("g", "home"), key.WithHelp("g", "top")),
		Bottom:    key.NewBinding(key.WithKeys("G", "end"), key.WithHelp("G", "bottom")),
		New:       key.NewBinding(key.WithKeys("n", "a"), key.WithHelp("n", "new")),
		Edit:      key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit")),
		Toggle:    key.NewBinding(key.WithKeys(" ", "x"), key.WithHelp("space", "done")),
		Delete:    key.NewBinding(key.WithKeys("D"), key.WithHelp("D", "delete")),
		ToggleAll: key.NewBinding(key.WithKeys("A"), key.WithHelp("A", "toggle all")),
		Clear:     key.NewBinding(key.WithKeys("C"), key.WithHelp("C", "clear done")),
		Reload:    key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
		Quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// Model is the main Bubble Tea model for the TUI.
type Model struct {
	col    *collection.Collection
	name   string
	items  []model.Item
	stats  collection.Stats
	cursor int

	// Input state
	inputMode InputMode
	input     textinput.Model
	editID    string

	keys keyMap
	help help.Model

	// UI state
	width   int
	height  int
	err     error
	message string // temporary status message
}

// New creates a new TUI model over an already fetched collection.
func New(col *collection.Collection, name string) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.CharLimit = 200

	return Model{
		col:   col,
		name:  name,
		input: ti,
		keys:  defaultKeys(),
		help:  help.New(),
	}
}

// Messages
type itemsMsg struct {
	items []model.Item
	stats collection.Stats
	err   error
}

type actionMsg struct {
	message string
	err     error
}

// refresh re-reads the in-memory collection.
func (m Model) refresh() tea.Cmd {
	return func() tea.Msg {
		return itemsMsg{items: m.col.Items(), stats: m.col.Stats()}
	}
}

// reload fetches the collection again from its store.
func (m Model) reload() tea.Cmd {
	return func() tea.Msg {
		if err := m.col.Fetch(); err != nil {
			return itemsMsg{err: err}
		}
		return itemsMsg{items: m.col.Items(), stats: m.col.Stats()}
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return m.refresh()
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.inputMode != InputNone {
			return m.handleInputKey(msg)
		}
		// Clear message on any key
		m.message = ""
		m.err = nil
		return m.handleListKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.input.Width = max(10, msg.Width-contentPadding*2-8)
		return m, nil

	case itemsMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.items = msg.items
		m.stats = msg.stats
		if m.cursor >= len(m.items) {
			m.cursor = max(0, len(m.items)-1)
		}
		return m, nil

	case actionMsg:
		if msg.err != nil {
			m.err = msg.err
		} else {
			m.message = msg.message
		}
		return m, m.refresh()
	}

	return m, nil
}

func (m Model) handleInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.stopInput()
		return m, nil
	case "enter":
		return m.submitInput()
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) stopInput() {
	m.inputMode = InputNone
	m.editID = ""
	m.input.SetValue("")
	m.input.Blur()
}

func (m Model) startInput(mode InputMode, placeholder, value string) (Model, tea.Cmd) {
	m.inputMode = mode
	m.input.Placeholder = placeholder
	m.input.SetValue(value)
	m.input.CursorEnd()
	return m, m.input.Focus()
}

func (m Model) submitInput() (tea.Model, tea.Cmd) {
	text := m.input.Value()
	mode := m.inputMode
	editID := m.editID
	m.stopInput()

	switch mode {
	case InputCreate:
		if strings.TrimSpace(text) == "" {
			return m, nil
		}
		return m, func() tea.Msg {
			item, err := m.col.Create(text)
			if errors.Is(err, collection.ErrEmptyLine) {
				return actionMsg{}
			}
			if err != nil {
				return actionMsg{err: err}
			}
			return actionMsg{message: fmt.Sprintf("Added %s (%s × %s)", item.Food, item.Count, calOrDash(item.Cal))}
		}

	case InputEdit:
		return m, func() tea.Msg {
			if err := m.col.SetTitle(editID, text); err != nil {
				return actionMsg{err: err}
			}
			if strings.TrimSpace(text) == "" {
				return actionMsg{message: "Deleted entry"}
			}
			return actionMsg{message: "Updated title"}
		}
	}
	return m, nil
}

func (m Model) selected() (model.Item, bool) {
	if len(m.items) == 0 || m.cursor >= len(m.items) {
		return model.Item{}, false
	}
	return m.items[m.cursor], true
}

func (m Model) handleListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}

	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.items)-1 {
			m.cursor++
		}

	case key.Matches(msg, m.keys.Top):
		m.cursor = 0

	case key.Matches(msg, m.keys.Bottom):
		m.cursor = max(0, len(m.items)-1)

	case key.Matches(msg, m.keys.New):
		return m.startInput(InputCreate, "rice 2x 400", "")

	case key.Matches(msg, m.keys.Edit):
		item, ok := m.selected()
		if !ok {
			return m, nil
		}
		m.editID = item.ID
		return m.startInput(InputEdit, "title (empty deletes)", item.Title)

	case key.Matches(msg, m.keys.Toggle):
		return m.doToggle()

	case key.Matches(msg, m.keys.Delete):
		return m.doDelete()

	case key.Matches(msg, m.keys.ToggleAll):
		// Like a "mark all" checkbox: everything done unless it already is.
		done := m.stats.Remaining > 0
		return m, func() tea.Msg {
			if err := m.col.ToggleAll(done); err != nil {
				return actionMsg{err: err}
			}
			if done {
				return actionMsg{message: "Marked all done"}
			}
			return actionMsg{message: "Marked all not done"}
		}

	case key.Matches(msg, m.keys.Clear):
		return m, func() tea.Msg {
			n, err := m.col.ClearCompleted()
			if err != nil {
				return actionMsg{err: err}
			}
			return actionMsg{message: fmt.Sprintf("Cleared %d done", n)}
		}

	case key.Matches(msg, m.keys.Reload):
		return m, m.reload()

	case msg.String() == "?":
		m.help.ShowAll = !m.help.ShowAll
	}

	return m, nil
}

func (m Model) doToggle() (Model, tea.Cmd) {
	item, ok := m.selected()
	if !ok {
		return m, nil
	}
	return m, func() tea.Msg {
		toggled, err := m.col.Toggle(item.ID)
		if err != nil {
			return actionMsg{err: err}
		}
		if toggled.Done {
			return actionMsg{message: fmt.Sprintf("Done %s", toggled.Food)}
		}
		return actionMsg{message: fmt.Sprintf("Reopened %s", toggled.Food)}
	}
}

func (m Model) doDelete() (Model, tea.Cmd) {
	item, ok := m.selected()
	if !ok {
		return m, nil
	}
	return m, func() tea.Msg {
		if err := m.col.Destroy(item.ID); err != nil {
			return actionMsg{err: err}
		}
		return actionMsg{message: fmt.Sprintf("Deleted %s", item.Food)}
	}
}

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("chew"))
	b.WriteString(dimStyle.Render(fmt.Sprintf("  %s  %d entries", m.name, len(m.items))))
	b.WriteString("\n\n")

	if len(m.items) == 0 {
		b.WriteString(dimStyle.Render("Nothing logged yet. Press n to add a line like \"rice 2x 400\"."))
		b.WriteString("\n")
	}
	start, end := m.visibleRange()
	for i := start; i < end; i++ {
		b.WriteString(m.formatItemLine(m.items[i], i == m.cursor))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.statsLine())

	if m.inputMode != InputNone {
		label := "New entry"
		if m.inputMode == InputEdit {
			label = "Edit title"
		}
		b.WriteString("\n")
		b.WriteString(inputStyle.Render(label + "\n" + m.input.View()))
	}

	// Status message
	if m.err != nil {
		b.WriteString("\n")
		b.WriteString(errorStyle.Render("Error: " + m.err.Error()))
	} else if m.message != "" {
		b.WriteString("\n")
		b.WriteString(messageStyle.Render(m.message))
	}

	b.WriteString("\n\n")
	b.WriteString(m.help.View(m.keys))

	padStyle := lipgloss.NewStyle().
		PaddingLeft(contentPadding).
		PaddingRight(contentPadding).
		PaddingTop(1)

	return padStyle.Render(b.String())
}

// visibleRange keeps the cursor in view when the list is taller than the
// terminal.
func (m Model) visibleRange() (int, int) {
	rows := len(m.items)
	if m.height > 0 {
		// header 3, stats 2, input 4, message 1, help 2, padding 1
		rows = max(3, m.height-13)
	}
	start := 0
	if m.cursor >= rows {
		start = m.cursor - rows + 1
	}
	return start, min(start+rows, len(m.items))
}

func (m Model) formatItemLine(item model.Item, selected bool) string {
	icon := iconOpen
	if item.Done {
		icon = iconDone
	}
	food := item.Food
	if food == "" {
		food = item.Title
	}
	count := fmt.Sprintf("%-5s", item.Count)
	cal := fmt.Sprintf("%6s", calOrDash(item.Cal))

	if selected {
		line := fmt.Sprintf("%s %3d  %-30s %s %s", icon, item.Order, food, count, cal)
		return selectedRowStyle.Render(line)
	}
	if item.Done {
		return doneRowStyle.Render(fmt.Sprintf("%s %3d  %-30s %s %s", icon, item.Order, food, count, cal))
	}
	line := fmt.Sprintf("%s %3d  %-30s %s %s", icon, item.Order, food,
		countStyle.Render(count), calStyle.Render(cal))
	if !nutrition.Missing(item) {
		line += dimStyle.Render(fmt.Sprintf("  %s", humanize.Comma(int64(nutrition.Contribution(item)))))
	}
	return line
}

func (m Model) statsLine() string {
	return fmt.Sprintf("%s done · %s remaining · %s",
		dimStyle.Render(fmt.Sprint(m.stats.Done)),
		dimStyle.Render(fmt.Sprint(m.stats.Remaining)),
		totalStyle.Render(humanize.Comma(int64(m.stats.Total))+" kcal"))
}

func calOrDash(cal string) string {
	if cal == "" {
		return "—"
	}
	return cal
}

// Run starts the TUI.
func Run(col *collection.Collection, name string) error {
	m := New(col, name)
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
