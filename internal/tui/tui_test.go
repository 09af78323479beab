package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baiirun/chew/internal/collection"
	"github.com/baiirun/chew/internal/store/jsonstore"
)

func setupModel(t *testing.T, lines ...string) (Model, *collection.Collection) {
	t.Helper()
	store, err := jsonstore.New(t.TempDir(), "todos")
	require.NoError(t, err)
	col := collection.New(store)
	require.NoError(t, col.Fetch())
	for _, line := range lines {
		_, err := col.Create(line)
		require.NoError(t, err)
	}

	m := New(col, "todos")
	m = apply(t, m, m.Init()())
	return m, col
}

// apply feeds msg to the model.
func apply(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	return next.(Model)
}

// press sends a key and runs the command it returns through the model, the
// way the Bubble Tea runtime would.
func press(t *testing.T, m Model, k string) Model {
	t.Helper()
	next, cmd := m.Update(keyMsg(k))
	m = next.(Model)
	for cmd != nil {
		msg := cmd()
		if msg == nil {
			break
		}
		if _, ok := msg.(tea.QuitMsg); ok {
			break
		}
		next, cmd = m.Update(msg)
		m = next.(Model)
	}
	return m
}

func keyMsg(k string) tea.KeyMsg {
	switch k {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
}

func TestInit_LoadsItemsAndStats(t *testing.T) {
	m, _ := setupModel(t, "rice 2x 400", "grapes 100")

	assert.Len(t, m.items, 2)
	assert.Equal(t, collection.Stats{Remaining: 2, Total: 900}, m.stats)
}

func TestNavigation(t *testing.T) {
	m, _ := setupModel(t, "a", "b", "c")

	m = apply(t, m, keyMsg("j"))
	m = apply(t, m, keyMsg("j"))
	m = apply(t, m, keyMsg("j"))
	assert.Equal(t, 2, m.cursor, "cursor stops at the last row")

	m = apply(t, m, keyMsg("k"))
	assert.Equal(t, 1, m.cursor)

	m = apply(t, m, keyMsg("g"))
	assert.Equal(t, 0, m.cursor)
	m = apply(t, m, keyMsg("G"))
	assert.Equal(t, 2, m.cursor)
}

func TestCreate(t *testing.T) {
	m, col := setupModel(t)

	m = apply(t, m, keyMsg("n"))
	require.Equal(t, InputCreate, m.inputMode)
	m.input.SetValue("rice 2x 400")
	m = press(t, m, "enter")

	assert.Equal(t, InputNone, m.inputMode)
	require.Len(t, m.items, 1)
	assert.Equal(t, "rice", m.items[0].Food)
	assert.Equal(t, 800, m.stats.Total)
	assert.Contains(t, m.message, "Added rice")
	assert.Equal(t, 1, col.Len())
}

func TestCreate_EmptyLineIgnored(t *testing.T) {
	m, col := setupModel(t)

	m = apply(t, m, keyMsg("n"))
	m.input.SetValue("   ")
	m = press(t, m, "enter")

	assert.Equal(t, 0, col.Len())
	assert.NoError(t, m.err)
}

func TestInput_EscCancels(t *testing.T) {
	m, col := setupModel(t)

	m = apply(t, m, keyMsg("n"))
	m.input.SetValue("rice")
	m = apply(t, m, keyMsg("esc"))

	assert.Equal(t, InputNone, m.inputMode)
	assert.Equal(t, "", m.input.Value())
	assert.Equal(t, 0, col.Len())
}

func TestToggle(t *testing.T) {
	m, _ := setupModel(t, "rice 2x 400", "grapes 100")

	m = press(t, m, " ")
	assert.True(t, m.items[0].Done)
	assert.Equal(t, collection.Stats{Done: 1, Remaining: 1, Total: 100}, m.stats)

	m = press(t, m, "x")
	assert.False(t, m.items[0].Done)
	assert.Equal(t, 900, m.stats.Total)
}

func TestEdit(t *testing.T) {
	m, _ := setupModel(t, "rice 2x 400")

	m = apply(t, m, keyMsg("e"))
	require.Equal(t, InputEdit, m.inputMode)
	assert.Equal(t, "rice 2x 400", m.input.Value(), "edit starts from the current title")

	m.input.SetValue("brown rice")
	m = press(t, m, "enter")
	assert.Equal(t, "brown rice", m.items[0].Title)
	assert.Equal(t, "rice", m.items[0].Food)
}

func TestEdit_EmptyDeletes(t *testing.T) {
	m, col := setupModel(t, "rice 2x 400")

	m = apply(t, m, keyMsg("e"))
	m.input.SetValue("")
	m = press(t, m, "enter")

	assert.Empty(t, m.items)
	assert.Equal(t, 0, col.Len())
	assert.Equal(t, "Deleted entry", m.message)
}

func TestDelete_ClampsCursor(t *testing.T) {
	m, _ := setupModel(t, "a", "b")

	m = apply(t, m, keyMsg("G"))
	m = press(t, m, "D")

	require.Len(t, m.items, 1)
	assert.Equal(t, 0, m.cursor)
	assert.Equal(t, "a", m.items[0].Title)
}

func TestToggleAllAndClear(t *testing.T) {
	m, _ := setupModel(t, "rice 2x 400", "grapes 100")

	m = press(t, m, "A")
	assert.Equal(t, collection.Stats{Done: 2}, m.stats)

	m = press(t, m, "A")
	assert.Equal(t, collection.Stats{Remaining: 2, Total: 900}, m.stats)

	m = press(t, m, " ")
	m = press(t, m, "C")
	require.Len(t, m.items, 1)
	assert.Equal(t, "grapes", m.items[0].Food)
	assert.Equal(t, "Cleared 1 done", m.message)
}

func TestReload(t *testing.T) {
	m, col := setupModel(t, "rice 2x 400")

	_, err := col.Create("tea 5")
	require.NoError(t, err)
	assert.Len(t, m.items, 1, "model holds its own snapshot")

	m = press(t, m, "r")
	assert.Len(t, m.items, 2)
}

func TestQuit(t *testing.T) {
	m, _ := setupModel(t)

	_, cmd := m.Update(keyMsg("q"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestView(t *testing.T) {
	m, _ := setupModel(t, "rice 2x 400", "cantoloupe")
	m = apply(t, m, tea.WindowSizeMsg{Width: 100, Height: 40})

	view := m.View()
	assert.Contains(t, view, "chew")
	assert.Contains(t, view, "rice")
	assert.Contains(t, view, "cantoloupe")
	assert.Contains(t, view, "—")
	assert.Contains(t, view, "800 kcal")

	m = apply(t, m, keyMsg("n"))
	assert.Contains(t, m.View(), "New entry")
}

func TestView_Empty(t *testing.T) {
	m, _ := setupModel(t)
	assert.True(t, strings.Contains(m.View(), "Nothing logged yet"))
}
