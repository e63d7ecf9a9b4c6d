// Package tui is the dashboard presentation layer: it renders the
// inventory snapshot and feeds user edits into the synchronization
// engine. All stock semantics live below it; the TUI only wires keys
// to engine operations and mirrors the store.
package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/yogu/stockdash/internal/engine"
	"github.com/yogu/stockdash/internal/models"
	"github.com/yogu/stockdash/internal/store"
)

// refreshInterval drives the periodic full-state reload. Reloads are
// arbitrated by the engine, so typing in a quantity field defers them.
const refreshInterval = 30 * time.Second

// Tab selects between the shortage view and the full listing.
type Tab int

const (
	TabShortages Tab = iota
	TabAll
)

// Backend is what the dashboard needs from the gateway.
type Backend interface {
	engine.Updater
	RunDecrement(ctx context.Context) error
}

type tickMsg time.Time

// reloadedMsg and actionMsg both just trigger a re-sync with the
// store; errors have already been routed through the notifier.
type reloadedMsg struct{ err error }
type actionMsg struct{ err error }

// Model is the Bubble Tea model for the dashboard.
type Model struct {
	store   *store.Store
	engine  *engine.Engine
	backend Backend
	bridge  *bridge

	width  int
	height int

	tab        Tab
	rows       []models.Item
	cursor     int
	categories []string
	catIdx     int // 0 = all categories

	search     textinput.Model
	searchMode bool

	qtyInput  textinput.Model
	editing   bool
	editingID int

	badge  int
	busy   bool
	notice string
}

// NewModel wires the dashboard: it owns the bridge and the engine
// built around it.
func NewModel(st *store.Store, backend Backend) Model {
	br := newBridge()
	eng := engine.New(backend, st, engine.Config{
		Display:  br,
		Focus:    br,
		Notifier: br,
	})

	search := textinput.New()
	search.Placeholder = "search"
	search.CharLimit = 64

	qty := textinput.New()
	qty.CharLimit = 12

	m := Model{
		store:    st,
		engine:   eng,
		backend:  backend,
		bridge:   br,
		search:   search,
		qtyInput: qty,
	}
	st.SetBadgeSink(br.setBadge)
	return m
}

// Engine exposes the engine for the process teardown path.
func (m Model) Engine() *engine.Engine {
	return m.engine
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.reloadCmd(), tickCmd())
}

func tickCmd() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// reloadCmd requests a reload through the arbitration path. Errors
// surface via the notifier; the very first automatic load is otherwise
// swallowed so startup never dies on a flaky network.
func (m Model) reloadCmd() tea.Cmd {
	eng := m.engine
	return func() tea.Msg {
		eng.RequestReload(context.Background())
		return reloadedMsg{}
	}
}

func (m Model) adjustCmd(id int, delta float64) tea.Cmd {
	eng := m.engine
	return func() tea.Msg {
		return actionMsg{err: eng.AdjustByStep(context.Background(), id, delta)}
	}
}

func (m Model) commitCmd(id int, raw string) tea.Cmd {
	eng := m.engine
	br := m.bridge
	return func() tea.Msg {
		err := eng.OnQuantityCommit(context.Background(), id, raw)
		br.setFocused(false)
		eng.OnFocusChange(context.Background())
		return actionMsg{err: err}
	}
}

func (m Model) cancelEditCmd() tea.Cmd {
	eng := m.engine
	br := m.bridge
	return func() tea.Msg {
		br.setFocused(false)
		eng.OnFocusChange(context.Background())
		return actionMsg{}
	}
}

func (m Model) decrementCmd() tea.Cmd {
	backend := m.backend
	eng := m.engine
	br := m.bridge
	return func() tea.Msg {
		if err := backend.RunDecrement(context.Background()); err != nil {
			br.Notify(err.Error())
			return actionMsg{err: err}
		}
		eng.RequestReload(context.Background())
		return actionMsg{}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tickMsg:
		return m.sync(), tea.Batch(m.reloadCmd(), tickCmd())

	case reloadedMsg, actionMsg:
		m.busy = false
		return m.sync(), nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.searchMode {
		return m.handleSearchKey(msg)
	}
	if m.editing {
		return m.handleEditKey(msg)
	}

	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "tab":
		if m.tab == TabShortages {
			m.tab = TabAll
		} else {
			m.tab = TabShortages
		}
		return m.sync(), nil
	case "1":
		m.tab = TabShortages
		return m.sync(), nil
	case "2":
		m.tab = TabAll
		return m.sync(), nil
	case "/":
		m.searchMode = true
		m.search.Focus()
		return m, textinput.Blink
	case "c":
		m.catIdx++
		if m.catIdx > len(m.categories) {
			m.catIdx = 0
		}
		return m.sync(), nil
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil
	case "down", "j":
		if m.cursor < len(m.rows)-1 {
			m.cursor++
		}
		return m, nil
	case "+", "=", "right":
		if it, ok := m.selected(); ok {
			return m, m.adjustCmd(it.ID, 1)
		}
		return m, nil
	case "-", "_", "left":
		if it, ok := m.selected(); ok {
			return m, m.adjustCmd(it.ID, -1)
		}
		return m, nil
	case "e", "enter":
		if it, ok := m.selected(); ok {
			m.editing = true
			m.editingID = it.ID
			val, _ := m.bridge.QuantityValue(it.ID)
			m.qtyInput.SetValue(val)
			m.qtyInput.CursorEnd()
			m.qtyInput.Focus()
			m.bridge.setFocused(true)
		}
		return m, textinput.Blink
	case "r":
		m.busy = true
		return m, m.reloadCmd()
	case "d":
		m.busy = true
		return m, m.decrementCmd()
	}
	return m, nil
}

func (m Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.searchMode = false
		m.search.Blur()
		m.search.SetValue("")
		return m.sync(), nil
	case "enter":
		m.searchMode = false
		m.search.Blur()
		return m.sync(), nil
	}
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	return m.sync(), cmd
}

func (m Model) handleEditKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		raw := m.qtyInput.Value()
		m.editing = false
		m.qtyInput.Blur()
		return m, m.commitCmd(m.editingID, raw)
	case "esc":
		// Abandon the edit; a deferred reload may now run.
		m.editing = false
		m.qtyInput.Blur()
		return m, m.cancelEditCmd()
	}

	var cmd tea.Cmd
	m.qtyInput, cmd = m.qtyInput.Update(msg)
	// Every keystroke feeds the debounce path; unparsable text is an
	// in-progress edit and is ignored by the engine.
	m.engine.OnQuantityInput(m.editingID, m.qtyInput.Value())
	return m, cmd
}

func (m Model) selected() (models.Item, bool) {
	if m.cursor < 0 || m.cursor >= len(m.rows) {
		return models.Item{}, false
	}
	return m.rows[m.cursor], true
}

// category returns the active category filter, "" for all.
func (m Model) category() string {
	if m.catIdx == 0 || m.catIdx > len(m.categories) {
		return ""
	}
	return m.categories[m.catIdx-1]
}

// sync mirrors the store into the model: visible rows, categories,
// badge count, rendered quantity values and pending notices.
func (m Model) sync() Model {
	m.categories = m.store.Categories()
	if m.catIdx > len(m.categories) {
		m.catIdx = 0
	}

	if m.tab == TabShortages {
		m.rows = m.store.Shortages()
	} else {
		m.rows = m.store.Filter(m.search.Value(), m.category())
	}
	if m.cursor >= len(m.rows) {
		m.cursor = len(m.rows) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}

	m.badge = m.bridge.badgeCount()

	// Mirror snapshot quantities into the display, except the row
	// being edited: its text belongs to the user until commit.
	for _, it := range m.rows {
		if m.editing && it.ID == m.editingID {
			continue
		}
		m.bridge.SetQuantityValue(it.ID, models.Fmt2(it.CurrentQty))
	}

	if notices := m.bridge.drainNotices(); len(notices) > 0 {
		m.notice = notices[len(notices)-1]
	}
	return m
}

// Run starts the dashboard and blocks until it exits.
func Run(st *store.Store, backend Backend) error {
	m := NewModel(st, backend)
	defer m.engine.Stop()

	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
