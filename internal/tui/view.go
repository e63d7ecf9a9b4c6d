package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/yogu/stockdash/internal/models"
)

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(m.headerView())
	b.WriteString("\n")
	b.WriteString(m.tabsView())
	b.WriteString("\n")
	if m.searchMode || m.search.Value() != "" {
		b.WriteString("  " + m.search.View() + "\n")
	}
	b.WriteString(m.rowsView())
	b.WriteString("\n")
	b.WriteString(m.footerView())

	return b.String()
}

func (m Model) headerView() string {
	title := titleStyle.Render("stockdash")

	var badge string
	if m.badge > 0 {
		badge = badgeStyle.Render(fmt.Sprintf("short %d", m.badge))
	} else {
		badge = badgeOKStyle.Render("short 0")
	}

	status := ""
	if m.busy {
		status = subtleStyle.Render("  working…")
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, title, " ", badge, status)
}

func (m Model) tabsView() string {
	shortages := tabStyle.Render("[1] shortages")
	all := tabStyle.Render("[2] all items")
	if m.tab == TabShortages {
		shortages = activeTabStyle.Render("[1] shortages")
	} else {
		all = activeTabStyle.Render("[2] all items")
	}
	cat := ""
	if c := m.category(); c != "" {
		cat = subtleStyle.Render("  category: " + c)
	}
	return shortages + all + cat
}

func (m Model) rowsView() string {
	if len(m.rows) == 0 {
		if m.tab == TabShortages {
			return subtleStyle.Render("  no shortages")
		}
		return subtleStyle.Render("  no items")
	}

	var b strings.Builder
	for i, it := range m.rows {
		b.WriteString(m.rowView(i, it))
		if i < len(m.rows)-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

func (m Model) rowView(i int, it models.Item) string {
	qty := m.qtyCell(it)
	line := fmt.Sprintf("%-24s %s%s / min %s%s  %s",
		truncate(it.Name, 24),
		qty, it.Unit,
		models.Fmt2(it.MinQty), it.Unit,
		it.Category)

	cursor := "  "
	if i == m.cursor {
		cursor = "> "
		line = selectedRowStyle.Render(line)
	} else if it.IsShortage() {
		line = shortageRowStyle.Render(line)
	}
	return cursor + line
}

// qtyCell renders either the live edit input or the mirrored value.
func (m Model) qtyCell(it models.Item) string {
	if m.editing && it.ID == m.editingID {
		return editStyle.Render(m.qtyInput.View())
	}
	if v, ok := m.bridge.QuantityValue(it.ID); ok {
		return v
	}
	return models.Fmt2(it.CurrentQty)
}

func (m Model) footerView() string {
	if m.notice != "" {
		return noticeStyle.Render("! "+m.notice) + "\n" +
			subtleStyle.Render("  +/- step · e edit · / search · c category · r reload · d decrement · q quit")
	}
	if m.editing {
		return subtleStyle.Render("  enter save · esc cancel")
	}
	return subtleStyle.Render("  +/- step · e edit · / search · c category · r reload · d decrement · q quit")
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-1]) + "…"
}
