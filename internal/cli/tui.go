package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"

	perr "github.com/matzehuels/plotmsg/pkg/errors"
	"github.com/matzehuels/plotmsg/pkg/plot"
)

// List styles
var (
	listDimStyle   = lipgloss.NewStyle().Foreground(colorDim)
	listErrorStyle = lipgloss.NewStyle().Foreground(colorRed)
	detailStyle    = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorDim).
			Padding(0, 1)
)

// receivedMsg delivers one message from the receive loop.
type receivedMsg received

// listenDoneMsg reports that the receive loop ended.
type listenDoneMsg struct{ err error }

// =============================================================================
// listenModel - Live list of received messages
// =============================================================================

// listenModel is the bubbletea model behind "listen --tui".
type listenModel struct {
	addr      string
	recording bool
	items     []received
	cursor    int
	offset    int
	height    int
	detail    bool
	follow    bool
	done      bool
	err       error
}

func newListenModel(addr string, recording bool) listenModel {
	return listenModel{addr: addr, recording: recording, height: 15, follow: true}
}

func (m listenModel) Init() tea.Cmd {
	return nil
}

func (m listenModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case receivedMsg:
		m.items = append(m.items, received(msg))
		if m.follow {
			m.cursor = len(m.items) - 1
			m.scroll()
		}
	case listenDoneMsg:
		m.done = true
		m.err = msg.err
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
				m.follow = false
				m.scroll()
			}
		case "down", "j":
			if m.cursor < len(m.items)-1 {
				m.cursor++
				m.follow = m.cursor == len(m.items)-1
				m.scroll()
			}
		case "f":
			m.follow = true
			m.cursor = max(len(m.items)-1, 0)
			m.scroll()
		case "enter", " ":
			m.detail = !m.detail
		}
	case tea.WindowSizeMsg:
		m.height = max(msg.Height-8, 5)
		m.scroll()
	}
	return m, nil
}

// scroll keeps the cursor inside the visible window.
func (m *listenModel) scroll() {
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+m.height {
		m.offset = m.cursor - m.height + 1
	}
}

func (m listenModel) View() string {
	var b strings.Builder

	title := "Listening on " + m.addr
	if m.recording {
		title += " (recording)"
	}
	b.WriteString(StyleTitle.Render(title))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ details  f follow  q quit"))
	b.WriteString("\n\n")

	if len(m.items) == 0 {
		b.WriteString(listDimStyle.Render("  waiting for messages…"))
		b.WriteString("\n")
	} else {
		b.WriteString(m.table())
		b.WriteString("\n")
	}

	if m.detail && m.cursor < len(m.items) {
		b.WriteString(detailStyle.Render(describe(m.items[m.cursor])))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	status := fmt.Sprintf("  %s", plural(len(m.items), "message"))
	if m.done {
		status += " · stopped"
	}
	b.WriteString(listDimStyle.Render(status))
	if m.err != nil {
		b.WriteString("  " + listErrorStyle.Render(perr.UserMessage(m.err)))
	}
	return b.String()
}

func (m listenModel) table() string {
	end := min(m.offset+m.height, len(m.items))

	rows := [][]string{}
	for i := m.offset; i < end; i++ {
		r := m.items[i]
		cursor := "  "
		if i == m.cursor {
			cursor = "▸ "
		}
		if r.err != nil {
			rows = append(rows, []string{cursor, r.at.Format("15:04:05.00"), "error", "—", "—", humanize.Bytes(uint64(len(r.payload))), "—"})
			continue
		}
		id, count := "—", plural(r.sum.keys, "key")
		if r.sum.kind == "figure" {
			id, count = r.sum.uuid, plural(r.sum.traces, "trace")
		}
		key := "—"
		if r.sum.key != "" {
			key = shortKey(r.sum.key)
		}
		rows = append(rows, []string{cursor, r.at.Format("15:04:05.00"), r.sum.kind, id, count, humanize.Bytes(uint64(r.sum.size)), key})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Time", "Kind", "UUID", "Contents", "Size", "Key").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			idx := m.offset + row
			if idx >= len(m.items) {
				return lipgloss.NewStyle()
			}
			r := m.items[idx]
			base := lipgloss.NewStyle()
			if r.err != nil {
				base = base.Foreground(colorRed)
			} else if col == 2 && r.sum.kind == "figure" {
				base = base.Foreground(colorGreen)
			} else if col == 1 || col == 5 || col == 6 {
				base = base.Foreground(colorDim)
			}
			if idx == m.cursor {
				base = base.Bold(true)
			}
			return base
		})

	return t.Render()
}

// describe renders the selected message for the detail pane.
func describe(r received) string {
	if r.err != nil {
		return listErrorStyle.Render(r.err.Error())
	}
	if r.env.Dict != nil {
		return r.env.Dict.String()
	}
	return plot.FromWire(r.env.Figure).String()
}
