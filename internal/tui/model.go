package tui

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ngenohkevin/hivedeck-monitor/internal/dashboard"
	"github.com/ngenohkevin/hivedeck-monitor/internal/process"
)

// Controller is the dashboard surface the TUI drives
type Controller interface {
	View() dashboard.View
	SetSortKey(key process.SortKey) process.SortSpec
	Refresh() bool
	Dispatch(ctx context.Context, pid int32, action process.Action) error
}

// Options tune the TUI
type Options struct {
	// Host is shown in the header, usually system.HostInfo.Summary()
	Host string
	// Source names the directory being watched
	Source string
	// ActionTimeout bounds each control command, zero means no bound
	ActionTimeout time.Duration
}

// actionMsg reports the outcome of a control command
type actionMsg struct {
	pid    int32
	action process.Action
	err    error
}

var columnTitles = []struct {
	title string
	key   process.SortKey
	width int
}{
	{"PID", process.SortByPID, 9},
	{"NAME", process.SortByName, 28},
	{"STATUS", process.SortByStatus, 12},
	{"MEM %", process.SortByMemory, 9},
}

// Model is the bubbletea model of the process dashboard
type Model struct {
	ctrl Controller
	feed *Feed
	opts Options

	width  int
	height int

	view  dashboard.View
	table table.Model

	keys KeyMap
	help help.Model

	confirmPID int32
	confirming bool

	status    string
	statusErr bool
}

// New creates a model over ctrl that receives updates through feed
func New(ctrl Controller, feed *Feed, opts Options) *Model {
	tkm := table.DefaultKeyMap()
	// k terminates, so the table only moves up on the arrow key
	tkm.LineUp = key.NewBinding(key.WithKeys("up"))

	t := table.New(
		table.WithColumns(columns(process.DefaultSortSpec())),
		table.WithFocused(true),
		table.WithHeight(20),
		table.WithKeyMap(tkm),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true).
		Foreground(lipgloss.Color("cyan"))
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	m := &Model{
		ctrl:  ctrl,
		feed:  feed,
		opts:  opts,
		table: t,
		keys:  DefaultKeyMap(),
		help:  help.New(),
	}
	m.setView(ctrl.View())
	return m
}

// Init initializes the model
func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		m.feed.wait(),
		tea.SetWindowTitle("Hivedeck processes"),
	)
}

// Update handles messages
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.table.SetHeight(max(msg.Height-10, 3))
		return m, nil

	case viewMsg:
		m.setView(dashboard.View(msg))
		return m, m.feed.wait()

	case actionMsg:
		if msg.err != nil {
			m.setStatus(msg.err.Error(), true)
		} else {
			m.setStatus(fmt.Sprintf("%s sent to PID %d", msg.action, msg.pid), false)
		}
		return m, nil

	case tea.KeyMsg:
		if m.confirming {
			return m.handleConfirm(msg)
		}
		return m.handleKey(msg)
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil

	case key.Matches(msg, m.keys.SortPID):
		return m.sortBy(process.SortByPID)
	case key.Matches(msg, m.keys.SortName):
		return m.sortBy(process.SortByName)
	case key.Matches(msg, m.keys.SortStatus):
		return m.sortBy(process.SortByStatus)
	case key.Matches(msg, m.keys.SortMemory):
		return m.sortBy(process.SortByMemory)

	case key.Matches(msg, m.keys.Refresh):
		if m.ctrl.Refresh() {
			m.setStatus("Refreshing...", false)
		}
		return m, nil

	case key.Matches(msg, m.keys.Terminate):
		if pid := m.selectedPID(); pid > 0 {
			m.confirmPID = pid
			m.confirming = true
		}
		return m, nil

	case key.Matches(msg, m.keys.Suspend):
		return m, m.dispatch(process.ActionSuspend)

	case key.Matches(msg, m.keys.Resume):
		return m, m.dispatch(process.ActionResume)
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m *Model) handleConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Confirm):
		m.confirming = false
		return m, m.send(m.confirmPID, process.ActionTerminate)
	case key.Matches(msg, m.keys.Cancel), key.Matches(msg, m.keys.Quit):
		m.confirming = false
		return m, nil
	}
	return m, nil
}

func (m *Model) sortBy(k process.SortKey) (tea.Model, tea.Cmd) {
	m.ctrl.SetSortKey(k)
	m.setView(m.ctrl.View())
	return m, nil
}

// dispatch sends action to the selected process
func (m *Model) dispatch(action process.Action) tea.Cmd {
	pid := m.selectedPID()
	if pid <= 0 {
		return nil
	}
	return m.send(pid, action)
}

func (m *Model) send(pid int32, action process.Action) tea.Cmd {
	ctrl := m.ctrl
	timeout := m.opts.ActionTimeout
	return func() tea.Msg {
		ctx := context.Background()
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}
		return actionMsg{pid: pid, action: action, err: ctrl.Dispatch(ctx, pid, action)}
	}
}

func (m *Model) setStatus(text string, isErr bool) {
	m.status = text
	m.statusErr = isErr
}

// setView installs v and rebuilds the table. The cursor stays on the
// selected pid wherever it moved to, and is clamped only once the pid is gone.
func (m *Model) setView(v dashboard.View) {
	selected := m.selectedPID()
	m.view = v
	m.table.SetColumns(columns(v.Sort))
	m.table.SetRows(rows(v.Rows))

	if selected > 0 {
		for i, r := range v.Rows {
			if r.PID == selected {
				m.table.SetCursor(i)
				return
			}
		}
	}
	if c := m.table.Cursor(); c >= len(v.Rows) && len(v.Rows) > 0 {
		m.table.SetCursor(len(v.Rows) - 1)
	}
}

func (m *Model) selectedPID() int32 {
	row := m.table.SelectedRow()
	if len(row) == 0 {
		return 0
	}
	pid, err := strconv.ParseInt(row[0], 10, 32)
	if err != nil {
		return 0
	}
	return int32(pid)
}

func columns(spec process.SortSpec) []table.Column {
	cols := make([]table.Column, len(columnTitles))
	for i, c := range columnTitles {
		cols[i] = table.Column{Title: c.title + spec.Indicator(c.key), Width: c.width}
	}
	return cols
}

func rows(records []process.Record) []table.Row {
	out := make([]table.Row, len(records))
	for i, r := range records {
		out[i] = table.Row{
			strconv.FormatInt(int64(r.PID), 10),
			r.Name,
			renderStatus(r.Status),
			process.FormatMemory(r.MemoryPercent),
		}
	}
	return out
}
