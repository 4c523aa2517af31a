// Package ui renders the progress of a directory check in the terminal.
package ui

import (
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	fprogress "faultline/internal/progress"
)

// defaultRows is the number of file rows shown before the first WindowSizeMsg.
const defaultRows = 10

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("7"))
	activeStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	invalidStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

type fileState struct {
	path   string
	stage  fprogress.Stage
	status fprogress.Status
	blocks int
}

// weight is how far along the file is, from 0 to 1.
func (f *fileState) weight() float64 {
	if f.status.Finished() {
		return 1
	}
	if f.status != fprogress.StatusWorking {
		return 0
	}
	switch f.stage {
	case fprogress.StageLoad:
		return 0.1
	case fprogress.StageSearch:
		return 0.3
	case fprogress.StageExplain:
		return 0.9
	}
	return 0
}

func (f *fileState) label() string {
	if f.status != fprogress.StatusWorking {
		return string(f.status)
	}
	switch f.stage {
	case fprogress.StageLoad:
		return "loading"
	case fprogress.StageSearch:
		return "searching"
	case fprogress.StageExplain:
		return "explaining"
	}
	return "working"
}

// progressModel shows the running files and the files found invalid so far.
// Valid files only move the bar: a project has far more of them than fit on
// a screen.
type progressModel struct {
	title   string
	events  <-chan fprogress.Event
	spinner spinner.Model
	bar     progress.Model

	files    map[string]*fileState
	total    int
	finished int
	invalid  []*fileState // in the order they were found
	failed   int

	width int
	rows  int
	done  bool
}

type eventMsg fprogress.Event
type doneMsg struct{}

// NewProgressModel returns a Bubble Tea model fed by events until the channel
// is closed. files are the paths the events refer to.
func NewProgressModel(title string, files []string, events <-chan fprogress.Event) tea.Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = activeStyle

	bar := progress.New(progress.WithDefaultGradient())
	bar.Width = 76

	m := &progressModel{
		title:   title,
		events:  events,
		spinner: sp,
		bar:     bar,
		files:   make(map[string]*fileState, len(files)),
		total:   len(files),
		width:   80,
		rows:    defaultRows,
	}
	for _, path := range files {
		m.files[path] = &fileState{path: path, status: fprogress.StatusQueued}
	}
	return m
}

func (m *progressModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.waitForEvent())
}

func (m *progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case eventMsg:
		return m, tea.Batch(m.apply(fprogress.Event(msg)), m.waitForEvent())
	case doneMsg:
		m.done = true
		return m, tea.Quit
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
	case spinner.TickMsg:
		if !m.done {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
	case tea.WindowSizeMsg:
		if msg.Width > 0 {
			m.width = msg.Width
			m.bar.Width = msg.Width - 4
		}
		if msg.Height > 0 {
			// заголовок, пустые строки и полоса
			m.rows = max(msg.Height-5, 1)
		}
	case progress.FrameMsg:
		bar, cmd := m.bar.Update(msg)
		m.bar = bar.(progress.Model)
		return m, cmd
	}
	return m, nil
}

func (m *progressModel) waitForEvent() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-m.events
		if !ok {
			return doneMsg{}
		}
		return eventMsg(ev)
	}
}

func (m *progressModel) apply(ev fprogress.Event) tea.Cmd {
	f, ok := m.files[ev.File]
	if !ok || f.status.Finished() {
		return nil
	}
	f.stage, f.status = ev.Stage, ev.Status
	if f.status.Finished() {
		m.finished++
		switch f.status {
		case fprogress.StatusInvalid:
			f.blocks = ev.Blocks
			m.invalid = append(m.invalid, f)
		case fprogress.StatusError:
			m.failed++
		}
	}
	return m.bar.SetPercent(m.percent())
}

func (m *progressModel) percent() float64 {
	if m.total == 0 {
		return 0
	}
	sum := 0.0
	for _, f := range m.files {
		sum += f.weight()
	}
	return sum / float64(m.total)
}

func (m *progressModel) View() string {
	if m.total == 0 {
		return ""
	}
	header := fmt.Sprintf("%s %d/%d", m.title, m.finished, m.total)
	if n := len(m.invalid); n > 0 {
		header += fmt.Sprintf(", %d with syntax errors", n)
	}
	if m.failed > 0 {
		header += fmt.Sprintf(", %d failed", m.failed)
	}
	if m.done {
		header = "done: " + header
	} else {
		header = m.spinner.View() + " " + header
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(header))
	b.WriteString("\n\n")
	for _, line := range m.rowsToShow() {
		b.WriteString(line)
		b.WriteByte('\n')
	}
	b.WriteByte('\n')
	if m.done {
		b.WriteString(m.bar.ViewAs(1))
	} else {
		b.WriteString(m.bar.View())
	}
	b.WriteByte('\n')
	return b.String()
}

// rowsToShow lists running files first, then the latest invalid ones, within
// the terminal height.
func (m *progressModel) rowsToShow() []string {
	nameWidth := max(m.width-16, 20)
	var active []*fileState
	for _, f := range m.files {
		if f.status == fprogress.StatusWorking {
			active = append(active, f)
		}
	}
	slices.SortFunc(active, func(a, b *fileState) int { return strings.Compare(a.path, b.path) })

	var rows []string
	for _, f := range active {
		rows = append(rows, fmt.Sprintf("  %s %s", activeStyle.Render(fmt.Sprintf("%12s", f.label())), truncate(f.path, nameWidth)))
	}
	for i := len(m.invalid) - 1; i >= 0; i-- {
		f := m.invalid[i]
		name := fmt.Sprintf("%s (%d)", truncate(f.path, nameWidth), f.blocks)
		rows = append(rows, fmt.Sprintf("  %s %s", invalidStyle.Render(fmt.Sprintf("%12s", f.label())), name))
	}
	if len(rows) > m.rows {
		hidden := len(rows) - m.rows + 1
		rows = append(rows[:m.rows-1], mutedStyle.Render(fmt.Sprintf("  ... %d more", hidden)))
	}
	return rows
}

func truncate(value string, width int) string {
	if width <= 0 || runewidth.StringWidth(value) <= width {
		return value
	}
	if width <= 3 {
		return runewidth.Truncate(value, width, "")
	}
	return runewidth.Truncate(value, width, "...")
}
