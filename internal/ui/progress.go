package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"argus/internal/engine"
)

type progressModel struct {
	title   string
	events  <-chan engine.Event
	spinner spinner.Model
	prog    progress.Model
	items   []ruleItem
	index   map[string]int
	width   int
	done    bool
}

type ruleItem struct {
	name    string
	status  string
	state   engine.State
	visited int
	cached  int
	skipped int
	elapsed time.Duration
}

type eventMsg engine.Event
type doneMsg struct{}

// NewProgressModel returns a Bubble Tea model that renders one row per
// rule while an analysis run streams events.
func NewProgressModel(title string, rules []string, events <-chan engine.Event) tea.Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))

	prog := progress.New(progress.WithDefaultGradient())
	prog.Width = 76 // Default width

	items := make([]ruleItem, 0, len(rules))
	index := make(map[string]int, len(rules))
	for i, name := range rules {
		items = append(items, ruleItem{name: name, status: "queued"})
		index[name] = i
	}
	return &progressModel{
		title:   title,
		events:  events,
		spinner: sp,
		prog:    prog,
		items:   items,
		index:   index,
		width:   80,
	}
}

func (m *progressModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.listenForEvent())
}

func (m *progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case eventMsg:
		cmd := m.applyEvent(engine.Event(msg))
		return m, tea.Batch(cmd, m.listenForEvent())
	case doneMsg:
		m.done = true
		return m, tea.Quit
	case spinner.TickMsg:
		if m.done {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.WindowSizeMsg:
		if msg.Width > 0 {
			m.width = msg.Width
			m.prog.Width = msg.Width - 4
		}
		return m, nil
	case progress.FrameMsg:
		progressModel, cmd := m.prog.Update(msg)
		m.prog = progressModel.(progress.Model)
		return m, cmd
	}
	return m, nil
}

func (m *progressModel) View() string {
	if len(m.items) == 0 {
		return ""
	}
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("7"))
	header := m.title
	if m.done {
		header = fmt.Sprintf("done: %s", header)
	} else {
		header = fmt.Sprintf("%s %s", m.spinner.View(), header)
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(header))
	b.WriteString("\n\n")

	statusWidth := 12
	nameWidth := m.width - statusWidth - 4
	if nameWidth < 20 {
		nameWidth = 20
	}

	for _, item := range m.items {
		name := truncate(item.name+moduleCounts(item), nameWidth)
		statusStyled := styleStatus(item.status).Render(fmt.Sprintf("%12s", item.status))
		b.WriteString(fmt.Sprintf("  %s %s", statusStyled, name))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if m.done {
		b.WriteString(m.prog.ViewAs(1.0))
	} else {
		b.WriteString(m.prog.View())
	}
	b.WriteString("\n")

	return b.String()
}

func (m *progressModel) listenForEvent() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-m.events
		if !ok {
			return doneMsg{}
		}
		return eventMsg(ev)
	}
}

func (m *progressModel) applyEvent(ev engine.Event) tea.Cmd {
	idx, ok := m.index[ev.Rule]
	if !ok {
		return nil
	}
	item := &m.items[idx]

	if ev.Module != "" {
		// событие модуля внутри фазы обхода
		switch {
		case ev.Skipped:
			item.skipped++
		case ev.Cached:
			item.visited++
			item.cached++
		default:
			item.visited++
		}
	} else {
		item.state = ev.State
		item.status = statusLabel(ev.State)
		if ev.State == engine.StateDone {
			item.elapsed = ev.Elapsed
		}
	}

	total := 0.0
	for _, it := range m.items {
		total += progressFromState(it.state)
	}
	return m.prog.SetPercent(total / float64(len(m.items)))
}

// moduleCounts summarizes the visiting phase for one rule row.
func moduleCounts(item ruleItem) string {
	if item.visited == 0 && item.skipped == 0 {
		return ""
	}
	counts := fmt.Sprintf("  %d modules", item.visited)
	if item.cached > 0 {
		counts += fmt.Sprintf(", %d cached", item.cached)
	}
	if item.skipped > 0 {
		counts += fmt.Sprintf(", %d skipped", item.skipped)
	}
	if item.elapsed > 0 {
		counts += fmt.Sprintf(" in %s", item.elapsed.Round(time.Millisecond))
	}
	return counts
}

func progressFromState(state engine.State) float64 {
	switch state {
	case engine.StateVisitingModule:
		return 0.3
	case engine.StateFolding:
		return 0.8
	case engine.StateFinalEvaluation:
		return 0.9
	case engine.StateDone:
		return 1.0
	default:
		return 0.0
	}
}

func statusLabel(state engine.State) string {
	switch state {
	case engine.StateVisitingModule:
		return "visiting"
	case engine.StateFolding:
		return "folding"
	case engine.StateFinalEvaluation:
		return "evaluating"
	case engine.StateDone:
		return "done"
	default:
		return "queued"
	}
}

func styleStatus(status string) lipgloss.Style {
	switch status {
	case "done":
		return lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	case "visiting", "folding", "evaluating":
		return lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	default:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
	}
}

func truncate(value string, width int) string {
	if width <= 0 {
		return value
	}
	if runewidth.StringWidth(value) <= width {
		return value
	}
	if width <= 3 {
		return runewidth.Truncate(value, width, "")
	}
	return runewidth.Truncate(value, width-3, "...")
}
