package progress

import (
	"fmt"
	"io"
	"strings"
	"sync"

	bubbleprogress "github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const (
	barWidth   = 30
	labelWidth = 40
)

var (
	labelStyle = lipgloss.NewStyle().Width(labelWidth)
	doneStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981"))
	pctStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
)

type openMsg struct {
	id     Handle
	label  string
	weight int
}

type advanceMsg struct {
	id     Handle
	amount int
}

type completeMsg struct{ id Handle }

type closeMsg struct{}

type task struct {
	id    Handle
	label string
	done  int
}

type barModel struct {
	tasks   []task
	bar     bubbleprogress.Model
	spinner spinner.Model
	closing bool
}

func newBarModel() barModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	return barModel{
		bar:     bubbleprogress.New(bubbleprogress.WithDefaultGradient(), bubbleprogress.WithWidth(barWidth), bubbleprogress.WithoutPercentage()),
		spinner: s,
	}
}

func (m barModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m barModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case openMsg:
		m.tasks = append(m.tasks, task{id: msg.id, label: msg.label, done: clamp(msg.weight)})
	case advanceMsg:
		m.update(msg.id, func(t *task) { t.done = clamp(t.done + msg.amount) })
	case completeMsg:
		m.update(msg.id, func(t *task) { t.done = Total })
	case closeMsg:
		m.closing = true
		return m, tea.Quit
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *barModel) update(id Handle, f func(*task)) {
	for i := range m.tasks {
		if m.tasks[i].id == id {
			f(&m.tasks[i])
			return
		}
	}
}

// View renders one line per task. The display is cleared once closed.
func (m barModel) View() string {
	if m.closing {
		return ""
	}
	var b strings.Builder
	for _, t := range m.tasks {
		mark := m.spinner.View()
		if t.done >= Total {
			mark = doneStyle.Render("✓")
		}
		pct := float64(t.done) / Total
		fmt.Fprintf(&b, "%s %s %s %s\n",
			mark,
			labelStyle.Render(t.label),
			m.bar.ViewAs(pct),
			pctStyle.Render(fmt.Sprintf("%3d%%", t.done)))
	}
	return b.String()
}

func clamp(n int) int {
	switch {
	case n < 0:
		return 0
	case n > Total:
		return Total
	}
	return n
}

// Bar is an animated terminal reporter backed by a bubbletea program running
// on its own goroutine.
type Bar struct {
	p    *tea.Program
	done chan struct{}

	mu   sync.Mutex
	next Handle
}

// NewBar starts the display on w.
func NewBar(w io.Writer) *Bar {
	b := &Bar{
		p:    tea.NewProgram(newBarModel(), tea.WithOutput(w), tea.WithInput(nil)),
		done: make(chan struct{}),
	}
	go func() {
		defer close(b.done)
		b.p.Run()
	}()
	return b
}

func (b *Bar) Open(label string, weight int) Handle {
	b.mu.Lock()
	b.next++
	id := b.next
	b.mu.Unlock()

	b.p.Send(openMsg{id: id, label: label, weight: weight})
	return id
}

func (b *Bar) Advance(h Handle, amount int) {
	b.p.Send(advanceMsg{id: h, amount: amount})
}

func (b *Bar) Complete(h Handle) {
	b.p.Send(completeMsg{id: h})
}

// Close stops the program and waits for the terminal to be restored.
func (b *Bar) Close() {
	b.p.Send(closeMsg{})
	<-b.done
}
