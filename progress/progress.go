// Package progress reports feed fetching progress, optionally as a terminal progress bar.
package progress

import (
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	bprogress "github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
)

const barWidth = 40

type (
	advanceMsg struct{}
	messageMsg string
	tickMsg    time.Time

	// FinishMsg clears the bar and stops the program
	FinishMsg struct{}
)

// Sink counts completed fetches and forwards updates to a renderer.
// It is safe for concurrent use.
type Sink struct {
	send  func(tea.Msg)
	count atomic.Int64

	mu      sync.Mutex
	message string
}

// NewSink creates a sink forwarding updates to send; send may be nil
func NewSink(send func(tea.Msg)) *Sink {
	return &Sink{send: send}
}

func (s *Sink) Advance() {
	s.count.Add(1)
	if s.send != nil {
		s.send(advanceMsg{})
	}
}

func (s *Sink) SetMessage(msg string) {
	s.mu.Lock()
	s.message = msg
	s.mu.Unlock()
	if s.send != nil {
		s.send(messageMsg(msg))
	}
}

// Count returns how many fetches completed successfully
func (s *Sink) Count() int64 {
	return s.count.Load()
}

// Message returns the latest status message
func (s *Sink) Message() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.message
}

// Model renders "[elapsed] bar message"
type Model struct {
	bar      bprogress.Model
	total    int
	done     int
	message  string
	start    time.Time
	now      time.Time
	finished bool
}

// New creates a bar expecting total successful fetches
func New(total int) Model {
	now := time.Now()
	return Model{
		bar: bprogress.New(
			bprogress.WithSolidFill("2"),
			bprogress.WithWidth(barWidth),
			bprogress.WithoutPercentage(),
		),
		total: total,
		start: now,
		now:   now,
	}
}

func tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m Model) Init() tea.Cmd {
	return tick()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case advanceMsg:
		m.done++
	case messageMsg:
		m.message = string(msg)
	case tickMsg:
		m.now = time.Time(msg)
		if !m.finished {
			return m, tick()
		}
	case FinishMsg:
		m.finished = true
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) View() string {
	if m.finished {
		return ""
	}
	return fmt.Sprintf("[%s] %s %s", m.elapsed(), m.bar.ViewAs(m.Percent()), m.message)
}

// Percent is the completed share, capped at 1
func (m Model) Percent() float64 {
	if m.total <= 0 {
		return 0
	}
	return min(float64(m.done)/float64(m.total), 1)
}

func (m Model) elapsed() time.Duration {
	return m.now.Sub(m.start).Truncate(time.Second)
}

// Run draws a progress bar on out until stop is called.
// stop clears the bar and waits for the program to exit.
func Run(total int, out io.Writer) (sink *Sink, stop func()) {
	p := tea.NewProgram(New(total), tea.WithOutput(out), tea.WithInput(nil))

	done := make(chan struct{})
	go func() {
		defer close(done)
		if _, err := p.Run(); err != nil {
			slog.Debug("progress bar stopped", "error", err)
		}
	}()

	return NewSink(p.Send), func() {
		p.Send(FinishMsg{})
		<-done
	}
}
