// Package progress draws a step progress bar while a report is built.
package progress

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const (
	maxBarWidth = 60
	padding     = 2
)

var labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))

type stepMsg struct {
	label string
}

type doneMsg struct{}

// Model implements the Bubble Tea progress bar.
type Model struct {
	bar   progress.Model
	total int
	steps int
	label string
}

// NewModel returns a bar that is full after total steps.
func NewModel(total int) *Model {
	if total < 1 {
		total = 1
	}
	return &Model{
		bar:   progress.New(progress.WithDefaultGradient(), progress.WithWidth(maxBarWidth)),
		total: total,
	}
}

// Percent reports the completed fraction.
func (m *Model) Percent() float64 {
	return min(float64(m.steps)/float64(m.total), 1)
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.bar.Width = max(min(msg.Width-padding*2, maxBarWidth), 1)
		return m, nil
	case stepMsg:
		m.steps++
		m.label = msg.label
		return m, nil
	case doneMsg:
		m.steps = m.total
		return m, tea.Quit
	default:
		return m, nil
	}
}

// View implements tea.Model.
func (m *Model) View() string {
	line := m.bar.ViewAs(m.Percent())
	if m.label != "" {
		line += " " + labelStyle.Render(fmt.Sprintf("%d/%d %s", m.steps, m.total, m.label))
	}
	return line + "\n"
}

// Bar runs the progress model in a background Bubble Tea program.
type Bar struct {
	program *tea.Program
	done    chan struct{}
	err     error
}

// Start draws the bar on w until Stop is called or ctx is done.
func Start(ctx context.Context, w io.Writer, total int) *Bar {
	b := &Bar{
		program: tea.NewProgram(NewModel(total),
			tea.WithContext(ctx),
			tea.WithOutput(w),
			tea.WithInput(nil),
			tea.WithoutSignalHandler(),
		),
		done: make(chan struct{}),
	}
	go func() {
		defer close(b.done)
		_, b.err = b.program.Run()
	}()
	return b
}

// Step advances the bar by one step.
func (b *Bar) Step(label string) {
	b.program.Send(stepMsg{label: label})
}

// Stop fills the bar and waits for the program to exit.
func (b *Bar) Stop() error {
	b.program.Send(doneMsg{})
	<-b.done
	if errors.Is(b.err, tea.ErrProgramKilled) {
		return nil
	}
	return b.err
}
