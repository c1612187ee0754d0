package ui

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Runner runs a blocking call while keeping the terminal responsive.
type Runner interface {
	Run(ctx context.Context, message string, fn func(ctx context.Context) error) error
}

// SpinnerRunner shows a bubbletea spinner while fn runs in a command
// goroutine. ctrl+c cancels the context handed to fn; the runner still
// waits for fn to return so no call outlives Run.
type SpinnerRunner struct {
	in  io.Reader
	out io.Writer
}

func NewSpinnerRunner(in io.Reader, out io.Writer) *SpinnerRunner {
	return &SpinnerRunner{in: in, out: out}
}

func (r *SpinnerRunner) Run(ctx context.Context, message string, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(newSpinnerModel(ctx, cancel, message, fn), tea.WithInput(r.in), tea.WithOutput(r.out))
	m, err := p.Run()
	if err != nil {
		return fmt.Errorf("error running spinner: %w", err)
	}
	return m.(spinnerModel).err
}

// LineSpinnerRunner animates a single status line on out. It needs no
// terminal input, so it serves piped sessions that still print to a tty.
type LineSpinnerRunner struct {
	out io.Writer
}

func NewLineSpinnerRunner(out io.Writer) *LineSpinnerRunner {
	return &LineSpinnerRunner{out: out}
}

func (r *LineSpinnerRunner) Run(ctx context.Context, message string, fn func(ctx context.Context) error) error {
	s := NewSmartSpinner(r.out, message)
	s.Start()
	defer s.Stop()
	return fn(ctx)
}

// DirectRunner runs fn inline. Used when the terminal is not interactive.
type DirectRunner struct{}

func (DirectRunner) Run(ctx context.Context, _ string, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type spinnerModel struct {
	ctx     context.Context
	cancel  context.CancelFunc
	fn      func(ctx context.Context) error
	message string

	spinner   spinner.Model
	cancelled bool
	done      bool
	err       error
}

type doneMsg struct{ err error }

func newSpinnerModel(ctx context.Context, cancel context.CancelFunc, message string, fn func(ctx context.Context) error) spinnerModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	return spinnerModel{ctx: ctx, cancel: cancel, fn: fn, message: message, spinner: s}
}

func (m spinnerModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.call)
}

func (m spinnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case doneMsg:
		m.done = true
		m.err = msg.err
		return m, tea.Quit
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" && !m.cancelled {
			m.cancelled = true
			m.cancel()
		}
	}
	return m, nil
}

func (m spinnerModel) View() string {
	if m.done {
		return ""
	}
	return fmt.Sprintf("\n %s %s\n\n", m.spinner.View(), m.message)
}

func (m spinnerModel) call() tea.Msg {
	return doneMsg{err: m.fn(m.ctx)}
}
