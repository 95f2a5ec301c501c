// Package bubbleteaprog follows a resampling job with a bubbletea progress bar.
package bubbleteaprog

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/srlehn/upscaler/internal/errors"
	"github.com/srlehn/upscaler/job"
)

const (
	padding  = 2
	maxWidth = 80
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true)
	helpStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color(`#626262`))
	errStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color(`#ff5f5f`))
)

type keyMap struct {
	Cancel key.Binding
}

var keys = keyMap{
	Cancel: key.NewBinding(
		key.WithKeys(`q`, `esc`, `ctrl+c`),
		key.WithHelp(`q`, `cancel`),
	),
}

// ProgressMsg carries a progress report of the job in percent.
type ProgressMsg int

// DoneMsg carries the terminal outcome of the job.
type DoneMsg struct{ Outcome job.Outcome }

var _ tea.Model = (*Model)(nil)

// Model shows the progress of one job. The cancel key requests a cooperative
// cancellation, pressing it again quits without waiting.
type Model struct {
	handle     *job.Handle
	bar        progress.Model
	keys       keyMap
	title      string
	percent    int
	cancelling bool
	outcome    *job.Outcome
}

func New(h *job.Handle, title string) *Model {
	return &Model{
		handle: h,
		bar:    progress.New(progress.WithDefaultGradient()),
		keys:   keys,
		title:  title,
	}
}

// Percent returns the last reported progress.
func (m *Model) Percent() int { return m.percent }

// Outcome returns the terminal outcome once the job finished.
func (m *Model) Outcome() (job.Outcome, bool) {
	if m.outcome == nil {
		return job.Outcome{}, false
	}
	return *m.outcome, true
}

func (m *Model) Init() tea.Cmd { return waitProgress(m.handle) }

// waitProgress reads the next report, a closed stream yields the outcome.
func waitProgress(h *job.Handle) tea.Cmd {
	if h == nil {
		return nil
	}
	return func() tea.Msg {
		if p, ok := <-h.Progress(); ok {
			return ProgressMsg(p)
		}
		o, _ := h.Outcome()
		return DoneMsg{Outcome: o}
	}
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.bar.Width = min(msg.Width-padding*2-4, maxWidth)
		return m, nil
	case tea.KeyMsg:
		if !key.Matches(msg, m.keys.Cancel) {
			return m, nil
		}
		if m.cancelling {
			return m, tea.Quit
		}
		m.cancelling = true
		if m.handle != nil {
			_ = m.handle.Cancel()
		}
		return m, nil
	case ProgressMsg:
		m.percent = int(msg)
		return m, tea.Batch(m.bar.SetPercent(float64(msg)/100), waitProgress(m.handle))
	case DoneMsg:
		o := msg.Outcome
		m.outcome = &o
		if o.State == job.StateCompleted {
			m.percent = 100
		}
		return m, tea.Sequence(m.bar.SetPercent(float64(m.percent)/100), tea.Quit)
	case progress.FrameMsg:
		bar, cmd := m.bar.Update(msg)
		m.bar = bar.(progress.Model)
		return m, cmd
	}
	return m, nil
}

func (m *Model) View() string {
	pad := strings.Repeat(` `, padding)
	var status string
	switch {
	case m.outcome != nil && m.outcome.State == job.StateFailed:
		status = errStyle.Render(wordwrap.String(fmt.Sprintf(`failed: %v`, m.outcome.Err), max(m.bar.Width, 20)))
	case m.outcome != nil:
		status = helpStyle.Render(m.outcome.State.String())
	case m.cancelling:
		status = helpStyle.Render(`cancelling… press ` + m.keys.Cancel.Help().Key + ` again to quit`)
	default:
		status = helpStyle.Render(fmt.Sprintf(`%3d%%  press %s to %s`, m.percent, m.keys.Cancel.Help().Key, m.keys.Cancel.Help().Desc))
	}
	return "\n" + pad + titleStyle.Render(m.title) + "\n\n" +
		pad + m.bar.View() + "\n\n" +
		pad + status + "\n"
}

// Run shows the progress of h until it finished and returns its outcome.
// Quitting the program early cancels the job and still waits for it.
func Run(ctx context.Context, h *job.Handle, title string, in io.Reader, out io.Writer) (job.Outcome, error) {
	if h == nil {
		return job.Outcome{}, errors.NilParam()
	}
	if ctx == nil {
		ctx = context.Background()
	}
	teaOpts := []tea.ProgramOption{tea.WithContext(ctx)}
	if in != nil {
		teaOpts = append(teaOpts, tea.WithInput(in))
	}
	if out != nil {
		teaOpts = append(teaOpts, tea.WithOutput(out))
	}
	mdl := New(h, title)
	if _, err := tea.NewProgram(mdl, teaOpts...).Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		_ = h.Cancel()
		_, _ = h.Wait(context.Background())
		return job.Outcome{}, errors.New(err)
	}
	if o, ok := mdl.Outcome(); ok {
		return o, o.Err
	}
	_ = h.Cancel()
	return h.Wait(context.Background())
}
