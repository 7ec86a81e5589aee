// Package tui renders the live progress view shown by --progress.
package tui

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/barysiuk/skillpack/internal/core"
	"github.com/barysiuk/skillpack/internal/logger"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

const barWidth = 40

// eventMsg carries one orchestrator event into the program.
type eventMsg core.Event

// runDoneMsg is sent once the run has returned.
type runDoneMsg struct{}

// progressModel renders a spinner with the current skill, a progress bar
// and the latest failure.
type progressModel struct {
	label   string
	bar     progress.Model
	spinner spinner.Model
	toast   toastModel
	cancel  context.CancelFunc

	total      int
	done       int
	failed     int
	current    string
	cancelling bool
	finished   bool
}

func newProgressModel(label string, cancel context.CancelFunc) progressModel {
	return progressModel{
		label: label,
		bar: progress.New(
			progress.WithDefaultGradient(),
			progress.WithWidth(barWidth),
			progress.WithoutPercentage(),
		),
		spinner: spinner.New(
			spinner.WithSpinner(spinner.Dot),
			spinner.WithStyle(spinnerStyle),
		),
		toast:  newToastModel(),
		cancel: cancel,
	}
}

func (m progressModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if key.Matches(msg, keys.Cancel) && !m.cancelling {
			m.cancelling = true
			if m.cancel != nil {
				m.cancel()
			}
			var cmd tea.Cmd
			m.toast, cmd = m.toast.show("Cancelling, waiting for running skills...", toastLoading)
			return m, cmd
		}
		return m, nil

	case eventMsg:
		return m.handleEvent(core.Event(msg))

	case runDoneMsg:
		m.finished = true
		return m, tea.Quit

	case spinner.TickMsg:
		var cmds []tea.Cmd
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)
		m.toast, cmd = m.toast.update(msg)
		cmds = append(cmds, cmd)
		return m, tea.Batch(cmds...)

	case toastDismissMsg:
		var cmd tea.Cmd
		m.toast, cmd = m.toast.update(msg)
		return m, cmd
	}

	return m, nil
}

func (m progressModel) handleEvent(e core.Event) (tea.Model, tea.Cmd) {
	switch e.Kind {
	case core.RunStarted:
		m.total = e.Total
	case core.SkillStarted:
		m.current = e.OutputName
		if m.current == "" {
			m.current = e.Skill
		}
	case core.SkillSucceeded:
		m.done++
	case core.SkillFailed:
		m.done++
		m.failed++
		if !m.cancelling {
			var cmd tea.Cmd
			m.toast, cmd = m.toast.show(fmt.Sprintf("✗ %s: %v", e.Skill, e.Err), toastError)
			return m, cmd
		}
	case core.RunFinished:
		m.current = ""
	}
	return m, nil
}

// percent is the completed share of the run, 0 before the total is known.
func (m progressModel) percent() float64 {
	if m.total == 0 {
		return 0
	}
	return float64(m.done) / float64(m.total)
}

func (m progressModel) View() string {
	if m.finished {
		return ""
	}

	var b strings.Builder
	b.WriteString(" ")
	b.WriteString(m.spinner.View())
	b.WriteString(labelStyle.Render(m.label))
	if m.current != "" {
		b.WriteString(" " + m.current)
	}
	b.WriteString("\n ")
	b.WriteString(m.bar.ViewAs(m.percent()))
	b.WriteString(mutedStyle.Render(fmt.Sprintf(" %d/%d", m.done, m.total)))
	if m.failed > 0 {
		b.WriteString(" " + errorStyle.Render(fmt.Sprintf("%d failed", m.failed)))
	} else if m.done > 0 {
		b.WriteString(" " + okStyle.Render("ok"))
	}
	b.WriteString("\n")
	if t := m.toast.view(); t != "" {
		b.WriteString(t)
		b.WriteString("\n")
	}
	return b.String()
}

// RunFunc performs a run, reporting events to obs.
type RunFunc func(ctx context.Context, obs core.Observer) (*core.RunStats, error)

// RunWithProgress executes run while rendering a progress view to out.
// Pressing q or ctrl+c cancels the context passed to run. The view is
// cleared when the run ends so the caller can print its report.
func RunWithProgress(ctx context.Context, out io.Writer, label string, run RunFunc, opts ...tea.ProgramOption) (*core.RunStats, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	opts = append([]tea.ProgramOption{tea.WithOutput(out)}, opts...)
	p := tea.NewProgram(newProgressModel(label, cancel), opts...)

	var (
		stats  *core.RunStats
		runErr error
	)
	done := make(chan struct{})
	go func() {
		defer close(done)
		stats, runErr = run(ctx, func(e core.Event) { p.Send(eventMsg(e)) })
		p.Send(runDoneMsg{})
	}()

	if _, err := p.Run(); err != nil {
		logger.G(ctx).WithError(err).Warn("progress view stopped; waiting for the run to finish")
	}
	<-done
	return stats, runErr
}
