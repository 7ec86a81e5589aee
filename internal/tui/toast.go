package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// toastType defines the visual style and behavior of a toast notification.
type toastType int

const (
	toastError   toastType = iota
	toastLoading           // Shows a spinner; persists until replaced or dismissed.
)

// toastAutoDismiss is how long error toasts stay visible.
const toastAutoDismiss = 3 * time.Second

// toastModel shows one short message under the progress bar: the latest
// skill failure, or a persistent notice such as "Cancelling...".
// Showing a new toast replaces the previous one.
type toastModel struct {
	active  bool
	message string
	kind    toastType
	id      int // Monotonic ID to ignore stale dismiss messages.

	spinner spinner.Model

	nextID int
}

// toastDismissMsg is sent by the auto-dismiss timer.
type toastDismissMsg struct {
	id int
}

func newToastModel() toastModel {
	s := spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(spinnerStyle),
	)
	return toastModel{
		spinner: s,
	}
}

// show displays a new toast, replacing any existing one.
func (m toastModel) show(message string, kind toastType) (toastModel, tea.Cmd) {
	m.active = true
	m.message = message
	m.kind = kind
	m.id = m.nextID
	m.nextID++

	switch kind {
	case toastLoading:
		return m, m.spinner.Tick
	default:
		id := m.id
		return m, tea.Tick(toastAutoDismiss, func(_ time.Time) tea.Msg {
			return toastDismissMsg{id: id}
		})
	}
}

// dismiss hides the toast immediately.
func (m toastModel) dismiss() toastModel {
	m.active = false
	m.message = ""
	return m
}

// update handles spinner ticks and auto-dismiss messages.
func (m toastModel) update(msg tea.Msg) (toastModel, tea.Cmd) {
	switch msg := msg.(type) {
	case toastDismissMsg:
		if msg.id == m.id {
			m = m.dismiss()
		}
		return m, nil

	case spinner.TickMsg:
		if m.active && m.kind == toastLoading {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
	}

	return m, nil
}

// view renders the toast with a 1 char indent, or "" when inactive.
func (m toastModel) view() string {
	if !m.active {
		return ""
	}
	if m.kind == toastLoading {
		return " " + m.spinner.View() + mutedStyle.Render(m.message)
	}
	return " " + errorStyle.Render(m.message)
}
