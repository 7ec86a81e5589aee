package tui

import (
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
)

func TestNewToastModel(t *testing.T) {
	m := newToastModel()
	if m.active {
		t.Error("new toast should not be active")
	}
	if m.message != "" {
		t.Errorf("message = %q, want empty", m.message)
	}
}

func TestToastShow_Error(t *testing.T) {
	m := newToastModel()
	m, cmd := m.show("✗ ./skills/beta: SKILL.md missing", toastError)

	if !m.active {
		t.Error("toast should be active after show")
	}
	if m.kind != toastError {
		t.Errorf("kind = %d, want toastError (%d)", m.kind, toastError)
	}
	if m.id != 0 || m.nextID != 1 {
		t.Errorf("id/nextID = %d/%d, want 0/1", m.id, m.nextID)
	}
	if cmd == nil {
		t.Error("show(error) should return a cmd for the auto-dismiss timer")
	}
}

func TestToastShow_Loading(t *testing.T) {
	m := newToastModel()
	m, cmd := m.show("Cancelling...", toastLoading)

	if m.kind != toastLoading {
		t.Errorf("kind = %d, want toastLoading (%d)", m.kind, toastLoading)
	}
	if cmd == nil {
		t.Error("show(loading) should return a cmd for the spinner tick")
	}
	if v := m.view(); !strings.Contains(v, "Cancelling...") {
		t.Errorf("view() = %q, should contain message text", v)
	}
}

func TestToastUpdate_DismissMatchingID(t *testing.T) {
	m := newToastModel()
	m, _ = m.show("hello", toastError)

	m, _ = m.update(toastDismissMsg{id: m.id})
	if m.active {
		t.Error("toast should be dismissed when ID matches")
	}
	if v := m.view(); v != "" {
		t.Errorf("view() = %q, want empty after dismiss", v)
	}
}

func TestToastUpdate_DismissStaleID(t *testing.T) {
	m := newToastModel()
	m, _ = m.show("first", toastError)
	staleID := m.id

	m, _ = m.show("second", toastError)
	if m.id == staleID {
		t.Fatal("second toast should have a different ID")
	}

	// A timer from the replaced toast must not hide the new one.
	m, _ = m.update(toastDismissMsg{id: staleID})
	if !m.active {
		t.Error("toast should still be active when dismiss ID is stale")
	}
	if m.message != "second" {
		t.Errorf("message = %q, want %q", m.message, "second")
	}
}

func TestToastView(t *testing.T) {
	m := newToastModel()
	if v := m.view(); v != "" {
		t.Errorf("view() = %q, want empty when inactive", v)
	}

	m, _ = m.show("something failed", toastError)
	v := m.view()
	if !strings.Contains(v, "something failed") {
		t.Errorf("view() = %q, should contain message text", v)
	}
	if !strings.HasPrefix(v, " ") {
		t.Errorf("view() = %q, should start with space indent", v)
	}
}

func TestToastUpdate_SpinnerTickIgnoredWhenNotLoading(t *testing.T) {
	m := newToastModel()
	m, _ = m.show("failed", toastError)

	m2, cmd := m.update(spinner.TickMsg{Time: time.Now()})
	if cmd != nil {
		t.Error("spinner tick on non-loading toast should return nil cmd")
	}
	if m2.message != m.message || m2.active != m.active {
		t.Error("spinner tick on non-loading toast should not change state")
	}
}

func TestToastShow_ErrorThenLoading_ReplacesKind(t *testing.T) {
	m := newToastModel()
	m, _ = m.show("failed", toastError)
	m, _ = m.show("Cancelling...", toastLoading)

	if m.kind != toastLoading {
		t.Errorf("kind = %d, want toastLoading (%d)", m.kind, toastLoading)
	}
	if m.message != "Cancelling..." {
		t.Errorf("message = %q, want %q", m.message, "Cancelling...")
	}
}
