package tui

import (
	"errors"
	"strings"
	"testing"
)

func TestModelTracksSteps(t *testing.T) {
	m := NewModel("file:///repo/composite")

	next, _ := m.Update(StepMsg{Label: "Loading destination repositories"})
	m = next.(Model)
	next, _ = m.Update(StepMsg{Label: "Saving repositories"})
	m = next.(Model)

	view := m.View()
	if !strings.Contains(view, "Loading destination repositories") || !strings.Contains(view, "Saving repositories") {
		t.Fatalf("expected both steps in view:\n%s", view)
	}
	if !strings.Contains(view, "file:///repo/composite") {
		t.Fatalf("expected location in view:\n%s", view)
	}

	next, cmd := m.Update(DoneMsg{})
	m = next.(Model)
	if !m.Finished || m.Err != nil {
		t.Fatalf("expected finished model without error")
	}
	if cmd == nil {
		t.Fatalf("expected quit command")
	}
	if len(m.done) != 2 {
		t.Fatalf("expected 2 completed steps, got %d", len(m.done))
	}
}

func TestModelShowsVerifyProgress(t *testing.T) {
	m := NewModel("loc")
	next, _ := m.Update(StepMsg{Label: "Validating child repositories"})
	m = next.(Model)
	next, _ = m.Update(VerifyProgressMsg{Current: 1, Total: 4})
	m = next.(Model)

	if !strings.Contains(m.View(), "1/4") {
		t.Fatalf("expected progress counter in view:\n%s", m.View())
	}
}

func TestModelKeepsFailedStep(t *testing.T) {
	m := NewModel("loc")
	next, _ := m.Update(StepMsg{Label: "Saving repositories"})
	m = next.(Model)
	next, _ = m.Update(DoneMsg{Err: errors.New("disk full")})
	m = next.(Model)

	if m.Err == nil || len(m.done) != 0 {
		t.Fatalf("failed step should not be marked done")
	}
	if !strings.Contains(m.View(), iconError) {
		t.Fatalf("expected error icon in view:\n%s", m.View())
	}
}
