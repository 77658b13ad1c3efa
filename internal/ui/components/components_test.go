package components

import (
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"
)

func TestProgressBarFilled(t *testing.T) {
	tests := []struct {
		percent float64
		width   int
		want    int
	}{
		{1.0 / 3, 30, 10},
		{2.0 / 3, 30, 20},
		{1, 30, 30},
		{1.5, 30, 30},
		{-0.2, 30, 0},
	}
	for _, tt := range tests {
		p := NewProgressBar("", tt.percent, false, tt.width)
		if got := p.Filled(tt.width); got != tt.want {
			t.Errorf("Filled(%v of %d) = %d, want %d", tt.percent, tt.width, got, tt.want)
		}
	}
}

func TestButtonDisabledIgnoresEnter(t *testing.T) {
	pressed := 0
	b := NewButton("Run Luck Draw", true, func() tea.Cmd {
		pressed++
		return nil
	})

	b.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	b.Disabled = true
	b.Update(tea.KeyPressMsg{Code: tea.KeyEnter})

	if pressed != 1 {
		t.Errorf("pressed = %d, want 1", pressed)
	}
	if !strings.Contains(b.View(), "Run Luck Draw") {
		t.Error("expected label in view")
	}
}

func TestTextInputError(t *testing.T) {
	ti := NewTextInput("e.g., Jane Doe", 40)
	ti.SetError("Please enter your full name.")
	if !strings.Contains(ti.View(), "Please enter your full name.") {
		t.Error("expected error under the input")
	}

	ti, _ = ti.Update(tea.KeyPressMsg{Code: 'J', Text: "J"})
	if ti.Error() != "" {
		t.Errorf("expected error cleared on edit, got %q", ti.Error())
	}
	if ti.Value() != "J" {
		t.Errorf("value = %q, want %q", ti.Value(), "J")
	}

	ti.Reset()
	if ti.Value() != "" {
		t.Errorf("value after reset = %q", ti.Value())
	}
}
