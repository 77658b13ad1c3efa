package app

import (
	"context"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/reward/internal/media"
	"github.com/abhisek/reward/internal/router"
	"github.com/abhisek/reward/internal/wizard"
)

func testModel(t *testing.T) (AppModel, *wizard.Flow) {
	t.Helper()
	flow, err := wizard.New(wizard.DefaultConfig(), media.NewMockPlayer(nil))
	if err != nil {
		t.Fatalf("new flow: %v", err)
	}
	m := newAppModel(context.Background(), Options{Flow: flow})
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return updated.(AppModel), flow
}

func TestAppModel_CtrlCQuits(t *testing.T) {
	m, _ := testModel(t)
	_, cmd := m.Update(tea.KeyPressMsg{Code: 'c', Mod: tea.ModCtrl})
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg")
	}
}

func TestAppModel_EscAtRootReachesScreen(t *testing.T) {
	m, flow := testModel(t)
	if err := flow.SetIdentity("Jane Doe"); err != nil {
		t.Fatal(err)
	}
	if _, err := flow.Advance(context.Background()); err != nil {
		t.Fatal(err)
	}

	m.Update(tea.KeyPressMsg{Code: tea.KeyEscape})

	if flow.Step() != wizard.StepDetails {
		t.Errorf("step = %v, want details after esc on draw", flow.Step())
	}
}

func TestAppModel_ViewShowsHeaderAndHints(t *testing.T) {
	m, flow := testModel(t)
	view := m.render()

	for _, want := range []string{"Reward Centre", "Secure • Real-time • Beta", "Enter Details", flow.Snapshot().Session.Token.Label, "Continue"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestAppModel_TooSmall(t *testing.T) {
	m, _ := testModel(t)
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 40, Height: 10})
	if !strings.Contains(updated.(AppModel).render(), "Terminal too small") {
		t.Error("expected min-size message")
	}
}

func TestAppModel_PopReturnsToWizard(t *testing.T) {
	m, _ := testModel(t)
	depth := m.router.Depth()
	m.Update(router.PopScreenMsg{})
	if m.router.Depth() != depth {
		t.Errorf("depth = %d, want %d ", m.router.Depth(), depth)
	}
}
