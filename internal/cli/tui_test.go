package cli

import (
	"context"
	"math"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/stripview/pkg/canvas"
	"github.com/matzehuels/stripview/pkg/gesture"
)

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-6 }

// newTestViewModel returns a 200×51 terminal: 1600×800 virtual pixels plus
// the HUD row.
func newTestViewModel(t *testing.T) *ViewModel {
	t.Helper()
	m := NewViewModel(context.Background(), ViewModelOptions{
		Config:     canvas.DefaultConfiguration(),
		CellWidth:  8,
		CellHeight: 16,
		HUD:        true,
		Labels:     true,
	})
	m.Update(tea.WindowSizeMsg{Width: 200, Height: 51})
	return m
}

func wheel(x, y int, button tea.MouseButton, ctrl bool) tea.MouseMsg {
	return tea.MouseMsg{X: x, Y: y, Button: button, Action: tea.MouseActionPress, Ctrl: ctrl}
}

func TestViewModelFitsOnFirstSize(t *testing.T) {
	m := newTestViewModel(t)
	if vp := m.Viewport(); vp != (canvas.Viewport{Width: 1600, Height: 800}) {
		t.Fatalf("viewport = %+v", vp)
	}
	want := canvas.Initialize(m.Viewport(), canvas.DefaultConfiguration())
	if m.Transform() != want {
		t.Errorf("transform = %v, want %v", m.Transform(), want)
	}

	m.Update(tea.WindowSizeMsg{Width: 100, Height: 26})
	if m.Transform() != want {
		t.Errorf("resize refitted: %v", m.Transform())
	}
}

func TestViewModelWheelPans(t *testing.T) {
	m := newTestViewModel(t)
	start := m.Transform()

	m.Update(wheel(10, 10, tea.MouseButtonWheelDown, false))
	m.Update(wheel(10, 10, tea.MouseButtonWheelRight, false))

	got := m.Transform()
	if got.Scale != start.Scale {
		t.Errorf("wheel changed scale")
	}
	want := canvas.Point{X: start.Position.X + wheelLines*8, Y: start.Position.Y + wheelLines*16}
	if got.Position != want {
		t.Errorf("position = %v, want %v", got.Position, want)
	}
}

func TestViewModelCtrlWheelPinches(t *testing.T) {
	m := newTestViewModel(t)
	start := m.Transform()

	m.Update(wheel(0, 0, tea.MouseButtonWheelUp, true))
	if m.Controller().Phase() != gesture.PhaseActive {
		t.Fatalf("phase = %v, want active", m.Controller().Phase())
	}
	if got := m.Transform().Scale; !approx(got, start.Scale*gesture.DefaultWheelZoomStep) {
		t.Errorf("scale = %v", got)
	}

	// Plain wheel ends the pinch before panning.
	m.Update(wheel(0, 0, tea.MouseButtonWheelDown, false))
	if m.Controller().Phase() != gesture.PhaseIdle {
		t.Errorf("phase = %v, want idle", m.Controller().Phase())
	}
}

func TestViewModelKeys(t *testing.T) {
	m := newTestViewModel(t)
	start := m.Transform()

	m.Update(wheel(5, 5, tea.MouseButtonWheelUp, true))
	zoomed := m.Transform()
	m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if m.Controller().Phase() != gesture.PhaseIdle {
		t.Errorf("esc: phase = %v", m.Controller().Phase())
	}
	if m.Transform() != zoomed {
		t.Errorf("esc changed transform")
	}

	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("r")})
	if m.Transform() != start {
		t.Errorf("r: transform = %v, want %v", m.Transform(), start)
	}

	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("+")})
	if got := m.Transform().Scale; !approx(got, start.Scale*gesture.DefaultWheelZoomStep) {
		t.Errorf("+: scale = %v", got)
	}
	if m.Controller().Phase() != gesture.PhaseIdle {
		t.Errorf("+ should complete its pinch")
	}

	if _, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")}); cmd == nil {
		t.Error("q should quit")
	}
}

func TestViewModelView(t *testing.T) {
	m := newTestViewModel(t)
	out := m.View()

	lines := strings.Split(out, "\n")
	if len(lines) != 51 {
		t.Fatalf("lines = %d, want 51", len(lines))
	}
	for _, want := range []string{"Section 1", "Scale: 0.65", "Pinch: idle"} {
		if !strings.Contains(out, want) {
			t.Errorf("view missing %q", want)
		}
	}

	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("h")})
	if strings.Contains(m.View(), "Scale:") {
		t.Error("h should hide the HUD")
	}
}

func TestViewModelHUDShowsContentUnderPointer(t *testing.T) {
	m := newTestViewModel(t)
	if strings.Contains(m.View(), "Pointer:") {
		t.Fatal("pointer line shown before any mouse input")
	}

	// Cell (10, 10) is virtual pixel (84, 168). At the fit transform the
	// container sits at the screen origin, so content = screen / scale.
	m.Update(tea.MouseMsg{X: 10, Y: 10, Button: tea.MouseButtonNone, Action: tea.MouseActionMotion})
	if want := "Pointer: 129, 257 (Section 1)"; !strings.Contains(m.View(), want) {
		t.Errorf("view missing %q", want)
	}

	// Over the outer padding there is no section.
	m.Update(tea.MouseMsg{X: 1, Y: 1, Button: tea.MouseButtonNone, Action: tea.MouseActionMotion})
	out := m.View()
	if !strings.Contains(out, "Pointer: 18, 37") || strings.Contains(out, "Pointer: 18, 37 (") {
		t.Errorf("padding pointer line wrong in HUD")
	}
}

func TestViewModelEmptyBeforeSize(t *testing.T) {
	m := NewViewModel(context.Background(), ViewModelOptions{Config: canvas.DefaultConfiguration(), CellWidth: 8, CellHeight: 16})
	if m.View() != "" {
		t.Error("view should be empty before the first size message")
	}
}
