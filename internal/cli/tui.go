package cli

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/stripview/pkg/canvas"
	"github.com/matzehuels/stripview/pkg/gesture"
	"github.com/matzehuels/stripview/pkg/render/frame"
)

// Cell styles for the terminal viewer.
var (
	viewBackgroundStyle = lipgloss.NewStyle().Background(lipgloss.Color("#FAF8F6"))
	viewPaddingStyle    = lipgloss.NewStyle().Background(lipgloss.Color("#F0EEEC"))
	viewPanelStyles     = []lipgloss.Style{
		lipgloss.NewStyle().Background(lipgloss.Color("#FFFFFF")).Foreground(lipgloss.Color("#B0B0B0")),
		lipgloss.NewStyle().Background(lipgloss.Color("#F4F4F4")).Foreground(lipgloss.Color("#B0B0B0")),
	}
	viewHUDStyle  = lipgloss.NewStyle().Foreground(colorWhite).Background(lipgloss.Color("236"))
	viewHelpStyle = lipgloss.NewStyle().Foreground(colorGray).Background(lipgloss.Color("236"))
)

// wheelLines is how many cell rows (or columns) one wheel notch pans.
const wheelLines = 3

// cellKind classifies what a terminal cell shows.
type cellKind int

const (
	cellBackground cellKind = -2
	cellPadding    cellKind = -1
	// Values >= 0 are section indexes.
)

// ViewModel is the bubbletea model of the terminal viewer. Terminal cells
// map to virtual pixels of CellWidth × CellHeight; the last row holds the
// HUD.
type ViewModel struct {
	ctx    context.Context
	cfg    canvas.Configuration
	cellW  float64
	cellH  float64
	cols   int
	rows   int
	fitted bool
	hud    bool
	labels bool

	// pointer is the last mouse position in virtual pixels, nil until the
	// mouse is seen.
	pointer *canvas.Point

	store *canvas.Store
	ctrl  *gesture.Controller
	wheel *gesture.WheelTracker
	zoom  *gesture.WheelPinchTracker
}

// ViewModelOptions configures [NewViewModel].
type ViewModelOptions struct {
	Config     canvas.Configuration
	CellWidth  float64
	CellHeight float64
	WheelStep  float64
	HUD        bool
	Labels     bool
	Controller []gesture.Option
}

// NewViewModel creates a viewer. The transform is fitted on the first
// window size message.
func NewViewModel(ctx context.Context, opts ViewModelOptions) *ViewModel {
	m := &ViewModel{
		ctx:    ctx,
		cfg:    opts.Config,
		cellW:  opts.CellWidth,
		cellH:  opts.CellHeight,
		hud:    opts.HUD,
		labels: opts.Labels,
		store:  canvas.NewStore(canvas.Transform{Scale: 1}),
	}
	surface := &gesture.TransformSurface{
		Source: canvas.ViewportFunc(m.Viewport),
		Store:  m.store,
		Config: opts.Config,
	}
	m.ctrl = gesture.NewController(m.store, surface, opts.Config, opts.Controller...)
	m.wheel = gesture.NewWheelTracker(m.ctrl)
	m.zoom = gesture.NewWheelPinchTracker(m.ctrl, opts.WheelStep)
	return m
}

// Viewport returns the virtual pixel size of the drawing area.
func (m *ViewModel) Viewport() canvas.Viewport {
	return canvas.Viewport{
		Width:  float64(m.cols) * m.cellW,
		Height: float64(m.drawRows()) * m.cellH,
	}
}

// Transform returns the current transform.
func (m *ViewModel) Transform() canvas.Transform { return m.store.Current() }

// Controller returns the gesture controller.
func (m *ViewModel) Controller() *gesture.Controller { return m.ctrl }

func (m *ViewModel) drawRows() int {
	if m.hud {
		return max(m.rows-1, 0)
	}
	return m.rows
}

// cellCenter returns the virtual pixel at the center of a cell.
func (m *ViewModel) cellCenter(x, y int) canvas.Point {
	return canvas.Point{X: (float64(x) + 0.5) * m.cellW, Y: (float64(y) + 0.5) * m.cellH}
}

func (m *ViewModel) Init() tea.Cmd { return nil }

func (m *ViewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.cols, m.rows = msg.Width, msg.Height
		if !m.fitted && m.Viewport().Validate() == nil {
			m.fitted = true
			m.ctrl.Fit(m.ctx)
		}

	case tea.MouseMsg:
		m.handleMouse(msg)

	case tea.KeyMsg:
		m.wheel.End()
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "esc":
			m.zoom.End()
			m.ctrl.CancelPinch(m.ctx)
		case "r":
			m.zoom.End()
			m.ctrl.Fit(m.ctx)
		case "+", "=":
			m.zoomOnce(-1)
		case "-", "_":
			m.zoomOnce(1)
		case "h":
			m.hud = !m.hud
		case "l":
			m.labels = !m.labels
		}
	}
	return m, nil
}

func (m *ViewModel) handleMouse(msg tea.MouseMsg) {
	origin := m.cellCenter(msg.X, msg.Y)
	m.pointer = &origin

	var dx, dy, notches float64
	switch msg.Button {
	case tea.MouseButtonWheelUp:
		dy, notches = -wheelLines*m.cellH, -1
	case tea.MouseButtonWheelDown:
		dy, notches = wheelLines*m.cellH, 1
	case tea.MouseButtonWheelLeft:
		dx = -wheelLines * m.cellW
	case tea.MouseButtonWheelRight:
		dx = wheelLines * m.cellW
	default:
		// Any other mouse input closes both wheel gestures.
		m.wheel.End()
		m.endZoom()
		return
	}

	if msg.Ctrl && notches != 0 {
		m.wheel.End()
		m.ctrl.HandlePinch(m.ctx, m.zoom.Zoom(origin, notches, nil))
		return
	}
	m.endZoom()
	m.ctrl.HandleWheel(m.ctx, m.wheel.Scroll(dx, dy, nil))
}

// endZoom closes a ctrl+wheel pinch with its final sample.
func (m *ViewModel) endZoom() {
	if p, ok := m.zoom.End(); ok {
		m.ctrl.HandlePinch(m.ctx, p)
	}
}

// zoomOnce runs a complete one-notch pinch at the viewport center.
func (m *ViewModel) zoomOnce(notches float64) {
	m.endZoom()
	vp := m.Viewport()
	m.ctrl.HandlePinch(m.ctx, m.zoom.Zoom(canvas.Point{X: vp.Width / 2, Y: vp.Height / 2}, notches, nil))
	m.endZoom()
}

// frame returns the geometry of the current view.
func (m *ViewModel) frame() frame.Frame {
	return frame.New(m.cfg, m.Viewport(), m.store.Current(), frame.WithPhase(m.ctrl.Phase().String()))
}

func (m *ViewModel) View() string {
	if m.cols <= 0 || m.rows <= 0 {
		return ""
	}
	f := m.frame()

	var b strings.Builder
	kinds := make([]cellKind, m.cols)
	runes := make([]rune, m.cols)
	for y := 0; y < m.drawRows(); y++ {
		for x := 0; x < m.cols; x++ {
			p := m.cellCenter(x, y)
			runes[x] = ' '
			switch i := f.SectionAt(p); {
			case i >= 0:
				kinds[x] = cellKind(i)
			case f.Container.Contains(p):
				kinds[x] = cellPadding
			default:
				kinds[x] = cellBackground
			}
		}
		if m.labels {
			m.overlayLabels(f, y, kinds, runes)
		}
		writeRuns(&b, kinds, runes)
		b.WriteByte('\n')
	}

	if m.hud {
		lines := f.HUDLines()
		if s, ok := m.pointerLine(f); ok {
			lines = append(lines, s)
		}
		hud := strings.Join(lines, "  ·  ")
		help := "  wheel pan · ctrl+wheel zoom · esc cancel · r fit · q quit"
		line := viewHUDStyle.Render(" "+hud) + viewHelpStyle.Render(help)
		b.WriteString(lipgloss.NewStyle().MaxWidth(m.cols).Render(line))
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// pointerLine describes the content point under the mouse and the section
// containing it.
func (m *ViewModel) pointerLine(f frame.Frame) (string, bool) {
	if m.pointer == nil {
		return "", false
	}
	p, err := canvas.ScreenToContent(f.Transform, m.cfg, *m.pointer)
	if err != nil {
		return "", false
	}
	s := fmt.Sprintf("Pointer: %.0f, %.0f", p.X, p.Y)
	if i := f.SectionAt(*m.pointer); i >= 0 {
		s += " (" + frame.Label(i) + ")"
	}
	return s, true
}

// overlayLabels writes section labels into the row whose band contains
// each section's vertical center.
func (m *ViewModel) overlayLabels(f frame.Frame, y int, kinds []cellKind, runes []rune) {
	top, bottom := float64(y)*m.cellH, float64(y+1)*m.cellH
	for i, r := range f.Sections {
		c := r.Center()
		if c.Y < top || c.Y >= bottom {
			continue
		}
		label := []rune(frame.Label(i))
		start := int(c.X/m.cellW) - len(label)/2
		for j, ch := range label {
			x := start + j
			if x >= 0 && x < len(runes) && kinds[x] == cellKind(i) {
				runes[x] = ch
			}
		}
	}
}

// writeRuns renders consecutive cells of the same kind with one style call.
func writeRuns(b *strings.Builder, kinds []cellKind, runes []rune) {
	for start := 0; start < len(kinds); {
		end := start + 1
		for end < len(kinds) && kinds[end] == kinds[start] {
			end++
		}
		b.WriteString(cellStyle(kinds[start]).Render(string(runes[start:end])))
		start = end
	}
}

func cellStyle(k cellKind) lipgloss.Style {
	switch {
	case k == cellBackground:
		return viewBackgroundStyle
	case k == cellPadding:
		return viewPaddingStyle
	default:
		return viewPanelStyles[int(k)%len(viewPanelStyles)]
	}
}
