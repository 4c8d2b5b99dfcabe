package frame

import (
	"fmt"
	"image/color"

	"github.com/matzehuels/stripview/pkg/canvas"
)

// Supported output formats.
const (
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatJSON = "json"
)

// Formats lists every format accepted by [Render].
var Formats = map[string]bool{FormatSVG: true, FormatPNG: true, FormatJSON: true}

// Palette.
var (
	Background = color.RGBA{R: 0xFA, G: 0xF8, B: 0xF6, A: 0xFF}
	PanelFill  = color.RGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}
	PanelEdge  = color.RGBA{R: 0xE0, G: 0xE0, B: 0xE0, A: 0xFF}
	LabelText  = color.RGBA{R: 0xB0, G: 0xB0, B: 0xB0, A: 0xFF}
	HUDText    = color.RGBA{R: 0x33, G: 0x33, B: 0x33, A: 0xFF}
)

// PanelRadius is the corner radius of a section in content pixels.
const PanelRadius = 8.0

// Frame is the geometry of one rendered view.
type Frame struct {
	Viewport  canvas.Viewport   `json:"viewport"`
	Transform canvas.Transform  `json:"transform"`
	Bounds    canvas.ZoomBounds `json:"zoom_bounds"`
	Container canvas.Rect       `json:"container"`
	Sections  []canvas.Rect     `json:"sections"`

	// Display settings.
	HUD    bool   `json:"-"`
	Labels bool   `json:"-"`
	Phase  string `json:"phase,omitempty"`
}

// Option configures a [Frame].
type Option func(*Frame)

// WithHUD draws the scale and position readout in the top-left corner.
func WithHUD() Option { return func(f *Frame) { f.HUD = true } }

// WithLabels draws "Section N" in the middle of each section.
func WithLabels() Option { return func(f *Frame) { f.Labels = true } }

// WithPhase records the gesture phase shown in the HUD.
func WithPhase(phase string) Option { return func(f *Frame) { f.Phase = phase } }

// New computes the frame for transform t over viewport vp.
func New(cfg canvas.Configuration, vp canvas.Viewport, t canvas.Transform, opts ...Option) Frame {
	f := Frame{
		Viewport:  vp,
		Transform: t,
		Bounds:    canvas.ComputeZoomBounds(vp, cfg),
		Container: canvas.ContainerBounds(t, cfg),
		Sections:  canvas.SectionBounds(t, cfg),
	}
	for _, opt := range opts {
		opt(&f)
	}
	return f
}

// Screen returns the viewport as a rectangle anchored at the origin.
func (f Frame) Screen() canvas.Rect {
	return canvas.Rect{Width: f.Viewport.Width, Height: f.Viewport.Height}
}

// Visible returns the indexes of sections that intersect the viewport.
func (f Frame) Visible() []int {
	screen := f.Screen()
	var out []int
	for i, r := range f.Sections {
		if r.Intersects(screen) {
			out = append(out, i)
		}
	}
	return out
}

// SectionAt returns the index of the section under p, or -1.
func (f Frame) SectionAt(p canvas.Point) int {
	for i, r := range f.Sections {
		if r.Contains(p) {
			return i
		}
	}
	return -1
}

// HUDLines returns the text of the heads-up display.
func (f Frame) HUDLines() []string {
	lines := []string{
		fmt.Sprintf("Scale: %.2f", f.Transform.Scale),
		fmt.Sprintf("Position: %.0f, %.0f", f.Transform.Position.X, f.Transform.Position.Y),
	}
	if f.Phase != "" {
		lines = append(lines, "Pinch: "+f.Phase)
	}
	return lines
}

// Label returns the display label of section i.
func Label(i int) string {
	return fmt.Sprintf("Section %d", i+1)
}
