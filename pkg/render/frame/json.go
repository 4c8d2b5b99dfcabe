package frame

import (
	"encoding/json"

	"github.com/matzehuels/stripview/pkg/canvas"
)

type jsonOutput struct {
	Viewport  canvas.Viewport   `json:"viewport"`
	Transform canvas.Transform  `json:"transform"`
	Bounds    canvas.ZoomBounds `json:"zoom_bounds"`
	Container canvas.Rect       `json:"container"`
	Sections  []jsonSection     `json:"sections"`
	Phase     string            `json:"phase,omitempty"`
}

type jsonSection struct {
	Index   int         `json:"index"`
	Label   string      `json:"label"`
	Rect    canvas.Rect `json:"rect"`
	Visible bool        `json:"visible"`
}

// RenderJSON exports the frame geometry as pretty-printed JSON.
func RenderJSON(f Frame) ([]byte, error) {
	screen := f.Screen()
	out := jsonOutput{
		Viewport:  f.Viewport,
		Transform: f.Transform,
		Bounds:    f.Bounds,
		Container: f.Container,
		Sections:  make([]jsonSection, len(f.Sections)),
		Phase:     f.Phase,
	}
	for i, r := range f.Sections {
		out.Sections[i] = jsonSection{Index: i, Label: Label(i), Rect: r, Visible: r.Intersects(screen)}
	}
	return json.MarshalIndent(out, "", "  ")
}
