package server

import (
	"encoding/json"
	"fmt"

	"github.com/matzehuels/stripview/pkg/canvas"
	"github.com/matzehuels/stripview/pkg/gesture"
)

// pair is a point encoded as [x, y].
type pair [2]float64

func (p pair) point() canvas.Point { return canvas.Point{X: p[0], Y: p[1]} }

// UnmarshalJSON rejects arrays of the wrong length.
func (p *pair) UnmarshalJSON(data []byte) error {
	var raw []float64
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if len(raw) != 2 {
		return fmt.Errorf("point must have 2 coordinates, got %d", len(raw))
	}
	p[0], p[1] = raw[0], raw[1]
	return nil
}

type viewportRequest struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

func (v viewportRequest) viewport() canvas.Viewport {
	return canvas.Viewport{Width: v.Width, Height: v.Height}
}

// pinchRequest carries either an origin with an absolute scale or two
// pointer positions.
type pinchRequest struct {
	Origin   *pair   `json:"origin,omitempty"`
	Scale    float64 `json:"scale,omitempty"`
	Rotation float64 `json:"rotation,omitempty"`
	Pointers []pair  `json:"pointers,omitempty"`
	Last     bool    `json:"last,omitempty"`
}

// wheelRequest carries either an absolute offset or a relative delta.
// End closes a delta gesture so the next delta rebases.
type wheelRequest struct {
	Offset *pair `json:"offset,omitempty"`
	Delta  *pair `json:"delta,omitempty"`
	End    bool  `json:"end,omitempty"`
}

// stateResponse describes a session.
type stateResponse struct {
	ID        string            `json:"id"`
	Viewport  canvas.Viewport   `json:"viewport"`
	Transform canvas.Transform  `json:"transform"`
	Bounds    canvas.ZoomBounds `json:"zoom_bounds"`
	Container canvas.Rect       `json:"container"`
	Phase     string            `json:"phase"`
	Memo      *gesture.Memo     `json:"memo,omitempty"`
}

type geometryResponse struct {
	Viewport  canvas.Viewport      `json:"viewport"`
	Config    canvas.Configuration `json:"config"`
	Extent    canvas.Size          `json:"extent"`
	Initial   canvas.Transform     `json:"initial"`
	Bounds    canvas.ZoomBounds    `json:"zoom_bounds"`
	Container canvas.Rect          `json:"container"`
	Sections  []canvas.Rect        `json:"sections"`
}

type healthResponse struct {
	Status   string `json:"status"`
	Version  string `json:"version"`
	Sessions int    `json:"sessions"`
}
