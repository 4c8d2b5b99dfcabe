package gesture

import (
	"math"

	"github.com/matzehuels/stripview/pkg/canvas"
)

// DefaultWheelZoomStep is the scale factor applied per ctrl+wheel notch.
const DefaultWheelZoomStep = 1.1

// PinchSource supplies the starting conditions of a pinch.
type PinchSource interface {
	PinchConfig() PinchConfig
}

// WheelSource supplies the starting position of a wheel gesture.
type WheelSource interface {
	WheelFrom() canvas.Point
}

// WheelTracker turns relative wheel deltas into absolute offsets.
//
// The first Scroll of a gesture rebases on the source's current position;
// later deltas accumulate on top of that base until End is called. Positive
// deltas move the viewport right and down over the content.
type WheelTracker struct {
	src    WheelSource
	from   canvas.Point
	acc    canvas.Point
	active bool
}

// NewWheelTracker creates a tracker reading its base from src.
func NewWheelTracker(src WheelSource) *WheelTracker {
	return &WheelTracker{src: src}
}

// Scroll records a wheel delta and returns the sample to apply.
func (t *WheelTracker) Scroll(dx, dy float64, ev Event) Wheel {
	if !t.active {
		t.from = t.src.WheelFrom()
		t.acc = canvas.Point{}
		t.active = true
	}
	t.acc = t.acc.Add(canvas.Point{X: dx, Y: dy})
	return Wheel{Offset: t.from.Add(t.acc), Event: ev}
}

// End finishes the current wheel gesture. The next Scroll rebases.
func (t *WheelTracker) End() { t.active = false }

// Active reports whether a wheel gesture is in progress.
func (t *WheelTracker) Active() bool { return t.active }

// WheelPinchTracker turns ctrl+wheel notches into pinch samples, which is
// how desktop trackpads and browsers report pinch.
type WheelPinchTracker struct {
	src    PinchSource
	step   float64
	cfg    PinchConfig
	scale  float64
	origin canvas.Point
	active bool
}

// NewWheelPinchTracker creates a tracker. A step of 1 or less selects
// [DefaultWheelZoomStep].
func NewWheelPinchTracker(src PinchSource, step float64) *WheelPinchTracker {
	if step <= 1 {
		step = DefaultWheelZoomStep
	}
	return &WheelPinchTracker{src: src, step: step}
}

// Zoom records notches of ctrl+wheel at origin. Negative notches (wheel up)
// zoom in. The returned sample's scale is clamped to the bounds captured at
// gesture start.
func (t *WheelPinchTracker) Zoom(origin canvas.Point, notches float64, ev Event) Pinch {
	if !t.active {
		t.cfg = t.src.PinchConfig()
		t.scale = t.cfg.From
		t.active = true
	}
	t.scale = t.cfg.Bounds.Clamp(t.scale * math.Pow(t.step, -notches))
	t.origin = origin
	return Pinch{Origin: origin, Offset: Offset{Scale: t.scale}, Event: ev}
}

// End returns the closing sample of the gesture, flagged Last, or false
// when no gesture is in progress.
func (t *WheelPinchTracker) End() (Pinch, bool) {
	if !t.active {
		return Pinch{}, false
	}
	t.active = false
	return Pinch{Origin: t.origin, Offset: Offset{Scale: t.scale}, Last: true}, true
}

// Active reports whether a gesture is in progress.
func (t *WheelPinchTracker) Active() bool { return t.active }

// Bounds returns the zoom bounds captured at gesture start.
func (t *WheelPinchTracker) Bounds() canvas.ZoomBounds { return t.cfg.Bounds }

// PointerPinchTracker turns two touch contacts into pinch samples. The
// origin is the contacts' midpoint; the scale follows the ratio of the
// current contact distance to the distance at gesture start.
type PointerPinchTracker struct {
	src          PinchSource
	cfg          PinchConfig
	initialDist  float64
	initialAngle float64
	last         Pinch
	active       bool
}

// NewPointerPinchTracker creates a tracker reading its bounds from src.
func NewPointerPinchTracker(src PinchSource) *PointerPinchTracker {
	return &PointerPinchTracker{src: src}
}

// Move records the current positions of both contacts.
func (t *PointerPinchTracker) Move(p0, p1 canvas.Point, ev Event) Pinch {
	mid := canvas.Point{X: (p0.X + p1.X) / 2, Y: (p0.Y + p1.Y) / 2}
	dx := p1.X - p0.X
	dy := p1.Y - p0.Y
	dist := math.Sqrt(dx*dx + dy*dy)
	angle := math.Atan2(dy, dx)

	if !t.active {
		t.cfg = t.src.PinchConfig()
		t.initialDist = dist
		t.initialAngle = angle
		t.active = true
	}

	ratio := 1.0
	if t.initialDist > 0 {
		ratio = dist / t.initialDist
	}
	t.last = Pinch{
		Origin: mid,
		Offset: Offset{
			Scale:    t.cfg.Bounds.Clamp(t.cfg.From * ratio),
			Rotation: angle - t.initialAngle,
		},
		Event: ev,
	}
	return t.last
}

// Release ends the gesture when a contact lifts. It returns the last sample
// flagged Last, or false when no gesture is in progress.
func (t *PointerPinchTracker) Release() (Pinch, bool) {
	if !t.active {
		return Pinch{}, false
	}
	t.active = false
	p := t.last
	p.Last = true
	p.Event = nil
	return p, true
}

// Active reports whether a gesture is in progress.
func (t *PointerPinchTracker) Active() bool { return t.active }
