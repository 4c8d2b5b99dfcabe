package gesture

import (
	"context"
	"io"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/stripview/pkg/canvas"
	"github.com/matzehuels/stripview/pkg/observability"
)

// Phase is the pinch state of a [Controller].
type Phase int

const (
	// PhaseIdle means no pinch is in progress and no memo is held.
	PhaseIdle Phase = iota
	// PhaseActive means a pinch is in progress and samples are computed
	// against the memo captured at its start.
	PhaseActive
)

// String returns the lowercase phase name.
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseActive:
		return "active"
	default:
		return "unknown"
	}
}

// Memo is the snapshot taken on the first sample of a pinch.
type Memo struct {
	// Bounds is the container's on-screen rectangle at pinch start.
	Bounds canvas.Rect `json:"bounds"`
	// Initial is the transform at pinch start.
	Initial canvas.Transform `json:"initial"`
}

// Surface is the display the controller drives. It reports the live
// viewport size and the container's current on-screen bounds.
type Surface interface {
	canvas.ViewportSource
	ContainerBounds() canvas.Rect
}

// TransformSurface is a [Surface] whose container bounds are derived from a
// store's current transform rather than measured from a real layout engine.
// Headless renderers, terminals, and the HTTP API use it.
type TransformSurface struct {
	Source canvas.ViewportSource
	Store  *canvas.Store
	Config canvas.Configuration
}

// Viewport returns the live viewport from Source.
func (s *TransformSurface) Viewport() canvas.Viewport {
	return s.Source.Viewport()
}

// ContainerBounds returns the container rectangle under the store's
// current transform.
func (s *TransformSurface) ContainerBounds() canvas.Rect {
	return canvas.ContainerBounds(s.Store.Current(), s.Config)
}

// PinchConfig is the input-source configuration captured at the start of
// each pinch.
type PinchConfig struct {
	Bounds canvas.ZoomBounds `json:"bounds"`
	From   float64           `json:"from"`
}

// Option configures a [Controller].
type Option func(*Controller)

// WithLogger sets the logger used for gesture debug output.
func WithLogger(l *log.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

// Controller applies gesture samples to a transform store. One controller
// drives one canvas.
type Controller struct {
	store   *canvas.Store
	surface Surface
	cfg     canvas.Configuration
	logger  *log.Logger

	phase   Phase
	memo    *Memo
	samples int
}

// NewController creates a controller that writes to store and reads live
// geometry from surface.
func NewController(store *canvas.Store, surface Surface, cfg canvas.Configuration, opts ...Option) *Controller {
	c := &Controller{
		store:   store,
		surface: surface,
		cfg:     cfg,
		logger:  log.NewWithOptions(io.Discard, log.Options{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Store returns the store the controller writes to.
func (c *Controller) Store() *canvas.Store { return c.store }

// Configuration returns the canvas configuration.
func (c *Controller) Configuration() canvas.Configuration { return c.cfg }

// Viewport samples the surface's live viewport.
func (c *Controller) Viewport() canvas.Viewport { return c.surface.Viewport() }

// Phase reports whether a pinch is in progress.
func (c *Controller) Phase() Phase { return c.phase }

// Memo returns a copy of the active pinch memo, or false when idle.
func (c *Controller) Memo() (Memo, bool) {
	if c.memo == nil {
		return Memo{}, false
	}
	return *c.memo, true
}

// PinchConfig returns the zoom bounds for the live viewport and the current
// scale. Input sources call it at the start of every pinch.
func (c *Controller) PinchConfig() PinchConfig {
	return PinchConfig{
		Bounds: canvas.ComputeZoomBounds(c.surface.Viewport(), c.cfg),
		From:   c.store.Current().Scale,
	}
}

// WheelFrom returns the current position. Input sources call it at the
// start of every wheel gesture.
func (c *Controller) WheelFrom() canvas.Point {
	return c.store.Current().Position
}

// HandlePinch applies one pinch sample and returns the new transform.
func (c *Controller) HandlePinch(ctx context.Context, p Pinch) canvas.Transform {
	if p.Event != nil {
		p.Event.PreventDefault()
	}

	if c.memo == nil {
		c.memo = &Memo{Bounds: c.surface.ContainerBounds(), Initial: c.store.Current()}
		c.phase = PhaseActive
		c.samples = 0
		c.logger.Debug("pinch start", "scale", c.memo.Initial.Scale, "bounds", c.memo.Bounds)
		observability.Gesture().OnPinchStart(ctx, c.memo.Initial.Scale)
	}

	next := Anchor(*c.memo, p.Origin, p.Offset.Scale)
	c.store.Replace(next)
	c.samples++
	observability.Gesture().OnPinchSample(ctx, next.Scale, next.Position.X, next.Position.Y)

	if p.Last {
		c.end(ctx, false)
	}
	return next
}

// CancelPinch drops the active memo without a final update. It reports
// whether a pinch was in progress.
func (c *Controller) CancelPinch(ctx context.Context) bool {
	if c.memo == nil {
		return false
	}
	c.end(ctx, true)
	return true
}

func (c *Controller) end(ctx context.Context, canceled bool) {
	c.logger.Debug("pinch end", "samples", c.samples, "canceled", canceled)
	observability.Gesture().OnPinchEnd(ctx, c.samples, canceled)
	c.memo = nil
	c.phase = PhaseIdle
	c.samples = 0
}

// HandleWheel replaces the position with the sample's absolute offset and
// keeps the scale.
func (c *Controller) HandleWheel(ctx context.Context, w Wheel) canvas.Transform {
	if w.Event != nil {
		w.Event.PreventDefault()
	}
	next := canvas.Transform{Scale: c.store.Current().Scale, Position: w.Offset}
	c.store.Replace(next)
	observability.Gesture().OnWheel(ctx, next.Position.X, next.Position.Y)
	return next
}

// Fit cancels any active pinch and restores the fit-to-viewport transform
// for the live viewport.
func (c *Controller) Fit(ctx context.Context) canvas.Transform {
	c.CancelPinch(ctx)
	next := canvas.Initialize(c.surface.Viewport(), c.cfg)
	c.store.Replace(next)
	c.logger.Debug("fit", "transform", next)
	return next
}

// Anchor computes the transform for scale newScale such that the content
// point under origin at pinch start stays under origin.
//
// The displacement from the origin to the container's center is measured
// in unscaled content pixels; growing the scale by d pushes the center away
// from the origin by displacement·d, which the position absorbs.
func Anchor(m Memo, origin canvas.Point, newScale float64) canvas.Transform {
	center := m.Bounds.Center()
	dispX := (center.X - origin.X) / m.Initial.Scale
	dispY := (center.Y - origin.Y) / m.Initial.Scale
	delta := newScale - m.Initial.Scale
	return canvas.Transform{
		Scale: newScale,
		Position: canvas.Point{
			X: m.Initial.Position.X - dispX*delta,
			Y: m.Initial.Position.Y - dispY*delta,
		},
	}
}
