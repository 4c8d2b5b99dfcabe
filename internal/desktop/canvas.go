// Package desktop is the fyne viewer: a widget that draws the panel strip
// with the frame rasterizer and turns mouse wheel input into gestures.
//
// Plain wheel pans. Ctrl+wheel pinches at the pointer, which is how desktop
// trackpads deliver pinch. Esc cancels a pinch, R re-fits.
package desktop

import (
	"context"
	"image"
	"io"

	"fyne.io/fyne/v2"
	fynecanvas "fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"
	"github.com/charmbracelet/log"

	"github.com/matzehuels/stripview/pkg/canvas"
	"github.com/matzehuels/stripview/pkg/gesture"
	"github.com/matzehuels/stripview/pkg/render/frame"
)

// pixelsPerNotch is the scroll distance fyne reports for one wheel notch.
const pixelsPerNotch = 10

// Options configures a [Canvas].
type Options struct {
	Config    canvas.Configuration
	WheelStep float64
	HUD       bool
	Labels    bool
	Logger    *log.Logger
}

// Canvas is a fyne widget showing one panel strip. It must only be used
// from the fyne event goroutine.
type Canvas struct {
	widget.BaseWidget

	ctx    context.Context
	opts   Options
	logger *log.Logger

	store  *canvas.Store
	ctrl   *gesture.Controller
	wheel  *gesture.WheelTracker
	zoom   *gesture.WheelPinchTracker
	raster *fynecanvas.Raster

	unsubscribe func()
	fitted      bool
	ctrlDown    bool
}

var (
	_ fyne.Widget       = (*Canvas)(nil)
	_ fyne.Scrollable   = (*Canvas)(nil)
	_ desktop.Hoverable = (*Canvas)(nil)
)

// NewCanvas creates the widget. The transform is fitted to the widget the
// first time it is given a size.
func NewCanvas(ctx context.Context, opts Options) *Canvas {
	if opts.Logger == nil {
		opts.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	c := &Canvas{
		ctx:    ctx,
		opts:   opts,
		logger: opts.Logger,
		store:  canvas.NewStore(canvas.Transform{Scale: 1}),
	}
	surface := &gesture.TransformSurface{
		Source: canvas.ViewportFunc(c.viewport),
		Store:  c.store,
		Config: opts.Config,
	}
	c.ctrl = gesture.NewController(c.store, surface, opts.Config, gesture.WithLogger(opts.Logger))
	c.wheel = gesture.NewWheelTracker(c.ctrl)
	c.zoom = gesture.NewWheelPinchTracker(c.ctrl, opts.WheelStep)
	c.raster = fynecanvas.NewRaster(c.draw)
	c.unsubscribe = c.store.Subscribe(func(canvas.Transform) { c.raster.Refresh() })
	c.ExtendBaseWidget(c)
	return c
}

// Controller returns the gesture controller driving the widget.
func (c *Canvas) Controller() *gesture.Controller { return c.ctrl }

// Transform returns the current transform.
func (c *Canvas) Transform() canvas.Transform { return c.store.Current() }

func (c *Canvas) viewport() canvas.Viewport {
	size := c.Size()
	return canvas.Viewport{Width: float64(size.Width), Height: float64(size.Height)}
}

// Resize sizes the widget. Only the first valid size fits the transform;
// later resizes leave it alone and the next pinch picks up new bounds.
func (c *Canvas) Resize(size fyne.Size) {
	c.BaseWidget.Resize(size)
	if !c.fitted && c.viewport().Validate() == nil {
		c.fitted = true
		c.ctrl.Fit(c.ctx)
	}
}

// CreateRenderer implements fyne.Widget.
func (c *Canvas) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(c.raster)
}

// MinSize implements fyne.CanvasObject.
func (c *Canvas) MinSize() fyne.Size { return fyne.NewSize(160, 90) }

// draw renders at widget size; fyne scales the image to device pixels.
func (c *Canvas) draw(w, h int) image.Image {
	vp := c.viewport()
	if vp.Validate() != nil {
		return image.NewRGBA(image.Rect(0, 0, max(w, 1), max(h, 1)))
	}
	var opts []frame.Option
	if c.opts.HUD {
		opts = append(opts, frame.WithHUD(), frame.WithPhase(c.ctrl.Phase().String()))
	}
	if c.opts.Labels {
		opts = append(opts, frame.WithLabels())
	}
	img, err := frame.Rasterize(frame.New(c.opts.Config, vp, c.store.Current(), opts...))
	if err != nil {
		c.logger.Warn("rasterize failed", "error", err)
		return image.NewRGBA(image.Rect(0, 0, max(w, 1), max(h, 1)))
	}
	return img
}

// Scrolled implements fyne.Scrollable.
func (c *Canvas) Scrolled(ev *fyne.ScrollEvent) {
	pos := canvas.Point{X: float64(ev.Position.X), Y: float64(ev.Position.Y)}

	if c.ctrlDown {
		c.wheel.End()
		notches := -float64(ev.Scrolled.DY) / pixelsPerNotch
		if notches == 0 {
			return
		}
		c.ctrl.HandlePinch(c.ctx, c.zoom.Zoom(pos, notches, nil))
		return
	}

	c.endZoom()
	// Scrolling up reveals content above, so the offset moves against the delta.
	c.ctrl.HandleWheel(c.ctx, c.wheel.Scroll(-float64(ev.Scrolled.DX), -float64(ev.Scrolled.DY), nil))
}

// MouseIn implements desktop.Hoverable.
func (c *Canvas) MouseIn(ev *desktop.MouseEvent) { c.MouseMoved(ev) }

// MouseMoved implements desktop.Hoverable. Pointer movement ends a wheel
// gesture; the modifier state keeps ctrl tracking honest when key events
// went to another window.
func (c *Canvas) MouseMoved(ev *desktop.MouseEvent) {
	c.wheel.End()
	c.setCtrl(ev.Modifier&fyne.KeyModifierControl != 0)
}

// MouseOut implements desktop.Hoverable.
func (c *Canvas) MouseOut() {
	c.wheel.End()
	c.setCtrl(false)
}

// Bind routes the window's key events to the widget.
func (c *Canvas) Bind(win fyne.Window) {
	if dc, ok := win.Canvas().(desktop.Canvas); ok {
		dc.SetOnKeyDown(c.KeyDown)
		dc.SetOnKeyUp(c.KeyUp)
	}
}

// KeyDown handles a key press.
func (c *Canvas) KeyDown(ev *fyne.KeyEvent) {
	switch ev.Name {
	case desktop.KeyControlLeft, desktop.KeyControlRight:
		c.setCtrl(true)
	case fyne.KeyEscape:
		c.wheel.End()
		c.zoom.End()
		if c.ctrl.CancelPinch(c.ctx) {
			c.raster.Refresh()
		}
	case fyne.KeyR:
		c.wheel.End()
		c.zoom.End()
		c.ctrl.Fit(c.ctx)
	}
}

// KeyUp handles a key release.
func (c *Canvas) KeyUp(ev *fyne.KeyEvent) {
	switch ev.Name {
	case desktop.KeyControlLeft, desktop.KeyControlRight:
		c.setCtrl(false)
	}
}

func (c *Canvas) setCtrl(down bool) {
	if c.ctrlDown == down {
		return
	}
	c.ctrlDown = down
	c.wheel.End()
	if !down {
		c.endZoom()
	}
}

// endZoom closes a ctrl+wheel pinch with its final sample.
func (c *Canvas) endZoom() {
	if p, ok := c.zoom.End(); ok {
		c.ctrl.HandlePinch(c.ctx, p)
	}
}

// Destroy detaches the widget from its store.
func (c *Canvas) Destroy() {
	if c.unsubscribe != nil {
		c.unsubscribe()
		c.unsubscribe = nil
	}
}
