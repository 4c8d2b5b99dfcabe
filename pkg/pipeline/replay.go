package pipeline

import (
	"context"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/stripview/pkg/canvas"
	"github.com/matzehuels/stripview/pkg/gesture"
)

// Replay starts from the fit transform and feeds the scripted pinch and pan
// through a gesture controller. It returns the final transform and the
// number of samples applied.
func Replay(ctx context.Context, opts Options, logger *log.Logger) (canvas.Transform, int) {
	store := canvas.NewStore(canvas.Initialize(opts.Viewport, opts.Config))
	source := canvas.FixedViewport(opts.Viewport)
	ctrl := gesture.NewController(store,
		&gesture.TransformSurface{Source: source, Store: store, Config: opts.Config},
		opts.Config, gesture.WithLogger(logger))

	samples := 0
	if opts.Zoom > 0 {
		samples += replayPinch(ctx, ctrl, opts)
	}
	if opts.Pan != nil {
		wheel := gesture.NewWheelTracker(ctrl)
		ctrl.HandleWheel(ctx, wheel.Scroll(opts.Pan.X, opts.Pan.Y, nil))
		wheel.End()
		samples++
	}
	return store.Current(), samples
}

// replayPinch interpolates from the current scale to the clamped target in
// equal steps at a fixed origin.
func replayPinch(ctx context.Context, ctrl *gesture.Controller, opts Options) int {
	cfg := ctrl.PinchConfig()
	target := cfg.Bounds.Clamp(opts.Zoom)

	origin := canvas.Point{X: opts.Viewport.Width / 2, Y: opts.Viewport.Height / 2}
	if opts.At != nil {
		origin = *opts.At
	}

	for i := 1; i <= opts.Steps; i++ {
		scale := cfg.From + (target-cfg.From)*float64(i)/float64(opts.Steps)
		ctrl.HandlePinch(ctx, gesture.Pinch{
			Origin: origin,
			Offset: gesture.Offset{Scale: scale},
			Last:   i == opts.Steps,
		})
	}
	return opts.Steps
}
