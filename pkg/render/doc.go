// Package render groups the output sinks of stripview.
//
// # Overview
//
// Nothing in this package itself renders; the work happens in two
// subpackages:
//
//   - [frame] draws one viewport frame of the section strip as SVG, PNG,
//     or JSON. Frames are pure values derived from the canvas
//     configuration, the viewport, and the transform.
//   - [statechart] draws the gesture controller's pinch state machine
//     with Graphviz, for debugging input handling.
//
// # Frames
//
//	f := frame.New(cfg, viewport, store.Current(), frame.WithHUD())
//	svg := frame.RenderSVG(f)
//	png, err := frame.RenderPNG(f)
//
// # State Chart
//
//	dot := statechart.ToDOT(statechart.Options{Wheel: true})
//	svg, err := statechart.RenderSVG(ctx, dot)
//
// [frame]: github.com/matzehuels/stripview/pkg/render/frame
// [statechart]: github.com/matzehuels/stripview/pkg/render/statechart
package render
