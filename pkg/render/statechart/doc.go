// Package statechart draws the pinch state machine of the gesture
// controller.
//
// # Usage
//
// Build the DOT source, optionally highlighting the controller's current
// phase, then render it in-process:
//
//	dot := statechart.ToDOT(statechart.Options{Highlight: ctrl.Phase()})
//	svg, err := statechart.RenderSVG(ctx, dot)
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG and
// PNG rendering, so no system Graphviz install is needed.
package statechart
