// Package canvas implements the viewport transform engine for a horizontal
// strip of fixed-size sections.
//
// # Overview
//
// The canvas is a single content container holding SectionCount panels laid
// out left to right, each SectionWidth × SectionHeight, separated by
// PaddingBetween and surrounded by PaddingAround. The container is rendered
// with a [Transform]: a uniform scale applied about the container's own
// center, and a translation that places the container's top-left at
// (-Position.X, -Position.Y).
//
// # Layout Geometry
//
// Pure functions derive everything from a [Configuration] and a fresh
// [Viewport] sample:
//
//	scale := canvas.InitialScale(vp, cfg)        // fit one section's height
//	pos := canvas.InitialPosition(scale, cfg)    // compensate center-origin scaling
//	bounds := canvas.ComputeZoomBounds(vp, cfg)  // [full width fits, 1.0]
//
// # Transform State
//
// A [Store] holds the current [Transform]. It is replaced wholesale on every
// update and notifies subscribers so renderers can redraw:
//
//	store := canvas.NewStore(canvas.Initialize(vp, cfg))
//	store.Subscribe(func(t canvas.Transform) { redraw(t) })
//	store.Replace(next)
//
// # Screen Mapping
//
// [ContentToScreen] builds the affine map implied by the render convention;
// [ContainerBounds] and [SectionBounds] give the on-screen rectangles that
// gesture handling and the frame renderers work from.
package canvas
