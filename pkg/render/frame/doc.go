// Package frame renders one viewport frame of the section strip.
//
// A [Frame] is a snapshot: the viewport size, the transform, and the
// on-screen rectangles of the container and every section under that
// transform. Frames are built with [New] and are pure values, so rendering
// the same frame twice produces identical bytes and frames can be cached.
//
// Three sinks are provided:
//
//   - [RenderSVG] emits screen-space rectangles as an SVG document.
//   - [RenderPNG] rasterizes the frame with golang.org/x/image/vector.
//   - [RenderJSON] exports the geometry for clients that draw themselves.
//
// [Rasterize] returns the in-memory image behind RenderPNG for viewers that
// blit frames directly.
package frame
