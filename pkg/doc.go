// Package pkg provides the core libraries of stripview.
//
// # Overview
//
// stripview drives the view transform of a horizontal strip of fixed-size
// sections: the initial fit, the zoom bounds, pinch zoom anchored at the
// gesture origin, and wheel panning. The pkg directory is organized as:
//
//  1. [canvas] - Layout geometry and the transform store
//  2. [gesture] - Pinch and wheel handling on top of the store
//  3. [render] - Frame output (SVG, PNG, JSON) and the gesture state chart
//  4. [pipeline] - Replay a scripted gesture and render the result
//  5. [cache] - File, Redis, and null caches for rendered output
//
// # Architecture
//
// Input flows in one direction:
//
//	Input source (touch, ctrl+wheel, wheel, HTTP request)
//	         ↓
//	    [gesture] trackers (synthesize pinch and wheel samples)
//	         ↓
//	    [gesture] Controller (anchor math, clamping)
//	         ↓
//	    [canvas] Store (current transform, subscribers)
//	         ↓
//	    [render] frame output
//
// # Quick Start
//
//	cfg := canvas.DefaultConfiguration()
//	vp := canvas.Viewport{Width: 1600, Height: 800}
//	store := canvas.NewStore(canvas.Initialize(vp, cfg))
//	surface := &gesture.TransformSurface{Source: canvas.FixedViewport(vp), Store: store, Config: cfg}
//	ctrl := gesture.NewController(store, surface, cfg)
//
//	center := canvas.Point{X: 800, Y: 400}
//	ctrl.HandlePinch(ctx, gesture.Pinch{Origin: center, Offset: gesture.Offset{Scale: 0.8}})
//	ctrl.HandlePinch(ctx, gesture.Pinch{Origin: center, Offset: gesture.Offset{Scale: 0.8}, Last: true})
//
//	svg := frame.RenderSVG(frame.New(cfg, vp, store.Current()))
//
// Supporting packages: [errors] carries coded errors shared by the CLI and
// the HTTP API, [observability] exposes hooks for gesture, render, and cache
// events, and [buildinfo] holds version metadata.
//
// [canvas]: https://pkg.go.dev/github.com/matzehuels/stripview/pkg/canvas
// [gesture]: https://pkg.go.dev/github.com/matzehuels/stripview/pkg/gesture
// [render]: https://pkg.go.dev/github.com/matzehuels/stripview/pkg/render
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/stripview/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/stripview/pkg/cache
// [errors]: https://pkg.go.dev/github.com/matzehuels/stripview/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/stripview/pkg/observability
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/stripview/pkg/buildinfo
package pkg
