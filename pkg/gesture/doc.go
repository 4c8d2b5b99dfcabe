// Package gesture converts pointer gestures into viewport transforms.
//
// A [Controller] consumes two kinds of samples:
//
//   - [Pinch] samples carry the gesture origin in screen coordinates and the
//     absolute scale the input source wants to reach. The controller keeps
//     the content point under the origin fixed on screen while the scale
//     changes.
//   - [Wheel] samples carry an absolute pan offset. They replace the
//     position and never touch the scale.
//
// Pinch handling is a small state machine. The controller is Idle until the
// first pinch sample arrives, at which point it snapshots the container
// bounds and the current transform into a [Memo] and becomes Active. Every
// later sample of the same pinch is computed against that snapshot, never
// against the live state, so rounding errors do not accumulate. A sample
// flagged Last, or a call to [Controller.CancelPinch], returns the controller
// to Idle and drops the memo.
//
// # Input sources
//
// Real devices rarely report samples in the controller's vocabulary, so the
// package also provides trackers that translate device events:
//
//   - [WheelTracker] turns relative wheel deltas into absolute offsets.
//   - [WheelPinchTracker] turns ctrl+wheel notches into pinch samples.
//   - [PointerPinchTracker] turns two touch contacts into pinch samples.
//
// Trackers read their starting conditions from [Controller.PinchConfig] and
// [Controller.WheelFrom] at the start of each gesture.
//
// # Concurrency
//
// A Controller and its [canvas.Store] belong to one event goroutine.
// Callers that receive samples from several goroutines must serialize them.
package gesture
