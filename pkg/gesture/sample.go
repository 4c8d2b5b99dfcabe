package gesture

import (
	"math"

	"github.com/matzehuels/stripview/pkg/canvas"
	"github.com/matzehuels/stripview/pkg/errors"
)

// Event is the raw platform event behind a sample. Handlers suppress the
// platform's default behavior (page zoom, native scrolling) before applying
// the sample.
type Event interface {
	PreventDefault()
}

// EventFunc adapts a function to [Event].
type EventFunc func()

// PreventDefault calls f.
func (f EventFunc) PreventDefault() { f() }

// Offset is the pinch movement reported by the input source. Scale is
// absolute and already clamped to the zoom bounds. Rotation is carried
// through but not applied.
type Offset struct {
	Scale    float64 `json:"scale"`
	Rotation float64 `json:"rotation,omitempty"`
}

// Pinch is one sample of a pinch gesture.
type Pinch struct {
	Origin canvas.Point `json:"origin"`
	Offset Offset       `json:"offset"`
	Last   bool         `json:"last,omitempty"`
	Event  Event        `json:"-"`
}

// Validate rejects samples that no input source can produce. Trackers never
// produce invalid samples; this exists for samples that arrive over the wire.
func (p Pinch) Validate() error {
	if !finite(p.Origin.X) || !finite(p.Origin.Y) {
		return errors.New(errors.ErrCodeInvalidGesture, "pinch origin must be finite")
	}
	if !finite(p.Offset.Scale) || p.Offset.Scale <= 0 {
		return errors.New(errors.ErrCodeInvalidGesture, "pinch scale must be positive, got %v", p.Offset.Scale)
	}
	return nil
}

// Wheel is one sample of a wheel gesture. Offset is the absolute position
// the pan should reach, not a delta.
type Wheel struct {
	Offset canvas.Point `json:"offset"`
	Event  Event        `json:"-"`
}

// Validate rejects non-finite offsets.
func (w Wheel) Validate() error {
	if !finite(w.Offset.X) || !finite(w.Offset.Y) {
		return errors.New(errors.ErrCodeInvalidGesture, "wheel offset must be finite")
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
