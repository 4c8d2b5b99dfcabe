package cache

import (
	"github.com/matzehuels/stripview/pkg/canvas"
)

// FrameKeyOpts holds every input that affects a rendered frame.
type FrameKeyOpts struct {
	Config    canvas.Configuration `json:"config"`
	Viewport  canvas.Viewport      `json:"viewport"`
	Transform canvas.Transform     `json:"transform"`
	Format    string               `json:"format"`
	HUD       bool                 `json:"hud"`
	Labels    bool                 `json:"labels"`
	// Phase is drawn by the HUD, so frames differing only in phase differ.
	Phase string `json:"phase,omitempty"`
}

// Keyer builds cache keys.
type Keyer interface {
	// FrameKey returns the key for a rendered frame.
	FrameKey(opts FrameKeyOpts) string
	// DiagramKey returns the key for a state diagram rendered from the
	// DOT source in the given format.
	DiagramKey(format, source string) string
}

// DefaultKeyer hashes key inputs with SHA-256.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the default keyer.
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{}
}

// FrameKey returns "frame:<sha256 of opts>".
func (k *DefaultKeyer) FrameKey(opts FrameKeyOpts) string {
	return hashKey("frame", opts)
}

// DiagramKey returns "diagram:<sha256 of format and source>".
func (k *DefaultKeyer) DiagramKey(format, source string) string {
	return hashKey("diagram", format, source)
}

var _ Keyer = (*DefaultKeyer)(nil)
