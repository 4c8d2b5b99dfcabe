// Package pipeline renders viewport frames from a gesture script.
//
// This package implements the transform → render pipeline shared by the
// CLI render command and the HTTP server. By centralizing it, both entry
// points drive the real gesture controller and share the same cache keys.
//
// # Architecture
//
// The pipeline consists of two stages:
//
//  1. Transform: Start from the fit-to-viewport transform, then replay an
//     optional pinch and an optional pan through [gesture.Controller].
//  2. Render: Build a [frame.Frame] and emit each requested format,
//     consulting the cache first.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Viewport: canvas.Viewport{Width: 1600, Height: 800},
//	    Zoom:     1.0,
//	    Formats:  []string{"svg"},
//	})
//	svg := result.Artifacts["svg"]
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/stripview/pkg/cache"
	"github.com/matzehuels/stripview/pkg/canvas"
	"github.com/matzehuels/stripview/pkg/errors"
	"github.com/matzehuels/stripview/pkg/render/frame"
)

// DefaultPinchSteps is the number of samples a replayed pinch is split into.
const DefaultPinchSteps = 8

// Options contains all configuration for a pipeline run.
// This struct supports JSON serialization for API requests.
type Options struct {
	Config   canvas.Configuration `json:"config"`
	Viewport canvas.Viewport      `json:"viewport"`

	// Zoom is the target scale of a replayed pinch; zero skips the pinch.
	// The input source clamps it to the zoom bounds.
	Zoom float64 `json:"zoom,omitempty"`
	// At is the pinch origin in screen pixels; nil means the viewport center.
	At *canvas.Point `json:"at,omitempty"`
	// Pan is a wheel delta replayed after the pinch.
	Pan *canvas.Point `json:"pan,omitempty"`
	// Steps is the number of pinch samples.
	Steps int `json:"steps,omitempty"`

	// Render options
	Formats []string `json:"formats,omitempty"`
	HUD     bool     `json:"hud,omitempty"`
	Labels  bool     `json:"labels,omitempty"`
	Refresh bool     `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Transform is the transform after replaying the gestures.
	Transform canvas.Transform

	// Frame is the geometry that was rendered.
	Frame frame.Frame

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing information.
	Stats Stats

	// CacheInfo tracks which formats were served from cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Samples       int
	TransformTime time.Duration
	RenderTime    time.Duration
}

// CacheInfo tracks cache hits for the render stage.
type CacheInfo struct {
	Hits      []string // Formats served from cache
	RenderHit bool     // Whether all artifacts came from cache
}

// ValidateFormats checks that all formats are supported.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := errors.ValidateFormat(f, frame.Formats); err != nil {
			return err
		}
	}
	return nil
}

// ValidateAndSetDefaults checks the options and fills in defaults.
func (o *Options) ValidateAndSetDefaults() error {
	if o.Config == (canvas.Configuration{}) {
		o.Config = canvas.DefaultConfiguration()
	}
	if err := o.Config.Validate(); err != nil {
		return err
	}
	if err := o.Viewport.Validate(); err != nil {
		return err
	}
	if o.Zoom < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "zoom must not be negative, got %v", o.Zoom)
	}
	if o.Steps <= 0 {
		o.Steps = DefaultPinchSteps
	}
	if len(o.Formats) == 0 {
		o.Formats = []string{frame.FormatSVG}
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return ValidateFormats(o.Formats)
}

// FrameOptions returns the frame options implied by the render flags.
func (o *Options) FrameOptions() []frame.Option {
	var opts []frame.Option
	if o.HUD {
		opts = append(opts, frame.WithHUD())
	}
	if o.Labels {
		opts = append(opts, frame.WithLabels())
	}
	return opts
}

// FrameKeyOpts returns cache key options for one rendered format.
func FrameKeyOpts(f frame.Frame, cfg canvas.Configuration, format string) cache.FrameKeyOpts {
	return cache.FrameKeyOpts{
		Config:    cfg,
		Viewport:  f.Viewport,
		Transform: f.Transform,
		Format:    format,
		HUD:       f.HUD,
		Labels:    f.Labels,
		Phase:     f.Phase,
	}
}
