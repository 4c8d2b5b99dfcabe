package frame

import (
	"context"
	"time"

	"github.com/matzehuels/stripview/pkg/errors"
	"github.com/matzehuels/stripview/pkg/observability"
)

// Render dispatches f to the sink for format and reports timing through
// the render hooks.
func Render(ctx context.Context, f Frame, format string) ([]byte, error) {
	if err := errors.ValidateFormat(format, Formats); err != nil {
		return nil, err
	}

	observability.Render().OnRenderStart(ctx, format)
	start := time.Now()

	var (
		data []byte
		err  error
	)
	switch format {
	case FormatSVG:
		data = RenderSVG(f)
	case FormatPNG:
		data, err = RenderPNG(f)
	case FormatJSON:
		data, err = RenderJSON(f)
	}

	observability.Render().OnRenderComplete(ctx, format, len(data), time.Since(start), err)
	return data, err
}

// ContentType returns the MIME type for format.
func ContentType(format string) string {
	switch format {
	case FormatSVG:
		return "image/svg+xml"
	case FormatPNG:
		return "image/png"
	case FormatJSON:
		return "application/json"
	default:
		return "application/octet-stream"
	}
}
