package cli

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// logHooks forwards observability events to the logger at debug level.
type logHooks struct {
	logger *log.Logger
}

func newLogHooks(l *log.Logger) *logHooks {
	return &logHooks{logger: l.WithPrefix("events")}
}

func (h *logHooks) OnPinchStart(_ context.Context, initialScale float64) {
	h.logger.Debug("pinch start", "scale", initialScale)
}

func (h *logHooks) OnPinchSample(_ context.Context, scale, x, y float64) {
	h.logger.Debug("pinch sample", "scale", scale, "x", x, "y", y)
}

func (h *logHooks) OnPinchEnd(_ context.Context, samples int, canceled bool) {
	h.logger.Debug("pinch end", "samples", samples, "canceled", canceled)
}

func (h *logHooks) OnWheel(_ context.Context, x, y float64) {
	h.logger.Debug("wheel", "x", x, "y", y)
}

func (h *logHooks) OnRenderStart(_ context.Context, format string) {
	h.logger.Debug("render start", "format", format)
}

func (h *logHooks) OnRenderComplete(_ context.Context, format string, size int, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("render failed", "format", format, "error", err)
		return
	}
	h.logger.Debug("render done", "format", format, "bytes", size, "duration", d.Round(time.Microsecond))
}

func (h *logHooks) OnCacheHit(_ context.Context, keyType string) {
	h.logger.Debug("cache hit", "type", keyType)
}

func (h *logHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.logger.Debug("cache miss", "type", keyType)
}

func (h *logHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.logger.Debug("cache set", "type", keyType, "bytes", size)
}
