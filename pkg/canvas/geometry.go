package canvas

// MaxScale is the upper zoom bound: one content pixel per device pixel.
const MaxScale = 1.0

// ZoomBounds is the legal scale range for gesture-driven zoom.
type ZoomBounds struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Clamp limits scale to the bounds. When the content is narrower than the
// viewport at full size, Min exceeds Max and the usable range collapses to
// the single point Max.
func (b ZoomBounds) Clamp(scale float64) float64 {
	if b.Collapsed() {
		return b.Max
	}
	return min(max(scale, b.Min), b.Max)
}

// Collapsed reports whether Min > Max.
func (b ZoomBounds) Collapsed() bool {
	return b.Min > b.Max
}

// Extent returns the full unscaled size of the content container.
func Extent(cfg Configuration) Size {
	return Size{
		Width:  cfg.SectionWidth*float64(cfg.SectionCount) + cfg.horizontalPadding(),
		Height: cfg.SectionHeight + cfg.PaddingAround*2,
	}
}

// InitialScale returns the scale at which exactly one section's height plus
// its vertical padding fills the viewport height. It may be above or below 1.
func InitialScale(vp Viewport, cfg Configuration) float64 {
	return vp.Height / (cfg.SectionHeight + cfg.PaddingAround*2)
}

// InitialPosition returns the offset that keeps the container's top-left at
// the viewport origin once it is scaled about its own center.
//
// The result is interpreted with the render convention: the container is
// drawn at (-x, -y) before scaling.
func InitialPosition(scale float64, cfg Configuration) Point {
	ext := Extent(cfg)
	return Point{
		X: (ext.Width - ext.Width*scale) / 2,
		Y: (ext.Height - ext.Height*scale) / 2,
	}
}

// ComputeZoomBounds returns the zoom range for a viewport. Min is the scale
// at which the full content width exactly fills the viewport width.
// Bounds are returned as computed even when Min > Max.
func ComputeZoomBounds(vp Viewport, cfg Configuration) ZoomBounds {
	totalSectionWidth := float64(cfg.SectionCount) * cfg.SectionWidth
	return ZoomBounds{
		Min: vp.Width / (totalSectionWidth + cfg.horizontalPadding()),
		Max: MaxScale,
	}
}
