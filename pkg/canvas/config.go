package canvas

import (
	"github.com/matzehuels/stripview/pkg/errors"
)

// Default section dimensions, in content pixels.
const (
	DefaultSectionWidth   = 1660.0
	DefaultSectionHeight  = 1024.0
	DefaultPaddingAround  = 100.0
	DefaultPaddingBetween = 100.0
	DefaultSectionCount   = 4
)

// Configuration describes the static content of the canvas: how many
// sections there are, how large each one is, and how they are spaced.
// It is treated as immutable once validated.
type Configuration struct {
	SectionWidth   float64 `toml:"section_width" json:"section_width"`
	SectionHeight  float64 `toml:"section_height" json:"section_height"`
	PaddingAround  float64 `toml:"padding_around" json:"padding_around"`
	PaddingBetween float64 `toml:"padding_between" json:"padding_between"`
	SectionCount   int     `toml:"section_count" json:"section_count"`
}

// DefaultConfiguration returns four 1660×1024 sections with 100px padding.
func DefaultConfiguration() Configuration {
	return Configuration{
		SectionWidth:   DefaultSectionWidth,
		SectionHeight:  DefaultSectionHeight,
		PaddingAround:  DefaultPaddingAround,
		PaddingBetween: DefaultPaddingBetween,
		SectionCount:   DefaultSectionCount,
	}
}

// Validate checks the configuration once at startup. The geometry functions
// assume a valid configuration and do not re-check it.
func (c Configuration) Validate() error {
	if c.SectionCount <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "section count must be positive, got %d", c.SectionCount)
	}
	if err := errors.ValidateDimension(errors.ErrCodeInvalidConfig, "section width", c.SectionWidth); err != nil {
		return err
	}
	if err := errors.ValidateDimension(errors.ErrCodeInvalidConfig, "section height", c.SectionHeight); err != nil {
		return err
	}
	if err := errors.ValidateNonNegative(errors.ErrCodeInvalidConfig, "padding around", c.PaddingAround); err != nil {
		return err
	}
	return errors.ValidateNonNegative(errors.ErrCodeInvalidConfig, "padding between", c.PaddingBetween)
}

// horizontalPadding is the total padding along the x axis.
func (c Configuration) horizontalPadding() float64 {
	return c.PaddingAround*2 + c.PaddingBetween*float64(c.SectionCount-1)
}

// sectionOrigin returns the top-left of section i in content coordinates.
func (c Configuration) sectionOrigin(i int) Point {
	return Point{
		X: c.PaddingAround + float64(i)*(c.SectionWidth+c.PaddingBetween),
		Y: c.PaddingAround,
	}
}
