package canvas

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Affine is a 2D affine map stored as a 3×3 homogeneous matrix.
type Affine struct {
	m *mat.Dense
}

// Identity returns the identity map.
func Identity() Affine {
	return Affine{m: mat.NewDense(3, 3, []float64{
		1, 0, 0,
		0, 1, 0,
		0, 0, 1,
	})}
}

// Translation returns a map that shifts points by (dx, dy).
func Translation(dx, dy float64) Affine {
	return Affine{m: mat.NewDense(3, 3, []float64{
		1, 0, dx,
		0, 1, dy,
		0, 0, 1,
	})}
}

// Scaling returns a uniform scale about the origin.
func Scaling(s float64) Affine {
	return Affine{m: mat.NewDense(3, 3, []float64{
		s, 0, 0,
		0, s, 0,
		0, 0, 1,
	})}
}

// ScalingAbout returns a uniform scale that leaves c fixed.
func ScalingAbout(s float64, c Point) Affine {
	return Translation(-c.X, -c.Y).Then(Scaling(s)).Then(Translation(c.X, c.Y))
}

// Then returns the map that applies a first and b second.
func (a Affine) Then(b Affine) Affine {
	var out mat.Dense
	out.Mul(b.m, a.m)
	return Affine{m: &out}
}

// Apply maps p.
func (a Affine) Apply(p Point) Point {
	var v mat.VecDense
	v.MulVec(a.m, mat.NewVecDense(3, []float64{p.X, p.Y, 1}))
	return Point{X: v.AtVec(0), Y: v.AtVec(1)}
}

// ApplyRect maps the corners of r. The map must not rotate or flip, which
// holds for every map built from translations and positive scales.
func (a Affine) ApplyRect(r Rect) Rect {
	tl := a.Apply(Point{X: r.X, Y: r.Y})
	br := a.Apply(Point{X: r.Right(), Y: r.Bottom()})
	return Rect{X: tl.X, Y: tl.Y, Width: br.X - tl.X, Height: br.Y - tl.Y}
}

// Invert returns the inverse map.
func (a Affine) Invert() (Affine, error) {
	var inv mat.Dense
	if err := inv.Inverse(a.m); err != nil {
		return Affine{}, fmt.Errorf("invert affine: %w", err)
	}
	return Affine{m: &inv}, nil
}

// ContentToScreen returns the map from unscaled container coordinates to
// screen coordinates for transform t: scale about the container's center,
// then place the container's top-left at (-Position.X, -Position.Y).
func ContentToScreen(t Transform, cfg Configuration) Affine {
	ext := Extent(cfg)
	center := Point{X: ext.Width / 2, Y: ext.Height / 2}
	return ScalingAbout(t.Scale, center).Then(Translation(-t.Position.X, -t.Position.Y))
}

// ScreenToContent maps a screen point back into container coordinates.
func ScreenToContent(t Transform, cfg Configuration, p Point) (Point, error) {
	inv, err := ContentToScreen(t, cfg).Invert()
	if err != nil {
		return Point{}, err
	}
	return inv.Apply(p), nil
}

// ContainerBounds returns the on-screen bounding rectangle of the content
// container under t. This is what a display surface reports as the
// container's bounding client rect.
func ContainerBounds(t Transform, cfg Configuration) Rect {
	ext := Extent(cfg)
	return ContentToScreen(t, cfg).ApplyRect(Rect{Width: ext.Width, Height: ext.Height})
}

// SectionBounds returns the on-screen rectangle of every section under t,
// left to right.
func SectionBounds(t Transform, cfg Configuration) []Rect {
	m := ContentToScreen(t, cfg)
	rects := make([]Rect, cfg.SectionCount)
	for i := range rects {
		o := cfg.sectionOrigin(i)
		rects[i] = m.ApplyRect(Rect{X: o.X, Y: o.Y, Width: cfg.SectionWidth, Height: cfg.SectionHeight})
	}
	return rects
}
