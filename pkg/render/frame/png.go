package frame

import (
	"bytes"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"

	"github.com/matzehuels/stripview/pkg/canvas"
	"github.com/matzehuels/stripview/pkg/errors"
)

// MaxDimension bounds the raster size in either direction.
const MaxDimension = 8192

// RenderPNG rasterizes f and encodes it as PNG.
func RenderPNG(f Frame) ([]byte, error) {
	img, err := Rasterize(f)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode png")
	}
	return buf.Bytes(), nil
}

// Rasterize draws f into a new RGBA image the size of the viewport.
func Rasterize(f Frame) (*image.RGBA, error) {
	w := int(math.Ceil(f.Viewport.Width))
	h := int(math.Ceil(f.Viewport.Height))
	if w <= 0 || h <= 0 || w > MaxDimension || h > MaxDimension {
		return nil, errors.New(errors.ErrCodeInvalidViewport,
			"raster size %dx%d outside 1..%d", w, h, MaxDimension)
	}

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(Background), image.Point{}, draw.Src)

	radius := PanelRadius * f.Transform.Scale
	stroke := math.Max(1, f.Transform.Scale)
	screen := f.Screen()
	for _, i := range f.Visible() {
		r := clip(f.Sections[i], screen, radius+2)
		fillRoundedRect(img, r, radius, PanelEdge)
		inner := canvas.Rect{X: r.X + stroke, Y: r.Y + stroke, Width: r.Width - 2*stroke, Height: r.Height - 2*stroke}
		if inner.Width > 0 && inner.Height > 0 {
			fillRoundedRect(img, inner, math.Max(0, radius-stroke), PanelFill)
		}
	}

	if f.Labels {
		for _, i := range f.Visible() {
			c := f.Sections[i].Center()
			drawCentered(img, Label(i), int(c.X), int(c.Y), LabelText)
		}
	}
	if f.HUD {
		drawHUD(img, f.HUDLines())
	}
	return img, nil
}

// clip intersects r with screen grown by margin. Corners cut off by the
// clip land outside the visible area.
func clip(r, screen canvas.Rect, margin float64) canvas.Rect {
	x0 := math.Max(r.X, screen.X-margin)
	y0 := math.Max(r.Y, screen.Y-margin)
	x1 := math.Min(r.Right(), screen.Right()+margin)
	y1 := math.Min(r.Bottom(), screen.Bottom()+margin)
	return canvas.Rect{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0}
}

func fillRoundedRect(dst draw.Image, r canvas.Rect, radius float64, c color.Color) {
	b := dst.Bounds()
	z := vector.NewRasterizer(b.Dx(), b.Dy())
	radius = math.Min(radius, math.Min(r.Width, r.Height)/2)

	x0, y0 := float32(r.X), float32(r.Y)
	x1, y1 := float32(r.Right()), float32(r.Bottom())
	k := float32(radius)

	z.MoveTo(x0+k, y0)
	z.LineTo(x1-k, y0)
	z.QuadTo(x1, y0, x1, y0+k)
	z.LineTo(x1, y1-k)
	z.QuadTo(x1, y1, x1-k, y1)
	z.LineTo(x0+k, y1)
	z.QuadTo(x0, y1, x0, y1-k)
	z.LineTo(x0, y0+k)
	z.QuadTo(x0, y0, x0+k, y0)
	z.ClosePath()

	z.Draw(dst, b, image.NewUniform(c), image.Point{})
}

func drawCentered(dst draw.Image, s string, cx, cy int, c color.Color) {
	d := &font.Drawer{Dst: dst, Src: image.NewUniform(c), Face: basicfont.Face7x13}
	width := d.MeasureString(s)
	d.Dot = fixed.Point26_6{X: fixed.I(cx) - width/2, Y: fixed.I(cy + 4)}
	d.DrawString(s)
}

func drawHUD(dst draw.Image, lines []string) {
	box := image.Rect(4, 4, 184, 12+16*len(lines))
	draw.Draw(dst, box.Intersect(dst.Bounds()), image.NewUniform(color.RGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xCC}), image.Point{}, draw.Over)
	for i, line := range lines {
		d := &font.Drawer{Dst: dst, Src: image.NewUniform(HUDText), Face: basicfont.Face7x13,
			Dot: fixed.P(10, 20+16*i)}
		d.DrawString(line)
	}
}
