package frame

import (
	"bytes"
	"fmt"
	"image/color"
	"math"
)

// RenderSVG renders f as a standalone SVG document sized to the viewport.
func RenderSVG(f Frame) []byte {
	var buf bytes.Buffer
	w, h := f.Viewport.Width, f.Viewport.Height
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		w, h, w, h)
	fmt.Fprintf(&buf, `  <rect x="0" y="0" width="%.1f" height="%.1f" fill="%s"/>`+"\n", w, h, hex(Background))

	radius := PanelRadius * f.Transform.Scale
	stroke := math.Max(1, f.Transform.Scale)
	for i, r := range f.Sections {
		fmt.Fprintf(&buf, `  <rect id="section-%d" class="section" x="%.2f" y="%.2f" width="%.2f" height="%.2f" rx="%.2f" ry="%.2f" fill="%s" stroke="%s" stroke-width="%.2f"/>`+"\n",
			i, r.X, r.Y, r.Width, r.Height, radius, radius, hex(PanelFill), hex(PanelEdge), stroke)
	}

	if f.Labels {
		size := 48 * f.Transform.Scale
		for i, r := range f.Sections {
			c := r.Center()
			fmt.Fprintf(&buf, `  <text x="%.2f" y="%.2f" text-anchor="middle" dominant-baseline="middle" font-family="sans-serif" font-size="%.1f" fill="%s">%s</text>`+"\n",
				c.X, c.Y, size, hex(LabelText), Label(i))
		}
	}

	if f.HUD {
		renderHUD(&buf, f)
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func renderHUD(buf *bytes.Buffer, f Frame) {
	lines := f.HUDLines()
	fmt.Fprintf(buf, `  <g class="hud" font-family="monospace" font-size="13" fill="%s">`+"\n", hex(HUDText))
	fmt.Fprintf(buf, `    <rect x="4" y="4" width="180" height="%d" fill="#FFFFFF" fill-opacity="0.8" rx="4"/>`+"\n", 8+16*len(lines))
	for i, line := range lines {
		fmt.Fprintf(buf, `    <text x="10" y="%d">%s</text>`+"\n", 20+16*i, line)
	}
	buf.WriteString("  </g>\n")
}

func hex(c color.RGBA) string {
	return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
}
