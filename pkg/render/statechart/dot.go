package statechart

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/stripview/pkg/gesture"
)

// Options configures diagram generation.
type Options struct {
	// Highlight fills the node for this phase.
	Highlight gesture.Phase
	// Highlighted enables Highlight; the zero Phase is a valid phase.
	Highlighted bool
	// Wheel includes the wheel self-loops.
	Wheel bool
}

type transition struct {
	from, to gesture.Phase
	label    string
	wheel    bool
}

var transitions = []transition{
	{gesture.PhaseIdle, gesture.PhaseActive, "first pinch sample\\ncapture memo", false},
	{gesture.PhaseActive, gesture.PhaseActive, "pinch sample\\nanchor at origin", false},
	{gesture.PhaseActive, gesture.PhaseIdle, "last sample\\napply, drop memo", false},
	{gesture.PhaseActive, gesture.PhaseIdle, "cancel\\ndrop memo", false},
	{gesture.PhaseIdle, gesture.PhaseIdle, "wheel\\nreplace position", true},
	{gesture.PhaseActive, gesture.PhaseActive, "wheel\\nreplace position", true},
}

// ToDOT returns the Graphviz DOT source of the pinch state machine.
func ToDOT(opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph pinch {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, color=\"#E0E0E0\", fontsize=18, margin=\"0.3,0.15\"];\n")
	buf.WriteString("  edge [fontsize=11];\n")
	buf.WriteString("\n")

	for _, p := range []gesture.Phase{gesture.PhaseIdle, gesture.PhaseActive} {
		attrs := fmt.Sprintf("label=%q", p.String())
		if opts.Highlighted && opts.Highlight == p {
			attrs += ", fillcolor=\"#FAF8F6\", penwidth=3, color=\"#333333\""
		}
		fmt.Fprintf(&buf, "  %q [%s];\n", p.String(), attrs)
	}

	buf.WriteString("\n")
	for _, t := range transitions {
		if t.wheel && !opts.Wheel {
			continue
		}
		style := ""
		if t.wheel {
			style = ", style=dashed"
		}
		fmt.Fprintf(&buf, "  %q -> %q [label=\"%s\"%s];\n", t.from.String(), t.to.String(), t.label, style)
	}

	buf.WriteString("}\n")
	return buf.String()
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	data, err := render(ctx, dot, graphviz.SVG)
	if err != nil {
		return nil, err
	}
	return normalizeViewBox(data), nil
}

// RenderPNG renders a DOT graph to PNG using Graphviz.
func RenderPNG(ctx context.Context, dot string) ([]byte, error) {
	return render(ctx, dot, graphviz.PNG)
}

func render(ctx context.Context, dot string, format graphviz.Format) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, format, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's pt-based root element with a
// pixel-sized one so browsers scale the diagram predictably.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(root))
}
