package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/stripview/pkg/canvas"
)

// geometryCommand prints the layout geometry for a viewport.
func (c *CLI) geometryCommand() *cobra.Command {
	var (
		vpFlags viewportFlags
		asJSON  bool
	)

	cmd := &cobra.Command{
		Use:   "geometry",
		Short: "Print the fit transform and zoom bounds for a viewport",
		Long: `Print the layout geometry for a viewport: the content extent, the initial
fit-to-height transform, the zoom bounds, and the on-screen rectangles of the
container and every section at the initial transform.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			vp, err := vpFlags.viewport()
			if err != nil {
				return err
			}
			return c.runGeometry(vp, asJSON)
		},
	}

	vpFlags.register(cmd)
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a summary")
	return cmd
}

type geometryReport struct {
	Viewport  canvas.Viewport   `json:"viewport"`
	Extent    canvas.Size       `json:"extent"`
	Initial   canvas.Transform  `json:"initial"`
	Bounds    canvas.ZoomBounds `json:"zoom_bounds"`
	Container canvas.Rect       `json:"container"`
	Sections  []canvas.Rect     `json:"sections"`
}

func newGeometryReport(vp canvas.Viewport, cfg canvas.Configuration) geometryReport {
	initial := canvas.Initialize(vp, cfg)
	return geometryReport{
		Viewport:  vp,
		Extent:    canvas.Extent(cfg),
		Initial:   initial,
		Bounds:    canvas.ComputeZoomBounds(vp, cfg),
		Container: canvas.ContainerBounds(initial, cfg),
		Sections:  canvas.SectionBounds(initial, cfg),
	}
}

func (c *CLI) runGeometry(vp canvas.Viewport, asJSON bool) error {
	r := newGeometryReport(vp, c.Config.Canvas)

	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	}

	fmt.Println(StyleTitle.Render("Geometry"))
	printKeyValue("Viewport", fmt.Sprintf("%.0f × %.0f", vp.Width, vp.Height))
	printKeyValue("Extent", fmt.Sprintf("%.0f × %.0f", r.Extent.Width, r.Extent.Height))
	printTransform("Initial", r.Initial)
	printKeyValue("Zoom", fmt.Sprintf("%.4f … %.4f", r.Bounds.Min, r.Bounds.Max))
	if r.Bounds.Collapsed() {
		printWarning("min zoom exceeds max: the strip is narrower than the viewport at full size")
	}
	printKeyValue("Container", formatRect(r.Container))
	for i, s := range r.Sections {
		printDetail("section %d  %s", i+1, formatRect(s))
	}
	return nil
}

func formatRect(r canvas.Rect) string {
	return fmt.Sprintf("%.1f, %.1f  %.1f × %.1f", r.X, r.Y, r.Width, r.Height)
}
