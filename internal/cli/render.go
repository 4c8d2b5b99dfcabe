package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/stripview/pkg/errors"
	"github.com/matzehuels/stripview/pkg/pipeline"
	"github.com/matzehuels/stripview/pkg/render/frame"
)

// renderFlags holds the render command's flags.
type renderFlags struct {
	viewport viewportFlags
	zoom     float64
	at       string
	pan      string
	formats  string
	output   string
	hud      bool
	labels   bool
	noCache  bool
	refresh  bool
}

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	var flags renderFlags

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render a frame after replaying a pinch and a pan",
		Long: `Render one frame of the strip for a viewport.

The frame starts at the fit-to-viewport transform. With --zoom, a pinch to
that scale is replayed through the gesture controller at --at (default: the
viewport center); the scale is clamped to the zoom bounds. With --pan, a wheel
gesture then moves the view by that many pixels.

Results are cached locally for faster subsequent runs.`,
		Example: `  stripview render --width 1600 --height 800
  stripview render --zoom 1 --at 0,0 -f svg,png -o zoomed
  stripview render --pan 400,0 --hud --labels`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := c.renderOptions(flags)
			if err != nil {
				return err
			}
			return c.runRender(cmd.Context(), opts, flags)
		},
	}

	flags.viewport.register(cmd)
	cmd.Flags().Float64Var(&flags.zoom, "zoom", 0, "target scale of a replayed pinch (0: no pinch)")
	cmd.Flags().StringVar(&flags.at, "at", "", "pinch origin as x,y in screen pixels (default: viewport center)")
	cmd.Flags().StringVar(&flags.pan, "pan", "", "wheel pan as dx,dy in pixels after the pinch")
	cmd.Flags().StringVarP(&flags.formats, "format", "f", "", "output format(s): svg (default), png, json (comma-separated)")
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().BoolVar(&flags.hud, "hud", false, "draw the scale/position overlay")
	cmd.Flags().BoolVar(&flags.labels, "labels", false, "draw section labels")
	cmd.Flags().BoolVar(&flags.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&flags.refresh, "refresh", false, "re-render even when cached")

	return cmd
}

// renderOptions converts flags into pipeline options.
func (c *CLI) renderOptions(flags renderFlags) (pipeline.Options, error) {
	vp, err := flags.viewport.viewport()
	if err != nil {
		return pipeline.Options{}, err
	}
	opts := pipeline.Options{
		Config:   c.Config.Canvas,
		Viewport: vp,
		Zoom:     flags.zoom,
		Steps:    c.Config.Zoom.PinchSteps,
		Formats:  parseFormats(flags.formats),
		HUD:      flags.hud,
		Labels:   flags.labels,
		Refresh:  flags.refresh,
		Logger:   c.Logger,
	}
	if flags.at != "" {
		p, err := parsePoint(flags.at)
		if err != nil {
			return opts, err
		}
		opts.At = &p
	}
	if flags.pan != "" {
		p, err := parsePoint(flags.pan)
		if err != nil {
			return opts, err
		}
		opts.Pan = &p
	}
	return opts, opts.ValidateAndSetDefaults()
}

func (c *CLI) runRender(ctx context.Context, opts pipeline.Options, flags renderFlags) error {
	runner, err := c.newRunner(flags.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	prog := newProgress(c.Logger)
	spinner := newSpinner(ctx, "Rendering frame...")
	spinner.Start()

	result, err := runner.Execute(ctx, opts)
	if err != nil {
		spinner.StopWithError("Render failed")
		return err
	}
	spinner.Stop()
	prog.done("Rendered frame")

	paths, err := writeArtifacts(result.Artifacts, opts.Formats, flags.output)
	if err != nil {
		return err
	}

	printSuccess("Rendered %d visible sections", len(result.Frame.Visible()))
	printTransform("Transform", result.Transform)
	printStats(result.Stats.Samples, len(opts.Formats), result.CacheInfo.RenderHit)
	for _, p := range paths {
		printFile(p)
	}
	if opts.Zoom == 0 {
		printNextStep("Zoom in at the top-left", fmt.Sprintf("%s render --zoom 1 --at 0,0", appName))
	}
	return nil
}

// writeArtifacts writes one file per format and returns the paths.
// A single format goes to output as given; several formats share output as
// a base path. Without output, files are named frame.<format>.
func writeArtifacts(artifacts map[string][]byte, formats []string, output string) ([]string, error) {
	base := basePath(output)
	var paths []string
	for _, format := range formats {
		path := base + "." + format
		if len(formats) == 1 && output != "" {
			path = output
		}
		if err := errors.ValidatePath(path); err != nil {
			return paths, err
		}
		if err := os.WriteFile(path, artifacts[format], 0o644); err != nil {
			return paths, fmt.Errorf("write %s: %w", path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// basePath strips a known format extension from output.
func basePath(output string) string {
	if output == "" {
		return "frame"
	}
	ext := filepath.Ext(output)
	if frame.Formats[strings.TrimPrefix(ext, ".")] {
		return strings.TrimSuffix(output, ext)
	}
	return output
}
