package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/stripview/pkg/cache"
	"github.com/matzehuels/stripview/pkg/errors"
	"github.com/matzehuels/stripview/pkg/gesture"
	"github.com/matzehuels/stripview/pkg/render/statechart"
)

var stateFormats = map[string]bool{"dot": true, "svg": true, "png": true}

// statesCommand draws the pinch state machine.
func (c *CLI) statesCommand() *cobra.Command {
	var (
		format  string
		output  string
		phase   string
		wheel   bool
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "states",
		Short: "Draw the pinch gesture state machine",
		Long: `Draw the state machine of the pinch gesture controller with Graphviz.

--phase highlights one state; --wheel adds the wheel transitions, which
never change the phase.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := errors.ValidateFormat(format, stateFormats); err != nil {
				return err
			}
			opts := statechart.Options{Wheel: wheel}
			if phase != "" {
				p, err := parsePhase(phase)
				if err != nil {
					return err
				}
				opts.Highlight, opts.Highlighted = p, true
			}
			return c.runStates(cmd.Context(), opts, format, output, noCache)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "svg", "output format: svg, png, dot")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: states.<format>)")
	cmd.Flags().StringVar(&phase, "phase", "", "highlight a phase: idle, active")
	cmd.Flags().BoolVar(&wheel, "wheel", false, "include wheel transitions")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

func parsePhase(s string) (gesture.Phase, error) {
	for _, p := range []gesture.Phase{gesture.PhaseIdle, gesture.PhaseActive} {
		if p.String() == s {
			return p, nil
		}
	}
	return 0, errors.New(errors.ErrCodeInvalidInput, "unknown phase %q (must be idle or active)", s)
}

func (c *CLI) runStates(ctx context.Context, opts statechart.Options, format, output string, noCache bool) error {
	if output == "" {
		output = "states." + format
	}
	if err := errors.ValidatePath(output); err != nil {
		return err
	}

	data, cached, err := c.renderStates(ctx, opts, format, noCache)
	if err != nil {
		return err
	}
	if err := os.WriteFile(output, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", output, err)
	}

	if cached {
		printSuccess("Wrote state diagram %s", StyleDim.Render("("+iconCached+")"))
	} else {
		printSuccess("Wrote state diagram")
	}
	printFile(output)
	return nil
}

// renderStates renders the diagram, reading and filling the cache for the
// graphviz formats.
func (c *CLI) renderStates(ctx context.Context, opts statechart.Options, format string, noCache bool) ([]byte, bool, error) {
	dot := statechart.ToDOT(opts)
	if format == "dot" {
		return []byte(dot), false, nil
	}

	store, err := c.newCache(noCache)
	if err != nil {
		return nil, false, err
	}
	defer store.Close()

	key := cache.NewDefaultKeyer().DiagramKey(format, dot)
	if data, hit, err := store.Get(ctx, key); err == nil && hit {
		return data, true, nil
	}

	spinner := newSpinner(ctx, "Running graphviz...")
	spinner.Start()
	var data []byte
	switch format {
	case "svg":
		data, err = statechart.RenderSVG(ctx, dot)
	case "png":
		data, err = statechart.RenderPNG(ctx, dot)
	}
	if err != nil {
		spinner.StopWithError("Graphviz failed")
		return nil, false, err
	}
	spinner.Stop()

	if err := store.Set(ctx, key, data, cache.DiagramTTL); err != nil {
		c.Logger.Warn("cache write failed", "error", err)
	}
	return data, false, nil
}
