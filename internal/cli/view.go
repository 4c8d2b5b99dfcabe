package cli

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/stripview/internal/desktop"
	"github.com/matzehuels/stripview/pkg/gesture"
)

// viewCommand creates the interactive viewer command.
func (c *CLI) viewCommand() *cobra.Command {
	var (
		gui    bool
		noHUD  bool
		labels bool
		width  float32
		height float32
	)

	cmd := &cobra.Command{
		Use:   "view",
		Short: "Explore the strip interactively",
		Long: `Open an interactive viewer.

In the terminal, cells map to virtual pixels (see [view] in the config).
The mouse wheel pans; ctrl+wheel, or + and -, zooms at the pointer. esc
cancels an active pinch, r re-fits, h toggles the HUD, l toggles labels,
q quits.

With --gui, a desktop window is opened instead.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if gui {
				return c.runDesktop(cmd.Context(), width, height, !noHUD, labels)
			}
			return c.runTerminal(cmd.Context(), !noHUD, labels)
		},
	}

	cmd.Flags().BoolVar(&gui, "gui", false, "open a desktop window")
	cmd.Flags().BoolVar(&noHUD, "no-hud", false, "hide the scale/position overlay")
	cmd.Flags().BoolVar(&labels, "labels", true, "draw section labels")
	cmd.Flags().Float32Var(&width, "window-width", 1280, "initial window width (--gui)")
	cmd.Flags().Float32Var(&height, "window-height", 720, "initial window height (--gui)")

	return cmd
}

func (c *CLI) runTerminal(ctx context.Context, hud, labels bool) error {
	m := NewViewModel(ctx, ViewModelOptions{
		Config:     c.Config.Canvas,
		CellWidth:  c.Config.View.CellWidth,
		CellHeight: c.Config.View.CellHeight,
		WheelStep:  c.Config.Zoom.WheelStep,
		HUD:        hud,
		Labels:     labels,
		Controller: []gesture.Option{gesture.WithLogger(c.Logger)},
	})

	// Logging would scribble over the alternate screen.
	level := c.Logger.GetLevel()
	c.SetLogLevel(LogWarn)
	defer c.SetLogLevel(level)

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseAllMotion(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("viewer: %w", err)
	}
	printTransform("Final", m.Transform())
	return nil
}

func (c *CLI) runDesktop(ctx context.Context, width, height float32, hud, labels bool) error {
	return desktop.Run(ctx, appName, width, height, desktop.Options{
		Config:    c.Config.Canvas,
		WheelStep: c.Config.Zoom.WheelStep,
		HUD:       hud,
		Labels:    labels,
		Logger:    c.Logger,
	})
}
