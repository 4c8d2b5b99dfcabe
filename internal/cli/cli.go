// Package cli implements the stripview command-line interface.
//
// # Commands
//
//   - geometry: print the fit transform and zoom bounds for a viewport
//   - render: replay a pinch and pan, then write the frame (svg, png, json)
//   - view: interactive viewer in the terminal, or a window with --gui
//   - serve: HTTP session API
//   - states: draw the pinch state machine
//   - config, cache, completion: housekeeping
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging, which also
// logs every gesture event. Loggers are passed through context.Context.
package cli

import (
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/stripview/internal/config"
	"github.com/matzehuels/stripview/pkg/buildinfo"
	"github.com/matzehuels/stripview/pkg/cache"
	"github.com/matzehuels/stripview/pkg/canvas"
	"github.com/matzehuels/stripview/pkg/errors"
	"github.com/matzehuels/stripview/pkg/observability"
	"github.com/matzehuels/stripview/pkg/pipeline"
	"github.com/matzehuels/stripview/pkg/render/frame"
)

// appName is the application name used for display.
const appName = "stripview"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
	LogWarn  = log.WarnLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// Config is the effective configuration, loaded before any command runs.
	Config config.Config

	configPath string
	verbose    bool
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: config.Default(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Pinch-zoom and pan over a strip of panels",
		Long: `stripview computes and drives the view transform of a horizontal strip of
fixed-size panels: fit-to-viewport, zoom bounds, pinch zoom anchored at the
gesture origin, and wheel panning.`,
		Version:           buildinfo.Version,
		SilenceUsage:      true,
		PersistentPreRunE: c.setup,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/stripview/config.toml)")

	root.AddCommand(c.geometryCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.viewCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.statesCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// setup runs before every command: it sets the log level, loads the config
// file and registers the logging hooks.
func (c *CLI) setup(cmd *cobra.Command, args []string) error {
	if c.verbose {
		c.SetLogLevel(LogDebug)
	}
	cmd.SetContext(withLogger(cmd.Context(), c.Logger))

	path, err := c.resolveConfigPath()
	if err != nil {
		return err
	}
	if c.explicitConfig() && cmd.Annotations[annotationConfig] != configOptional {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return errors.Wrap(errors.ErrCodeFileNotFound, err, "config file %s", path)
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	c.Config = cfg
	c.Logger.Debug("loaded config", "path", path)

	if c.verbose {
		hooks := newLogHooks(c.Logger)
		observability.SetGestureHooks(hooks)
		observability.SetRenderHooks(hooks)
		observability.SetCacheHooks(hooks)
	}
	return nil
}

// Commands annotated with configOptional accept a --config path that does
// not exist yet.
const (
	annotationConfig = "config"
	configOptional   = "optional"
)

// explicitConfig reports whether the config path was named by the user
// rather than defaulted. Only the default path may be missing.
func (c *CLI) explicitConfig() bool {
	return c.configPath != "" || os.Getenv("STRIPVIEW_CONFIG") != ""
}

func (c *CLI) resolveConfigPath() (string, error) {
	if c.configPath != "" {
		return c.configPath, nil
	}
	if env := os.Getenv("STRIPVIEW_CONFIG"); env != "" {
		return env, nil
	}
	return config.Path()
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(noCache bool) (*pipeline.Runner, error) {
	fc, err := c.newCache(noCache)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(fc, nil, c.Logger), nil
}

func (c *CLI) newCache(noCache bool) (cache.Cache, error) {
	if noCache || c.Config.Cache.Disabled {
		return cache.NewNullCache(), nil
	}
	dir, err := c.cacheDir()
	if err != nil {
		c.Logger.Warn("cache disabled", "error", err)
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// cacheDir returns the configured cache directory or the XDG default.
func (c *CLI) cacheDir() (string, error) {
	if c.Config.Cache.Dir != "" {
		return c.Config.Cache.Dir, nil
	}
	return cache.DefaultDir()
}

// =============================================================================
// Flag Helpers
// =============================================================================

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{frame.FormatSVG}
	}
	return strings.Split(s, ",")
}

// parsePoint parses "x,y" into a point.
func parsePoint(s string) (canvas.Point, error) {
	xs, ys, ok := strings.Cut(s, ",")
	if !ok {
		return canvas.Point{}, errors.New(errors.ErrCodeInvalidInput, "point %q must be x,y", s)
	}
	x, err := strconv.ParseFloat(strings.TrimSpace(xs), 64)
	if err != nil {
		return canvas.Point{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "point %q", s)
	}
	y, err := strconv.ParseFloat(strings.TrimSpace(ys), 64)
	if err != nil {
		return canvas.Point{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "point %q", s)
	}
	return canvas.Point{X: x, Y: y}, nil
}

// viewportFlags holds the --width/--height pair shared by several commands.
type viewportFlags struct {
	width, height float64
}

func (v *viewportFlags) register(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&v.width, "width", 1600, "viewport width in pixels")
	cmd.Flags().Float64Var(&v.height, "height", 800, "viewport height in pixels")
}

func (v viewportFlags) viewport() (canvas.Viewport, error) {
	vp := canvas.Viewport{Width: v.width, Height: v.height}
	return vp, vp.Validate()
}
