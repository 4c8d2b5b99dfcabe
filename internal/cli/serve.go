package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/stripview/internal/server"
	"github.com/matzehuels/stripview/pkg/cache"
	"github.com/matzehuels/stripview/pkg/pipeline"
)

// serveCommand creates the HTTP session API command.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr        string
		redisURL    string
		maxSessions int
		idle        time.Duration
		noCache     bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP session API",
		Long: `Serve gesture-driven canvases over HTTP.

Clients create a session for their viewport, post pinch and wheel samples,
and fetch rendered frames. Sessions live in memory. Rendered frames are
cached on disk, or in Redis with --redis-url so several servers can share
them.`,
		Example: `  stripview serve --addr :8080
  stripview serve --redis-url redis://localhost:6379/0`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("addr") {
				c.Config.Server.Addr = addr
			}
			if cmd.Flags().Changed("redis-url") {
				c.Config.Cache.RedisURL = redisURL
			}
			if cmd.Flags().Changed("max-sessions") {
				c.Config.Server.MaxSessions = maxSessions
			}
			if err := c.Config.Validate(); err != nil {
				return err
			}
			return c.runServe(cmd.Context(), idle, noCache)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, 127.0.0.1:8080)")
	cmd.Flags().StringVar(&redisURL, "redis-url", "", "share rendered frames through Redis")
	cmd.Flags().IntVar(&maxSessions, "max-sessions", 0, "maximum live sessions before evicting the least recently used")
	cmd.Flags().DurationVar(&idle, "idle-timeout", server.DefaultIdleTimeout, "drop sessions unused for this long")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable frame caching")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, idle time.Duration, noCache bool) error {
	runner, err := c.serverRunner(ctx, noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	srv := server.New(server.Options{
		Canvas:          c.Config.Canvas,
		Runner:          runner,
		Logger:          c.Logger,
		MaxSessions:     c.Config.Server.MaxSessions,
		IdleTimeout:     idle,
		ShutdownTimeout: time.Duration(c.Config.Server.ShutdownSeconds) * time.Second,
	})

	printSuccess("Serving on %s", StyleHighlight.Render("http://"+c.Config.Server.Addr))
	printNextStep("Create a session", fmt.Sprintf(`curl -d '{"width":1600,"height":800}' http://%s/api/v1/sessions`, c.Config.Server.Addr))

	err = srv.ListenAndServe(ctx, c.Config.Server.Addr)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// serverRunner picks the frame cache for the server: Redis when configured,
// otherwise the local file cache.
func (c *CLI) serverRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	if noCache || c.Config.Cache.RedisURL == "" {
		return c.newRunner(noCache)
	}

	rc, err := cache.NewRedisCache(ctx, c.Config.Cache.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	var keyer cache.Keyer = cache.NewDefaultKeyer()
	if c.Config.Cache.KeyPrefix != "" {
		keyer = cache.NewScopedKeyer(keyer, c.Config.Cache.KeyPrefix)
	}
	c.Logger.Info("using redis frame cache", "prefix", c.Config.Cache.KeyPrefix)
	return pipeline.NewRunner(rc, keyer, c.Logger), nil
}
