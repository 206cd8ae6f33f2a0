// Package cli implements the flowtower command-line interface.
//
// Commands read from the workflow engine's REST API, lay out workflow
// definition diagrams and serve them over HTTP. The CLI is built on cobra;
// output is styled with lipgloss and logging goes through charmbracelet/log.
//
// # Commands
//
//   - workflows, tasks, events, logs: browse the API (tables, --json, --jq)
//   - stats: system overview, --watch for a live dashboard
//   - layout, render: lay out a diagram file or workflow and write SVG, DOT,
//     PNG or JSON
//   - serve: run the layout HTTP server
//   - cache: inspect and clear the local cache
//
// # Configuration
//
// Settings come from flags, then FLOWTOWER_* environment variables, then
// $XDG_CONFIG_HOME/flowtower/config.toml, then built-in defaults.
package cli

import (
	"context"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/flowtower/pkg/api"
	"github.com/matzehuels/flowtower/pkg/buildinfo"
	"github.com/matzehuels/flowtower/pkg/cache"
	"github.com/matzehuels/flowtower/pkg/observability"
	"github.com/matzehuels/flowtower/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "flowtower"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	flags  globalFlags
	config Config
}

// globalFlags are the persistent flags of the root command.
type globalFlags struct {
	apiURL     string
	redisURL   string
	configPath string
	verbose    bool
	noCache    bool
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		config: defaultConfig(),
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
		Short: "Flowtower monitors durable workflows and draws their diagrams",
		Long: `Flowtower is a CLI for a durable workflow engine. It browses workflows,
tasks, events and logs through the engine's REST API and lays out workflow
definition diagrams as SVG, DOT, PNG or JSON.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.setup(cmd)
		},
	}

	root.SetVersionTemplate(buildinfo.Template())

	pf := root.PersistentFlags()
	pf.StringVar(&c.flags.apiURL, "api-url", "", "workflow engine API base URL (env FLOWTOWER_API_URL)")
	pf.StringVar(&c.flags.redisURL, "redis-url", "", "share the cache through Redis (env FLOWTOWER_REDIS_URL)")
	pf.StringVar(&c.flags.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/flowtower/config.toml)")
	pf.BoolVarP(&c.flags.verbose, "verbose", "v", false, "enable verbose logging")
	pf.BoolVar(&c.flags.noCache, "no-cache", false, "disable caching")

	root.AddCommand(c.workflowsCommand())
	root.AddCommand(c.tasksCommand())
	root.AddCommand(c.eventsCommand())
	root.AddCommand(c.logsCommand())
	root.AddCommand(c.statsCommand())
	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// setup resolves configuration and installs the logger before any command
// runs.
func (c *CLI) setup(cmd *cobra.Command) error {
	if c.flags.verbose {
		c.SetLogLevel(LogDebug)
		hooks := observability.NewLogHooks(c.Logger)
		observability.SetPipelineHooks(hooks)
		observability.SetCacheHooks(hooks)
		observability.SetHTTPHooks(hooks)
	}

	file, err := loadConfig(c.flags.configPath, c.Logger)
	if err != nil {
		return err
	}
	c.config = resolveConfig(file, envLookup, c.flags, cmd.Flags().Changed)
	c.Logger.Debug("resolved config", "api_url", c.config.APIURL, "redis", c.config.RedisURL != "", "cache", !c.config.NoCache)

	cmd.SetContext(withLogger(cmd.Context(), c.Logger))
	return nil
}

// =============================================================================
// Factories
// =============================================================================

// newCache opens the configured cache: none with --no-cache, Redis when a URL
// is set, otherwise the file cache. An unreachable Redis falls back to the
// file cache.
func (c *CLI) newCache(ctx context.Context) cache.Cache {
	if c.config.NoCache {
		return cache.NewNullCache()
	}
	if c.config.RedisURL != "" {
		rc, err := cache.NewRedisCache(ctx, c.config.RedisURL)
		if err == nil {
			return cache.Instrument(rc, "redis")
		}
		c.Logger.Warn("redis unavailable, using file cache", "err", err)
	}
	fc, err := cache.NewFileCache("")
	if err != nil {
		c.Logger.Warn("file cache unavailable, caching disabled", "err", err)
		return cache.NewNullCache()
	}
	return cache.Instrument(fc, "file")
}

// newClient creates an API client sharing cc.
func (c *CLI) newClient(cc cache.Cache) (*api.Client, error) {
	return api.NewClient(c.config.APIURL,
		api.WithTimeout(c.config.Timeout.Duration),
		api.WithCache(cc, c.config.CacheTTL.Duration),
	)
}

// newRunner creates a pipeline runner backed by the API.
func (c *CLI) newRunner(ctx context.Context) (*pipeline.Runner, error) {
	cc := c.newCache(ctx)
	client, err := c.newClient(cc)
	if err != nil {
		_ = cc.Close()
		return nil, err
	}
	return pipeline.NewRunner(cc, nil, client, c.Logger), nil
}

// layoutDefaults returns pipeline options carrying the configured layout.
func (c *CLI) layoutDefaults() pipeline.Options {
	return pipeline.Options{
		Direction: c.config.Layout.Direction,
		RankSep:   c.config.Layout.RankSep,
		NodeSep:   c.config.Layout.NodeSep,
	}
}
