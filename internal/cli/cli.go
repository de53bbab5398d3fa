// Package cli implements the isocell command-line interface.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/isocell/isocell/pkg/buildinfo"
	"github.com/isocell/isocell/pkg/cache"
	"github.com/isocell/isocell/pkg/config"
	"github.com/isocell/isocell/pkg/observability"
	"github.com/isocell/isocell/pkg/observability/prom"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "isocell"
)

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

	configPath  string
	verbose     bool
	backend     string
	dataPath    string
	metricsFile string
	registry    *prometheus.Registry
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "isocell partitions road graphs for fast isochrones",
		Long: `isocell splits a road graph into compact cells with the inertial flow
heuristic and stores per-edge accessibility and border attributes in compact
binary stores.`,
		Version:           buildinfo.Read().Version,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: c.preRun,
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return c.writeMetrics()
		},
	}
	root.SetVersionTemplate(buildinfo.Template())

	pf := root.PersistentFlags()
	pf.BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose logging")
	pf.StringVarP(&c.configPath, "config", "c", "", "config file (.toml, .yaml or .yml)")
	pf.StringVar(&c.backend, "backend", "", "storage backend: memory, file, badger or redis")
	pf.StringVar(&c.dataPath, "data", "", "storage path for the file and badger backends")
	pf.StringVar(&c.metricsFile, "metrics-file", "", "write Prometheus metrics to this textfile after the run")
	registerRootCompletions(root)

	for _, cmd := range []*cobra.Command{c.importCommand(), c.partitionCommand(), c.watchCommand()} {
		cmd.ValidArgsFunction = completeGraphFile
		root.AddCommand(cmd)
	}
	root.AddCommand(c.inspectCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// preRun applies --verbose and registers metrics hooks when requested.
func (c *CLI) preRun(cmd *cobra.Command, args []string) error {
	if c.verbose {
		c.SetLogLevel(LogDebug)
	}
	if c.metricsFile != "" {
		c.registry = prometheus.NewRegistry()
		m := prom.New(c.registry)
		observability.SetPartitionHooks(m)
		observability.SetStoreHooks(m)
	}
	return nil
}

func (c *CLI) writeMetrics() error {
	if c.registry == nil {
		return nil
	}
	if err := prom.WriteTextfile(c.metricsFile, c.registry); err != nil {
		return fmt.Errorf("write metrics: %w", err)
	}
	c.Logger.Debug("metrics written", "path", c.metricsFile)
	return nil
}

// =============================================================================
// Configuration
// =============================================================================

// loadConfig reads --config (or the defaults) and applies command-line
// overrides. The log level from the file applies unless --verbose is set.
func (c *CLI) loadConfig(cmd *cobra.Command, pf *partitionFlags) (*config.Config, error) {
	cfg := config.Default()
	if c.configPath != "" {
		loaded, err := config.Load(c.configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("backend") {
		cfg.Storage.Backend = c.backend
	}
	if flags.Changed("data") {
		cfg.Storage.Path = c.dataPath
	}
	if pf != nil {
		pf.apply(cmd, &cfg.Partition)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if !c.verbose {
		if level, err := log.ParseLevel(cfg.Log.Level); err == nil {
			c.SetLogLevel(level)
		}
	}
	return cfg, nil
}

// partitionFlags are the partitioner overrides shared by partition and watch.
type partitionFlags struct {
	minCell  int
	maxCell  int
	threads  int
	fraction float64
	keepComp bool
}

func (p *partitionFlags) register(cmd *cobra.Command) {
	f := cmd.Flags()
	f.IntVar(&p.minCell, "min-cell", 0, "minimum nodes per cell")
	f.IntVar(&p.maxCell, "max-cell", 0, "maximum nodes per cell")
	f.IntVar(&p.threads, "threads", 0, "goroutines splitting subtrees")
	f.Float64Var(&p.fraction, "split-fraction", 0, "share of nodes seeding source and sink")
	f.BoolVar(&p.keepComp, "no-separate-components", false, "do not partition connected components independently")
}

func (p *partitionFlags) apply(cmd *cobra.Command, cfg *config.PartitionConfig) {
	f := cmd.Flags()
	if f.Changed("min-cell") {
		cfg.MinCellNodes = p.minCell
	}
	if f.Changed("max-cell") {
		cfg.MaxCellNodes = p.maxCell
	}
	if f.Changed("threads") {
		cfg.MaxThreads = p.threads
	}
	if f.Changed("split-fraction") {
		cfg.SplitFraction = p.fraction
	}
	if f.Changed("no-separate-components") {
		cfg.SeparateConnectedComponents = !p.keepComp
	}
}

// =============================================================================
// Tree Cache
// =============================================================================

// newTreeCache picks the cache for cfg: nothing for memory storage or with
// noCache, Redis next to a Redis store, files under the user cache otherwise.
func newTreeCache(ctx context.Context, cfg *config.Config, noCache bool) (*cache.TreeCache, func(), error) {
	if noCache || cfg.Storage.Backend == config.BackendMemory {
		return cache.NewTreeCache(cache.NewNullCache(), 0), func() {}, nil
	}
	if cfg.Storage.Backend == config.BackendRedis {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Storage.RedisAddr,
			Password: cfg.Storage.RedisPassword,
			DB:       cfg.Storage.RedisDB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, nil, fmt.Errorf("connect redis %s: %w", cfg.Storage.RedisAddr, err)
		}
		return cache.NewTreeCache(cache.NewRedisCache(client, ""), 0), func() { client.Close() }, nil
	}
	dir, err := cacheDir()
	if err != nil {
		return cache.NewTreeCache(cache.NewNullCache(), 0), func() {}, nil
	}
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		return nil, nil, err
	}
	return cache.NewTreeCache(fc, 0), func() {}, nil
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/isocell/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}
