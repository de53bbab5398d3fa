package config

import (
	"context"
	"fmt"
	"io"
	"slices"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"

	"github.com/isocell/isocell/pkg/edgestore"
	isoerrors "github.com/isocell/isocell/pkg/errors"
	"github.com/isocell/isocell/pkg/graph"
	"github.com/isocell/isocell/pkg/partition"
)

// Storage backends.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendBadger = "badger"
	BackendRedis  = "redis"
)

// Backends lists the accepted storage backends.
var Backends = []string{BackendMemory, BackendFile, BackendBadger, BackendRedis}

// Config is the complete isocell configuration.
type Config struct {
	Partition PartitionConfig `toml:"partition" yaml:"partition"`
	Storage   StorageConfig   `toml:"storage" yaml:"storage"`
	Log       LogConfig       `toml:"log" yaml:"log"`
}

// PartitionConfig holds the partitioner parameters.
type PartitionConfig struct {
	MinCellNodes                int     `toml:"min_cell_nodes" yaml:"min_cell_nodes"`
	MaxCellNodes                int     `toml:"max_cell_nodes" yaml:"max_cell_nodes"`
	MaxSplittingIterations      int64   `toml:"max_splitting_iterations" yaml:"max_splitting_iterations"`
	SeparateConnectedComponents bool    `toml:"separate_connected_components" yaml:"separate_connected_components"`
	SplitFraction               float64 `toml:"split_fraction" yaml:"split_fraction"`
	MaxThreads                  int     `toml:"max_threads" yaml:"max_threads"`

	// EdgeCapacity is the capacity of edges whose graph record has none.
	EdgeCapacity int `toml:"edge_capacity" yaml:"edge_capacity"`
}

// StorageConfig selects and configures the segment directory.
type StorageConfig struct {
	Backend       string `toml:"backend" yaml:"backend"`
	Path          string `toml:"path" yaml:"path"`
	RedisAddr     string `toml:"redis_addr" yaml:"redis_addr"`
	RedisPassword string `toml:"redis_password" yaml:"redis_password"`
	RedisDB       int    `toml:"redis_db" yaml:"redis_db"`
	RedisPrefix   string `toml:"redis_prefix" yaml:"redis_prefix"`
	SyncWrites    bool   `toml:"sync_writes" yaml:"sync_writes"`
}

// LogConfig configures the CLI logger.
type LogConfig struct {
	Level string `toml:"level" yaml:"level"`
}

// Default returns the reference configuration: the partitioner defaults and
// file storage under ./isocell-data.
func Default() *Config {
	opts := partition.DefaultOptions()
	return &Config{
		Partition: PartitionConfig{
			MinCellNodes:                opts.MinCellNodes,
			MaxCellNodes:                opts.MaxCellNodes,
			MaxSplittingIterations:      opts.MaxSplittingIterations,
			SeparateConnectedComponents: opts.SeparateConnectedComponents,
			SplitFraction:               opts.SplitFraction,
			MaxThreads:                  opts.MaxThreads,
			EdgeCapacity:                graph.DefaultCapacity,
		},
		Storage: StorageConfig{
			Backend:     BackendFile,
			Path:        "isocell-data",
			RedisPrefix: edgestore.DefaultRedisPrefix,
			SyncWrites:  true,
		},
		Log: LogConfig{Level: "info"},
	}
}

// Options converts the partition section to partitioner options.
func (p PartitionConfig) Options(logger *log.Logger) partition.Options {
	return partition.Options{
		MinCellNodes:                p.MinCellNodes,
		MaxCellNodes:                p.MaxCellNodes,
		MaxSplittingIterations:      p.MaxSplittingIterations,
		SeparateConnectedComponents: p.SeparateConnectedComponents,
		SplitFraction:               p.SplitFraction,
		MaxThreads:                  p.MaxThreads,
		Logger:                      logger,
	}
}

// Validate reports the first invalid setting as an INVALID_CONFIG error.
func (c *Config) Validate() error {
	if err := c.Partition.Options(nil).Validate(); err != nil {
		return err
	}
	if c.Partition.EdgeCapacity < 0 {
		return isoerrors.New(isoerrors.ErrCodeInvalidConfig, "edge capacity must not be negative, got %d", c.Partition.EdgeCapacity)
	}
	if !slices.Contains(Backends, c.Storage.Backend) {
		return isoerrors.New(isoerrors.ErrCodeInvalidConfig, "unknown storage backend %q (want one of %v)", c.Storage.Backend, Backends)
	}
	switch c.Storage.Backend {
	case BackendFile, BackendBadger:
		if c.Storage.Path == "" {
			return isoerrors.New(isoerrors.ErrCodeInvalidConfig, "storage path is required for the %s backend", c.Storage.Backend)
		}
	case BackendRedis:
		if c.Storage.RedisAddr == "" {
			return isoerrors.New(isoerrors.ErrCodeInvalidConfig, "redis_addr is required for the redis backend")
		}
	}
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return isoerrors.Wrap(isoerrors.ErrCodeInvalidConfig, err, "log level %q", c.Log.Level)
	}
	return nil
}

// OpenDirectory opens the configured segment directory. The caller must
// Close it. logger, if non-nil, receives badger's internal messages.
func (s StorageConfig) OpenDirectory(ctx context.Context, logger *log.Logger) (edgestore.Directory, error) {
	switch s.Backend {
	case BackendMemory:
		return edgestore.NewMemoryDirectory(), nil
	case BackendFile:
		dir, err := edgestore.NewFileDirectory(s.Path)
		if err != nil {
			return nil, err
		}
		return dir, nil
	case BackendBadger:
		cfg := edgestore.DefaultBadgerConfig(s.Path)
		cfg.SyncWrites = s.SyncWrites
		cfg.Logger = logger
		dir, err := edgestore.OpenBadgerDirectory(cfg)
		if err != nil {
			return nil, err
		}
		return dir, nil
	case BackendRedis:
		dir, err := edgestore.OpenRedisDirectory(ctx, edgestore.RedisConfig{
			Addr:     s.RedisAddr,
			Password: s.RedisPassword,
			DB:       s.RedisDB,
			Prefix:   s.RedisPrefix,
		})
		if err != nil {
			return nil, err
		}
		return dir, nil
	}
	return nil, isoerrors.New(isoerrors.ErrCodeInvalidConfig, "unknown storage backend %q", s.Backend)
}

// WriteTOML encodes c as TOML.
func (c *Config) WriteTOML(w io.Writer) error {
	if err := toml.NewEncoder(w).Encode(c); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return nil
}
