package edgestore

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/dgraph-io/badger/v4"

	isoerrors "github.com/isocell/isocell/pkg/errors"
)

// badgerKeyPrefix namespaces segment keys inside a shared database.
const badgerKeyPrefix = "segment/"

// BadgerConfig configures an embedded BadgerDB used as a segment directory.
type BadgerConfig struct {
	// Path is the database directory. Ignored when InMemory is true.
	Path string

	// InMemory keeps the database off disk. Useful for tests.
	InMemory bool

	// SyncWrites fsyncs every committed transaction.
	SyncWrites bool

	// Logger receives BadgerDB's internal messages. Nil disables them.
	Logger *log.Logger
}

// DefaultBadgerConfig returns a durable on-disk configuration rooted at path.
func DefaultBadgerConfig(path string) BadgerConfig {
	return BadgerConfig{Path: path, SyncWrites: true}
}

// InMemoryBadgerConfig returns a configuration for tests.
func InMemoryBadgerConfig() BadgerConfig {
	return BadgerConfig{InMemory: true}
}

// badgerLogger adapts a charmbracelet logger to badger.Logger.
type badgerLogger struct {
	logger *log.Logger
}

func (l badgerLogger) Errorf(format string, args ...any)   { l.logger.Errorf(format, args...) }
func (l badgerLogger) Warningf(format string, args ...any) { l.logger.Warnf(format, args...) }
func (l badgerLogger) Infof(format string, args ...any)    { l.logger.Debugf(format, args...) }
func (l badgerLogger) Debugf(format string, args ...any)   { l.logger.Debugf(format, args...) }

// OpenBadger opens a BadgerDB instance. The caller must Close it.
func OpenBadger(cfg BadgerConfig) (*badger.DB, error) {
	if !cfg.InMemory && cfg.Path == "" {
		return nil, isoerrors.New(isoerrors.ErrCodeInvalidConfig, "badger path is required for persistent database")
	}

	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(cfg.Path, 0o750); err != nil {
			return nil, fmt.Errorf("create database directory %s: %w", cfg.Path, err)
		}
		opts = badger.DefaultOptions(cfg.Path)
	}
	opts = opts.WithSyncWrites(cfg.SyncWrites).WithNumVersionsToKeep(1)
	if cfg.Logger != nil {
		opts = opts.WithLogger(badgerLogger{logger: cfg.Logger})
	} else {
		opts = opts.WithLogger(nil)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger database: %w", err)
	}
	return db, nil
}

// BadgerDirectory stores each segment under one key of a BadgerDB.
type BadgerDirectory struct {
	db    *badger.DB
	owned bool
}

// NewBadgerDirectory wraps an open database. Close does not close db.
func NewBadgerDirectory(db *badger.DB) *BadgerDirectory {
	return &BadgerDirectory{db: db}
}

// OpenBadgerDirectory opens a database with cfg and returns a directory that
// closes it on Close.
func OpenBadgerDirectory(cfg BadgerConfig) (*BadgerDirectory, error) {
	db, err := OpenBadger(cfg)
	if err != nil {
		return nil, err
	}
	return &BadgerDirectory{db: db, owned: true}, nil
}

func (d *BadgerDirectory) Segment(name string) (Segment, error) {
	if err := isoerrors.ValidateSegmentName(name); err != nil {
		return nil, err
	}
	return &badgerSegment{db: d.db, name: name, key: []byte(badgerKeyPrefix + name)}, nil
}

func (d *BadgerDirectory) Close() error {
	if d.owned {
		return d.db.Close()
	}
	return nil
}

type badgerSegment struct {
	db   *badger.DB
	name string
	key  []byte
}

func (s *badgerSegment) Name() string { return s.name }

func (s *badgerSegment) Load(ctx context.Context) ([]byte, error) {
	var data []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(s.key)
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrSegmentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load segment %s: %w", s.name, err)
	}
	return data, nil
}

func (s *badgerSegment) Save(ctx context.Context, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(s.key, append([]byte(nil), data...))
	})
	if err != nil {
		return fmt.Errorf("save segment %s: %w", s.name, err)
	}
	return nil
}

var _ Directory = (*BadgerDirectory)(nil)
