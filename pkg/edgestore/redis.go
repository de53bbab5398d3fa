package edgestore

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	isoerrors "github.com/isocell/isocell/pkg/errors"
)

// DefaultRedisPrefix is prepended to segment names when no prefix is given.
const DefaultRedisPrefix = "isocell:segment:"

// RedisConfig configures a Redis-backed segment directory.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
}

// RedisDirectory stores each segment as one Redis string value.
type RedisDirectory struct {
	client redis.UniversalClient
	prefix string
	owned  bool
}

// NewRedisDirectory wraps an existing client. Close does not close client.
func NewRedisDirectory(client redis.UniversalClient, prefix string) *RedisDirectory {
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}
	return &RedisDirectory{client: client, prefix: prefix}
}

// OpenRedisDirectory connects to cfg.Addr and verifies the connection with a
// PING. The returned directory closes its client on Close.
func OpenRedisDirectory(ctx context.Context, cfg RedisConfig) (*RedisDirectory, error) {
	if cfg.Addr == "" {
		return nil, isoerrors.New(isoerrors.ErrCodeInvalidConfig, "redis address is required")
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connect redis %s: %w", cfg.Addr, err)
	}
	d := NewRedisDirectory(client, cfg.Prefix)
	d.owned = true
	return d, nil
}

func (d *RedisDirectory) Segment(name string) (Segment, error) {
	if err := isoerrors.ValidateSegmentName(name); err != nil {
		return nil, err
	}
	return &redisSegment{client: d.client, name: name, key: d.prefix + name}, nil
}

func (d *RedisDirectory) Close() error {
	if d.owned {
		return d.client.Close()
	}
	return nil
}

type redisSegment struct {
	client redis.UniversalClient
	name   string
	key    string
}

func (s *redisSegment) Name() string { return s.name }

func (s *redisSegment) Load(ctx context.Context) ([]byte, error) {
	data, err := s.client.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSegmentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load segment %s: %w", s.name, err)
	}
	return data, nil
}

func (s *redisSegment) Save(ctx context.Context, data []byte) error {
	if err := s.client.Set(ctx, s.key, data, 0).Err(); err != nil {
		return fmt.Errorf("save segment %s: %w", s.name, err)
	}
	return nil
}

var _ Directory = (*RedisDirectory)(nil)
