package edgestore

import (
	"context"
	"errors"
	"sync"

	isoerrors "github.com/isocell/isocell/pkg/errors"
)

// ErrSegmentNotFound is returned by [Segment.Load] when nothing has been saved
// under the segment's name.
var ErrSegmentNotFound = errors.New("edgestore: segment not found")

// Segment is a named, opaque byte region that can be loaded and replaced as a
// whole.
type Segment interface {
	Name() string
	Load(ctx context.Context) ([]byte, error)
	Save(ctx context.Context, data []byte) error
}

// Directory hands out segments by name.
type Directory interface {
	// Segment returns the segment called name. The segment need not exist
	// yet; Load reports ErrSegmentNotFound until the first Save.
	Segment(name string) (Segment, error)
	Close() error
}

// MemoryDirectory keeps segments in process memory.
type MemoryDirectory struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemoryDirectory returns an empty in-memory directory.
func NewMemoryDirectory() *MemoryDirectory {
	return &MemoryDirectory{data: make(map[string][]byte)}
}

func (d *MemoryDirectory) Segment(name string) (Segment, error) {
	if err := isoerrors.ValidateSegmentName(name); err != nil {
		return nil, err
	}
	return &memorySegment{dir: d, name: name}, nil
}

// Names returns the names of all saved segments.
func (d *MemoryDirectory) Names() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	names := make([]string, 0, len(d.data))
	for n := range d.data {
		names = append(names, n)
	}
	return names
}

func (d *MemoryDirectory) Close() error { return nil }

type memorySegment struct {
	dir  *MemoryDirectory
	name string
}

func (s *memorySegment) Name() string { return s.name }

func (s *memorySegment) Load(ctx context.Context) ([]byte, error) {
	s.dir.mu.RLock()
	defer s.dir.mu.RUnlock()
	b, ok := s.dir.data[s.name]
	if !ok {
		return nil, ErrSegmentNotFound
	}
	return append([]byte(nil), b...), nil
}

func (s *memorySegment) Save(ctx context.Context, data []byte) error {
	s.dir.mu.Lock()
	defer s.dir.mu.Unlock()
	s.dir.data[s.name] = append([]byte(nil), data...)
	return nil
}

var _ Directory = (*MemoryDirectory)(nil)
