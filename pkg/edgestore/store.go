package edgestore

import (
	"context"
	"errors"
	"math"
	"time"

	isoerrors "github.com/isocell/isocell/pkg/errors"
	"github.com/isocell/isocell/pkg/observability"
)

// DefaultSegmentSize is the growth granularity of a store's backing buffer.
const DefaultSegmentSize = 4096

// MaxRows is one more than the highest row id any store can address; the
// header stores the row count as a uint32.
const MaxRows = math.MaxUint32

// DefaultMaxRows is the row ceiling of a new store. Rows are allocated
// eagerly up to the highest id written, so a stray id near MaxRows would
// otherwise ask for gigabytes at once. Raise it with [Store.SetMaxRows].
const DefaultMaxRows = 1 << 28

// ErrClosed is returned by operations on a closed store.
var ErrClosed = errors.New("edgestore: store closed")

// Store is a fixed-stride row array backed by a growable byte buffer.
//
// A Store has a single-writer discipline (see the package documentation).
type Store struct {
	name        string
	stride      int
	segmentSize int

	maxRows     int

	segment  Segment
	data     []byte // len(data) is the capacity in bytes
	rowCount int
	closed   bool
}

// New returns an unbound, empty store whose rows are stride bytes wide.
// It panics if stride is not positive.
func New(name string, stride int) *Store {
	if stride < 1 {
		panic("edgestore: row stride must be positive")
	}
	return &Store{name: name, stride: stride, segmentSize: DefaultSegmentSize, maxRows: DefaultMaxRows}
}

// Name returns the store name, which is also its segment name.
func (s *Store) Name() string { return s.name }

// Stride returns the row width in bytes.
func (s *Store) Stride() int { return s.stride }

// Capacity returns the size of the backing buffer in bytes.
func (s *Store) Capacity() int { return len(s.data) }

// RowCount returns one more than the highest row id ever written (or loaded).
func (s *Store) RowCount() int { return s.rowCount }

// IsClosed reports whether Close has been called.
func (s *Store) IsClosed() bool { return s.closed }

// SetSegmentSize sets the growth granularity in bytes. Values below one are
// ignored.
func (s *Store) SetSegmentSize(bytes int) *Store {
	if bytes > 0 {
		s.segmentSize = bytes
	}
	return s
}

// MaxRowCount returns the row ceiling; ids at or above it are rejected.
func (s *Store) MaxRowCount() int { return s.maxRows }

// SetMaxRows sets the row ceiling. Values are capped at [MaxRows]; values
// below one are ignored.
func (s *Store) SetMaxRows(rows int) *Store {
	if rows > 0 {
		s.maxRows = min(rows, MaxRows)
	}
	return s
}

// Init binds the store to its segment in dir and reserves room for
// expectedRows rows. Existing content is not loaded; call LoadExisting for
// that. Init fails with ALREADY_INITIALIZED if the store already holds rows.
func (s *Store) Init(dir Directory, expectedRows int) error {
	if s.closed {
		return ErrClosed
	}
	if s.rowCount > 0 {
		return isoerrors.New(isoerrors.ErrCodeAlreadyInitialized, "store %s already holds %d rows", s.name, s.rowCount)
	}
	seg, err := dir.Segment(s.name)
	if err != nil {
		return err
	}
	s.segment = seg
	s.Create(expectedRows)
	return nil
}

// Create allocates backing storage for at least rowHint rows, capped at the
// row ceiling.
func (s *Store) Create(rowHint int) *Store {
	if rowHint > 0 && !s.closed {
		s.grow(min(rowHint, s.maxRows) * s.stride)
	}
	return s
}

// EnsureCapacity grows the backing buffer so row id is addressable. The
// capacity never decreases. Ids at or above the row ceiling fail with
// INVALID_INPUT.
func (s *Store) EnsureCapacity(id int) error {
	if s.closed {
		return ErrClosed
	}
	if id < 0 || id >= s.maxRows {
		return isoerrors.New(isoerrors.ErrCodeInvalidInput, "store %s: row id %d outside [0, %d)", s.name, id, s.maxRows)
	}
	s.grow((id + 1) * s.stride)
	return nil
}

// grow enlarges data to at least need bytes, doubling and rounding up to the
// segment size.
func (s *Store) grow(need int) {
	if need <= len(s.data) {
		return
	}
	size := max(2*len(s.data), need)
	if rem := size % s.segmentSize; rem != 0 {
		size += s.segmentSize - rem
	}
	data := make([]byte, size)
	copy(data, s.data)
	s.data = data
	observability.Store().OnGrow(s.name, size)
}

// SetRow writes row (exactly Stride bytes) at id, growing as needed.
func (s *Store) SetRow(id int, row []byte) error {
	if len(row) != s.stride {
		return isoerrors.New(isoerrors.ErrCodeInvalidInput, "store %s: row is %d bytes, stride is %d", s.name, len(row), s.stride)
	}
	if err := s.EnsureCapacity(id); err != nil {
		return err
	}
	copy(s.data[id*s.stride:], row)
	if id >= s.rowCount {
		s.rowCount = id + 1
	}
	return nil
}

// GetRow copies row id into buf, which must hold at least Stride bytes. Rows
// that were never written read as zeros.
func (s *Store) GetRow(id int, buf []byte) error {
	if s.closed {
		return ErrClosed
	}
	if len(buf) < s.stride {
		return isoerrors.New(isoerrors.ErrCodeInvalidInput, "store %s: buffer is %d bytes, stride is %d", s.name, len(buf), s.stride)
	}
	if id < 0 {
		return isoerrors.New(isoerrors.ErrCodeInvalidInput, "store %s: negative row id %d", s.name, id)
	}
	buf = buf[:s.stride]
	off := id * s.stride
	if id >= s.rowCount || off+s.stride > len(s.data) {
		clear(buf)
		return nil
	}
	copy(buf, s.data[off:off+s.stride])
	return nil
}

// Flush persists the header and all rows to the bound segment.
func (s *Store) Flush(ctx context.Context) (err error) {
	if s.closed {
		return ErrClosed
	}
	if s.segment == nil {
		return isoerrors.New(isoerrors.ErrCodeInvalidInput, "store %s is not bound to a directory", s.name)
	}
	start := time.Now()
	n := s.rowCount * s.stride
	buf := make([]byte, HeaderSize+n)
	header{rowStride: uint32(s.stride), rowCount: uint32(s.rowCount)}.encode(buf)
	copy(buf[HeaderSize:], s.data[:n])
	defer func() { observability.Store().OnFlush(ctx, s.name, len(buf), time.Since(start), err) }()

	if err := s.segment.Save(ctx, buf); err != nil {
		return isoerrors.Wrap(isoerrors.ErrCodeInternal, err, "flush store %s", s.name)
	}
	return nil
}

// LoadExisting replaces the store's content with its persisted segment.
//
// It fails with STORE_NOT_FOUND if nothing was persisted, SCHEMA_MISMATCH if
// the persisted stride differs from Stride, CORRUPT_STORE if the segment is
// unreadable or inconsistent, and ALREADY_INITIALIZED if the store already
// holds rows.
func (s *Store) LoadExisting(ctx context.Context) (err error) {
	if s.closed {
		return ErrClosed
	}
	if s.segment == nil {
		return isoerrors.New(isoerrors.ErrCodeInvalidInput, "store %s is not bound to a directory", s.name)
	}
	if s.rowCount > 0 {
		return isoerrors.New(isoerrors.ErrCodeAlreadyInitialized, "store %s already holds %d rows", s.name, s.rowCount)
	}
	start := time.Now()
	var size int
	defer func() { observability.Store().OnLoad(ctx, s.name, size, time.Since(start), err) }()

	data, err := s.segment.Load(ctx)
	if errors.Is(err, ErrSegmentNotFound) {
		return isoerrors.Wrap(isoerrors.ErrCodeStoreNotFound, err, "load store %s", s.name)
	}
	if err != nil {
		return isoerrors.Wrap(isoerrors.ErrCodeCorruptStore, err, "load store %s", s.name)
	}
	size = len(data)

	h, payload, err := decodeHeader(s.name, data, s.stride)
	if err != nil {
		return err
	}
	n := int(h.rowCount) * s.stride
	s.grow(n)
	copy(s.data, payload[:n])
	s.rowCount = int(h.rowCount)
	s.maxRows = max(s.maxRows, s.rowCount)
	return nil
}

// CopyTo replaces other's rows and row count with this store's. Both stores
// must have the same stride.
func (s *Store) CopyTo(other *Store) error {
	if s.closed || other.closed {
		return ErrClosed
	}
	if other.stride != s.stride {
		return isoerrors.New(isoerrors.ErrCodeSchemaMismatch,
			"copy %s to %s: stride %d, expected %d", s.name, other.name, other.stride, s.stride)
	}
	n := s.rowCount * s.stride
	other.grow(n)
	clear(other.data)
	copy(other.data, s.data[:n])
	other.rowCount = s.rowCount
	other.maxRows = max(other.maxRows, s.rowCount)
	return nil
}

// Close releases the backing buffer. Further operations return ErrClosed.
func (s *Store) Close() error {
	s.closed = true
	s.data = nil
	s.segment = nil
	return nil
}
