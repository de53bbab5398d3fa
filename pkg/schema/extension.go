package schema

import (
	"context"

	"github.com/isocell/isocell/pkg/edgestore"
	isoerrors "github.com/isocell/isocell/pkg/errors"
)

// Extension is the common lifecycle and metadata of an extended storage.
//
// The field queries describe whether the base graph must reserve a pointer
// field per node or per edge for this storage, and what that field's value
// is for an element without data.
type Extension interface {
	Name() string
	Store() *edgestore.Store
	RequiresNodeField() bool
	RequiresEdgeField() bool
	DefaultNodeFieldValue() (int, error)
	DefaultEdgeFieldValue() (int, error)
}

// storage wraps the store shared by all schemas.
type storage struct {
	store *edgestore.Store
}

func (s storage) Name() string            { return s.store.Name() }
func (s storage) Store() *edgestore.Store { return s.store }

// Init binds the storage to dir and reserves room for expected rows.
func (s storage) Init(dir edgestore.Directory, expected int) error {
	return s.store.Init(dir, expected)
}

// Flush persists the storage.
func (s storage) Flush(ctx context.Context) error { return s.store.Flush(ctx) }

// LoadExisting reloads the storage from its segment.
func (s storage) LoadExisting(ctx context.Context) error { return s.store.LoadExisting(ctx) }

// Capacity returns the backing size in bytes.
func (s storage) Capacity() int { return s.store.Capacity() }

// Close releases the backing buffer.
func (s storage) Close() error { return s.store.Close() }

// IsClosed reports whether Close has been called.
func (s storage) IsClosed() bool { return s.store.IsClosed() }

// edgeKeyed is embedded by storages indexed by edge id.
type edgeKeyed struct{}

func (edgeKeyed) RequiresNodeField() bool { return false }
func (edgeKeyed) RequiresEdgeField() bool { return true }

func (edgeKeyed) DefaultNodeFieldValue() (int, error) {
	return 0, isoerrors.New(isoerrors.ErrCodeUnsupportedOperation, "storage has no node field")
}

func (edgeKeyed) DefaultEdgeFieldValue() (int, error) { return -1, nil }
