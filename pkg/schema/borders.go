package schema

import (
	"fmt"
	"math"

	"github.com/isocell/isocell/pkg/bitfield"
	"github.com/isocell/isocell/pkg/edgestore"
	isoerrors "github.com/isocell/isocell/pkg/errors"
)

const (
	// BordersSegment is the persisted segment name of border storage.
	BordersSegment = "ext_borders"

	// BordersRowBytes is the row stride of border storage.
	BordersRowBytes = 6
)

// BorderType classifies an edge that crosses a region boundary.
type BorderType uint16

const (
	NoBorder BorderType = iota
	ControlledBorder
	OpenBorder
)

func (t BorderType) String() string {
	switch t {
	case NoBorder:
		return "none"
	case ControlledBorder:
		return "controlled"
	case OpenBorder:
		return "open"
	}
	return fmt.Sprintf("BorderType(%d)", uint16(t))
}

// Property selects one value of a border row.
type Property uint8

const (
	PropertyType Property = iota
	PropertyStart
	PropertyEnd
)

var (
	borderType  = bitfield.Must("type", 0, 16, 1, 0, int64(OpenBorder))
	borderStart = bitfield.Must("start", 16, 16, 1, 0, math.MaxUint16)
	borderEnd   = bitfield.Must("end", 32, 16, 1, 0, math.MaxUint16)
)

// BordersLayout is the border row layout: three independent 16-bit fields.
var BordersLayout = bitfield.MustLayout("borders", BordersRowBytes, borderType, borderStart, borderEnd)

// BordersStorage stores the border type and the start and end region ids
// of each edge.
type BordersStorage struct {
	storage
	edgeKeyed
}

// NewBordersStorage returns an unbound border storage.
func NewBordersStorage() *BordersStorage {
	return &BordersStorage{storage: storage{store: edgestore.New(BordersSegment, BordersRowBytes)}}
}

// SetEdgeValue stores the border of edge.
func (s *BordersStorage) SetEdgeValue(edge int, typ BorderType, start, end int) error {
	word, err := borderType.Encode(0, int64(typ))
	if err == nil {
		word, err = borderStart.Encode(word, int64(start))
	}
	if err == nil {
		word, err = borderEnd.Encode(word, int64(end))
	}
	if err != nil {
		return fmt.Errorf("edge %d: %w", edge, err)
	}
	var row [BordersRowBytes]byte
	bitfield.Store(word, row[:])
	return s.store.SetRow(edge, row[:])
}

// EdgeValue returns one property of edge. Edges never written read as
// NoBorder between regions 0 and 0.
func (s *BordersStorage) EdgeValue(edge int, p Property) (int, error) {
	var f bitfield.Field
	switch p {
	case PropertyType:
		f = borderType
	case PropertyStart:
		f = borderStart
	case PropertyEnd:
		f = borderEnd
	default:
		return 0, isoerrors.New(isoerrors.ErrCodeUnsupportedOperation, "unknown border property %d", p)
	}
	var row [BordersRowBytes]byte
	if err := s.store.GetRow(edge, row[:]); err != nil {
		return 0, err
	}
	return int(f.Decode(bitfield.Load(row[:]))), nil
}

// CopyTo copies all rows into other.
func (s *BordersStorage) CopyTo(other *BordersStorage) error {
	return s.store.CopyTo(other.store)
}

var _ Extension = (*BordersStorage)(nil)
