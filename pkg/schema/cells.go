package schema

import (
	"github.com/isocell/isocell/pkg/bitfield"
	"github.com/isocell/isocell/pkg/edgestore"
	isoerrors "github.com/isocell/isocell/pkg/errors"
	"github.com/isocell/isocell/pkg/graph"
)

const (
	// CellsSegment is the persisted segment name of cell storage.
	CellsSegment = "ext_cells"

	// CellRowBytes is the row stride of cell storage.
	CellRowBytes = 4

	// MaxCellID is the largest storable cell id.
	MaxCellID = 1<<30 - 1
)

var (
	cellHasData = bitfield.Must("has_data", 0, 1, 1, 0, 1)
	cellBorder  = bitfield.Must("border", 1, 1, 1, 0, 1)
	cellID      = bitfield.Must("cell", 2, 30, 1, 0, MaxCellID)
)

// CellsLayout is the per-node cell row layout.
var CellsLayout = bitfield.MustLayout("cells", CellRowBytes, cellHasData, cellBorder, cellID)

// CellTree maps graph nodes to leaf cells. *partition.Tree implements it.
type CellTree interface {
	LeafCellID(node int) int
}

// NodeGraph is the graph view needed to find border nodes.
type NodeGraph interface {
	NodeCount() int
	EdgesOf(node int) []graph.Arc
}

// CellStorage stores, per node, its partition cell and whether it is a
// border node (it has an edge to a node of another cell).
type CellStorage struct {
	storage
}

// NewCellStorage returns an unbound cell storage.
func NewCellStorage() *CellStorage {
	return &CellStorage{storage: storage{store: edgestore.New(CellsSegment, CellRowBytes)}}
}

func (*CellStorage) RequiresNodeField() bool { return true }
func (*CellStorage) RequiresEdgeField() bool { return false }

func (*CellStorage) DefaultNodeFieldValue() (int, error) { return -1, nil }

func (*CellStorage) DefaultEdgeFieldValue() (int, error) {
	return 0, isoerrors.New(isoerrors.ErrCodeUnsupportedOperation, "cell storage has no edge field")
}

// SetCell stores the cell of node.
func (s *CellStorage) SetCell(node, cell int, border bool) error {
	word, _ := cellHasData.Encode(0, 1)
	word, err := cellID.Encode(word, int64(cell))
	if err != nil {
		return err
	}
	if border {
		word, _ = cellBorder.Encode(word, 1)
	}
	var row [CellRowBytes]byte
	bitfield.Store(word, row[:])
	return s.store.SetRow(node, row[:])
}

// Cell returns the cell of node. ok is false when no cell was stored for
// node or the row cannot be read.
func (s *CellStorage) Cell(node int) (id int, border bool, ok bool) {
	var row [CellRowBytes]byte
	if err := s.store.GetRow(node, row[:]); err != nil {
		return 0, false, false
	}
	word := bitfield.Load(row[:])
	if cellHasData.Decode(word) == 0 {
		return 0, false, false
	}
	return int(cellID.Decode(word)), cellBorder.Decode(word) != 0, true
}

// Fill stores the cell of every node of g. A node is a border node when any
// edge, incoming or outgoing, joins it to another cell. Fill fails with
// INVALID_INPUT if tree has no cell for some node.
func (s *CellStorage) Fill(tree CellTree, g NodeGraph) error {
	n := g.NodeCount()
	border := make([]bool, n)
	for u := 0; u < n; u++ {
		cu := tree.LeafCellID(u)
		if cu < 0 {
			return isoerrors.New(isoerrors.ErrCodeInvalidInput, "node %d has no cell", u)
		}
		for _, arc := range g.EdgesOf(u) {
			if tree.LeafCellID(arc.To) != cu {
				border[u] = true
				border[arc.To] = true
			}
		}
	}
	if n > 0 {
		if err := s.store.EnsureCapacity(n - 1); err != nil {
			return err
		}
	}
	for u := 0; u < n; u++ {
		if err := s.SetCell(u, tree.LeafCellID(u), border[u]); err != nil {
			return err
		}
	}
	return nil
}

var _ Extension = (*CellStorage)(nil)
