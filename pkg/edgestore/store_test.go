package edgestore

import (
	"context"
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	isoerrors "github.com/isocell/isocell/pkg/errors"
)

func TestEnsureCapacityNeverShrinks(t *testing.T) {
	s := New("ext_test", 5)

	require.NoError(t, s.EnsureCapacity(100))
	afterHigh := s.Capacity()
	require.GreaterOrEqual(t, afterHigh, 101*5)

	require.NoError(t, s.EnsureCapacity(5))
	require.Equal(t, afterHigh, s.Capacity())
	require.GreaterOrEqual(t, s.Capacity(), 101*5)
}

func TestCapacityMonotonicAcrossSequence(t *testing.T) {
	s := New("ext_test", 3).SetSegmentSize(16)
	prev := 0
	for _, id := range []int{0, 7, 2, 40, 39, 1000, 0, 999, 5000} {
		require.NoError(t, s.EnsureCapacity(id))
		require.GreaterOrEqual(t, s.Capacity(), prev)
		require.GreaterOrEqual(t, s.Capacity(), (id+1)*3)
		require.Zero(t, s.Capacity()%16)
		prev = s.Capacity()
	}
}

func TestEnsureCapacityRejectsNegativeID(t *testing.T) {
	s := New("ext_test", 4)
	err := s.EnsureCapacity(-1)
	require.True(t, isoerrors.Is(err, isoerrors.ErrCodeInvalidInput))
}

func TestRowCeiling(t *testing.T) {
	s := New("ext_test", 5)
	require.Equal(t, DefaultMaxRows, s.MaxRowCount())

	err := s.SetRow(4_000_000_000, make([]byte, 5))
	require.True(t, isoerrors.Is(err, isoerrors.ErrCodeInvalidInput), "got %v", err)
	require.Zero(t, s.Capacity())
	require.Zero(t, s.RowCount())

	s.SetMaxRows(10)
	require.NoError(t, s.SetRow(9, make([]byte, 5)))
	require.True(t, isoerrors.Is(s.EnsureCapacity(10), isoerrors.ErrCodeInvalidInput))

	s.Create(1 << 40)
	require.Less(t, s.Capacity(), 1<<20)

	s.SetMaxRows(0)
	require.Equal(t, 10, s.MaxRowCount())
	s.SetMaxRows(math.MaxInt)
	require.Equal(t, MaxRows, s.MaxRowCount())
}

func TestLoadExistingRaisesRowCeiling(t *testing.T) {
	dir := NewMemoryDirectory()
	src := New("ext_test", 2)
	require.NoError(t, src.Init(dir, 0))
	require.NoError(t, src.SetRow(20, []byte{7, 7}))
	require.NoError(t, src.Flush(context.Background()))

	dst := New("ext_test", 2).SetMaxRows(4)
	require.NoError(t, dst.Init(dir, 0))
	require.NoError(t, dst.LoadExisting(context.Background()))
	require.Equal(t, 21, dst.MaxRowCount())

	buf := make([]byte, 2)
	require.NoError(t, dst.GetRow(20, buf))
	require.Equal(t, []byte{7, 7}, buf)
	require.NoError(t, dst.SetRow(20, []byte{1, 1}))
}

func TestGetRowUnwrittenIsZero(t *testing.T) {
	s := New("ext_test", 4)
	require.NoError(t, s.SetRow(2, []byte{1, 2, 3, 4}))

	buf := []byte{9, 9, 9, 9}
	require.NoError(t, s.GetRow(1, buf))
	require.Equal(t, []byte{0, 0, 0, 0}, buf)

	buf = []byte{9, 9, 9, 9}
	require.NoError(t, s.GetRow(1_000_000, buf))
	require.Equal(t, []byte{0, 0, 0, 0}, buf)

	require.NoError(t, s.GetRow(2, buf))
	require.Equal(t, []byte{1, 2, 3, 4}, buf)
	require.Equal(t, 3, s.RowCount())
}

func TestSetRowRejectsWrongWidth(t *testing.T) {
	s := New("ext_test", 4)
	err := s.SetRow(0, []byte{1, 2, 3})
	require.True(t, isoerrors.Is(err, isoerrors.ErrCodeInvalidInput))
	require.Zero(t, s.RowCount())
}

func TestGetRowRejectsShortBuffer(t *testing.T) {
	s := New("ext_test", 4)
	err := s.GetRow(0, make([]byte, 2))
	require.True(t, isoerrors.Is(err, isoerrors.ErrCodeInvalidInput))
}

func TestFlushLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	dir := NewMemoryDirectory()

	w := New("ext_wheelchair", 5)
	require.NoError(t, w.Init(dir, 16))
	rows := map[int][]byte{
		0:   {1, 2, 3, 4, 5},
		3:   {0xff, 0, 0xff, 0, 0x7f},
		250: {9, 8, 7, 6, 5},
	}
	for id, row := range rows {
		require.NoError(t, w.SetRow(id, row))
	}
	require.NoError(t, w.Flush(ctx))

	r := New("ext_wheelchair", 5)
	require.NoError(t, r.Init(dir, 0))
	require.NoError(t, r.LoadExisting(ctx))
	require.Equal(t, 251, r.RowCount())

	buf := make([]byte, 5)
	for id := 0; id < r.RowCount(); id++ {
		require.NoError(t, r.GetRow(id, buf))
		want, ok := rows[id]
		if !ok {
			want = make([]byte, 5)
		}
		require.Equal(t, want, buf, "row %d", id)
	}
}

func TestFlushHeaderLayout(t *testing.T) {
	ctx := context.Background()
	dir := NewMemoryDirectory()
	s := New("ext_borders", 6)
	require.NoError(t, s.Init(dir, 0))
	require.NoError(t, s.SetRow(1, []byte{1, 0, 2, 0, 3, 0}))
	require.NoError(t, s.Flush(ctx))

	seg, err := dir.Segment("ext_borders")
	require.NoError(t, err)
	data, err := seg.Load(ctx)
	require.NoError(t, err)

	require.Len(t, data, HeaderSize+2*6)
	require.Equal(t, uint32(6), binary.LittleEndian.Uint32(data[0:4]))
	require.Equal(t, uint32(2), binary.LittleEndian.Uint32(data[4:8]))
	require.Equal(t, []byte{0, 0, 0, 0, 0, 0, 1, 0, 2, 0, 3, 0}, data[HeaderSize:])
}

func TestLoadExistingStrideMismatch(t *testing.T) {
	ctx := context.Background()
	dir := NewMemoryDirectory()

	w := New("ext_cells", 4)
	require.NoError(t, w.Init(dir, 0))
	require.NoError(t, w.SetRow(0, []byte{1, 2, 3, 4}))
	require.NoError(t, w.Flush(ctx))

	r := New("ext_cells", 5)
	require.NoError(t, r.Init(dir, 0))
	err := r.LoadExisting(ctx)
	require.True(t, isoerrors.Is(err, isoerrors.ErrCodeSchemaMismatch), "got %v", err)
	require.Zero(t, r.RowCount())
}

func TestLoadExistingFailures(t *testing.T) {
	ctx := context.Background()

	header := func(stride, rows uint32) []byte {
		b := make([]byte, HeaderSize)
		binary.LittleEndian.PutUint32(b[0:4], stride)
		binary.LittleEndian.PutUint32(b[4:8], rows)
		return b
	}

	tests := []struct {
		name string
		data []byte
		save bool
		code isoerrors.Code
	}{
		{name: "missing", save: false, code: isoerrors.ErrCodeStoreNotFound},
		{name: "truncated header", data: []byte{4, 0, 0}, save: true, code: isoerrors.ErrCodeCorruptStore},
		{name: "zero stride", data: header(0, 0), save: true, code: isoerrors.ErrCodeCorruptStore},
		{name: "short payload", data: append(header(4, 3), 1, 2, 3, 4), save: true, code: isoerrors.ErrCodeCorruptStore},
		{name: "stride mismatch", data: append(header(8, 1), make([]byte, 8)...), save: true, code: isoerrors.ErrCodeSchemaMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := NewMemoryDirectory()
			if tt.save {
				seg, err := dir.Segment("ext_x")
				require.NoError(t, err)
				require.NoError(t, seg.Save(ctx, tt.data))
			}
			s := New("ext_x", 4)
			require.NoError(t, s.Init(dir, 0))
			err := s.LoadExisting(ctx)
			require.Error(t, err)
			require.Equal(t, tt.code, isoerrors.GetCode(err))
		})
	}
}

func TestInitTwiceOnNonEmptyStore(t *testing.T) {
	dir := NewMemoryDirectory()
	s := New("ext_x", 2)
	require.NoError(t, s.Init(dir, 0))
	require.NoError(t, s.Init(dir, 0), "re-init of an empty store is allowed")

	require.NoError(t, s.SetRow(0, []byte{1, 1}))
	err := s.Init(dir, 0)
	require.True(t, isoerrors.Is(err, isoerrors.ErrCodeAlreadyInitialized))
}

func TestCreatePreallocates(t *testing.T) {
	s := New("ext_x", 5).SetSegmentSize(64).Create(100)
	require.GreaterOrEqual(t, s.Capacity(), 500)
	require.Zero(t, s.Capacity()%64)
	require.Zero(t, s.RowCount())
}

func TestCopyTo(t *testing.T) {
	src := New("a", 3)
	require.NoError(t, src.SetRow(0, []byte{1, 2, 3}))
	require.NoError(t, src.SetRow(4, []byte{4, 5, 6}))

	dst := New("b", 3)
	require.NoError(t, dst.SetRow(9, []byte{7, 7, 7}))
	require.NoError(t, src.CopyTo(dst))
	require.Equal(t, 5, dst.RowCount())

	buf := make([]byte, 3)
	require.NoError(t, dst.GetRow(4, buf))
	require.Equal(t, []byte{4, 5, 6}, buf)
	require.NoError(t, dst.GetRow(9, buf))
	require.Equal(t, []byte{0, 0, 0}, buf)

	err := src.CopyTo(New("c", 4))
	require.True(t, isoerrors.Is(err, isoerrors.ErrCodeSchemaMismatch))
}

func TestClosedStore(t *testing.T) {
	s := New("ext_x", 2)
	require.NoError(t, s.SetRow(0, []byte{1, 1}))
	require.NoError(t, s.Close())
	require.True(t, s.IsClosed())
	require.ErrorIs(t, s.SetRow(0, []byte{1, 1}), ErrClosed)
	require.ErrorIs(t, s.GetRow(0, make([]byte, 2)), ErrClosed)
	require.ErrorIs(t, s.Flush(context.Background()), ErrClosed)
}

func TestFlushUnbound(t *testing.T) {
	s := New("ext_x", 2)
	err := s.Flush(context.Background())
	require.True(t, isoerrors.Is(err, isoerrors.ErrCodeInvalidInput))
}
