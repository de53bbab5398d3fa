package schema

import (
	"fmt"
	"strings"

	"github.com/isocell/isocell/pkg/bitfield"
	"github.com/isocell/isocell/pkg/edgestore"
	isoerrors "github.com/isocell/isocell/pkg/errors"
)

const (
	// WheelchairSegment is the persisted segment name of wheelchair storage.
	WheelchairSegment = "ext_wheelchair"

	// WheelchairRowBytes is the row stride of wheelchair storage.
	WheelchairRowBytes = 5
)

// Domain maxima of the wheelchair fields, in raw units.
const (
	SurfaceMax    = 30
	SmoothnessMax = 8
	TrackTypeMax  = 5
	InclineMax    = 30
	KerbHeightMax = 15
	WidthMax      = 300 // tenths of a meter; the 5-bit field caps it at 31
)

// InclineUnset marks an absent incline.
const InclineUnset = -1

// Row layout, LSB first:
//
//	bit 0      has data
//	bits 1-5   surface
//	bits 6-9   smoothness
//	bits 10-12 track type
//	bit 13     has incline
//	bits 14-18 incline
//	bit 19     has kerb height
//	bits 20-23 kerb height
//	bits 24-28 width x10
//	bits 29-30 side
var (
	wcHasData    = bitfield.Must("has_data", 0, 1, 1, 0, 1)
	wcSurface    = bitfield.Must("surface", 1, 5, 1, 0, SurfaceMax)
	wcSmoothness = bitfield.Must("smoothness", 6, 4, 1, 0, SmoothnessMax)
	wcTrackType  = bitfield.Must("track_type", 10, 3, 1, 0, TrackTypeMax)
	wcHasIncline = bitfield.Must("has_incline", 13, 1, 1, 0, 1)
	wcIncline    = bitfield.Must("incline", 14, 5, 1, 0, InclineMax)
	wcHasKerb    = bitfield.Must("has_kerb_height", 19, 1, 1, 0, 1)
	wcKerbHeight = bitfield.Must("kerb_height", 20, 4, 1, 0, KerbHeightMax)
	wcWidth      = bitfield.Must("width", 24, 5, 10, 0, WidthMax)
	wcSide       = bitfield.Must("side", 29, 2, 1, 0, 2)
)

// WheelchairLayout is the wheelchair row layout.
var WheelchairLayout = bitfield.MustLayout("wheelchair", WheelchairRowBytes,
	wcHasData, wcSurface, wcSmoothness, wcTrackType,
	wcHasIncline, wcIncline, wcHasKerb, wcKerbHeight,
	wcWidth, wcSide)

// Side is the side of the road a sidewalk lies on.
type Side uint8

const (
	SideUnknown Side = iota
	SideLeft
	SideRight
)

func (s Side) String() string {
	switch s {
	case SideUnknown:
		return "unknown"
	case SideLeft:
		return "left"
	case SideRight:
		return "right"
	}
	return fmt.Sprintf("Side(%d)", s)
}

// ParseSide parses "left", "right", "unknown" or the empty string.
func ParseSide(s string) (Side, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "unknown":
		return SideUnknown, nil
	case "left":
		return SideLeft, nil
	case "right":
		return SideRight, nil
	}
	return SideUnknown, isoerrors.New(isoerrors.ErrCodeInvalidInput, "unknown side %q", s)
}

// WheelchairAttributes are the accessibility attributes of one edge.
//
// Zero means "not set" for every field except Incline, which uses
// InclineUnset because zero is a real grade.
type WheelchairAttributes struct {
	SurfaceType    int
	SmoothnessType int
	TrackType      int
	Incline        int
	KerbHeight     float64
	Width          float64 // meters
	Side           Side
}

// NewWheelchairAttributes returns attributes in the reset state.
func NewWheelchairAttributes() WheelchairAttributes {
	return WheelchairAttributes{Incline: InclineUnset}
}

// Reset clears every attribute.
func (a *WheelchairAttributes) Reset() { *a = NewWheelchairAttributes() }

// HasIncline reports whether an incline is recorded.
func (a WheelchairAttributes) HasIncline() bool { return a.Incline > InclineUnset }

// HasKerbHeight reports whether a kerb height is recorded.
func (a WheelchairAttributes) HasKerbHeight() bool { return a.KerbHeight > 0 }

// HasValues reports whether any attribute is set.
func (a WheelchairAttributes) HasValues() bool {
	return a.SurfaceType > 0 || a.SmoothnessType > 0 || a.TrackType > 0 ||
		a.HasIncline() || a.HasKerbHeight() || a.Width > 0 || a.Side != SideUnknown
}

// EncodeWheelchair packs a into the first WheelchairRowBytes of row.
//
// Attributes without values produce an all-zero row. A value outside its
// field's range fails with DOMAIN_OVERFLOW and leaves row untouched.
func EncodeWheelchair(a WheelchairAttributes, row []byte) error {
	if len(row) < WheelchairRowBytes {
		return isoerrors.New(isoerrors.ErrCodeInvalidInput, "wheelchair row needs %d bytes, got %d", WheelchairRowBytes, len(row))
	}
	row = row[:WheelchairRowBytes]
	if !a.HasValues() {
		clear(row)
		return nil
	}

	word, _ := wcHasData.Encode(0, 1)
	var err error
	set := func(f bitfield.Field, raw int64) {
		if err == nil {
			word, err = f.Encode(word, raw)
		}
	}
	if a.SurfaceType > 0 {
		set(wcSurface, int64(a.SurfaceType))
	}
	if a.SmoothnessType > 0 {
		set(wcSmoothness, int64(a.SmoothnessType))
	}
	if a.TrackType > 0 {
		set(wcTrackType, int64(a.TrackType))
	}
	if a.HasIncline() {
		set(wcHasIncline, 1)
		set(wcIncline, int64(a.Incline))
	}
	if a.HasKerbHeight() {
		if raw, ok := scalePresent(wcKerbHeight, a.KerbHeight, &err); ok {
			set(wcHasKerb, 1)
			set(wcKerbHeight, raw)
		}
	}
	if a.Width > 0 {
		if raw, ok := scalePresent(wcWidth, a.Width, &err); ok {
			set(wcWidth, raw)
		}
	}
	switch a.Side {
	case SideUnknown:
	case SideLeft:
		set(wcSide, 1)
	case SideRight:
		set(wcSide, 2)
	default:
		if err == nil {
			err = isoerrors.New(isoerrors.ErrCodeInvalidInput, "unknown side %d", a.Side)
		}
	}
	if err != nil {
		return err
	}
	bitfield.Store(word, row)
	return nil
}

// MaxWidth is the widest recordable width in meters.
func MaxWidth() float64 {
	return float64(wcWidth.EffectiveMax()) / wcWidth.Multiplier()
}

// ClampWidth saturates a positive width in meters into the range the width
// field can record and reports whether it changed. Zero and negative widths
// pass through unchanged.
func ClampWidth(w float64) (float64, bool) {
	if !(w > 0) {
		return w, false
	}
	c := min(max(w, 1/wcWidth.Multiplier()), MaxWidth())
	return c, c != w
}

// scalePresent scales a recorded value of f. A positive value that rounds to
// zero would decode as absent, so it is rejected with DOMAIN_OVERFLOW like
// any other value below the field's smallest recordable unit. Once *err is
// set it does nothing.
func scalePresent(f bitfield.Field, v float64, err *error) (int64, bool) {
	if *err != nil {
		return 0, false
	}
	raw, serr := f.Scale(v)
	if serr == nil && raw < 1 {
		serr = isoerrors.Overflow(f.Name(), raw, 1, f.EffectiveMax())
	}
	if serr != nil {
		*err = serr
		return 0, false
	}
	return raw, true
}

// DecodeWheelchair unpacks a row. A row whose has-data bit is clear decodes
// to the reset state regardless of its other bits.
func DecodeWheelchair(row []byte) WheelchairAttributes {
	a := NewWheelchairAttributes()
	if len(row) < WheelchairRowBytes {
		return a
	}
	word := bitfield.Load(row[:WheelchairRowBytes])
	if wcHasData.Decode(word) == 0 {
		return a
	}
	a.SurfaceType = int(wcSurface.Decode(word))
	a.SmoothnessType = int(wcSmoothness.Decode(word))
	a.TrackType = int(wcTrackType.Decode(word))
	if wcHasIncline.Decode(word) != 0 {
		a.Incline = int(wcIncline.Decode(word))
	}
	if wcHasKerb.Decode(word) != 0 {
		a.KerbHeight = wcKerbHeight.Value(word)
	}
	a.Width = wcWidth.Value(word)
	switch wcSide.Decode(word) {
	case 1:
		a.Side = SideLeft
	case 2:
		a.Side = SideRight
	}
	return a
}

// WheelchairStorage stores WheelchairAttributes per edge.
type WheelchairStorage struct {
	storage
	edgeKeyed
}

// NewWheelchairStorage returns an unbound wheelchair storage.
func NewWheelchairStorage() *WheelchairStorage {
	return &WheelchairStorage{storage: storage{store: edgestore.New(WheelchairSegment, WheelchairRowBytes)}}
}

// SetEdgeValues encodes a and stores it for edge.
func (s *WheelchairStorage) SetEdgeValues(edge int, a WheelchairAttributes) error {
	var row [WheelchairRowBytes]byte
	if err := EncodeWheelchair(a, row[:]); err != nil {
		return fmt.Errorf("edge %d: %w", edge, err)
	}
	return s.store.SetRow(edge, row[:])
}

// EdgeValues returns the attributes of edge. Edges never written decode to
// the reset state.
func (s *WheelchairStorage) EdgeValues(edge int) (WheelchairAttributes, error) {
	var row [WheelchairRowBytes]byte
	if err := s.store.GetRow(edge, row[:]); err != nil {
		return NewWheelchairAttributes(), err
	}
	return DecodeWheelchair(row[:]), nil
}

// CopyTo copies all rows into other.
func (s *WheelchairStorage) CopyTo(other *WheelchairStorage) error {
	return s.store.CopyTo(other.store)
}

var _ Extension = (*WheelchairStorage)(nil)
