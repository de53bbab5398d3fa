package bitfield

import (
	"math"

	"github.com/isocell/isocell/pkg/errors"
)

// MaxWidth is the widest supported field. Raw values are int64, so a field
// never uses the sign bit.
const MaxWidth = 63

// Field is a named bit range inside a 64-bit word.
//
// The zero value is not usable; construct fields with [New] or [Must].
// Fields are plain values and safe to share between goroutines.
type Field struct {
	name       string
	offset     uint
	width      uint
	multiplier float64
	min        int64
	max        int64
	mask       uint64 // unshifted, width low bits set
}

// New creates a field occupying bits [offset, offset+width).
//
// multiplier converts a real value to raw units before packing (10 keeps one
// decimal digit). min and max bound the raw domain; max is additionally
// capped by the bit width, see [Field.EffectiveMax].
func New(name string, offset, width uint, multiplier float64, min, max int64) (Field, error) {
	if name == "" {
		return Field{}, errors.New(errors.ErrCodeInvalidInput, "field name must not be empty")
	}
	if width == 0 || width > MaxWidth {
		return Field{}, errors.New(errors.ErrCodeInvalidInput, "field %s: width %d outside [1, %d]", name, width, MaxWidth)
	}
	if offset+width > 64 {
		return Field{}, errors.New(errors.ErrCodeInvalidInput, "field %s: bits [%d, %d) exceed 64-bit word", name, offset, offset+width)
	}
	if multiplier <= 0 || math.IsNaN(multiplier) || math.IsInf(multiplier, 0) {
		return Field{}, errors.New(errors.ErrCodeInvalidInput, "field %s: multiplier must be positive and finite", name)
	}
	if min < 0 || min > max {
		return Field{}, errors.New(errors.ErrCodeInvalidInput, "field %s: invalid domain [%d, %d]", name, min, max)
	}
	mask := uint64(1)<<width - 1
	if uint64(min) > mask {
		return Field{}, errors.New(errors.ErrCodeInvalidInput, "field %s: domain minimum %d does not fit %d bits", name, min, width)
	}
	return Field{
		name:       name,
		offset:     offset,
		width:      width,
		multiplier: multiplier,
		min:        min,
		max:        max,
		mask:       mask,
	}, nil
}

// Must is like [New] but panics on an invalid definition. It is intended for
// package-level schema declarations.
func Must(name string, offset, width uint, multiplier float64, min, max int64) Field {
	f, err := New(name, offset, width, multiplier, min, max)
	if err != nil {
		panic(err)
	}
	return f
}

// Name returns the field name.
func (f Field) Name() string { return f.name }

// Offset returns the index of the field's lowest bit.
func (f Field) Offset() uint { return f.offset }

// Bits returns the field width in bits.
func (f Field) Bits() uint { return f.width }

// Multiplier returns the fixed-point scale applied by SetValue and Value.
func (f Field) Multiplier() float64 { return f.multiplier }

// Min returns the lowest accepted raw value.
func (f Field) Min() int64 { return f.min }

// EffectiveMax returns the highest accepted raw value: the declared domain
// maximum or 2^width-1, whichever is smaller.
func (f Field) EffectiveMax() int64 {
	if uint64(f.max) > f.mask {
		return int64(f.mask)
	}
	return f.max
}

// shiftedMask returns the field's bits in word position.
func (f Field) shiftedMask() uint64 { return f.mask << f.offset }

// Overlaps reports whether f and o share at least one bit.
func (f Field) Overlaps(o Field) bool { return f.shiftedMask()&o.shiftedMask() != 0 }

// Encode writes raw into the field's bit range of word, replacing whatever
// the range held before. Bits outside the range are untouched.
//
// Returns a DOMAIN_OVERFLOW error, and the unchanged word, if raw lies
// outside [Min, EffectiveMax].
func (f Field) Encode(word uint64, raw int64) (uint64, error) {
	if raw < f.min || raw > f.EffectiveMax() {
		return word, errors.Overflow(f.name, raw, f.min, f.EffectiveMax())
	}
	return f.Clear(word) | uint64(raw)<<f.offset, nil
}

// Decode extracts the raw value stored in the field's bit range.
func (f Field) Decode(word uint64) int64 {
	return int64((word >> f.offset) & f.mask)
}

// Clear zeroes the field's bit range in word.
func (f Field) Clear(word uint64) uint64 {
	return word &^ f.shiftedMask()
}

// Clamp saturates raw into [Min, EffectiveMax].
func (f Field) Clamp(raw int64) int64 {
	return min(max(raw, f.min), f.EffectiveMax())
}

// Scale converts a real value to raw units, rounding to the nearest integer.
// Non-finite values and values beyond the int64 range are reported as
// DOMAIN_OVERFLOW.
func (f Field) Scale(v float64) (int64, error) {
	scaled := math.Round(v * f.multiplier)
	if math.IsNaN(scaled) || scaled >= math.MaxInt64 || scaled < math.MinInt64 {
		return 0, errors.Overflow(f.name, math.MaxInt64, f.min, f.EffectiveMax())
	}
	return int64(scaled), nil
}

// SetValue scales v by the multiplier and encodes the result.
func (f Field) SetValue(word uint64, v float64) (uint64, error) {
	raw, err := f.Scale(v)
	if err != nil {
		return word, err
	}
	return f.Encode(word, raw)
}

// Value decodes the field and divides by the multiplier.
func (f Field) Value(word uint64) float64 {
	return float64(f.Decode(word)) / f.multiplier
}
