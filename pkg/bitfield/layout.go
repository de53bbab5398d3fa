package bitfield

import (
	"encoding/binary"

	"github.com/isocell/isocell/pkg/errors"
)

// MaxStride is the widest row a layout can describe: one 64-bit word.
const MaxStride = 8

// Layout is a fixed set of non-overlapping fields packed into stride bytes.
type Layout struct {
	name   string
	stride int
	fields []Field
	byName map[string]int
}

// NewLayout validates that every field fits stride*8 bits and that no two
// fields share a bit.
func NewLayout(name string, stride int, fields ...Field) (*Layout, error) {
	if stride < 1 || stride > MaxStride {
		return nil, errors.New(errors.ErrCodeInvalidInput, "layout %s: stride %d outside [1, %d]", name, stride, MaxStride)
	}
	rowBits := uint(stride * 8)
	l := &Layout{name: name, stride: stride, byName: make(map[string]int, len(fields))}
	for i, f := range fields {
		if f.offset+f.width > rowBits {
			return nil, errors.New(errors.ErrCodeInvalidInput, "layout %s: field %s ends at bit %d, row has %d bits",
				name, f.name, f.offset+f.width, rowBits)
		}
		if _, dup := l.byName[f.name]; dup {
			return nil, errors.New(errors.ErrCodeInvalidInput, "layout %s: duplicate field %s", name, f.name)
		}
		for _, prev := range fields[:i] {
			if f.Overlaps(prev) {
				return nil, errors.New(errors.ErrCodeInvalidInput, "layout %s: fields %s and %s overlap", name, prev.name, f.name)
			}
		}
		l.byName[f.name] = i
		l.fields = append(l.fields, f)
	}
	return l, nil
}

// MustLayout is like [NewLayout] but panics on an invalid layout.
func MustLayout(name string, stride int, fields ...Field) *Layout {
	l, err := NewLayout(name, stride, fields...)
	if err != nil {
		panic(err)
	}
	return l
}

// Name returns the layout name.
func (l *Layout) Name() string { return l.name }

// Stride returns the row width in bytes.
func (l *Layout) Stride() int { return l.stride }

// Fields returns the fields in declaration order.
func (l *Layout) Fields() []Field { return append([]Field(nil), l.fields...) }

// Field looks up a field by name.
func (l *Layout) Field(name string) (Field, bool) {
	i, ok := l.byName[name]
	if !ok {
		return Field{}, false
	}
	return l.fields[i], true
}

// UsedBits returns the number of bits covered by the layout's fields.
func (l *Layout) UsedBits() uint {
	var n uint
	for _, f := range l.fields {
		n += f.width
	}
	return n
}

// Load assembles a word from a little-endian row of up to 8 bytes.
func Load(row []byte) uint64 {
	var buf [8]byte
	copy(buf[:], row)
	return binary.LittleEndian.Uint64(buf[:])
}

// Store writes the low len(row) bytes of word into row, little-endian.
// Rows longer than 8 bytes have their tail zeroed.
func Store(word uint64, row []byte) {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], word)
	n := copy(row, buf[:])
	clear(row[n:])
}
