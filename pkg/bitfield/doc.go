// Package bitfield packs named integer fields into a shared 64-bit word.
//
// A [Field] describes a contiguous bit range (offset and width, LSB-first)
// together with a fixed-point multiplier and a domain in raw units. Several
// fields sharing one word form a [Layout], which also fixes the number of
// bytes the word occupies when written to a store row.
//
// # Overflow Policy
//
// Values outside a field's domain are rejected with a DOMAIN_OVERFLOW error
// from [github.com/isocell/isocell/pkg/errors]. The effective upper bound of a
// field is the smaller of its declared domain maximum and 2^width-1, so a
// declared domain wider than the bit range can never silently truncate.
// Callers that prefer saturation call [Field.Clamp] before encoding.
//
// # Row Encoding
//
// Rows are little-endian: byte 0 holds bits 0-7 of the word, byte 1 holds
// bits 8-15, and so on. [Load] and [Store] convert between a row and a word.
//
//	surface := bitfield.Must("surface", 1, 5, 1, 0, 30)
//	word, err := surface.Encode(0, 3)
//	row := make([]byte, 5)
//	bitfield.Store(word, row)
package bitfield
