// Package schema defines the concrete row layouts stored in extended edge and
// node storage: wheelchair accessibility attributes, border crossings and
// partition cells.
//
// Each storage type owns one [edgestore.Store] whose stride matches its
// layout. Rows are encoded with [bitfield] fields into a little-endian word;
// the exact bit positions are a persistence format and must not change.
package schema
