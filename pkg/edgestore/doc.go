// Package edgestore provides fixed-stride, growable, persistable row storage
// keyed by edge (or node) id.
//
// A [Store] is a logical array of rows of identical byte width. Row e lives at
// byte offset e*stride of an owned backing buffer which grows lazily as higher
// ids are written and never shrinks. Reading a row that was never written
// yields all zero bytes, which attribute schemas interpret as "no data".
//
// # Persistence
//
// A store is bound to a named [Segment] of a [Directory]. [Store.Flush] writes
// an 8-byte little-endian header followed by the rows:
//
//	offset 0: rowStride uint32
//	offset 4: rowCount  uint32
//	offset 8: rowCount*rowStride bytes of row data
//
// [Store.LoadExisting] reads the header back and refuses to decode rows when
// the persisted stride differs from the store's (SCHEMA_MISMATCH) or when the
// header cannot be trusted (CORRUPT_STORE).
//
// Four directory backends are provided:
//   - [MemoryDirectory]: process-local, for tests and transient graphs
//   - [FileDirectory]: one file per segment, replaced atomically on save
//   - [BadgerDirectory]: one key per segment in an embedded BadgerDB
//   - [RedisDirectory]: one key per segment in Redis, shared between hosts
//
// # Concurrency
//
// A Store is not safe for concurrent writers. SetRow, EnsureCapacity, Create,
// Flush and LoadExisting must be serialized by the caller. Concurrent GetRow
// calls are safe once all writes have completed. Directories are safe for
// concurrent use.
package edgestore
