// Package storage provides the in-memory document store backing every
// resource repository.
//
// Documents are grouped into buckets keyed by (tenant, kind). Each bucket
// keeps two indices: the primary id index and a secondary index over the
// optional human-readable key. Both indices are updated under the bucket's
// write lock, so a reader never observes a document through one index but
// not the other.
//
// Key types:
//
//   - Document: anything carrying an id and an optional key
//   - Store: the contract consumed by repositories
//   - MemoryStore: thread-safe in-memory implementation of Store
//
// Documents are treated as immutable values once handed to the store.
// Writers replace a document with a new value instead of mutating it, which
// is what lets readers share the stored value without copying under lock.
//
// Per-document critical sections (read, modify, write) are available
// through Lock, which serializes callers on the same (tenant, kind, id)
// while leaving other documents untouched.
package storage
