package storage

import (
	"fmt"
	"sort"
	"sync"
)

type bucketKey struct {
	tenant string
	kind   string
}

type entry struct {
	doc Document
	seq uint64
}

// bucket holds the documents of one (tenant, kind) pair.
type bucket struct {
	mu   sync.RWMutex
	docs map[string]entry  // id -> entry
	keys map[string]string // key -> id
	seq  uint64

	// dropped is set by Clear once the bucket is detached from the store.
	dropped bool
}

func newBucket() *bucket {
	return &bucket{
		docs: make(map[string]entry),
		keys: make(map[string]string),
	}
}

// MemoryStore is a thread-safe in-memory implementation of Store.
type MemoryStore struct {
	mu      sync.RWMutex
	buckets map[bucketKey]*bucket
	locks   *lockTable
}

// NewMemoryStore creates a new, empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		buckets: make(map[bucketKey]*bucket),
		locks:   newLockTable(),
	}
}

// bucket returns the bucket for (tenant, kind). When create is false a
// missing bucket yields nil.
func (s *MemoryStore) bucket(tenant, kind string, create bool) *bucket {
	k := bucketKey{tenant: tenant, kind: kind}

	s.mu.RLock()
	b := s.buckets[k]
	s.mu.RUnlock()
	if b != nil || !create {
		return b
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if b = s.buckets[k]; b == nil {
		b = newBucket()
		s.buckets[k] = b
	}
	return b
}

// lockedBucket returns the live bucket for (tenant, kind) with its write lock
// held, creating it if needed. A bucket detached by a concurrent Clear is
// skipped so writes never land outside the store.
func (s *MemoryStore) lockedBucket(tenant, kind string) *bucket {
	for {
		b := s.bucket(tenant, kind, true)
		b.mu.Lock()
		if !b.dropped {
			return b
		}
		b.mu.Unlock()
	}
}

// Insert adds a new document.
func (s *MemoryStore) Insert(tenant, kind string, doc Document) error {
	return s.write(tenant, kind, doc, true)
}

// Put stores a document, replacing any previous value with the same id.
func (s *MemoryStore) Put(tenant, kind string, doc Document) error {
	return s.write(tenant, kind, doc, false)
}

func (s *MemoryStore) write(tenant, kind string, doc Document, mustBeNew bool) error {
	if doc == nil || doc.DocumentID() == "" {
		return fmt.Errorf("storage: document id cannot be empty")
	}
	id, key := doc.DocumentID(), doc.DocumentKey()

	b := s.lockedBucket(tenant, kind)
	defer b.mu.Unlock()

	prev, exists := b.docs[id]
	if exists && mustBeNew {
		return fmt.Errorf("%w: %s %q", ErrExists, kind, id)
	}
	if key != "" {
		if owner, taken := b.keys[key]; taken && owner != id {
			return fmt.Errorf("%w: %s key %q", ErrDuplicateKey, kind, key)
		}
	}

	seq := prev.seq
	if !exists {
		b.seq++
		seq = b.seq
	}
	if exists {
		if oldKey := prev.doc.DocumentKey(); oldKey != "" && oldKey != key {
			delete(b.keys, oldKey)
		}
	}
	if key != "" {
		b.keys[key] = id
	}
	b.docs[id] = entry{doc: doc, seq: seq}
	return nil
}

// Get retrieves a document by id.
func (s *MemoryStore) Get(tenant, kind, id string) (Document, error) {
	b := s.bucket(tenant, kind, false)
	if b == nil {
		return nil, fmt.Errorf("%w: %s %q", ErrNotFound, kind, id)
	}
	b.mu.RLock()
	defer b.mu.RUnlock()

	e, ok := b.docs[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s %q", ErrNotFound, kind, id)
	}
	return e.doc, nil
}

// GetByKey retrieves a document by key.
func (s *MemoryStore) GetByKey(tenant, kind, key string) (Document, error) {
	b := s.bucket(tenant, kind, false)
	if b == nil || key == "" {
		return nil, fmt.Errorf("%w: %s key %q", ErrNotFound, kind, key)
	}
	b.mu.RLock()
	defer b.mu.RUnlock()

	id, ok := b.keys[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s key %q", ErrNotFound, kind, key)
	}
	return b.docs[id].doc, nil
}

// List returns all documents of a kind in insertion order.
func (s *MemoryStore) List(tenant, kind string) []Document {
	b := s.bucket(tenant, kind, false)
	if b == nil {
		return []Document{}
	}
	b.mu.RLock()
	entries := make([]entry, 0, len(b.docs))
	for _, e := range b.docs {
		entries = append(entries, e)
	}
	b.mu.RUnlock()

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].seq < entries[j].seq
	})

	docs := make([]Document, len(entries))
	for i, e := range entries {
		docs[i] = e.doc
	}
	return docs
}

// Delete removes a document from both indices.
func (s *MemoryStore) Delete(tenant, kind, id string) error {
	b := s.bucket(tenant, kind, false)
	if b == nil {
		return fmt.Errorf("%w: %s %q", ErrNotFound, kind, id)
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	e, ok := b.docs[id]
	if !ok {
		return fmt.Errorf("%w: %s %q", ErrNotFound, kind, id)
	}
	if key := e.doc.DocumentKey(); key != "" && b.keys[key] == id {
		delete(b.keys, key)
	}
	delete(b.docs, id)
	return nil
}

// Lock acquires the per-document mutex for (tenant, kind, id).
func (s *MemoryStore) Lock(tenant, kind, id string) func() {
	return s.locks.lock(lockKey{tenant: tenant, kind: kind, id: id})
}

// Count returns the number of documents of a kind.
func (s *MemoryStore) Count(tenant, kind string) int {
	b := s.bucket(tenant, kind, false)
	if b == nil {
		return 0
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.docs)
}

// Tenants returns the tenants holding at least one bucket, sorted.
func (s *MemoryStore) Tenants() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]bool)
	tenants := make([]string, 0)
	for k := range s.buckets {
		if !seen[k.tenant] {
			seen[k.tenant] = true
			tenants = append(tenants, k.tenant)
		}
	}
	sort.Strings(tenants)
	return tenants
}

// Clear removes every document of a tenant, or of all tenants if tenant is "".
// Returns the number of documents removed.
func (s *MemoryStore) Clear(tenant string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for k, b := range s.buckets {
		if tenant != "" && k.tenant != tenant {
			continue
		}
		b.mu.Lock()
		removed += len(b.docs)
		b.dropped = true
		b.mu.Unlock()
		delete(s.buckets, k)
	}
	return removed
}
