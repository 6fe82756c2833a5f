package storage

import "errors"

// Common storage errors. Returned errors wrap these and can be matched with errors.Is.
var (
	ErrNotFound     = errors.New("document not found")
	ErrExists       = errors.New("document already exists")
	ErrDuplicateKey = errors.New("duplicate key")
)

// Document is a value that can be held by a Store.
type Document interface {
	// DocumentID returns the primary identifier. Must be non-empty.
	DocumentID() string
	// DocumentKey returns the optional human-readable key, or "".
	DocumentKey() string
}

// Store defines the contract for the document store shared by all repositories.
type Store interface {
	// Insert adds a new document. Fails with ErrExists if the id is taken and
	// with ErrDuplicateKey if the key belongs to another document.
	Insert(tenant, kind string, doc Document) error

	// Put stores a document, replacing any previous value with the same id.
	// Fails with ErrDuplicateKey if the key belongs to another document.
	Put(tenant, kind string, doc Document) error

	// Get retrieves a document by id.
	Get(tenant, kind, id string) (Document, error)

	// GetByKey retrieves a document by key.
	GetByKey(tenant, kind, key string) (Document, error)

	// List returns all documents of a kind in insertion order.
	List(tenant, kind string) []Document

	// Delete removes a document from both indices.
	Delete(tenant, kind, id string) error

	// Lock acquires the per-document mutex and returns its release function.
	Lock(tenant, kind, id string) (unlock func())

	// Count returns the number of documents of a kind.
	Count(tenant, kind string) int

	// Tenants returns the tenants holding at least one bucket, sorted.
	Tenants() []string

	// Clear removes every document of a tenant, or of all tenants if tenant is "".
	Clear(tenant string) int
}
