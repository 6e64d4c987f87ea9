// Package block implements the BlockStore: a content-addressed key/value
// store for raw block bytes, keyed by the lowercase hex SHA-256 of their
// contents. See doc.go for the HTTP surface.
package block

import (
	"sync"

	"github.com/dreamware/surfstore/internal/hashutil"
)

// Store is an in-memory, thread-safe hash-to-bytes map. Stored blocks are
// never mutated or deleted: once a hash is present, it stays present for the
// lifetime of the process.
type Store struct {
	mu   sync.RWMutex
	data map[string][]byte

	// verifyHashes, when true, rejects a Put whose bytes don't hash to the
	// claimed key (spec open question 3). Off by default: the caller is
	// trusted to have computed the hash correctly.
	verifyHashes bool
}

// NewStore creates an empty Store. verifyHashes enables the optional
// defensive SHA-256 check on Put.
func NewStore(verifyHashes bool) *Store {
	return &Store{
		data:         make(map[string][]byte),
		verifyHashes: verifyHashes,
	}
}

// ErrHashMismatch is returned by Put when verifyHashes is enabled and the
// submitted bytes do not hash to the claimed key.
type ErrHashMismatch struct {
	Claimed string
	Actual  string
}

func (e *ErrHashMismatch) Error() string {
	return "block hash mismatch: claimed " + e.Claimed + ", actual " + e.Actual
}

// Put stores block under hash, overwriting any previous value for hash (in
// practice a no-op overwrite, since every writer of a given hash writes the
// same bytes).
//
// Parameters:
//   - hash: the lowercase hex SHA-256 the caller claims for block.
//   - block: the raw bytes to store; Put copies them, so the caller's
//     slice may be reused or modified immediately after Put returns.
//
// Returns:
//   - nil on success.
//   - *ErrHashMismatch if verifyHashes is enabled and hash doesn't match
//     the recomputed SHA-256 of block.
//
// Thread safety: safe for concurrent calls; the exclusive lock is held
// only for the map write, not for the copy or the optional hash check.
func (s *Store) Put(hash string, block []byte) error {
	if s.verifyHashes {
		if actual := hashutil.Hash(block); actual != hash {
			return &ErrHashMismatch{Claimed: hash, Actual: actual}
		}
	}

	cp := make([]byte, len(block))
	copy(cp, block)

	s.mu.Lock()
	s.data[hash] = cp
	s.mu.Unlock()
	return nil
}

// ErrNotFound is returned by Get when hash is absent.
var ErrNotFound = notFoundError{}

type notFoundError struct{}

func (notFoundError) Error() string { return "block not found" }

// Get returns the bytes stored under hash, or ErrNotFound if absent.
//
// The returned slice is a private copy; mutating it never affects the
// Store's internal state or a concurrent caller's own copy. Thread safety:
// uses the shared (read) lock, so any number of Get/Has calls can run
// concurrently with each other.
func (s *Store) Get(hash string) ([]byte, error) {
	s.mu.RLock()
	block, ok := s.data[hash]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	cp := make([]byte, len(block))
	copy(cp, block)
	return cp, nil
}

// Has reports whether hash is present. It never fails for a well-formed
// hash.
func (s *Store) Has(hash string) bool {
	s.mu.RLock()
	_, ok := s.data[hash]
	s.mu.RUnlock()
	return ok
}

// Stats summarizes the store's current contents for the ambient /stats
// endpoint; it is not part of the spec's BlockStore contract.
type Stats struct {
	BlockCount int
	TotalBytes int
}

// Stats returns a point-in-time snapshot of block count and total bytes
// stored.
func (s *Store) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stats := Stats{BlockCount: len(s.data)}
	for _, v := range s.data {
		stats.TotalBytes += len(v)
	}
	return stats
}
