// Package vectorstore owns the process-wide handle to the prebuilt index.
package vectorstore

import (
	"sync"

	"sustainability-qa/internal/domain"
	"sustainability-qa/internal/vectorstore/disk"
)

// Loader memoizes one store handle for the process lifetime. The index is
// read-only after load, so the handle is safe to share across questions
// without locking.
type Loader struct {
	path  string
	once  sync.Once
	store *disk.Store
	err   error
}

// NewLoader creates a loader for the index directory at path. Nothing is
// read from disk until Load is called.
func NewLoader(path string) *Loader { return &Loader{path: path} }

// Load opens the index on the first call; every later call returns the
// same handle (or the same open error) without touching disk again.
func (l *Loader) Load() (domain.VectorStore, error) {
	l.once.Do(func() {
		l.store, l.err = disk.Open(l.path)
	})
	if l.err != nil {
		return nil, l.err
	}
	return l.store, nil
}

// Close releases the cached handle on process shutdown.
func (l *Loader) Close() {
	if l.store != nil {
		l.store.Close()
	}
}
