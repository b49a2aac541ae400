package lsp

import (
	"sync"

	"fave/internal/diag"
)

// Document is an open editor buffer and the diagnostics last published for it.
type Document struct {
	Text        string
	Version     int32
	Diagnostics []diag.Diagnostic
}

type Store struct {
	mu   sync.RWMutex
	docs map[string]*Document // uri -> document
}

func NewStore() *Store {
	return &Store{docs: map[string]*Document{}}
}

// Set replaces the text of uri and drops its stale diagnostics.
func (s *Store) Set(uri, text string, version int32) *Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc := &Document{Text: text, Version: version}
	s.docs[uri] = doc
	return doc
}

func (s *Store) Get(uri string) (*Document, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.docs[uri]
	return d, ok
}

func (s *Store) SetDiagnostics(uri string, ds []diag.Diagnostic) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if d, ok := s.docs[uri]; ok {
		d.Diagnostics = ds
	}
}

func (s *Store) Delete(uri string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.docs, uri)
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs)
}
