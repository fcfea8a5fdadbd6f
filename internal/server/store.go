package server

import "sync"

type docEntry struct {
	content    string
	languageID string
}

// Store is the in-memory document store backing the engine. It implements
// engine.DocumentStore.
type Store struct {
	mu   sync.RWMutex
	docs map[string]docEntry
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{docs: make(map[string]docEntry)}
}

// Open registers a document with its initial text.
func (s *Store) Open(uri, languageID, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[uri] = docEntry{content: text, languageID: languageID}
}

// Update replaces a document's full text. Unknown documents are ignored;
// the client must open before changing.
func (s *Store) Update(uri, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.docs[uri]
	if !ok {
		return
	}
	entry.content = text
	s.docs[uri] = entry
}

// Close forgets a document.
func (s *Store) Close(uri string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.docs, uri)
}

// Lookup returns the current text and language of uri.
func (s *Store) Lookup(uri string) (content, languageID string, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.docs[uri]
	return entry.content, entry.languageID, ok
}
