package persist

import (
	"context"
	"fmt"
	"sync"
)

// MemStore is an in-memory Store for tests and demos. It mimics the
// backend's observable behavior, including ErrNotFound for unresolvable
// references and no-op deletes.
type MemStore struct {
	mu     sync.Mutex
	doc    []byte
	puts   int
	seq    int
	images map[PayloadRef]storedPayload
	audio  map[PayloadRef][]byte
}

type storedPayload struct {
	payload   []byte
	thumbnail []byte
}

// NewMemStore creates an empty MemStore.
func NewMemStore() *MemStore {
	return &MemStore{
		images: make(map[PayloadRef]storedPayload),
		audio:  make(map[PayloadRef][]byte),
	}
}

// Document implements Store.
func (s *MemStore) Document(ctx context.Context) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.doc == nil {
		return nil, nil
	}
	out := make([]byte, len(s.doc))
	copy(out, s.doc)
	return out, nil
}

// PutDocument implements Store.
func (s *MemStore) PutDocument(ctx context.Context, blob []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc = make([]byte, len(blob))
	copy(s.doc, blob)
	s.puts++
	return nil
}

// PutCount returns how many document overwrites have been received.
// Test hook for the debounce coalescing property.
func (s *MemStore) PutCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.puts
}

// PutImage implements Store.
func (s *MemStore) PutImage(ctx context.Context, payload, thumbnail []byte) (PayloadRef, error) {
	if len(payload) == 0 {
		return "", ErrEmptyPayload
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	ref := s.nextRef("img")
	s.images[ref] = storedPayload{payload: payload, thumbnail: thumbnail}
	return ref, nil
}

// GetImage implements Store.
func (s *MemStore) GetImage(ctx context.Context, ref PayloadRef) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.images[ref]
	if !ok {
		return nil, ErrNotFound
	}
	return p.payload, nil
}

// Thumbnail returns the stored thumbnail for ref. Test hook.
func (s *MemStore) Thumbnail(ref PayloadRef) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.images[ref]
	return p.thumbnail, ok
}

// DeleteImage implements Store.
func (s *MemStore) DeleteImage(ctx context.Context, ref PayloadRef) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.images, ref)
	return nil
}

// PutAudio implements Store.
func (s *MemStore) PutAudio(ctx context.Context, payload []byte) (PayloadRef, error) {
	if len(payload) == 0 {
		return "", ErrEmptyPayload
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	ref := s.nextRef("aud")
	s.audio[ref] = payload
	return ref, nil
}

// GetAudio implements Store.
func (s *MemStore) GetAudio(ctx context.Context, ref PayloadRef) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.audio[ref]
	if !ok {
		return nil, ErrNotFound
	}
	return p, nil
}

// DeleteAudio implements Store.
func (s *MemStore) DeleteAudio(ctx context.Context, ref PayloadRef) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.audio, ref)
	return nil
}

// DropAudio removes a stored audio payload without going through the
// Store interface, for simulating dangling references in tests.
func (s *MemStore) DropAudio(ref PayloadRef) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.audio, ref)
}

func (s *MemStore) nextRef(kind string) PayloadRef {
	s.seq++
	return PayloadRef(fmt.Sprintf("%s-%d", kind, s.seq))
}
