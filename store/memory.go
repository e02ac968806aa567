package store

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// MemoryStore keeps collections in process memory. It backs tests and local
// development without Firestore credentials.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string][]Document // insertion order preserved
}

func NewMemory() *MemoryStore {
	return &MemoryStore{collections: make(map[string][]Document)}
}

func (s *MemoryStore) Get(ctx context.Context, collection, id string) (Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, doc := range s.collections[collection] {
		if doc["id"] == id {
			return Clone(doc), nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) GetAll(ctx context.Context, collection string) ([]Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	docs := make([]Document, 0, len(s.collections[collection]))
	for _, doc := range s.collections[collection] {
		docs = append(docs, Clone(doc))
	}
	return docs, nil
}

func (s *MemoryStore) Create(ctx context.Context, collection string, fields Document) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := uuid.New().String()
	doc := Clone(fields)
	doc["id"] = id
	s.collections[collection] = append(s.collections[collection], doc)
	return id, nil
}

func (s *MemoryStore) Put(ctx context.Context, collection, id string, fields Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := Clone(fields)
	doc["id"] = id
	for i, existing := range s.collections[collection] {
		if existing["id"] == id {
			s.collections[collection][i] = doc
			return nil
		}
	}
	s.collections[collection] = append(s.collections[collection], doc)
	return nil
}

func (s *MemoryStore) UpdatePartial(ctx context.Context, collection, id string, fields Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, doc := range s.collections[collection] {
		if doc["id"] != id {
			continue
		}
		for field, value := range fields {
			if field == "id" {
				continue
			}
			if sub, ok := value.(map[string]any); ok {
				value = Clone(sub)
			}
			doc[field] = value
		}
		return nil
	}
	return ErrNotFound
}

// Seed inserts a document with a caller-chosen identifier. Test helper.
func (s *MemoryStore) Seed(collection, id string, fields Document) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := Clone(fields)
	doc["id"] = id
	s.collections[collection] = append(s.collections[collection], doc)
}
