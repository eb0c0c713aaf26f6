// Package memory is an in-process DocumentStore used by tests and local runs.
package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/kidguard/parental-api/internal/core/ports"
)

type collection struct {
	docs  map[string]ports.Document
	order []string
}

// Store keeps documents in maps keyed by collection and id.
type Store struct {
	mu          sync.RWMutex
	collections map[string]*collection
	unique      map[string][]string
	newID       func() string
}

type Option func(*Store)

// WithUnique makes Insert reject a document whose field value already exists
// in the collection, like a unique index would.
func WithUnique(collection, field string) Option {
	return func(s *Store) {
		s.unique[collection] = append(s.unique[collection], field)
	}
}

// WithIDGenerator replaces the default UUIDv4 generator.
func WithIDGenerator(fn func() string) Option {
	return func(s *Store) {
		s.newID = fn
	}
}

func New(opts ...Option) *Store {
	s := &Store{
		collections: make(map[string]*collection),
		unique:      make(map[string][]string),
		newID:       func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) GetByID(_ context.Context, coll, id string) (ports.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.collections[coll]
	if !ok {
		return nil, ports.ErrDocumentNotFound
	}
	doc, ok := c.docs[id]
	if !ok {
		return nil, ports.ErrDocumentNotFound
	}
	return cloneDoc(doc), nil
}

func (s *Store) FindOne(_ context.Context, coll, field string, value any) (ports.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.collections[coll]
	if !ok {
		return nil, ports.ErrDocumentNotFound
	}
	for _, id := range c.order {
		if doc := c.docs[id]; matches(doc, field, value) {
			return cloneDoc(doc), nil
		}
	}
	return nil, ports.ErrDocumentNotFound
}

// FindAll returns matches in insertion order.
func (s *Store) FindAll(_ context.Context, coll, field string, value any) ([]ports.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []ports.Document{}
	c, ok := s.collections[coll]
	if !ok {
		return out, nil
	}
	for _, id := range c.order {
		if doc := c.docs[id]; matches(doc, field, value) {
			out = append(out, cloneDoc(doc))
		}
	}
	return out, nil
}

func (s *Store) Insert(_ context.Context, coll string, fields ports.Document) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.collections[coll]
	if !ok {
		c = &collection{docs: make(map[string]ports.Document)}
		s.collections[coll] = c
	}

	for _, field := range s.unique[coll] {
		value, present := fields[field]
		if !present {
			continue
		}
		for _, id := range c.order {
			if matches(c.docs[id], field, value) {
				return "", ports.ErrDuplicateKey
			}
		}
	}

	id := s.newID()
	doc := cloneDoc(fields)
	doc[ports.IDField] = id
	c.docs[id] = doc
	c.order = append(c.order, id)
	return id, nil
}

func (s *Store) Delete(_ context.Context, coll, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.collections[coll]
	if !ok {
		return nil
	}
	if _, ok := c.docs[id]; !ok {
		return nil
	}
	delete(c.docs, id)
	for i, v := range c.order {
		if v == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	return nil
}

func (s *Store) Ping(context.Context) error { return nil }

func (s *Store) Close(context.Context) error { return nil }

// Count returns the number of documents in a collection.
func (s *Store) Count(coll string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if c, ok := s.collections[coll]; ok {
		return len(c.docs)
	}
	return 0
}

func matches(doc ports.Document, field string, value any) bool {
	v, ok := doc[field]
	if !ok {
		return false
	}
	switch want := value.(type) {
	case string:
		got, ok := v.(string)
		return ok && got == want
	case nil:
		return v == nil
	default:
		return v == value
	}
}

func cloneDoc(doc ports.Document) ports.Document {
	out := make(ports.Document, len(doc))
	for k, v := range doc {
		out[k] = v
	}
	return out
}
