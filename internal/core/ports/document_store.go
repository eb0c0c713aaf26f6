package ports

import (
	"context"
	"errors"
)

// Collection names used by the core.
const (
	CollectionUsers    = "users"
	CollectionSearches = "searches"
)

// IDField is the key under which every Document carries its identifier.
const IDField = "id"

var (
	ErrDocumentNotFound = errors.New("document not found")
	ErrDuplicateKey     = errors.New("duplicate key")
)

// Document is a schemaless record as returned by a DocumentStore.
// Driver-native values are normalised before they reach callers: identifiers
// become strings and timestamps become time.Time.
type Document map[string]any

// ID returns the document identifier, or "" if absent.
func (d Document) ID() string {
	id, _ := d[IDField].(string)
	return id
}

// DocumentStore is the generic persistence contract the core is written against.
// No transactions are assumed.
type DocumentStore interface {
	// GetByID returns ErrDocumentNotFound when no document has the id,
	// including when the id is malformed for the backend.
	GetByID(ctx context.Context, collection, id string) (Document, error)
	// FindOne returns the first document whose field equals value.
	FindOne(ctx context.Context, collection, field string, value any) (Document, error)
	// FindAll returns every document whose field equals value. Order is store-defined.
	FindAll(ctx context.Context, collection, field string, value any) ([]Document, error)
	// Insert stores fields as a new document and returns its server-assigned id.
	Insert(ctx context.Context, collection string, fields Document) (string, error)
	// Delete removes a document. Deleting an absent document is a no-op.
	Delete(ctx context.Context, collection, id string) error

	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}
