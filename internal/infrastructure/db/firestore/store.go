package firestore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/kidguard/parental-api/internal/core/ports"
)

// Store is a ports.DocumentStore over Firestore. Firestore has no unique
// indexes, so Insert never reports ErrDuplicateKey; the services check for
// an existing username before creating an account.
type Store struct {
	client *firestore.Client
}

func NewStore(client *firestore.Client) *Store {
	return &Store{client: client}
}

func (s *Store) GetByID(ctx context.Context, collection, id string) (ports.Document, error) {
	if !validID(id) {
		return nil, ports.ErrDocumentNotFound
	}

	snap, err := s.client.Collection(collection).Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, ports.ErrDocumentNotFound
		}
		return nil, fmt.Errorf("firestore get %s: %w", collection, err)
	}
	if !snap.Exists() {
		return nil, ports.ErrDocumentNotFound
	}
	return toDocument(snap.Ref.ID, snap.Data()), nil
}

func (s *Store) FindOne(ctx context.Context, collection, field string, value any) (ports.Document, error) {
	iter := s.client.Collection(collection).Where(field, "==", value).Limit(1).Documents(ctx)
	defer iter.Stop()

	snap, err := iter.Next()
	if errors.Is(err, iterator.Done) {
		return nil, ports.ErrDocumentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("firestore query %s: %w", collection, err)
	}
	return toDocument(snap.Ref.ID, snap.Data()), nil
}

func (s *Store) FindAll(ctx context.Context, collection, field string, value any) ([]ports.Document, error) {
	snaps, err := s.client.Collection(collection).Where(field, "==", value).Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("firestore query %s: %w", collection, err)
	}

	docs := make([]ports.Document, 0, len(snaps))
	for _, snap := range snaps {
		docs = append(docs, toDocument(snap.Ref.ID, snap.Data()))
	}
	return docs, nil
}

func (s *Store) Insert(ctx context.Context, collection string, fields ports.Document) (string, error) {
	data := make(map[string]any, len(fields))
	for k, v := range fields {
		if k == ports.IDField {
			continue
		}
		data[k] = v
	}

	ref, _, err := s.client.Collection(collection).Add(ctx, data)
	if err != nil {
		return "", fmt.Errorf("firestore add %s: %w", collection, err)
	}
	return ref.ID, nil
}

func (s *Store) Delete(ctx context.Context, collection, id string) error {
	if !validID(id) {
		return nil
	}
	if _, err := s.client.Collection(collection).Doc(id).Delete(ctx); err != nil {
		if status.Code(err) == codes.NotFound {
			return nil
		}
		return fmt.Errorf("firestore delete %s: %w", collection, err)
	}
	return nil
}

// Ping reads at most one user document.
func (s *Store) Ping(ctx context.Context) error {
	iter := s.client.Collection(ports.CollectionUsers).Limit(1).Documents(ctx)
	defer iter.Stop()

	if _, err := iter.Next(); err != nil && !errors.Is(err, iterator.Done) {
		return fmt.Errorf("firestore ping: %w", err)
	}
	return nil
}

func (s *Store) Close(context.Context) error {
	return s.client.Close()
}

// validID rejects ids the client library would refuse to address.
func validID(id string) bool {
	return id != "" && !strings.Contains(id, "/")
}

func toDocument(id string, data map[string]any) ports.Document {
	doc := make(ports.Document, len(data)+1)
	for k, v := range data {
		doc[k] = normalise(v)
	}
	doc[ports.IDField] = id
	return doc
}

func normalise(v any) any {
	switch val := v.(type) {
	case time.Time:
		return val.UTC()
	case *firestore.DocumentRef:
		if val == nil {
			return nil
		}
		return val.ID
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = normalise(item)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = normalise(item)
		}
		return out
	default:
		return v
	}
}
