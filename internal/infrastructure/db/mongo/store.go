package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/kidguard/parental-api/internal/core/ports"
)

const mongoIDField = "_id"

// Store is a ports.DocumentStore over a MongoDB database. Document ids are
// ObjectID hex strings.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

func NewStore(client *mongo.Client, db *mongo.Database) *Store {
	return &Store{client: client, db: db}
}

func (s *Store) GetByID(ctx context.Context, collection, id string) (ports.Document, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ports.ErrDocumentNotFound
	}
	return s.findOne(ctx, collection, bson.M{mongoIDField: oid})
}

func (s *Store) FindOne(ctx context.Context, collection, field string, value any) (ports.Document, error) {
	return s.findOne(ctx, collection, bson.M{field: value})
}

func (s *Store) findOne(ctx context.Context, collection string, filter bson.M) (ports.Document, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var raw bson.M
	if err := s.db.Collection(collection).FindOne(ctx, filter).Decode(&raw); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ports.ErrDocumentNotFound
		}
		return nil, fmt.Errorf("mongo find %s: %w", collection, err)
	}
	return toDocument(raw), nil
}

func (s *Store) FindAll(ctx context.Context, collection, field string, value any) ([]ports.Document, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cursor, err := s.db.Collection(collection).Find(ctx, bson.M{field: value})
	if err != nil {
		return nil, fmt.Errorf("mongo find %s: %w", collection, err)
	}

	var raws []bson.M
	if err := cursor.All(ctx, &raws); err != nil {
		return nil, fmt.Errorf("mongo decode %s: %w", collection, err)
	}

	docs := make([]ports.Document, 0, len(raws))
	for _, raw := range raws {
		docs = append(docs, toDocument(raw))
	}
	return docs, nil
}

func (s *Store) Insert(ctx context.Context, collection string, fields ports.Document) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := s.db.Collection(collection).InsertOne(ctx, toBSON(fields))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return "", ports.ErrDuplicateKey
		}
		return "", fmt.Errorf("mongo insert %s: %w", collection, err)
	}
	return idString(res.InsertedID), nil
}

func (s *Store) Delete(ctx context.Context, collection, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := s.db.Collection(collection).DeleteOne(ctx, bson.M{mongoIDField: oid}); err != nil {
		return fmt.Errorf("mongo delete %s: %w", collection, err)
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// EnsureIndexes creates the unique username index and the lookup indexes
// used by child and search queries.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	users := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "username", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "parent_id", Value: 1}}},
	}
	if _, err := s.db.Collection(ports.CollectionUsers).Indexes().CreateMany(ctx, users); err != nil {
		return fmt.Errorf("users indexes: %w", err)
	}

	searches := []mongo.IndexModel{
		{Keys: bson.D{{Key: "child_id", Value: 1}, {Key: "timestamp", Value: -1}}},
	}
	if _, err := s.db.Collection(ports.CollectionSearches).Indexes().CreateMany(ctx, searches); err != nil {
		return fmt.Errorf("searches indexes: %w", err)
	}
	return nil
}

// toBSON drops the "id" key; Mongo assigns _id on insert.
func toBSON(fields ports.Document) bson.M {
	out := make(bson.M, len(fields))
	for k, v := range fields {
		if k == ports.IDField || k == mongoIDField {
			continue
		}
		out[k] = v
	}
	return out
}

func toDocument(raw bson.M) ports.Document {
	doc := make(ports.Document, len(raw))
	for k, v := range raw {
		if k == mongoIDField {
			doc[ports.IDField] = idString(v)
			continue
		}
		doc[k] = normalise(v)
	}
	return doc
}

func normalise(v any) any {
	switch val := v.(type) {
	case primitive.ObjectID:
		return val.Hex()
	case primitive.DateTime:
		return val.Time().UTC()
	case primitive.Timestamp:
		return time.Unix(int64(val.T), 0).UTC()
	case time.Time:
		return val.UTC()
	case bson.M:
		return map[string]any(toDocument(val))
	case primitive.D:
		m := make(bson.M, len(val))
		for _, e := range val {
			m[e.Key] = e.Value
		}
		return map[string]any(toDocument(m))
	case primitive.A:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = normalise(item)
		}
		return out
	default:
		return v
	}
}

func idString(v any) string {
	switch id := v.(type) {
	case primitive.ObjectID:
		return id.Hex()
	case string:
		return id
	case nil:
		return ""
	default:
		return fmt.Sprint(id)
	}
}
