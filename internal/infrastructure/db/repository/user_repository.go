// Package repository maps schemaless store documents onto domain types.
package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/kidguard/parental-api/internal/core/domain"
	"github.com/kidguard/parental-api/internal/core/ports"
)

const (
	fieldUsername       = "username"
	fieldHashedPassword = "hashed_password"
	fieldRole           = "role"
	fieldParentID       = "parent_id"
)

type UserRepository struct {
	store ports.DocumentStore
}

func NewUserRepository(store ports.DocumentStore) *UserRepository {
	return &UserRepository{store: store}
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	doc, err := r.store.GetByID(ctx, ports.CollectionUsers, id)
	if err != nil {
		return nil, userErr("find user by id", err)
	}
	return toUser(doc), nil
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	doc, err := r.store.FindOne(ctx, ports.CollectionUsers, fieldUsername, username)
	if err != nil {
		return nil, userErr("find user by username", err)
	}
	return toUser(doc), nil
}

func (r *UserRepository) FindChildren(ctx context.Context, parentID string) ([]*domain.User, error) {
	docs, err := r.store.FindAll(ctx, ports.CollectionUsers, fieldParentID, parentID)
	if err != nil {
		return nil, fmt.Errorf("find children: %w", err)
	}

	users := make([]*domain.User, 0, len(docs))
	for _, doc := range docs {
		users = append(users, toUser(doc))
	}
	return users, nil
}

// Create inserts the user and returns a copy carrying the store-assigned id.
func (r *UserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	doc := ports.Document{
		fieldUsername:       user.Username,
		fieldHashedPassword: user.PasswordHash,
		fieldRole:           user.Role,
		fieldParentID:       nil,
	}
	if user.ParentID != nil {
		doc[fieldParentID] = *user.ParentID
	}

	id, err := r.store.Insert(ctx, ports.CollectionUsers, doc)
	if err != nil {
		if errors.Is(err, ports.ErrDuplicateKey) {
			return nil, domain.ErrUserExists
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}

	created := *user
	created.ID = id
	return &created, nil
}

func (r *UserRepository) Delete(ctx context.Context, id string) error {
	if err := r.store.Delete(ctx, ports.CollectionUsers, id); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}

func userErr(op string, err error) error {
	if errors.Is(err, ports.ErrDocumentNotFound) {
		return domain.ErrUserNotFound
	}
	return fmt.Errorf("%s: %w", op, err)
}

// toUser keeps only the known fields; anything else in the document is dropped.
func toUser(doc ports.Document) *domain.User {
	u := &domain.User{
		ID:           doc.ID(),
		Username:     stringField(doc, fieldUsername),
		PasswordHash: stringField(doc, fieldHashedPassword),
		Role:         stringField(doc, fieldRole),
	}
	if pid := stringField(doc, fieldParentID); pid != "" {
		u.ParentID = &pid
	}
	return u
}

func stringField(doc ports.Document, key string) string {
	s, _ := doc[key].(string)
	return s
}
