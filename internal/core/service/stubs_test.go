package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/kidguard/parental-api/internal/core/domain"
)

// ---------------------------------------------------------------------------
// In-memory stub repositories
// ---------------------------------------------------------------------------

type stubUserRepo struct {
	byID    map[string]*domain.User
	nextID  int
	findErr error // if set, every lookup returns this error
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{byID: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	if u.ParentID != nil {
		pid := *u.ParentID
		clone.ParentID = &pid
	}
	return &clone
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	u, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *stubUserRepo) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	for _, u := range r.byID {
		if u.Username == username {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindChildren(_ context.Context, parentID string) ([]*domain.User, error) {
	var out []*domain.User
	for _, u := range r.byID {
		if u.ParentID != nil && *u.ParentID == parentID {
			out = append(out, cloneUser(u))
		}
	}
	return out, nil
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	for _, u := range r.byID {
		if u.Username == user.Username {
			return nil, domain.ErrUserExists
		}
	}
	r.nextID++
	clone := cloneUser(user)
	clone.ID = fmt.Sprintf("u%d", r.nextID)
	r.byID[clone.ID] = cloneUser(clone)
	return clone, nil
}

func (r *stubUserRepo) Delete(_ context.Context, id string) error {
	delete(r.byID, id)
	return nil
}

type stubSearchRepo struct {
	byID      map[string]*domain.BlockedSearch
	nextID    int
	deleteErr error // if set, Delete returns this error
}

func newStubSearchRepo() *stubSearchRepo {
	return &stubSearchRepo{byID: make(map[string]*domain.BlockedSearch)}
}

func (r *stubSearchRepo) Create(_ context.Context, s *domain.BlockedSearch) (*domain.BlockedSearch, error) {
	r.nextID++
	clone := *s
	clone.ID = fmt.Sprintf("s%d", r.nextID)
	stored := clone
	r.byID[clone.ID] = &stored
	return &clone, nil
}

func (r *stubSearchRepo) FindByChild(_ context.Context, childID string) ([]*domain.BlockedSearch, error) {
	var out []*domain.BlockedSearch
	for _, s := range r.byID {
		if s.ChildID == childID {
			clone := *s
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (r *stubSearchRepo) Delete(_ context.Context, id string) error {
	if r.deleteErr != nil {
		return r.deleteErr
	}
	delete(r.byID, id)
	return nil
}

func (r *stubSearchRepo) countFor(childID string) int {
	n := 0
	for _, s := range r.byID {
		if s.ChildID == childID {
			n++
		}
	}
	return n
}

// stubThrottle blocks a key once it reaches max recorded failures.
type stubThrottle struct {
	max      int
	failures map[string]int
	err      error
}

func newStubThrottle(max int) *stubThrottle {
	return &stubThrottle{max: max, failures: make(map[string]int)}
}

func (t *stubThrottle) Blocked(_ context.Context, key string) (bool, error) {
	if t.err != nil {
		return false, t.err
	}
	return t.failures[key] >= t.max, nil
}

func (t *stubThrottle) RecordFailure(_ context.Context, key string) error {
	if t.err != nil {
		return t.err
	}
	t.failures[key]++
	return nil
}

func (t *stubThrottle) Reset(_ context.Context, key string) error {
	delete(t.failures, key)
	return nil
}

// ---------------------------------------------------------------------------
// Fixture wiring
// ---------------------------------------------------------------------------

var errStoreDown = errors.New("store unavailable")

var fixedNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

type fixture struct {
	users    *stubUserRepo
	searches *stubSearchRepo
	creds    *CredentialService
	access   *AccessService
	auth     *AuthService
	children *ChildService
	search   *SearchService
	clock    *time.Time
}

func newFixture(throttle LoginThrottle) *fixture {
	users := newStubUserRepo()
	searches := newStubSearchRepo()
	clock := fixedNow
	now := func() time.Time { return clock }

	creds := NewCredentialService(CredentialConfig{
		Secret:     "test-secret",
		TokenTTL:   30 * time.Minute,
		BcryptCost: bcrypt.MinCost,
		Now:        now,
	})
	access := NewAccessService(users, creds)
	log := zerolog.Nop()

	return &fixture{
		users:    users,
		searches: searches,
		creds:    creds,
		access:   access,
		auth:     NewAuthService(users, creds, throttle, log),
		children: NewChildService(users, searches, creds, access, log),
		search:   NewSearchService(searches, users, access, func() time.Time { return clock }, log),
		clock:    &clock,
	}
}

func (f *fixture) mustParent(username, password string) *domain.User {
	u, err := f.auth.RegisterParent(context.Background(), username, password)
	if err != nil {
		panic(fmt.Sprintf("register %s: %v", username, err))
	}
	return u
}

func (f *fixture) mustChild(parent *domain.User, username, password string) *domain.User {
	u, err := f.children.CreateChild(context.Background(), parent, username, password)
	if err != nil {
		panic(fmt.Sprintf("create child %s: %v", username, err))
	}
	return u
}
