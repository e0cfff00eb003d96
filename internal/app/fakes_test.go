package app

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"

	"devconnector/internal/model"
	"devconnector/internal/testutil/memstore"
)

var errStoreDown = errors.New("store down")

// memUsers fails every call with fail when it is set.
type memUsers struct {
	*memstore.Users
	fail error
}

func newMemUsers() *memUsers {
	return &memUsers{Users: memstore.NewUsers()}
}

func (m *memUsers) Create(ctx context.Context, user *model.User) error {
	if m.fail != nil {
		return m.fail
	}
	return m.Users.Create(ctx, user)
}

func (m *memUsers) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	if m.fail != nil {
		return nil, m.fail
	}
	return m.Users.GetByEmail(ctx, email)
}

func (m *memUsers) GetByID(ctx context.Context, id string) (*model.User, error) {
	if m.fail != nil {
		return nil, m.fail
	}
	return m.Users.GetByID(ctx, id)
}

type memGuard struct {
	mu   sync.Mutex
	held map[string]string
	err  error
}

func newMemGuard() *memGuard {
	return &memGuard{held: map[string]string{}}
}

func (g *memGuard) Acquire(_ context.Context, key string) (string, bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.err != nil {
		return "", false, g.err
	}
	if _, ok := g.held[key]; ok {
		return "", false, nil
	}
	token := uuid.NewString()
	g.held[key] = token
	return token, true, nil
}

func (g *memGuard) Release(_ context.Context, key, token string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.held[key] == token {
		delete(g.held, key)
	}
	return nil
}
