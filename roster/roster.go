// Package roster is the admin user-roster manager: the whole usuarios
// collection held locally, a derived filtered view, and per-user role
// toggling with an optimistic local update.
package roster

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"petbudget/model"
	"petbudget/store"
)

var ErrUserNotFound = errors.New("roster: user not found")

type Manager struct {
	mu    sync.Mutex
	st    store.Store
	users []model.User
	query string

	// healWG lets tests wait for detached default-role writes.
	healWG sync.WaitGroup
}

func NewManager(st store.Store) *Manager {
	return &Manager{st: st}
}

// Load fetches the whole collection. Records missing a role come back
// defaulted to "user" for display, and each one triggers a detached write
// persisting that default; the read path never waits on those writes and
// their failures are only logged.
func (m *Manager) Load(ctx context.Context) ([]model.User, error) {
	docs, err := m.st.GetAll(ctx, store.CollectionUsuarios)
	if err != nil {
		return nil, fmt.Errorf("roster: load: %w", err)
	}

	users := make([]model.User, 0, len(docs))
	for _, doc := range docs {
		u := model.UserFromDocument(doc)
		if u.Role == "" {
			u.Role = model.RoleUser
			m.healRole(ctx, u.UserID)
		}
		users = append(users, u)
	}

	m.mu.Lock()
	m.users = users
	m.mu.Unlock()
	return users, nil
}

func (m *Manager) healRole(ctx context.Context, userID string) {
	m.healWG.Add(1)
	go func() {
		defer m.healWG.Done()
		healCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
		defer cancel()
		err := m.st.UpdatePartial(healCtx, store.CollectionUsuarios, userID, store.Document{"role": model.RoleUser})
		if err != nil {
			slog.Warn("role self-heal failed", "user", userID, "error", err)
		}
	}()
}

// Filter recomputes the visible subset: case-insensitive substring match on
// name or email, plain substring match on phone, empty query matches all.
// Order is the loaded order.
func (m *Manager) Filter(query string) []model.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.query = query
	return m.visibleLocked()
}

// Visible re-evaluates the last query against the current set.
func (m *Manager) Visible() []model.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.visibleLocked()
}

func (m *Manager) visibleLocked() []model.User {
	if m.query == "" {
		return append([]model.User(nil), m.users...)
	}
	needle := strings.ToLower(m.query)
	var out []model.User
	for _, u := range m.users {
		if strings.Contains(strings.ToLower(u.Name), needle) ||
			strings.Contains(strings.ToLower(u.Email), needle) ||
			strings.Contains(u.Phone, m.query) {
			out = append(out, u)
		}
	}
	if out == nil {
		out = []model.User{}
	}
	return out
}

// ToggleRole flips a user between "user" and "admin". The local set is
// updated as soon as the write is issued, not once it is confirmed; a failed
// write is reported to the caller and the local set may disagree with the
// remote store until the next Load.
func (m *Manager) ToggleRole(ctx context.Context, userID string) (string, error) {
	m.mu.Lock()
	idx := -1
	for i, u := range m.users {
		if u.UserID == userID {
			idx = i
			break
		}
	}
	if idx < 0 {
		m.mu.Unlock()
		return "", ErrUserNotFound
	}

	newRole := model.RoleAdmin
	if m.users[idx].Role == model.RoleAdmin {
		newRole = model.RoleUser
	}
	m.users[idx].Role = newRole
	m.mu.Unlock()

	err := m.st.UpdatePartial(ctx, store.CollectionUsuarios, userID, store.Document{"role": newRole})
	if err != nil {
		return newRole, fmt.Errorf("roster: toggle role for %s: %w", userID, err)
	}
	return newRole, nil
}

// WaitHeals blocks until in-flight self-heal writes finish. Test hook.
func (m *Manager) WaitHeals() {
	m.healWG.Wait()
}
