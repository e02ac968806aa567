package roster

import (
	"context"
	"errors"
	"sync"
	"testing"

	"petbudget/model"
	"petbudget/store"
)

func seedRoster(st *store.MemoryStore) {
	st.Seed(store.CollectionUsuarios, "u1", store.Document{
		"nombre": "Ana Lopez", "email": "ana@x.com", "telefono": "111222", "role": "user",
	})
	st.Seed(store.CollectionUsuarios, "u2", store.Document{
		"nombre": "Bruno Diaz", "email": "bruno@y.com", "telefono": "333444", "role": "admin",
	})
	st.Seed(store.CollectionUsuarios, "u3", store.Document{
		"nombre": "Carla Ruiz", "email": "carla@x.com", "telefono": "555666",
	}) // no role field
}

func TestLoadDefaultsMissingRole(t *testing.T) {
	st := store.NewMemory()
	seedRoster(st)
	m := NewManager(st)

	users, err := m.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(users) != 3 {
		t.Fatalf("len = %d, want 3", len(users))
	}
	if users[2].Role != model.RoleUser {
		t.Errorf("missing role displayed as %q, want user", users[2].Role)
	}

	m.WaitHeals()
	doc, err := st.Get(context.Background(), store.CollectionUsuarios, "u3")
	if err != nil {
		t.Fatalf("Get u3: %v", err)
	}
	if doc["role"] != model.RoleUser {
		t.Errorf("self-heal did not persist role: %v", doc["role"])
	}
}

type countingStore struct {
	*store.MemoryStore
	mu      sync.Mutex
	updates int
	fail    bool
}

func (c *countingStore) UpdatePartial(ctx context.Context, collection, id string, fields store.Document) error {
	c.mu.Lock()
	c.updates++
	fail := c.fail
	c.mu.Unlock()
	if fail {
		return errors.New("network down")
	}
	return c.MemoryStore.UpdatePartial(ctx, collection, id, fields)
}

func (c *countingStore) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.updates
}

func TestSelfHealWritesExactlyOnce(t *testing.T) {
	mem := store.NewMemory()
	seedRoster(mem)
	st := &countingStore{MemoryStore: mem}
	m := NewManager(st)

	if _, err := m.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	m.WaitHeals()
	if got := st.count(); got != 1 {
		t.Errorf("default-writes = %d, want 1", got)
	}
}

func TestSelfHealFailureDoesNotBlockRead(t *testing.T) {
	mem := store.NewMemory()
	seedRoster(mem)
	st := &countingStore{MemoryStore: mem, fail: true}
	m := NewManager(st)

	users, err := m.Load(context.Background())
	if err != nil {
		t.Fatalf("Load failed because of a self-heal write: %v", err)
	}
	if users[2].Role != model.RoleUser {
		t.Errorf("role = %q, want user even when the write fails", users[2].Role)
	}
	m.WaitHeals()
}

func TestFilterEmptyQueryReturnsAllInOrder(t *testing.T) {
	st := store.NewMemory()
	seedRoster(st)
	m := NewManager(st)
	if _, err := m.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}

	got := m.Filter("")
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	for i, want := range []string{"u1", "u2", "u3"} {
		if got[i].UserID != want {
			t.Errorf("got[%d] = %s, want %s", i, got[i].UserID, want)
		}
	}
}

func TestFilterMatching(t *testing.T) {
	st := store.NewMemory()
	seedRoster(st)
	m := NewManager(st)
	if _, err := m.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}

	tests := []struct {
		query string
		want  []string
	}{
		{"ANA", []string{"u1"}},          // case-insensitive name
		{"@x.com", []string{"u1", "u3"}}, // email substring
		{"334", []string{"u2"}},          // phone substring
		{"nomatch", []string{}},
		{"ruiz", []string{"u3"}},
	}
	for _, tt := range tests {
		got := m.Filter(tt.query)
		if len(got) != len(tt.want) {
			t.Errorf("Filter(%q) len = %d, want %d", tt.query, len(got), len(tt.want))
			continue
		}
		for i := range got {
			if got[i].UserID != tt.want[i] {
				t.Errorf("Filter(%q)[%d] = %s, want %s", tt.query, i, got[i].UserID, tt.want[i])
			}
		}
	}
}

func TestToggleRoleRoundTrip(t *testing.T) {
	st := store.NewMemory()
	seedRoster(st)
	m := NewManager(st)
	ctx := context.Background()
	if _, err := m.Load(ctx); err != nil {
		t.Fatalf("Load: %v", err)
	}

	if role, err := m.ToggleRole(ctx, "u1"); err != nil || role != model.RoleAdmin {
		t.Fatalf("first toggle = (%q, %v), want (admin, nil)", role, err)
	}
	if role, err := m.ToggleRole(ctx, "u1"); err != nil || role != model.RoleUser {
		t.Fatalf("second toggle = (%q, %v), want (user, nil)", role, err)
	}

	doc, err := st.Get(ctx, store.CollectionUsuarios, "u1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if doc["role"] != "user" {
		t.Errorf("remote role after round trip = %v, want user", doc["role"])
	}
}

func TestToggleRoleOptimisticOnFailure(t *testing.T) {
	mem := store.NewMemory()
	seedRoster(mem)
	st := &countingStore{MemoryStore: mem}
	m := NewManager(st)
	ctx := context.Background()
	if _, err := m.Load(ctx); err != nil {
		t.Fatalf("Load: %v", err)
	}
	m.WaitHeals()

	st.mu.Lock()
	st.fail = true
	st.mu.Unlock()

	if _, err := m.ToggleRole(ctx, "u1"); err == nil {
		t.Fatal("ToggleRole succeeded against a failing store")
	}

	// Local set updated anyway; divergence stands until next Load.
	for _, u := range m.Visible() {
		if u.UserID == "u1" && u.Role != model.RoleAdmin {
			t.Errorf("local role = %q, want optimistic admin", u.Role)
		}
	}
}

func TestToggleRoleUnknownUser(t *testing.T) {
	st := store.NewMemory()
	m := NewManager(st)
	if _, err := m.ToggleRole(context.Background(), "ghost"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("err = %v, want ErrUserNotFound", err)
	}
}
