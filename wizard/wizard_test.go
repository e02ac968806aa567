package wizard

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"petbudget/model"
	"petbudget/store"
)

type captureNotifier struct {
	mu    sync.Mutex
	calls []string
	done  chan struct{}
}

func newCaptureNotifier() *captureNotifier {
	return &captureNotifier{done: make(chan struct{}, 1)}
}

func (n *captureNotifier) SendBudgetEmail(ctx context.Context, owner model.OwnerData, plan string, precio float64) error {
	n.mu.Lock()
	n.calls = append(n.calls, owner.Email)
	n.mu.Unlock()
	n.done <- struct{}{}
	return nil
}

type failingStore struct {
	store.Store
}

func (failingStore) Create(ctx context.Context, collection string, fields store.Document) (string, error) {
	return "", errors.New("network down")
}

func TestStepCounterNeverNegative(t *testing.T) {
	e := New(store.NewMemory(), nil)

	e.Retreat()
	e.Retreat()
	if got := e.Step(); got != 0 {
		t.Fatalf("step after retreating from zero = %d, want 0", got)
	}

	e.Advance()
	e.Advance()
	e.Retreat()
	if got := e.Step(); got != 1 {
		t.Fatalf("advance twice then retreat = %d, want 1", got)
	}
}

func TestAdvanceThenRetreatRoundTrips(t *testing.T) {
	e := New(store.NewMemory(), nil)
	for i := 0; i < 5; i++ {
		e.Advance()
	}
	before := e.Step()
	e.Advance()
	e.Retreat()
	if got := e.Step(); got != before {
		t.Fatalf("step = %d, want %d", got, before)
	}
}

func TestUpdateFieldMergesNotReplaces(t *testing.T) {
	e := New(store.NewMemory(), nil)

	if err := e.UpdateField(RecordPet, "nombre", "Max"); err != nil {
		t.Fatalf("UpdateField nombre: %v", err)
	}
	if err := e.UpdateField(RecordPet, "edad", "3"); err != nil {
		t.Fatalf("UpdateField edad: %v", err)
	}

	pet, err := e.Record(RecordPet)
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	if pet["nombre"] != "Max" {
		t.Errorf("nombre = %q, want Max", pet["nombre"])
	}
	if pet["edad"] != "3" {
		t.Errorf("edad = %q, want 3", pet["edad"])
	}
	if pet["raza"] != model.RazaMezcla {
		t.Errorf("raza default = %q, want %q", pet["raza"], model.RazaMezcla)
	}
}

func TestUpdateFieldRejectsUnknown(t *testing.T) {
	e := New(store.NewMemory(), nil)

	if err := e.UpdateField("otherData", "nombre", "x"); !errors.Is(err, ErrUnknownRecord) {
		t.Errorf("unknown record err = %v, want ErrUnknownRecord", err)
	}
	if err := e.UpdateField(RecordPet, "color", "negro"); !errors.Is(err, ErrUnknownField) {
		t.Errorf("unknown field err = %v, want ErrUnknownField", err)
	}
}

func TestSubmitRequiresTerminalStep(t *testing.T) {
	e := New(store.NewMemory(), nil)
	if _, err := e.Submit(context.Background()); !errors.Is(err, ErrNotTerminal) {
		t.Fatalf("submit at step 0 err = %v, want ErrNotTerminal", err)
	}
}

func TestSubmitCreatesOneDocument(t *testing.T) {
	st := store.NewMemory()
	notify := newCaptureNotifier()
	e := New(st, notify)

	for field, value := range map[string]string{
		"tipo": "Perro", "nombre": "Max", "edad": "3",
		"raza": model.RazaMezcla, "enfermedades": "",
	} {
		if err := e.UpdateField(RecordPet, field, value); err != nil {
			t.Fatalf("UpdateField pet %s: %v", field, err)
		}
	}
	for field, value := range map[string]string{
		"nombre": "Ana", "email": "ana@x.com", "telefono": "123",
	} {
		if err := e.UpdateField(RecordOwner, field, value); err != nil {
			t.Fatalf("UpdateField owner %s: %v", field, err)
		}
	}
	e.SelectPlan("completo", 49.90)

	for !e.Terminal() {
		e.Advance()
	}

	id, err := e.Submit(context.Background())
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	docs, err := st.GetAll(context.Background(), store.CollectionPresupuestos)
	if err != nil {
		t.Fatalf("GetAll: %v", err)
	}
	if len(docs) != 1 {
		t.Fatalf("created %d documents, want 1", len(docs))
	}

	p := model.PresupuestoFromDocument(docs[0])
	if p.ID != id {
		t.Errorf("id = %q, want %q", p.ID, id)
	}
	want := model.Presupuesto{
		ID:      id,
		Owner:   model.OwnerData{Name: "Ana", Email: "ana@x.com", Phone: "123"},
		Mascota: model.Mascota{Tipo: "Perro", Nombre: "Max", Edad: "3", Raza: model.RazaMezcla},
		Plan:    "completo",
		Precio:  49.90,
		Estado:  model.EstadoPendiente,
	}
	if p.Owner != want.Owner || p.Mascota != want.Mascota || p.Plan != want.Plan || p.Precio != want.Precio || p.Estado != want.Estado {
		t.Errorf("stored presupuesto = %+v, want %+v", p, want)
	}
	if _, err := time.Parse(time.RFC3339, p.CreatedAt); err != nil {
		t.Errorf("createdat = %q, not RFC 3339: %v", p.CreatedAt, err)
	}

	select {
	case <-notify.done:
	case <-time.After(2 * time.Second):
		t.Fatal("confirmation email was never attempted")
	}

	if _, err := e.Submit(context.Background()); !errors.Is(err, ErrSubmitted) {
		t.Errorf("second submit err = %v, want ErrSubmitted", err)
	}
}

func TestSubmitFailureKeepsState(t *testing.T) {
	e := New(failingStore{}, nil)
	if err := e.UpdateField(RecordOwner, "nombre", "Ana"); err != nil {
		t.Fatalf("UpdateField: %v", err)
	}
	for !e.Terminal() {
		e.Advance()
	}

	if _, err := e.Submit(context.Background()); err == nil {
		t.Fatal("Submit succeeded against a failing store")
	}

	// State intact: the user may retry without refilling anything.
	owner, err := e.Record(RecordOwner)
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	if owner["nombre"] != "Ana" {
		t.Errorf("owner nombre after failed submit = %q, want Ana", owner["nombre"])
	}
	if !e.Terminal() {
		t.Error("step moved on a failed submit")
	}
}

func TestSessionsLifecycle(t *testing.T) {
	sessions := NewSessions(store.NewMemory(), nil, time.Minute)

	id, e := sessions.Start()
	if e == nil || id == "" {
		t.Fatal("Start returned empty session")
	}

	got, ok := sessions.Get(id)
	if !ok || got != e {
		t.Fatal("Get did not return the started engine")
	}

	sessions.End(id)
	if _, ok := sessions.Get(id); ok {
		t.Fatal("session survived End")
	}
}

func TestSessionsExpire(t *testing.T) {
	sessions := NewSessions(store.NewMemory(), nil, time.Minute)
	current := time.Now()
	sessions.now = func() time.Time { return current }

	id, _ := sessions.Start()
	current = current.Add(2 * time.Minute)
	if _, ok := sessions.Get(id); ok {
		t.Fatal("expired session still reachable")
	}
}
