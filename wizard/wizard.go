// Package wizard is the multi-step budget-request form engine. One engine
// accumulates the pet record and the owner record across discrete steps and
// performs a single atomic submission at the end; nothing is persisted
// before that.
package wizard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"petbudget/model"
	"petbudget/store"
)

// TotalSteps covers the pet fields, the owner fields and the plan picker;
// the last index is the summary/confirm step.
const TotalSteps = 8

const (
	RecordPet   = "petData"
	RecordOwner = "userData"
)

var (
	ErrUnknownRecord = errors.New("wizard: unknown record")
	ErrUnknownField  = errors.New("wizard: unknown field")
	ErrNotTerminal   = errors.New("wizard: submission is only available on the final step")
	ErrSubmitted     = errors.New("wizard: already submitted")
)

var petFields = []string{"tipo", "nombre", "edad", "raza", "enfermedades"}
var ownerFields = []string{"nombre", "email", "telefono"}

// Notifier delivers the budget-confirmation email. Failures are the
// notifier's own business; the engine only logs them.
type Notifier interface {
	SendBudgetEmail(ctx context.Context, owner model.OwnerData, plan string, precio float64) error
}

// Engine holds the in-progress form state. Safe for concurrent use; HTTP
// handlers for the same session may overlap.
type Engine struct {
	mu        sync.Mutex
	step      int
	pet       map[string]string
	owner     map[string]string
	plan      string
	precio    float64
	submitted bool

	st     store.Store
	notify Notifier // optional
}

func New(st store.Store, notify Notifier) *Engine {
	e := &Engine{
		pet:    make(map[string]string, len(petFields)),
		owner:  make(map[string]string, len(ownerFields)),
		st:     st,
		notify: notify,
	}
	for _, f := range petFields {
		e.pet[f] = ""
	}
	for _, f := range ownerFields {
		e.owner[f] = ""
	}
	e.pet["raza"] = model.RazaMezcla
	return e
}

// Advance moves to the next step. There is no validation gate; empty fields
// advance just like filled ones.
func (e *Engine) Advance() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.step++
}

// Retreat moves one step back, never below zero.
func (e *Engine) Retreat() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.step > 0 {
		e.step--
	}
}

func (e *Engine) Step() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.step
}

// Progress is the indicator fill fraction: step over total.
func (e *Engine) Progress() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return float64(e.step) / float64(TotalSteps)
}

// Terminal reports whether the engine sits on the final step, where Submit
// becomes reachable.
func (e *Engine) Terminal() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.step >= TotalSteps-1
}

// UpdateField merges one field into the named record, leaving every other
// field as it was.
func (e *Engine) UpdateField(record, field, value string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	var target map[string]string
	switch record {
	case RecordPet:
		target = e.pet
	case RecordOwner:
		target = e.owner
	default:
		return fmt.Errorf("%w: %q", ErrUnknownRecord, record)
	}
	if _, ok := target[field]; !ok {
		return fmt.Errorf("%w: %s.%s", ErrUnknownField, record, field)
	}
	target[field] = value
	return nil
}

// Record returns a copy of the named record.
func (e *Engine) Record(record string) (map[string]string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	var source map[string]string
	switch record {
	case RecordPet:
		source = e.pet
	case RecordOwner:
		source = e.owner
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownRecord, record)
	}
	out := make(map[string]string, len(source))
	for k, v := range source {
		out[k] = v
	}
	return out, nil
}

// SelectPlan records the chosen plan and its estimated price.
func (e *Engine) SelectPlan(plan string, precio float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.plan = plan
	e.precio = precio
}

func (e *Engine) Plan() (string, float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.plan, e.precio
}

// Submit creates the presupuesto document. On failure the form state is left
// untouched so the user can resubmit; nothing was persisted. On success the
// confirmation email goes out as a detached task whose failure is only
// logged.
func (e *Engine) Submit(ctx context.Context) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.submitted {
		return "", ErrSubmitted
	}
	if e.step < TotalSteps-1 {
		return "", ErrNotTerminal
	}

	p := model.Presupuesto{
		Owner: model.OwnerData{
			Name:  e.owner["nombre"],
			Email: e.owner["email"],
			Phone: e.owner["telefono"],
		},
		Mascota: model.Mascota{
			Tipo:         e.pet["tipo"],
			Nombre:       e.pet["nombre"],
			Edad:         e.pet["edad"],
			Raza:         e.pet["raza"],
			Enfermedades: e.pet["enfermedades"],
		},
		Plan:      e.plan,
		Precio:    e.precio,
		Estado:    model.EstadoPendiente,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
	}

	id, err := e.st.Create(ctx, store.CollectionPresupuestos, p.ToDocument())
	if err != nil {
		return "", fmt.Errorf("wizard: submit: %w", err)
	}
	e.submitted = true

	if e.notify != nil {
		owner, plan, precio := p.Owner, p.Plan, p.Precio
		go func() {
			sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 15*time.Second)
			defer cancel()
			if err := e.notify.SendBudgetEmail(sendCtx, owner, plan, precio); err != nil {
				slog.Error("budget email failed", "presupuesto", id, "error", err)
			}
		}()
	}
	return id, nil
}
