// Package editor is the admin budget-record editor: one document fetched
// into an immutable loaded copy plus a mutable draft, edited field by field
// and persisted back as a single partial update.
package editor

import (
	"context"
	"fmt"
	"strings"

	"petbudget/model"
	"petbudget/store"
)

type Editor struct {
	id     string
	st     store.Store
	loaded store.Document // last-fetched server state, never mutated
	draft  store.Document
}

// Load fetches the presupuesto once. A store.ErrNotFound result means no
// editor must be shown at all; any other failure is transient.
func Load(ctx context.Context, st store.Store, id string) (*Editor, error) {
	doc, err := st.Get(ctx, store.CollectionPresupuestos, id)
	if err != nil {
		return nil, fmt.Errorf("editor: load %s: %w", id, err)
	}
	return &Editor{
		id:     id,
		st:     st,
		loaded: doc,
		draft:  store.Clone(doc),
	}, nil
}

// UpdateField merges one field into the draft. A dotted path such as
// "ownerData.nombre" spreads the existing sub-record with the one changed
// key; the loaded copy is never touched.
func (e *Editor) UpdateField(field string, value any) {
	if parent, child, ok := strings.Cut(field, "."); ok {
		sub := map[string]any{}
		if existing, isMap := e.draft[parent].(map[string]any); isMap {
			for k, v := range existing {
				sub[k] = v
			}
		}
		sub[child] = value
		e.draft[parent] = sub
		return
	}
	e.draft[field] = value
}

// StatusEditable gates the estado field: it only opens while the draft's
// current estado is one of the two terminal values. Clearing the field
// through this editor therefore closes the gate; that matches the source
// behavior and is not remediated here.
func (e *Editor) StatusEditable() bool {
	estado := model.DocString(e.draft, "estado")
	return estado == model.EstadoAceptado || estado == model.EstadoRechazado
}

// Save persists the whole draft as a partial update. Untouched fields are
// resent unchanged; on failure the draft stays intact so the user can retry.
func (e *Editor) Save(ctx context.Context) error {
	if err := e.st.UpdatePartial(ctx, store.CollectionPresupuestos, e.id, e.draft); err != nil {
		return fmt.Errorf("editor: save %s: %w", e.id, err)
	}
	e.loaded = store.Clone(e.draft)
	return nil
}

// Reset discards the draft back to the loaded copy.
func (e *Editor) Reset() {
	e.draft = store.Clone(e.loaded)
}

func (e *Editor) ID() string { return e.id }

func (e *Editor) Loaded() store.Document { return store.Clone(e.loaded) }

func (e *Editor) Draft() store.Document { return store.Clone(e.draft) }
