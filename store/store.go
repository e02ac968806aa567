// Package store is the boundary to the document database. Collections are
// schemaless; documents travel as plain maps and are validated where they
// are decoded, never trusted for shape here.
package store

import (
	"context"
	"errors"
)

const (
	CollectionUsuarios     = "usuarios"
	CollectionPresupuestos = "presupuestos"
	CollectionTokens       = "refreshTokens"
	CollectionAttempts     = "signinAttempts"
)

var (
	ErrNotFound         = errors.New("store: document not found")
	ErrPermissionDenied = errors.New("store: permission denied")
)

// Document is one schemaless record. Every document read through the store
// carries its identifier under the "id" key.
type Document = map[string]any

// Store is the narrow contract against the remote document database.
// Create assigns the identifier; Put writes at a caller-chosen identifier,
// replacing any existing document (token and throttle records are keyed by
// user id and email). UpdatePartial merges top-level fields into the
// existing document; a nested map value replaces the stored sub-record
// wholesale.
type Store interface {
	Get(ctx context.Context, collection, id string) (Document, error)
	GetAll(ctx context.Context, collection string) ([]Document, error)
	Create(ctx context.Context, collection string, fields Document) (string, error)
	Put(ctx context.Context, collection, id string, fields Document) error
	UpdatePartial(ctx context.Context, collection, id string, fields Document) error
}

// Clone copies a document one level deep plus one nested level, enough for
// the ownerData/mascota sub-records this service stores.
func Clone(doc Document) Document {
	if doc == nil {
		return nil
	}
	out := make(Document, len(doc))
	for k, v := range doc {
		if sub, ok := v.(map[string]any); ok {
			inner := make(map[string]any, len(sub))
			for sk, sv := range sub {
				inner[sk] = sv
			}
			out[k] = inner
			continue
		}
		out[k] = v
	}
	return out
}
