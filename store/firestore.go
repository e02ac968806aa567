package store

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// FirestoreStore adapts a Firestore client to the Store contract.
type FirestoreStore struct {
	client *firestore.Client
}

func NewFirestore(client *firestore.Client) *FirestoreStore {
	return &FirestoreStore{client: client}
}

func (s *FirestoreStore) Get(ctx context.Context, collection, id string) (Document, error) {
	snap, err := s.client.Collection(collection).Doc(id).Get(ctx)
	if err != nil {
		return nil, mapError(err)
	}
	if !snap.Exists() {
		return nil, ErrNotFound
	}
	doc := snap.Data()
	doc["id"] = snap.Ref.ID
	return doc, nil
}

func (s *FirestoreStore) GetAll(ctx context.Context, collection string) ([]Document, error) {
	iter := s.client.Collection(collection).Documents(ctx)
	defer iter.Stop()

	var docs []Document
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, mapError(err)
		}
		doc := snap.Data()
		doc["id"] = snap.Ref.ID
		docs = append(docs, doc)
	}
	return docs, nil
}

func (s *FirestoreStore) Create(ctx context.Context, collection string, fields Document) (string, error) {
	id := uuid.New().String()
	doc := Clone(fields)
	doc["id"] = id

	if _, err := s.client.Collection(collection).Doc(id).Set(ctx, doc); err != nil {
		return "", mapError(err)
	}
	return id, nil
}

func (s *FirestoreStore) Put(ctx context.Context, collection, id string, fields Document) error {
	doc := Clone(fields)
	doc["id"] = id
	if _, err := s.client.Collection(collection).Doc(id).Set(ctx, doc); err != nil {
		return mapError(err)
	}
	return nil
}

func (s *FirestoreStore) UpdatePartial(ctx context.Context, collection, id string, fields Document) error {
	// Update (unlike Set with MergeAll) fails with NotFound for a missing
	// document, which is what the contract wants.
	updates := make([]firestore.Update, 0, len(fields))
	for field, value := range fields {
		if field == "id" {
			continue
		}
		updates = append(updates, firestore.Update{Path: field, Value: value})
	}
	if len(updates) == 0 {
		return nil
	}

	if _, err := s.client.Collection(collection).Doc(id).Update(ctx, updates); err != nil {
		return mapError(err)
	}
	return nil
}

func mapError(err error) error {
	switch status.Code(err) {
	case codes.NotFound:
		return ErrNotFound
	case codes.PermissionDenied:
		return ErrPermissionDenied
	default:
		return fmt.Errorf("store: %w", err)
	}
}
