package services

import (
	"context"
	"errors"
	"strings"

	"petbudget/model"
	"petbudget/store"
)

var ErrUserNotFound = errors.New("user not found")

// FindUserByEmail scans the usuarios collection for a matching email,
// case-insensitively. The store contract exposes no server-side queries, so
// the scan happens here.
func FindUserByEmail(ctx context.Context, st store.Store, email string) (model.User, error) {
	docs, err := st.GetAll(ctx, store.CollectionUsuarios)
	if err != nil {
		return model.User{}, err
	}
	needle := strings.ToLower(strings.TrimSpace(email))
	for _, doc := range docs {
		u := model.UserFromDocument(doc)
		if strings.ToLower(u.Email) == needle {
			return u, nil
		}
	}
	return model.User{}, ErrUserNotFound
}

func UserExists(ctx context.Context, st store.Store, email string) (bool, error) {
	_, err := FindUserByEmail(ctx, st, email)
	if errors.Is(err, ErrUserNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
