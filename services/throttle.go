package services

import (
	"context"
	"errors"
	"time"

	"petbudget/model"
	"petbudget/store"
)

// Signin throttling backs the too-many-requests branch of the auth error
// taxonomy: a rolling per-email counter of failed attempts, kept in its own
// collection keyed by the email itself.
const (
	maxFailedSignins = 5
	throttleWindow   = 10 * time.Minute
)

// SigninThrottled reports whether an email has burned through its failed
// attempts inside the current window.
func SigninThrottled(ctx context.Context, st store.Store, email string) (bool, error) {
	doc, err := st.Get(ctx, store.CollectionAttempts, email)
	if errors.Is(err, store.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	windowStart := model.DocTime(doc, "windowStart")
	if time.Since(windowStart) > throttleWindow {
		return false, nil
	}
	return attemptCount(doc) >= maxFailedSignins, nil
}

// RecordFailedSignin bumps the counter, starting a fresh window when the
// previous one has lapsed.
func RecordFailedSignin(ctx context.Context, st store.Store, email string) error {
	now := time.Now().UTC()
	count := int64(1)

	doc, err := st.Get(ctx, store.CollectionAttempts, email)
	if err == nil {
		windowStart := model.DocTime(doc, "windowStart")
		if time.Since(windowStart) <= throttleWindow {
			count = attemptCount(doc) + 1
			now = windowStart
		}
	} else if !errors.Is(err, store.ErrNotFound) {
		return err
	}

	return st.Put(ctx, store.CollectionAttempts, email, store.Document{
		"email":       email,
		"count":       count,
		"windowStart": now,
	})
}

// attemptCount tolerates the numeric type the store hands back.
func attemptCount(doc store.Document) int64 {
	switch v := doc["count"].(type) {
	case int64:
		return v
	case float64:
		return int64(v)
	case int:
		return int64(v)
	default:
		return 0
	}
}

// ClearSigninAttempts resets the counter after a successful signin.
func ClearSigninAttempts(ctx context.Context, st store.Store, email string) error {
	return st.Put(ctx, store.CollectionAttempts, email, store.Document{
		"email":       email,
		"count":       int64(0),
		"windowStart": time.Now().UTC(),
	})
}
