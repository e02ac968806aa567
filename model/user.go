package model

import (
	"time"

	"petbudget/store"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	UserID    string
	Name      string
	Email     string
	Phone     string
	Password  string // bcrypt hash, never serialized into responses
	Role      string // "user" or "admin"
	CreatedAt time.Time
}

// UserFromDocument decodes a usuarios document, tolerating missing or
// mistyped fields. A missing role is not defaulted here; the roster manager
// owns that so it can also persist the default.
func UserFromDocument(doc store.Document) User {
	return User{
		UserID:    DocString(doc, "id"),
		Name:      DocString(doc, "nombre"),
		Email:     DocString(doc, "email"),
		Phone:     DocString(doc, "telefono"),
		Password:  DocString(doc, "password"),
		Role:      DocString(doc, "role"),
		CreatedAt: DocTime(doc, "createdat"),
	}
}

func (u User) ToDocument() store.Document {
	return store.Document{
		"nombre":    u.Name,
		"email":     u.Email,
		"telefono":  u.Phone,
		"password":  u.Password,
		"role":      u.Role,
		"createdat": u.CreatedAt,
	}
}

// DocString reads a string field from a schemaless document.
func DocString(doc store.Document, key string) string {
	s, _ := doc[key].(string)
	return s
}

// DocSub reads a nested sub-record, returning an empty map when absent.
func DocSub(doc store.Document, key string) map[string]any {
	if sub, ok := doc[key].(map[string]any); ok {
		return sub
	}
	return map[string]any{}
}

// DocTime reads a timestamp stored either natively or as RFC 3339 text.
func DocTime(doc store.Document, key string) time.Time {
	switch v := doc[key].(type) {
	case time.Time:
		return v
	case string:
		t, _ := time.Parse(time.RFC3339, v)
		return t
	default:
		return time.Time{}
	}
}
