package model

import "github.com/golang-jwt/jwt/v5"

// StoredToken mirrors the refreshTokens document, one per user id.
type StoredToken struct {
	UserID       string `json:"userId"`
	RefreshToken string `json:"refreshToken"` // bcrypt(sha256(token))
	CreatedAt    int64  `json:"createdAt"`
	Revoked      bool   `json:"revoked"`
	ExpiresIn    int64  `json:"expiresIn"` // seconds from CreatedAt
}

type AccessClaims struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	Role   string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

type RefreshClaims struct {
	UserID string `json:"userId"`
	jwt.RegisteredClaims
}
