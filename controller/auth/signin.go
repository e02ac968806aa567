package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"petbudget/dto"
	"petbudget/middleware"
	"petbudget/model"
	"petbudget/services"
	"petbudget/store"
)

func SignInController(router *gin.Engine, st store.Store) {
	router.POST("/auth/signin", func(c *gin.Context) {
		Signin(c, st)
	})
	router.POST("/auth/signout", middleware.AccessTokenMiddleware(), func(c *gin.Context) {
		Signout(c, st)
	})
	router.GET("/auth/session", middleware.AccessTokenMiddleware(), func(c *gin.Context) {
		Session(c)
	})
	router.POST("/auth/refresh", middleware.RefreshTokenMiddleware(), func(c *gin.Context) {
		Refresh(c, st)
	})
}

// Signin checks credentials against the usuarios collection and issues the
// access/refresh token pair. Failure reasons map onto the client-facing
// taxonomy: invalid email format, invalid credentials, too many requests,
// unknown.
func Signin(c *gin.Context, st store.Store) {
	var request dto.SigninRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid email or request format"})
		return
	}

	ctx := context.Background()

	throttled, err := services.SigninThrottled(ctx, st, request.Email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check signin attempts"})
		return
	}
	if throttled {
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "Too many failed attempts, try again later"})
		return
	}

	user, err := services.FindUserByEmail(ctx, st, request.Email)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			recordFailure(ctx, st, request.Email)
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to look up user"})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(request.Password)); err != nil {
		recordFailure(ctx, st, request.Email)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
		return
	}

	role := user.Role
	if role == "" {
		role = model.RoleUser
	}

	accessToken, err := services.CreateAccessToken(user.UserID, user.Email, role)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create access token"})
		return
	}
	refreshToken, err := services.CreateRefreshToken(user.UserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create refresh token"})
		return
	}
	hashedRefreshToken, err := services.HashRefreshToken(refreshToken)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash refresh token"})
		return
	}

	now := time.Now()
	stored := model.StoredToken{
		UserID:       user.UserID,
		RefreshToken: hashedRefreshToken,
		CreatedAt:    now.Unix(),
		Revoked:      false,
		ExpiresIn:    int64((7 * 24 * time.Hour).Seconds()),
	}
	err = st.Put(ctx, store.CollectionTokens, user.UserID, store.Document{
		"userId":       stored.UserID,
		"refreshToken": stored.RefreshToken,
		"createdAt":    stored.CreatedAt,
		"revoked":      stored.Revoked,
		"expiresIn":    stored.ExpiresIn,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store refresh token"})
		return
	}

	if err := services.ClearSigninAttempts(ctx, st, request.Email); err != nil {
		slog.Warn("failed to clear signin attempts", "email", request.Email, "error", err)
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Login Successfully",
		"user": dto.SessionResponse{
			UserID: user.UserID,
			Email:  user.Email,
			Role:   role,
		},
		"token": gin.H{
			"accessToken":  accessToken,
			"refreshToken": refreshToken,
		},
	})
}

func recordFailure(ctx context.Context, st store.Store, email string) {
	if err := services.RecordFailedSignin(ctx, st, email); err != nil {
		slog.Warn("failed to record signin attempt", "email", email, "error", err)
	}
}

// Signout revokes the stored refresh token; the access token simply ages
// out.
func Signout(c *gin.Context, st store.Store) {
	userID := c.MustGet("userId").(string)

	err := st.UpdatePartial(context.Background(), store.CollectionTokens, userID, store.Document{"revoked": true})
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to revoke refresh token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Signed out"})
}

// Session is the currentUser lookup: the identity carried by the access
// token.
func Session(c *gin.Context) {
	role, _ := c.Get("role")
	email, _ := c.Get("email")
	roleStr, _ := role.(string)
	emailStr, _ := email.(string)

	c.JSON(http.StatusOK, dto.SessionResponse{
		UserID: c.MustGet("userId").(string),
		Email:  emailStr,
		Role:   roleStr,
	})
}

// Refresh exchanges a valid, unrevoked refresh token for a fresh access
// token.
func Refresh(c *gin.Context, st store.Store) {
	userID := c.MustGet("userId").(string)
	refreshToken := c.MustGet("refreshToken").(string)
	ctx := context.Background()

	doc, err := st.Get(ctx, store.CollectionTokens, userID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "No refresh token on record"})
		return
	}
	if revoked, _ := doc["revoked"].(bool); revoked {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Refresh token is revoked"})
		return
	}
	hash := model.DocString(doc, "refreshToken")
	if err := services.CompareRefreshToken(hash, refreshToken); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Refresh token mismatch"})
		return
	}

	userDoc, err := st.Get(ctx, store.CollectionUsuarios, userID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User no longer exists"})
		return
	}
	user := model.UserFromDocument(userDoc)
	role := user.Role
	if role == "" {
		role = model.RoleUser
	}

	accessToken, err := services.CreateAccessToken(user.UserID, user.Email, role)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create access token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"accessToken": accessToken})
}
