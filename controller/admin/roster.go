package admin

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"petbudget/dto"
	"petbudget/metrics"
	"petbudget/middleware"
	"petbudget/model"
	"petbudget/roster"
)

// RosterController mounts the admin user-roster screens on one long-lived
// manager. Admin-only, enforced server-side.
func RosterController(router *gin.Engine, mgr *roster.Manager) {
	routes := router.Group("/admin/usuarios",
		middleware.AccessTokenMiddleware(), middleware.AdminMiddleware())
	{
		routes.GET("", func(c *gin.Context) {
			ListUsers(c, mgr)
		})
		routes.POST("/:id/role", func(c *gin.Context) {
			ToggleUserRole(c, mgr)
		})
	}
}

// ListUsers reloads the collection and applies the client-side text filter
// from the q parameter; an empty q matches everyone.
func ListUsers(c *gin.Context, mgr *roster.Manager) {
	if _, err := mgr.Load(c.Request.Context()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load users"})
		return
	}

	users := mgr.Filter(c.Query("q"))
	out := make([]dto.UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, toUserResponse(u))
	}
	c.JSON(http.StatusOK, out)
}

// ToggleUserRole flips one user between user and admin. The manager updates
// its local set optimistically; a failed remote write is reported and the
// divergence stands until the next list reload.
func ToggleUserRole(c *gin.Context, mgr *roster.Manager) {
	id := c.Param("id")

	newRole, err := mgr.ToggleRole(c.Request.Context(), id)
	if errors.Is(err, roster.ErrUserNotFound) {
		// The manager may simply not have loaded yet; refresh once and retry.
		if _, loadErr := mgr.Load(c.Request.Context()); loadErr != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load users"})
			return
		}
		newRole, err = mgr.ToggleRole(c.Request.Context(), id)
	}
	if errors.Is(err, roster.ErrUserNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update role", "role": newRole})
		return
	}

	metrics.CountRoleToggle()
	c.JSON(http.StatusOK, dto.ToggleRoleResponse{UserID: id, Role: newRole})
}

func toUserResponse(u model.User) dto.UserResponse {
	created := ""
	if !u.CreatedAt.IsZero() {
		created = u.CreatedAt.Format(time.RFC3339)
	}
	return dto.UserResponse{
		UserID:    u.UserID,
		Name:      u.Name,
		Email:     u.Email,
		Phone:     u.Phone,
		Role:      u.Role,
		CreatedAt: created,
	}
}
