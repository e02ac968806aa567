package budget

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"petbudget/dto"
	"petbudget/editor"
	"petbudget/middleware"
	"petbudget/model"
	"petbudget/store"
)

// EditorController mounts the admin presupuesto screens: the review list,
// the single-record load and the draft save. Admin-only, enforced
// server-side.
func EditorController(router *gin.Engine, st store.Store) {
	routes := router.Group("/admin/presupuestos",
		middleware.AccessTokenMiddleware(), middleware.AdminMiddleware())
	{
		routes.GET("", func(c *gin.Context) {
			ListPresupuestos(c, st)
		})
		routes.GET("/:id", func(c *gin.Context) {
			GetPresupuesto(c, st)
		})
		routes.PUT("/:id", func(c *gin.Context) {
			SavePresupuesto(c, st)
		})
	}
}

func ListPresupuestos(c *gin.Context, st store.Store) {
	docs, err := st.GetAll(context.Background(), store.CollectionPresupuestos)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load presupuestos"})
		return
	}

	out := make([]model.Presupuesto, 0, len(docs))
	for _, doc := range docs {
		out = append(out, model.PresupuestoFromDocument(doc))
	}
	c.JSON(http.StatusOK, out)
}

// GetPresupuesto loads one record for editing. A missing document renders
// no edit form at all: the client gets a 404 and navigates back.
func GetPresupuesto(c *gin.Context, st store.Store) {
	e, err := editor.Load(context.Background(), st, c.Param("id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Presupuesto not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load presupuesto"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"presupuesto":    e.Loaded(),
		"statusEditable": e.StatusEditable(),
	})
}

// SavePresupuesto applies the client's draft fields on top of the loaded
// record and persists the whole draft as one partial update. On failure the
// client keeps its draft and may retry.
func SavePresupuesto(c *gin.Context, st store.Store) {
	var request dto.EditorSaveRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	ctx := context.Background()
	e, err := editor.Load(ctx, st, c.Param("id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Presupuesto not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load presupuesto"})
		return
	}

	for field, value := range request.Fields {
		e.UpdateField(field, value)
	}

	if err := e.Save(ctx); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save presupuesto"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":     "Presupuesto updated successfully",
		"presupuesto": e.Draft(),
	})
}
