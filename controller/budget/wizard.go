package budget

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"petbudget/dto"
	"petbudget/metrics"
	"petbudget/middleware"
	"petbudget/wizard"
)

// WizardController mounts the multi-step budget form. The client carries the
// session id between requests; exactly one step is rendered at a time from
// the state this returns.
func WizardController(router *gin.Engine, sessions *wizard.Sessions) {
	routes := router.Group("/presupuesto/wizard", middleware.AccessTokenMiddleware())
	{
		routes.POST("", func(c *gin.Context) {
			StartWizard(c, sessions)
		})
		routes.GET("/:sessionId", func(c *gin.Context) {
			WizardState(c, sessions)
		})
		routes.PUT("/:sessionId/field", func(c *gin.Context) {
			UpdateWizardField(c, sessions)
		})
		routes.POST("/:sessionId/plan", func(c *gin.Context) {
			SelectWizardPlan(c, sessions)
		})
		routes.POST("/:sessionId/next", func(c *gin.Context) {
			AdvanceWizard(c, sessions)
		})
		routes.POST("/:sessionId/back", func(c *gin.Context) {
			RetreatWizard(c, sessions)
		})
		routes.POST("/:sessionId/submit", func(c *gin.Context) {
			SubmitWizard(c, sessions)
		})
	}
}

func StartWizard(c *gin.Context, sessions *wizard.Sessions) {
	id, engine := sessions.Start()
	c.JSON(http.StatusCreated, stateResponse(id, engine))
}

func WizardState(c *gin.Context, sessions *wizard.Sessions) {
	id, engine, ok := engineFor(c, sessions)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, stateResponse(id, engine))
}

func UpdateWizardField(c *gin.Context, sessions *wizard.Sessions) {
	id, engine, ok := engineFor(c, sessions)
	if !ok {
		return
	}

	var request dto.UpdateFieldRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}
	if err := engine.UpdateField(request.Record, request.Field, request.Value); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, stateResponse(id, engine))
}

func SelectWizardPlan(c *gin.Context, sessions *wizard.Sessions) {
	id, engine, ok := engineFor(c, sessions)
	if !ok {
		return
	}

	var request dto.SelectPlanRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}
	engine.SelectPlan(request.Plan, request.Precio)
	c.JSON(http.StatusOK, stateResponse(id, engine))
}

func AdvanceWizard(c *gin.Context, sessions *wizard.Sessions) {
	id, engine, ok := engineFor(c, sessions)
	if !ok {
		return
	}
	engine.Advance()
	c.JSON(http.StatusOK, stateResponse(id, engine))
}

func RetreatWizard(c *gin.Context, sessions *wizard.Sessions) {
	id, engine, ok := engineFor(c, sessions)
	if !ok {
		return
	}
	engine.Retreat()
	c.JSON(http.StatusOK, stateResponse(id, engine))
}

// SubmitWizard performs the single atomic submission. On failure the
// session survives untouched so the user can resubmit.
func SubmitWizard(c *gin.Context, sessions *wizard.Sessions) {
	id, engine, ok := engineFor(c, sessions)
	if !ok {
		return
	}

	presupuestoID, err := engine.Submit(c.Request.Context())
	if err != nil {
		if errors.Is(err, wizard.ErrNotTerminal) || errors.Is(err, wizard.ErrSubmitted) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create presupuesto"})
		return
	}

	sessions.End(id)
	metrics.CountPresupuestoCreated()
	c.JSON(http.StatusCreated, gin.H{
		"message":        "Presupuesto created successfully",
		"presupuesto_id": presupuestoID,
		"redirect":       "/confirmacion",
	})
}

func engineFor(c *gin.Context, sessions *wizard.Sessions) (string, *wizard.Engine, bool) {
	id := c.Param("sessionId")
	engine, ok := sessions.Get(id)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Wizard session not found or expired"})
		return "", nil, false
	}
	return id, engine, true
}

func stateResponse(id string, engine *wizard.Engine) dto.WizardStateResponse {
	pet, _ := engine.Record(wizard.RecordPet)
	owner, _ := engine.Record(wizard.RecordOwner)
	plan, precio := engine.Plan()
	return dto.WizardStateResponse{
		SessionID: id,
		Step:      engine.Step(),
		Total:     wizard.TotalSteps,
		Progress:  engine.Progress(),
		Terminal:  engine.Terminal(),
		PetData:   pet,
		UserData:  owner,
		Plan:      plan,
		Precio:    precio,
	}
}
