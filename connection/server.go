package connection

import (
	"log/slog"
	"os"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	admincontroller "petbudget/controller/admin"
	authcontroller "petbudget/controller/auth"
	budgetcontroller "petbudget/controller/budget"
	"petbudget/metrics"
	"petbudget/roster"
	"petbudget/services"
	"petbudget/store"
	"petbudget/wizard"
)

func StartServer() {
	router := gin.Default()

	st, err := buildStore()
	if err != nil {
		slog.Error("failed to initialize document store", "error", err)
		os.Exit(1)
	}

	var notifier wizard.Notifier
	emailSvc, err := services.NewEmailServiceFromEnv()
	if err != nil {
		slog.Warn("email service disabled", "reason", err)
	} else {
		notifier = emailSvc
	}

	router.Use(cors.Default())
	router.Use(metrics.RequestMiddleware())

	router.GET("/", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "Api is running!"})
	})
	router.GET("/metrics", metrics.Handler())

	sessions := wizard.NewSessions(st, notifier, wizard.DefaultTTL)
	rosterMgr := roster.NewManager(st)

	authcontroller.SignInController(router, st)
	authcontroller.SignUpController(router, st)
	budgetcontroller.WizardController(router, sessions)
	budgetcontroller.EditorController(router, st)
	admincontroller.RosterController(router, rosterMgr)

	router.Run()
}

// buildStore picks the document-store backend: Firestore by default, the
// in-memory adapter when STORE_BACKEND=memory (local development without
// credentials).
func buildStore() (store.Store, error) {
	if os.Getenv("STORE_BACKEND") == "memory" {
		slog.Warn("using in-memory store; data will not survive a restart")
		return store.NewMemory(), nil
	}
	client, err := FBConnection()
	if err != nil {
		return nil, err
	}
	slog.Info("Firestore connection successful")
	return store.NewFirestore(client), nil
}
