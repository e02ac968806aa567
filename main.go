package main

import (
	"petbudget/connection"
	"petbudget/pkg/logging"

	"github.com/gin-gonic/gin"
)

func main() {
	logging.Setup()
	gin.SetMode(gin.ReleaseMode)
	connection.StartServer()
}
