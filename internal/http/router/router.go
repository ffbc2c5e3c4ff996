package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"basegraph.app/threadrelay/internal/http/handler"
	"basegraph.app/threadrelay/internal/http/middleware"
	"basegraph.app/threadrelay/internal/service"
)

type RouterConfig struct {
	// MissingCredentials lists unset required environment variables. The
	// relay endpoints answer 500 while it is non-empty.
	MissingCredentials []string
}

func SetupRoutes(router *gin.Engine, services *service.Services, cfg RouterConfig) {
	router.GET("/up", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	slackHandler := handler.NewSlackHandler(services.Relay())
	SlackRouter(router.Group("", middleware.RequireCredentials(cfg.MissingCredentials)), slackHandler)
}
