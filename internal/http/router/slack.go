package router

import (
	"github.com/gin-gonic/gin"

	"basegraph.app/threadrelay/internal/http/handler"
)

func SlackRouter(router *gin.RouterGroup, handler *handler.SlackHandler) {
	router.POST("/ghcomment", handler.SlashCommand)
	router.POST("/shortcut", handler.Shortcut)
}
