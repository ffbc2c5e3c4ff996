package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"basegraph.app/threadrelay/common/logger"
	"basegraph.app/threadrelay/internal/service"
)

// SlackHandler serves the slash command and interactivity endpoints.
type SlackHandler struct {
	relay  service.RelayService
	logger *slog.Logger
}

func NewSlackHandler(relay service.RelayService) *SlackHandler {
	return &SlackHandler{
		relay:  relay,
		logger: slog.Default().With("component", "threadrelay.http.slack"),
	}
}

func withTrigger(c *gin.Context, trigger string) {
	ctx := logger.WithLogFields(c.Request.Context(), logger.LogFields{Trigger: logger.Ptr(trigger)})
	c.Request = c.Request.WithContext(ctx)
}

// respondRaw relays a Slack API response as-is; an empty body is sent as an
// empty 200-style acknowledgement.
func respondRaw(c *gin.Context, status int, body string) {
	if body == "" {
		c.Status(status)
		return
	}
	c.Data(status, "application/json; charset=utf-8", []byte(body))
}

func respondEmpty(c *gin.Context) {
	c.Status(http.StatusOK)
}
