package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"basegraph.app/threadrelay/common/logger"
	"basegraph.app/threadrelay/internal/http/dto"
	"basegraph.app/threadrelay/internal/service"
)

// SlashCommand handles /ghcomment <issue-url> typed inside a thread.
func (h *SlackHandler) SlashCommand(c *gin.Context) {
	withTrigger(c, "slash_command")

	var req dto.SlashCommandRequest
	if err := c.ShouldBind(&req); err != nil {
		c.String(http.StatusBadRequest, "Invalid request.")
		return
	}

	threadTS := req.ThreadTimestamp()
	if threadTS == "" {
		c.String(http.StatusBadRequest, "Missing thread.")
		return
	}
	issueURL := req.IssueURL()
	if issueURL == "" {
		c.String(http.StatusBadRequest, "Missing issue URL.")
		return
	}

	ctx := c.Request.Context()
	result, err := h.relay.Relay(ctx, service.RelayParams{
		ChannelID:       req.ChannelID,
		ThreadTimestamp: threadTS,
		IssueURL:        issueURL,
	})
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to post comment", "error", err, "issue_url", logger.Truncate(issueURL, 200))
		c.String(http.StatusInternalServerError, "Failed to post comment: "+err.Error())
		return
	}

	h.logger.InfoContext(ctx, "posted comment from slash command", "comment_url", result.CommentURL)
	c.String(http.StatusOK, "✅ Posted to GitHub: "+result.CommentURL)
}
