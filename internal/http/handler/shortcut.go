package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/slack-go/slack"

	"basegraph.app/threadrelay/internal/domain"
	"basegraph.app/threadrelay/internal/http/dto"
	"basegraph.app/threadrelay/internal/service"
	"basegraph.app/threadrelay/internal/service/chat"
)

const (
	invalidThreadURLMessage = "Invalid Slack URL format. Please copy the link from a message in the thread."
	invalidIssueURLMessage  = "Invalid GitHub issue URL."
)

// Shortcut handles global shortcuts, message shortcuts and modal submissions.
func (h *SlackHandler) Shortcut(c *gin.Context) {
	var form dto.InteractionForm
	if err := c.ShouldBind(&form); err != nil {
		c.String(http.StatusBadRequest, "Missing payload.")
		return
	}

	interaction, err := dto.DecodeInteraction(form.Payload)
	if err != nil {
		h.logger.WarnContext(c.Request.Context(), "invalid interaction payload", "error", err)
		c.String(http.StatusBadRequest, "Invalid payload.")
		return
	}

	switch interaction.Type {
	case slack.InteractionTypeShortcut:
		h.globalShortcut(c, interaction.Shortcut)
	case slack.InteractionTypeMessageAction:
		h.messageShortcut(c, interaction.MessageAction)
	case slack.InteractionTypeViewSubmission:
		h.viewSubmission(c, interaction.ViewSubmission)
	default:
		c.String(http.StatusBadRequest, "Unsupported payload type: "+string(interaction.Type))
	}
}

func (h *SlackHandler) globalShortcut(c *gin.Context, req *dto.ShortcutRequest) {
	withTrigger(c, "shortcut")
	ctx := c.Request.Context()
	h.logger.DebugContext(ctx, "global shortcut triggered")

	result := h.relay.OpenGlobalForm(ctx, req.TriggerID)
	respondRaw(c, result.StatusCode, result.RawResponse)
}

func (h *SlackHandler) messageShortcut(c *gin.Context, req *dto.MessageActionRequest) {
	withTrigger(c, "message_action")
	ctx := c.Request.Context()
	h.logger.DebugContext(ctx, "message shortcut triggered", "channel_id", req.ChannelID, "thread_ts", req.ThreadTS)

	result := h.relay.OpenMessageForm(ctx, req.TriggerID, req.ChannelID, req.ThreadTS)
	if result.Accepted {
		respondEmpty(c)
		return
	}
	respondRaw(c, result.StatusCode, result.RawResponse)
}

func (h *SlackHandler) viewSubmission(c *gin.Context, req *dto.ViewSubmissionRequest) {
	withTrigger(c, "view_submission")
	ctx := c.Request.Context()

	switch req.CallbackID {
	case chat.CallbackGlobalShortcut:
		h.logger.DebugContext(ctx, "global shortcut submission", "thread_url", req.ThreadURL, "issue_url", req.IssueURL)

		ref, err := h.relay.ResolveThreadURL(req.ThreadURL)
		if err != nil {
			respondFieldError(c, chat.BlockThread, invalidThreadURLMessage)
			return
		}
		h.submit(c, ref.ChannelID, ref.ThreadTimestamp, req.IssueURL)

	case chat.CallbackMessageShortcut:
		meta, err := chat.DecodeThreadMetadata(req.PrivateMetadata)
		if err != nil {
			h.logger.WarnContext(ctx, "invalid private metadata", "error", err)
			respondFieldError(c, chat.BlockIssue, "Failed to post comment: "+err.Error())
			return
		}
		h.logger.DebugContext(ctx, "message shortcut submission", "channel_id", meta.ChannelID, "thread_ts", meta.ThreadTS)
		h.submit(c, meta.ChannelID, meta.ThreadTS, req.IssueURL)

	default:
		c.String(http.StatusBadRequest, "Unknown callback ID: "+req.CallbackID)
	}
}

func (h *SlackHandler) submit(c *gin.Context, channelID, threadTS, issueURL string) {
	ctx := c.Request.Context()

	result, err := h.relay.Relay(ctx, service.RelayParams{
		ChannelID:       channelID,
		ThreadTimestamp: threadTS,
		IssueURL:        issueURL,
	})
	if errors.Is(err, domain.ErrInvalidIssueURL) {
		respondFieldError(c, chat.BlockIssue, invalidIssueURLMessage)
		return
	}
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to post comment via modal", "error", err)
		respondFieldError(c, chat.BlockIssue, "Failed to post comment: "+err.Error())
		return
	}

	h.logger.InfoContext(ctx, "posted comment via modal", "comment_url", result.CommentURL)
	respondEmpty(c)
}

// respondFieldError keeps the modal open with an inline error under one block.
func respondFieldError(c *gin.Context, blockID, message string) {
	c.JSON(http.StatusOK, slack.NewErrorsViewSubmissionResponse(map[string]string{blockID: message}))
}
