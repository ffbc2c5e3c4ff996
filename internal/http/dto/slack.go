package dto

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/slack-go/slack"

	"basegraph.app/threadrelay/internal/service/chat"
)

// SlashCommandRequest is the url-encoded body Slack sends for /ghcomment.
type SlashCommandRequest struct {
	Command   string `form:"command"`
	Text      string `form:"text"`
	UserID    string `form:"user_id"`
	ChannelID string `form:"channel_id"`
	ThreadTS  string `form:"thread_ts"`
	MessageTS string `form:"message_ts"`
}

// ThreadTimestamp prefers the thread root and falls back to the message.
func (r SlashCommandRequest) ThreadTimestamp() string {
	if r.ThreadTS != "" {
		return r.ThreadTS
	}
	return r.MessageTS
}

func (r SlashCommandRequest) IssueURL() string {
	return strings.TrimSpace(r.Text)
}

type InteractionForm struct {
	Payload string `form:"payload" binding:"required"`
}

type ShortcutRequest struct {
	TriggerID string
}

type MessageActionRequest struct {
	TriggerID string
	ChannelID string
	ThreadTS  string
}

type ViewSubmissionRequest struct {
	CallbackID      string
	PrivateMetadata string
	ThreadURL       string
	IssueURL        string
}

// Interaction is a decoded interactivity payload. Exactly one of the variant
// pointers is set for the three supported types; other types only carry Type.
type Interaction struct {
	Type           slack.InteractionType
	Shortcut       *ShortcutRequest
	MessageAction  *MessageActionRequest
	ViewSubmission *ViewSubmissionRequest
}

func DecodeInteraction(payload string) (Interaction, error) {
	var callback slack.InteractionCallback
	if err := json.Unmarshal([]byte(payload), &callback); err != nil {
		return Interaction{}, fmt.Errorf("decoding interaction payload: %w", err)
	}

	interaction := Interaction{Type: callback.Type}

	switch callback.Type {
	case slack.InteractionTypeShortcut:
		interaction.Shortcut = &ShortcutRequest{TriggerID: callback.TriggerID}

	case slack.InteractionTypeMessageAction:
		threadTS := callback.Message.ThreadTimestamp
		if threadTS == "" {
			threadTS = callback.Message.Timestamp
		}
		interaction.MessageAction = &MessageActionRequest{
			TriggerID: callback.TriggerID,
			ChannelID: callback.Channel.ID,
			ThreadTS:  threadTS,
		}

	case slack.InteractionTypeViewSubmission:
		interaction.ViewSubmission = &ViewSubmissionRequest{
			CallbackID:      callback.View.CallbackID,
			PrivateMetadata: callback.View.PrivateMetadata,
			ThreadURL:       stateValue(callback.View.State, chat.BlockThread, chat.ActionThreadURL),
			IssueURL:        stateValue(callback.View.State, chat.BlockIssue, chat.ActionIssueURL),
		}
	}

	return interaction, nil
}

func stateValue(state *slack.ViewState, blockID, actionID string) string {
	if state == nil {
		return ""
	}
	block, ok := state.Values[blockID]
	if !ok {
		return ""
	}
	return strings.TrimSpace(block[actionID].Value)
}
