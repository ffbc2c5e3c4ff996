package chat

import (
	"encoding/json"
	"fmt"

	"github.com/slack-go/slack"
)

const (
	CallbackGlobalShortcut  = "gh_comment_modal_global"
	CallbackMessageShortcut = "gh_comment_modal_message"

	BlockThread     = "thread_block"
	ActionThreadURL = "thread_url"
	BlockIssue      = "issue_block"
	ActionIssueURL  = "issue_url"
)

// ThreadMetadata rides in a message-shortcut modal's private_metadata so the
// submission knows which thread it belongs to.
type ThreadMetadata struct {
	ChannelID string `json:"channel_id"`
	ThreadTS  string `json:"thread_ts"`
}

func DecodeThreadMetadata(raw string) (ThreadMetadata, error) {
	var meta ThreadMetadata
	if err := json.Unmarshal([]byte(raw), &meta); err != nil {
		return ThreadMetadata{}, fmt.Errorf("decoding private metadata: %w", err)
	}
	return meta, nil
}

// GlobalShortcutView asks for both the thread link and the issue link.
func GlobalShortcutView() slack.ModalViewRequest {
	return slack.ModalViewRequest{
		Type:            slack.VTModal,
		CallbackID:      CallbackGlobalShortcut,
		Title:           plainText("Post Thread to GitHub"),
		Submit:          plainText("Post"),
		Close:           plainText("Cancel"),
		PrivateMetadata: "{}",
		Blocks: slack.Blocks{
			BlockSet: []slack.Block{
				slack.NewSectionBlock(
					slack.NewTextBlockObject(slack.MarkdownType,
						"To get the thread URL: Right-click on any message in the thread → *Copy link*",
						false, false),
					nil, nil),
				urlInput(BlockThread, ActionThreadURL, "Slack Thread URL", "Paste the thread link here..."),
				issueInput(),
			},
		},
	}
}

// MessageShortcutView is opened from a message, so the thread is already known.
func MessageShortcutView(channelID, threadTS string) slack.ModalViewRequest {
	metadata, _ := json.Marshal(ThreadMetadata{ChannelID: channelID, ThreadTS: threadTS})

	return slack.ModalViewRequest{
		Type:            slack.VTModal,
		CallbackID:      CallbackMessageShortcut,
		Title:           plainText("Post Thread to GitHub"),
		Submit:          plainText("Post"),
		Close:           plainText("Cancel"),
		PrivateMetadata: string(metadata),
		Blocks: slack.Blocks{
			BlockSet: []slack.Block{
				slack.NewSectionBlock(
					slack.NewTextBlockObject(slack.MarkdownType,
						"This will post the entire thread to a GitHub issue.",
						false, false),
					nil, nil),
				issueInput(),
			},
		},
	}
}

func issueInput() *slack.InputBlock {
	return urlInput(BlockIssue, ActionIssueURL, "GitHub Issue URL", "https://github.com/org/repo/issues/123")
}

func urlInput(blockID, actionID, label, placeholder string) *slack.InputBlock {
	return slack.NewInputBlock(
		blockID,
		plainText(label),
		nil,
		slack.NewPlainTextInputBlockElement(plainText(placeholder), actionID),
	)
}

func plainText(text string) *slack.TextBlockObject {
	return slack.NewTextBlockObject(slack.PlainTextType, text, false, false)
}
