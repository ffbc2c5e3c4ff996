package chat

import (
	"context"
	"strings"

	"github.com/slack-go/slack"
)

// SlackAPI is the subset of *slack.Client the relay calls. Tests substitute a
// fake or point a real client at an httptest server.
type SlackAPI interface {
	GetConversationRepliesContext(ctx context.Context, params *slack.GetConversationRepliesParameters) ([]slack.Message, bool, string, error)
	GetUserInfoContext(ctx context.Context, user string) (*slack.User, error)
	JoinConversationContext(ctx context.Context, channelID string) (*slack.Channel, string, []string, error)
	PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error)
	OpenViewContext(ctx context.Context, triggerID string, view slack.ModalViewRequest) (*slack.ViewResponse, error)
}

// NewSlackAPI builds a bot-token client. apiURL overrides the Slack endpoint.
func NewSlackAPI(token, apiURL string) *slack.Client {
	opts := []slack.Option{}
	if apiURL != "" {
		opts = append(opts, slack.OptionAPIURL(strings.TrimSuffix(apiURL, "/")+"/"))
	}
	return slack.New(token, opts...)
}
