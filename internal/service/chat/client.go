package chat

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"

	"github.com/slack-go/slack"
	"golang.org/x/sync/errgroup"

	"basegraph.app/threadrelay/internal/formatter"
	"basegraph.app/threadrelay/internal/model"
)

const defaultLookupConcurrency = 8

// Client is the chat side of the relay: reading threads, resolving people,
// and replying in the thread once the comment exists.
type Client interface {
	FetchThread(ctx context.Context, ref model.ThreadReference) []model.ThreadMessage
	ResolveIdentity(ctx context.Context, userID string) string
	JoinChannel(ctx context.Context, channelID string) bool
	PostReply(ctx context.Context, channelID, threadTS, text string) bool
	OpenForm(ctx context.Context, triggerID string, view slack.ModalViewRequest) FormResult
}

// FormResult reports a views.open outcome the way the HTTP layer relays it:
// a status code plus the raw Slack response on failure.
type FormResult struct {
	Accepted    bool
	StatusCode  int
	RawResponse string
}

type Options struct {
	LookupConcurrency int
	Logger            *slog.Logger
}

type slackClient struct {
	api               SlackAPI
	lookupConcurrency int
	logger            *slog.Logger
}

func NewSlackClient(api SlackAPI, opts Options) Client {
	if opts.LookupConcurrency <= 0 {
		opts.LookupConcurrency = defaultLookupConcurrency
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &slackClient{
		api:               api,
		lookupConcurrency: opts.LookupConcurrency,
		logger:            opts.Logger.With("component", "threadrelay.chat.slack"),
	}
}

// FetchThread returns the thread's messages with names resolved. A
// membership error triggers one join and, if the join works, one more fetch.
// Every other failure yields an empty slice.
func (c *slackClient) FetchThread(ctx context.Context, ref model.ThreadReference) []model.ThreadMessage {
	c.logger.DebugContext(ctx, "fetching thread messages",
		"channel_id", ref.ChannelID,
		"thread_ts", ref.ThreadTimestamp,
	)

	raw, code := c.fetchReplies(ctx, ref)
	if code == FetchErrorNotInChannel {
		c.logger.WarnContext(ctx, "bot not in channel, attempting to join", "channel_id", ref.ChannelID)
		if !c.JoinChannel(ctx, ref.ChannelID) {
			c.logger.ErrorContext(ctx, "failed to join channel automatically, bot must be added manually",
				"channel_id", ref.ChannelID,
			)
			return nil
		}
		raw, code = c.fetchReplies(ctx, ref)
	}

	if code != FetchErrorNone {
		c.logger.ErrorContext(ctx, "slack replies fetch failed",
			"channel_id", ref.ChannelID,
			"code", string(code),
			"hint", code.hint(),
		)
		return nil
	}

	c.logger.DebugContext(ctx, "found thread messages", "count", len(raw))
	if len(raw) == 0 {
		return nil
	}

	directory := c.buildDirectory(ctx, raw)

	messages := make([]model.ThreadMessage, 0, len(raw))
	for _, m := range raw {
		msg := model.ThreadMessage{
			AuthorID:   m.User,
			Text:       m.Text,
			MentionMap: directory,
		}
		switch {
		case m.User != "":
			msg.AuthorDisplayName = directory[m.User]
		case m.Username != "":
			msg.AuthorDisplayName = m.Username
		}
		messages = append(messages, msg)
	}
	return messages
}

// fetchReplies walks every page of conversations.replies. Only a failure on
// the first page is classified; later pages keep what was already read.
func (c *slackClient) fetchReplies(ctx context.Context, ref model.ThreadReference) ([]slack.Message, FetchErrorCode) {
	var all []slack.Message
	cursor := ""

	for {
		msgs, hasMore, next, err := c.api.GetConversationRepliesContext(ctx, &slack.GetConversationRepliesParameters{
			ChannelID: ref.ChannelID,
			Timestamp: ref.ThreadTimestamp,
			Cursor:    cursor,
		})
		if err != nil {
			if len(all) > 0 {
				c.logger.WarnContext(ctx, "slack replies pagination failed, using partial thread",
					"error", err,
					"fetched", len(all),
				)
				return all, FetchErrorNone
			}
			return nil, classifyFetchError(err)
		}

		all = append(all, msgs...)
		if !hasMore || next == "" {
			return all, FetchErrorNone
		}
		cursor = next
	}
}

// buildDirectory resolves every author and every mentioned id in the thread.
// The map is scoped to a single fetch and never shared between calls.
func (c *slackClient) buildDirectory(ctx context.Context, msgs []slack.Message) map[string]string {
	seen := make(map[string]struct{})
	var ids []string
	add := func(id string) {
		if id == "" {
			return
		}
		if _, ok := seen[id]; ok {
			return
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}

	for _, m := range msgs {
		add(m.User)
	}
	for _, m := range msgs {
		for _, id := range formatter.MentionIDs(m.Text) {
			add(id)
		}
	}

	directory := make(map[string]string, len(ids))
	var mu sync.Mutex

	var g errgroup.Group
	g.SetLimit(c.lookupConcurrency)
	for _, userID := range ids {
		g.Go(func() error {
			name := c.ResolveIdentity(ctx, userID)
			mu.Lock()
			directory[userID] = name
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	return directory
}

// ResolveIdentity prefers the real name, then display name, then handle.
// Any lookup failure degrades to the raw id.
func (c *slackClient) ResolveIdentity(ctx context.Context, userID string) string {
	user, err := c.api.GetUserInfoContext(ctx, userID)
	if err != nil || user == nil {
		c.logger.DebugContext(ctx, "user lookup failed, using id as fallback", "user_id", userID, "error", err)
		return userID
	}

	name := firstNonEmpty(user.RealName, user.Profile.RealName, user.Profile.DisplayName, user.Name, userID)
	c.logger.DebugContext(ctx, "resolved user", "user_id", userID, "name", name)
	return name
}

func (c *slackClient) JoinChannel(ctx context.Context, channelID string) bool {
	if _, _, _, err := c.api.JoinConversationContext(ctx, channelID); err != nil {
		c.logger.WarnContext(ctx, "failed to join channel", "channel_id", channelID, "error", err)
		return false
	}
	c.logger.InfoContext(ctx, "joined channel", "channel_id", channelID)
	return true
}

// PostReply replies in the thread with link and media previews disabled.
func (c *slackClient) PostReply(ctx context.Context, channelID, threadTS, text string) bool {
	_, _, err := c.api.PostMessageContext(ctx, channelID,
		slack.MsgOptionText(text, false),
		slack.MsgOptionTS(threadTS),
		slack.MsgOptionDisableLinkUnfurl(),
		slack.MsgOptionDisableMediaUnfurl(),
	)
	if err != nil {
		c.logger.WarnContext(ctx, "failed to post slack reply",
			"channel_id", channelID,
			"thread_ts", threadTS,
			"error", err,
		)
		return false
	}
	c.logger.DebugContext(ctx, "posted slack reply", "channel_id", channelID, "thread_ts", threadTS)
	return true
}

func (c *slackClient) OpenForm(ctx context.Context, triggerID string, view slack.ModalViewRequest) FormResult {
	if _, err := c.api.OpenViewContext(ctx, triggerID, view); err != nil {
		c.logger.WarnContext(ctx, "failed to open modal", "callback_id", view.CallbackID, "error", err)
		return FormResult{
			Accepted:    false,
			StatusCode:  http.StatusBadRequest,
			RawResponse: formErrorBody(err),
		}
	}
	return FormResult{Accepted: true, StatusCode: http.StatusOK}
}

type formError struct {
	OK               bool                    `json:"ok"`
	Error            string                  `json:"error"`
	ResponseMetadata *slack.ResponseMetadata `json:"response_metadata,omitempty"`
}

func formErrorBody(err error) string {
	body := formError{OK: false, Error: err.Error()}

	var slackErr slack.SlackErrorResponse
	if errors.As(err, &slackErr) {
		body.Error = slackErr.Err
		if len(slackErr.ResponseMetadata.Messages) > 0 || len(slackErr.ResponseMetadata.Warnings) > 0 {
			body.ResponseMetadata = &slackErr.ResponseMetadata
		}
	}

	encoded, marshalErr := json.Marshal(body)
	if marshalErr != nil {
		return `{"ok":false}`
	}
	return string(encoded)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
