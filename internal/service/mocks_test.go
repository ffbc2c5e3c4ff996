package service_test

import (
	"context"
	"sync"

	"github.com/slack-go/slack"

	"basegraph.app/threadrelay/internal/model"
	"basegraph.app/threadrelay/internal/service/chat"
	"basegraph.app/threadrelay/internal/service/issue_tracker"
)

type postedReply struct {
	ChannelID string
	ThreadTS  string
	Text      string
}

type mockChatClient struct {
	fetchThreadFn     func(ctx context.Context, ref model.ThreadReference) []model.ThreadMessage
	resolveIdentityFn func(ctx context.Context, userID string) string
	joinChannelFn     func(ctx context.Context, channelID string) bool
	postReplyFn       func(ctx context.Context, channelID, threadTS, text string) bool
	openFormFn        func(ctx context.Context, triggerID string, view slack.ModalViewRequest) chat.FormResult

	mu          sync.Mutex
	fetchCalls  []model.ThreadReference
	replies     []postedReply
	openedViews []slack.ModalViewRequest
}

func (m *mockChatClient) FetchThread(ctx context.Context, ref model.ThreadReference) []model.ThreadMessage {
	m.mu.Lock()
	m.fetchCalls = append(m.fetchCalls, ref)
	m.mu.Unlock()
	if m.fetchThreadFn != nil {
		return m.fetchThreadFn(ctx, ref)
	}
	return nil
}

func (m *mockChatClient) ResolveIdentity(ctx context.Context, userID string) string {
	if m.resolveIdentityFn != nil {
		return m.resolveIdentityFn(ctx, userID)
	}
	return userID
}

func (m *mockChatClient) JoinChannel(ctx context.Context, channelID string) bool {
	if m.joinChannelFn != nil {
		return m.joinChannelFn(ctx, channelID)
	}
	return true
}

func (m *mockChatClient) PostReply(ctx context.Context, channelID, threadTS, text string) bool {
	m.mu.Lock()
	m.replies = append(m.replies, postedReply{ChannelID: channelID, ThreadTS: threadTS, Text: text})
	m.mu.Unlock()
	if m.postReplyFn != nil {
		return m.postReplyFn(ctx, channelID, threadTS, text)
	}
	return true
}

func (m *mockChatClient) OpenForm(ctx context.Context, triggerID string, view slack.ModalViewRequest) chat.FormResult {
	m.mu.Lock()
	m.openedViews = append(m.openedViews, view)
	m.mu.Unlock()
	if m.openFormFn != nil {
		return m.openFormFn(ctx, triggerID, view)
	}
	return chat.FormResult{Accepted: true, StatusCode: 200}
}

type mockIssueTracker struct {
	validateFn      func(issue model.IssueReference) error
	createCommentFn func(ctx context.Context, params issue_tracker.CreateCommentParams) (string, error)
	calls           []issue_tracker.CreateCommentParams
}

func (m *mockIssueTracker) Validate(issue model.IssueReference) error {
	if m.validateFn != nil {
		return m.validateFn(issue)
	}
	return nil
}

func (m *mockIssueTracker) CreateComment(ctx context.Context, params issue_tracker.CreateCommentParams) (string, error) {
	m.calls = append(m.calls, params)
	if m.createCommentFn != nil {
		return m.createCommentFn(ctx, params)
	}
	return "", nil
}
