package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.opentelemetry.io/otel/attribute"

	"basegraph.app/threadrelay/common/id"
	"basegraph.app/threadrelay/common/logger"
	"basegraph.app/threadrelay/internal/domain"
	"basegraph.app/threadrelay/internal/formatter"
	"basegraph.app/threadrelay/internal/links"
	"basegraph.app/threadrelay/internal/model"
	"basegraph.app/threadrelay/internal/service/chat"
	"basegraph.app/threadrelay/internal/service/issue_tracker"
)

const defaultEmptyThreadRetryDelay = time.Second

type RelayParams struct {
	ChannelID       string
	ThreadTimestamp string
	IssueURL        string
}

// RelayService copies a Slack thread into an issue comment and confirms in
// the thread. It also opens the two shortcut forms on behalf of the HTTP layer.
type RelayService interface {
	Relay(ctx context.Context, params RelayParams) (*model.RelayResult, error)
	OpenGlobalForm(ctx context.Context, triggerID string) chat.FormResult
	OpenMessageForm(ctx context.Context, triggerID, channelID, threadTS string) chat.FormResult
	ResolveThreadURL(text string) (model.ThreadReference, error)
}

type RelayOptions struct {
	// EmptyThreadRetryDelay is the pause before the single refetch of an
	// empty thread. Zero means the default of one second.
	EmptyThreadRetryDelay time.Duration
	Logger                *slog.Logger
}

type relayService struct {
	chat       chat.Client
	tracker    issue_tracker.IssueTrackerService
	retryDelay time.Duration
	logger     *slog.Logger
}

func NewRelayService(chatClient chat.Client, tracker issue_tracker.IssueTrackerService, opts RelayOptions) RelayService {
	if opts.EmptyThreadRetryDelay <= 0 {
		opts.EmptyThreadRetryDelay = defaultEmptyThreadRetryDelay
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &relayService{
		chat:       chatClient,
		tracker:    tracker,
		retryDelay: opts.EmptyThreadRetryDelay,
		logger:     opts.Logger,
	}
}

func (s *relayService) Relay(ctx context.Context, params RelayParams) (*model.RelayResult, error) {
	ctx = logger.WithLogFields(ctx, logger.LogFields{
		RelayID:   logger.Ptr(id.New()),
		ChannelID: logger.Ptr(params.ChannelID),
		ThreadTS:  logger.Ptr(params.ThreadTimestamp),
		IssueURL:  logger.Ptr(params.IssueURL),
		Component: "threadrelay.service.relay",
	})

	issue, ok := links.ParseIssueURL(params.IssueURL)
	if !ok {
		s.logger.WarnContext(ctx, "rejected issue url")
		return nil, domain.ErrInvalidIssueURL
	}
	if err := s.tracker.Validate(issue); err != nil {
		s.logger.WarnContext(ctx, "issue cannot be served", "provider", string(issue.Provider), "host", issue.Host, "error", err)
		return nil, err
	}

	ref := model.ThreadReference{
		ChannelID:       params.ChannelID,
		ThreadTimestamp: params.ThreadTimestamp,
	}

	s.logger.InfoContext(ctx, "relaying thread",
		"provider", string(issue.Provider),
		"project", issue.ProjectPath(),
		"issue_number", issue.IssueNumber,
	)

	messages, err := s.fetchThread(ctx, ref)
	if err != nil {
		return nil, err
	}

	body := formatter.FormatThread(messages)

	commentURL, err := s.postComment(ctx, issue, body)
	if err != nil {
		return nil, err
	}

	s.confirm(ctx, ref, issue, commentURL)

	s.logger.InfoContext(ctx, "thread relayed",
		"comment_url", commentURL,
		"message_count", len(messages),
	)
	return &model.RelayResult{CommentURL: commentURL}, nil
}

// fetchThread reads the thread, refetching exactly once after a fixed pause
// when the first read comes back empty.
func (s *relayService) fetchThread(ctx context.Context, ref model.ThreadReference) ([]model.ThreadMessage, error) {
	sc := logger.StartSpan(ctx, "relay.fetch")
	defer sc.End()
	ctx = sc.Context()

	var (
		messages []model.ThreadMessage
		attempts int
	)

	bo := backoff.WithMaxRetries(backoff.NewConstantBackOff(s.retryDelay), 1)
	err := backoff.Retry(func() error {
		attempts++
		messages = s.chat.FetchThread(ctx, ref)
		if len(messages) == 0 {
			if attempts == 1 {
				s.logger.InfoContext(ctx, "thread empty, retrying after delay", "delay", s.retryDelay)
			}
			return domain.ErrEmptyThread
		}
		return nil
	}, backoff.WithContext(bo, ctx))

	sc.SetAttributes(
		attribute.Int("relay.fetch.attempts", attempts),
		attribute.Int("relay.fetch.messages", len(messages)),
	)

	if err != nil {
		sc.RecordError(err)
		if errors.Is(err, domain.ErrEmptyThread) {
			s.logger.WarnContext(ctx, "thread still empty after retry", "attempts", attempts)
			return nil, domain.ErrEmptyThread
		}
		return nil, fmt.Errorf("fetching thread: %w", err)
	}
	return messages, nil
}

func (s *relayService) postComment(ctx context.Context, issue model.IssueReference, body string) (string, error) {
	sc := logger.StartSpan(ctx, "relay.post_comment")
	defer sc.End()
	ctx = sc.Context()

	sc.SetAttributes(
		attribute.String("issue.provider", string(issue.Provider)),
		attribute.String("issue.project", issue.ProjectPath()),
		attribute.String("issue.number", issue.IssueNumber),
	)

	commentURL, err := s.tracker.CreateComment(ctx, issue_tracker.CreateCommentParams{
		Issue: issue,
		Body:  body,
	})
	if err != nil {
		sc.RecordError(err)
		s.logger.ErrorContext(ctx, "failed to create comment", "error", err)
		return "", err
	}
	return commentURL, nil
}

// confirm replies in the thread. A failed reply is logged and otherwise ignored.
func (s *relayService) confirm(ctx context.Context, ref model.ThreadReference, issue model.IssueReference, commentURL string) {
	sc := logger.StartSpan(ctx, "relay.confirm")
	defer sc.End()
	ctx = sc.Context()

	text := fmt.Sprintf("✅ Thread posted to %s: %s", issue.Provider.DisplayName(), commentURL)
	if !s.chat.PostReply(ctx, ref.ChannelID, ref.ThreadTimestamp, text) {
		sc.SetAttributes(attribute.Bool("relay.confirm.failed", true))
		s.logger.WarnContext(ctx, "confirmation reply not posted", "comment_url", commentURL)
	}
}

func (s *relayService) OpenGlobalForm(ctx context.Context, triggerID string) chat.FormResult {
	return s.chat.OpenForm(ctx, triggerID, chat.GlobalShortcutView())
}

func (s *relayService) OpenMessageForm(ctx context.Context, triggerID, channelID, threadTS string) chat.FormResult {
	return s.chat.OpenForm(ctx, triggerID, chat.MessageShortcutView(channelID, threadTS))
}

func (s *relayService) ResolveThreadURL(text string) (model.ThreadReference, error) {
	ref, ok := links.ParseThreadURL(text)
	if !ok {
		return model.ThreadReference{}, domain.ErrInvalidThreadURL
	}
	return ref, nil
}
