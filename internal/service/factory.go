package service

import (
	"context"
	"fmt"
	"log/slog"

	"basegraph.app/threadrelay/core/config"
	"basegraph.app/threadrelay/internal/model"
	"basegraph.app/threadrelay/internal/service/chat"
	"basegraph.app/threadrelay/internal/service/issue_tracker"
)

type Services struct {
	chat     chat.Client
	trackers *issue_tracker.Registry
	relayCfg config.RelayConfig
}

// NewServices builds the Slack client and the tracker registry from cfg.
// GitLab is registered only when a GitLab token is configured.
func NewServices(ctx context.Context, cfg config.Config) (*Services, error) {
	chatClient := chat.NewSlackClient(
		chat.NewSlackAPI(cfg.Slack.BotToken, cfg.Slack.APIURL),
		chat.Options{LookupConcurrency: cfg.Relay.LookupConcurrency},
	)

	github, err := issue_tracker.NewGitHubIssueTrackerService(ctx, cfg.GitHub)
	if err != nil {
		return nil, fmt.Errorf("creating github tracker: %w", err)
	}

	trackers := issue_tracker.NewRegistry().Register(model.IssueProviderGitHub, github)
	if cfg.GitLab.Enabled() {
		trackers.Register(model.IssueProviderGitLab, issue_tracker.NewGitLabIssueTrackerService(cfg.GitLab))
	}

	return &Services{
		chat:     chatClient,
		trackers: trackers,
		relayCfg: cfg.Relay,
	}, nil
}

func (s *Services) Chat() chat.Client {
	return s.chat
}

func (s *Services) IssueTrackers() issue_tracker.IssueTrackerService {
	return s.trackers
}

func (s *Services) Relay() RelayService {
	return NewRelayService(s.chat, s.trackers, RelayOptions{
		EmptyThreadRetryDelay: s.relayCfg.EmptyThreadRetryDelay,
		Logger:                slog.Default(),
	})
}
