package issue_tracker

import (
	"context"
	"fmt"

	"basegraph.app/threadrelay/internal/domain"
	"basegraph.app/threadrelay/internal/model"
)

type CreateCommentParams struct {
	Issue model.IssueReference
	Body  string
}

// IssueTrackerService posts comments on issues. Implementations return the
// web URL of the created comment, or a *domain.RemoteRejectedError when the
// tracker answers with anything other than 201 Created.
//
// Validate reports whether the tracker can serve the issue at all. It makes no
// remote call, so callers check it before doing any other work.
type IssueTrackerService interface {
	Validate(issue model.IssueReference) error
	CreateComment(ctx context.Context, params CreateCommentParams) (string, error)
}

// Registry dispatches to the tracker matching the issue's provider.
type Registry struct {
	trackers map[model.IssueProvider]IssueTrackerService
}

func NewRegistry() *Registry {
	return &Registry{trackers: make(map[model.IssueProvider]IssueTrackerService)}
}

func (r *Registry) Register(provider model.IssueProvider, tracker IssueTrackerService) *Registry {
	r.trackers[provider] = tracker
	return r
}

func (r *Registry) Supports(provider model.IssueProvider) bool {
	_, ok := r.trackers[provider]
	return ok
}

func (r *Registry) Validate(issue model.IssueReference) error {
	tracker, err := r.lookup(issue.Provider)
	if err != nil {
		return err
	}
	return tracker.Validate(issue)
}

func (r *Registry) CreateComment(ctx context.Context, params CreateCommentParams) (string, error) {
	tracker, err := r.lookup(params.Issue.Provider)
	if err != nil {
		return "", err
	}
	return tracker.CreateComment(ctx, params)
}

func (r *Registry) lookup(provider model.IssueProvider) (IssueTrackerService, error) {
	tracker, ok := r.trackers[provider]
	if !ok {
		return nil, fmt.Errorf("%s tracker not configured: %w", provider, domain.ErrConfigurationMissing)
	}
	return tracker, nil
}
