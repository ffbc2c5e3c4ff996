package issue_tracker

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	gitlab "gitlab.com/gitlab-org/api/client-go"

	"basegraph.app/threadrelay/core/config"
	"basegraph.app/threadrelay/internal/domain"
	"basegraph.app/threadrelay/internal/model"
)

const defaultGitLabURL = "https://gitlab.com"

type gitLabIssueTrackerService struct {
	token       string
	instanceURL string
	host        string
	initErr     error
}

// NewGitLabIssueTrackerService posts issue notes on a single GitLab instance,
// gitlab.com unless cfg.BaseURL names another. Links to any other host are
// refused, so the token is only ever sent to the configured instance.
func NewGitLabIssueTrackerService(cfg config.GitLabConfig) IssueTrackerService {
	s := &gitLabIssueTrackerService{token: cfg.Token}

	raw := strings.TrimSuffix(cfg.BaseURL, "/")
	if raw == "" {
		raw = defaultGitLabURL
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		s.initErr = fmt.Errorf("gitlab base url %q: %w", cfg.BaseURL, domain.ErrConfigurationMissing)
		return s
	}

	s.instanceURL = raw
	s.host = strings.ToLower(u.Host)
	return s
}

func (s *gitLabIssueTrackerService) Validate(issue model.IssueReference) error {
	if s.initErr != nil {
		return s.initErr
	}
	if !strings.EqualFold(issue.Host, s.host) {
		return fmt.Errorf("%w: gitlab host %q is not the configured instance %q", domain.ErrInvalidIssueURL, issue.Host, s.host)
	}
	return nil
}

func (s *gitLabIssueTrackerService) CreateComment(ctx context.Context, params CreateCommentParams) (string, error) {
	issue := params.Issue

	if err := s.Validate(issue); err != nil {
		slog.WarnContext(ctx, "refusing gitlab issue", "host", issue.Host, "error", err)
		return "", err
	}

	iid, err := strconv.ParseInt(issue.IssueNumber, 10, 64)
	if err != nil {
		return "", fmt.Errorf("issue number %q: %w", issue.IssueNumber, err)
	}

	client, err := gitlab.NewClient(s.token, gitlab.WithBaseURL(s.instanceURL+"/api/v4"))
	if err != nil {
		return "", fmt.Errorf("creating gitlab client: %w", err)
	}

	path := fmt.Sprintf("projects/%s/issues/%d/notes", gitlab.PathEscape(issue.ProjectPath()), iid)
	req, err := client.NewRequest(http.MethodPost, path,
		&gitlab.CreateIssueNoteOptions{Body: gitlab.Ptr(params.Body)},
		[]gitlab.RequestOptionFunc{gitlab.WithContext(ctx)},
	)
	if err != nil {
		return "", fmt.Errorf("building gitlab note request: %w", err)
	}

	var raw bytes.Buffer
	resp, err := client.Do(req, &raw)
	if err != nil {
		if resp == nil || resp.Response == nil {
			return "", fmt.Errorf("creating gitlab note: %w", err)
		}
		body := err.Error()
		var glErr *gitlab.ErrorResponse
		if errors.As(err, &glErr) && len(glErr.Body) > 0 {
			body = string(glErr.Body)
		}
		slog.ErrorContext(ctx, "gitlab note rejected",
			"status", resp.StatusCode,
			"project", issue.ProjectPath(),
			"issue_iid", issue.IssueNumber,
			"body", body,
		)
		return "", &domain.RemoteRejectedError{Status: resp.StatusCode, Body: body}
	}

	if resp.StatusCode != http.StatusCreated {
		return "", &domain.RemoteRejectedError{Status: resp.StatusCode, Body: raw.String()}
	}

	var note gitlab.Note
	if err := json.Unmarshal(raw.Bytes(), &note); err != nil {
		return "", fmt.Errorf("decoding gitlab note: %w", err)
	}

	commentURL := fmt.Sprintf("%s/%s/-/issues/%s#note_%d", s.instanceURL, issue.ProjectPath(), issue.IssueNumber, note.ID)
	slog.DebugContext(ctx, "posted gitlab note", "issue_iid", issue.IssueNumber, "comment_url", commentURL)
	return commentURL, nil
}
