package issue_tracker

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/google/go-github/v57/github"
	"golang.org/x/oauth2"

	"basegraph.app/threadrelay/core/config"
	"basegraph.app/threadrelay/internal/domain"
	"basegraph.app/threadrelay/internal/model"
)

const githubHost = "github.com"

type gitHubIssueTrackerService struct {
	client *github.Client
}

func NewGitHubIssueTrackerService(ctx context.Context, cfg config.GitHubConfig) (IssueTrackerService, error) {
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Token})
	client := github.NewClient(oauth2.NewClient(ctx, ts))

	if cfg.APIURL != "" {
		baseURL, err := url.Parse(strings.TrimSuffix(cfg.APIURL, "/") + "/")
		if err != nil {
			return nil, fmt.Errorf("parsing github api url: %w", err)
		}
		client.BaseURL = baseURL
	}

	return &gitHubIssueTrackerService{client: client}, nil
}

// Validate accepts github.com links only; the API host comes from
// configuration, never from the link.
func (s *gitHubIssueTrackerService) Validate(issue model.IssueReference) error {
	if !strings.EqualFold(issue.Host, githubHost) {
		return fmt.Errorf("%w: github host %q", domain.ErrInvalidIssueURL, issue.Host)
	}
	return nil
}

func (s *gitHubIssueTrackerService) CreateComment(ctx context.Context, params CreateCommentParams) (string, error) {
	issue := params.Issue

	if err := s.Validate(issue); err != nil {
		return "", err
	}

	number, err := strconv.Atoi(issue.IssueNumber)
	if err != nil {
		return "", fmt.Errorf("issue number %q: %w", issue.IssueNumber, err)
	}

	path := fmt.Sprintf("repos/%v/%v/issues/%d/comments", issue.Org, issue.Repo, number)
	req, err := s.client.NewRequest(http.MethodPost, path, &github.IssueComment{Body: github.String(params.Body)})
	if err != nil {
		return "", fmt.Errorf("building github comment request: %w", err)
	}

	// An io.Writer target receives the body exactly as GitHub sent it.
	var raw bytes.Buffer
	resp, err := s.client.Do(ctx, req, &raw)
	if err != nil {
		if resp == nil || resp.Response == nil {
			return "", fmt.Errorf("creating github comment: %w", err)
		}
		body := responseBody(resp.Response, err)
		slog.ErrorContext(ctx, "github comment rejected",
			"status", resp.StatusCode,
			"owner", issue.Org,
			"repo", issue.Repo,
			"issue_number", issue.IssueNumber,
			"body", body,
		)
		return "", &domain.RemoteRejectedError{Status: resp.StatusCode, Body: body}
	}

	if resp.StatusCode != http.StatusCreated {
		return "", &domain.RemoteRejectedError{Status: resp.StatusCode, Body: raw.String()}
	}

	var comment github.IssueComment
	if err := json.Unmarshal(raw.Bytes(), &comment); err != nil {
		return "", fmt.Errorf("decoding github comment: %w", err)
	}

	slog.DebugContext(ctx, "posted github comment",
		"issue_number", issue.IssueNumber,
		"comment_url", comment.GetHTMLURL(),
	)
	return comment.GetHTMLURL(), nil
}

// responseBody returns the raw error body. go-github re-populates the body
// after decoding it into an ErrorResponse, so it can be read again here.
func responseBody(resp *http.Response, err error) string {
	if resp.Body != nil {
		if data, readErr := io.ReadAll(resp.Body); readErr == nil && len(data) > 0 {
			return string(data)
		}
	}

	var accepted *github.AcceptedError
	if errors.As(err, &accepted) && len(accepted.Raw) > 0 {
		return string(accepted.Raw)
	}

	var ghErr *github.ErrorResponse
	if errors.As(err, &ghErr) && ghErr.Message != "" {
		return ghErr.Message
	}
	return err.Error()
}
