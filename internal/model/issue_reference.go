package model

import "fmt"

type IssueProvider string

const (
	IssueProviderGitHub IssueProvider = "github"
	IssueProviderGitLab IssueProvider = "gitlab"
)

// DisplayName is used in user-facing confirmations.
func (p IssueProvider) DisplayName() string {
	switch p {
	case IssueProviderGitLab:
		return "GitLab"
	default:
		return "GitHub"
	}
}

// IssueReference points at one issue on a tracker. IssueNumber stays a
// decimal string; conversion to an integer happens only at the API edge.
type IssueReference struct {
	Provider    IssueProvider
	Host        string
	Org         string // owner on GitHub, namespace path (may contain "/") on GitLab
	Repo        string
	IssueNumber string
}

func (r IssueReference) URL() string {
	switch r.Provider {
	case IssueProviderGitLab:
		return fmt.Sprintf("https://%s/%s/%s/-/issues/%s", r.Host, r.Org, r.Repo, r.IssueNumber)
	default:
		host := r.Host
		if host == "" {
			host = "github.com"
		}
		return fmt.Sprintf("https://%s/%s/%s/issues/%s", host, r.Org, r.Repo, r.IssueNumber)
	}
}

// ProjectPath is the "<org>/<repo>" path used by GitLab as a project identifier.
func (r IssueReference) ProjectPath() string {
	return r.Org + "/" + r.Repo
}
