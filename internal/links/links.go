// Package links parses the two URL dialects the relay accepts: Slack thread
// permalinks and issue links from GitHub or GitLab.
package links

import (
	"regexp"
	"strings"

	"basegraph.app/threadrelay/internal/model"
)

var (
	githubIssuePattern = regexp.MustCompile(`github\.com/([^/\s]+)/([^/\s]+)/issues/(\d+)`)
	gitlabIssuePattern = regexp.MustCompile(`https://([\w.-]+(?::\d+)?)/((?:[^/\s]+/)*[^/\s]+)/([^/\s]+)/-/issues/(\d+)`)
	threadPattern      = regexp.MustCompile(`https://[\w-]+\.slack\.com/archives/([^/\s?]+)/p(\d{16})(?:\?thread_ts=(\d+\.\d{6}))?(?:\D|$)`)
)

// compact permalink timestamps carry seconds followed by six microsecond digits
const fracDigits = 6

// ParseIssueURL extracts an issue reference from text. The match is not
// anchored at the end, so trailing fragments such as "#issuecomment-1" are
// ignored. Pull request and merge request links never match.
func ParseIssueURL(text string) (model.IssueReference, bool) {
	if text == "" {
		return model.IssueReference{}, false
	}

	if m := githubIssuePattern.FindStringSubmatch(text); m != nil {
		return model.IssueReference{
			Provider:    model.IssueProviderGitHub,
			Host:        "github.com",
			Org:         m[1],
			Repo:        m[2],
			IssueNumber: m[3],
		}, true
	}

	if m := gitlabIssuePattern.FindStringSubmatch(text); m != nil {
		return model.IssueReference{
			Provider:    model.IssueProviderGitLab,
			Host:        strings.ToLower(m[1]),
			Org:         m[2],
			Repo:        m[3],
			IssueNumber: m[4],
		}, true
	}

	return model.IssueReference{}, false
}

// ParseThreadURL extracts the channel and thread root from a Slack permalink.
// A thread_ts query parameter wins over the compact p-timestamp because reply
// permalinks point at the reply while thread_ts names the root.
func ParseThreadURL(text string) (model.ThreadReference, bool) {
	if text == "" {
		return model.ThreadReference{}, false
	}

	m := threadPattern.FindStringSubmatch(text)
	if m == nil {
		return model.ThreadReference{}, false
	}

	compact := m[2]
	messageTS := compact[:len(compact)-fracDigits] + "." + compact[len(compact)-fracDigits:]

	threadTS := messageTS
	if m[3] != "" {
		threadTS = m[3]
	}

	return model.ThreadReference{
		ChannelID:        m[1],
		ThreadTimestamp:  threadTS,
		MessageTimestamp: messageTS,
	}, true
}
