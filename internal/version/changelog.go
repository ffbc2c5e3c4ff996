package version

import (
	"context"
	"strings"
	"time"
)

type Changelog struct {
	Breaking []string
	Features []string
	Fixes    []string
	Other    []string
}

// CategorizeCommits sorts oneline commits (newest first, as git log prints
// them) into changelog sections, oldest first.
func CategorizeCommits(commits []string) Changelog {
	var cl Changelog
	for i := len(commits) - 1; i >= 0; i-- {
		msg := subject(commits[i])
		if msg == "" {
			continue
		}

		switch {
		case featPattern.MatchString(msg):
			if strings.Contains(msg, "!") || strings.Contains(msg, "BREAKING CHANGE") {
				cl.Breaking = append(cl.Breaking, "- "+featPrefix.ReplaceAllString(msg, ""))
			} else {
				cl.Features = append(cl.Features, "- "+featPrefix.ReplaceAllString(msg, ""))
			}
		case fixPattern.MatchString(msg):
			cl.Fixes = append(cl.Fixes, "- "+fixPrefix.ReplaceAllString(msg, ""))
		case strings.Contains(msg, "BREAKING CHANGE"):
			cl.Breaking = append(cl.Breaking, "- "+msg)
		default:
			cl.Other = append(cl.Other, "- "+msg)
		}
	}
	return cl
}

// Render formats the changelog entry for version, dated on date.
func (cl Changelog) Render(version string, date time.Time) string {
	lines := []string{"## [" + version + "] - " + date.Format("2006-01-02"), ""}

	section := func(header string, items []string) {
		if len(items) == 0 {
			return
		}
		lines = append(lines, header, "")
		lines = append(lines, items...)
		lines = append(lines, "")
	}

	section("### ⚠️ BREAKING CHANGES", cl.Breaking)
	section("### ✨ Features", cl.Features)
	section("### 🐛 Bug Fixes", cl.Fixes)
	section("### 🔧 Other Changes", cl.Other)

	return strings.Join(lines, "\n")
}

// Changelog builds the entry for version from the commits since the latest
// tag, or from the whole history when there is no tag.
func (h *Helper) Changelog(ctx context.Context, version string, date time.Time) (string, error) {
	ref, err := h.CurrentVersion(ctx)
	if err != nil {
		return "", err
	}

	commits, err := h.git.CommitsSince(ctx, ref)
	if err != nil {
		return "", err
	}
	return CategorizeCommits(commits).Render(version, date), nil
}
