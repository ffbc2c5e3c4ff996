// Package version computes release versions from git tags and conventional
// commit messages.
package version

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
)

type ReleaseType string

const (
	ReleaseAuto  ReleaseType = "auto"
	ReleaseMajor ReleaseType = "major"
	ReleaseMinor ReleaseType = "minor"
	ReleasePatch ReleaseType = "patch"
)

// InitialVersion is returned by Bump when there is no current version.
const InitialVersion = "1.0.0"

var ErrInvalidReleaseType = errors.New("invalid release type")

func ParseReleaseType(s string) (ReleaseType, error) {
	switch t := ReleaseType(strings.ToLower(strings.TrimSpace(s))); t {
	case ReleaseAuto, ReleaseMajor, ReleaseMinor, ReleasePatch:
		return t, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrInvalidReleaseType, s)
	}
}

// Bump returns the next version after current. An empty current (or "none")
// yields InitialVersion regardless of the release type. Pre-release and build
// metadata are dropped.
func Bump(current string, release ReleaseType) (string, error) {
	if current == "" || current == "none" {
		return InitialVersion, nil
	}

	v, err := semver.StrictNewVersion(strings.TrimPrefix(current, "v"))
	if err != nil {
		return "", fmt.Errorf("invalid version format: %s", current)
	}

	var next *semver.Version
	switch ReleaseType(strings.ToLower(string(release))) {
	case ReleaseMajor:
		next = semver.New(v.Major()+1, 0, 0, "", "")
	case ReleaseMinor:
		next = semver.New(v.Major(), v.Minor()+1, 0, "", "")
	case ReleasePatch:
		next = semver.New(v.Major(), v.Minor(), v.Patch()+1, "", "")
	default:
		return "", fmt.Errorf("%w: %s", ErrInvalidReleaseType, release)
	}
	return next.String(), nil
}

type Info struct {
	Current       string
	SuggestedType ReleaseType
	NextPatch     string
	NextMinor     string
	NextMajor     string
}

// Helper answers release questions for one repository.
type Helper struct {
	git Git
}

func NewHelper(git Git) *Helper {
	return &Helper{git: git}
}

// CurrentVersion is the latest v* tag, or "" when the repository has none.
func (h *Helper) CurrentVersion(ctx context.Context) (string, error) {
	return h.git.LatestTag(ctx)
}

// Analyze suggests a release type from the commits since ref. Without a tag
// every release is a minor one; with no new commits it is a patch.
func (h *Helper) Analyze(ctx context.Context, ref string) (ReleaseType, error) {
	if ref == "" {
		return ReleaseMinor, nil
	}

	commits, err := h.git.CommitsSince(ctx, ref)
	if err != nil {
		return "", err
	}
	if len(commits) == 0 {
		return ReleasePatch, nil
	}
	return ClassifyCommits(commits), nil
}

func (h *Helper) NextVersion(ctx context.Context, release ReleaseType) (string, error) {
	current, err := h.CurrentVersion(ctx)
	if err != nil {
		return "", err
	}

	if release == ReleaseAuto {
		release, err = h.Analyze(ctx, current)
		if err != nil {
			return "", err
		}
	}
	return Bump(current, release)
}

func (h *Helper) Info(ctx context.Context) (Info, error) {
	current, err := h.CurrentVersion(ctx)
	if err != nil {
		return Info{}, err
	}

	suggested, err := h.Analyze(ctx, current)
	if err != nil {
		return Info{}, err
	}

	info := Info{Current: current, SuggestedType: suggested}
	if info.Current == "" {
		info.Current = "none"
	}
	for _, next := range []struct {
		dst     *string
		release ReleaseType
	}{
		{&info.NextPatch, ReleasePatch},
		{&info.NextMinor, ReleaseMinor},
		{&info.NextMajor, ReleaseMajor},
	} {
		if *next.dst, err = Bump(current, next.release); err != nil {
			return Info{}, err
		}
	}
	return info, nil
}
