package version

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// Git is the slice of git the release helper reads.
type Git interface {
	// LatestTag returns the nearest v* tag, or "" when there is none.
	LatestTag(ctx context.Context) (string, error)
	// CommitsSince lists non-merge commits in ref..HEAD as oneline entries.
	// An empty ref lists the whole history.
	CommitsSince(ctx context.Context, ref string) ([]string, error)
}

type ExecGit struct {
	Dir string
}

func (g ExecGit) LatestTag(ctx context.Context) (string, error) {
	out, err := g.run(ctx, "describe", "--tags", "--abbrev=0", "--match=v*")
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return "", nil
		}
		return "", err
	}
	return strings.TrimSpace(out), nil
}

func (g ExecGit) CommitsSince(ctx context.Context, ref string) ([]string, error) {
	args := []string{"log", "--oneline", "--no-merges"}
	if ref != "" {
		args = []string{"log", ref + "..HEAD", "--oneline", "--no-merges"}
	}

	out, err := g.run(ctx, args...)
	if err != nil {
		return nil, fmt.Errorf("listing commits since %q: %w", ref, err)
	}

	out = strings.TrimSpace(out)
	if out == "" {
		return nil, nil
	}
	return strings.Split(out, "\n"), nil
}

func (g ExecGit) run(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = g.Dir

	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	if err := cmd.Run(); err != nil {
		return "", err
	}
	return stdout.String(), nil
}
