package version

import (
	"regexp"
	"strings"
)

var (
	breakingPrefix = regexp.MustCompile(`^[^:]+!:`)
	featPattern    = regexp.MustCompile(`^feat(\(.+\))?!?:`)
	featPrefix     = regexp.MustCompile(`^feat(\(.+\))?!?: `)
	fixPattern     = regexp.MustCompile(`^fix(\(.+\))?:`)
	fixPrefix      = regexp.MustCompile(`^fix(\(.+\))?: `)
)

// subject strips the abbreviated sha from a `git log --oneline` line.
func subject(line string) string {
	_, msg, ok := strings.Cut(line, " ")
	if !ok {
		return ""
	}
	return msg
}

func isBreaking(msg string) bool {
	return strings.Contains(msg, "BREAKING CHANGE") || breakingPrefix.MatchString(msg)
}

func isFeature(msg string) bool {
	return strings.HasPrefix(msg, "feat")
}

// ClassifyCommits picks the release type implied by oneline commits: any
// breaking change is major, any feature is minor, anything else is a patch.
func ClassifyCommits(commits []string) ReleaseType {
	var feature bool
	for _, line := range commits {
		msg := subject(line)
		if isBreaking(msg) {
			return ReleaseMajor
		}
		if isFeature(msg) {
			feature = true
		}
	}
	if feature {
		return ReleaseMinor
	}
	return ReleasePatch
}
