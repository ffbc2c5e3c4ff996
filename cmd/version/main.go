// Command version answers release questions from git tags and commits.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"basegraph.app/threadrelay/internal/version"
)

var repoDir string

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "version",
	Short:         "Release version helper",
	Long:          `Computes release versions from v* git tags and conventional commit messages.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&repoDir, "repo", ".", "git repository to inspect")
	rootCmd.AddCommand(currentCmd, nextCmd, bumpCmd, analyzeCmd, infoCmd, changelogCmd)
}

func helper() *version.Helper {
	return version.NewHelper(version.ExecGit{Dir: repoDir})
}

var currentCmd = &cobra.Command{
	Use:   "current",
	Short: "Print the current version",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		current, err := helper().CurrentVersion(cmd.Context())
		if err != nil {
			return err
		}
		if current == "" {
			current = "none"
		}
		fmt.Fprintln(cmd.OutOrStdout(), current)
		return nil
	},
}

var nextCmd = &cobra.Command{
	Use:   "next [auto|major|minor|patch]",
	Short: "Print the next version",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runNext,
}

var bumpCmd = &cobra.Command{
	Use:   "bump [auto|major|minor|patch]",
	Short: "Same as next",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runNext,
}

func runNext(cmd *cobra.Command, args []string) error {
	release := version.ReleaseAuto
	if len(args) == 1 {
		var err error
		if release, err = version.ParseReleaseType(args[0]); err != nil {
			return err
		}
	}

	next, err := helper().NextVersion(cmd.Context(), release)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), next)
	return nil
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Suggest a release type from commits since the last tag",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		h := helper()
		current, err := h.CurrentVersion(cmd.Context())
		if err != nil {
			return err
		}
		suggested, err := h.Analyze(cmd.Context(), current)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), suggested)
		return nil
	},
}

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Print all version information",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		info, err := helper().Info(cmd.Context())
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Current version: %s\n", info.Current)
		fmt.Fprintf(out, "Suggested release type: %s\n", info.SuggestedType)
		fmt.Fprintf(out, "Next patch: %s\n", info.NextPatch)
		fmt.Fprintf(out, "Next minor: %s\n", info.NextMinor)
		fmt.Fprintf(out, "Next major: %s\n", info.NextMajor)
		return nil
	},
}

var changelogCmd = &cobra.Command{
	Use:   "changelog <version>",
	Short: "Print the changelog entry for a version",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		entry, err := helper().Changelog(cmd.Context(), args[0], time.Now())
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), entry)
		return nil
	},
}
