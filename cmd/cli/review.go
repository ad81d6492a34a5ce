package main

import (
	"net/http"
	"strconv"

	"github.com/spf13/cobra"
)

var (
	reviewModel string
	reviewForce bool
	recentLimit int
)

var reviewCmd = &cobra.Command{
	Use:   "review [pr-number]",
	Short: "Trigger an AI review of a pull request",
	Long: `Trigger an AI review of a pull request on the monitored repository.

The server fetches the diff, generates a review with the selected AI model
and posts it as a comment on the pull request. A revision that was already
reviewed is skipped unless --force is given.

Examples:
  warden-cli review 123
  warden-cli review 123 --model perplexity --force`,
	Args: cobra.ExactArgs(1),
	RunE: runReview,
}

var recentCmd = &cobra.Command{
	Use:   "recent",
	Short: "Review the most recently updated open pull requests",
	RunE:  runRecent,
}

func init() { //nolint:gochecknoinits // Cobra command registration
	reviewCmd.Flags().StringVarP(&reviewModel, "model", "m", "", "AI model to use (defaults to the server's default)")
	reviewCmd.Flags().BoolVarP(&reviewForce, "force", "f", false, "Review even if this revision was already reviewed")
	rootCmd.AddCommand(reviewCmd)

	recentCmd.Flags().StringVarP(&reviewModel, "model", "m", "", "AI model to use (defaults to the server's default)")
	recentCmd.Flags().IntVarP(&recentLimit, "limit", "n", 5, "Maximum number of pull requests to review")
	rootCmd.AddCommand(recentCmd)
}

type reviewResult struct {
	RepoName      string `json:"repo_name"`
	PRNumber      int    `json:"pr_number"`
	HeadSHA       string `json:"head_sha"`
	Success       bool   `json:"success"`
	Skipped       bool   `json:"skipped"`
	Message       string `json:"message"`
	ReviewContent string `json:"review_content"`
}

func runReview(_ *cobra.Command, args []string) error {
	prNumber, err := strconv.Atoi(args[0])
	if err != nil {
		errorColor.Printf("invalid pull request number: %s\n", args[0])
		return err
	}

	titleColor.Printf("Reviewing PR #%d...\n", prNumber)

	var res reviewResult
	req := map[string]any{"pr_number": prNumber, "model_name": reviewModel, "force_review": reviewForce}
	if err := callAPI(http.MethodPost, "/api/pr/review", req, &res); err != nil {
		return err
	}

	printReviewResult(res)
	return nil
}

func runRecent(_ *cobra.Command, _ []string) error {
	titleColor.Printf("Reviewing up to %d recent pull requests...\n", recentLimit)

	var resp struct {
		Count   int            `json:"count"`
		Results []reviewResult `json:"results"`
	}
	req := map[string]any{"limit": recentLimit, "model_name": reviewModel}
	if err := callAPI(http.MethodPost, "/api/pr/review/recent", req, &resp); err != nil {
		return err
	}

	if resp.Count == 0 {
		dimColor.Println("No open pull requests found.")
		return nil
	}
	for _, res := range resp.Results {
		printReviewResult(res)
	}
	return nil
}

func printReviewResult(res reviewResult) {
	switch {
	case res.Skipped:
		dimColor.Printf("PR #%d skipped: %s\n", res.PRNumber, res.Message)
	case res.Success:
		successColor.Printf("PR #%d: %s\n", res.PRNumber, res.Message)
		if res.ReviewContent != "" {
			infoColor.Printf("\n%s\n", res.ReviewContent)
		}
	default:
		errorColor.Printf("PR #%d failed: %s\n", res.PRNumber, res.Message)
	}
}
