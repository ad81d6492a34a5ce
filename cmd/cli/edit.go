package main

import (
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/spf13/cobra"
)

var (
	editGoal    string
	pushMessage string
	contentFile string
	previewOnly bool
)

var editCmd = &cobra.Command{
	Use:   "edit [path]",
	Short: "Stage an edit to a repository file",
	Long: `Stage an edit to a repository file.

The new content is read from --from (or stdin when omitted). The server
computes a diff against the current file content and holds the edit until a
push or abandon. With --preview the diff is shown without staging anything.

Examples:
  warden-cli edit README.md --from README.new.md
  cat main.go | warden-cli edit main.go --goal "simplify startup"`,
	Args: cobra.ExactArgs(1),
	RunE: runEdit,
}

var pushCmd = &cobra.Command{
	Use:   "push",
	Short: "Push the staged edit to the repository",
	RunE: func(_ *cobra.Command, _ []string) error {
		var resp struct {
			Success bool   `json:"success"`
			Message string `json:"message"`
			SHA     string `json:"sha"`
		}
		req := map[string]string{"commit_message": pushMessage}
		if err := callAPI(http.MethodPost, "/api/agent/push", req, &resp); err != nil {
			return err
		}
		successColor.Printf("%s (commit %s)\n", resp.Message, resp.SHA)
		return nil
	},
}

var abandonCmd = &cobra.Command{
	Use:   "abandon",
	Short: "Discard the staged edit",
	RunE: func(_ *cobra.Command, _ []string) error {
		var resp struct {
			Cleared bool `json:"cleared"`
		}
		if err := callAPI(http.MethodDelete, "/api/agent/edit", nil, &resp); err != nil {
			return err
		}
		if resp.Cleared {
			successColor.Println("Staged edit discarded.")
		} else {
			dimColor.Println("Nothing was staged.")
		}
		return nil
	},
}

func init() { //nolint:gochecknoinits // Cobra command registration
	editCmd.Flags().StringVar(&contentFile, "from", "", "Read the new content from this local file (default stdin)")
	editCmd.Flags().StringVarP(&editGoal, "goal", "g", "", "Short description of what the edit is for")
	editCmd.Flags().BoolVar(&previewOnly, "preview", false, "Show the diff without staging the edit")
	rootCmd.AddCommand(editCmd)

	pushCmd.Flags().StringVarP(&pushMessage, "message", "m", "", "Commit message for the push")
	rootCmd.AddCommand(pushCmd)

	rootCmd.AddCommand(abandonCmd)
}

func runEdit(_ *cobra.Command, args []string) error {
	var content []byte
	var err error
	if contentFile != "" {
		content, err = os.ReadFile(contentFile)
	} else {
		content, err = io.ReadAll(os.Stdin)
	}
	if err != nil {
		return fmt.Errorf("failed to read new content: %w", err)
	}

	req := map[string]string{
		"path":        args[0],
		"new_content": string(content),
		"goal":        editGoal,
	}

	if previewOnly {
		var resp struct {
			Diff string `json:"diff"`
		}
		if err := callAPI(http.MethodPost, "/api/agent/diff", req, &resp); err != nil {
			return err
		}
		printDiff(resp.Diff)
		return nil
	}

	var resp struct {
		Message string `json:"message"`
		Diff    string `json:"diff"`
	}
	if err := callAPI(http.MethodPost, "/api/agent/edit", req, &resp); err != nil {
		return err
	}
	printDiff(resp.Diff)
	successColor.Printf("\n%s\n", resp.Message)
	return nil
}

func printDiff(diff string) {
	if diff == "" {
		dimColor.Println("No changes.")
		return
	}
	fmt.Print(diff)
}
