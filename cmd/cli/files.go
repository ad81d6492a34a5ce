package main

import (
	"fmt"
	"net/http"
	"net/url"

	"github.com/spf13/cobra"
)

var filesCmd = &cobra.Command{
	Use:   "files",
	Short: "List all files in the monitored repository",
	RunE: func(_ *cobra.Command, _ []string) error {
		var resp struct {
			Files []string `json:"files"`
		}
		if err := callAPI(http.MethodGet, "/api/agent/files", nil, &resp); err != nil {
			return err
		}

		for _, f := range resp.Files {
			fmt.Println(f)
		}
		dimColor.Printf("\n%d files\n", len(resp.Files))
		return nil
	},
}

var catCmd = &cobra.Command{
	Use:   "cat [path]",
	Short: "Print the current content of a repository file",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		var resp struct {
			Path    string `json:"path"`
			Content string `json:"content"`
			SHA     string `json:"sha"`
		}
		path := "/api/agent/file?path=" + url.QueryEscape(args[0])
		if err := callAPI(http.MethodGet, path, nil, &resp); err != nil {
			return err
		}

		fmt.Print(resp.Content)
		return nil
	},
}

func init() { //nolint:gochecknoinits // Cobra command registration
	rootCmd.AddCommand(filesCmd)
	rootCmd.AddCommand(catCmd)
}
