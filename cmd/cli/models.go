package main

import (
	"net/http"

	"github.com/spf13/cobra"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List the AI models available on the server",
	RunE: func(_ *cobra.Command, _ []string) error {
		var resp struct {
			AvailableModels []string `json:"available_models"`
			DefaultModel    string   `json:"default_model"`
		}
		if err := callAPI(http.MethodGet, "/api/pr/models", nil, &resp); err != nil {
			return err
		}

		titleColor.Println("Available AI models:")
		for _, m := range resp.AvailableModels {
			if m == resp.DefaultModel {
				successColor.Printf("  %s (default)\n", m)
			} else {
				infoColor.Printf("  %s\n", m)
			}
		}
		return nil
	},
}

func init() { //nolint:gochecknoinits // Cobra command registration
	rootCmd.AddCommand(modelsCmd)
}
