package client

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

type AskRequest struct {
	Question string `json:"question"`
}

type AskResult struct {
	Answer  string   `json:"answer"`
	Sources []string `json:"sources"`
	Origin  string   `json:"origin"`
}

func AskCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ask <question>",
		Short: "Ask a question against the tenant's documents",
		Long: `Ask a question against the tenant's indexed documents.

Examples:
  docpilot ask "How do I reset the device?"
  docpilot ask how do I reset the device`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := NewAPIClient(cmd)
			if err != nil {
				return err
			}

			question := strings.Join(args, " ")
			resp, err := api.Post("/ask", AskRequest{Question: question})
			if err != nil {
				return fmt.Errorf("failed to ask: %w", err)
			}

			var result AskResult
			if err := json.Unmarshal(resp.Data, &result); err != nil {
				return fmt.Errorf("failed to parse response: %w", err)
			}

			outputJSON, _ := cmd.Flags().GetBool("output")
			if outputJSON {
				output, _ := json.MarshalIndent(result, "", "  ")
				fmt.Println(string(output))
				return nil
			}

			fmt.Println(result.Answer)
			if len(result.Sources) > 0 {
				fmt.Println()
				fmt.Println("Sources:")
				for _, s := range result.Sources {
					fmt.Printf("  - %s\n", s)
				}
			}
			fmt.Printf("\n(origin: %s)\n", result.Origin)
			return nil
		},
	}
}
