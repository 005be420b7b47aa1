package client

import (
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/spf13/cobra"
)

type DeleteResult struct {
	RemovedChunks int `json:"removed_chunks"`
}

func DeleteCmd() *cobra.Command {
	var byName bool

	cmd := &cobra.Command{
		Use:   "delete <file-id|filename>",
		Short: "Remove a document from the index",
		Long: `Remove a document and all of its chunks from the tenant's index.

Examples:
  # Delete by file ID (from 'docpilot files')
  docpilot delete 4f6b2c1e-...

  # Delete every indexed version of a filename
  docpilot delete --name manual.pdf`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := NewAPIClient(cmd)
			if err != nil {
				return err
			}

			var resp *APIResponse
			if byName {
				resp, err = api.Delete("/documents?filename=" + url.QueryEscape(args[0]))
			} else {
				resp, err = api.Delete("/documents/" + url.PathEscape(args[0]))
			}
			if err != nil {
				return fmt.Errorf("failed to delete document: %w", err)
			}

			var result DeleteResult
			if err := json.Unmarshal(resp.Data, &result); err != nil {
				return fmt.Errorf("failed to parse response: %w", err)
			}

			outputJSON, _ := cmd.Flags().GetBool("output")
			if outputJSON {
				output, _ := json.MarshalIndent(result, "", "  ")
				fmt.Println(string(output))
				return nil
			}

			fmt.Printf("removed %d chunks\n", result.RemovedChunks)
			return nil
		},
	}

	cmd.Flags().BoolVar(&byName, "name", false, "Treat the argument as a filename instead of a file ID")

	return cmd
}
