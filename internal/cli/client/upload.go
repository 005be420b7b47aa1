package client

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

type UploadResult struct {
	FileID     string `json:"file_id"`
	Filename   string `json:"filename"`
	FileType   string `json:"file_type"`
	ChunkCount int    `json:"chunk_count"`
}

func UploadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "upload <path>...",
		Short: "Upload and index documents",
		Long: `Upload one or more documents (pdf, docx, txt, xlsx) for indexing.

Examples:
  docpilot upload manual.pdf
  docpilot upload docs/*.pdf notes.txt`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := NewAPIClient(cmd)
			if err != nil {
				return err
			}

			outputJSON, _ := cmd.Flags().GetBool("output")
			var results []UploadResult
			var failed int

			for _, path := range args {
				resp, err := api.PostFile("/documents", path)
				if err != nil {
					fmt.Printf("failed to upload %s: %v\n", path, err)
					failed++
					continue
				}

				var result UploadResult
				if err := json.Unmarshal(resp.Data, &result); err != nil {
					return fmt.Errorf("failed to parse response: %w", err)
				}
				results = append(results, result)

				if !outputJSON {
					fmt.Printf("indexed %s: %d chunks (file id %s)\n",
						result.Filename, result.ChunkCount, result.FileID)
				}
			}

			if outputJSON {
				output, _ := json.MarshalIndent(results, "", "  ")
				fmt.Println(string(output))
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d uploads failed", failed, len(args))
			}
			return nil
		},
	}
}
