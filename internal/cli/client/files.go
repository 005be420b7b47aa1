package client

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

type FileInfo struct {
	FileID     string `json:"file_id"`
	Filename   string `json:"filename"`
	FileType   string `json:"file_type"`
	UploadedAt string `json:"uploaded_at"`
	ChunkCount int    `json:"chunk_count"`
}

func FilesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "files",
		Short: "List the tenant's indexed documents",
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := NewAPIClient(cmd)
			if err != nil {
				return err
			}

			resp, err := api.Get("/documents")
			if err != nil {
				return fmt.Errorf("failed to list documents: %w", err)
			}

			var files []FileInfo
			if err := json.Unmarshal(resp.Data, &files); err != nil {
				return fmt.Errorf("failed to parse response: %w", err)
			}

			outputJSON, _ := cmd.Flags().GetBool("output")
			if outputJSON {
				output, _ := json.MarshalIndent(files, "", "  ")
				fmt.Println(string(output))
				return nil
			}

			if len(files) == 0 {
				fmt.Println("no documents indexed")
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "FILE ID\tNAME\tTYPE\tUPLOADED\tCHUNKS")
			for _, f := range files {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\n",
					f.FileID, f.Filename, f.FileType, f.UploadedAt, f.ChunkCount)
			}
			return w.Flush()
		},
	}
}
