package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/quercia-ai/docpilot/internal/cli"
	"github.com/quercia-ai/docpilot/internal/cli/client"
)

var version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:   "docpilot",
		Short: "Docpilot CLI - document question answering",
		Long: `Docpilot CLI provides commands to index documents and ask questions.

Environment variables:
  DOCPILOT_TENANT   Tenant identifier (required)
  DOCPILOT_API_URL  API base URL (default: http://localhost:8080)`,
		Version: version,
	}

	rootCmd.PersistentFlags().Bool("output", false, "Output as JSON")
	rootCmd.PersistentFlags().String("tenant", "", "Tenant identifier (overrides env)")
	rootCmd.PersistentFlags().String("api-url", "", "API base URL (overrides env)")
	cli.AddHelpJSONFlag(rootCmd)

	rootCmd.AddCommand(client.AskCmd())
	rootCmd.AddCommand(client.UploadCmd())
	rootCmd.AddCommand(client.FilesCmd())
	rootCmd.AddCommand(client.DeleteCmd())

	cli.CheckHelpJSON(rootCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
