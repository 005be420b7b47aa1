package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/quercia-ai/docpilot/internal/cli"
	"github.com/quercia-ai/docpilot/internal/cli/admin"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "docpilotd",
		Short: "Docpilot daemon",
		Long:  "Docpilot daemon for running the document question-answering API server",
	}

	cli.AddHelpJSONFlag(rootCmd)
	rootCmd.AddCommand(admin.ServeCmd())
	rootCmd.AddCommand(admin.MigrateCmd())

	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}

	cli.CheckHelpJSON(rootCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
