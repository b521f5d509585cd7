package cmd

import (
	"context"
	"fmt"
	"io"

	"antom-cli/internal/backend"

	"github.com/spf13/cobra"
)

var filesCmd = &cobra.Command{
	Use:   "files",
	Short: "List the PDFs the server has ingested",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client := newBackendClient("")
		runFiles(context.Background(), client, cmd.OutOrStdout())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(filesCmd)
}

// runFiles never fails: an unreachable server looks the same as an empty one.
func runFiles(ctx context.Context, client *backend.Client, out io.Writer) {
	files := client.ListUploadedFiles(ctx)
	if len(files) == 0 {
		fmt.Fprintln(out, "No PDFs uploaded yet.")
		return
	}
	fmt.Fprintf(out, "Uploaded PDFs (%d):\n", len(files))
	for _, name := range files {
		fmt.Fprintf(out, "  • %s\n", name)
	}
}
