package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"antom-cli/cmd/utils"
	"antom-cli/internal/backend"

	"github.com/spf13/cobra"
)

var uploadCmd = &cobra.Command{
	Use:   "upload <pdf>...",
	Short: "Upload one or more PDFs",
	Long: `Upload PDFs to the server in a single request.

Every file must be a PDF; if one is not, nothing is uploaded.

Examples:
  antom upload report.pdf
  antom upload ./papers/*.pdf`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		client := newBackendClient("")
		return runUpload(ctx, client, args, cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(uploadCmd)
}

func runUpload(ctx context.Context, client *backend.Client, paths []string, out io.Writer) error {
	files := make([]backend.File, 0, len(paths))
	var total int64
	for _, p := range paths {
		f, err := backend.OpenFile(p)
		if err != nil {
			return fmt.Errorf("cannot read %s: %w", p, err)
		}
		files = append(files, f)
		if info, err := os.Stat(p); err == nil {
			total += info.Size()
		}
	}

	utils.OutputInfo("Uploading %d file(s), %s", len(files), utils.FormatBytes(total))
	msg, err := client.BulkUpload(ctx, files)
	if err != nil {
		return errors.New(describeError(err, client.BaseURL()))
	}
	fmt.Fprintln(out, msg)

	uploaded := client.ListUploadedFiles(ctx)
	utils.OutputInfo("%d PDF(s) on the server", len(uploaded))
	return nil
}
