package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"syscall"

	"antom-cli/cmd/utils"
	"antom-cli/internal/backend"

	"github.com/spf13/cobra"
)

var watchInitial bool

var watchCmd = &cobra.Command{
	Use:   "watch <dir>",
	Short: "Upload PDFs as they appear in a directory",
	Long: `Watch a directory and upload every PDF that is created or rewritten in it.
Changes arriving close together are uploaded as one batch; the debounce period
comes from watch.debounce in the config file.

Examples:
  antom watch ./inbox
  antom watch ./papers --initial   # also upload the PDFs already there`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := args[0]
		info, err := os.Stat(dir)
		if err != nil {
			return fmt.Errorf("cannot watch %s: %w", dir, err)
		}
		if !info.IsDir() {
			return fmt.Errorf("%s is not a directory", dir)
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		client := newBackendClient("")
		w, err := NewPDFWatcher(settings.WatchDebounce)
		if err != nil {
			return err
		}
		defer w.Close()

		batches, err := w.Watch(ctx, dir)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if watchInitial {
			existing, err := listPDFs(dir)
			if err != nil {
				return err
			}
			uploadWatchedBatch(ctx, client, existing, out)
		}

		utils.OutputInfo("Watching %s for PDFs (Ctrl+C to stop)", dir)
		for batch := range batches {
			uploadWatchedBatch(ctx, client, batch, out)
		}
		return nil
	},
}

func init() {
	watchCmd.Flags().BoolVar(&watchInitial, "initial", false, "Upload the PDFs already in the directory before watching")
	rootCmd.AddCommand(watchCmd)
}

// listPDFs returns the PDF paths directly inside dir, sorted.
func listPDFs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", dir, err)
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() || !isPDFPath(e.Name()) {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	sort.Strings(paths)
	return paths, nil
}

// uploadWatchedBatch uploads the readable PDFs among paths and reports the
// result. Files that vanished or are not really PDFs are skipped with a
// warning so one bad file does not block the rest. It returns how many files
// were sent.
func uploadWatchedBatch(ctx context.Context, client *backend.Client, paths []string, out io.Writer) int {
	files := make([]backend.File, 0, len(paths))
	for _, p := range paths {
		f, err := backend.OpenFile(p)
		if err != nil {
			utils.OutputWarning("skipping %s: %v", p, err)
			continue
		}
		if !f.IsPDF() {
			utils.OutputWarning("skipping %s: not a PDF (%s)", f.Name, f.MediaType)
			continue
		}
		files = append(files, f)
	}
	if len(files) == 0 {
		return 0
	}

	msg, err := client.BulkUpload(ctx, files)
	if err != nil {
		utils.OutputError("%s", describeError(err, client.BaseURL()))
		return 0
	}
	for _, f := range files {
		fmt.Fprintf(out, "  ↑ %s\n", f.Name)
	}
	utils.OutputSuccess("%s", msg)

	uploaded := client.ListUploadedFiles(ctx)
	utils.OutputInfo("%d PDF(s) on the server", len(uploaded))
	return len(files)
}
