package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"

	"antom-cli/cmd/utils"
	"antom-cli/internal/backend"

	"github.com/spf13/cobra"
)

var askFile string

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a single question, optionally about a PDF",
	Long: `Ask the server one question and print the answer.

With --file the document is uploaded first and the question refers to it.
The question may be empty when a file is given.

Examples:
  antom ask "Summarise the findings"
  antom ask "Who signed it?" --file contract.pdf`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		client := newBackendClient("")
		return runAsk(ctx, client, strings.Join(args, " "), askFile, cmd.OutOrStdout(), cmd.ErrOrStderr())
	},
}

func init() {
	askCmd.Flags().StringVarP(&askFile, "file", "f", "", "PDF to upload and ask about")
	rootCmd.AddCommand(askCmd)
}

// errNothingToAsk is returned when neither a question nor a file was given.
var errNothingToAsk = errors.New("a question or --file is required")

func runAsk(ctx context.Context, client *backend.Client, question, filePath string, out, errOut io.Writer) error {
	if strings.TrimSpace(question) == "" && filePath == "" {
		return errNothingToAsk
	}

	var file *backend.File
	if filePath != "" {
		f, err := backend.OpenFile(filePath)
		if err != nil {
			return fmt.Errorf("cannot attach %s: %w", filePath, err)
		}
		if !f.IsPDF() {
			utils.OutputWarning("%s does not look like a PDF (%s); sending it anyway", f.Name, f.MediaType)
		}
		file = &f
	}

	start := time.Now()
	ans, err := client.UploadAndAsk(ctx, question, file)
	if err != nil {
		return errors.New(describeError(err, client.BaseURL()))
	}

	fmt.Fprintln(out, ans.Text)
	fmt.Fprintf(errOut, "(answered in %s)\n", utils.FormatElapsed(time.Since(start)))
	return nil
}
