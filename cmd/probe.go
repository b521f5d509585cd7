package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"

	"antom-cli/cmd/utils"
	"antom-cli/internal/backend"

	"github.com/spf13/cobra"
)

var probeCmd = &cobra.Command{
	Use:   "probe",
	Short: "Check that the server answers on /, /docs and /ask",
	Long: `Send one request to each of the server's root, docs and ask endpoints and
report what came back. The probe is a diagnostic: failing endpoints are
reported, not treated as errors.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		client := newBackendClient("")
		report := client.ProbeConnectivity(ctx)
		fmt.Fprint(cmd.OutOrStdout(), formatProbeReport(report, client.BaseURL()))
		if !report.OK {
			return errors.New("probe interrupted")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(probeCmd)
}

// formatProbeReport renders one line per check plus a hint when nothing
// answered on a local server.
func formatProbeReport(report backend.ProbeReport, server string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Probing %s\n", server)

	reachable := 0
	for _, c := range report.Checks {
		icon := utils.IconForCheck(c.Reachable(), c.OK())
		var result string
		switch {
		case !c.Reachable():
			result = c.Err.Error()
		case c.OK():
			result = fmt.Sprintf("%d %s", c.StatusCode, http.StatusText(c.StatusCode))
		default:
			result = fmt.Sprintf("%d %s", c.StatusCode, utils.PrettyServerError(c.StatusCode, []byte(c.Body)))
		}
		if c.Reachable() {
			reachable++
		}
		fmt.Fprintf(&b, "%s %-5s %-4s %-6s %s\n", icon, c.Name, c.Method, c.Path, result)
	}

	if reachable == 0 && utils.IsLocalhost(server) {
		b.WriteString("Make sure your backend server is running on port 8000\n")
	}
	return b.String()
}
