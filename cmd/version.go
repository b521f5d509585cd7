package cmd

import (
	"fmt"
	"runtime"
	"strings"

	"antom-cli/cmd/utils"

	semver "github.com/Masterminds/semver/v3"
	"github.com/spf13/cobra"
)

// Version will be set by build flags during release builds
var Version = "dev"

// Commit will be set by build flags during release builds
var Commit = ""

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of Antom",
	Long:  "Print the version number of Antom",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		line := fmt.Sprintf("Antom %s (%s/%s, %s)", formatVersionForDisplay(Version), runtime.GOOS, runtime.GOARCH, runtime.Version())
		if Commit != "" {
			line += " commit " + shortCommit(Commit)
		}
		utils.OutputInfoPlain("%s", line)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

// normalizeVersion parses raw as a semantic version, tolerating a leading
// "v". It returns nil for development builds and tag names.
func normalizeVersion(raw string) *semver.Version {
	trimmed := strings.TrimPrefix(strings.TrimPrefix(strings.TrimSpace(raw), "v"), "V")
	if trimmed == "" {
		return nil
	}
	v, err := semver.NewVersion(trimmed)
	if err != nil {
		return nil
	}
	return v
}

// formatVersionForDisplay normalizes a version string for consistent display.
// Examples: "1.2" -> "v1.2.0", "V1.0.0" -> "v1.0.0", "dev" -> "dev", "" -> "unknown"
func formatVersionForDisplay(version string) string {
	if strings.TrimSpace(version) == "" {
		return "unknown"
	}
	if v := normalizeVersion(version); v != nil {
		return "v" + v.String()
	}
	return version
}

// userAgent identifies this build to the server.
func userAgent() string {
	if v := normalizeVersion(Version); v != nil {
		return "antom-cli/" + v.String()
	}
	return "antom-cli/" + Version
}

func shortCommit(c string) string {
	if len(c) > 7 {
		return c[:7]
	}
	return c
}
