package cmd

import (
	"fmt"
	"os"
	"time"

	"antom-cli/cmd/config"
	"antom-cli/cmd/utils"

	"github.com/spf13/cobra"
)

var (
	debug       bool
	serverURL   string
	configPath  string
	timeout     time.Duration
	overrideCwd string
	noEmoji     bool
)

// settings is resolved once per invocation in PersistentPreRunE.
var settings *config.Settings

var rootCmd = &cobra.Command{
	Use:   "antom",
	Short: "Antom - ask questions about your PDFs",
	Long: `Antom is a terminal chat client for a PDF question-answering server.
Upload PDFs, ask questions about them and read the answers without leaving
the terminal.

Getting started:
  # Open the chat interface
  antom

  # Ask a one-off question about a document
  antom ask "What is the termination clause?" --file contract.pdf

  # Upload every PDF in a folder
  antom upload ./papers/*.pdf`,
	Args:          cobra.NoArgs,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return loadSettings(cmd)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runChatTUI(settings.SkipLanding)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		utils.CloseDebugLogger()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		utils.CloseDebugLogger()
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "Enable debug output")
	rootCmd.PersistentFlags().StringVar(&serverURL, "server-url", "", "PDF Q&A server URL (default: "+config.DefaultServerURL+")")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to an antom config file or the directory containing one")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", config.DefaultTimeout, "HTTP timeout for server requests (0 disables)")
	rootCmd.PersistentFlags().StringVar(&overrideCwd, "cwd", "", "Override the current working directory for CLI operations")
	rootCmd.PersistentFlags().BoolVar(&noEmoji, "no-emoji", false, "Print status lines without emoji prefixes")
}

// loadSettings merges config file, environment and the flags the user set
// explicitly, then opens the debug log when asked to.
func loadSettings(cmd *cobra.Command) error {
	utils.OverrideCwd = overrideCwd
	utils.SetEmojiEnabled(!noEmoji)

	var o config.Overrides
	flags := cmd.Flags()
	if flags.Changed("server-url") {
		o.ServerURL = &serverURL
	}
	if flags.Changed("timeout") {
		o.Timeout = &timeout
	}
	if flags.Changed("debug") {
		o.Debug = &debug
	}

	s, err := config.Resolve(utils.GetEffectiveCWD(), configPath, o)
	if err != nil {
		return err
	}
	settings = s

	if s.Debug || s.LogFile != "" {
		if err := utils.InitDebugLogger(s.LogFile, s.Debug); err != nil {
			return fmt.Errorf("failed to open debug log: %w", err)
		}
		utils.LogDebug(fmt.Sprintf("settings: server=%s timeout=%s source=%q", s.ServerURL, s.Timeout, s.Source))
	}
	return nil
}
