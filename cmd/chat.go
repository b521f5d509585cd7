package cmd

import (
	"errors"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var chatSkipLanding bool

// chatCmd represents the `antom chat` command
var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Open the chat interface",
	Long: `Open the full-screen chat interface. Running antom with no command does the same.

Examples:
  # Start on the landing screen
  antom chat

  # Go straight to the conversation
  antom chat --skip-landing`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runChatTUI(chatSkipLanding || settings.SkipLanding)
	},
}

func init() {
	chatCmd.Flags().BoolVar(&chatSkipLanding, "skip-landing", false, "Skip the landing screen and open the conversation")
	rootCmd.AddCommand(chatCmd)
}

var errNotTerminal = errors.New("the chat interface needs an interactive terminal; use 'antom ask' for scripted questions")

func requireTerminal() error {
	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		return errNotTerminal
	}
	return nil
}
