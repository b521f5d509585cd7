package utils

import (
	"fmt"
	"io"
	"os"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fatih/color"
)

// MessageType represents the type of output message
type MessageType int

const (
	InfoMessage MessageType = iota
	WarningMessage
	ErrorMessage
	SuccessMessage
	DebugMessage
)

// OutputMessage represents a message to be displayed
type OutputMessage struct {
	Type    MessageType
	Content string
	Writer  io.Writer // fallback writer when not in TUI mode
	NoEmoji bool
}

// TUIMessageMsg is a Bubble Tea message for routing output to the TUI
type TUIMessageMsg struct {
	Message OutputMessage
}

// OutputManager routes CLI output either to the terminal or into a running TUI.
type OutputManager struct {
	mu            sync.RWMutex
	tuiProgram    *tea.Program
	inTUIMode     bool
	messageQueue  []OutputMessage
	disableEmojis bool
	stdout        io.Writer
	stderr        io.Writer
}

var outputManager = &OutputManager{stdout: os.Stdout, stderr: os.Stderr}

// SetTUIMode configures the output manager for TUI mode
func SetTUIMode(program *tea.Program) {
	outputManager.mu.Lock()
	defer outputManager.mu.Unlock()
	outputManager.tuiProgram = program
	outputManager.inTUIMode = true

	queued := outputManager.messageQueue
	outputManager.messageQueue = nil
	if program != nil && len(queued) > 0 {
		go func() {
			for _, msg := range queued {
				program.Send(TUIMessageMsg{Message: msg})
			}
		}()
	}
}

// ClearTUIMode disables TUI mode
func ClearTUIMode() {
	outputManager.mu.Lock()
	defer outputManager.mu.Unlock()
	outputManager.tuiProgram = nil
	outputManager.inTUIMode = false
	outputManager.messageQueue = nil
}

// SetEmojiEnabled controls whether emojis are added to output messages globally
func SetEmojiEnabled(enabled bool) {
	outputManager.mu.Lock()
	defer outputManager.mu.Unlock()
	outputManager.disableEmojis = !enabled
}

// SetOutputWritersForTest redirects direct-mode output.
func SetOutputWritersForTest(stdout, stderr io.Writer) {
	outputManager.mu.Lock()
	defer outputManager.mu.Unlock()
	outputManager.stdout = stdout
	outputManager.stderr = stderr
}

func sendMessage(msgType MessageType, format string, args ...interface{}) {
	sendMessageWithOptions(msgType, false, format, args...)
}

func sendMessageWithOptions(msgType MessageType, noEmoji bool, format string, args ...interface{}) {
	content := fmt.Sprintf(format, args...)

	outputManager.mu.Lock()
	defer outputManager.mu.Unlock()

	msg := OutputMessage{
		Type:    msgType,
		Content: content,
		Writer:  outputManager.writerFor(msgType),
		NoEmoji: noEmoji || outputManager.disableEmojis,
	}

	switch {
	case outputManager.inTUIMode && outputManager.tuiProgram != nil:
		// Send from a goroutine: Program.Send blocks until the event loop reads it,
		// and callers may already be inside Update.
		program := outputManager.tuiProgram
		go program.Send(TUIMessageMsg{Message: msg})
	case outputManager.inTUIMode:
		outputManager.messageQueue = append(outputManager.messageQueue, msg)
	default:
		fmt.Fprint(msg.Writer, FormatMessage(msg))
	}
}

func (o *OutputManager) writerFor(msgType MessageType) io.Writer {
	switch msgType {
	case ErrorMessage, WarningMessage, DebugMessage:
		return o.stderr
	default:
		return o.stdout
	}
}

// OutputInfo sends an informational message
func OutputInfo(format string, args ...interface{}) {
	sendMessage(InfoMessage, format, args...)
}

// OutputInfoPlain sends an informational message without a prefix
func OutputInfoPlain(format string, args ...interface{}) {
	sendMessageWithOptions(InfoMessage, true, format, args...)
}

// OutputWarning sends a warning message
func OutputWarning(format string, args ...interface{}) {
	sendMessage(WarningMessage, format, args...)
}

// OutputError sends an error message
func OutputError(format string, args ...interface{}) {
	sendMessage(ErrorMessage, format, args...)
}

// OutputSuccess sends a success message
func OutputSuccess(format string, args ...interface{}) {
	sendMessage(SuccessMessage, format, args...)
}

// FormatMessage renders a message with its type prefix. color.NoColor is
// honored, so piped output stays plain.
func FormatMessage(msg OutputMessage) string {
	if msg.NoEmoji {
		return msg.Content
	}

	var prefix string
	switch msg.Type {
	case InfoMessage:
		prefix = color.New(color.FgCyan).Sprint("ℹ️ ")
	case WarningMessage:
		prefix = color.New(color.FgYellow).Sprint("⚠️ ")
	case ErrorMessage:
		prefix = color.New(color.FgRed, color.Bold).Sprint("❌")
	case SuccessMessage:
		prefix = color.New(color.FgGreen).Sprint("✅")
	case DebugMessage:
		prefix = color.New(color.Faint).Sprint("🐛")
	}

	return fmt.Sprintf("%s %s", prefix, msg.Content)
}
