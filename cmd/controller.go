package cmd

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"antom-cli/internal/backend"
	"antom-cli/internal/session"
	uitk "antom-cli/internal/tui"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
)

// StateUpdateMsg is emitted by the controller to notify the UI of state changes.
type StateUpdateMsg struct {
	Notice string
}

type sendResultMsg struct {
	answer  *backend.Answer
	err     error
	elapsed time.Duration
}

type uploadResultMsg struct {
	message string
	count   int
	err     error
}

type filesLoadedMsg struct{ files []string }

type probeResultMsg struct{ report backend.ProbeReport }

// Controller owns the chat session and turns user intents into Tea commands.
// It must only be used from the Bubble Tea update goroutine; the commands it
// returns touch nothing but the backend client.
type Controller struct {
	session *session.Session
	client  *backend.Client
	timeout time.Duration
	logger  *zap.Logger
	cancel  context.CancelFunc
}

func NewController(s *session.Session, client *backend.Client, timeout time.Duration, logger *zap.Logger) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Controller{session: s, client: client, timeout: timeout, logger: logger}
}

// Session exposes the session for rendering.
func (c *Controller) Session() *session.Session { return c.session }

// ServerURL is the backend base URL.
func (c *Controller) ServerURL() string { return c.client.BaseURL() }

// requestContext starts the context for the next request and remembers how
// to cancel it.
func (c *Controller) requestContext() (context.Context, context.CancelFunc) {
	var (
		ctx    context.Context
		cancel context.CancelFunc
	)
	if c.timeout > 0 {
		ctx, cancel = context.WithTimeout(context.Background(), c.timeout)
	} else {
		ctx, cancel = context.WithCancel(context.Background())
	}
	c.cancel = cancel
	return ctx, cancel
}

// Send dispatches text and the staged attachment. It returns nil when the
// session refuses the send.
func (c *Controller) Send(text string) tea.Cmd {
	req, ok := c.session.BeginSend(text)
	if !ok {
		return nil
	}
	attached := ""
	if req.File != nil {
		attached = req.File.Name
	}
	c.logger.Debug("send", zap.Int("question_len", len(req.Question)), zap.String("attachment", attached))

	ctx, cancel := c.requestContext()
	client := c.client
	return func() tea.Msg {
		defer cancel()
		start := time.Now()
		ans, err := client.UploadAndAsk(ctx, req.Question, req.File)
		return sendResultMsg{answer: ans, err: err, elapsed: time.Since(start)}
	}
}

// Attach stages the file at path for the next send.
func (c *Controller) Attach(path string) tea.Cmd {
	f, err := backend.OpenFile(path)
	if err != nil {
		c.logger.Warn("attach failed", zap.String("path", path), zap.Error(err))
		return uitk.ShowErrorToast(fmt.Sprintf("Cannot attach %s", filepath.Base(path)))
	}
	c.session.Stage(f)
	return uitk.ShowToast("Attached " + f.Name)
}

// Detach drops the staged attachment.
func (c *Controller) Detach() tea.Cmd {
	if c.session.Pending() == nil {
		return nil
	}
	c.session.Unstage()
	return uitk.ShowToast("Attachment removed")
}

// UploadFiles validates and bulk-uploads the files at paths. Invalid batches
// are reported as a toast without touching the transcript.
func (c *Controller) UploadFiles(paths []string) tea.Cmd {
	files := make([]backend.File, 0, len(paths))
	for _, p := range paths {
		f, err := backend.OpenFile(p)
		if err != nil {
			c.logger.Warn("upload selection unreadable", zap.String("path", p), zap.Error(err))
			return uitk.ShowErrorToast(fmt.Sprintf("Cannot read %s", filepath.Base(p)))
		}
		files = append(files, f)
	}

	if err := c.session.BeginBulkUpload(files); err != nil {
		var verr *backend.ValidationError
		switch {
		case errors.As(err, &verr):
			c.logger.Info("upload rejected", zap.String("file", verr.File), zap.String("media_type", verr.MediaType))
			return uitk.ShowErrorToast("Please upload only PDF files")
		case errors.Is(err, session.ErrBusy):
			return uitk.ShowToast("Wait for the current request to finish")
		default:
			return nil
		}
	}

	ctx, cancel := c.requestContext()
	client := c.client
	return func() tea.Msg {
		defer cancel()
		msg, err := client.BulkUpload(ctx, files)
		return uploadResultMsg{message: msg, count: len(files), err: err}
	}
}

// RefreshFiles reloads the uploaded-file registry from the backend.
func (c *Controller) RefreshFiles() tea.Cmd {
	client := c.client
	timeout := c.timeout
	return func() tea.Msg {
		ctx := context.Background()
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}
		return filesLoadedMsg{files: client.ListUploadedFiles(ctx)}
	}
}

// Probe runs the connectivity diagnostic. It does not hold the awaiting gate.
func (c *Controller) Probe() tea.Cmd {
	client := c.client
	timeout := c.timeout
	return func() tea.Msg {
		ctx := context.Background()
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}
		return probeResultMsg{report: client.ProbeConnectivity(ctx)}
	}
}

// Cancel aborts the in-flight request, if any. The request still resolves
// through its result message; nil means there was nothing to cancel.
func (c *Controller) Cancel() tea.Cmd {
	if c.cancel == nil || !c.session.Awaiting() {
		return nil
	}
	c.cancel()
	c.cancel = nil
	c.logger.Info("request cancelled by user")
	return stateUpdate("Request cancelled")
}

// Apply resolves a controller result message into a session transition. It
// reports false for messages it does not own.
func (c *Controller) Apply(msg tea.Msg) (bool, tea.Cmd) {
	switch msg := msg.(type) {
	case sendResultMsg:
		c.cancel = nil
		if msg.err != nil {
			c.logError("ask", msg.err)
		} else {
			c.logger.Info("answer received", zap.Duration("elapsed", msg.elapsed), zap.Int("answer_len", len(msg.answer.Text)))
		}
		c.session.ResolveSend(msg.answer, msg.err)
		return true, stateUpdate("")

	case uploadResultMsg:
		c.cancel = nil
		if msg.err != nil {
			c.logError("bulk upload", msg.err)
			c.session.ResolveBulkUpload("", msg.err)
			return true, stateUpdate("")
		}
		c.logger.Info("bulk upload done", zap.Int("files", msg.count))
		c.session.ResolveBulkUpload(msg.message, nil)
		return true, tea.Batch(stateUpdate(""), c.RefreshFiles())

	case filesLoadedMsg:
		c.session.ReplaceFiles(msg.files)
		return true, stateUpdate("")
	}
	return false, nil
}

func (c *Controller) logError(op string, err error) {
	var (
		uerr *backend.UploadError
		aerr *backend.AskError
	)
	switch {
	case errors.As(err, &uerr):
		c.logger.Error(op+" failed", zap.Int("status", uerr.StatusCode), zap.String("body", uerr.Body), zap.Error(err))
	case errors.As(err, &aerr):
		c.logger.Error(op+" failed", zap.Int("status", aerr.StatusCode), zap.String("body", aerr.Body), zap.Error(err))
	default:
		c.logger.Error(op+" failed", zap.Error(err))
	}
}

func stateUpdate(notice string) tea.Cmd {
	return func() tea.Msg { return StateUpdateMsg{Notice: notice} }
}
