package cmd

import (
	"errors"
	"fmt"

	"antom-cli/cmd/utils"
	"antom-cli/internal/backend"

	"go.uber.org/zap"
)

// newBackendClient builds a client for the configured server. Requests go
// through the verbose HTTP client so --debug captures them in the log.
func newBackendClient(sessionID string) *backend.Client {
	return backend.NewClient(
		settings.ServerURL,
		utils.GetHTTPClientWithTimeout(settings.Timeout),
		backend.WithLogger(sessionLogger(sessionID)),
		backend.WithUserAgent(userAgent()),
	)
}

// sessionLogger tags the shared logger with a chat session id.
func sessionLogger(sessionID string) *zap.Logger {
	logger := utils.Logger()
	if sessionID != "" {
		logger = logger.With(zap.String("session", sessionID))
	}
	return logger
}

// describeError turns a backend error into a one-line message for the CLI.
func describeError(err error, server string) string {
	var (
		verr *backend.ValidationError
		uerr *backend.UploadError
		aerr *backend.AskError
		nerr *backend.NetworkError
	)
	switch {
	case errors.As(err, &verr):
		return fmt.Sprintf("only PDF files can be uploaded: %s is %s", verr.File, verr.MediaType)
	case errors.As(err, &uerr):
		if uerr.Err != nil {
			return fmt.Sprintf("upload failed: unreadable server response: %v", uerr.Err)
		}
		return fmt.Sprintf("upload failed (%d): %s", uerr.StatusCode, utils.PrettyServerError(uerr.StatusCode, []byte(uerr.Body)))
	case errors.As(err, &aerr):
		if aerr.Err != nil {
			return fmt.Sprintf("ask failed: unreadable server response: %v", aerr.Err)
		}
		return fmt.Sprintf("ask failed (%d): %s", aerr.StatusCode, utils.PrettyServerError(aerr.StatusCode, []byte(aerr.Body)))
	case errors.As(err, &nerr):
		msg := fmt.Sprintf("cannot reach server at %s: %v", server, nerr.Err)
		if utils.IsLocalhost(server) {
			msg += "\nMake sure your backend server is running on port 8000"
		}
		return msg
	}
	return err.Error()
}
