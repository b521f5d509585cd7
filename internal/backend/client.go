// Package backend talks to the PDF question-answering service over HTTP.
//
// The service exposes POST /upload (multipart), POST /ask (form fields),
// GET /files and the diagnostic GET / and GET /docs endpoints. Every
// operation reports failures as one of the typed errors in errors.go so
// callers can classify them with errors.As.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
)

// DefaultBaseURL is where the backend listens unless configured otherwise.
const DefaultBaseURL = "http://127.0.0.1:8000"

// ErrNoFiles is returned by BulkUpload for an empty selection.
var ErrNoFiles = errors.New("no files selected")

// Doer executes HTTP requests. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Answer is a normalized reply from the ask endpoint.
type Answer struct {
	Text      string
	Timestamp time.Time
}

// Client issues requests against one backend.
type Client struct {
	baseURL   string
	http      Doer
	logger    *zap.Logger
	now       func() time.Time
	userAgent string
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger used for request failures and probe results.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithClock overrides the time source used for answer timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

// WithUserAgent sets the User-Agent header on every request.
func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

// NewClient returns a client for baseURL. A nil doer means http.DefaultClient.
func NewClient(baseURL string, doer Doer, opts ...Option) *Client {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultBaseURL
	}
	if doer == nil {
		doer = http.DefaultClient
	}
	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		http:    doer,
		logger:  zap.NewNop(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the backend root without a trailing slash.
func (c *Client) BaseURL() string { return c.baseURL }

func (c *Client) endpoint(path string) string {
	return c.baseURL + path
}

// UploadAndAsk asks question, first uploading file when it is non-nil and
// passing the identifier the upload returned along with the question.
func (c *Client) UploadAndAsk(ctx context.Context, question string, file *File) (*Answer, error) {
	form := url.Values{}
	form.Set("question", question)

	if file != nil {
		body, err := c.upload(ctx, "file", []File{*file})
		if err != nil {
			return nil, err
		}
		if !json.Valid(body) {
			return nil, &UploadError{StatusCode: http.StatusOK, Body: string(body), Err: errors.New("decode upload response: invalid JSON")}
		}
		// Only an object can carry an identifier; any other JSON value asks without one.
		var uploaded map[string]json.RawMessage
		_ = json.Unmarshal(body, &uploaded)
		c.logger.Debug("file uploaded", zap.String("file", file.Name), zap.ByteString("response", body))

		if id := scalarString(uploaded["file_id"]); id != "" {
			form.Set("file_id", id)
		} else if name := scalarString(uploaded["filename"]); name != "" {
			form.Set("filename", name)
		}
	}

	return c.ask(ctx, form)
}

func (c *Client) ask(ctx context.Context, form url.Values) (*Answer, error) {
	req, err := c.newRequest(ctx, http.MethodPost, "/ask", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	status, body, err := c.do(req, "ask")
	if err != nil {
		return nil, err
	}
	if !isSuccess(status) {
		c.logger.Debug("ask failed", zap.Int("status", status), zap.String("body", string(body)))
		return nil, &AskError{StatusCode: status, Body: string(body)}
	}

	text, err := NormalizeAnswer(body)
	if err != nil {
		return nil, &AskError{StatusCode: status, Body: string(body), Err: fmt.Errorf("decode ask response: %w", err)}
	}
	return &Answer{Text: text, Timestamp: c.now()}, nil
}

// upload posts files as multipart form data under field and returns the
// response body of a successful upload.
func (c *Client) upload(ctx context.Context, field string, files []File) ([]byte, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for _, f := range files {
		if err := writeFilePart(writer, field, f); err != nil {
			return nil, err
		}
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("finalize multipart body: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/upload", &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	status, body, err := c.do(req, "upload")
	if err != nil {
		return nil, err
	}
	if !isSuccess(status) {
		c.logger.Debug("upload failed", zap.Int("status", status), zap.String("body", string(body)))
		return nil, &UploadError{StatusCode: status, Body: string(body)}
	}
	return body, nil
}

func writeFilePart(w *multipart.Writer, field string, f File) error {
	src, err := os.Open(f.Path)
	if err != nil {
		return fmt.Errorf("open %s: %w", f.Name, err)
	}
	defer src.Close()

	contentType := f.MediaType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`, escapeQuotes(field), escapeQuotes(f.Name)))
	h.Set("Content-Type", contentType)

	part, err := w.CreatePart(h)
	if err != nil {
		return fmt.Errorf("create form part for %s: %w", f.Name, err)
	}
	if _, err := io.Copy(part, src); err != nil {
		return fmt.Errorf("read %s: %w", f.Name, err)
	}
	return nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string { return quoteEscaper.Replace(s) }

// ListUploadedFiles returns the backend's uploaded filenames. Any failure
// yields an empty list: the sidebar shows "no files" either way.
func (c *Client) ListUploadedFiles(ctx context.Context) []string {
	req, err := c.newRequest(ctx, http.MethodGet, "/files", nil)
	if err != nil {
		return []string{}
	}
	status, body, err := c.do(req, "list files")
	if err != nil {
		c.logger.Warn("fetch uploaded files", zap.Error(err))
		return []string{}
	}
	if !isSuccess(status) {
		c.logger.Warn("fetch uploaded files", zap.Int("status", status), zap.String("body", string(body)))
		return []string{}
	}

	var payload struct {
		UploadedFiles []string `json:"uploaded_files"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		c.logger.Warn("decode uploaded files", zap.Error(err))
		return []string{}
	}
	if payload.UploadedFiles == nil {
		return []string{}
	}
	return payload.UploadedFiles
}

// BulkUpload sends every file in one multipart request under the "files"
// field and returns the backend's message. The whole batch is rejected with a
// *ValidationError, before any request, if one file is not a PDF.
func (c *Client) BulkUpload(ctx context.Context, files []File) (string, error) {
	if len(files) == 0 {
		return "", ErrNoFiles
	}
	if err := ValidateBatch(files); err != nil {
		return "", err
	}

	body, err := c.upload(ctx, "files", files)
	if err != nil {
		return "", err
	}

	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", &UploadError{StatusCode: http.StatusOK, Body: string(body), Err: fmt.Errorf("decode upload response: %w", err)}
	}
	if payload.Message == "" {
		return "Files uploaded successfully.", nil
	}
	return payload.Message, nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path), body)
	if err != nil {
		return nil, fmt.Errorf("build %s %s request: %w", method, path, err)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	return req, nil
}

// do sends req and reads the whole response body.
func (c *Client) do(req *http.Request, op string) (int, []byte, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Debug("request failed", zap.String("op", op), zap.Error(err))
		return 0, nil, &NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, &NetworkError{Op: op, Err: fmt.Errorf("read response body: %w", err)}
	}
	return resp.StatusCode, body, nil
}

func isSuccess(status int) bool {
	return status >= 200 && status < 300
}
