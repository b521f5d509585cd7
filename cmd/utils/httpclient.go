package utils

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
)

// HTTPClient is the part of *http.Client the backend client needs.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// DefaultHTTPClient sends requests with a fresh http.Client per call.
// A zero Timeout disables the deadline.
type DefaultHTTPClient struct{ Timeout time.Duration }

func (c *DefaultHTTPClient) Do(req *http.Request) (*http.Response, error) {
	client := &http.Client{Timeout: c.Timeout}
	return client.Do(req)
}

// GetHTTPClientWithTimeout returns the logging client the commands use.
func GetHTTPClientWithTimeout(timeout time.Duration) HTTPClient {
	return &VerboseHTTPClient{Inner: &DefaultHTTPClient{Timeout: timeout}}
}

const maxLoggedBody = 1024

var redactedHeaders = map[string]struct{}{
	"authorization":       {},
	"proxy-authorization": {},
	"cookie":              {},
	"set-cookie":          {},
	"x-api-key":           {},
	"x-auth-token":        {},
	"x-session-id":        {},
}

// VerboseHTTPClient logs each exchange to the debug log. Multipart bodies
// carry PDF bytes and are logged by size only.
type VerboseHTTPClient struct {
	Inner  HTTPClient
	Logger *zap.Logger
}

func (v *VerboseHTTPClient) Do(req *http.Request) (*http.Response, error) {
	inner := v.Inner
	if inner == nil {
		inner = &DefaultHTTPClient{}
	}
	log := v.Logger
	if log == nil {
		log = Logger()
	}

	var reqBody string
	if isMultipart(req.Header.Get("Content-Type")) {
		reqBody = fmt.Sprintf("<multipart, %d bytes>", req.ContentLength)
	} else {
		req.Body, reqBody = captureBody(req.Body)
	}
	log.Debug("http request",
		zap.String("method", req.Method),
		zap.String("url", req.URL.String()),
		zap.Strings("headers", redactHeaders(req.Header)),
		zap.String("body", reqBody),
	)

	start := time.Now()
	resp, err := inner.Do(req)
	elapsed := time.Since(start)
	if err != nil {
		log.Debug("http error", zap.String("url", req.URL.String()), zap.Duration("elapsed", elapsed), zap.Error(err))
		LogDebug(fmt.Sprintf("HTTP %s %s failed: %v", req.Method, req.URL, err))
		return nil, err
	}

	var respBody string
	resp.Body, respBody = captureBody(resp.Body)
	log.Debug("http response",
		zap.String("url", req.URL.String()),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", elapsed),
		zap.Strings("headers", redactHeaders(resp.Header)),
		zap.String("body", respBody),
	)
	LogDebug(fmt.Sprintf("HTTP %s %s -> %d (%s)", req.Method, req.URL, resp.StatusCode, FormatElapsed(elapsed)))
	return resp, nil
}

func isMultipart(contentType string) bool {
	return strings.HasPrefix(strings.ToLower(contentType), "multipart/")
}

// captureBody drains body and returns a replacement reader over the same
// bytes along with a sanitized, truncated copy for the log.
func captureBody(body io.ReadCloser) (io.ReadCloser, string) {
	if body == nil || body == http.NoBody {
		return body, ""
	}
	data, err := io.ReadAll(body)
	body.Close()
	if err != nil {
		return io.NopCloser(bytes.NewReader(data)), fmt.Sprintf("<error reading: %v>", err)
	}

	logged := string(data)
	if len(logged) > maxLoggedBody {
		logged = logged[:maxLoggedBody] + "... (truncated)"
	}
	return io.NopCloser(bytes.NewReader(data)), sanitizeLogMessage(logged)
}

// redactHeaders renders hdr as sorted "Key: value" lines, hiding credentials.
func redactHeaders(hdr http.Header) []string {
	keys := make([]string, 0, len(hdr))
	for k := range hdr {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var lines []string
	for _, k := range keys {
		_, secret := redactedHeaders[strings.ToLower(k)]
		for _, v := range hdr.Values(k) {
			if secret {
				v = "[REDACTED]"
			}
			lines = append(lines, k+": "+v)
		}
	}
	return lines
}

// PrettyServerError extracts a readable message from an error response body.
// It understands the {"detail": ...} envelope as well as {"message"} and {"error"}.
func PrettyServerError(statusCode int, body []byte) string {
	var env struct {
		Detail  any    `json:"detail"`
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if json.Unmarshal(body, &env) == nil {
		if msg := detailMessage(env.Detail); msg != "" {
			return msg
		}
		if env.Message != "" {
			return env.Message
		}
		if env.Error != "" {
			return env.Error
		}
	}
	if s := strings.TrimSpace(string(body)); s != "" {
		return s
	}
	return http.StatusText(statusCode)
}

func detailMessage(detail any) string {
	switch v := detail.(type) {
	case string:
		return v
	case map[string]any:
		m, _ := v["message"].(string)
		return m
	case []any:
		// Validation errors: [{"loc": [...], "msg": "...", "type": "..."}]
		if len(v) == 0 {
			return ""
		}
		item, _ := v[0].(map[string]any)
		if s, _ := item["msg"].(string); s != "" {
			return s
		}
		s, _ := item["message"].(string)
		return s
	}
	return ""
}
