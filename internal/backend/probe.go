package backend

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"
)

// ProbeCheck is the outcome of one diagnostic request.
type ProbeCheck struct {
	Name       string
	Method     string
	Path       string
	StatusCode int
	Body       string
	Err        error
}

// Reachable reports whether the endpoint answered at all.
func (pc ProbeCheck) Reachable() bool { return pc.Err == nil }

// OK reports whether the endpoint answered with a 2xx status.
func (pc ProbeCheck) OK() bool { return pc.Err == nil && isSuccess(pc.StatusCode) }

// ProbeReport collects the probe's checks in the order they ran.
type ProbeReport struct {
	Checks []ProbeCheck
	// OK is true whenever the probe ran to completion, whatever the
	// individual checks returned. It is a diagnostic, not a health check.
	OK bool
}

// ProbeConnectivity runs GET /, GET /docs and POST /ask (question "test")
// one after another. Each check is recorded independently and never aborts
// the others.
func (c *Client) ProbeConnectivity(ctx context.Context) ProbeReport {
	c.logger.Info("connectivity probe start", zap.String("server", c.baseURL))

	form := url.Values{}
	form.Set("question", "test")

	report := ProbeReport{}
	report.Checks = append(report.Checks,
		c.probe(ctx, "root", http.MethodGet, "/", ""),
		c.probe(ctx, "docs", http.MethodGet, "/docs", ""),
		c.probe(ctx, "ask", http.MethodPost, "/ask", form.Encode()),
	)

	report.OK = ctx.Err() == nil
	c.logger.Info("connectivity probe end", zap.Bool("completed", report.OK))
	return report
}

func (c *Client) probe(ctx context.Context, name, method, path, form string) ProbeCheck {
	check := ProbeCheck{Name: name, Method: method, Path: path}

	var body io.Reader
	if form != "" {
		body = strings.NewReader(form)
	}
	req, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		check.Err = err
		return check
	}
	if form != "" {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	status, respBody, err := c.do(req, "probe "+name)
	check.StatusCode = status
	check.Body = string(respBody)
	check.Err = err

	if err != nil {
		c.logger.Info("probe endpoint failed", zap.String("check", name), zap.Error(err))
	} else {
		c.logger.Info("probe endpoint status", zap.String("check", name), zap.Int("status", status), zap.String("body", check.Body))
	}
	return check
}
