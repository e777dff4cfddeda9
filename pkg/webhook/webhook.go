// Package webhook posts run reports to HTTP endpoints.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ccollicutt/proclog/pkg/output"
)

// DefaultTimeout is the default HTTP request timeout.
const DefaultTimeout = 10 * time.Second

// maxResponseBody caps how much of the endpoint's reply is kept.
const maxResponseBody = 1024 * 1024

// Event names carried in the payload.
const (
	EventFindings = "proclog.findings"
	EventClean    = "proclog.clean"
)

// Payload is the JSON body posted to a webhook.
type Payload struct {
	Event    string                  `json:"event"`
	RunID    string                  `json:"run_id"`
	Summary  output.Summary          `json:"summary"`
	Findings []output.SourcedFinding `json:"findings"`
	Sources  []string                `json:"sources"`
	SentAt   time.Time               `json:"sent_at"`
}

// NewPayload flattens a report into a webhook payload.
func NewPayload(report *output.Report) *Payload {
	event := EventClean
	if report.HasIssues() {
		event = EventFindings
	}

	return &Payload{
		Event:    event,
		RunID:    report.Metadata.RunID,
		Summary:  report.Summary,
		Findings: report.Findings(),
		Sources:  report.Metadata.Sources,
		SentAt:   time.Now().UTC(),
	}
}

// Client sends reports to webhook endpoints.
type Client struct {
	httpClient *http.Client
	userAgent  string
}

// NewClient creates a new webhook client.
func NewClient(version string) *Client {
	return &Client{
		httpClient: &http.Client{},
		userAgent:  "proclog-webhook/" + version,
	}
}

// SendOptions configures a webhook request.
type SendOptions struct {
	URL     string
	Token   string        // Bearer token (optional)
	Timeout time.Duration // Request timeout (uses DefaultTimeout if zero)
}

// Response contains the result of a webhook request.
type Response struct {
	StatusCode int
	Body       string
	Duration   time.Duration
	Error      error
}

// Success returns true if the webhook was sent successfully (2xx status).
func (r *Response) Success() bool {
	return r.Error == nil && r.StatusCode >= 200 && r.StatusCode < 300
}

// Send posts the report's payload to a webhook endpoint.
// Failures are reported in the Response rather than returned.
func (c *Client) Send(ctx context.Context, report *output.Report, opts SendOptions) *Response {
	start := time.Now()
	resp := &Response{}
	fail := func(err error) *Response {
		resp.Error = err
		resp.Duration = time.Since(start)
		return resp
	}

	body, err := json.Marshal(NewPayload(report))
	if err != nil {
		return fail(fmt.Errorf("failed to marshal payload: %w", err))
	}

	timeout := opts.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, opts.URL, bytes.NewReader(body))
	if err != nil {
		return fail(fmt.Errorf("failed to create request: %w", err))
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if report.Metadata.RunID != "" {
		req.Header.Set("X-Proclog-Run", report.Metadata.RunID)
	}
	if opts.Token != "" {
		req.Header.Set("Authorization", "Bearer "+opts.Token)
	}

	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		return fail(fmt.Errorf("request failed: %w", err))
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(httpResp.Body, maxResponseBody))
	if err != nil {
		return fail(fmt.Errorf("failed to read response: %w", err))
	}

	resp.StatusCode = httpResp.StatusCode
	resp.Body = string(respBody)
	resp.Duration = time.Since(start)

	if resp.StatusCode >= 400 {
		resp.Error = fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}

	return resp
}
