// Package backend holds the HTTP clients for the collaborator services the
// console aggregates: the inventory service owning the deleted collections and
// the settings service owning the dropdown dimensions. Responses are decoded
// tolerantly; failures map to structured upstream errors carrying the
// backend's own message text.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"assetdesk/internal/core/apperror"
)

const maxErrorBodyBytes = 2048

var tracer = otel.Tracer("assetdesk/backend")

// Config holds the connection settings of one collaborator service.
type Config struct {
	// BaseURL is the service root, e.g. http://inventory:8000.
	BaseURL string
	// Token is the service-to-service bearer token.
	Token string
	// Timeout bounds each request. Zero means 30s.
	Timeout time.Duration
}

// client is the shared HTTP plumbing of the collaborator clients.
type client struct {
	http    *http.Client
	baseURL string
	token   string
	service string // error and span attribution
}

func newClient(service string, cfg Config) *client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &client{
		http:    &http.Client{Timeout: timeout},
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		token:   cfg.Token,
		service: service,
	}
}

// do issues one JSON request and decodes a 2xx response into out (out may be
// nil). Non-2xx responses become upstream errors with the backend's message
// text preserved.
func (c *client) do(ctx context.Context, method, path string, body, out any) error {
	ctx, span := tracer.Start(ctx, c.service+" "+method+" "+path,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("peer.service", c.service),
			attribute.String("http.method", method),
			attribute.String("http.path", path),
		),
	)
	defer span.End()

	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return apperror.NewInternal(fmt.Errorf("encode %s request: %w", path, err))
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return apperror.NewInternal(fmt.Errorf("build %s request: %w", path, err))
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "request failed")
		return apperror.NewUpstream(c.service, "", err).WithDetail("path", path)
	}
	defer resp.Body.Close()

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		detail := readErrorDetail(resp.Body)
		span.SetStatus(codes.Error, fmt.Sprintf("status %d", resp.StatusCode))
		return apperror.NewUpstream(c.service, detail,
			fmt.Errorf("%s %s returned status %d", method, path, resp.StatusCode)).
			WithDetail("path", path).
			WithDetail("status", resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		span.RecordError(err)
		return apperror.NewUpstream(c.service, "",
			fmt.Errorf("decode %s response: %w", path, err)).WithDetail("path", path)
	}
	return nil
}

// statusEnvelope is the mutation response shape: a 200 whose status field is
// "error" still means the action was refused.
type statusEnvelope struct {
	Status   string          `json:"status"`
	Messages json.RawMessage `json:"messages"`
}

func (e *statusEnvelope) failed() bool {
	return strings.EqualFold(e.Status, "error")
}

func (e *statusEnvelope) messageText() string {
	return messagesToText(e.Messages)
}

// readErrorDetail extracts the backend's own error text from a failure body.
// It tries the JSON messages field first and falls back to the raw body.
func readErrorDetail(r io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(r, maxErrorBodyBytes))
	if err != nil || len(raw) == 0 {
		return ""
	}

	var envelope struct {
		Messages json.RawMessage `json:"messages"`
		Message  string          `json:"message"`
		Error    string          `json:"error"`
	}
	if err := json.Unmarshal(raw, &envelope); err == nil {
		if text := messagesToText(envelope.Messages); text != "" {
			return text
		}
		if envelope.Message != "" {
			return envelope.Message
		}
		if envelope.Error != "" {
			return envelope.Error
		}
	}
	return strings.TrimSpace(string(raw))
}

// messagesToText flattens the messages field, which arrives as either a plain
// string or a field-to-errors object.
func messagesToText(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}

	var byField map[string][]string
	if err := json.Unmarshal(raw, &byField); err == nil {
		var parts []string
		for _, msgs := range byField {
			parts = append(parts, msgs...)
		}
		return strings.Join(parts, "; ")
	}
	return ""
}
