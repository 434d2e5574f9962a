// Package executor drives the render, validate, complexity-check, and
// upstream POST pipeline behind validate-query and execute-query.
package executor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/querysculptor/querysculptor/internal/apperr"
	"github.com/querysculptor/querysculptor/internal/builder"
	"github.com/querysculptor/querysculptor/internal/complexity"
	"github.com/querysculptor/querysculptor/internal/config"
	"github.com/querysculptor/querysculptor/internal/observability"
	"github.com/querysculptor/querysculptor/internal/querystate"
	"github.com/querysculptor/querysculptor/internal/schema"
	"github.com/querysculptor/querysculptor/internal/validation"
)

const maxUpstreamResponseSize = 16 * 1024 * 1024 // 16MB

// Executor validates rendered documents and posts them to the single
// configured upstream endpoint. It never accepts a URL from a caller.
type Executor struct {
	endpoint       string
	defaultHeaders map[string]string
	executeTimeout time.Duration
	limits         config.LimitsConfig
	client         *http.Client
	metrics        *observability.Metrics
}

// New creates an executor for the configured upstream.
func New(cfg *config.Config) *Executor {
	return &Executor{
		endpoint:       cfg.Upstream.Endpoint,
		defaultHeaders: cfg.Upstream.Headers(),
		executeTimeout: cfg.Upstream.ExecuteTimeout,
		limits:         cfg.Limits,
		client:         &http.Client{},
		metrics:        observability.GetMetrics(),
	}
}

// ValidationReport is the outcome of the validate pipeline.
type ValidationReport struct {
	Query      string             `json:"query"`
	Valid      bool               `json:"valid"`
	Errors     []*apperr.Error    `json:"errors,omitempty"`
	Warnings   []string           `json:"warnings,omitempty"`
	Complexity *complexity.Result `json:"complexity,omitempty"`
}

// Validate renders the state and runs syntax, schema, required-argument,
// and complexity checks. It never contacts the upstream.
func (e *Executor) Validate(qs *querystate.QueryState, s *schema.Schema) *ValidationReport {
	report := &ValidationReport{}

	report.Query = builder.Render(qs)
	if report.Query == "" {
		report.Errors = append(report.Errors, apperr.Validation("Query is empty: select at least one field before validating"))
		return report
	}

	if syntaxErrors := validation.ValidateQuerySyntax(report.Query); len(syntaxErrors) > 0 {
		for _, msg := range syntaxErrors {
			report.Errors = append(report.Errors, apperr.New(apperr.KindSyntax, "%s", msg))
		}
		return report
	}

	for _, msg := range validation.ValidateAgainstSchema(report.Query, s) {
		report.Errors = append(report.Errors, apperr.Schema("%s", msg))
	}

	report.Warnings = append(report.Warnings, validation.ValidateRequiredArguments(s, qs)...)

	report.Complexity = complexity.Analyze(qs, complexity.Limits{
		MaxDepth:      e.limits.MaxDepth,
		MaxFields:     e.limits.MaxFields,
		MaxComplexity: e.limits.MaxComplexity,
	})
	for _, msg := range report.Complexity.Errors {
		report.Errors = append(report.Errors, apperr.Limit("%s", msg))
		e.metrics.RecordLimitRejection("complexity")
	}
	report.Warnings = append(report.Warnings, report.Complexity.Warnings...)

	report.Valid = len(report.Errors) == 0
	return report
}

// ExecutionResult carries the upstream response verbatim plus warnings
// collected during validation.
type ExecutionResult struct {
	Query    string          `json:"query"`
	Response json.RawMessage `json:"response"`
	Warnings []string        `json:"warnings,omitempty"`
}

// Execute runs the full pipeline and posts the document to the upstream.
// Validation errors abort before any network call.
func (e *Executor) Execute(ctx context.Context, qs *querystate.QueryState, s *schema.Schema) (*ExecutionResult, error) {
	report := e.Validate(qs, s)
	if !report.Valid {
		e.metrics.RecordExecution("rejected")
		return nil, report.Errors[0]
	}

	payload := map[string]any{
		"query":     report.Query,
		"variables": qs.VariablesValues,
	}
	if qs.OperationName != "" {
		payload["operationName"] = qs.OperationName
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, apperr.Internal("failed to encode request body: %v", err)
	}

	ctx, cancel := context.WithTimeout(ctx, e.executeTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, apperr.Internal("failed to build upstream request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range e.defaultHeaders {
		req.Header.Set(k, v)
	}
	// Session headers win over configured defaults.
	for k, v := range qs.Headers {
		req.Header.Set(k, v)
	}

	start := time.Now()
	resp, err := e.client.Do(req)
	if err != nil {
		e.metrics.RecordExecution("error")
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, apperr.Timeout("Upstream request timed out after %s", e.executeTimeout)
		}
		return nil, apperr.Upstream("Upstream request failed: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxUpstreamResponseSize))
	if err != nil {
		e.metrics.RecordExecution("error")
		return nil, apperr.Upstream("Failed to read upstream response: %v", err)
	}

	log.Debug().
		Int("status", resp.StatusCode).
		Int("response_bytes", len(raw)).
		Dur("duration", time.Since(start)).
		Msg("Executed query against upstream")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		e.metrics.RecordExecution("upstream_error")
		return nil, apperr.Upstream("Upstream returned status %d: %s", resp.StatusCode, truncate(string(raw), 500))
	}

	e.metrics.RecordExecution("ok")
	return &ExecutionResult{
		Query:    report.Query,
		Response: raw,
		Warnings: report.Warnings,
	}, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
