package schema

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/querysculptor/querysculptor/internal/apperr"
	"github.com/rs/zerolog/log"
)

const maxIntrospectionResponseSize = 16 * 1024 * 1024 // 16MB

// Client fetches schemas from an upstream GraphQL endpoint.
type Client struct {
	httpClient *http.Client
}

// NewClient creates an introspection client with the given request timeout.
func NewClient(timeout time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type introspectionResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// Fetch runs the introspection query against the endpoint and decodes the
// result into a typed Schema. Headers are sent verbatim on the request.
func (c *Client) Fetch(ctx context.Context, endpoint string, headers map[string]string) (*Schema, error) {
	body, err := json.Marshal(map[string]any{
		"query": IntrospectionQuery,
	})
	if err != nil {
		return nil, apperr.Internal("failed to encode introspection request: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, apperr.Internal("failed to build introspection request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || isTimeout(err) {
			return nil, apperr.Timeout("introspection request to upstream timed out")
		}
		return nil, apperr.Upstream("introspection request failed: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, apperr.Upstream("introspection request returned status %d", resp.StatusCode)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxIntrospectionResponseSize))
	if err != nil {
		return nil, apperr.Upstream("failed to read introspection response: %v", err)
	}

	var ir introspectionResponse
	if err := json.Unmarshal(raw, &ir); err != nil {
		return nil, apperr.Upstream("introspection response is not valid JSON: %v", err)
	}
	if len(ir.Errors) > 0 {
		return nil, apperr.Upstream("introspection returned errors: %s", ir.Errors[0].Message)
	}
	if len(ir.Data) == 0 {
		return nil, apperr.Upstream("introspection response has no data")
	}

	s, err := FromIntrospection(ir.Data)
	if err != nil {
		return nil, apperr.Upstream("failed to decode introspection data: %v", err)
	}

	log.Info().
		Str("endpoint", endpoint).
		Str("query_type", s.QueryTypeName).
		Dur("duration", time.Since(start)).
		Msg("Introspected upstream schema")

	return s, nil
}

func isTimeout(err error) bool {
	type timeout interface{ Timeout() bool }
	var t timeout
	return errors.As(err, &t) && t.Timeout()
}
