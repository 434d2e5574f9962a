package schema

import (
	"context"
	"sync"
)

// Cache memoizes one introspected schema per endpoint URL for the process
// lifetime. Population happens at most once per endpoint; concurrent
// callers for the same endpoint share a single fetch. Failed fetches are
// not cached, so the next caller retries.
type Cache struct {
	client *Client

	mu      sync.Mutex
	schemas map[string]*Schema
	pending map[string]*fetchCall
}

type fetchCall struct {
	done   chan struct{}
	schema *Schema
	err    error
}

// NewCache creates a schema cache backed by the given client.
func NewCache(client *Client) *Cache {
	return &Cache{
		client:  client,
		schemas: make(map[string]*Schema),
		pending: make(map[string]*fetchCall),
	}
}

// Get returns the cached schema for the endpoint, fetching it on first
// use. Headers are only consulted when a fetch is actually performed.
func (c *Cache) Get(ctx context.Context, endpoint string, headers map[string]string) (*Schema, error) {
	c.mu.Lock()
	if s, ok := c.schemas[endpoint]; ok {
		c.mu.Unlock()
		return s, nil
	}
	if call, ok := c.pending[endpoint]; ok {
		c.mu.Unlock()
		select {
		case <-call.done:
			return call.schema, call.err
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	call := &fetchCall{done: make(chan struct{})}
	c.pending[endpoint] = call
	c.mu.Unlock()

	call.schema, call.err = c.client.Fetch(ctx, endpoint, headers)

	c.mu.Lock()
	delete(c.pending, endpoint)
	if call.err == nil {
		c.schemas[endpoint] = call.schema
	}
	c.mu.Unlock()
	close(call.done)

	return call.schema, call.err
}

// Peek returns the cached schema without triggering a fetch.
func (c *Cache) Peek(endpoint string) (*Schema, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.schemas[endpoint]
	return s, ok
}
