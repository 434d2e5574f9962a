// Package resources implements the MCP resources the server exposes
// alongside its tools.
package resources

import (
	"context"

	"github.com/querysculptor/querysculptor/internal/config"
	"github.com/querysculptor/querysculptor/internal/mcp"
	"github.com/querysculptor/querysculptor/internal/schema"
)

// SchemaResource exposes the upstream schema's raw introspection JSON so
// agents can browse types without a tool round-trip.
type SchemaResource struct {
	cache *schema.Cache
	cfg   *config.Config
}

// NewSchemaResource creates the schema resource.
func NewSchemaResource(cache *schema.Cache, cfg *config.Config) *SchemaResource {
	return &SchemaResource{cache: cache, cfg: cfg}
}

func (r *SchemaResource) URI() string {
	return "graphql://schema"
}

func (r *SchemaResource) Name() string {
	return "GraphQL schema"
}

func (r *SchemaResource) Description() string {
	return "The introspected schema of the configured upstream endpoint, as raw introspection JSON."
}

func (r *SchemaResource) MimeType() string {
	return "application/json"
}

func (r *SchemaResource) Read(ctx context.Context) ([]mcp.Content, error) {
	s, err := r.cache.Get(ctx, r.cfg.Upstream.Endpoint, r.cfg.Upstream.Headers())
	if err != nil {
		return nil, err
	}
	return []mcp.Content{{
		Type:     mcp.ContentTypeText,
		MimeType: "application/json",
		Text:     string(s.Raw),
	}}, nil
}
