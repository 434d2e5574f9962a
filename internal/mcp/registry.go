package mcp

import (
	"context"
	"sort"
	"sync"
)

// ToolHandler defines the interface for an MCP tool
type ToolHandler interface {
	// Name returns the tool name
	Name() string

	// Description returns a human-readable description of the tool
	Description() string

	// InputSchema returns the JSON Schema for the tool's input parameters
	InputSchema() map[string]any

	// Execute executes the tool with the given arguments and returns a result
	Execute(ctx context.Context, args map[string]any) (*ToolResult, error)
}

// ToolRegistry manages MCP tools
type ToolRegistry struct {
	tools map[string]ToolHandler
	mu    sync.RWMutex
}

// NewToolRegistry creates a new tool registry
func NewToolRegistry() *ToolRegistry {
	return &ToolRegistry{
		tools: make(map[string]ToolHandler),
	}
}

// Register adds a tool to the registry
func (r *ToolRegistry) Register(tool ToolHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tools[tool.Name()] = tool
}

// GetTool returns a tool by name, or nil if not found
func (r *ToolRegistry) GetTool(name string) ToolHandler {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.tools[name]
}

// ListTools returns all registered tools sorted by name
func (r *ToolRegistry) ListTools() []Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tools := make([]Tool, 0, len(r.tools))
	for _, handler := range r.tools {
		tools = append(tools, Tool{
			Name:        handler.Name(),
			Description: handler.Description(),
			InputSchema: handler.InputSchema(),
		})
	}
	sort.Slice(tools, func(i, j int) bool {
		return tools[i].Name < tools[j].Name
	})
	return tools
}

// ResourceProvider defines the interface for an MCP resource provider
type ResourceProvider interface {
	// URI returns the resource URI
	URI() string

	// Name returns a human-readable name for the resource
	Name() string

	// Description returns a human-readable description of the resource
	Description() string

	// MimeType returns the MIME type of the resource content
	MimeType() string

	// Read reads the resource contents
	Read(ctx context.Context) ([]Content, error)
}

// ResourceRegistry manages MCP resources
type ResourceRegistry struct {
	providers []ResourceProvider
	mu        sync.RWMutex
}

// NewResourceRegistry creates a new resource registry
func NewResourceRegistry() *ResourceRegistry {
	return &ResourceRegistry{
		providers: make([]ResourceProvider, 0),
	}
}

// Register adds a resource provider to the registry
func (r *ResourceRegistry) Register(provider ResourceProvider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers = append(r.providers, provider)
}

// GetProvider returns the provider for a URI, or nil
func (r *ResourceRegistry) GetProvider(uri string) ResourceProvider {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.providers {
		if p.URI() == uri {
			return p
		}
	}
	return nil
}

// ListResources returns all registered resources
func (r *ResourceRegistry) ListResources() []Resource {
	r.mu.RLock()
	defer r.mu.RUnlock()

	resources := make([]Resource, 0, len(r.providers))
	for _, p := range r.providers {
		resources = append(resources, Resource{
			URI:         p.URI(),
			Name:        p.Name(),
			Description: p.Description(),
			MimeType:    p.MimeType(),
		})
	}
	return resources
}
