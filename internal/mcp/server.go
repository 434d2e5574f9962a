package mcp

import (
	"context"

	"github.com/rs/zerolog/log"
)

// MCPVersion is the MCP protocol version supported by this server
const MCPVersion = "2024-11-05"

// ServerVersion should be set at build time
var ServerVersion = "dev"

// Server handles MCP protocol operations
type Server struct {
	transport *Transport
	tools     *ToolRegistry
	resources *ResourceRegistry
}

// NewServer creates a new MCP server
func NewServer() *Server {
	return &Server{
		transport: NewTransport(),
		tools:     NewToolRegistry(),
		resources: NewResourceRegistry(),
	}
}

// ToolRegistry returns the tool registry for registration
func (s *Server) ToolRegistry() *ToolRegistry {
	return s.tools
}

// ResourceRegistry returns the resource registry for registration
func (s *Server) ResourceRegistry() *ResourceRegistry {
	return s.resources
}

// HandleRequest processes a JSON-RPC request and returns a response
func (s *Server) HandleRequest(ctx context.Context, data []byte) *Response {
	req, err := s.transport.ParseRequest(data)
	if err != nil {
		log.Debug().Err(err).Msg("MCP: Failed to parse request")
		return NewParseError(err.Error())
	}

	log.Debug().
		Str("method", req.Method).
		Interface("id", req.ID).
		Msg("MCP: Handling request")

	return s.dispatch(ctx, req)
}

// dispatch routes the request to the appropriate handler
func (s *Server) dispatch(ctx context.Context, req *Request) *Response {
	switch req.Method {
	case MethodInitialize:
		return s.handleInitialize(req)
	case MethodPing:
		return NewResult(req.ID, PingResult{})
	case MethodToolsList:
		return NewResult(req.ID, ToolsListResult{Tools: s.tools.ListTools()})
	case MethodToolsCall:
		return s.handleToolsCall(ctx, req)
	case MethodResourcesList:
		return NewResult(req.ID, ResourcesListResult{Resources: s.resources.ListResources()})
	case MethodResourcesRead:
		return s.handleResourcesRead(ctx, req)
	default:
		return NewMethodNotFound(req.ID, req.Method)
	}
}

// handleInitialize handles the initialize request
func (s *Server) handleInitialize(req *Request) *Response {
	params, err := ParseParams[InitializeParams](req.Params)
	if err != nil {
		return NewInvalidParams(req.ID, err.Error())
	}

	if params != nil {
		log.Info().
			Str("client_name", params.ClientInfo.Name).
			Str("client_version", params.ClientInfo.Version).
			Str("protocol_version", params.ProtocolVersion).
			Msg("MCP: Client initializing")
	}

	result := InitializeResult{
		ProtocolVersion: MCPVersion,
		ServerInfo: ServerInfo{
			Name:    "querysculptor",
			Version: ServerVersion,
		},
		Capabilities: ServerCapabilities{
			Tools:     &ToolsCapability{},
			Resources: &ResourcesCapability{},
		},
	}
	return NewResult(req.ID, result)
}

// handleToolsCall handles the tools/call request
func (s *Server) handleToolsCall(ctx context.Context, req *Request) *Response {
	params, err := MustParseParams[ToolsCallParams](req.Params)
	if err != nil {
		return NewInvalidParams(req.ID, err.Error())
	}

	tool := s.tools.GetTool(params.Name)
	if tool == nil {
		return NewToolNotFound(req.ID, params.Name)
	}

	result, err := tool.Execute(ctx, params.Arguments)
	if err != nil {
		log.Error().Err(err).Str("tool", params.Name).Msg("MCP: Tool execution failed")
		return NewInternalError(req.ID, err.Error())
	}
	return NewResult(req.ID, result)
}

// handleResourcesRead handles the resources/read request
func (s *Server) handleResourcesRead(ctx context.Context, req *Request) *Response {
	params, err := MustParseParams[ResourcesReadParams](req.Params)
	if err != nil {
		return NewInvalidParams(req.ID, err.Error())
	}

	provider := s.resources.GetProvider(params.URI)
	if provider == nil {
		return NewResourceNotFound(req.ID, params.URI)
	}

	contents, err := provider.Read(ctx)
	if err != nil {
		log.Error().Err(err).Str("uri", params.URI).Msg("MCP: Resource read failed")
		return NewInternalError(req.ID, err.Error())
	}

	result := ResourcesReadResult{}
	for _, c := range contents {
		result.Contents = append(result.Contents, ResourceContents{
			URI:      params.URI,
			MimeType: c.MimeType,
			Text:     c.Text,
		})
	}
	return NewResult(req.ID, result)
}
