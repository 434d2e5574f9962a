package api

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/querysculptor/querysculptor/internal/config"
	"github.com/querysculptor/querysculptor/internal/mcp"
)

func testServer() *Server {
	cfg := &config.Config{
		Server: config.ServerConfig{
			Address:      ":0",
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 5 * time.Second,
			IdleTimeout:  5 * time.Second,
			BodyLimit:    1024 * 1024,
		},
		MCP: config.MCPConfig{BasePath: "/mcp", MaxMessageSize: 1024 * 1024},
	}
	return NewServer(cfg, mcp.NewHandler(&cfg.MCP))
}

func TestHealthEndpoint(t *testing.T) {
	server := testServer()

	resp, err := server.App().Test(httptest.NewRequest("GET", "/health", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
}

func TestMCPHealthEndpoint(t *testing.T) {
	server := testServer()

	resp, err := server.App().Test(httptest.NewRequest("GET", "/mcp/health", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
}

func TestMCPPingOverHTTP(t *testing.T) {
	server := testServer()

	req := httptest.NewRequest("POST", "/mcp/", strings.NewReader(`{"jsonrpc":"2.0","id":1,"method":"ping"}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := server.App().Test(req)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
}

func TestMCPRejectsWrongContentType(t *testing.T) {
	server := testServer()

	req := httptest.NewRequest("POST", "/mcp/", strings.NewReader("x"))
	req.Header.Set("Content-Type", "text/plain")

	resp, err := server.App().Test(req)
	require.NoError(t, err)
	assert.Equal(t, 415, resp.StatusCode)
}
