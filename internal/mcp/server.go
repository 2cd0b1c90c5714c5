// Package mcp exposes the catalog operations as MCP tools over stdio.
package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/sworl/mill/internal/ops"
)

// toolEntry pairs a tool definition with a handler factory.
type toolEntry struct {
	def     mcp.Tool
	handler func(*Handlers) server.ToolHandlerFunc
}

// toolRegistry maps tool names to their definitions and handler factories.
var toolRegistry = map[string]toolEntry{
	"asset_search": {
		def:     searchToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleSearch },
	},
	"asset_browse": {
		def:     browseToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleBrowse },
	},
	"asset_creators": {
		def:     creatorsToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleCreators },
	},
	"asset_packs": {
		def:     packsToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandlePacks },
	},
	"asset_get": {
		def:     getToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleGet },
	},
	"page_resolve": {
		def:     pageToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandlePage },
	},
	"cache_clear": {
		def:     cacheClearToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleCacheClear },
	},
	"cache_refresh": {
		def:     cacheRefreshToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleCacheRefresh },
	},
}

// AllToolNames returns a list of all tool names.
func AllToolNames() []string {
	names := make([]string, 0, len(toolRegistry))
	for name := range toolRegistry {
		names = append(names, name)
	}
	return names
}

// NewServer creates an MCP server with the mill tools registered.
func NewServer(app *ops.App, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"mill",
		version,
		server.WithToolCapabilities(true),
	)

	h := NewHandlers(app)
	for _, entry := range toolRegistry {
		s.AddTool(entry.def, entry.handler(h))
	}
	return s
}

// Run starts the MCP server using stdio transport.
func Run(app *ops.App, version string) error {
	return server.ServeStdio(NewServer(app, version))
}
