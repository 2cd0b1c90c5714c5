package mcp

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/sworl/mill/internal/errors"
	"github.com/sworl/mill/internal/ops"
)

// Handlers holds dependencies for MCP tool handlers.
type Handlers struct {
	app *ops.App
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(app *ops.App) *Handlers {
	return &Handlers{app: app}
}

// Request types for each tool

// SearchRequest represents the arguments for asset_search.
type SearchRequest struct {
	Query string `json:"query"`
	Limit int    `json:"limit,omitempty"`
}

// BrowseRequest represents the arguments for asset_browse.
type BrowseRequest struct {
	Creator *int   `json:"creator,omitempty"`
	Packs   []int  `json:"packs,omitempty"`
	Type    string `json:"type,omitempty"`
	Terms   string `json:"terms,omitempty"`
	Page    int    `json:"page,omitempty"`
}

// PacksRequest represents the arguments for asset_packs.
type PacksRequest struct {
	Creator int `json:"creator"`
}

// GetRequest represents the arguments for asset_get.
type GetRequest struct {
	Pack     string `json:"pack"`
	Path     string `json:"path"`
	Download bool   `json:"download,omitempty"`
}

// PageRequest represents the arguments for page_resolve.
type PageRequest struct {
	Path  string `json:"path"`
	Write bool   `json:"write,omitempty"`
	HTML  bool   `json:"html,omitempty"`
}

// HandleSearch handles the asset_search tool call.
func (h *Handlers) HandleSearch(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[SearchRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Search(ctx, h.app, ops.SearchInput{
		Query: input.Query,
		Limit: input.Limit,
	})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleBrowse handles the asset_browse tool call.
func (h *Handlers) HandleBrowse(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[BrowseRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Browse(ctx, h.app, ops.BrowseInput{
		Creator: input.Creator,
		Packs:   input.Packs,
		Type:    input.Type,
		Terms:   input.Terms,
		Page:    input.Page,
	})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleCreators handles the asset_creators tool call.
func (h *Handlers) HandleCreators(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := ops.Creators(ctx, h.app)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandlePacks handles the asset_packs tool call.
func (h *Handlers) HandlePacks(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[PacksRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Packs(ctx, h.app, ops.PacksInput{Creator: input.Creator})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleGet handles the asset_get tool call.
func (h *Handlers) HandleGet(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[GetRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Get(ctx, h.app, ops.GetInput{
		Pack:     input.Pack,
		Path:     input.Path,
		Download: input.Download,
	})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandlePage handles the page_resolve tool call.
func (h *Handlers) HandlePage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[PageRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Page(ctx, h.app, ops.PageInput{
		Path:  input.Path,
		Write: input.Write,
		HTML:  input.HTML,
	})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleCacheClear handles the cache_clear tool call.
func (h *Handlers) HandleCacheClear(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := ops.ClearCache(h.app)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleCacheRefresh handles the cache_refresh tool call.
func (h *Handlers) HandleCacheRefresh(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := ops.Refresh(ctx, h.app)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// Result helpers

// errorResult creates an MCP error result from any error.
// Uses IsError: true so MCP clients recognize failures properly.
// Note: Internal error details are not exposed to prevent leaking sensitive info.
func errorResult(err error) *mcp.CallToolResult {
	var payload map[string]any

	if millErr, ok := err.(*errors.MillError); ok {
		errorObj := map[string]any{
			"code":    millErr.Code,
			"message": millErr.Message,
			"status":  millErr.Status,
		}
		if millErr.Code != errors.ErrInternal && millErr.Details != nil {
			errorObj["details"] = millErr.Details
		}
		payload = map[string]any{"error": errorObj}
	} else {
		payload = map[string]any{
			"error": map[string]any{
				"code":    "INTERNAL",
				"message": "an internal error occurred",
				"status":  500,
			},
		}
	}

	content, _ := json.Marshal(payload)
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: string(content)}},
		IsError: true,
	}
}

// successResult creates an MCP success result from any data.
func successResult(data any) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultJSON(data)
}
