package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
)

var searchToolDef = mcp.NewTool("asset_search",
	mcp.WithDescription("Search the asset catalog with a query string. Supports type shortcuts (!i images, !s sounds, !t text), #key:value tag predicates for text assets, and free-text terms matched against asset paths."),
	mcp.WithString("query", mcp.Required(), mcp.Description("Search query, e.g. '!i castle' or '!t #npc:human'")),
	mcp.WithNumber("limit", mcp.Description("Maximum number of results (default and cap: 100)")),
)

var browseToolDef = mcp.NewTool("asset_browse",
	mcp.WithDescription("Browse the asset catalog page by page with persistent filters. Returns up to 100 assets per page; a page value of -1 in the response means the enumeration is exhausted."),
	mcp.WithNumber("creator", mcp.Description("Creator index from asset_creators; -1 selects all creators")),
	mcp.WithArray("packs", mcp.Description("Pack ids to restrict to; empty selects all packs"),
		mcp.Items(map[string]any{"type": "number"})),
	mcp.WithString("type", mcp.Description("Asset type filter: image, sound or text"),
		mcp.Enum("image", "sound", "text")),
	mcp.WithString("terms", mcp.Description("Free-text terms, all of which must match")),
	mcp.WithNumber("page", mcp.Description("0-based page to materialize (default 0)")),
)

var creatorsToolDef = mcp.NewTool("asset_creators",
	mcp.WithDescription("List the catalog's creators with their pack and asset counts, in selector order."),
)

var packsToolDef = mcp.NewTool("asset_packs",
	mcp.WithDescription("List the selectable pack groups of one creator. Packs differing only by a quality suffix (HD, 4K) are combined."),
	mcp.WithNumber("creator", mcp.Required(), mcp.Description("Creator index from asset_creators")),
)

var getToolDef = mcp.NewTool("asset_get",
	mcp.WithDescription("Look up a single asset by pack and path, optionally downloading it into the vault."),
	mcp.WithString("pack", mcp.Required(), mcp.Description("Pack identifier: a packId or a numeric catalog id")),
	mcp.WithString("path", mcp.Required(), mcp.Description("Asset path within the pack")),
	mcp.WithBoolean("download", mcp.Description("Download the asset into the vault")),
)

var pageToolDef = mcp.NewTool("page_resolve",
	mcp.WithDescription("Hydrate a markdown page under the download prefix: fetch its content from its pack and resolve all asset references inside, downloading embedded assets."),
	mcp.WithString("path", mcp.Required(), mcp.Description("Vault-relative markdown path, e.g. 'moulinette/packA/notes/page.md'")),
	mcp.WithBoolean("write", mcp.Description("Write the resolved content into the vault")),
	mcp.WithBoolean("html", mcp.Description("Include an HTML rendering of the page")),
)

var cacheClearToolDef = mcp.NewTool("cache_clear",
	mcp.WithDescription("Discard the cached catalog. The next catalog read refetches from the service."),
)

var cacheRefreshToolDef = mcp.NewTool("cache_refresh",
	mcp.WithDescription("Force a catalog refetch and report creator, pack and asset counts."),
)
