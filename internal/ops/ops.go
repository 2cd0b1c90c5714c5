// Package ops implements the operations exposed by both the CLI and the
// MCP server. Each operation takes a typed input, runs against the shared
// App dependencies and returns a typed output.
package ops

import (
	"database/sql"
	"time"

	"github.com/sworl/mill/internal/auth"
	"github.com/sworl/mill/internal/browse"
	"github.com/sworl/mill/internal/cache"
	"github.com/sworl/mill/internal/catalog"
	"github.com/sworl/mill/internal/client"
	"github.com/sworl/mill/internal/config"
	"github.com/sworl/mill/internal/download"
	"github.com/sworl/mill/internal/errors"
	"github.com/sworl/mill/internal/resolve"
	"github.com/sworl/mill/internal/vault"
)

// App bundles the long-lived dependencies operations run against. The
// composition root builds one App per process.
type App struct {
	Cache      *cache.Cache
	Client     *client.Client
	Resolver   *resolve.Resolver
	Downloader *download.Downloader
	Vault      vault.Vault
	Linker     *auth.Linker
	Config     *config.Config
	ConfigDir  string
	Store      *sql.DB

	// Filters is the browse state persisted across browse calls.
	Filters *browse.Filters

	// Now is the clock; tests override it.
	Now func() time.Time
}

// Session returns the configured session identifier, which may be empty.
func (a *App) Session() string {
	return a.Config.SessionID
}

func (a *App) now() time.Time {
	if a.Now != nil {
		return a.Now()
	}
	return time.Now()
}

// ParseKind maps a type name to its asset kind. The empty string means any.
func ParseKind(name string) (catalog.Kind, error) {
	switch name {
	case "":
		return catalog.KindAny, nil
	case "image", "img":
		return catalog.KindImage, nil
	case "sound", "snd", "audio":
		return catalog.KindSound, nil
	case "text", "md":
		return catalog.KindText, nil
	default:
		return catalog.KindAny, errors.NewInvalidRequest("unknown asset type: " + name)
	}
}

// absoluteURL expands a server-relative URL against the client's base.
func (a *App) absoluteURL(url string) string {
	if len(url) > 0 && url[0] == '/' {
		return a.Client.ServerURL() + url
	}
	return url
}
