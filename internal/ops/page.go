package ops

import (
	"context"
	"strings"

	"github.com/sworl/mill/internal/errors"
	"github.com/sworl/mill/internal/preview"
)

// PageInput contains parameters for the Page operation.
type PageInput struct {
	Path  string // vault-relative markdown path under the download prefix
	Write bool   // write the resolved content back into the vault
	HTML  bool   // include an HTML rendering of the page
}

// PageOutput contains the hydrated page.
type PageOutput struct {
	Path     string `json:"path"`
	Markdown string `json:"markdown"`
	HTML     string `json:"html,omitempty"`
	Written  bool   `json:"written"`
}

// Page hydrates a markdown page that exists (or is about to exist) under
// the download prefix: its content is fetched from the pack it belongs to
// and all asset references inside are resolved.
func Page(ctx context.Context, a *App, input PageInput) (*PageOutput, error) {
	path := strings.TrimSpace(input.Path)
	if path == "" {
		return nil, errors.NewInvalidRequest("path is required")
	}

	content, err := a.Resolver.DownloadPage(ctx, path)
	if err != nil {
		return nil, err
	}

	out := &PageOutput{Path: path, Markdown: content}
	if input.HTML {
		out.HTML = string(preview.Render(content))
	}
	if input.Write {
		if err := a.Vault.WriteBinary(path, []byte(content)); err != nil {
			return nil, err
		}
		out.Written = true
	}
	return out, nil
}
