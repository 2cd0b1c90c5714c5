package ops

import (
	"context"
	"strings"

	"github.com/sworl/mill/internal/catalog"
	"github.com/sworl/mill/internal/errors"
	"github.com/sworl/mill/internal/search"
)

// SearchInput contains parameters for the Search operation.
type SearchInput struct {
	Query string // required; supports !i/!s/!t and #key:value predicates
	Limit int    // default and max: search.MaxResults
}

// SearchItem is one matching asset.
type SearchItem struct {
	Name        string `json:"name"`
	Creator     string `json:"creator"`
	Pack        string `json:"pack"`
	Kind        string `json:"kind"`
	Path        string `json:"path"`
	URL         string `json:"url"`
	Thumb       string `json:"thumb,omitempty"`
	Duration    string `json:"duration,omitempty"`
	Description string `json:"description,omitempty"`
}

// SearchOutput contains the result of the Search operation.
type SearchOutput struct {
	Items []SearchItem `json:"items"`
	Total int          `json:"total"`
}

// Search runs a query-string search over the cached catalog.
func Search(ctx context.Context, a *App, input SearchInput) (*SearchOutput, error) {
	query := strings.TrimSpace(input.Query)
	if query == "" {
		return nil, errors.NewInvalidRequest("query is required")
	}

	creators, err := a.Cache.GetCreators(ctx)
	if err != nil {
		return nil, err
	}

	filters := search.ParseQuery(query)
	results := search.Search(creators, filters, input.Limit)

	items := make([]SearchItem, 0, len(results))
	for _, r := range results {
		items = append(items, a.searchItem(r))
	}
	return &SearchOutput{Items: items, Total: len(items)}, nil
}

func (a *App) searchItem(r search.Result) SearchItem {
	item := SearchItem{
		Name:    r.Name,
		Creator: r.Creator.Name,
		Pack:    r.Pack.Name,
		Kind:    r.Asset.Kind.String(),
		Path:    r.Asset.Path,
		URL:     a.absoluteURL(r.Asset.ResolveURL(r.Pack, a.Session(), a.now())),
		Thumb:   r.Asset.ThumbURL(r.Pack),
	}
	if r.Asset.Kind == catalog.KindSound {
		item.Duration = catalog.FormatDuration(r.Asset.Duration)
	}
	if r.Asset.Kind == catalog.KindText {
		item.Description = r.Asset.Description
	}
	return item
}
