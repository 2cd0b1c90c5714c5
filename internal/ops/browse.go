package ops

import (
	"context"

	"github.com/sworl/mill/internal/browse"
	"github.com/sworl/mill/internal/catalog"
	"github.com/sworl/mill/internal/errors"
)

// BrowseInput contains parameters for the Browse operation. A nil Creator
// keeps the persisted selection; the other fields overwrite their persisted
// counterparts when set.
type BrowseInput struct {
	Creator *int   // sorted creator index, -1 = all
	Packs   []int  // pack ids, empty = all
	Type    string // "", "image", "sound" or "text"
	Terms   string // free-text terms
	Page    int    // 0-based page to materialize
}

// BrowseItem is one asset of a browse page.
type BrowseItem struct {
	SearchItem
	PackID int `json:"pack_id"`
}

// BrowseOutput contains one materialized page.
type BrowseOutput struct {
	Page      int          `json:"page"` // cursor after this page, -1 when exhausted
	Items     []BrowseItem `json:"items"`
	Exhausted bool         `json:"exhausted"`
}

// Browse materializes one page of the filtered catalog. Filter changes are
// written into the persisted browse state, so subsequent calls continue
// from the same selection.
func Browse(ctx context.Context, a *App, input BrowseInput) (*BrowseOutput, error) {
	kind, err := ParseKind(input.Type)
	if err != nil {
		return nil, err
	}
	if input.Page < 0 {
		return nil, errors.NewInvalidRequest("page must not be negative")
	}

	creators, err := a.Cache.GetCreators(ctx)
	if err != nil {
		return nil, err
	}

	b := browse.New(creators, a.Filters)
	if input.Creator != nil {
		b.SetCreator(*input.Creator)
	}
	if len(input.Packs) > 0 {
		b.SetPacks(input.Packs)
	}
	if input.Terms != a.Filters.Terms {
		b.SetTerms(input.Terms)
	}
	if kind != a.Filters.Type {
		b.ToggleType(kind)
	}

	var entries []browse.Entry
	for page := 0; page <= input.Page; page++ {
		entries = b.NextPage()
		if entries == nil {
			break
		}
	}

	out := &BrowseOutput{Page: b.Page(), Exhausted: b.Page() == browse.PageExhausted}
	for _, e := range entries {
		out.Items = append(out.Items, BrowseItem{
			SearchItem: a.entryItem(e),
			PackID:     e.Pack.ID,
		})
	}
	return out, nil
}

func (a *App) entryItem(e browse.Entry) SearchItem {
	item := SearchItem{
		Name:    catalog.BeautifyName(lastSegment(e.Asset.Path)),
		Creator: e.Creator.Name,
		Pack:    e.Pack.Name,
		Kind:    e.Asset.Kind.String(),
		Path:    e.Asset.Path,
		URL:     a.absoluteURL(e.Asset.ResolveURL(e.Pack, a.Session(), a.now())),
		Thumb:   e.Asset.ThumbURL(e.Pack),
	}
	if e.Asset.Kind == catalog.KindSound {
		item.Duration = catalog.FormatDuration(e.Asset.Duration)
	}
	if e.Asset.Kind == catalog.KindText {
		item.Description = e.Asset.Description
	}
	return item
}

func lastSegment(path string) string {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' {
			return path[i+1:]
		}
	}
	return path
}

// CreatorItem is one entry of the creator selector.
type CreatorItem struct {
	Index  int    `json:"index"`
	Name   string `json:"name"`
	Packs  int    `json:"packs"`
	Assets int    `json:"assets"`
}

// CreatorsOutput lists all creators of the cached catalog in selector order.
type CreatorsOutput struct {
	Items []CreatorItem `json:"items"`
}

// Creators lists the catalog's creators with their pack and asset counts.
func Creators(ctx context.Context, a *App) (*CreatorsOutput, error) {
	creators, err := a.Cache.GetCreators(ctx)
	if err != nil {
		return nil, err
	}

	b := browse.New(creators, a.Filters)
	out := &CreatorsOutput{}
	for i, c := range b.Creators() {
		out.Items = append(out.Items, CreatorItem{
			Index:  i,
			Name:   c.Name,
			Packs:  len(c.Packs),
			Assets: c.AssetCount(),
		})
	}
	return out, nil
}

// PacksInput contains parameters for the Packs operation.
type PacksInput struct {
	Creator int // sorted creator index
}

// PacksOutput lists the pack selector groups of one creator.
type PacksOutput struct {
	Groups []browse.PackGroup `json:"groups"`
}

// Packs lists the selectable pack groups of the given creator. Packs whose
// names differ only by a quality suffix are combined into one group.
func Packs(ctx context.Context, a *App, input PacksInput) (*PacksOutput, error) {
	creators, err := a.Cache.GetCreators(ctx)
	if err != nil {
		return nil, err
	}

	b := browse.New(creators, a.Filters)
	if input.Creator < 0 || input.Creator >= len(b.Creators()) {
		return nil, errors.NewInvalidRequest("creator index out of range")
	}
	b.SetCreator(input.Creator)
	return &PacksOutput{Groups: b.PackGroups()}, nil
}
